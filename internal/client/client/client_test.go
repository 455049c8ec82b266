package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gilab/labsite/internal/client/tokenstore"
	"github.com/gilab/labsite/internal/client/tokenstore/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type captured struct {
	method string
	path   string
	header http.Header
	body   []byte
}

func newServer(t *testing.T, status int, body string) (*httptest.Server, *captured) {
	t.Helper()
	got := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.method = r.Method
		got.path = r.URL.RequestURI()
		got.header = r.Header.Clone()
		got.body, _ = io.ReadAll(r.Body)
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func TestDo_ResolvesPathUnderAPIPrefix(t *testing.T) {
	srv, got := newServer(t, http.StatusOK, `[]`)
	c := New(srv.URL+"/", tokenstore.NewMemory())

	_, err := c.Get(context.Background(), "/members?grouped=true")
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, got.method)
	assert.Equal(t, "/api/members?grouped=true", got.path)
}

func TestDo_AbsoluteURLPassesThrough(t *testing.T) {
	srv, got := newServer(t, http.StatusOK, `{}`)
	c := New("http://unused.invalid", tokenstore.NewMemory())

	_, err := c.Get(context.Background(), srv.URL+"/data/news.json")
	require.NoError(t, err)
	assert.Equal(t, "/data/news.json", got.path)
}

func TestDo_Headers(t *testing.T) {
	ctx := context.Background()

	t.Run("bearer token and json content type", func(t *testing.T) {
		srv, got := newServer(t, http.StatusOK, `{}`)
		tokens := tokenstore.NewMemory()
		tokens.Set(ctx, "abc")

		_, err := New(srv.URL, tokens).Post(ctx, "/auth/login", map[string]string{"email": "a@b.c"})
		require.NoError(t, err)
		assert.Equal(t, "Bearer abc", got.header.Get(HeaderAuthorization))
		assert.Equal(t, "application/json", got.header.Get(HeaderContentType))
		assert.NotEmpty(t, got.header.Get(HeaderRequestID))
		assert.JSONEq(t, `{"email":"a@b.c"}`, string(got.body))
	})

	t.Run("no token means no authorization header", func(t *testing.T) {
		srv, got := newServer(t, http.StatusOK, `{}`)

		_, err := New(srv.URL, tokenstore.NewMemory()).Get(ctx, "/publications")
		require.NoError(t, err)
		assert.Empty(t, got.header.Get(HeaderAuthorization))
		assert.Equal(t, "application/json", got.header.Get(HeaderContentType))
		assert.Empty(t, got.body)
	})

	t.Run("caller headers win", func(t *testing.T) {
		srv, got := newServer(t, http.StatusOK, `{}`)
		tokens := tokenstore.NewMemory()
		tokens.Set(ctx, "abc")

		_, err := New(srv.URL, tokens).Get(ctx, "/auth/user",
			WithHeader(HeaderAuthorization, "Bearer other"),
			WithHeader(HeaderContentType, "text/plain"),
			WithHeader(HeaderRequestID, "req-1"),
		)
		require.NoError(t, err)
		assert.Equal(t, "Bearer other", got.header.Get(HeaderAuthorization))
		assert.Equal(t, "text/plain", got.header.Get(HeaderContentType))
		assert.Equal(t, "req-1", got.header.Get(HeaderRequestID))
	})

	t.Run("multipart body is sent untouched", func(t *testing.T) {
		srv, got := newServer(t, http.StatusOK, `{"url":"/uploads/a.png"}`)
		mp, err := NewMultipart(FileField("file", "a.png", []byte("PNG")))
		require.NoError(t, err)

		_, err = New(srv.URL, tokenstore.NewMemory()).Post(ctx, "/upload", mp)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(got.header.Get(HeaderContentType), "multipart/form-data; boundary="))
		assert.Equal(t, mp.Body, got.body)
	})
}

func TestDo_SuccessBodies(t *testing.T) {
	tests := []struct {
		name string
		body string
		want any
	}{
		{name: "empty", body: "", want: map[string]any{}},
		{name: "json object", body: `{"id":"p1"}`, want: map[string]any{"id": "p1"}},
		{name: "json array", body: `[1,2]`, want: []any{float64(1), float64(2)}},
		{name: "json null", body: `null`, want: nil},
		{name: "plain text", body: "OK", want: "OK"},
		{name: "truncated json", body: `{"id":`, want: `{"id":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newServer(t, http.StatusOK, tt.body)

			resp, err := New(srv.URL, nil).Get(context.Background(), "/x")
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.Value)
		})
	}
}

func TestDo_Unauthorized(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{name: "detail", body: `{"detail":"Token expired"}`, message: "Token expired"},
		{name: "no detail", body: `{"message":"ignored for 401"}`, message: "Could not validate credentials"},
		{name: "empty", body: ``, message: "Could not validate credentials"},
		{name: "html", body: `<html>nope</html>`, message: "Could not validate credentials"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			tokens := mocks.NewMockStore(ctrl)
			tokens.EXPECT().Get(gomock.Any()).Return("stale", true)
			tokens.EXPECT().Clear(gomock.Any()).Times(1)

			srv, got := newServer(t, http.StatusUnauthorized, tt.body)
			c := New(srv.URL, tokens)

			var fired atomic.Int32
			c.OnUnauthorized(func(context.Context) { fired.Add(1) })

			_, err := c.Get(context.Background(), "/auth/user")
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnauthorized))
			assert.False(t, errors.Is(err, ErrRequestFailed))
			assert.Equal(t, "Bearer stale", got.header.Get(HeaderAuthorization))
			assert.Equal(t, int32(1), fired.Load())

			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
			assert.Equal(t, tt.message, apiErr.Message)
		})
	}
}

func TestDo_Unauthorized_ThenNoTokenSent(t *testing.T) {
	ctx := context.Background()
	var calls atomic.Int32
	var lastAuth atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lastAuth.Store(r.Header.Get(HeaderAuthorization))
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = io.WriteString(w, `[]`)
	}))
	t.Cleanup(srv.Close)

	tokens := tokenstore.NewMemory()
	tokens.Set(ctx, "abc")
	c := New(srv.URL, tokens)

	_, err := c.Get(ctx, "/admin/pending-users")
	require.ErrorIs(t, err, ErrUnauthorized)
	_, ok := tokens.Get(ctx)
	assert.False(t, ok)

	_, err = c.Get(ctx, "/publications")
	require.NoError(t, err)
	assert.Equal(t, "", lastAuth.Load())
}

func TestDo_RequestFailed(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
		payload any
	}{
		{name: "detail", status: 400, body: `{"detail":"Email already registered"}`, message: "Email already registered", payload: map[string]any{"detail": "Email already registered"}},
		{name: "message", status: 500, body: `{"message":"boom"}`, message: "boom", payload: map[string]any{"message": "boom"}},
		{name: "detail wins over message", status: 403, body: `{"detail":"Admin only","message":"x"}`, message: "Admin only", payload: map[string]any{"detail": "Admin only", "message": "x"}},
		{name: "validation list", status: 422, body: `{"detail":[{"loc":["body","year"],"msg":"field required"}]}`, message: "field required"},
		{name: "no fields", status: 404, body: `{}`, message: "Request failed", payload: map[string]any{}},
		{name: "plain text", status: 502, body: `Bad Gateway`, message: "Request failed", payload: "Bad Gateway"},
		{name: "empty", status: 500, body: ``, message: "Request failed", payload: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newServer(t, tt.status, tt.body)
			tokens := tokenstore.NewMemory()
			tokens.Set(context.Background(), "keep")

			_, err := New(srv.URL, tokens).Post(context.Background(), "/publications", map[string]any{})
			require.ErrorIs(t, err, ErrRequestFailed)

			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.message, apiErr.Message)
			assert.Equal(t, tt.message, MessageOf(err))
			assert.Equal(t, tt.status, StatusOf(err))
			if tt.name != "validation list" {
				assert.Equal(t, tt.payload, apiErr.Payload)
			}

			_, ok := tokens.Get(context.Background())
			assert.True(t, ok, "only 401 clears the token")
		})
	}
}

func TestDo_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url, nil).Get(context.Background(), "/news")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 0, StatusOf(err))
}

func TestDo_RejectsUnknownMethodBeforeIO(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { hits.Add(1) }))
	t.Cleanup(srv.Close)

	_, err := New(srv.URL, nil).Do(context.Background(), "TRACE", "/x", nil)
	require.ErrorIs(t, err, ErrMethod)
	assert.Zero(t, hits.Load())
}

func TestDo_UnencodableBody(t *testing.T) {
	_, err := New("http://unused.invalid", nil).Post(context.Background(), "/x", map[string]any{"f": func() {}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "encode request body")
}

func TestResponse_Decode(t *testing.T) {
	var out struct {
		ID string `json:"id"`
	}
	require.NoError(t, (&Response{Body: []byte(`{"id":"u1"}`)}).Decode(&out))
	assert.Equal(t, "u1", out.ID)

	var empty map[string]any
	require.NoError(t, (&Response{}).Decode(&empty))
	assert.Empty(t, empty)

	require.Error(t, (&Response{Body: []byte("OK")}).Decode(&out))
}

func TestNewMultipart_FillError(t *testing.T) {
	_, err := NewMultipart(func(*multipart.Writer) error { return errors.New("disk") })
	require.Error(t, err)
}

func TestDo_RoundTripsTypedBody(t *testing.T) {
	type req struct {
		Title string `json:"title"`
		Year  int    `json:"year"`
	}
	srv, got := newServer(t, http.StatusCreated, `{"id":"p9"}`)

	resp, err := New(srv.URL, nil).Put(context.Background(), "/lab-info", req{Title: "T", Year: 2024})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.Status)

	var sent req
	require.NoError(t, json.Unmarshal(got.body, &sent))
	assert.Equal(t, req{Title: "T", Year: 2024}, sent)
}
