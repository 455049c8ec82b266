package session

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gilab/labsite/internal/client/client"
	"github.com/gilab/labsite/internal/client/models"
	"github.com/gilab/labsite/internal/client/querycache"
	"github.com/gilab/labsite/internal/client/tokenstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNav struct {
	mu     sync.Mutex
	routes []string
}

func (f *fakeNav) Navigate(route string) {
	f.mu.Lock()
	f.routes = append(f.routes, route)
	f.mu.Unlock()
}

// fakeAPI serves /api/auth/user with whatever status/body is configured
// and counts hits.
type fakeAPI struct {
	status atomic.Int32
	body   atomic.Value
	hits   atomic.Int32
}

type fixture struct {
	sess   *Session
	cache  *querycache.Cache
	tokens *tokenstore.Memory
	nav    *fakeNav
	api    *fakeAPI
	client *client.Client
}

func newFixture(t *testing.T, status int, body string) *fixture {
	t.Helper()
	f := &fixture{api: &fakeAPI{}, nav: &fakeNav{}, tokens: tokenstore.NewMemory()}
	f.api.status.Store(int32(status))
	f.api.body.Store(body)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.api.hits.Add(1)
		if r.URL.Path != "/api/auth/user" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(int(f.api.status.Load()))
		_, _ = io.WriteString(w, f.api.body.Load().(string))
	}))
	t.Cleanup(srv.Close)

	f.cache = querycache.New(querycache.Options{QueryRetry: 1, RetryBase: time.Millisecond})
	f.client = client.New(srv.URL, f.tokens)
	f.sess = New(f.cache, f.client, f.tokens, f.nav, nil)
	f.client.OnUnauthorized(f.sess.HandleUnauthorized)
	return f
}

const adminJSON = `{"id":"u1","email":"pi@lab.example","firstName":"Ada","lastName":"Lee","isAdmin":true,"isApproved":true}`

func TestLoad_Authenticated(t *testing.T) {
	f := newFixture(t, http.StatusOK, adminJSON)
	f.tokens.Set(context.Background(), "abc")

	user, err := f.sess.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "u1", user.ID)

	st := f.sess.State()
	assert.True(t, st.IsAuthenticated)
	assert.True(t, st.IsAdmin)
	assert.False(t, st.IsLoading)
	assert.NoError(t, st.Err)

	_, err = f.sess.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), f.api.hits.Load(), "fresh session is served from cache")
}

func TestLoad_UnauthorizedIsAnonymous(t *testing.T) {
	f := newFixture(t, http.StatusUnauthorized, `{"detail":"Not authenticated"}`)
	f.tokens.Set(context.Background(), "expired")

	user, err := f.sess.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, user)

	st := f.sess.State()
	assert.False(t, st.IsAuthenticated)
	assert.False(t, st.IsAdmin)
	assert.NoError(t, st.Err)

	_, ok := f.tokens.Get(context.Background())
	assert.False(t, ok, "401 clears the token")
}

func TestLoad_ServerErrorIsNotRetried(t *testing.T) {
	f := newFixture(t, http.StatusInternalServerError, `{"detail":"db down"}`)

	_, err := f.sess.Load(context.Background())
	require.ErrorIs(t, err, client.ErrRequestFailed)
	assert.Equal(t, int32(1), f.api.hits.Load())

	st := f.sess.State()
	require.Error(t, st.Err)
	assert.Equal(t, "db down", client.MessageOf(st.Err))
	assert.False(t, st.IsAuthenticated)
}

func TestLoad_EmptyBodyIsAnonymous(t *testing.T) {
	f := newFixture(t, http.StatusOK, ``)

	user, err := f.sess.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, http.StatusOK, adminJSON)
	f.tokens.Set(ctx, "abc")

	_, err := f.sess.Load(ctx)
	require.NoError(t, err)

	var states []State
	defer f.sess.Subscribe(func(st State) { states = append(states, st) })()
	hitsBefore := f.api.hits.Load()

	f.sess.Logout(ctx)

	_, ok := f.tokens.Get(ctx)
	assert.False(t, ok)
	require.NotEmpty(t, states)
	assert.False(t, states[0].IsAuthenticated, "anonymous before any network round trip")
	assert.Equal(t, hitsBefore, f.api.hits.Load())
	assert.Equal(t, []string{HomeRoute}, f.nav.routes)
	assert.True(t, f.cache.Get(UserKey()).Stale)

	f.api.status.Store(http.StatusUnauthorized)
	user, err := f.sess.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, user)
	assert.Equal(t, hitsBefore+1, f.api.hits.Load(), "invalidated session is reloaded")
}

func TestSeedAndRefetch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, http.StatusOK, adminJSON)

	f.sess.Seed(&models.User{ID: "seeded", Email: "x@y.z"})
	user, err := f.sess.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "seeded", user.ID)
	assert.Zero(t, f.api.hits.Load())

	user, err = f.sess.Refetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, int32(1), f.api.hits.Load())
}

func TestUnauthorizedElsewhereResetsSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, http.StatusOK, adminJSON)

	_, err := f.sess.Load(ctx)
	require.NoError(t, err)
	require.True(t, f.sess.State().IsAuthenticated)

	_, err = f.client.Get(ctx, "/admin/pending-users")
	require.ErrorIs(t, err, client.ErrUnauthorized)

	assert.False(t, f.sess.State().IsAuthenticated)
}

func TestRequireAuthAndAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("anonymous", func(t *testing.T) {
		f := newFixture(t, http.StatusUnauthorized, ``)
		_, err := f.sess.RequireAuth(ctx)
		require.ErrorIs(t, err, ErrNotAuthenticated)
		_, err = f.sess.RequireAdmin(ctx)
		require.ErrorIs(t, err, ErrNotAuthenticated)
	})

	t.Run("member", func(t *testing.T) {
		f := newFixture(t, http.StatusOK, `{"id":"u2","email":"m@lab.example","isAdmin":false,"isApproved":true}`)
		user, err := f.sess.RequireAuth(ctx)
		require.NoError(t, err)
		assert.Equal(t, "u2", user.ID)
		_, err = f.sess.RequireAdmin(ctx)
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("admin", func(t *testing.T) {
		f := newFixture(t, http.StatusOK, adminJSON)
		user, err := f.sess.RequireAdmin(ctx)
		require.NoError(t, err)
		assert.True(t, user.IsAdmin)
	})

	t.Run("server error", func(t *testing.T) {
		f := newFixture(t, http.StatusBadGateway, ``)
		_, err := f.sess.RequireAuth(ctx)
		require.ErrorIs(t, err, client.ErrRequestFailed)
	})
}
