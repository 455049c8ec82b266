package staticdata

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPSource_URL(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{base: "http://lab.example", want: "http://lab.example/data/news.json"},
		{base: "http://lab.example/", want: "http://lab.example/data/news.json"},
		{base: "https://org.github.io/labsite//", want: "https://org.github.io/labsite/data/news.json"},
		{base: "/", want: "/data/news.json"},
	}
	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			src, err := NewHTTPSource(tt.base, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, src.URL("news.json"))
		})
	}
}

func TestHTTPSource_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/site/data/news.json" {
			_, _ = io.WriteString(w, `[]`)
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)

	src, err := NewHTTPSource(srv.URL+"/site/", srv.Client())
	require.NoError(t, err)

	b, err := src.Fetch(context.Background(), DocNews)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))

	_, err = src.Fetch(context.Background(), DocMembers)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "members.json")
}

func TestHTTPSource_TransportFailureIsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	src, err := NewHTTPSource(base, nil)
	require.NoError(t, err)

	_, err = src.Fetch(context.Background(), DocNews)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDirSource(t *testing.T) {
	src := NewDirSource(fstest.MapFS{
		"data/lab-info.json": {Data: []byte(`null`)},
	})

	b, err := src.Fetch(context.Background(), DocLabInfo)
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))

	_, err = src.Fetch(context.Background(), DocNews)
	require.ErrorIs(t, err, ErrNotFound)
}

type fakeS3 struct {
	objects map[string]string
	lastIn  *s3.GetObjectInput
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.lastIn = in
	body, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewBufferString(body))}, nil
}

func TestS3Source_Fetch(t *testing.T) {
	fake := &fakeS3{objects: map[string]string{"site/data/publications.json": `[{"id":"p1"}]`}}
	src := NewS3Source(fake, "lab-export", "/site/")

	b, err := src.Fetch(context.Background(), DocPublications)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"p1"}]`, string(b))
	assert.Equal(t, "lab-export", aws.ToString(fake.lastIn.Bucket))
	assert.Equal(t, "site/data/publications.json", aws.ToString(fake.lastIn.Key))

	_, err = src.Fetch(context.Background(), DocNews)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestS3Source_ObjectKeyWithoutPrefix(t *testing.T) {
	assert.Equal(t, "data/news.json", NewS3Source(&fakeS3{}, "b", "").ObjectKey(DocNews))
}

func TestNewS3SourceFromConfig(t *testing.T) {
	origLoad, origNew := loadDefaultAWSConfig, newS3ClientFromConfig
	t.Cleanup(func() { loadDefaultAWSConfig, newS3ClientFromConfig = origLoad, origNew })

	var gotRegion string
	var gotCreds bool
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		gotRegion = lo.Region
		gotCreds = lo.Credentials != nil
		return aws.Config{Region: lo.Region}, nil
	}

	var opts s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&opts)
		}
		return s3.NewFromConfig(cfg, optFns...)
	}

	src, err := NewS3SourceFromConfig(context.Background(), S3Config{
		Bucket:    "lab-export",
		Prefix:    "site",
		Region:    "us-east-1",
		Endpoint:  "http://127.0.0.1:9000",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
	})
	require.NoError(t, err)
	assert.Equal(t, "site/data/news.json", src.ObjectKey(DocNews))
	assert.Equal(t, "us-east-1", gotRegion)
	assert.True(t, gotCreds)
	assert.Equal(t, "http://127.0.0.1:9000", aws.ToString(opts.BaseEndpoint))
	assert.True(t, opts.UsePathStyle)
}

func TestNewS3SourceFromConfig_LoadError(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = origLoad })

	loadDefaultAWSConfig = func(context.Context, ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no profile")
	}

	_, err := NewS3SourceFromConfig(context.Background(), S3Config{Region: "eu-west-1"})
	require.ErrorContains(t, err, "load aws config")
}
