// Package staticdata reads the lab's static JSON export: the same records
// the API serves, published as files under <base>/data/.
package staticdata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"regexp"
	"time"
)

var ErrNotFound = errors.New("static document not found")

const (
	DocPublications  = "publications.json"
	DocMembers       = "members.json"
	DocNews          = "news.json"
	DocResearchAreas = "research-areas.json"
	DocLabInfo       = "lab-info.json"
)

// Source returns the raw bytes of one exported document. Any failure is
// reported as ErrNotFound.
type Source interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

var slashRuns = regexp.MustCompile(`/{2,}`)

// HTTPSource fetches documents from a web server hosting the export.
type HTTPSource struct {
	baseURL *url.URL
	client  *http.Client
}

// NewHTTPSource accepts either a full URL or a bare base path; the document
// URL is base + "/data/" + name with repeated slashes collapsed.
func NewHTTPSource(baseURL string, client *http.Client) (*HTTPSource, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid static base url %q: %w", baseURL, err)
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPSource{baseURL: u, client: client}, nil
}

func (s *HTTPSource) URL(name string) string {
	u := *s.baseURL
	u.Path = slashRuns.ReplaceAllString(u.Path+"/data/"+name, "/")
	u.RawPath = ""
	return u.String()
}

func (s *HTTPSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL(name), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNotFound, name, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNotFound, name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s: status %d", ErrNotFound, name, resp.StatusCode)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNotFound, name, err)
	}
	return b, nil
}

// DirSource reads an export that lives on disk, rooted at the directory
// that contains data/.
type DirSource struct {
	fsys fs.FS
}

func NewDirSource(fsys fs.FS) *DirSource {
	return &DirSource{fsys: fsys}
}

func (s *DirSource) Fetch(_ context.Context, name string) ([]byte, error) {
	b, err := fs.ReadFile(s.fsys, "data/"+name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNotFound, name, err)
	}
	return b, nil
}
