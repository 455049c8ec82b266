package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gilab/labsite/internal/client/client"
)

type call struct {
	Method string
	Path   string
	Body   any
}

// fakeAPI answers by path with canned JSON bodies or errors and records
// every call.
type fakeAPI struct {
	mu     sync.Mutex
	bodies map[string]string
	errs   map[string]error
	calls  []call
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{bodies: map[string]string{}, errs: map[string]error{}}
}

func (f *fakeAPI) reply(method, path, body string) *fakeAPI {
	f.mu.Lock()
	f.bodies[method+" "+path] = body
	f.mu.Unlock()
	return f
}

func (f *fakeAPI) fail(method, path string, err error) *fakeAPI {
	f.mu.Lock()
	f.errs[method+" "+path] = err
	f.mu.Unlock()
	return f
}

func (f *fakeAPI) do(method, path string, body any) (*client.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{Method: method, Path: path, Body: body})
	k := method + " " + path
	if err := f.errs[k]; err != nil {
		return nil, err
	}
	return &client.Response{Status: 200, Body: []byte(f.bodies[k])}, nil
}

func (f *fakeAPI) Get(_ context.Context, path string, _ ...client.RequestOption) (*client.Response, error) {
	return f.do("GET", path, nil)
}

func (f *fakeAPI) Post(_ context.Context, path string, body any, _ ...client.RequestOption) (*client.Response, error) {
	return f.do("POST", path, body)
}

func (f *fakeAPI) Put(_ context.Context, path string, body any, _ ...client.RequestOption) (*client.Response, error) {
	return f.do("PUT", path, body)
}

func (f *fakeAPI) count(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}

func (f *fakeAPI) last() call {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return call{}
	}
	return f.calls[len(f.calls)-1]
}

// sentJSON re-encodes the body of the last call into a generic value.
func (f *fakeAPI) sentJSON() map[string]any {
	b, _ := json.Marshal(f.last().Body)
	var out map[string]any
	_ = json.Unmarshal(b, &out)
	return out
}

var errServer = &client.Error{Kind: client.KindRequestFailed, Status: 400, Message: "Email already registered"}
