package client

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/tupad/organizador/core"
	"github.com/tupad/organizador/core/usuario"
	"github.com/tupad/organizador/services/logger"
	"github.com/tupad/organizador/tests"
)

func newTestLogger(t *testing.T) core.Logger {
	t.Helper()
	return logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), testutil.NewConfig(t))
}

// fakeAPI counts the requests it receives per path.
type fakeAPI struct {
	*httptest.Server

	mu    sync.Mutex
	calls map[string]int
	reqs  []*http.Request
}

func newFakeAPI(t *testing.T, handler http.HandlerFunc) *fakeAPI {
	t.Helper()
	api := &fakeAPI{calls: make(map[string]int)}
	api.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		api.mu.Lock()
		api.calls[r.URL.Path]++
		api.reqs = append(api.reqs, r)
		api.mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(api.Close)
	return api
}

func (api *fakeAPI) count(path string) int {
	api.mu.Lock()
	defer api.mu.Unlock()
	return api.calls[path]
}

func (api *fakeAPI) total() int {
	api.mu.Lock()
	defer api.mu.Unlock()
	return len(api.reqs)
}

func (api *fakeAPI) last() *http.Request {
	api.mu.Lock()
	defer api.mu.Unlock()
	if len(api.reqs) == 0 {
		return nil
	}
	return api.reqs[len(api.reqs)-1]
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func signedInSession(t *testing.T, store Store) *Session {
	t.Helper()
	s, err := NewSession(store)
	if err != nil {
		t.Fatalf("NewSession() failed: %v", err)
	}
	if err = s.Set("token", usuario.Usuario{ID: 1, Nombre: "Ana", Email: "ana@tupad.edu.ar"}); err != nil {
		t.Fatalf("Session.Set() failed: %v", err)
	}
	return s
}
