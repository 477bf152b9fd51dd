package authsdk

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/ccauth/pkg/httpx"
	"github.com/stretchr/testify/require"
)

// fakeAuthServer issues sequential tokens for one client and serves a
// bearer-protected resource that only accepts the newest token.
type fakeAuthServer struct {
	t *testing.T

	fetches   atomic.Int32
	expiresIn int
	delay     time.Duration

	mu      sync.Mutex
	current string
	stale   map[string]bool
}

func newFakeAuthServer(t *testing.T) (*fakeAuthServer, *httptest.Server) {
	f := &fakeAuthServer{t: t, expiresIn: 3600, stale: map[string]bool{}}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth/token", f.handleToken)
	mux.HandleFunc("GET /api/resource", f.handleResource)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeAuthServer) handleToken(w http.ResponseWriter, r *http.Request) {
	id, secret, ok := r.BasicAuth()
	if !ok || id != "svc" || secret != "s3cret" {
		w.Header().Set("WWW-Authenticate", "Basic")
		ErrInvalidClient.WithStatus(http.StatusUnauthorized).WriteError(w)
		return
	}
	if r.PostFormValue("grant_type") != "client_credentials" {
		ErrUnsupportedGrantType.WriteError(w)
		return
	}
	time.Sleep(f.delay)

	n := f.fetches.Add(1)
	tok := fmt.Sprintf("token-%d", n)

	f.mu.Lock()
	if f.current != "" {
		f.stale[f.current] = true
	}
	f.current = tok
	f.mu.Unlock()

	httpx.WriteJSON(w, http.StatusOK, TokenResponse{
		AccessToken: tok,
		TokenType:   "Bearer",
		ExpiresIn:   f.expiresIn,
		Scope:       r.PostFormValue("scope"),
	})
}

func (f *fakeAuthServer) handleResource(w http.ResponseWriter, r *http.Request) {
	tok, _ := httpx.BearerToken(r)

	f.mu.Lock()
	ok := tok != "" && tok == f.current && !f.stale[tok]
	f.mu.Unlock()

	if !ok {
		NewOAuth2Error(http.StatusUnauthorized, ErrorCodeInvalidToken, "bad token").WriteError(w)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, ResourceResponse{Message: "ok", ClientID: "svc"})
}

// expire makes the current token unusable without the client knowing.
func (f *fakeAuthServer) expire() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stale[f.current] = true
}

func writeJSON(t *testing.T, w http.ResponseWriter, code int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}
