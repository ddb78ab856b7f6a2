//go:build integration
// +build integration

package test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	goGuard "github.com/MrEthical07/goGuard"
	"github.com/MrEthical07/goGuard/navigate"
	"github.com/MrEthical07/goGuard/session"
)

// profileBackend plays the SPA's profile endpoint: GET /me with bearer auth.
// Unknown tokens get 401, a down backend gets 503, everything else the stored
// profile JSON. Tokens and profiles are mutable so tests can revoke and
// deactivate mid-flight.
type profileBackend struct {
	mu       sync.Mutex
	profiles map[string]*session.Profile
	down     bool

	hits atomic.Int64
}

func newProfileBackend() *profileBackend {
	return &profileBackend{profiles: make(map[string]*session.Profile)}
}

func (b *profileBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.hits.Add(1)

	b.mu.Lock()
	down := b.down
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	profile := b.profiles[token]
	b.mu.Unlock()

	if down {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	if profile == nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(profile)
}

func (b *profileBackend) setToken(token string, profile *session.Profile) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.profiles[token] = profile.Clone()
}

func (b *profileBackend) revoke(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.profiles, token)
}

func (b *profileBackend) deactivate(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p := b.profiles[token]; p != nil {
		f := false
		p.Active = &f
	}
}

func (b *profileBackend) setDown(down bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.down = down
}

// guardStack is a fully wired guard over a live store and fake backend.
type guardStack struct {
	backend *profileBackend
	tokens  session.TokenCache
	store   *session.Store
	guard   *goGuard.Guard
	rec     *navigate.Recorder
}

func newGuardStack(t *testing.T, cfg goGuard.Config) *guardStack {
	t.Helper()

	backend := newProfileBackend()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	tokens := session.NewMemoryTokenCache()
	store := session.NewStore(session.NewHTTPResolver(srv.URL+"/me"), tokens)
	t.Cleanup(store.Close)

	rec := navigate.NewRecorder()
	guard, err := goGuard.New().
		WithConfig(cfg).
		WithSession(store).
		WithNavigator(rec).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(guard.Close)

	return &guardStack{backend: backend, tokens: tokens, store: store, guard: guard, rec: rec}
}

// waitFor blocks until the store publishes a snapshot matching want.
func (s *guardStack) waitFor(t *testing.T, want func(session.Snapshot) bool) session.Snapshot {
	t.Helper()

	ch, cancel := s.store.Subscribe()
	defer cancel()

	deadline := time.After(3 * time.Second)
	for {
		snap := s.store.Snapshot()
		if want(snap) {
			return snap
		}
		select {
		case <-ch:
		case <-deadline:
			t.Fatalf("timed out waiting for snapshot, last: %+v", snap)
		}
	}
}

func studentProfile() *session.Profile {
	active := true
	return &session.Profile{ID: "u1", Username: "maya", Role: "student", Active: &active}
}

func adminProfile() *session.Profile {
	active := true
	return &session.Profile{ID: "u9", Username: "omar", Role: "admin", Active: &active}
}
