package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// ErrStoreClosed is an exported constant or variable used by the route guard engine.
var ErrStoreClosed = errors.New("session store closed")

// Store owns the client-side session snapshot: authentication status, loading flag,
// and the resolved user profile. It is the single writer; readers get copies.
//
// Initialization and refresh share one compare-and-swap gate, so at most one profile
// resolution is in flight at a time. Resolution runs on the store's own context and
// is never cancelled by callers; its outcome is observed through a later snapshot.
//
//	Docs: docs/session.md
type Store struct {
	resolver Resolver
	tokens   TokenCache

	mu   sync.RWMutex
	snap Snapshot

	subMu  sync.Mutex
	subs   map[int]chan struct{}
	subSeq int

	resolveGate atomic.Bool

	baseCtx context.Context
	cancel  context.CancelFunc
	closed  atomic.Bool
	wg      sync.WaitGroup
}

// NewStore creates a session [Store]. resolver turns a cached token into a profile
// during initialization; a nil resolver means cached tokens can never be restored
// and initialization always completes signed out. A nil tokens falls back to an
// in-memory cache.
//
//	Docs: docs/session.md
func NewStore(resolver Resolver, tokens TokenCache) *Store {
	if tokens == nil {
		tokens = NewMemoryTokenCache()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Store{
		resolver: resolver,
		tokens:   tokens,
		baseCtx:  ctx,
		cancel:   cancel,
	}
}

// Snapshot returns a consistent copy of the current session state. The returned
// value, including its Profile, is owned by the caller and never mutated by the
// store.
//
//	Performance: one RLock and a profile copy, no I/O.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snap
	snap.Profile = s.snap.Profile.Clone()
	return snap
}

// InitializeAuth starts restoring the session from the cached token. It returns
// immediately; the loading flag is published first and the outcome (authenticated,
// or signed out on a missing, rejected, or unresolvable token) lands as a later
// snapshot. Calls made while a resolution is already in flight, or after Close,
// are no-ops.
//
// InitializeAuth does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) InitializeAuth() {
	s.startResolve(true)
}

// Refresh re-resolves the profile for the current token without publishing a
// loading state. A definitive answer (fresh profile, or a rejected token) replaces
// the snapshot; a resolver outage leaves the snapshot untouched so a transient
// failure cannot sign the user out.
//
// Refresh does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) Refresh() {
	s.startResolve(false)
}

func (s *Store) startResolve(markLoading bool) {
	if s.closed.Load() {
		return
	}
	if !s.resolveGate.CompareAndSwap(false, true) {
		return
	}

	s.mu.Lock()
	if markLoading {
		s.snap.Loading = true
		s.snap.Version++
	}
	base := s.snap.Version
	s.mu.Unlock()

	if markLoading {
		s.notify()
	}

	s.wg.Add(1)
	go s.finishResolve(markLoading, base)
}

func (s *Store) finishResolve(initializing bool, base uint64) {
	defer s.wg.Done()

	profile, definitive := s.resolveProfile()

	s.mu.Lock()
	// A mutation that landed after this resolution started (Establish, Logout)
	// wins over the resolution outcome.
	overtaken := s.snap.Version != base
	switch {
	case overtaken && initializing:
		s.snap.Loading = false
		s.snap.Initialized = true
		s.snap.Version++
	case overtaken:
		// Background refresh outcome is stale; nothing to unwind.
	case !initializing && !definitive:
		// Resolver outage during refresh keeps the current snapshot.
	default:
		s.snap.Loading = false
		s.snap.Initialized = true
		if profile != nil {
			s.snap.Authenticated = true
			s.snap.Profile = profile
			if s.snap.SessionID == "" {
				s.snap.SessionID = uuid.NewString()
			}
		} else {
			s.snap.Authenticated = false
			s.snap.Profile = nil
			s.snap.SessionID = ""
		}
		s.snap.Version++
	}
	changed := s.snap.Version != base
	s.mu.Unlock()

	s.resolveGate.Store(false)
	if changed {
		s.notify()
	}
}

// resolveProfile loads the cached token and asks the resolver for the profile.
// definitive is false only for transient failures (cache read error, resolver
// outage); a missing or rejected token is a definitive signed-out answer.
func (s *Store) resolveProfile() (profile *Profile, definitive bool) {
	ctx := s.baseCtx
	if s.resolver == nil {
		return nil, true
	}

	token, err := s.tokens.Load(ctx)
	if err != nil {
		if errors.Is(err, ErrNoToken) {
			return nil, true
		}
		log.Print("goGuard: token cache read failed")
		return nil, false
	}
	if token == "" {
		return nil, true
	}

	resolved, err := s.resolver.Resolve(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			if clearErr := s.tokens.Clear(ctx); clearErr != nil && !errors.Is(clearErr, ErrNoToken) {
				log.Print("goGuard: token cache clear failed")
			}
			return nil, true
		}
		log.Print("goGuard: profile resolution failed")
		return nil, false
	}

	return resolved.Clone(), true
}

// Establish records a signed-in session after the host application completed a
// login: the token is persisted to the cache and the snapshot becomes
// authenticated with a copy of profile. The returned session ID is a fresh
// identifier for audit correlation, not a server-side session handle.
//
// Establish may return an error when input validation, dependency calls, or security checks fail.
func (s *Store) Establish(ctx context.Context, token string, profile *Profile) (string, error) {
	if s.closed.Load() {
		return "", ErrStoreClosed
	}
	if profile == nil {
		return "", errors.New("profile required")
	}

	if token != "" {
		if err := s.tokens.Store(ctx, token); err != nil {
			return "", err
		}
	}

	sessionID := uuid.NewString()

	s.mu.Lock()
	s.snap.Authenticated = true
	s.snap.Loading = false
	s.snap.Initialized = true
	s.snap.SessionID = sessionID
	s.snap.Profile = profile.Clone()
	s.snap.Version++
	s.mu.Unlock()

	s.notify()
	return sessionID, nil
}

// Logout clears the session synchronously: the snapshot is signed out before the
// cached token is cleared, so a failing cache still leaves the session signed out.
// Logout is idempotent; repeating it on a signed-out session does not bump the
// version. The cache is cleared either way, because a transient resolver failure
// can leave a token cached on a signed-out snapshot.
//
// Logout may return an error when input validation, dependency calls, or security checks fail.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	signedIn := s.snap.Authenticated || s.snap.Profile != nil || s.snap.SessionID != ""
	if signedIn {
		s.snap.Authenticated = false
		s.snap.Loading = false
		s.snap.Initialized = true
		s.snap.Profile = nil
		s.snap.SessionID = ""
		s.snap.Version++
	}
	s.mu.Unlock()

	if signedIn {
		s.notify()
	}

	if err := s.tokens.Clear(ctx); err != nil && !errors.Is(err, ErrNoToken) {
		return err
	}
	return nil
}

// Subscribe registers for change notifications. The channel coalesces: it holds at
// most one pending signal, so a burst of mutations may arrive as a single receive
// and subscribers re-read Snapshot rather than counting signals. The returned
// function cancels the subscription.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.subSeq
	s.subSeq++
	if s.subs == nil {
		s.subs = make(map[int]chan struct{})
	}
	ch := make(chan struct{}, 1)
	s.subs[id] = ch

	cancel := func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
	return ch, cancel
}

func (s *Store) notify() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Close cancels in-flight resolution, waits for it to settle, and detaches all
// subscribers. The store stays readable; InitializeAuth, Refresh, and Establish
// become no-ops or return [ErrStoreClosed].
func (s *Store) Close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}

	s.cancel()
	s.wg.Wait()

	s.subMu.Lock()
	s.subs = nil
	s.subMu.Unlock()
}
