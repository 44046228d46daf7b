// Package ratelimit throttles polling calls per credential and trigger.
// Zapier retries a throttled poll on its next interval, so answering 429
// with a retry hint is enough to smooth out misconfigured zaps that poll
// far more often than the feed changes.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-triggers/core"
)

var ErrStateNotFound = errors.New("ratelimit: state not found")

// Key identifies one throttle bucket. Every credential gets an independent
// window per trigger so a noisy zap cannot starve the owner's other zaps.
type Key struct {
	CredentialID string
	Trigger      string
}

// State tracks one bucket's current window.
type State struct {
	Key       Key
	Remaining int
	ResetAt   time.Time
	UpdatedAt time.Time
}

type StateStore interface {
	Get(ctx context.Context, key Key) (State, error)
	Upsert(ctx context.Context, state State) error
}

type ThrottledError struct {
	CredentialID string
	Trigger      string
	RetryAfter   time.Duration
}

func (e ThrottledError) Error() string {
	return fmt.Sprintf(
		"ratelimit: credential %q trigger %q throttled for %s",
		strings.TrimSpace(e.CredentialID),
		strings.TrimSpace(e.Trigger),
		e.RetryAfter,
	)
}

func (e ThrottledError) ToTriggersError() *goerrors.Error {
	metadata := map[string]any{
		"credential_id": strings.TrimSpace(e.CredentialID),
		"trigger":       strings.TrimSpace(e.Trigger),
	}
	if e.RetryAfter > 0 {
		metadata["retry_after_ms"] = e.RetryAfter.Milliseconds()
	}
	return goerrors.New(e.Error(), goerrors.CategoryRateLimit).
		WithCode(http.StatusTooManyRequests).
		WithTextCode(core.TriggersErrorRateLimited).
		WithMetadata(metadata)
}

// FixedWindowPolicy allows Limit polls per Window for each bucket. The
// window starts on the first poll after a reset rather than on wall clock
// boundaries, so buckets drain independently.
type FixedWindowPolicy struct {
	Store  StateStore
	Limit  int
	Window time.Duration
	Now    func() time.Time
}

func NewFixedWindowPolicy(store StateStore, limit int, window time.Duration) *FixedWindowPolicy {
	if limit <= 0 {
		limit = 60
	}
	if window <= 0 {
		window = time.Minute
	}
	return &FixedWindowPolicy{
		Store:  store,
		Limit:  limit,
		Window: window,
		Now:    func() time.Time { return time.Now().UTC() },
	}
}

// Allow consumes one poll from the bucket. It returns a rate limit error
// with a retry hint once the bucket is empty, and nil otherwise. A nil
// policy or store allows everything.
func (p *FixedWindowPolicy) Allow(ctx context.Context, credentialID string, trigger string) error {
	if p == nil || p.Store == nil {
		return nil
	}
	key := normalizeKey(Key{CredentialID: credentialID, Trigger: trigger})
	now := p.now()

	state, err := p.Store.Get(ctx, key)
	if err != nil && !errors.Is(err, ErrStateNotFound) {
		return err
	}
	if errors.Is(err, ErrStateNotFound) || !now.Before(state.ResetAt) {
		state = State{
			Key:       key,
			Remaining: p.limit(),
			ResetAt:   now.Add(p.window()),
		}
	}

	if state.Remaining <= 0 {
		return ThrottledError{
			CredentialID: key.CredentialID,
			Trigger:      key.Trigger,
			RetryAfter:   state.ResetAt.Sub(now),
		}.ToTriggersError()
	}

	state.Remaining--
	state.UpdatedAt = now
	return p.Store.Upsert(ctx, state)
}

func (p *FixedWindowPolicy) limit() int {
	if p != nil && p.Limit > 0 {
		return p.Limit
	}
	return 60
}

func (p *FixedWindowPolicy) window() time.Duration {
	if p != nil && p.Window > 0 {
		return p.Window
	}
	return time.Minute
}

func (p *FixedWindowPolicy) now() time.Time {
	if p != nil && p.Now != nil {
		return p.Now().UTC()
	}
	return time.Now().UTC()
}

func normalizeKey(key Key) Key {
	return Key{
		CredentialID: strings.TrimSpace(key.CredentialID),
		Trigger:      strings.TrimSpace(strings.ToLower(key.Trigger)),
	}
}

type MemoryStateStore struct {
	mu    sync.RWMutex
	items map[string]State
}

func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{items: map[string]State{}}
}

func (s *MemoryStateStore) Get(_ context.Context, key Key) (State, error) {
	if s == nil {
		return State{}, fmt.Errorf("ratelimit: state store is nil")
	}
	normalized := normalizeKey(key)
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.items[stateKey(normalized)]
	if !ok {
		return State{}, ErrStateNotFound
	}
	return state, nil
}

func (s *MemoryStateStore) Upsert(_ context.Context, state State) error {
	if s == nil {
		return fmt.Errorf("ratelimit: state store is nil")
	}
	state.Key = normalizeKey(state.Key)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[stateKey(state.Key)] = state
	return nil
}

func stateKey(key Key) string {
	return key.CredentialID + "|" + key.Trigger
}
