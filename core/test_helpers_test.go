package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"
)

type memoryCredentialStore struct {
	mu   sync.Mutex
	next int
	byID map[string]Credential

	cursors    *memoryCursorStore
	requests   *memoryPollRequestStore
	deliveries *memoryDeliveryEventStore
}

func newMemoryCredentialStore() *memoryCredentialStore {
	return &memoryCredentialStore{byID: map[string]Credential{}}
}

func (s *memoryCredentialStore) Create(_ context.Context, in CreateCredentialInput) (Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if existing.Secret == in.Secret {
			return Credential{}, fmt.Errorf("unique constraint failed: credentials.secret")
		}
	}
	s.next++
	credential := Credential{
		ID:        fmt.Sprintf("cred_%d", s.next),
		OwnerID:   in.OwnerID,
		Secret:    in.Secret,
		Scopes:    append([]string(nil), in.Scopes...),
		CreatedAt: time.Now().UTC(),
	}
	s.byID[credential.ID] = credential
	return credential, nil
}

func (s *memoryCredentialStore) GetByID(_ context.Context, id string) (Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	credential, ok := s.byID[id]
	if !ok {
		return Credential{}, fmt.Errorf("credential %s not found", id)
	}
	return credential, nil
}

func (s *memoryCredentialStore) GetBySecret(_ context.Context, secret string) (Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, credential := range s.byID {
		if credential.Secret == secret {
			return credential, nil
		}
	}
	return Credential{}, fmt.Errorf("credential not found")
}

func (s *memoryCredentialStore) SetScopes(_ context.Context, id string, scopes []string) (Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	credential, ok := s.byID[id]
	if !ok {
		return Credential{}, fmt.Errorf("credential %s not found", id)
	}
	credential.Scopes = append([]string(nil), scopes...)
	s.byID[id] = credential
	return credential, nil
}

func (s *memoryCredentialStore) Rotate(_ context.Context, in RotateCredentialInput) (Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	credential, ok := s.byID[in.CredentialID]
	if !ok {
		return Credential{}, fmt.Errorf("credential %s not found", in.CredentialID)
	}
	rotatedAt := in.RotatedAt
	credential.Secret = in.Secret
	credential.RefreshedAt = &rotatedAt
	s.byID[in.CredentialID] = credential
	return credential, nil
}

func (s *memoryCredentialStore) MarkRevoked(_ context.Context, id string, revokedAt time.Time) (Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	credential, ok := s.byID[id]
	if !ok {
		return Credential{}, fmt.Errorf("credential %s not found", id)
	}
	credential.RevokedAt = &revokedAt
	s.byID[id] = credential
	return credential, nil
}

func (s *memoryCredentialStore) Reset(ctx context.Context, in ResetCredentialInput) (Credential, error) {
	s.mu.Lock()
	credential, ok := s.byID[in.CredentialID]
	if !ok {
		s.mu.Unlock()
		return Credential{}, fmt.Errorf("credential %s not found", in.CredentialID)
	}
	resetAt := in.ResetAt
	credential.Secret = in.Secret
	credential.RefreshedAt = &resetAt
	credential.RevokedAt = nil
	s.byID[in.CredentialID] = credential
	ownerID := credential.OwnerID
	s.mu.Unlock()

	if s.cursors != nil {
		_ = s.cursors.DeleteForCredential(ctx, in.CredentialID)
	}
	if s.requests != nil {
		_ = s.requests.DeleteForCredential(ctx, in.CredentialID)
	}
	if s.deliveries != nil {
		_ = s.deliveries.DeleteForOwner(ctx, ownerID)
	}
	return credential, nil
}

type memoryCursorStore struct {
	mu      sync.Mutex
	entries map[string]CursorEntry
}

func newMemoryCursorStore() *memoryCursorStore {
	return &memoryCursorStore{entries: map[string]CursorEntry{}}
}

func cursorKey(credentialID, trigger string) string {
	return credentialID + "/" + trigger
}

func (s *memoryCursorStore) Get(_ context.Context, credentialID, trigger string) (CursorEntry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[cursorKey(credentialID, trigger)]
	return entry, ok, nil
}

func (s *memoryCursorStore) Advance(_ context.Context, in AdvanceCursorInput) (CursorEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := cursorKey(in.CredentialID, in.Trigger)
	entry, ok := s.entries[key]
	if !ok {
		entry = CursorEntry{CredentialID: in.CredentialID, Trigger: in.Trigger}
	}
	entry.Timestamp = in.Timestamp
	entry.Count = in.Count
	if in.Count > 0 {
		entry.NewestID = in.PageNewestID
	}
	s.entries[key] = entry
	return entry, nil
}

func (s *memoryCursorStore) DeleteForCredential(_ context.Context, credentialID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.entries {
		if strings.HasPrefix(key, credentialID+"/") {
			delete(s.entries, key)
		}
	}
	return nil
}

type memoryPollRequestStore struct {
	mu      sync.Mutex
	next    int
	records []PollRequest
}

func newMemoryPollRequestStore() *memoryPollRequestStore {
	return &memoryPollRequestStore{}
}

func (s *memoryPollRequestStore) Append(_ context.Context, in AppendPollRequestInput) (PollRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	record := PollRequest{
		ID:           fmt.Sprintf("req_%d", s.next),
		CredentialID: in.CredentialID,
		Trigger:      in.Trigger,
		Timestamp:    in.Timestamp,
		Count:        in.Count,
		NewestID:     in.NewestID,
	}
	s.records = append(s.records, record)
	return record, nil
}

func (s *memoryPollRequestStore) ListForCredential(_ context.Context, credentialID, trigger string, limit int) ([]PollRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]PollRequest, 0, len(s.records))
	for _, record := range s.records {
		if record.CredentialID != credentialID {
			continue
		}
		if trigger != "" && record.Trigger != trigger {
			continue
		}
		out = append(out, record)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memoryPollRequestStore) DeleteForCredential(_ context.Context, credentialID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.records[:0]
	for _, record := range s.records {
		if record.CredentialID != credentialID {
			kept = append(kept, record)
		}
	}
	s.records = kept
	return nil
}

func (s *memoryPollRequestStore) PurgeOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var purged int64
	kept := s.records[:0]
	for _, record := range s.records {
		if record.Timestamp.Before(cutoff) {
			purged++
			continue
		}
		kept = append(kept, record)
	}
	s.records = kept
	return purged, nil
}

type memorySubscriptionStore struct {
	mu   sync.Mutex
	next int
	byID map[string]Subscription
}

func newMemorySubscriptionStore() *memorySubscriptionStore {
	return &memorySubscriptionStore{byID: map[string]Subscription{}}
}

func (s *memorySubscriptionStore) Subscribe(_ context.Context, in SubscribeInput) (Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, existing := range s.byID {
		if existing.OwnerID == in.OwnerID && existing.Trigger == in.Trigger && existing.Zap == in.Zap {
			existing.TargetURL = in.TargetURL
			existing.SubscribedAt = in.Now
			existing.UnsubscribedAt = nil
			existing.UpdatedAt = in.Now
			s.byID[id] = existing
			return existing, nil
		}
	}
	s.next++
	subscription := Subscription{
		ID:           fmt.Sprintf("sub_%d", s.next),
		OwnerID:      in.OwnerID,
		Trigger:      in.Trigger,
		Zap:          in.Zap,
		TargetURL:    in.TargetURL,
		SubscribedAt: in.Now,
		CreatedAt:    in.Now,
		UpdatedAt:    in.Now,
	}
	s.byID[subscription.ID] = subscription
	return subscription, nil
}

func (s *memorySubscriptionStore) Unsubscribe(_ context.Context, id string, at time.Time) (Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	subscription, ok := s.byID[id]
	if !ok {
		return Subscription{}, fmt.Errorf("subscription %s not found", id)
	}
	unsubscribedAt := at
	subscription.TargetURL = ""
	subscription.UnsubscribedAt = &unsubscribedAt
	subscription.UpdatedAt = at
	s.byID[id] = subscription
	return subscription, nil
}

func (s *memorySubscriptionStore) Get(_ context.Context, id string) (Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	subscription, ok := s.byID[id]
	if !ok {
		return Subscription{}, fmt.Errorf("subscription %s not found", id)
	}
	return subscription, nil
}

func (s *memorySubscriptionStore) ActiveForTrigger(_ context.Context, trigger string) ([]Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []Subscription{}
	for _, subscription := range s.byID {
		if (trigger == "" || subscription.Trigger == trigger) && subscription.IsActive() {
			out = append(out, subscription)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memorySubscriptionStore) DeleteForOwner(_ context.Context, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, subscription := range s.byID {
		if subscription.OwnerID == ownerID {
			delete(s.byID, id)
		}
	}
	return nil
}

type memoryDeliveryEventStore struct {
	mu     sync.Mutex
	events []DeliveryEvent
}

func newMemoryDeliveryEventStore() *memoryDeliveryEventStore {
	return &memoryDeliveryEventStore{}
}

func (s *memoryDeliveryEventStore) Create(_ context.Context, event DeliveryEvent) (DeliveryEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	event.CreatedAt = time.Now().UTC()
	s.events = append(s.events, event)
	return event, nil
}

func (s *memoryDeliveryEventStore) ListForSubscription(_ context.Context, subscriptionID string, limit int) ([]DeliveryEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []DeliveryEvent{}
	for _, event := range s.events {
		if event.SubscriptionID == subscriptionID {
			out = append(out, event)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memoryDeliveryEventStore) DeleteForOwner(_ context.Context, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.events[:0]
	for _, event := range s.events {
		if event.OwnerID != ownerID {
			kept = append(kept, event)
		}
	}
	s.events = kept
	return nil
}

func (s *memoryDeliveryEventStore) PurgeOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var purged int64
	kept := s.events[:0]
	for _, event := range s.events {
		if event.StartedAt.Before(cutoff) {
			purged++
			continue
		}
		kept = append(kept, event)
	}
	s.events = kept
	return purged, nil
}

type stubDeliverer struct {
	mu         sync.Mutex
	calls      []stubDeliveryCall
	statusCode int
	body       []byte
	err        error
}

type stubDeliveryCall struct {
	TargetURL string
	Payload   []byte
}

func (d *stubDeliverer) Deliver(_ context.Context, targetURL string, payload []byte) (Delivery, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, stubDeliveryCall{TargetURL: targetURL, Payload: append([]byte(nil), payload...)})
	if d.err != nil {
		return Delivery{}, d.err
	}
	status := d.statusCode
	if status == 0 {
		status = 200
	}
	return Delivery{StatusCode: status, Body: append([]byte(nil), d.body...)}, nil
}

type testEnv struct {
	service     *Service
	credentials *memoryCredentialStore
	cursors     *memoryCursorStore
	requests    *memoryPollRequestStore
	subs        *memorySubscriptionStore
	deliveries  *memoryDeliveryEventStore
	deliverer   *stubDeliverer
}

func newTestService(t *testing.T, cfg Config, opts ...Option) *testEnv {
	t.Helper()
	credentials := newMemoryCredentialStore()
	cursors := newMemoryCursorStore()
	requests := newMemoryPollRequestStore()
	subs := newMemorySubscriptionStore()
	deliveries := newMemoryDeliveryEventStore()
	deliverer := &stubDeliverer{}

	credentials.cursors = cursors
	credentials.requests = requests
	credentials.deliveries = deliveries

	allOpts := append([]Option{
		WithCredentialStore(credentials),
		WithCursorStore(cursors),
		WithPollRequestStore(requests),
		WithSubscriptionStore(subs),
		WithDeliveryEventStore(deliveries),
		WithDeliverer(deliverer),
	}, opts...)

	service, err := NewService(cfg, allOpts...)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return &testEnv{
		service:     service,
		credentials: credentials,
		cursors:     cursors,
		requests:    requests,
		subs:        subs,
		deliveries:  deliveries,
		deliverer:   deliverer,
	}
}

var (
	_ CredentialStore    = (*memoryCredentialStore)(nil)
	_ CursorStore        = (*memoryCursorStore)(nil)
	_ PollRequestStore   = (*memoryPollRequestStore)(nil)
	_ SubscriptionStore  = (*memorySubscriptionStore)(nil)
	_ DeliveryEventStore = (*memoryDeliveryEventStore)(nil)
	_ Deliverer          = (*stubDeliverer)(nil)
)
