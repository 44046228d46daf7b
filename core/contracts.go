package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type CreateCredentialInput struct {
	OwnerID string
	Secret  string
	Scopes  []string
}

type RotateCredentialInput struct {
	CredentialID string
	Secret       string
	RotatedAt    time.Time
}

// ResetCredentialInput rotates the secret, clears any revocation, and purges
// the credential's poll and delivery history in one atomic step.
type ResetCredentialInput struct {
	CredentialID string
	Secret       string
	ResetAt      time.Time
}

type CredentialStore interface {
	Create(ctx context.Context, input CreateCredentialInput) (Credential, error)
	GetByID(ctx context.Context, id string) (Credential, error)
	GetBySecret(ctx context.Context, secret string) (Credential, error)
	SetScopes(ctx context.Context, id string, scopes []string) (Credential, error)
	Rotate(ctx context.Context, input RotateCredentialInput) (Credential, error)
	MarkRevoked(ctx context.Context, id string, revokedAt time.Time) (Credential, error)
	Reset(ctx context.Context, input ResetCredentialInput) (Credential, error)
}

// AdvanceCursorInput carries the outcome of one poll. PageNewestID is the id
// of the first object on the page, empty when the page was empty; the store
// decides whether NewestID moves.
type AdvanceCursorInput struct {
	CredentialID string
	Trigger      string
	Timestamp    time.Time
	Count        int
	PageNewestID string
}

// CursorStore is the per-(credential, trigger) high-water-mark ledger.
// Advance must behave as an atomic read-modify-write under concurrent polls.
type CursorStore interface {
	Get(ctx context.Context, credentialID, trigger string) (CursorEntry, bool, error)
	Advance(ctx context.Context, input AdvanceCursorInput) (CursorEntry, error)
	DeleteForCredential(ctx context.Context, credentialID string) error
}

type AppendPollRequestInput struct {
	CredentialID string
	Trigger      string
	Timestamp    time.Time
	Count        int
	NewestID     string
}

type PollRequestStore interface {
	Append(ctx context.Context, input AppendPollRequestInput) (PollRequest, error)
	ListForCredential(ctx context.Context, credentialID, trigger string, limit int) ([]PollRequest, error)
	DeleteForCredential(ctx context.Context, credentialID string) error
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type SubscribeInput struct {
	OwnerID   string
	Trigger   string
	Zap       string
	TargetURL string
	Now       time.Time
}

// SubscriptionStore persists REST hook registrations. Subscribe is
// find-or-revive: an existing row for (owner, trigger, zap), active or not,
// is re-pointed at the new target URL instead of creating a second row.
type SubscriptionStore interface {
	Subscribe(ctx context.Context, input SubscribeInput) (Subscription, error)
	Unsubscribe(ctx context.Context, id string, at time.Time) (Subscription, error)
	Get(ctx context.Context, id string) (Subscription, error)
	// ActiveForTrigger lists live subscriptions for a trigger; a blank
	// trigger lists all of them.
	ActiveForTrigger(ctx context.Context, trigger string) ([]Subscription, error)
	DeleteForOwner(ctx context.Context, ownerID string) error
}

type DeliveryEventStore interface {
	Create(ctx context.Context, event DeliveryEvent) (DeliveryEvent, error)
	ListForSubscription(ctx context.Context, subscriptionID string, limit int) ([]DeliveryEvent, error)
	DeleteForOwner(ctx context.Context, ownerID string) error
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// OwnerDirectory resolves the host application's principal behind a
// credential. Implementations should treat unknown owners as a lookup
// failure, not as inactive.
type OwnerDirectory interface {
	Resolve(ctx context.Context, ownerID string) (Owner, error)
}

// StaticOwnerDirectory serves a fixed owner set; ids it has never seen
// resolve as active owners named after their id. Useful for hosts without a
// user registry and for tests.
type StaticOwnerDirectory struct {
	owners map[string]Owner
}

func NewStaticOwnerDirectory(owners ...Owner) *StaticOwnerDirectory {
	dir := &StaticOwnerDirectory{owners: make(map[string]Owner, len(owners))}
	for _, owner := range owners {
		dir.owners[owner.ID] = owner
	}
	return dir
}

func (d *StaticOwnerDirectory) Resolve(_ context.Context, ownerID string) (Owner, error) {
	if d != nil {
		if owner, ok := d.owners[ownerID]; ok {
			return owner, nil
		}
	}
	return Owner{ID: ownerID, Name: ownerID, Active: true}, nil
}

// FeedRequest asks a feed for objects newer than SinceID, newest first.
// SinceID is empty on the very first poll for a credential.
type FeedRequest struct {
	Trigger    string
	SinceID    string
	PageSize   int
	Credential Credential
}

type Feed interface {
	Fetch(ctx context.Context, req FeedRequest) ([]FeedObject, error)
}

type FeedFunc func(ctx context.Context, req FeedRequest) ([]FeedObject, error)

func (f FeedFunc) Fetch(ctx context.Context, req FeedRequest) ([]FeedObject, error) {
	return f(ctx, req)
}

// Delivery is the observable outcome of one webhook push.
type Delivery struct {
	StatusCode int
	Body       []byte
}

type Deliverer interface {
	Deliver(ctx context.Context, targetURL string, payload []byte) (Delivery, error)
}

// TriggerService is the full operation surface consumed by the HTTP
// boundary and the command layer.
type TriggerService interface {
	CreateCredential(ctx context.Context, req CreateCredentialRequest) (Credential, error)
	GetCredential(ctx context.Context, id string) (Credential, error)
	SetCredentialScopes(ctx context.Context, id string, scopes []string) (Credential, error)
	AddCredentialScopes(ctx context.Context, id string, scopes []string) (Credential, error)
	RemoveCredentialScopes(ctx context.Context, id string, scopes []string) (Credential, error)
	RefreshCredential(ctx context.Context, id string) (Credential, error)
	RevokeCredential(ctx context.Context, id string) (Credential, error)
	ResetCredential(ctx context.Context, id string) (Credential, error)
	Authenticate(ctx context.Context, secret string) (AuthResult, error)
	AuthCheck(ctx context.Context, secret string) (AuthCheckResponse, error)
	PollTrigger(ctx context.Context, auth AuthResult, trigger string) (PollResult, error)
	TriggerSample(ctx context.Context, auth AuthResult, trigger string) ([]FeedObject, error)
	PollHistory(ctx context.Context, credentialID, trigger string, limit int) ([]PollRequest, error)
	Subscribe(ctx context.Context, auth AuthResult, req SubscribeRequest) (Subscription, error)
	Unsubscribe(ctx context.Context, auth AuthResult, subscriptionID string) (Subscription, error)
	GetSubscription(ctx context.Context, subscriptionID string) (Subscription, error)
	ActiveSubscriptions(ctx context.Context, trigger string) ([]Subscription, error)
	FireEvent(ctx context.Context, req FireEventRequest) (FireEventResult, error)
	DeliveryHistory(ctx context.Context, subscriptionID string, limit int) ([]DeliveryEvent, error)
}

var (
	_ OwnerDirectory = (*StaticOwnerDirectory)(nil)
	_ Feed           = FeedFunc(nil)
)
