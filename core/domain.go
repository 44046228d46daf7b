package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrTriggerNotRegistered = errors.New("core: trigger not registered")
	ErrFeedObjectWithoutID  = errors.New("core: feed object has no id field")
)

// Owner is the collaborator the host application knows as the token's
// principal. The integration layer never creates owners, it only checks
// whether they are still allowed to connect.
type Owner struct {
	ID     string
	Name   string
	Active bool
}

// Credential is a long-lived opaque secret an external poller presents on
// every request. A credential is active until it is revoked; refresh rotates
// the secret without touching the revocation state.
type Credential struct {
	ID          string
	OwnerID     string
	Secret      string
	Scopes      []string
	CreatedAt   time.Time
	RefreshedAt *time.Time
	RevokedAt   *time.Time
}

func (c Credential) IsActive() bool {
	return c.RevokedAt == nil
}

// ShortSecret returns the leading segment of the secret, safe to show in
// connection labels and logs.
func (c Credential) ShortSecret() string {
	secret := strings.TrimSpace(c.Secret)
	if idx := strings.Index(secret, "-"); idx > 0 {
		return secret[:idx]
	}
	return secret
}

// ConnectionLabel renders the label the external platform shows next to a
// connected account, e.g. "ada [8b2f91aa]".
func (c Credential) ConnectionLabel(ownerName string) string {
	name := strings.TrimSpace(ownerName)
	if name == "" {
		name = c.OwnerID
	}
	return fmt.Sprintf("%s [%s]", name, c.ShortSecret())
}

// NewSecret mints a fresh credential secret.
func NewSecret() string {
	return uuid.NewString()
}

// CursorEntry records, per credential and trigger, the identifier of the
// newest object ever handed out. NewestID only moves forward: an empty poll
// keeps the previous value while Timestamp and Count still update.
type CursorEntry struct {
	CredentialID string
	Trigger      string
	Timestamp    time.Time
	Count        int
	NewestID     string
}

// PollRequest is one line of the append-only poll history. Unlike the
// cursor ledger it is subject to the request log policy and to retention.
type PollRequest struct {
	ID           string
	CredentialID string
	Trigger      string
	Timestamp    time.Time
	Count        int
	NewestID     string
}

// Subscription is a REST hook registration. The ID is the public handle the
// external platform stores and later presents on unsubscribe; it survives
// unsubscribe so a re-subscribe for the same (owner, trigger, zap) reuses it.
type Subscription struct {
	ID             string
	OwnerID        string
	Trigger        string
	Zap            string
	TargetURL      string
	SubscribedAt   time.Time
	UnsubscribedAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (s Subscription) IsActive() bool {
	return s.UnsubscribedAt == nil && strings.TrimSpace(s.TargetURL) != ""
}

// DeliveryEvent is the audit record of a single webhook push. StatusCode 0
// marks a delivery that never produced an HTTP response.
type DeliveryEvent struct {
	ID              string
	SubscriptionID  string
	OwnerID         string
	Trigger         string
	StartedAt       time.Time
	FinishedAt      *time.Time
	RequestPayload  json.RawMessage
	ResponsePayload json.RawMessage
	StatusCode      int
	CreatedAt       time.Time
}

func (e DeliveryEvent) IsComplete() bool {
	return e.FinishedAt != nil
}

func (e DeliveryEvent) Duration() (time.Duration, bool) {
	if e.FinishedAt == nil {
		return 0, false
	}
	return e.FinishedAt.Sub(e.StartedAt), true
}

// FeedObject is one element of a trigger feed page. Feeds return objects
// newest first and every object carries an "id" key.
type FeedObject = map[string]any

// ObjectID extracts the identifier of a feed object. String and numeric ids
// are both accepted; numbers are normalized to their decimal form.
func ObjectID(obj FeedObject) (string, error) {
	raw, ok := obj["id"]
	if !ok {
		return "", ErrFeedObjectWithoutID
	}
	switch value := raw.(type) {
	case string:
		if strings.TrimSpace(value) == "" {
			return "", ErrFeedObjectWithoutID
		}
		return value, nil
	case json.Number:
		return value.String(), nil
	case int:
		return strconv.Itoa(value), nil
	case int64:
		return strconv.FormatInt(value, 10), nil
	case float64:
		if value == float64(int64(value)) {
			return strconv.FormatInt(int64(value), 10), nil
		}
		return strconv.FormatFloat(value, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("core: feed object id has unsupported type %T", raw)
	}
}
