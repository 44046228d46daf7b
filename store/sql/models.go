package sqlstore

import (
	"encoding/json"
	"time"

	"github.com/uptrace/bun"
)

type credentialRecord struct {
	bun.BaseModel `bun:"table:trigger_credentials,alias:tc"`

	ID          string     `bun:"id,pk"`
	OwnerID     string     `bun:"owner_id,notnull"`
	Secret      string     `bun:"secret,notnull"`
	Scopes      []string   `bun:"scopes,type:jsonb,notnull"`
	RefreshedAt *time.Time `bun:"refreshed_at,nullzero"`
	RevokedAt   *time.Time `bun:"revoked_at,nullzero"`
	CreatedAt   time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt   time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type cursorRecord struct {
	bun.BaseModel `bun:"table:trigger_cursors,alias:tcu"`

	ID           string    `bun:"id,pk"`
	CredentialID string    `bun:"credential_id,notnull"`
	Trigger      string    `bun:"trigger,notnull"`
	PolledAt     time.Time `bun:"polled_at,nullzero,notnull"`
	Count        int       `bun:"count,notnull"`
	NewestID     string    `bun:"newest_id"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type pollRequestRecord struct {
	bun.BaseModel `bun:"table:trigger_poll_requests,alias:tpr"`

	ID           string    `bun:"id,pk"`
	CredentialID string    `bun:"credential_id,notnull"`
	Trigger      string    `bun:"trigger,notnull"`
	PolledAt     time.Time `bun:"polled_at,nullzero,notnull"`
	Count        int       `bun:"count,notnull"`
	NewestID     string    `bun:"newest_id"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

type subscriptionRecord struct {
	bun.BaseModel `bun:"table:trigger_subscriptions,alias:ts"`

	ID             string     `bun:"id,pk"`
	OwnerID        string     `bun:"owner_id,notnull"`
	Trigger        string     `bun:"trigger,notnull"`
	Zap            string     `bun:"zap,notnull"`
	TargetURL      string     `bun:"target_url"`
	SubscribedAt   time.Time  `bun:"subscribed_at,nullzero,notnull"`
	UnsubscribedAt *time.Time `bun:"unsubscribed_at,nullzero"`
	CreatedAt      time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt      time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type deliveryEventRecord struct {
	bun.BaseModel `bun:"table:trigger_delivery_events,alias:tde"`

	ID              string          `bun:"id,pk"`
	SubscriptionID  string          `bun:"subscription_id,notnull"`
	OwnerID         string          `bun:"owner_id,notnull"`
	Trigger         string          `bun:"trigger,notnull"`
	StartedAt       time.Time       `bun:"started_at,nullzero,notnull"`
	FinishedAt      *time.Time      `bun:"finished_at,nullzero"`
	RequestPayload  json.RawMessage `bun:"request_payload,type:jsonb"`
	ResponsePayload json.RawMessage `bun:"response_payload,type:jsonb"`
	StatusCode      int             `bun:"status_code,notnull"`
	CreatedAt       time.Time       `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}
