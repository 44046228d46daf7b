package sqlstore

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/goliatone/go-triggers/core"
)

func newCredentialRecord(in core.CreateCredentialInput, now time.Time) *credentialRecord {
	return &credentialRecord{
		OwnerID:   strings.TrimSpace(in.OwnerID),
		Secret:    strings.TrimSpace(in.Secret),
		Scopes:    copyStringSlice(in.Scopes),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (r *credentialRecord) toDomain() core.Credential {
	if r == nil {
		return core.Credential{}
	}
	return core.Credential{
		ID:          r.ID,
		OwnerID:     r.OwnerID,
		Secret:      r.Secret,
		Scopes:      copyStringSlice(r.Scopes),
		CreatedAt:   r.CreatedAt,
		RefreshedAt: copyTimePtr(r.RefreshedAt),
		RevokedAt:   copyTimePtr(r.RevokedAt),
	}
}

func (r *cursorRecord) toDomain() core.CursorEntry {
	if r == nil {
		return core.CursorEntry{}
	}
	return core.CursorEntry{
		CredentialID: r.CredentialID,
		Trigger:      r.Trigger,
		Timestamp:    r.PolledAt,
		Count:        r.Count,
		NewestID:     r.NewestID,
	}
}

func (r *pollRequestRecord) toDomain() core.PollRequest {
	if r == nil {
		return core.PollRequest{}
	}
	return core.PollRequest{
		ID:           r.ID,
		CredentialID: r.CredentialID,
		Trigger:      r.Trigger,
		Timestamp:    r.PolledAt,
		Count:        r.Count,
		NewestID:     r.NewestID,
	}
}

func (r *subscriptionRecord) toDomain() core.Subscription {
	if r == nil {
		return core.Subscription{}
	}
	return core.Subscription{
		ID:             r.ID,
		OwnerID:        r.OwnerID,
		Trigger:        r.Trigger,
		Zap:            r.Zap,
		TargetURL:      r.TargetURL,
		SubscribedAt:   r.SubscribedAt,
		UnsubscribedAt: copyTimePtr(r.UnsubscribedAt),
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func newDeliveryEventRecord(event core.DeliveryEvent, now time.Time) *deliveryEventRecord {
	return &deliveryEventRecord{
		ID:              event.ID,
		SubscriptionID:  event.SubscriptionID,
		OwnerID:         event.OwnerID,
		Trigger:         event.Trigger,
		StartedAt:       event.StartedAt,
		FinishedAt:      copyTimePtr(event.FinishedAt),
		RequestPayload:  copyRawJSON(event.RequestPayload),
		ResponsePayload: copyRawJSON(event.ResponsePayload),
		StatusCode:      event.StatusCode,
		CreatedAt:       now,
	}
}

func (r *deliveryEventRecord) toDomain() core.DeliveryEvent {
	if r == nil {
		return core.DeliveryEvent{}
	}
	return core.DeliveryEvent{
		ID:              r.ID,
		SubscriptionID:  r.SubscriptionID,
		OwnerID:         r.OwnerID,
		Trigger:         r.Trigger,
		StartedAt:       r.StartedAt,
		FinishedAt:      copyTimePtr(r.FinishedAt),
		RequestPayload:  copyRawJSON(r.RequestPayload),
		ResponsePayload: copyRawJSON(r.ResponsePayload),
		StatusCode:      r.StatusCode,
		CreatedAt:       r.CreatedAt,
	}
}

func copyStringSlice(in []string) []string {
	if in == nil {
		return []string{}
	}
	return append([]string(nil), in...)
}

func copyTimePtr(in *time.Time) *time.Time {
	if in == nil {
		return nil
	}
	value := *in
	return &value
}

func copyRawJSON(in json.RawMessage) json.RawMessage {
	if in == nil {
		return nil
	}
	return append(json.RawMessage(nil), in...)
}
