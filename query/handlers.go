package query

import (
	"context"

	"github.com/goliatone/go-triggers/core"
)

type CredentialReader interface {
	GetCredential(ctx context.Context, id string) (core.Credential, error)
}

type PollHistoryReader interface {
	PollHistory(ctx context.Context, credentialID string, trigger string, limit int) ([]core.PollRequest, error)
}

type SubscriptionReader interface {
	GetSubscription(ctx context.Context, id string) (core.Subscription, error)
	ActiveSubscriptions(ctx context.Context, trigger string) ([]core.Subscription, error)
}

type DeliveryHistoryReader interface {
	DeliveryHistory(ctx context.Context, subscriptionID string, limit int) ([]core.DeliveryEvent, error)
}

type GetCredentialQuery struct {
	reader CredentialReader
}

func NewGetCredentialQuery(reader CredentialReader) *GetCredentialQuery {
	return &GetCredentialQuery{reader: reader}
}

func (q *GetCredentialQuery) Query(ctx context.Context, msg GetCredentialMessage) (core.Credential, error) {
	if q == nil || q.reader == nil {
		return core.Credential{}, queryDependencyError("query: credential reader is required")
	}
	return q.reader.GetCredential(ctx, msg.CredentialID)
}

type PollHistoryQuery struct {
	reader PollHistoryReader
}

func NewPollHistoryQuery(reader PollHistoryReader) *PollHistoryQuery {
	return &PollHistoryQuery{reader: reader}
}

func (q *PollHistoryQuery) Query(ctx context.Context, msg PollHistoryMessage) ([]core.PollRequest, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: poll history reader is required")
	}
	return q.reader.PollHistory(ctx, msg.CredentialID, msg.Trigger, msg.Limit)
}

type GetSubscriptionQuery struct {
	reader SubscriptionReader
}

func NewGetSubscriptionQuery(reader SubscriptionReader) *GetSubscriptionQuery {
	return &GetSubscriptionQuery{reader: reader}
}

func (q *GetSubscriptionQuery) Query(ctx context.Context, msg GetSubscriptionMessage) (core.Subscription, error) {
	if q == nil || q.reader == nil {
		return core.Subscription{}, queryDependencyError("query: subscription reader is required")
	}
	return q.reader.GetSubscription(ctx, msg.SubscriptionID)
}

type ActiveSubscriptionsQuery struct {
	reader SubscriptionReader
}

func NewActiveSubscriptionsQuery(reader SubscriptionReader) *ActiveSubscriptionsQuery {
	return &ActiveSubscriptionsQuery{reader: reader}
}

func (q *ActiveSubscriptionsQuery) Query(ctx context.Context, msg ActiveSubscriptionsMessage) ([]core.Subscription, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: subscription reader is required")
	}
	return q.reader.ActiveSubscriptions(ctx, msg.Trigger)
}

type DeliveryHistoryQuery struct {
	reader DeliveryHistoryReader
}

func NewDeliveryHistoryQuery(reader DeliveryHistoryReader) *DeliveryHistoryQuery {
	return &DeliveryHistoryQuery{reader: reader}
}

func (q *DeliveryHistoryQuery) Query(ctx context.Context, msg DeliveryHistoryMessage) ([]core.DeliveryEvent, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: delivery history reader is required")
	}
	return q.reader.DeliveryHistory(ctx, msg.SubscriptionID, msg.Limit)
}
