package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-triggers/core"
)

var (
	_ gocmd.Querier[GetCredentialMessage, core.Credential]           = (*GetCredentialQuery)(nil)
	_ gocmd.Querier[PollHistoryMessage, []core.PollRequest]          = (*PollHistoryQuery)(nil)
	_ gocmd.Querier[GetSubscriptionMessage, core.Subscription]       = (*GetSubscriptionQuery)(nil)
	_ gocmd.Querier[ActiveSubscriptionsMessage, []core.Subscription] = (*ActiveSubscriptionsQuery)(nil)
	_ gocmd.Querier[DeliveryHistoryMessage, []core.DeliveryEvent]    = (*DeliveryHistoryQuery)(nil)
)
