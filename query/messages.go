package query

import (
	"fmt"
	"strings"
)

const (
	TypeGetCredential       = "triggers.query.credential.get"
	TypePollHistory         = "triggers.query.poll_history.list"
	TypeGetSubscription     = "triggers.query.subscription.get"
	TypeActiveSubscriptions = "triggers.query.subscription.list_active"
	TypeDeliveryHistory     = "triggers.query.delivery_history.list"
)

type GetCredentialMessage struct {
	CredentialID string
}

func (GetCredentialMessage) Type() string { return TypeGetCredential }

func (m GetCredentialMessage) Validate() error {
	if strings.TrimSpace(m.CredentialID) == "" {
		return fmt.Errorf("query: credential id is required")
	}
	return nil
}

type PollHistoryMessage struct {
	CredentialID string
	// Trigger narrows the history to one trigger. Empty means every trigger
	// the credential has polled.
	Trigger string
	Limit   int
}

func (PollHistoryMessage) Type() string { return TypePollHistory }

func (m PollHistoryMessage) Validate() error {
	if strings.TrimSpace(m.CredentialID) == "" {
		return fmt.Errorf("query: credential id is required")
	}
	if m.Limit < 0 {
		return fmt.Errorf("query: limit must be >= 0")
	}
	return nil
}

type GetSubscriptionMessage struct {
	SubscriptionID string
}

func (GetSubscriptionMessage) Type() string { return TypeGetSubscription }

func (m GetSubscriptionMessage) Validate() error {
	if strings.TrimSpace(m.SubscriptionID) == "" {
		return fmt.Errorf("query: subscription id is required")
	}
	return nil
}

type ActiveSubscriptionsMessage struct {
	Trigger string
}

func (ActiveSubscriptionsMessage) Type() string { return TypeActiveSubscriptions }

func (m ActiveSubscriptionsMessage) Validate() error {
	if strings.TrimSpace(m.Trigger) == "" {
		return fmt.Errorf("query: trigger is required")
	}
	return nil
}

type DeliveryHistoryMessage struct {
	SubscriptionID string
	Limit          int
}

func (DeliveryHistoryMessage) Type() string { return TypeDeliveryHistory }

func (m DeliveryHistoryMessage) Validate() error {
	if strings.TrimSpace(m.SubscriptionID) == "" {
		return fmt.Errorf("query: subscription id is required")
	}
	if m.Limit < 0 {
		return fmt.Errorf("query: limit must be >= 0")
	}
	return nil
}
