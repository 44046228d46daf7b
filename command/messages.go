package command

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-triggers/core"
)

const (
	TypeCreateCredential    = "triggers.command.credential.create"
	TypeSetCredentialScopes = "triggers.command.credential.set_scopes"
	TypeRefreshCredential   = "triggers.command.credential.refresh"
	TypeRevokeCredential    = "triggers.command.credential.revoke"
	TypeResetCredential     = "triggers.command.credential.reset"
	TypeSubscribe           = "triggers.command.subscription.subscribe"
	TypeUnsubscribe         = "triggers.command.subscription.unsubscribe"
	TypeFireEvent           = "triggers.command.event.fire"
)

type CreateCredentialMessage struct {
	Request core.CreateCredentialRequest
}

func (CreateCredentialMessage) Type() string { return TypeCreateCredential }

func (m CreateCredentialMessage) Validate() error {
	if strings.TrimSpace(m.Request.OwnerID) == "" {
		return fmt.Errorf("command: owner id is required")
	}
	return nil
}

type SetCredentialScopesMessage struct {
	CredentialID string
	Scopes       []string
}

func (SetCredentialScopesMessage) Type() string { return TypeSetCredentialScopes }

func (m SetCredentialScopesMessage) Validate() error {
	if strings.TrimSpace(m.CredentialID) == "" {
		return fmt.Errorf("command: credential id is required")
	}
	return nil
}

type RefreshCredentialMessage struct {
	CredentialID string
}

func (RefreshCredentialMessage) Type() string { return TypeRefreshCredential }

func (m RefreshCredentialMessage) Validate() error {
	if strings.TrimSpace(m.CredentialID) == "" {
		return fmt.Errorf("command: credential id is required")
	}
	return nil
}

type RevokeCredentialMessage struct {
	CredentialID string
}

func (RevokeCredentialMessage) Type() string { return TypeRevokeCredential }

func (m RevokeCredentialMessage) Validate() error {
	if strings.TrimSpace(m.CredentialID) == "" {
		return fmt.Errorf("command: credential id is required")
	}
	return nil
}

type ResetCredentialMessage struct {
	CredentialID string
}

func (ResetCredentialMessage) Type() string { return TypeResetCredential }

func (m ResetCredentialMessage) Validate() error {
	if strings.TrimSpace(m.CredentialID) == "" {
		return fmt.Errorf("command: credential id is required")
	}
	return nil
}

type SubscribeMessage struct {
	Auth    core.AuthResult
	Request core.SubscribeRequest
}

func (SubscribeMessage) Type() string { return TypeSubscribe }

func (m SubscribeMessage) Validate() error {
	if strings.TrimSpace(m.Auth.Credential.ID) == "" {
		return fmt.Errorf("command: authenticated credential is required")
	}
	if strings.TrimSpace(m.Request.Trigger) == "" {
		return fmt.Errorf("command: trigger is required")
	}
	if strings.TrimSpace(m.Request.TargetURL) == "" {
		return fmt.Errorf("command: target url is required")
	}
	return nil
}

type UnsubscribeMessage struct {
	Auth           core.AuthResult
	SubscriptionID string
}

func (UnsubscribeMessage) Type() string { return TypeUnsubscribe }

func (m UnsubscribeMessage) Validate() error {
	if strings.TrimSpace(m.Auth.Credential.ID) == "" {
		return fmt.Errorf("command: authenticated credential is required")
	}
	if strings.TrimSpace(m.SubscriptionID) == "" {
		return fmt.Errorf("command: subscription id is required")
	}
	return nil
}

type FireEventMessage struct {
	Request core.FireEventRequest
}

func (FireEventMessage) Type() string { return TypeFireEvent }

func (m FireEventMessage) Validate() error {
	if strings.TrimSpace(m.Request.Trigger) == "" {
		return fmt.Errorf("command: trigger is required")
	}
	return nil
}
