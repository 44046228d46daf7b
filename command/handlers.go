package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-triggers/core"
)

// MutatingService is the slice of the trigger service the command handlers
// need. *core.Service satisfies it.
type MutatingService interface {
	CreateCredential(ctx context.Context, req core.CreateCredentialRequest) (core.Credential, error)
	SetCredentialScopes(ctx context.Context, id string, scopes []string) (core.Credential, error)
	RefreshCredential(ctx context.Context, id string) (core.Credential, error)
	RevokeCredential(ctx context.Context, id string) (core.Credential, error)
	ResetCredential(ctx context.Context, id string) (core.Credential, error)
	Subscribe(ctx context.Context, auth core.AuthResult, req core.SubscribeRequest) (core.Subscription, error)
	Unsubscribe(ctx context.Context, auth core.AuthResult, subscriptionID string) (core.Subscription, error)
	FireEvent(ctx context.Context, req core.FireEventRequest) (core.FireEventResult, error)
}

type CreateCredentialCommand struct {
	service MutatingService
}

func NewCreateCredentialCommand(service MutatingService) *CreateCredentialCommand {
	return &CreateCredentialCommand{service: service}
}

func (c *CreateCredentialCommand) Execute(ctx context.Context, msg CreateCredentialMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: credential service is required")
	}
	out, err := c.service.CreateCredential(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type SetCredentialScopesCommand struct {
	service MutatingService
}

func NewSetCredentialScopesCommand(service MutatingService) *SetCredentialScopesCommand {
	return &SetCredentialScopesCommand{service: service}
}

func (c *SetCredentialScopesCommand) Execute(ctx context.Context, msg SetCredentialScopesMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: credential service is required")
	}
	out, err := c.service.SetCredentialScopes(ctx, msg.CredentialID, msg.Scopes)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type RefreshCredentialCommand struct {
	service MutatingService
}

func NewRefreshCredentialCommand(service MutatingService) *RefreshCredentialCommand {
	return &RefreshCredentialCommand{service: service}
}

func (c *RefreshCredentialCommand) Execute(ctx context.Context, msg RefreshCredentialMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: credential service is required")
	}
	out, err := c.service.RefreshCredential(ctx, msg.CredentialID)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type RevokeCredentialCommand struct {
	service MutatingService
}

func NewRevokeCredentialCommand(service MutatingService) *RevokeCredentialCommand {
	return &RevokeCredentialCommand{service: service}
}

func (c *RevokeCredentialCommand) Execute(ctx context.Context, msg RevokeCredentialMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: credential service is required")
	}
	out, err := c.service.RevokeCredential(ctx, msg.CredentialID)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type ResetCredentialCommand struct {
	service MutatingService
}

func NewResetCredentialCommand(service MutatingService) *ResetCredentialCommand {
	return &ResetCredentialCommand{service: service}
}

func (c *ResetCredentialCommand) Execute(ctx context.Context, msg ResetCredentialMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: credential service is required")
	}
	out, err := c.service.ResetCredential(ctx, msg.CredentialID)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type SubscribeCommand struct {
	service MutatingService
}

func NewSubscribeCommand(service MutatingService) *SubscribeCommand {
	return &SubscribeCommand{service: service}
}

func (c *SubscribeCommand) Execute(ctx context.Context, msg SubscribeMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: subscription service is required")
	}
	out, err := c.service.Subscribe(ctx, msg.Auth, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type UnsubscribeCommand struct {
	service MutatingService
}

func NewUnsubscribeCommand(service MutatingService) *UnsubscribeCommand {
	return &UnsubscribeCommand{service: service}
}

func (c *UnsubscribeCommand) Execute(ctx context.Context, msg UnsubscribeMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: subscription service is required")
	}
	out, err := c.service.Unsubscribe(ctx, msg.Auth, msg.SubscriptionID)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type FireEventCommand struct {
	service MutatingService
}

func NewFireEventCommand(service MutatingService) *FireEventCommand {
	return &FireEventCommand{service: service}
}

func (c *FireEventCommand) Execute(ctx context.Context, msg FireEventMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: event service is required")
	}
	out, err := c.service.FireEvent(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
