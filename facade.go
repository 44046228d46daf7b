package triggers

import (
	"fmt"

	triggerscommand "github.com/goliatone/go-triggers/command"
	"github.com/goliatone/go-triggers/core"
	triggersquery "github.com/goliatone/go-triggers/query"
)

// CommandQueryService is the surface the facade wraps. *core.Service
// satisfies it.
type CommandQueryService interface {
	triggerscommand.MutatingService
	triggersquery.CredentialReader
	triggersquery.PollHistoryReader
	triggersquery.SubscriptionReader
	triggersquery.DeliveryHistoryReader
}

type Commands struct {
	CreateCredential    *triggerscommand.CreateCredentialCommand
	SetCredentialScopes *triggerscommand.SetCredentialScopesCommand
	RefreshCredential   *triggerscommand.RefreshCredentialCommand
	RevokeCredential    *triggerscommand.RevokeCredentialCommand
	ResetCredential     *triggerscommand.ResetCredentialCommand
	Subscribe           *triggerscommand.SubscribeCommand
	Unsubscribe         *triggerscommand.UnsubscribeCommand
	FireEvent           *triggerscommand.FireEventCommand
}

type Queries struct {
	GetCredential       *triggersquery.GetCredentialQuery
	PollHistory         *triggersquery.PollHistoryQuery
	GetSubscription     *triggersquery.GetSubscriptionQuery
	ActiveSubscriptions *triggersquery.ActiveSubscriptionsQuery
	DeliveryHistory     *triggersquery.DeliveryHistoryQuery
}

// Facade bundles the command and query handlers for one service instance so
// hosts can register them on a dispatcher in one pass.
type Facade struct {
	service  CommandQueryService
	commands Commands
	queries  Queries
}

func NewFacade(service CommandQueryService) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("triggers: command/query service is required")
	}

	facade := &Facade{service: service}
	facade.commands = Commands{
		CreateCredential:    triggerscommand.NewCreateCredentialCommand(service),
		SetCredentialScopes: triggerscommand.NewSetCredentialScopesCommand(service),
		RefreshCredential:   triggerscommand.NewRefreshCredentialCommand(service),
		RevokeCredential:    triggerscommand.NewRevokeCredentialCommand(service),
		ResetCredential:     triggerscommand.NewResetCredentialCommand(service),
		Subscribe:           triggerscommand.NewSubscribeCommand(service),
		Unsubscribe:         triggerscommand.NewUnsubscribeCommand(service),
		FireEvent:           triggerscommand.NewFireEventCommand(service),
	}
	facade.queries = Queries{
		GetCredential:       triggersquery.NewGetCredentialQuery(service),
		PollHistory:         triggersquery.NewPollHistoryQuery(service),
		GetSubscription:     triggersquery.NewGetSubscriptionQuery(service),
		ActiveSubscriptions: triggersquery.NewActiveSubscriptionsQuery(service),
		DeliveryHistory:     triggersquery.NewDeliveryHistoryQuery(service),
	}

	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() CommandQueryService {
	if f == nil {
		return nil
	}
	return f.service
}

var _ CommandQueryService = (*core.Service)(nil)
