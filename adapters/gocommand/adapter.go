// Package gocommand bridges the trigger command and query handlers into the
// go-command registry and dispatcher so hosts can route messages by type
// instead of holding handler references.
package gocommand

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-command"
	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	jobqueuecommand "github.com/goliatone/go-job/queue/command"
	triggers "github.com/goliatone/go-triggers"
	triggerscommand "github.com/goliatone/go-triggers/command"
	triggersquery "github.com/goliatone/go-triggers/query"
)

// ValidateMessageContract enforces Type() plus optional Validate() contract.
func ValidateMessageContract(msg any) error {
	if err := command.ValidateMessage(msg); err != nil {
		return err
	}
	m, ok := msg.(command.Message)
	if !ok {
		return fmt.Errorf("gocommand: message must implement Type() string")
	}
	if strings.TrimSpace(m.Type()) == "" {
		return fmt.Errorf("gocommand: message type is required")
	}
	return nil
}

type RegistryAdapter struct {
	registry *command.Registry
}

func NewRegistryAdapter(registry *command.Registry) *RegistryAdapter {
	if registry == nil {
		registry = command.NewRegistry()
	}
	return &RegistryAdapter{registry: registry}
}

func (a *RegistryAdapter) Registry() *command.Registry {
	if a == nil {
		return nil
	}
	return a.registry
}

func (a *RegistryAdapter) RegisterCommand(cmd any) error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return a.registry.RegisterCommand(cmd)
}

func (a *RegistryAdapter) RegisterQuery(qry any) error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return a.registry.RegisterCommand(qry)
}

func (a *RegistryAdapter) AddResolver(key string, resolver command.Resolver) error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return a.registry.AddResolver(strings.TrimSpace(key), resolver)
}

// AddQueueResolver mirrors registered commands into a go-job queue registry
// so the same messages can run inline or from the background queue.
func (a *RegistryAdapter) AddQueueResolver(key string, queueRegistry *jobqueuecommand.Registry) error {
	if queueRegistry == nil {
		return fmt.Errorf("gocommand: queue registry is required")
	}
	return a.AddResolver(key, jobqueuecommand.QueueResolver(queueRegistry))
}

func (a *RegistryAdapter) HasResolver(key string) bool {
	if a == nil || a.registry == nil {
		return false
	}
	return a.registry.HasResolver(strings.TrimSpace(key))
}

func (a *RegistryAdapter) Initialize() error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return a.registry.Initialize()
}

func SubscribeCommand[T any](cmd command.Commander[T], runnerOpts ...runner.Option) commanddispatcher.Subscription {
	return commanddispatcher.SubscribeCommand(cmd, runnerOpts...)
}

func SubscribeQuery[T any, R any](qry command.Querier[T, R], runnerOpts ...runner.Option) commanddispatcher.Subscription {
	return commanddispatcher.SubscribeQuery(qry, runnerOpts...)
}

func Dispatch[T any](ctx context.Context, msg T) error {
	return commanddispatcher.Dispatch(ctx, msg)
}

func Query[T any, R any](ctx context.Context, msg T) (R, error) {
	return commanddispatcher.Query[T, R](ctx, msg)
}

// WireService registers every trigger command and query against the adapter
// and subscribes them with the dispatcher. The returned subscriptions must
// be released by the caller on shutdown.
func WireService(
	adapter *RegistryAdapter,
	svc triggers.CommandQueryService,
	runnerOpts ...runner.Option,
) ([]commanddispatcher.Subscription, error) {
	if adapter == nil || adapter.registry == nil {
		return nil, fmt.Errorf("gocommand: registry is not configured")
	}
	if svc == nil {
		return nil, fmt.Errorf("gocommand: command/query service is required")
	}

	var subscriptions []commanddispatcher.Subscription
	release := func() {
		for _, subscription := range subscriptions {
			if subscription != nil {
				subscription.Unsubscribe()
			}
		}
	}
	keep := func(subscription commanddispatcher.Subscription, err error) error {
		if err != nil {
			release()
			return err
		}
		subscriptions = append(subscriptions, subscription)
		return nil
	}

	if err := keep(registerAndSubscribe(adapter, triggerscommand.NewCreateCredentialCommand(svc), runnerOpts...)); err != nil {
		return nil, err
	}
	if err := keep(registerAndSubscribe(adapter, triggerscommand.NewSetCredentialScopesCommand(svc), runnerOpts...)); err != nil {
		return nil, err
	}
	if err := keep(registerAndSubscribe(adapter, triggerscommand.NewRefreshCredentialCommand(svc), runnerOpts...)); err != nil {
		return nil, err
	}
	if err := keep(registerAndSubscribe(adapter, triggerscommand.NewRevokeCredentialCommand(svc), runnerOpts...)); err != nil {
		return nil, err
	}
	if err := keep(registerAndSubscribe(adapter, triggerscommand.NewResetCredentialCommand(svc), runnerOpts...)); err != nil {
		return nil, err
	}
	if err := keep(registerAndSubscribe(adapter, triggerscommand.NewSubscribeCommand(svc), runnerOpts...)); err != nil {
		return nil, err
	}
	if err := keep(registerAndSubscribe(adapter, triggerscommand.NewUnsubscribeCommand(svc), runnerOpts...)); err != nil {
		return nil, err
	}
	if err := keep(registerAndSubscribe(adapter, triggerscommand.NewFireEventCommand(svc), runnerOpts...)); err != nil {
		return nil, err
	}
	if err := keep(registerAndSubscribeQuery(adapter, triggersquery.NewGetCredentialQuery(svc), runnerOpts...)); err != nil {
		return nil, err
	}
	if err := keep(registerAndSubscribeQuery(adapter, triggersquery.NewPollHistoryQuery(svc), runnerOpts...)); err != nil {
		return nil, err
	}
	if err := keep(registerAndSubscribeQuery(adapter, triggersquery.NewGetSubscriptionQuery(svc), runnerOpts...)); err != nil {
		return nil, err
	}
	if err := keep(registerAndSubscribeQuery(adapter, triggersquery.NewActiveSubscriptionsQuery(svc), runnerOpts...)); err != nil {
		return nil, err
	}
	if err := keep(registerAndSubscribeQuery(adapter, triggersquery.NewDeliveryHistoryQuery(svc), runnerOpts...)); err != nil {
		return nil, err
	}
	return subscriptions, nil
}

func registerAndSubscribe[T any](
	adapter *RegistryAdapter,
	cmd command.Commander[T],
	runnerOpts ...runner.Option,
) (commanddispatcher.Subscription, error) {
	if cmd == nil {
		return nil, fmt.Errorf("gocommand: command is required")
	}
	subscription := SubscribeCommand(cmd, runnerOpts...)
	if err := adapter.RegisterCommand(cmd); err != nil {
		if subscription != nil {
			subscription.Unsubscribe()
		}
		return nil, err
	}
	return subscription, nil
}

func registerAndSubscribeQuery[T any, R any](
	adapter *RegistryAdapter,
	qry command.Querier[T, R],
	runnerOpts ...runner.Option,
) (commanddispatcher.Subscription, error) {
	if qry == nil {
		return nil, fmt.Errorf("gocommand: query is required")
	}
	subscription := SubscribeQuery(qry, runnerOpts...)
	if err := adapter.RegisterQuery(qry); err != nil {
		if subscription != nil {
			subscription.Unsubscribe()
		}
		return nil, err
	}
	return subscription, nil
}
