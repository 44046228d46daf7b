package core

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type SubscribeRequest struct {
	Trigger   string
	TargetURL string
	// Zap identifies the workflow on the external platform. It widens the
	// uniqueness key so one owner can point several workflows at the same
	// trigger.
	Zap string
}

// Subscribe registers a REST hook target for the authenticated owner. An
// earlier subscription for the same (owner, trigger, zap), even an
// unsubscribed one, is revived under its original public id instead of
// creating a second row.
func (s *Service) Subscribe(ctx context.Context, auth AuthResult, req SubscribeRequest) (subscription Subscription, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"trigger":  req.Trigger,
		"owner_id": auth.Credential.OwnerID,
	}
	defer func() {
		s.observeOperation(ctx, startedAt, "subscribe", err, fields)
	}()

	if s == nil || s.subscriptionStore == nil {
		err = s.mapError(fmt.Errorf("core: subscribe requires a subscription store"))
		return Subscription{}, err
	}

	cfg, err := s.requireTrigger(req.Trigger)
	if err != nil {
		return Subscription{}, err
	}
	if err = s.mapScopeError(auth.Credential.CheckScope(cfg.RequiredScope)); err != nil {
		return Subscription{}, err
	}

	targetURL := strings.TrimSpace(req.TargetURL)
	if err = validateTargetURL(targetURL); err != nil {
		err = s.mapError(err)
		return Subscription{}, err
	}

	subscription, err = s.subscriptionStore.Subscribe(ctx, SubscribeInput{
		OwnerID:   auth.Credential.OwnerID,
		Trigger:   cfg.Name,
		Zap:       strings.TrimSpace(req.Zap),
		TargetURL: targetURL,
		Now:       time.Now().UTC(),
	})
	if err != nil {
		err = s.mapError(err)
		return Subscription{}, err
	}
	fields["subscription_id"] = subscription.ID
	return subscription, nil
}

// Unsubscribe deactivates a subscription by its public id. The row survives
// so a later subscribe for the same workflow reuses the id. Unsubscribing an
// already inactive subscription is a no-op.
func (s *Service) Unsubscribe(ctx context.Context, auth AuthResult, subscriptionID string) (subscription Subscription, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"subscription_id": subscriptionID,
		"owner_id":        auth.Credential.OwnerID,
	}
	defer func() {
		s.observeOperation(ctx, startedAt, "unsubscribe", err, fields)
	}()

	if s == nil || s.subscriptionStore == nil {
		err = s.mapError(fmt.Errorf("core: unsubscribe requires a subscription store"))
		return Subscription{}, err
	}
	subscriptionID = strings.TrimSpace(subscriptionID)
	if subscriptionID == "" {
		err = s.mapError(fmt.Errorf("core: subscription id is required"))
		return Subscription{}, err
	}

	existing, err := s.subscriptionStore.Get(ctx, subscriptionID)
	if err != nil {
		err = newTriggersError(
			"subscription "+subscriptionID+" not found",
			goerrors.CategoryNotFound,
			TriggersErrorSubscriptionNotFound,
		)
		return Subscription{}, err
	}
	if existing.OwnerID != auth.Credential.OwnerID {
		err = newTriggersError(
			"subscription belongs to another owner",
			goerrors.CategoryAuthz,
			TriggersErrorPrincipalMismatch,
		)
		return Subscription{}, err
	}
	if !existing.IsActive() {
		return existing, nil
	}

	subscription, err = s.subscriptionStore.Unsubscribe(ctx, subscriptionID, time.Now().UTC())
	if err != nil {
		err = s.mapError(err)
		return Subscription{}, err
	}
	return subscription, nil
}

func (s *Service) GetSubscription(ctx context.Context, subscriptionID string) (Subscription, error) {
	if s == nil || s.subscriptionStore == nil {
		return Subscription{}, s.mapError(fmt.Errorf("core: subscription store is required"))
	}
	subscription, err := s.subscriptionStore.Get(ctx, strings.TrimSpace(subscriptionID))
	if err != nil {
		return Subscription{}, newTriggersError(
			"subscription "+subscriptionID+" not found",
			goerrors.CategoryNotFound,
			TriggersErrorSubscriptionNotFound,
		)
	}
	return subscription, nil
}

func (s *Service) ActiveSubscriptions(ctx context.Context, trigger string) ([]Subscription, error) {
	if s == nil || s.subscriptionStore == nil {
		return nil, s.mapError(fmt.Errorf("core: subscription store is required"))
	}
	subscriptions, err := s.subscriptionStore.ActiveForTrigger(ctx, strings.TrimSpace(trigger))
	if err != nil {
		return nil, s.mapError(err)
	}
	return subscriptions, nil
}

func validateTargetURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("core: target url is required")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("core: target url is invalid: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("core: target url must be http or https")
	}
	if parsed.Host == "" {
		return fmt.Errorf("core: target url requires a host")
	}
	return nil
}
