package core

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type FireEventRequest struct {
	Trigger string
	// OwnerID narrows the fan-out to one owner's subscriptions. Empty means
	// every active subscription for the trigger.
	OwnerID string
	Payload any
}

type FireEventResult struct {
	Trigger    string
	Deliveries []DeliveryEvent
}

// FireEvent pushes an event to every matching active subscription. Delivery
// is at-least-once and fire-and-record: a target that times out, refuses the
// connection, or answers with garbage gets a delivery event with the failure
// captured, and the fan-out continues. Only a bad request or a broken store
// surfaces as an error.
func (s *Service) FireEvent(ctx context.Context, req FireEventRequest) (result FireEventResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"trigger": req.Trigger}
	defer func() {
		s.observeOperation(ctx, startedAt, "fire_event", err, fields)
	}()

	if s == nil || s.subscriptionStore == nil {
		err = s.mapError(fmt.Errorf("core: fire event requires a subscription store"))
		return FireEventResult{}, err
	}
	if s.deliverer == nil {
		err = s.mapError(fmt.Errorf("core: fire event requires a deliverer"))
		return FireEventResult{}, err
	}

	cfg, err := s.requireTrigger(req.Trigger)
	if err != nil {
		return FireEventResult{}, err
	}

	payload, marshalErr := json.Marshal(req.Payload)
	if marshalErr != nil {
		err = s.mapError(fmt.Errorf("core: event payload is not serializable: %w", marshalErr))
		return FireEventResult{}, err
	}

	subscriptions, err := s.subscriptionStore.ActiveForTrigger(ctx, cfg.Name)
	if err != nil {
		err = s.mapError(err)
		return FireEventResult{}, err
	}

	ownerFilter := strings.TrimSpace(req.OwnerID)
	deliveries := make([]DeliveryEvent, 0, len(subscriptions))
	for _, subscription := range subscriptions {
		if ownerFilter != "" && subscription.OwnerID != ownerFilter {
			continue
		}
		deliveries = append(deliveries, s.deliverOnce(ctx, cfg.Name, subscription, payload))
	}

	fields["deliveries"] = len(deliveries)
	return FireEventResult{Trigger: cfg.Name, Deliveries: deliveries}, nil
}

// DeliveryHistory lists the recorded webhook pushes for a subscription,
// newest first.
func (s *Service) DeliveryHistory(ctx context.Context, subscriptionID string, limit int) ([]DeliveryEvent, error) {
	if s == nil || s.deliveryEventStore == nil {
		return nil, s.mapError(fmt.Errorf("core: delivery event store is required"))
	}
	events, err := s.deliveryEventStore.ListForSubscription(ctx, strings.TrimSpace(subscriptionID), limit)
	if err != nil {
		return nil, s.mapError(err)
	}
	return events, nil
}

func (s *Service) deliverOnce(ctx context.Context, trigger string, subscription Subscription, payload []byte) DeliveryEvent {
	event := DeliveryEvent{
		ID:             uuid.NewString(),
		SubscriptionID: subscription.ID,
		OwnerID:        subscription.OwnerID,
		Trigger:        trigger,
		StartedAt:      time.Now().UTC(),
		RequestPayload: json.RawMessage(payload),
	}

	deliverCtx := ctx
	cancel := func() {}
	if timeout := s.config.Webhooks.DeliveryTimeout; timeout > 0 {
		deliverCtx, cancel = context.WithTimeout(ctx, timeout)
	}
	delivery, deliverErr := s.deliverer.Deliver(deliverCtx, subscription.TargetURL, payload)
	cancel()

	finishedAt := time.Now().UTC()
	event.FinishedAt = &finishedAt

	if deliverErr != nil {
		event.StatusCode = 0
		s.logWarn(ctx, "webhook delivery failed", map[string]any{
			"trigger":         trigger,
			"subscription_id": subscription.ID,
			"target_url":      subscription.TargetURL,
			"error":           deliverErr.Error(),
		})
	} else {
		event.StatusCode = delivery.StatusCode
		event.ResponsePayload = parseDeliveryResponse(delivery.Body)
		if event.ResponsePayload == nil && len(delivery.Body) > 0 {
			s.logWarn(ctx, "webhook response is not json", map[string]any{
				"trigger":         trigger,
				"subscription_id": subscription.ID,
				"status_code":     delivery.StatusCode,
			})
		}
	}

	if s.deliveryEventStore != nil {
		stored, storeErr := s.deliveryEventStore.Create(ctx, event)
		if storeErr != nil {
			s.logError(ctx, "delivery event store failed", map[string]any{
				"trigger":         trigger,
				"subscription_id": subscription.ID,
				"error":           storeErr.Error(),
			})
		} else {
			event = stored
		}
	}
	return event
}

// parseDeliveryResponse keeps the response only when it is valid JSON. Hook
// targets routinely answer with empty bodies or plain text; those are
// recorded as null rather than failing the delivery.
func parseDeliveryResponse(body []byte) json.RawMessage {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return nil
	}
	if !json.Valid([]byte(trimmed)) {
		return nil
	}
	return json.RawMessage(trimmed)
}
