package core

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// PollResult is one page of trigger objects plus the cursor state after the
// poll. Objects are serialized, newest first.
type PollResult struct {
	Trigger string
	Objects []FeedObject
	Count   int
	Cursor  CursorEntry
}

// PollTrigger runs one polling round trip for an authenticated caller:
// scope check, feed fetch from the stored cursor, serialization, and cursor
// advance. The cursor advances on every successful poll, including empty
// ones, but its NewestID only moves when the page had objects. A feed or
// validation failure leaves the cursor untouched so no object is ever
// skipped.
func (s *Service) PollTrigger(ctx context.Context, auth AuthResult, trigger string) (result PollResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"trigger":       trigger,
		"credential_id": auth.Credential.ID,
		"owner_id":      auth.Credential.OwnerID,
	}
	defer func() {
		s.observeOperation(ctx, startedAt, "poll_trigger", err, fields)
	}()

	cfg, err := s.requireTrigger(trigger)
	if err != nil {
		return PollResult{}, err
	}
	if err = s.mapScopeError(auth.Credential.CheckScope(cfg.RequiredScope)); err != nil {
		return PollResult{}, err
	}
	if s.cursorStore == nil {
		err = s.mapError(newTriggersError(
			"polling requires a cursor store",
			goerrors.CategoryInternal,
			TriggersErrorInternal,
		))
		return PollResult{}, err
	}
	feed := cfg.Feed
	if feed == nil {
		err = newTriggersError(
			"trigger "+cfg.Name+" has no feed",
			goerrors.CategoryInternal,
			TriggersErrorInternal,
		)
		return PollResult{}, err
	}

	cursor, _, err := s.cursorStore.Get(ctx, auth.Credential.ID, cfg.Name)
	if err != nil {
		err = s.mapError(err)
		return PollResult{}, err
	}

	objects, fetchErr := feed.Fetch(ctx, FeedRequest{
		Trigger:    cfg.Name,
		SinceID:    cursor.NewestID,
		PageSize:   s.config.Polling.PageSize,
		Credential: auth.Credential,
	})
	if fetchErr != nil {
		err = newTriggersError(
			"feed fetch for trigger "+cfg.Name+" failed: "+fetchErr.Error(),
			goerrors.CategoryInternal,
			TriggersErrorFeedFailed,
		)
		return PollResult{}, err
	}

	pageNewestID := ""
	for i, object := range objects {
		id, idErr := ObjectID(object)
		if idErr != nil {
			err = newTriggersError(
				"trigger "+cfg.Name+" returned an object without an id: "+idErr.Error(),
				goerrors.CategoryInternal,
				TriggersErrorMalformedFeed,
			)
			return PollResult{}, err
		}
		if i == 0 {
			pageNewestID = id
		}
	}

	serialized, err := cfg.serializer().Serialize(objects)
	if err != nil {
		err = s.mapError(err)
		return PollResult{}, err
	}

	// Once the page is fetched the cursor write must land even if the caller
	// goes away, otherwise the served objects would be re-delivered on the
	// next poll.
	writeCtx := context.WithoutCancel(ctx)
	now := time.Now().UTC()
	cursor, err = s.cursorStore.Advance(writeCtx, AdvanceCursorInput{
		CredentialID: auth.Credential.ID,
		Trigger:      cfg.Name,
		Timestamp:    now,
		Count:        len(objects),
		PageNewestID: pageNewestID,
	})
	if err != nil {
		err = s.mapError(err)
		return PollResult{}, err
	}

	s.appendPollRequest(writeCtx, AppendPollRequestInput{
		CredentialID: auth.Credential.ID,
		Trigger:      cfg.Name,
		Timestamp:    now,
		Count:        len(objects),
		NewestID:     cursor.NewestID,
	})

	fields["count"] = len(objects)
	fields["newest_id"] = cursor.NewestID
	return PollResult{
		Trigger: cfg.Name,
		Objects: serialized,
		Count:   len(objects),
		Cursor:  cursor,
	}, nil
}

// TriggerSample returns the objects the external platform uses while a zap
// is being configured: the static sample for hook triggers, or a live page
// for polling triggers.
func (s *Service) TriggerSample(ctx context.Context, auth AuthResult, trigger string) ([]FeedObject, error) {
	cfg, err := s.requireTrigger(trigger)
	if err != nil {
		return nil, err
	}
	if err := s.mapScopeError(auth.Credential.CheckScope(cfg.RequiredScope)); err != nil {
		return nil, err
	}
	if len(cfg.StaticSample) > 0 || cfg.Feed == nil {
		out := make([]FeedObject, len(cfg.StaticSample))
		copy(out, cfg.StaticSample)
		return out, nil
	}
	objects, err := cfg.Feed.Fetch(ctx, FeedRequest{
		Trigger:    cfg.Name,
		PageSize:   s.config.Polling.PageSize,
		Credential: auth.Credential,
	})
	if err != nil {
		return nil, s.mapError(err)
	}
	return objects, nil
}

// PollHistory exposes the append-only request log for diagnostics.
func (s *Service) PollHistory(ctx context.Context, credentialID, trigger string, limit int) ([]PollRequest, error) {
	if s == nil || s.pollRequestStore == nil {
		return nil, s.mapError(newTriggersError(
			"poll history requires a poll request store",
			goerrors.CategoryInternal,
			TriggersErrorInternal,
		))
	}
	records, err := s.pollRequestStore.ListForCredential(ctx, strings.TrimSpace(credentialID), strings.TrimSpace(trigger), limit)
	if err != nil {
		return nil, s.mapError(err)
	}
	return records, nil
}

// appendPollRequest applies the request log policy. Logging is best effort,
// a failed append never fails the poll.
func (s *Service) appendPollRequest(ctx context.Context, input AppendPollRequestInput) {
	if s == nil || s.pollRequestStore == nil {
		return
	}
	switch s.config.Polling.RequestLog {
	case RequestLogNone:
		return
	case RequestLogNonZero:
		if input.Count == 0 {
			return
		}
	}
	if _, err := s.pollRequestStore.Append(ctx, input); err != nil {
		s.logWarn(ctx, "poll request log append failed", map[string]any{
			"trigger":       input.Trigger,
			"credential_id": input.CredentialID,
			"error":         err.Error(),
		})
	}
}

func (s *Service) requireTrigger(name string) (TriggerConfig, error) {
	if s == nil || s.registry == nil {
		return TriggerConfig{}, s.mapError(ErrTriggerNotRegistered)
	}
	name = strings.TrimSpace(name)
	cfg, ok := s.registry.Get(name)
	if !ok {
		return TriggerConfig{}, newTriggersError(
			"trigger "+name+" is not registered",
			goerrors.CategoryNotFound,
			TriggersErrorTriggerNotFound,
		)
	}
	return cfg, nil
}

func (s *Service) mapScopeError(err error) error {
	if err == nil {
		return nil
	}
	return s.mapError(err)
}
