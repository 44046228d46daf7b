package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-triggers/core"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type SubscriptionStore struct {
	db   *bun.DB
	repo repository.Repository[*subscriptionRecord]
}

func NewSubscriptionStore(db *bun.DB) (*SubscriptionStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*subscriptionRecord](db, subscriptionHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid subscription repository wiring: %w", err)
		}
	}
	return &SubscriptionStore{db: db, repo: repo}, nil
}

// Subscribe revives an existing row for (owner_id, trigger, zap) when one
// exists, active or not, so the public id survives unsubscribe/resubscribe
// cycles. A unique index on the triple backs the insert race: the loser of a
// concurrent first-subscribe finds the winner's row and updates it.
func (s *SubscriptionStore) Subscribe(ctx context.Context, in core.SubscribeInput) (core.Subscription, error) {
	if s == nil || s.db == nil {
		return core.Subscription{}, fmt.Errorf("sqlstore: subscription store is not configured")
	}
	in.OwnerID = strings.TrimSpace(in.OwnerID)
	in.Trigger = strings.TrimSpace(in.Trigger)
	in.Zap = strings.TrimSpace(in.Zap)
	in.TargetURL = strings.TrimSpace(in.TargetURL)
	if in.OwnerID == "" || in.Trigger == "" {
		return core.Subscription{}, fmt.Errorf("sqlstore: owner id and trigger are required")
	}
	if in.TargetURL == "" {
		return core.Subscription{}, fmt.Errorf("sqlstore: target url is required")
	}
	now := in.Now.UTC()
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var out core.Subscription
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record, err := findSubscriptionTx(ctx, tx, in.OwnerID, in.Trigger, in.Zap)
		if err != nil {
			return err
		}
		if record == nil {
			record = &subscriptionRecord{
				ID:           uuid.NewString(),
				OwnerID:      in.OwnerID,
				Trigger:      in.Trigger,
				Zap:          in.Zap,
				TargetURL:    in.TargetURL,
				SubscribedAt: now,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if _, insertErr := tx.NewInsert().Model(record).Exec(ctx); insertErr != nil {
				if isUniqueViolation(insertErr) {
					record, err = findSubscriptionTx(ctx, tx, in.OwnerID, in.Trigger, in.Zap)
					if err != nil {
						return err
					}
					if record == nil {
						return insertErr
					}
				} else {
					return insertErr
				}
			} else {
				out = record.toDomain()
				return nil
			}
		}

		record.TargetURL = in.TargetURL
		record.SubscribedAt = now
		record.UnsubscribedAt = nil
		record.UpdatedAt = now
		if _, updateErr := tx.NewUpdate().Model(record).Where("id = ?", record.ID).Exec(ctx); updateErr != nil {
			return updateErr
		}
		out = record.toDomain()
		return nil
	})
	if err != nil {
		return core.Subscription{}, err
	}
	return out, nil
}

func (s *SubscriptionStore) Unsubscribe(ctx context.Context, id string, at time.Time) (core.Subscription, error) {
	if s == nil || s.db == nil {
		return core.Subscription{}, fmt.Errorf("sqlstore: subscription store is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return core.Subscription{}, fmt.Errorf("sqlstore: subscription id is required")
	}

	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return core.Subscription{}, fmt.Errorf("sqlstore: subscription %s not found", id)
	}
	stamp := at.UTC()
	record.TargetURL = ""
	record.UnsubscribedAt = &stamp
	record.UpdatedAt = stamp
	if _, err := s.db.NewUpdate().
		Model(record).
		Column("target_url", "unsubscribed_at", "updated_at").
		Where("id = ?", record.ID).
		Exec(ctx); err != nil {
		return core.Subscription{}, err
	}
	return record.toDomain(), nil
}

func (s *SubscriptionStore) Get(ctx context.Context, id string) (core.Subscription, error) {
	if s == nil || s.repo == nil {
		return core.Subscription{}, fmt.Errorf("sqlstore: subscription store is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return core.Subscription{}, fmt.Errorf("sqlstore: subscription id is required")
	}
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return core.Subscription{}, fmt.Errorf("sqlstore: subscription %s not found", id)
	}
	return record.toDomain(), nil
}

// ActiveForTrigger lists live subscriptions, newest last. A blank trigger
// lists every active subscription regardless of trigger.
func (s *SubscriptionStore) ActiveForTrigger(ctx context.Context, trigger string) ([]core.Subscription, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: subscription store is not configured")
	}
	criteria := []repository.SelectCriteria{
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("?TableAlias.unsubscribed_at IS NULL").
				Where("?TableAlias.target_url <> ''")
		}),
		repository.OrderBy("subscribed_at ASC"),
	}
	if trigger := strings.TrimSpace(trigger); trigger != "" {
		criteria = append(criteria, repository.SelectBy("trigger", "=", trigger))
	}

	records, _, err := s.repo.List(ctx, criteria...)
	if err != nil {
		return nil, err
	}
	out := make([]core.Subscription, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}

func (s *SubscriptionStore) DeleteForOwner(ctx context.Context, ownerID string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: subscription store is not configured")
	}
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return fmt.Errorf("sqlstore: owner id is required")
	}
	_, err := s.db.NewDelete().
		Model((*subscriptionRecord)(nil)).
		Where("owner_id = ?", ownerID).
		Exec(ctx)
	return err
}

func findSubscriptionTx(ctx context.Context, tx bun.Tx, ownerID, trigger, zap string) (*subscriptionRecord, error) {
	record := &subscriptionRecord{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.owner_id = ?", ownerID).
		Where("?TableAlias.trigger = ?", trigger).
		Where("?TableAlias.zap = ?", zap).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}

func isUniqueViolation(err error) bool {
	message := strings.ToLower(strings.TrimSpace(err.Error()))
	return strings.Contains(message, "unique constraint failed") ||
		strings.Contains(message, "duplicate key value violates unique constraint")
}

var _ core.SubscriptionStore = (*SubscriptionStore)(nil)
