package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-triggers/core"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type DeliveryEventStore struct {
	db   *bun.DB
	repo repository.Repository[*deliveryEventRecord]
}

func NewDeliveryEventStore(db *bun.DB) (*DeliveryEventStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*deliveryEventRecord](db, deliveryEventHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid delivery event repository wiring: %w", err)
		}
	}
	return &DeliveryEventStore{db: db, repo: repo}, nil
}

func (s *DeliveryEventStore) Create(ctx context.Context, event core.DeliveryEvent) (core.DeliveryEvent, error) {
	if s == nil || s.db == nil {
		return core.DeliveryEvent{}, fmt.Errorf("sqlstore: delivery event store is not configured")
	}
	if strings.TrimSpace(event.SubscriptionID) == "" {
		return core.DeliveryEvent{}, fmt.Errorf("sqlstore: subscription id is required")
	}
	record := newDeliveryEventRecord(event, time.Now().UTC())
	if strings.TrimSpace(record.ID) == "" {
		record.ID = uuid.NewString()
	}
	if _, err := s.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return core.DeliveryEvent{}, err
	}
	return record.toDomain(), nil
}

func (s *DeliveryEventStore) ListForSubscription(ctx context.Context, subscriptionID string, limit int) ([]core.DeliveryEvent, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: delivery event store is not configured")
	}
	subscriptionID = strings.TrimSpace(subscriptionID)
	if subscriptionID == "" {
		return nil, fmt.Errorf("sqlstore: subscription id is required")
	}
	if limit <= 0 {
		limit = 50
	}

	records, _, err := s.repo.List(ctx,
		repository.SelectBy("subscription_id", "=", subscriptionID),
		repository.OrderBy("started_at DESC"),
		repository.SelectPaginate(limit, 0),
	)
	if err != nil {
		return nil, err
	}
	out := make([]core.DeliveryEvent, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}

func (s *DeliveryEventStore) DeleteForOwner(ctx context.Context, ownerID string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: delivery event store is not configured")
	}
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return fmt.Errorf("sqlstore: owner id is required")
	}
	_, err := s.db.NewDelete().
		Model((*deliveryEventRecord)(nil)).
		Where("owner_id = ?", ownerID).
		Exec(ctx)
	return err
}

func (s *DeliveryEventStore) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("sqlstore: delivery event store is not configured")
	}
	result, err := s.db.NewDelete().
		Model((*deliveryEventRecord)(nil)).
		Where("started_at < ?", cutoff.UTC()).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	purged, err := result.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return purged, nil
}

var _ core.DeliveryEventStore = (*DeliveryEventStore)(nil)
