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

type PollRequestStore struct {
	db   *bun.DB
	repo repository.Repository[*pollRequestRecord]
}

func NewPollRequestStore(db *bun.DB) (*PollRequestStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*pollRequestRecord](db, pollRequestHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid poll request repository wiring: %w", err)
		}
	}
	return &PollRequestStore{db: db, repo: repo}, nil
}

func (s *PollRequestStore) Append(ctx context.Context, in core.AppendPollRequestInput) (core.PollRequest, error) {
	if s == nil || s.db == nil {
		return core.PollRequest{}, fmt.Errorf("sqlstore: poll request store is not configured")
	}
	in.CredentialID = strings.TrimSpace(in.CredentialID)
	in.Trigger = strings.TrimSpace(in.Trigger)
	if in.CredentialID == "" || in.Trigger == "" {
		return core.PollRequest{}, fmt.Errorf("sqlstore: credential id and trigger are required")
	}

	record := &pollRequestRecord{
		ID:           uuid.NewString(),
		CredentialID: in.CredentialID,
		Trigger:      in.Trigger,
		PolledAt:     in.Timestamp.UTC(),
		Count:        in.Count,
		NewestID:     strings.TrimSpace(in.NewestID),
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := s.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return core.PollRequest{}, err
	}
	return record.toDomain(), nil
}

func (s *PollRequestStore) ListForCredential(ctx context.Context, credentialID, trigger string, limit int) ([]core.PollRequest, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: poll request store is not configured")
	}
	credentialID = strings.TrimSpace(credentialID)
	if credentialID == "" {
		return nil, fmt.Errorf("sqlstore: credential id is required")
	}
	if limit <= 0 {
		limit = 50
	}

	criteria := []repository.SelectCriteria{
		repository.SelectBy("credential_id", "=", credentialID),
		repository.OrderBy("polled_at DESC"),
		repository.SelectPaginate(limit, 0),
	}
	if trigger = strings.TrimSpace(trigger); trigger != "" {
		criteria = append(criteria, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.trigger = ?", trigger)
		}))
	}
	records, _, err := s.repo.List(ctx, criteria...)
	if err != nil {
		return nil, err
	}
	out := make([]core.PollRequest, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}

func (s *PollRequestStore) DeleteForCredential(ctx context.Context, credentialID string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: poll request store is not configured")
	}
	credentialID = strings.TrimSpace(credentialID)
	if credentialID == "" {
		return fmt.Errorf("sqlstore: credential id is required")
	}
	_, err := s.db.NewDelete().
		Model((*pollRequestRecord)(nil)).
		Where("credential_id = ?", credentialID).
		Exec(ctx)
	return err
}

func (s *PollRequestStore) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("sqlstore: poll request store is not configured")
	}
	result, err := s.db.NewDelete().
		Model((*pollRequestRecord)(nil)).
		Where("polled_at < ?", cutoff.UTC()).
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

var _ core.PollRequestStore = (*PollRequestStore)(nil)
