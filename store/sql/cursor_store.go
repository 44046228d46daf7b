package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-triggers/core"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type CursorStore struct {
	db   *bun.DB
	repo repository.Repository[*cursorRecord]
}

func NewCursorStore(db *bun.DB) (*CursorStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*cursorRecord](db, cursorHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid cursor repository wiring: %w", err)
		}
	}
	return &CursorStore{db: db, repo: repo}, nil
}

func (s *CursorStore) Get(ctx context.Context, credentialID, trigger string) (core.CursorEntry, bool, error) {
	if s == nil || s.db == nil {
		return core.CursorEntry{}, false, fmt.Errorf("sqlstore: cursor store is not configured")
	}
	credentialID = strings.TrimSpace(credentialID)
	trigger = strings.TrimSpace(trigger)
	if credentialID == "" || trigger == "" {
		return core.CursorEntry{}, false, fmt.Errorf("sqlstore: credential id and trigger are required")
	}

	record := &cursorRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.credential_id = ?", credentialID).
		Where("?TableAlias.trigger = ?", trigger).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return core.CursorEntry{}, false, nil
		}
		return core.CursorEntry{}, false, err
	}
	return record.toDomain(), true, nil
}

// Advance is the single writer path for the cursor ledger. It runs as a
// find-then-insert-or-update transaction with a unique index on
// (credential_id, trigger) backing it, so two concurrent polls for the same
// pair serialize instead of forking the ledger. NewestID only moves on
// non-empty pages.
func (s *CursorStore) Advance(ctx context.Context, in core.AdvanceCursorInput) (core.CursorEntry, error) {
	if s == nil || s.db == nil {
		return core.CursorEntry{}, fmt.Errorf("sqlstore: cursor store is not configured")
	}
	in.CredentialID = strings.TrimSpace(in.CredentialID)
	in.Trigger = strings.TrimSpace(in.Trigger)
	if in.CredentialID == "" || in.Trigger == "" {
		return core.CursorEntry{}, fmt.Errorf("sqlstore: credential id and trigger are required")
	}

	var out core.CursorEntry
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record, err := findCursorTx(ctx, tx, in.CredentialID, in.Trigger)
		if err != nil {
			return err
		}
		if record == nil {
			record = &cursorRecord{
				ID:           uuid.NewString(),
				CredentialID: in.CredentialID,
				Trigger:      in.Trigger,
				PolledAt:     in.Timestamp.UTC(),
				Count:        in.Count,
				CreatedAt:    in.Timestamp.UTC(),
				UpdatedAt:    in.Timestamp.UTC(),
			}
			if in.Count > 0 {
				record.NewestID = strings.TrimSpace(in.PageNewestID)
			}
			if _, insertErr := tx.NewInsert().Model(record).Exec(ctx); insertErr != nil {
				if isUniqueViolation(insertErr) {
					record, err = findCursorTx(ctx, tx, in.CredentialID, in.Trigger)
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

		record.PolledAt = in.Timestamp.UTC()
		record.Count = in.Count
		if in.Count > 0 {
			record.NewestID = strings.TrimSpace(in.PageNewestID)
		}
		record.UpdatedAt = in.Timestamp.UTC()
		if _, updateErr := tx.NewUpdate().Model(record).Where("id = ?", record.ID).Exec(ctx); updateErr != nil {
			return updateErr
		}
		out = record.toDomain()
		return nil
	})
	if err != nil {
		return core.CursorEntry{}, err
	}
	return out, nil
}

func (s *CursorStore) DeleteForCredential(ctx context.Context, credentialID string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: cursor store is not configured")
	}
	credentialID = strings.TrimSpace(credentialID)
	if credentialID == "" {
		return fmt.Errorf("sqlstore: credential id is required")
	}
	_, err := s.db.NewDelete().
		Model((*cursorRecord)(nil)).
		Where("credential_id = ?", credentialID).
		Exec(ctx)
	return err
}

func findCursorTx(ctx context.Context, tx bun.Tx, credentialID, trigger string) (*cursorRecord, error) {
	record := &cursorRecord{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.credential_id = ?", credentialID).
		Where("?TableAlias.trigger = ?", trigger).
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

var _ core.CursorStore = (*CursorStore)(nil)
