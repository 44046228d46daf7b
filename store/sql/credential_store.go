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

type CredentialStore struct {
	db   *bun.DB
	repo repository.Repository[*credentialRecord]
}

func NewCredentialStore(db *bun.DB) (*CredentialStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*credentialRecord](db, credentialHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid credential repository wiring: %w", err)
		}
	}
	return &CredentialStore{db: db, repo: repo}, nil
}

func (s *CredentialStore) Create(ctx context.Context, in core.CreateCredentialInput) (core.Credential, error) {
	if s == nil || s.db == nil {
		return core.Credential{}, fmt.Errorf("sqlstore: credential store is not configured")
	}
	if strings.TrimSpace(in.OwnerID) == "" {
		return core.Credential{}, fmt.Errorf("sqlstore: owner id is required")
	}
	if strings.TrimSpace(in.Secret) == "" {
		return core.Credential{}, fmt.Errorf("sqlstore: secret is required")
	}

	record := newCredentialRecord(in, time.Now().UTC())
	record.ID = uuid.NewString()
	if _, err := s.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return core.Credential{}, err
	}
	return record.toDomain(), nil
}

func (s *CredentialStore) GetByID(ctx context.Context, id string) (core.Credential, error) {
	record, err := s.findByColumn(ctx, "id", strings.TrimSpace(id))
	if err != nil {
		return core.Credential{}, err
	}
	return record.toDomain(), nil
}

func (s *CredentialStore) GetBySecret(ctx context.Context, secret string) (core.Credential, error) {
	record, err := s.findByColumn(ctx, "secret", strings.TrimSpace(secret))
	if err != nil {
		return core.Credential{}, err
	}
	return record.toDomain(), nil
}

func (s *CredentialStore) SetScopes(ctx context.Context, id string, scopes []string) (core.Credential, error) {
	if s == nil || s.db == nil {
		return core.Credential{}, fmt.Errorf("sqlstore: credential store is not configured")
	}
	record, err := s.findByColumn(ctx, "id", strings.TrimSpace(id))
	if err != nil {
		return core.Credential{}, err
	}
	record.Scopes = copyStringSlice(scopes)
	record.UpdatedAt = time.Now().UTC()
	if _, err := s.db.NewUpdate().
		Model(record).
		Column("scopes", "updated_at").
		Where("id = ?", record.ID).
		Exec(ctx); err != nil {
		return core.Credential{}, err
	}
	return record.toDomain(), nil
}

func (s *CredentialStore) Rotate(ctx context.Context, in core.RotateCredentialInput) (core.Credential, error) {
	if s == nil || s.db == nil {
		return core.Credential{}, fmt.Errorf("sqlstore: credential store is not configured")
	}
	record, err := s.findByColumn(ctx, "id", strings.TrimSpace(in.CredentialID))
	if err != nil {
		return core.Credential{}, err
	}
	rotatedAt := in.RotatedAt.UTC()
	record.Secret = strings.TrimSpace(in.Secret)
	record.RefreshedAt = &rotatedAt
	record.UpdatedAt = rotatedAt
	if _, err := s.db.NewUpdate().
		Model(record).
		Column("secret", "refreshed_at", "updated_at").
		Where("id = ?", record.ID).
		Exec(ctx); err != nil {
		return core.Credential{}, err
	}
	return record.toDomain(), nil
}

func (s *CredentialStore) MarkRevoked(ctx context.Context, id string, revokedAt time.Time) (core.Credential, error) {
	if s == nil || s.db == nil {
		return core.Credential{}, fmt.Errorf("sqlstore: credential store is not configured")
	}
	record, err := s.findByColumn(ctx, "id", strings.TrimSpace(id))
	if err != nil {
		return core.Credential{}, err
	}
	stamp := revokedAt.UTC()
	record.RevokedAt = &stamp
	record.UpdatedAt = stamp
	if _, err := s.db.NewUpdate().
		Model(record).
		Column("revoked_at", "updated_at").
		Where("id = ?", record.ID).
		Exec(ctx); err != nil {
		return core.Credential{}, err
	}
	return record.toDomain(), nil
}

// Reset rotates the secret, clears the revocation mark, and purges the
// credential's cursor ledger, poll history, and delivery history in a single
// transaction so a half-applied reset can never leak stale state.
func (s *CredentialStore) Reset(ctx context.Context, in core.ResetCredentialInput) (core.Credential, error) {
	if s == nil || s.db == nil {
		return core.Credential{}, fmt.Errorf("sqlstore: credential store is not configured")
	}
	id := strings.TrimSpace(in.CredentialID)
	if id == "" {
		return core.Credential{}, fmt.Errorf("sqlstore: credential id is required")
	}

	var out core.Credential
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record := &credentialRecord{}
		err := tx.NewSelect().
			Model(record).
			Where("?TableAlias.id = ?", id).
			Limit(1).
			Scan(ctx)
		if err != nil {
			if err == sql.ErrNoRows {
				return fmt.Errorf("sqlstore: credential %s not found", id)
			}
			return err
		}

		resetAt := in.ResetAt.UTC()
		record.Secret = strings.TrimSpace(in.Secret)
		record.RefreshedAt = &resetAt
		record.RevokedAt = nil
		record.UpdatedAt = resetAt
		if _, err := tx.NewUpdate().
			Model(record).
			Column("secret", "refreshed_at", "revoked_at", "updated_at").
			Where("id = ?", record.ID).
			Exec(ctx); err != nil {
			return err
		}

		if _, err := tx.NewDelete().
			Model((*cursorRecord)(nil)).
			Where("credential_id = ?", record.ID).
			Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewDelete().
			Model((*pollRequestRecord)(nil)).
			Where("credential_id = ?", record.ID).
			Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewDelete().
			Model((*deliveryEventRecord)(nil)).
			Where("owner_id = ?", record.OwnerID).
			Exec(ctx); err != nil {
			return err
		}

		out = record.toDomain()
		return nil
	})
	if err != nil {
		return core.Credential{}, err
	}
	return out, nil
}

func (s *CredentialStore) findByColumn(ctx context.Context, column, value string) (*credentialRecord, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: credential store is not configured")
	}
	if value == "" {
		return nil, fmt.Errorf("sqlstore: credential %s is required", column)
	}
	record := &credentialRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias."+column+" = ?", value).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("sqlstore: credential not found")
		}
		return nil, err
	}
	return record, nil
}

var _ core.CredentialStore = (*CredentialStore)(nil)
