package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type CreateCredentialRequest struct {
	OwnerID string
	Scopes  []string
	// Secret is minted when empty. Supplying one is mostly useful in tests
	// and migrations from another token system.
	Secret string
}

func (s *Service) CreateCredential(ctx context.Context, req CreateCredentialRequest) (Credential, error) {
	if s == nil || s.credentialStore == nil {
		return Credential{}, s.mapError(fmt.Errorf("core: credential store is required"))
	}

	ownerID := strings.TrimSpace(req.OwnerID)
	if ownerID == "" {
		return Credential{}, s.mapError(fmt.Errorf("core: owner id is required"))
	}
	secret := strings.TrimSpace(req.Secret)
	if secret == "" {
		secret = NewSecret()
	}

	credential, err := s.credentialStore.Create(ctx, CreateCredentialInput{
		OwnerID: ownerID,
		Secret:  secret,
		Scopes:  NormalizeScopes(req.Scopes),
	})
	if err != nil {
		return Credential{}, s.mapError(err)
	}

	s.logInfo(ctx, "credential created", map[string]any{
		"credential_id": credential.ID,
		"owner_id":      credential.OwnerID,
		"secret_short":  credential.ShortSecret(),
	})
	return credential, nil
}

func (s *Service) GetCredential(ctx context.Context, id string) (Credential, error) {
	if s == nil || s.credentialStore == nil {
		return Credential{}, s.mapError(fmt.Errorf("core: credential store is required"))
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Credential{}, s.mapError(fmt.Errorf("core: credential id is required"))
	}
	credential, err := s.credentialStore.GetByID(ctx, id)
	if err != nil {
		return Credential{}, s.mapError(err)
	}
	return credential, nil
}

func (s *Service) SetCredentialScopes(ctx context.Context, id string, scopes []string) (Credential, error) {
	if s == nil || s.credentialStore == nil {
		return Credential{}, s.mapError(fmt.Errorf("core: credential store is required"))
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Credential{}, s.mapError(fmt.Errorf("core: credential id is required"))
	}
	credential, err := s.credentialStore.SetScopes(ctx, id, NormalizeScopes(scopes))
	if err != nil {
		return Credential{}, s.mapError(err)
	}
	return credential, nil
}

// AddCredentialScopes grants extra scopes on top of the current set. Scopes
// the credential already holds are kept once, so repeating the call changes
// nothing.
func (s *Service) AddCredentialScopes(ctx context.Context, id string, scopes []string) (Credential, error) {
	credential, err := s.GetCredential(ctx, id)
	if err != nil {
		return Credential{}, err
	}
	merged := make([]string, 0, len(credential.Scopes)+len(scopes))
	merged = append(merged, credential.Scopes...)
	merged = append(merged, scopes...)
	return s.SetCredentialScopes(ctx, id, NormalizeScopes(merged))
}

// RemoveCredentialScopes withdraws scopes from the current set. Removing a
// scope the credential does not hold changes nothing.
func (s *Service) RemoveCredentialScopes(ctx context.Context, id string, scopes []string) (Credential, error) {
	credential, err := s.GetCredential(ctx, id)
	if err != nil {
		return Credential{}, err
	}
	dropped := NormalizeScopes(scopes)
	drop := make(map[string]struct{}, len(dropped))
	for _, scope := range dropped {
		drop[scope] = struct{}{}
	}
	kept := make([]string, 0, len(credential.Scopes))
	for _, scope := range NormalizeScopes(credential.Scopes) {
		if _, ok := drop[scope]; ok {
			continue
		}
		kept = append(kept, scope)
	}
	return s.SetCredentialScopes(ctx, id, kept)
}

// RefreshCredential rotates the secret of an active credential. The
// credential keeps its scopes, history, and revocation state; a revoked
// credential cannot be refreshed.
func (s *Service) RefreshCredential(ctx context.Context, id string) (credential Credential, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"credential_id": id}
	defer func() {
		s.observeOperation(ctx, startedAt, "refresh_credential", err, fields)
	}()

	credential, err = s.requireActiveCredential(ctx, id)
	if err != nil {
		return Credential{}, err
	}

	now := time.Now().UTC()
	credential, err = s.credentialStore.Rotate(ctx, RotateCredentialInput{
		CredentialID: credential.ID,
		Secret:       NewSecret(),
		RotatedAt:    now,
	})
	if err != nil {
		err = s.mapError(err)
		return Credential{}, err
	}
	fields["secret_short"] = credential.ShortSecret()
	return credential, nil
}

// RevokeCredential deactivates a credential. Revoking twice is an error so
// callers notice double-disconnect bugs.
func (s *Service) RevokeCredential(ctx context.Context, id string) (credential Credential, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"credential_id": id}
	defer func() {
		s.observeOperation(ctx, startedAt, "revoke_credential", err, fields)
	}()

	credential, err = s.requireActiveCredential(ctx, id)
	if err != nil {
		return Credential{}, err
	}

	credential, err = s.credentialStore.MarkRevoked(ctx, credential.ID, time.Now().UTC())
	if err != nil {
		err = s.mapError(err)
		return Credential{}, err
	}
	return credential, nil
}

// ResetCredential returns a credential to a pristine state: fresh secret,
// active, and with its poll and delivery history purged. It works on revoked
// credentials too, which is how a locked-out integration is recovered.
func (s *Service) ResetCredential(ctx context.Context, id string) (credential Credential, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"credential_id": id}
	defer func() {
		s.observeOperation(ctx, startedAt, "reset_credential", err, fields)
	}()

	if s == nil || s.credentialStore == nil {
		err = s.mapError(fmt.Errorf("core: credential store is required"))
		return Credential{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		err = s.mapError(fmt.Errorf("core: credential id is required"))
		return Credential{}, err
	}

	credential, err = s.credentialStore.Reset(ctx, ResetCredentialInput{
		CredentialID: id,
		Secret:       NewSecret(),
		ResetAt:      time.Now().UTC(),
	})
	if err != nil {
		err = s.mapError(err)
		return Credential{}, err
	}
	fields["secret_short"] = credential.ShortSecret()
	return credential, nil
}

func (s *Service) requireActiveCredential(ctx context.Context, id string) (Credential, error) {
	if s == nil || s.credentialStore == nil {
		return Credential{}, s.mapError(fmt.Errorf("core: credential store is required"))
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Credential{}, s.mapError(fmt.Errorf("core: credential id is required"))
	}
	credential, err := s.credentialStore.GetByID(ctx, id)
	if err != nil {
		return Credential{}, s.mapError(err)
	}
	if !credential.IsActive() {
		return Credential{}, newTriggersError(
			"credential "+credential.ID+" is revoked",
			goerrors.CategoryConflict,
			TriggersErrorCredentialInactive,
		)
	}
	return credential, nil
}
