package core

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// AuthResult is an authenticated principal: the credential that matched the
// presented secret plus the owner behind it.
type AuthResult struct {
	Credential Credential
	Owner      Owner
}

func (r AuthResult) ConnectionLabel() string {
	return r.Credential.ConnectionLabel(r.Owner.Name)
}

// AuthCheckResponse is the payload the external platform expects back from
// its authentication test call.
type AuthCheckResponse struct {
	ConnectionLabel string `json:"connectionLabel"`
	APIKey          string `json:"apiKey"`
}

// Authenticate resolves the presented secret to an active credential with an
// active owner. Every failure mode maps to a distinct error code so the HTTP
// boundary can answer 401 versus 403 correctly.
func (s *Service) Authenticate(ctx context.Context, secret string) (result AuthResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{}
	defer func() {
		s.observeOperation(ctx, startedAt, "authenticate", err, fields)
	}()

	if s == nil || s.credentialStore == nil {
		err = s.mapError(newTriggersError(
			"authentication requires a credential store",
			goerrors.CategoryInternal,
			TriggersErrorInternal,
		))
		return AuthResult{}, err
	}

	secret = strings.TrimSpace(secret)
	if secret == "" {
		err = newTriggersError(
			"no credential supplied",
			goerrors.CategoryAuth,
			TriggersErrorMissingCredential,
		)
		return AuthResult{}, err
	}

	credential, lookupErr := s.credentialStore.GetBySecret(ctx, secret)
	if lookupErr != nil {
		err = newTriggersError(
			"credential not recognized",
			goerrors.CategoryAuth,
			TriggersErrorUnknownCredential,
		)
		return AuthResult{}, err
	}
	fields["credential_id"] = credential.ID
	fields["owner_id"] = credential.OwnerID

	if !credential.IsActive() {
		err = newTriggersError(
			"credential has been revoked",
			goerrors.CategoryAuthz,
			TriggersErrorCredentialRevoked,
		)
		return AuthResult{}, err
	}

	owner := Owner{ID: credential.OwnerID, Name: credential.OwnerID, Active: true}
	if s.ownerDirectory != nil {
		owner, err = s.ownerDirectory.Resolve(ctx, credential.OwnerID)
		if err != nil {
			err = s.mapError(err)
			return AuthResult{}, err
		}
	}
	if !owner.Active {
		err = newTriggersError(
			"credential owner is inactive",
			goerrors.CategoryAuthz,
			TriggersErrorOwnerInactive,
		)
		return AuthResult{}, err
	}

	return AuthResult{Credential: credential, Owner: owner}, nil
}

// AuthCheck is Authenticate plus the connection-label payload the external
// platform shows next to the connected account.
func (s *Service) AuthCheck(ctx context.Context, secret string) (AuthCheckResponse, error) {
	result, err := s.Authenticate(ctx, secret)
	if err != nil {
		return AuthCheckResponse{}, err
	}
	return AuthCheckResponse{
		ConnectionLabel: result.ConnectionLabel(),
		APIKey:          result.Credential.Secret,
	}, nil
}
