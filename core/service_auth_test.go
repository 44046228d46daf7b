package core

import (
	"context"
	"strings"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

func TestAuthenticate_MissingSecretIsAuthFailure(t *testing.T) {
	ctx := context.Background()
	env := newTestService(t, Config{})

	_, err := env.service.Authenticate(ctx, "   ")
	assertTextCode(t, err, TriggersErrorMissingCredential, goerrors.CategoryAuth)
}

func TestAuthenticate_UnknownSecretIsAuthFailure(t *testing.T) {
	ctx := context.Background()
	env := newTestService(t, Config{})

	_, err := env.service.Authenticate(ctx, "not-a-real-secret")
	assertTextCode(t, err, TriggersErrorUnknownCredential, goerrors.CategoryAuth)
}

func TestAuthenticate_RevokedCredentialIsForbidden(t *testing.T) {
	ctx := context.Background()
	env := newTestService(t, Config{})

	cred, err := env.service.CreateCredential(ctx, CreateCredentialRequest{OwnerID: "usr_1"})
	if err != nil {
		t.Fatalf("create credential: %v", err)
	}
	if _, err = env.service.RevokeCredential(ctx, cred.ID); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	_, err = env.service.Authenticate(ctx, cred.Secret)
	assertTextCode(t, err, TriggersErrorCredentialRevoked, goerrors.CategoryAuthz)
}

func TestAuthenticate_InactiveOwnerIsForbidden(t *testing.T) {
	ctx := context.Background()
	directory := NewStaticOwnerDirectory(Owner{ID: "usr_gone", Name: "gone", Active: false})
	env := newTestService(t, Config{}, WithOwnerDirectory(directory))

	cred, err := env.service.CreateCredential(ctx, CreateCredentialRequest{OwnerID: "usr_gone"})
	if err != nil {
		t.Fatalf("create credential: %v", err)
	}

	_, err = env.service.Authenticate(ctx, cred.Secret)
	assertTextCode(t, err, TriggersErrorOwnerInactive, goerrors.CategoryAuthz)
}

func TestAuthCheck_ReturnsConnectionLabelPayload(t *testing.T) {
	ctx := context.Background()
	directory := NewStaticOwnerDirectory(Owner{ID: "usr_1", Name: "ada", Active: true})
	env := newTestService(t, Config{}, WithOwnerDirectory(directory))

	cred, err := env.service.CreateCredential(ctx, CreateCredentialRequest{OwnerID: "usr_1", Scopes: []string{"books"}})
	if err != nil {
		t.Fatalf("create credential: %v", err)
	}

	payload, err := env.service.AuthCheck(ctx, cred.Secret)
	if err != nil {
		t.Fatalf("auth check: %v", err)
	}
	if payload.APIKey != cred.Secret {
		t.Fatalf("expected api key echo, got %q", payload.APIKey)
	}
	want := "ada [" + cred.ShortSecret() + "]"
	if payload.ConnectionLabel != want {
		t.Fatalf("expected label %q, got %q", want, payload.ConnectionLabel)
	}
}

func TestRefreshCredential_RotatesSecretAndKeepsActive(t *testing.T) {
	ctx := context.Background()
	env := newTestService(t, Config{})

	cred, err := env.service.CreateCredential(ctx, CreateCredentialRequest{OwnerID: "usr_1"})
	if err != nil {
		t.Fatalf("create credential: %v", err)
	}

	refreshed, err := env.service.RefreshCredential(ctx, cred.ID)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.Secret == cred.Secret {
		t.Fatalf("expected a new secret")
	}
	if refreshed.RefreshedAt == nil {
		t.Fatalf("expected refresh timestamp")
	}
	if !refreshed.IsActive() {
		t.Fatalf("refresh must not deactivate the credential")
	}

	if _, err := env.service.Authenticate(ctx, cred.Secret); err == nil {
		t.Fatalf("old secret must stop authenticating after refresh")
	}
	if _, err := env.service.Authenticate(ctx, refreshed.Secret); err != nil {
		t.Fatalf("new secret must authenticate: %v", err)
	}
}

func TestRefreshCredential_FailsForRevokedCredential(t *testing.T) {
	ctx := context.Background()
	env := newTestService(t, Config{})

	cred, err := env.service.CreateCredential(ctx, CreateCredentialRequest{OwnerID: "usr_1"})
	if err != nil {
		t.Fatalf("create credential: %v", err)
	}
	if _, err = env.service.RevokeCredential(ctx, cred.ID); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	_, err = env.service.RefreshCredential(ctx, cred.ID)
	assertTextCode(t, err, TriggersErrorCredentialInactive, goerrors.CategoryConflict)
}

func TestRevokeCredential_TwiceFails(t *testing.T) {
	ctx := context.Background()
	env := newTestService(t, Config{})

	cred, err := env.service.CreateCredential(ctx, CreateCredentialRequest{OwnerID: "usr_1"})
	if err != nil {
		t.Fatalf("create credential: %v", err)
	}
	if _, err = env.service.RevokeCredential(ctx, cred.ID); err != nil {
		t.Fatalf("first revoke: %v", err)
	}

	_, err = env.service.RevokeCredential(ctx, cred.ID)
	assertTextCode(t, err, TriggersErrorCredentialInactive, goerrors.CategoryConflict)
}

func TestResetCredential_ReactivatesAndPurgesHistory(t *testing.T) {
	ctx := context.Background()
	env := newTestService(t, Config{})

	cred, err := env.service.CreateCredential(ctx, CreateCredentialRequest{OwnerID: "usr_1", Scopes: []string{"books"}})
	if err != nil {
		t.Fatalf("create credential: %v", err)
	}

	_, err = env.cursors.Advance(ctx, AdvanceCursorInput{
		CredentialID: cred.ID,
		Trigger:      "books",
		Timestamp:    time.Now().UTC(),
		Count:        2,
		PageNewestID: "b_2",
	})
	if err != nil {
		t.Fatalf("seed cursor: %v", err)
	}
	if _, err = env.requests.Append(ctx, AppendPollRequestInput{
		CredentialID: cred.ID,
		Trigger:      "books",
		Timestamp:    time.Now().UTC(),
		Count:        2,
		NewestID:     "b_2",
	}); err != nil {
		t.Fatalf("seed request log: %v", err)
	}
	if _, err = env.service.RevokeCredential(ctx, cred.ID); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	reset, err := env.service.ResetCredential(ctx, cred.ID)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if !reset.IsActive() {
		t.Fatalf("reset must reactivate the credential")
	}
	if reset.Secret == cred.Secret {
		t.Fatalf("reset must mint a new secret")
	}
	if _, ok, _ := env.cursors.Get(ctx, cred.ID, "books"); ok {
		t.Fatalf("reset must clear the cursor ledger")
	}
	history, err := env.service.PollHistory(ctx, cred.ID, "books", 10)
	if err != nil {
		t.Fatalf("poll history: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("reset must clear poll history, got %d records", len(history))
	}

	// Resetting again converges to the same state: active, empty history.
	again, err := env.service.ResetCredential(ctx, cred.ID)
	if err != nil {
		t.Fatalf("second reset: %v", err)
	}
	if !again.IsActive() {
		t.Fatalf("second reset must keep the credential active")
	}
}

func TestAddCredentialScopes_UnionIsIdempotent(t *testing.T) {
	ctx := context.Background()
	env := newTestService(t, Config{})

	cred, err := env.service.CreateCredential(ctx, CreateCredentialRequest{OwnerID: "usr_1", Scopes: []string{"books"}})
	if err != nil {
		t.Fatalf("create credential: %v", err)
	}

	grown, err := env.service.AddCredentialScopes(ctx, cred.ID, []string{"Comments", "books"})
	if err != nil {
		t.Fatalf("add scopes: %v", err)
	}
	if got, want := strings.Join(grown.Scopes, ","), "books,comments"; got != want {
		t.Fatalf("expected scopes %q, got %q", want, got)
	}

	again, err := env.service.AddCredentialScopes(ctx, cred.ID, []string{"comments"})
	if err != nil {
		t.Fatalf("repeat add: %v", err)
	}
	if got, want := strings.Join(again.Scopes, ","), "books,comments"; got != want {
		t.Fatalf("repeat add must not duplicate scopes, got %q", got)
	}
}

func TestRemoveCredentialScopes_MissingScopeIsNoOp(t *testing.T) {
	ctx := context.Background()
	env := newTestService(t, Config{})

	cred, err := env.service.CreateCredential(ctx, CreateCredentialRequest{OwnerID: "usr_1", Scopes: []string{"books", "comments"}})
	if err != nil {
		t.Fatalf("create credential: %v", err)
	}

	trimmed, err := env.service.RemoveCredentialScopes(ctx, cred.ID, []string{"comments", "never_granted"})
	if err != nil {
		t.Fatalf("remove scopes: %v", err)
	}
	if got, want := strings.Join(trimmed.Scopes, ","), "books"; got != want {
		t.Fatalf("expected scopes %q, got %q", want, got)
	}

	again, err := env.service.RemoveCredentialScopes(ctx, cred.ID, []string{"comments"})
	if err != nil {
		t.Fatalf("repeat remove: %v", err)
	}
	if got, want := strings.Join(again.Scopes, ","), "books"; got != want {
		t.Fatalf("repeat remove must leave scopes %q, got %q", want, got)
	}
}

func assertTextCode(t *testing.T, err error, textCode string, category goerrors.Category) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s", textCode)
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		t.Fatalf("expected go-errors type, got %T: %v", err, err)
	}
	if richErr.TextCode != textCode {
		t.Fatalf("expected text code %s, got %s (%s)", textCode, richErr.TextCode, richErr.Message)
	}
	if richErr.Category != category {
		t.Fatalf("expected category %q, got %q", category, richErr.Category)
	}
	if richErr.Code == 0 {
		t.Fatalf("expected http status on error")
	}
	if strings.TrimSpace(richErr.Message) == "" {
		t.Fatalf("expected a message on error")
	}
}
