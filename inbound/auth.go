package inbound

import (
	"context"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-triggers/core"
)

const (
	HeaderAPIToken      = "X-Api-Token"
	HeaderScope         = "X-Api-Scope"
	HeaderCount         = "X-Api-Count"
	HeaderObjectID      = "X-Api-Object-Id"
	headerAuthorization = "Authorization"
	bearerPrefix        = "Bearer "

	// Strict mode only admits clients identifying as the external platform.
	expectedUserAgentMarker = "Zapier"
)

// ExtractSecret pulls the presented credential secret out of the request
// headers for the configured scheme. An empty result means no credential was
// presented, which the service maps to its own missing-credential failure.
func ExtractSecret(header http.Header, scheme string) string {
	switch scheme {
	case core.AuthSchemeAPIToken:
		return strings.TrimSpace(header.Get(HeaderAPIToken))
	default:
		value := strings.TrimSpace(header.Get(headerAuthorization))
		if value == "" {
			return ""
		}
		if len(value) < len(bearerPrefix) || !strings.EqualFold(value[:len(bearerPrefix)], bearerPrefix) {
			return ""
		}
		return strings.TrimSpace(value[len(bearerPrefix):])
	}
}

type authContextKey struct{}

// ContextWithAuth binds an authenticated principal to the request context.
// Hosts that resolve their own session in middleware before routing into the
// trigger surface use this to make that principal visible to the handlers.
func ContextWithAuth(ctx context.Context, auth core.AuthResult) context.Context {
	return context.WithValue(ctx, authContextKey{}, auth)
}

// AuthFromContext returns the principal bound with ContextWithAuth, if any.
func AuthFromContext(ctx context.Context) (core.AuthResult, bool) {
	auth, ok := ctx.Value(authContextKey{}).(core.AuthResult)
	return auth, ok
}

// CheckPrincipal rejects a presented credential when the request context is
// already bound to a different principal. A token must never act on behalf
// of another session's credential.
func CheckPrincipal(ctx context.Context, auth core.AuthResult) error {
	bound, ok := AuthFromContext(ctx)
	if !ok || bound.Credential.ID == "" || bound.Credential.ID == auth.Credential.ID {
		return nil
	}
	return inboundError(
		"request is already bound to a different principal",
		goerrors.CategoryAuthz,
		http.StatusForbidden,
		core.TriggersErrorPrincipalMismatch,
		map[string]any{
			"bound_credential_id":     bound.Credential.ID,
			"presented_credential_id": auth.Credential.ID,
		},
	)
}

// CheckUserAgent enforces strict mode: requests whose User-Agent does not
// carry the platform marker are rejected before any credential lookup.
func CheckUserAgent(header http.Header, strictMode bool) error {
	if !strictMode {
		return nil
	}
	userAgent := strings.TrimSpace(header.Get("User-Agent"))
	if strings.Contains(userAgent, expectedUserAgentMarker) {
		return nil
	}
	return inboundError(
		"request is not from the expected platform",
		goerrors.CategoryAuthz,
		http.StatusForbidden,
		core.TriggersErrorPrincipalMismatch,
		map[string]any{"user_agent": userAgent},
	)
}
