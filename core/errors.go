package core

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TriggersErrorBadInput              = "TRIGGERS_BAD_INPUT"
	TriggersErrorInvalidScope          = "TRIGGERS_INVALID_SCOPE"
	TriggersErrorMissingCredential     = "TRIGGERS_MISSING_CREDENTIAL"
	TriggersErrorUnknownCredential     = "TRIGGERS_UNKNOWN_CREDENTIAL"
	TriggersErrorCredentialRevoked     = "TRIGGERS_CREDENTIAL_REVOKED"
	TriggersErrorCredentialInactive    = "TRIGGERS_CREDENTIAL_INACTIVE"
	TriggersErrorOwnerInactive         = "TRIGGERS_OWNER_INACTIVE"
	TriggersErrorPrincipalMismatch     = "TRIGGERS_PRINCIPAL_MISMATCH"
	TriggersErrorScopeDenied           = "TRIGGERS_SCOPE_DENIED"
	TriggersErrorTriggerNotFound       = "TRIGGERS_TRIGGER_NOT_FOUND"
	TriggersErrorSubscriptionNotFound  = "TRIGGERS_SUBSCRIPTION_NOT_FOUND"
	TriggersErrorDuplicateSubscription = "TRIGGERS_DUPLICATE_SUBSCRIPTION"
	TriggersErrorMalformedFeed         = "TRIGGERS_MALFORMED_FEED"
	TriggersErrorRateLimited           = "TRIGGERS_RATE_LIMITED"
	TriggersErrorFeedFailed            = "TRIGGERS_FEED_FAILED"
	TriggersErrorInternal              = "TRIGGERS_INTERNAL_ERROR"
)

func triggersErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureTriggersErrorEnvelope(richErr)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "trigger not registered"):
		return newTriggersError(err.Error(), goerrors.CategoryNotFound, TriggersErrorTriggerNotFound)
	case strings.Contains(msg, "subscription") && strings.Contains(msg, "not found"):
		return newTriggersError(err.Error(), goerrors.CategoryNotFound, TriggersErrorSubscriptionNotFound)
	case strings.Contains(msg, "unique constraint"), strings.Contains(msg, "duplicate key"):
		return newTriggersError(err.Error(), goerrors.CategoryConflict, TriggersErrorDuplicateSubscription)
	case strings.Contains(msg, "feed object has no id"):
		return newTriggersError(err.Error(), goerrors.CategoryInternal, TriggersErrorMalformedFeed)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"), strings.Contains(msg, "mismatch"):
		return newTriggersError(err.Error(), goerrors.CategoryBadInput, TriggersErrorBadInput)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureTriggersErrorEnvelope(mapped)
}

func newTriggersError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureTriggersErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensureTriggersErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = triggersHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultTriggersTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultTriggersTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return TriggersErrorBadInput
	case goerrors.CategoryNotFound:
		return TriggersErrorTriggerNotFound
	case goerrors.CategoryAuth:
		return TriggersErrorUnknownCredential
	case goerrors.CategoryAuthz:
		return TriggersErrorScopeDenied
	case goerrors.CategoryConflict:
		return TriggersErrorDuplicateSubscription
	default:
		return TriggersErrorInternal
	}
}

func triggersHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// IsAuthenticationError reports whether the HTTP boundary should challenge
// the caller with WWW-Authenticate instead of a plain 403.
func IsAuthenticationError(err error) bool {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return false
	}
	return richErr.Category == goerrors.CategoryAuth
}
