package core

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// ScopeWildcard grants every scope when present in a credential's scope set.
// It is never a valid scope to ask about.
const ScopeWildcard = "*"

const scopeExclusionPrefix = "-"

// HasScope reports whether the scope set grants the named scope. An explicit
// exclusion ("-books") beats the wildcard; the wildcard beats plain absence.
// Asking about the wildcard itself or an empty scope is a caller bug.
func HasScope(scopes []string, scope string) (bool, error) {
	scope = strings.TrimSpace(scope)
	if scope == "" || scope == ScopeWildcard {
		return false, newTriggersError(
			"scope to check must be a concrete scope name",
			goerrors.CategoryBadInput,
			TriggersErrorInvalidScope,
		)
	}

	wildcard := false
	for _, candidate := range scopes {
		candidate = strings.TrimSpace(candidate)
		switch candidate {
		case "":
			continue
		case scopeExclusionPrefix + scope:
			return false, nil
		case scope:
			return true, nil
		case ScopeWildcard:
			wildcard = true
		}
	}
	return wildcard, nil
}

func (c Credential) HasScope(scope string) (bool, error) {
	return HasScope(c.Scopes, scope)
}

// CheckScope enforces a trigger's scope requirement. A blank requirement is
// a registration bug; the wildcard requirement means "any authenticated
// caller".
func (c Credential) CheckScope(required string) error {
	required = strings.TrimSpace(required)
	if required == "" {
		return newTriggersError(
			"trigger requires a scope name",
			goerrors.CategoryBadInput,
			TriggersErrorInvalidScope,
		)
	}
	if required == ScopeWildcard {
		return nil
	}
	granted, err := c.HasScope(required)
	if err != nil {
		return err
	}
	if !granted {
		return newTriggersError(
			"credential does not grant scope "+required,
			goerrors.CategoryAuthz,
			TriggersErrorScopeDenied,
		)
	}
	return nil
}

// NormalizeScopes trims, lowercases, dedupes, and drops empty entries while
// keeping first-seen order. Exclusion markers are preserved.
func NormalizeScopes(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		trimmed := strings.ToLower(strings.TrimSpace(value))
		if trimmed == "" || trimmed == scopeExclusionPrefix {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}
