package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-triggers/core"
)

const credentialCacheKeyPrefix = "go-triggers::credential::v1"

// CachedCredentialStore fronts a credential store with a read-through cache
// on the hot authentication lookup. Every mutation drops the affected keys
// so a rotated or revoked secret never authenticates from cache.
type CachedCredentialStore struct {
	base  core.CredentialStore
	cache repositorycache.CacheService
}

func NewCachedCredentialStore(
	base core.CredentialStore,
	cacheService repositorycache.CacheService,
) (*CachedCredentialStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base credential store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: credential cache service is required")
	}
	return &CachedCredentialStore{base: base, cache: cacheService}, nil
}

// CredentialCacheKey returns the deterministic cache key contract for
// credential reads: go-triggers::credential::v1::<kind>::<value> with each
// segment URL-path escaped.
func CredentialCacheKey(kind, value string) (string, error) {
	kind = strings.TrimSpace(kind)
	value = strings.TrimSpace(value)
	if kind == "" || value == "" {
		return "", fmt.Errorf("sqlstore: cache key kind and value are required")
	}
	segments := []string{url.PathEscape(kind), url.PathEscape(value)}
	return strings.Join(append([]string{credentialCacheKeyPrefix}, segments...), "::"), nil
}

func (s *CachedCredentialStore) GetBySecret(ctx context.Context, secret string) (core.Credential, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.Credential{}, fmt.Errorf("sqlstore: cached credential store is not configured")
	}
	cacheKey, err := CredentialCacheKey("secret", secret)
	if err != nil {
		return core.Credential{}, err
	}
	return repositorycache.GetOrFetch(ctx, s.cache, cacheKey, func(ctx context.Context) (core.Credential, error) {
		return s.base.GetBySecret(ctx, secret)
	})
}

func (s *CachedCredentialStore) GetByID(ctx context.Context, id string) (core.Credential, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.Credential{}, fmt.Errorf("sqlstore: cached credential store is not configured")
	}
	cacheKey, err := CredentialCacheKey("id", id)
	if err != nil {
		return core.Credential{}, err
	}
	return repositorycache.GetOrFetch(ctx, s.cache, cacheKey, func(ctx context.Context) (core.Credential, error) {
		return s.base.GetByID(ctx, id)
	})
}

func (s *CachedCredentialStore) Create(ctx context.Context, in core.CreateCredentialInput) (core.Credential, error) {
	if s == nil || s.base == nil {
		return core.Credential{}, fmt.Errorf("sqlstore: cached credential store is not configured")
	}
	return s.base.Create(ctx, in)
}

func (s *CachedCredentialStore) SetScopes(ctx context.Context, id string, scopes []string) (core.Credential, error) {
	if s == nil || s.base == nil {
		return core.Credential{}, fmt.Errorf("sqlstore: cached credential store is not configured")
	}
	updated, err := s.base.SetScopes(ctx, id, scopes)
	if err != nil {
		return core.Credential{}, err
	}
	s.invalidate(ctx, updated, "")
	return updated, nil
}

func (s *CachedCredentialStore) Rotate(ctx context.Context, in core.RotateCredentialInput) (core.Credential, error) {
	if s == nil || s.base == nil {
		return core.Credential{}, fmt.Errorf("sqlstore: cached credential store is not configured")
	}
	previous, _ := s.base.GetByID(ctx, in.CredentialID)
	rotated, err := s.base.Rotate(ctx, in)
	if err != nil {
		return core.Credential{}, err
	}
	s.invalidate(ctx, rotated, previous.Secret)
	return rotated, nil
}

func (s *CachedCredentialStore) MarkRevoked(ctx context.Context, id string, revokedAt time.Time) (core.Credential, error) {
	if s == nil || s.base == nil {
		return core.Credential{}, fmt.Errorf("sqlstore: cached credential store is not configured")
	}
	revoked, err := s.base.MarkRevoked(ctx, id, revokedAt)
	if err != nil {
		return core.Credential{}, err
	}
	s.invalidate(ctx, revoked, "")
	return revoked, nil
}

func (s *CachedCredentialStore) Reset(ctx context.Context, in core.ResetCredentialInput) (core.Credential, error) {
	if s == nil || s.base == nil {
		return core.Credential{}, fmt.Errorf("sqlstore: cached credential store is not configured")
	}
	previous, _ := s.base.GetByID(ctx, in.CredentialID)
	reset, err := s.base.Reset(ctx, in)
	if err != nil {
		return core.Credential{}, err
	}
	s.invalidate(ctx, reset, previous.Secret)
	return reset, nil
}

func (s *CachedCredentialStore) invalidate(ctx context.Context, credential core.Credential, previousSecret string) {
	if s == nil || s.cache == nil {
		return
	}
	keys := make([]string, 0, 3)
	if key, err := CredentialCacheKey("id", credential.ID); err == nil {
		keys = append(keys, key)
	}
	if key, err := CredentialCacheKey("secret", credential.Secret); err == nil {
		keys = append(keys, key)
	}
	if previousSecret != "" && previousSecret != credential.Secret {
		if key, err := CredentialCacheKey("secret", previousSecret); err == nil {
			keys = append(keys, key)
		}
	}
	for _, key := range keys {
		_ = s.cache.Delete(ctx, key)
	}
}

var _ core.CredentialStore = (*CachedCredentialStore)(nil)
