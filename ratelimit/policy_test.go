package ratelimit

import (
	"context"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-triggers/core"
)

func TestFixedWindowPolicy_AllowsUpToLimit(t *testing.T) {
	ctx := context.Background()
	policy := NewFixedWindowPolicy(NewMemoryStateStore(), 3, time.Minute)

	for i := 0; i < 3; i++ {
		if err := policy.Allow(ctx, "cred_1", "new_book"); err != nil {
			t.Fatalf("allow %d: %v", i+1, err)
		}
	}

	err := policy.Allow(ctx, "cred_1", "new_book")
	if err == nil {
		t.Fatalf("expected throttle after limit")
	}
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected rich error, got %T", err)
	}
	if rich.Code != 429 || rich.TextCode != core.TriggersErrorRateLimited {
		t.Fatalf("unexpected error shape: code=%d text=%q", rich.Code, rich.TextCode)
	}
	if rich.Metadata["trigger"] != "new_book" {
		t.Fatalf("expected trigger metadata, got %#v", rich.Metadata)
	}
}

func TestFixedWindowPolicy_BucketsAreIndependent(t *testing.T) {
	ctx := context.Background()
	policy := NewFixedWindowPolicy(NewMemoryStateStore(), 1, time.Minute)

	if err := policy.Allow(ctx, "cred_1", "new_book"); err != nil {
		t.Fatalf("first bucket: %v", err)
	}
	if err := policy.Allow(ctx, "cred_1", "new_comment"); err != nil {
		t.Fatalf("different trigger should have its own bucket: %v", err)
	}
	if err := policy.Allow(ctx, "cred_2", "new_book"); err != nil {
		t.Fatalf("different credential should have its own bucket: %v", err)
	}
	if err := policy.Allow(ctx, "cred_1", "new_book"); err == nil {
		t.Fatalf("expected first bucket exhausted")
	}
}

func TestFixedWindowPolicy_WindowResets(t *testing.T) {
	ctx := context.Background()
	current := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	policy := NewFixedWindowPolicy(NewMemoryStateStore(), 1, time.Minute)
	policy.Now = func() time.Time { return current }

	if err := policy.Allow(ctx, "cred_1", "new_book"); err != nil {
		t.Fatalf("first poll: %v", err)
	}
	if err := policy.Allow(ctx, "cred_1", "new_book"); err == nil {
		t.Fatalf("expected throttle inside the window")
	}

	current = current.Add(61 * time.Second)
	if err := policy.Allow(ctx, "cred_1", "new_book"); err != nil {
		t.Fatalf("expected fresh window after reset: %v", err)
	}
}

func TestFixedWindowPolicy_NormalizesKeys(t *testing.T) {
	ctx := context.Background()
	policy := NewFixedWindowPolicy(NewMemoryStateStore(), 1, time.Minute)

	if err := policy.Allow(ctx, " cred_1 ", "NEW_BOOK"); err != nil {
		t.Fatalf("first poll: %v", err)
	}
	if err := policy.Allow(ctx, "cred_1", "new_book"); err == nil {
		t.Fatalf("expected normalized keys to share a bucket")
	}
}

func TestFixedWindowPolicy_NilPolicyAllowsEverything(t *testing.T) {
	var policy *FixedWindowPolicy
	if err := policy.Allow(context.Background(), "cred_1", "new_book"); err != nil {
		t.Fatalf("nil policy should allow: %v", err)
	}
}
