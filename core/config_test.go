package core

import (
	"testing"
	"time"
)

func TestDefaultConfig_Validates(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
	if cfg.Auth.Scheme != AuthSchemeBearer {
		t.Fatalf("expected bearer default, got %q", cfg.Auth.Scheme)
	}
	if cfg.Polling.RequestLog != RequestLogNonZero {
		t.Fatalf("expected non_zero default, got %q", cfg.Polling.RequestLog)
	}
	if cfg.Webhooks.DeliveryTimeout != 10*time.Second {
		t.Fatalf("expected 10s delivery timeout, got %v", cfg.Webhooks.DeliveryTimeout)
	}
}

func TestConfigValidate_RejectsBadValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Auth.Scheme = "digest"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected rejection of unknown auth scheme")
	}

	cfg = DefaultConfig()
	cfg.Polling.RequestLog = "sometimes"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected rejection of unknown request log policy")
	}

	cfg = DefaultConfig()
	cfg.Polling.PageSize = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected rejection of zero page size")
	}
}

func TestGoOptionsResolver_RuntimeOverridesLoaded(t *testing.T) {
	defaults := DefaultConfig()
	loaded := Config{Polling: PollingConfig{PageSize: 50}}
	runtime := Config{Polling: PollingConfig{PageSize: 5}, Auth: AuthConfig{Scheme: AuthSchemeAPIToken}}

	resolved, err := (GoOptionsResolver{}).Resolve(defaults, loaded, runtime)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.Polling.PageSize != 5 {
		t.Fatalf("runtime layer must win, got %d", resolved.Polling.PageSize)
	}
	if resolved.Auth.Scheme != AuthSchemeAPIToken {
		t.Fatalf("expected runtime auth scheme, got %q", resolved.Auth.Scheme)
	}
	if resolved.Polling.RequestLog != RequestLogNonZero {
		t.Fatalf("untouched values must fall back to defaults, got %q", resolved.Polling.RequestLog)
	}
}

func TestNewService_AppliesRuntimeConfig(t *testing.T) {
	svc, err := NewService(Config{Polling: PollingConfig{PageSize: 7}})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if svc.Config().Polling.PageSize != 7 {
		t.Fatalf("expected runtime page size, got %d", svc.Config().Polling.PageSize)
	}
	if svc.Config().ServiceName != "triggers" {
		t.Fatalf("expected default service name, got %q", svc.Config().ServiceName)
	}
}
