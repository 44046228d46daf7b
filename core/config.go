package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	AuthSchemeBearer   = "bearer"
	AuthSchemeAPIToken = "api_token"
)

// Request log policies decide which poll requests land in the append-only
// history. The cursor ledger always advances regardless of the policy.
const (
	RequestLogAll     = "all"
	RequestLogNone    = "none"
	RequestLogNonZero = "non_zero"
)

type AuthConfig struct {
	Scheme     string `koanf:"scheme" mapstructure:"scheme"`
	StrictMode bool   `koanf:"strict_mode" mapstructure:"strict_mode"`
}

type PollingConfig struct {
	PageSize   int    `koanf:"page_size" mapstructure:"page_size"`
	RequestLog string `koanf:"request_log" mapstructure:"request_log"`
}

type WebhookConfig struct {
	DeliveryTimeout time.Duration `koanf:"delivery_timeout" mapstructure:"delivery_timeout"`
}

type RetentionConfig struct {
	MaxAge time.Duration `koanf:"max_age" mapstructure:"max_age"`
}

type Config struct {
	ServiceName string          `koanf:"service_name" mapstructure:"service_name"`
	Auth        AuthConfig      `koanf:"auth" mapstructure:"auth"`
	Polling     PollingConfig   `koanf:"polling" mapstructure:"polling"`
	Webhooks    WebhookConfig   `koanf:"webhooks" mapstructure:"webhooks"`
	Retention   RetentionConfig `koanf:"retention" mapstructure:"retention"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "triggers",
		Auth: AuthConfig{
			Scheme: AuthSchemeBearer,
		},
		Polling: PollingConfig{
			PageSize:   25,
			RequestLog: RequestLogNonZero,
		},
		Webhooks: WebhookConfig{
			DeliveryTimeout: 10 * time.Second,
		},
		Retention: RetentionConfig{
			MaxAge: 30 * 24 * time.Hour,
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	switch c.Auth.Scheme {
	case AuthSchemeBearer, AuthSchemeAPIToken:
	default:
		return fmt.Errorf("core: unknown auth scheme %q", c.Auth.Scheme)
	}
	if c.Polling.PageSize <= 0 {
		return fmt.Errorf("core: polling page_size must be positive")
	}
	switch c.Polling.RequestLog {
	case RequestLogAll, RequestLogNone, RequestLogNonZero:
	default:
		return fmt.Errorf("core: unknown request_log policy %q", c.Polling.RequestLog)
	}
	if c.Webhooks.DeliveryTimeout <= 0 {
		return fmt.Errorf("core: webhooks delivery_timeout must be positive")
	}
	return nil
}
