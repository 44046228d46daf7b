package core

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

type TriggerKind string

const (
	TriggerKindPolling TriggerKind = "polling"
	TriggerKindHook    TriggerKind = "hook"
)

// TriggerConfig is the explicit registration of a single trigger: the feed
// that produces its objects, the scope a caller must hold, and the serializer
// applied to every page. Hook triggers additionally carry a static sample
// the external platform fetches while a zap is being configured.
type TriggerConfig struct {
	Name          string
	Kind          TriggerKind
	RequiredScope string
	Feed          Feed
	Serializer    Serializer
	StaticSample  []FeedObject
}

func (c TriggerConfig) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("core: trigger name is required")
	}
	if strings.TrimSpace(c.RequiredScope) == "" {
		return fmt.Errorf("core: trigger %q requires a scope", c.Name)
	}
	switch c.Kind {
	case TriggerKindPolling, TriggerKindHook:
	case "":
		return fmt.Errorf("core: trigger %q has no kind", c.Name)
	default:
		return fmt.Errorf("core: trigger %q has unknown kind %q", c.Name, c.Kind)
	}
	if c.Kind == TriggerKindPolling && c.Feed == nil {
		return fmt.Errorf("core: polling trigger %q requires a feed", c.Name)
	}
	return nil
}

func (c TriggerConfig) serializer() Serializer {
	if c.Serializer == nil {
		return RawSerializer{}
	}
	return c.Serializer
}

type Registry interface {
	Register(cfg TriggerConfig) error
	Get(name string) (TriggerConfig, bool)
	Names() []string
}

type TriggerRegistry struct {
	mu       sync.RWMutex
	triggers map[string]TriggerConfig
}

func NewTriggerRegistry() *TriggerRegistry {
	return &TriggerRegistry{triggers: make(map[string]TriggerConfig)}
}

func (r *TriggerRegistry) Register(cfg TriggerConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	name := strings.TrimSpace(cfg.Name)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.triggers[name]; exists {
		return fmt.Errorf("core: trigger %q already registered", name)
	}
	r.triggers[name] = cfg
	return nil
}

func (r *TriggerRegistry) Get(name string) (TriggerConfig, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return TriggerConfig{}, false
	}
	r.mu.RLock()
	cfg, ok := r.triggers[name]
	r.mu.RUnlock()
	return cfg, ok
}

func (r *TriggerRegistry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.triggers))
	for name := range r.triggers {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

var _ Registry = (*TriggerRegistry)(nil)
