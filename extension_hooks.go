package triggers

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-triggers/core"
)

// TriggerPack is a named bundle of trigger registrations a host or plugin
// contributes in one piece.
type TriggerPack struct {
	Name     string
	Triggers []core.TriggerConfig
}

type CommandQueryBundleFactory func(service CommandQueryService) (any, error)

// ExtensionHooks collects trigger packs and command/query bundles from
// multiple contributors before the service is assembled. Registration is
// first-writer-wins per name.
type ExtensionHooks struct {
	mu sync.RWMutex

	triggerPacks map[string]TriggerPack
	bundles      map[string]CommandQueryBundleFactory
}

func NewExtensionHooks() *ExtensionHooks {
	return &ExtensionHooks{
		triggerPacks: map[string]TriggerPack{},
		bundles:      map[string]CommandQueryBundleFactory{},
	}
}

func (h *ExtensionHooks) RegisterTriggerPack(pack TriggerPack) error {
	if h == nil {
		return fmt.Errorf("triggers: extension hooks are nil")
	}
	name := strings.TrimSpace(pack.Name)
	if name == "" {
		return fmt.Errorf("triggers: trigger pack name is required")
	}
	if len(pack.Triggers) == 0 {
		return fmt.Errorf("triggers: trigger pack %q has no triggers", name)
	}
	for _, cfg := range pack.Triggers {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("triggers: trigger pack %q: %w", name, err)
		}
	}

	normalized := TriggerPack{
		Name:     name,
		Triggers: append([]core.TriggerConfig(nil), pack.Triggers...),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.triggerPacks[name]; exists {
		return fmt.Errorf("triggers: trigger pack %q already registered", name)
	}
	h.triggerPacks[name] = normalized
	return nil
}

func (h *ExtensionHooks) RegisterCommandQueryBundle(
	name string,
	factory CommandQueryBundleFactory,
) error {
	if h == nil {
		return fmt.Errorf("triggers: extension hooks are nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("triggers: command/query bundle name is required")
	}
	if factory == nil {
		return fmt.Errorf("triggers: command/query bundle %q factory is required", name)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.bundles[name]; exists {
		return fmt.Errorf("triggers: command/query bundle %q already registered", name)
	}
	h.bundles[name] = factory
	return nil
}

// ApplyTriggerPacks registers every collected trigger onto the registry in
// pack name order.
func (h *ExtensionHooks) ApplyTriggerPacks(registry core.Registry) error {
	if h == nil {
		return nil
	}
	if registry == nil {
		return fmt.Errorf("triggers: registry is required")
	}

	for _, pack := range h.TriggerPacks() {
		for _, cfg := range pack.Triggers {
			if err := registry.Register(cfg); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *ExtensionHooks) BuildCommandQueryBundles(
	service CommandQueryService,
) (map[string]any, error) {
	if h == nil {
		return map[string]any{}, nil
	}
	if service == nil {
		return nil, fmt.Errorf("triggers: command/query service is required")
	}

	h.mu.RLock()
	names := make([]string, 0, len(h.bundles))
	for name := range h.bundles {
		names = append(names, name)
	}
	sort.Strings(names)
	factories := make(map[string]CommandQueryBundleFactory, len(h.bundles))
	for name, factory := range h.bundles {
		factories[name] = factory
	}
	h.mu.RUnlock()

	result := make(map[string]any, len(names))
	for _, name := range names {
		bundle, err := factories[name](service)
		if err != nil {
			return nil, err
		}
		result[name] = bundle
	}
	return result, nil
}

func (h *ExtensionHooks) TriggerPacks() []TriggerPack {
	if h == nil {
		return nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()

	names := make([]string, 0, len(h.triggerPacks))
	for name := range h.triggerPacks {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]TriggerPack, 0, len(names))
	for _, name := range names {
		pack := h.triggerPacks[name]
		out = append(out, TriggerPack{
			Name:     pack.Name,
			Triggers: append([]core.TriggerConfig(nil), pack.Triggers...),
		})
	}
	return out
}

func (h *ExtensionHooks) BundleNames() []string {
	if h == nil {
		return nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	names := make([]string, 0, len(h.bundles))
	for name := range h.bundles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
