package triggers

import (
	"context"
	"testing"

	"github.com/goliatone/go-triggers/core"
)

func staticFeed(objects ...core.FeedObject) core.Feed {
	return core.FeedFunc(func(context.Context, core.FeedRequest) ([]core.FeedObject, error) {
		return objects, nil
	})
}

func TestExtensionHooks_RegisterTriggerPack(t *testing.T) {
	hooks := NewExtensionHooks()

	pack := TriggerPack{
		Name: "library",
		Triggers: []core.TriggerConfig{
			{
				Name:          "new_book",
				Kind:          core.TriggerKindPolling,
				RequiredScope: "books",
				Feed:          staticFeed(core.FeedObject{"id": "b_1"}),
			},
		},
	}
	if err := hooks.RegisterTriggerPack(pack); err != nil {
		t.Fatalf("register trigger pack: %v", err)
	}
	if err := hooks.RegisterTriggerPack(pack); err == nil {
		t.Fatalf("expected duplicate pack name rejection")
	}

	if err := hooks.RegisterTriggerPack(TriggerPack{Name: "bad", Triggers: []core.TriggerConfig{{Name: "x"}}}); err == nil {
		t.Fatalf("expected invalid trigger config rejection")
	}

	packs := hooks.TriggerPacks()
	if len(packs) != 1 || packs[0].Name != "library" {
		t.Fatalf("unexpected packs: %#v", packs)
	}
}

func TestExtensionHooks_ApplyTriggerPacks(t *testing.T) {
	hooks := NewExtensionHooks()
	err := hooks.RegisterTriggerPack(TriggerPack{
		Name: "library",
		Triggers: []core.TriggerConfig{
			{
				Name:          "new_book",
				Kind:          core.TriggerKindPolling,
				RequiredScope: "books",
				Feed:          staticFeed(),
			},
			{
				Name:          "new_comment",
				Kind:          core.TriggerKindHook,
				RequiredScope: "comments",
				StaticSample:  []core.FeedObject{{"id": "1"}},
			},
		},
	})
	if err != nil {
		t.Fatalf("register trigger pack: %v", err)
	}

	registry := core.NewTriggerRegistry()
	if err := hooks.ApplyTriggerPacks(registry); err != nil {
		t.Fatalf("apply trigger packs: %v", err)
	}

	names := registry.Names()
	if len(names) != 2 || names[0] != "new_book" || names[1] != "new_comment" {
		t.Fatalf("unexpected registered triggers: %v", names)
	}
}

func TestExtensionHooks_BuildCommandQueryBundles(t *testing.T) {
	hooks := NewExtensionHooks()
	if err := hooks.RegisterCommandQueryBundle("reporting", func(service CommandQueryService) (any, error) {
		return service, nil
	}); err != nil {
		t.Fatalf("register bundle: %v", err)
	}
	if err := hooks.RegisterCommandQueryBundle("reporting", nil); err == nil {
		t.Fatalf("expected nil factory rejection")
	}

	names := hooks.BundleNames()
	if len(names) != 1 || names[0] != "reporting" {
		t.Fatalf("unexpected bundle names: %v", names)
	}

	bundles, err := hooks.BuildCommandQueryBundles(stubCommandQueryService{})
	if err != nil {
		t.Fatalf("build bundles: %v", err)
	}
	if _, ok := bundles["reporting"]; !ok {
		t.Fatalf("expected reporting bundle, got %#v", bundles)
	}
}
