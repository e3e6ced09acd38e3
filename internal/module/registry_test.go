package module

import (
	"context"
	"errors"
	"testing"
)

type stubPackage struct {
	name   string
	addons []Addon
}

func (p stubPackage) Name() string    { return p.name }
func (p stubPackage) Version() string { return "1.0.0" }
func (p stubPackage) Addons() []Addon { return p.addons }

type recordingHook struct {
	registered []string
	afterCalls int
	failAfter  bool
}

func (h *recordingHook) RegisterMod(_ context.Context, addonName string, pkg Package, source string) error {
	h.registered = append(h.registered, addonName+":"+pkg.Name()+"@"+source)
	return nil
}

func (h *recordingHook) AfterPatch(context.Context) error {
	h.afterCalls++
	if h.failAfter {
		return errors.New("boom")
	}
	return nil
}

func TestRegistryRegister(t *testing.T) {
	reg := NewRegistry()
	hook := &recordingHook{}
	if err := reg.Register("ReplacePatcher", "ReplacePatcherAddon", hook); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.Register("ReplacePatcher", "ReplacePatcherAddon", hook); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
	if err := reg.Register("", "x", hook); err == nil {
		t.Fatalf("expected empty mod name to fail")
	}
	if err := reg.Register("a", "b", nil); err == nil {
		t.Fatalf("expected nil hook to fail")
	}
	if got, ok := reg.Lookup("ReplacePatcher", "ReplacePatcherAddon"); !ok || got != hook {
		t.Fatalf("lookup returned %v, %v", got, ok)
	}
}

func TestRegistryDispatch(t *testing.T) {
	reg := NewRegistry()
	hook := &recordingHook{}
	reg.MustRegister("ReplacePatcher", "ReplacePatcherAddon", hook)
	pkg := stubPackage{
		name: "demo",
		addons: []Addon{
			{ModName: "ReplacePatcher", AddonName: "ReplacePatcherAddon"},
			{ModName: "Other", AddonName: "OtherAddon"},
		},
	}
	unmatched, err := reg.Dispatch(context.Background(), pkg, "mods/demo")
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(unmatched) != 1 || unmatched[0].ModName != "Other" {
		t.Fatalf("unmatched = %+v", unmatched)
	}
	if len(hook.registered) != 1 || hook.registered[0] != "ReplacePatcherAddon:demo@mods/demo" {
		t.Fatalf("registered = %v", hook.registered)
	}
}

func TestRegistryAfterPatchContinuesPastFailures(t *testing.T) {
	reg := NewRegistry()
	failing := &recordingHook{failAfter: true}
	ok := &recordingHook{}
	reg.MustRegister("B", "B", failing)
	reg.MustRegister("A", "A", ok)
	if err := reg.AfterPatch(context.Background()); err == nil {
		t.Fatalf("expected failing hook error")
	}
	if failing.afterCalls != 1 || ok.afterCalls != 1 {
		t.Fatalf("after calls = %d, %d; want 1, 1", failing.afterCalls, ok.afterCalls)
	}
	keys := reg.Keys()
	if len(keys) != 2 || keys[0].ModName != "A" {
		t.Fatalf("keys = %v", keys)
	}
}

func TestFindAddon(t *testing.T) {
	pkg := stubPackage{addons: []Addon{
		{ModName: "ReplacePatcher", AddonName: "Other", Params: 1},
		{ModName: "ReplacePatcher", AddonName: "ReplacePatcherAddon", Params: 2},
		{ModName: "ReplacePatcher", AddonName: "ReplacePatcherAddon", Params: 3},
	}}
	addon, ok := FindAddon(pkg, "ReplacePatcher", "ReplacePatcherAddon")
	if !ok || addon.Params != 2 {
		t.Fatalf("FindAddon = %+v, %v; want first match", addon, ok)
	}
	if _, ok := FindAddon(nil, "a", "b"); ok {
		t.Fatalf("nil package must not match")
	}
}

func TestAddonValidate(t *testing.T) {
	if err := (Addon{ModName: "a", AddonName: "b"}).Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if err := (Addon{ModName: "a"}).Validate(); err == nil {
		t.Fatalf("expected missing addon name to fail")
	}
}
