package module

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Key identifies a hook by the mod that provides it and the addon name it
// answers to.
type Key struct {
	ModName   string
	AddonName string
}

func (k Key) String() string {
	return k.ModName + "/" + k.AddonName
}

// Registry maintains addon hooks and dispatches packages to them.
type Registry struct {
	mu    sync.RWMutex
	hooks map[Key]Hook
	order []Key
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{hooks: map[Key]Hook{}}
}

// Register installs a hook. Returns an error if the key already exists.
func (r *Registry) Register(modName, addonName string, hook Hook) error {
	key := Key{ModName: modName, AddonName: addonName}
	if modName == "" || addonName == "" {
		return fmt.Errorf("module: mod name and addon name are required")
	}
	if hook == nil {
		return fmt.Errorf("module: hook is required for %s", key)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.hooks[key]; exists {
		return fmt.Errorf("module: %s already registered", key)
	}
	r.hooks[key] = hook
	r.order = append(r.order, key)
	return nil
}

// MustRegister panics if registration fails.
func (r *Registry) MustRegister(modName, addonName string, hook Hook) {
	if err := r.Register(modName, addonName, hook); err != nil {
		panic(err)
	}
}

// Lookup returns the hook installed under the given names.
func (r *Registry) Lookup(modName, addonName string) (Hook, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	hook, ok := r.hooks[Key{ModName: modName, AddonName: addonName}]
	return hook, ok
}

// Keys returns the registered hook keys sorted by name.
func (r *Registry) Keys() []Key {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := append([]Key(nil), r.order...)
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}

// Dispatch hands pkg to every hook its addon list names. Addon entries with
// no installed hook are returned so the caller can report them; they are not
// an error.
func (r *Registry) Dispatch(ctx context.Context, pkg Package, source string) ([]Addon, error) {
	if pkg == nil {
		return nil, fmt.Errorf("module: package is required")
	}
	var (
		unmatched []Addon
		errs      []error
	)
	for _, addon := range pkg.Addons() {
		hook, ok := r.Lookup(addon.ModName, addon.AddonName)
		if !ok {
			unmatched = append(unmatched, addon)
			continue
		}
		if err := hook.RegisterMod(ctx, addon.AddonName, pkg, source); err != nil {
			errs = append(errs, fmt.Errorf("module: %s: register %s: %w", Key{addon.ModName, addon.AddonName}, pkg.Name(), err))
		}
	}
	return unmatched, errors.Join(errs...)
}

// AfterPatch runs every hook's AfterPatch in installation order. A failing
// hook does not stop the ones after it.
func (r *Registry) AfterPatch(ctx context.Context) error {
	r.mu.RLock()
	order := append([]Key(nil), r.order...)
	r.mu.RUnlock()
	var errs []error
	for _, key := range order {
		hook, _ := r.Lookup(key.ModName, key.AddonName)
		if err := hook.AfterPatch(ctx); err != nil {
			errs = append(errs, fmt.Errorf("module: %s: after patch: %w", key, err))
		}
	}
	return errors.Join(errs...)
}
