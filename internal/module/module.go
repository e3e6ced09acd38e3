package module

import (
	"context"
	"fmt"
	"strings"
)

// Addon is one entry of a package's declared addon list. ModName and
// AddonName select the hook that consumes Params.
type Addon struct {
	ModName    string `json:"modName" yaml:"modName" toml:"modName"`
	AddonName  string `json:"addonName" yaml:"addonName" toml:"addonName"`
	ModVersion string `json:"modVersion,omitempty" yaml:"modVersion,omitempty" toml:"modVersion,omitempty"`
	Params     any    `json:"params,omitempty" yaml:"params,omitempty" toml:"params,omitempty"`
}

// Validate ensures the addon entry names its hook.
func (a Addon) Validate() error {
	if strings.TrimSpace(a.ModName) == "" {
		return fmt.Errorf("module: addon modName is required")
	}
	if strings.TrimSpace(a.AddonName) == "" {
		return fmt.Errorf("module: addon addonName is required for %s", a.ModName)
	}
	return nil
}

// Package is a loaded content package as seen by addon hooks.
type Package interface {
	Name() string
	Version() string
	Addons() []Addon
}

// FindAddon returns the first addon entry of pkg declared for the given hook.
func FindAddon(pkg Package, modName, addonName string) (Addon, bool) {
	if pkg == nil {
		return Addon{}, false
	}
	for _, addon := range pkg.Addons() {
		if addon.ModName == modName && addon.AddonName == addonName {
			return addon, true
		}
	}
	return Addon{}, false
}

// Hook is implemented by addons that act on packages once every package has
// been merged into the content store.
type Hook interface {
	// RegisterMod is called once per package that declares the hook.
	RegisterMod(ctx context.Context, addonName string, pkg Package, source string) error
	// AfterPatch runs after all packages have been registered.
	AfterPatch(ctx context.Context) error
}
