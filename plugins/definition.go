package plugins

import (
	"fmt"
	"strings"

	"github.com/kingrea/modpatch/internal/module"
)

// BootManifest describes a mod package. It mirrors the boot file at the
// root of every package and is deliberately narrow: the loader only needs
// the package identity and its addon declarations.
type BootManifest struct {
	Name        string         `json:"name" yaml:"name" toml:"name"`
	Version     string         `json:"version,omitempty" yaml:"version,omitempty" toml:"version,omitempty"`
	AddonPlugin []module.Addon `json:"addonPlugin,omitempty" yaml:"addonPlugin,omitempty" toml:"addonPlugin,omitempty"`
}

// Normalized returns a trimmed copy of the manifest. Addon params are kept
// as decoded; they belong to the addon that consumes them.
func (m BootManifest) Normalized() BootManifest {
	clone := BootManifest{
		Name:    strings.TrimSpace(m.Name),
		Version: strings.TrimSpace(m.Version),
	}
	if len(m.AddonPlugin) > 0 {
		clone.AddonPlugin = make([]module.Addon, len(m.AddonPlugin))
		for i, addon := range m.AddonPlugin {
			clone.AddonPlugin[i] = module.Addon{
				ModName:    strings.TrimSpace(addon.ModName),
				AddonName:  strings.TrimSpace(addon.AddonName),
				ModVersion: strings.TrimSpace(addon.ModVersion),
				Params:     addon.Params,
			}
		}
	}
	return clone
}

// Validate ensures the manifest names the package and every addon entry
// names its hook.
func (m BootManifest) Validate() error {
	normalized := m.Normalized()
	if normalized.Name == "" {
		return fmt.Errorf("plugin: name is required")
	}
	for idx, addon := range normalized.AddonPlugin {
		if err := addon.Validate(); err != nil {
			return fmt.Errorf("plugin %s: addonPlugin[%d]: %w", normalized.Name, idx, err)
		}
	}
	return nil
}

// Package is a loaded mod package. It satisfies module.Package.
type Package struct {
	manifest BootManifest
	// Source is where the package was loaded from (directory or archive path).
	Source string
	// ManifestFile is the boot file name inside the package.
	ManifestFile string
}

// NewPackage wraps a validated manifest.
func NewPackage(manifest BootManifest, source, manifestFile string) (*Package, error) {
	if err := manifest.Validate(); err != nil {
		return nil, err
	}
	return &Package{manifest: manifest.Normalized(), Source: source, ManifestFile: manifestFile}, nil
}

// Name implements module.Package.
func (p *Package) Name() string { return p.manifest.Name }

// Version implements module.Package.
func (p *Package) Version() string { return p.manifest.Version }

// Addons implements module.Package.
func (p *Package) Addons() []module.Addon {
	return append([]module.Addon(nil), p.manifest.AddonPlugin...)
}

// Manifest returns the normalized boot manifest.
func (p *Package) Manifest() BootManifest {
	return p.manifest
}
