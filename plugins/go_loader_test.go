package plugins

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kingrea/modpatch/internal/contracts"
	"github.com/kingrea/modpatch/internal/module"
)

const goManifestSource = `package main

func BootConfig() (map[string]any, error) {
	return map[string]any{
		"name":    "go-mod",
		"version": "1.0.0",
		"addonPlugin": []map[string]any{
			{
				"modName":   "ReplacePatcher",
				"addonName": "ReplacePatcherAddon",
				"params": map[string]any{
					"css": []map[string]any{
						{"fileName": "site.css", "from": "red", "to": "blue", "all": true},
					},
				},
			},
		},
	}, nil
}`

func TestLoadGoManifest(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "go-mod")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "boot.go"), []byte(goManifestSource), 0644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	pkg, err := LoadPackage(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if pkg.Name() != "go-mod" || pkg.ManifestFile != "boot.go" {
		t.Fatalf("unexpected package: %+v", pkg)
	}
	addon, ok := module.FindAddon(pkg, "ReplacePatcher", "ReplacePatcherAddon")
	if !ok {
		t.Fatalf("addon missing: %+v", pkg.Addons())
	}
	spec, err := contracts.DecodeSpec(addon.Params)
	if err != nil {
		t.Fatalf("decode params: %v", err)
	}
	if len(spec.Styles) != 1 || spec.Styles[0].To != "blue" {
		t.Fatalf("unexpected spec: %+v", spec)
	}
}

func TestLoadGoManifestMissingFunc(t *testing.T) {
	if _, err := ParseManifest("boot.go", []byte("package main\n")); err == nil {
		t.Fatalf("expected error for missing BootConfig function")
	}
}
