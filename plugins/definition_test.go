package plugins

import (
	"testing"

	"github.com/kingrea/modpatch/internal/module"
)

func TestBootManifestValidate(t *testing.T) {
	tests := []struct {
		name     string
		manifest BootManifest
		wantErr  bool
	}{
		{name: "minimal", manifest: BootManifest{Name: "demo"}},
		{name: "missing-name", manifest: BootManifest{Name: "  "}, wantErr: true},
		{
			name: "addon-missing-name",
			manifest: BootManifest{
				Name:        "demo",
				AddonPlugin: []module.Addon{{ModName: "ReplacePatcher"}},
			},
			wantErr: true,
		},
		{
			name: "valid-addon",
			manifest: BootManifest{
				Name:        "demo",
				AddonPlugin: []module.Addon{{ModName: " ReplacePatcher ", AddonName: "ReplacePatcherAddon"}},
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.manifest.Validate()
			if (err != nil) != test.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, test.wantErr)
			}
		})
	}
}

func TestNewPackageNormalizes(t *testing.T) {
	params := map[string]any{"js": []any{}}
	pkg, err := NewPackage(BootManifest{
		Name:        " demo ",
		Version:     "1.2.0 ",
		AddonPlugin: []module.Addon{{ModName: " ReplacePatcher", AddonName: "ReplacePatcherAddon ", Params: params}},
	}, "mods/demo", "boot.json")
	if err != nil {
		t.Fatalf("new package: %v", err)
	}
	if pkg.Name() != "demo" || pkg.Version() != "1.2.0" {
		t.Fatalf("unexpected identity: %s %s", pkg.Name(), pkg.Version())
	}
	addon, ok := module.FindAddon(pkg, "ReplacePatcher", "ReplacePatcherAddon")
	if !ok {
		t.Fatalf("addon lookup failed: %+v", pkg.Addons())
	}
	if _, ok := addon.Params.(map[string]any); !ok {
		t.Fatalf("params must be kept as decoded, got %T", addon.Params)
	}
	addons := pkg.Addons()
	addons[0].ModName = "mutated"
	if pkg.Addons()[0].ModName != "ReplacePatcher" {
		t.Fatalf("Addons must return a copy")
	}
}
