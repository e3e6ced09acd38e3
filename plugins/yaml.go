package plugins

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ManifestNames lists the boot files a package may carry, in lookup order.
var ManifestNames = []string{"boot.json", "boot.yaml", "boot.yml", "boot.toml", "boot.go"}

// IsManifestName reports whether name is one of ManifestNames.
func IsManifestName(name string) bool {
	for _, candidate := range ManifestNames {
		if name == candidate {
			return true
		}
	}
	return false
}

// ParseManifest decodes and validates a boot manifest. The decoder is picked
// from the file name's extension.
func ParseManifest(name string, data []byte) (BootManifest, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return BootManifest{}, fmt.Errorf("plugin: %s is empty", name)
	}
	var (
		manifest BootManifest
		err      error
	)
	switch strings.ToLower(path.Ext(name)) {
	case ".json":
		err = json.Unmarshal(data, &manifest)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &manifest)
	case ".toml":
		_, err = toml.Decode(string(data), &manifest)
	case ".go":
		manifest, err = evalGoManifest(name, data)
	default:
		return BootManifest{}, fmt.Errorf("plugin: %s: unsupported manifest format", name)
	}
	if err != nil {
		return BootManifest{}, fmt.Errorf("plugin: decode %s: %w", name, err)
	}
	if err := manifest.Validate(); err != nil {
		return BootManifest{}, err
	}
	return manifest.Normalized(), nil
}

// parseManifestYAML is the landing point for manifests produced in memory,
// such as those returned by Go boot files.
func parseManifestYAML(data []byte) (BootManifest, error) {
	var manifest BootManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return BootManifest{}, err
	}
	return manifest, nil
}
