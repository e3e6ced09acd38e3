package plugins

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
	"gopkg.in/yaml.v3"
)

const goManifestFuncName = "BootConfig"

// evalGoManifest interprets a boot.go file and decodes the map returned by
// its BootConfig function. The map is round-tripped through YAML so Go and
// YAML manifests go through the same decoder.
func evalGoManifest(name string, code []byte) (BootManifest, error) {
	if len(strings.TrimSpace(string(code))) == 0 {
		return BootManifest{}, fmt.Errorf("%s is empty", name)
	}
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return BootManifest{}, fmt.Errorf("load stdlib symbols: %w", err)
	}
	if _, err := i.Eval(string(code)); err != nil {
		return BootManifest{}, fmt.Errorf("interpret %s: %w", name, err)
	}
	fnValue, err := i.Eval(goManifestFuncName)
	if err != nil {
		return BootManifest{}, fmt.Errorf("%s must define %s() (map[string]any, error): %w", name, goManifestFuncName, err)
	}
	raw, err := invokeManifestFunc(fnValue)
	if err != nil {
		return BootManifest{}, fmt.Errorf("%s: %w", name, err)
	}
	payload, err := yaml.Marshal(raw)
	if err != nil {
		return BootManifest{}, fmt.Errorf("%s: encode manifest: %w", name, err)
	}
	return parseManifestYAML(payload)
}

func invokeManifestFunc(value reflect.Value) (map[string]any, error) {
	if !value.IsValid() {
		return nil, fmt.Errorf("missing %s function", goManifestFuncName)
	}
	if value.Kind() != reflect.Func {
		return nil, fmt.Errorf("%s is not a function", goManifestFuncName)
	}
	results := value.Call(nil)
	if len(results) == 0 || len(results) > 2 {
		return nil, fmt.Errorf("%s must return (map[string]any[, error])", goManifestFuncName)
	}
	if len(results) == 2 && !results[1].IsNil() {
		if e, ok := results[1].Interface().(error); ok && e != nil {
			return nil, e
		}
		return nil, fmt.Errorf("%s returned non-error second value", goManifestFuncName)
	}
	raw, ok := results[0].Interface().(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s must return map[string]any", goManifestFuncName)
	}
	return raw, nil
}
