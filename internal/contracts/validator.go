package contracts

import (
	"fmt"
)

// ValidateSpec checks a decoded replace specification against the edit
// contracts. raw is whatever the manifest decoder produced (JSON, YAML and
// TOML all land here as maps and slices). It never panics and never stops
// at the first problem.
func ValidateSpec(raw any) []error {
	if raw == nil {
		return []error{fmt.Errorf("params are missing")}
	}
	spec, ok := asMap(raw)
	if !ok {
		return []error{fmt.Errorf("params must be a mapping, got %T", raw)}
	}
	var errs []error
	for _, contract := range Groups {
		value, present := spec[contract.Key]
		if !present || value == nil {
			continue
		}
		entries, ok := asList(value)
		if !ok {
			errs = append(errs, fmt.Errorf("%s must be a list, got %T", contract.Key, value))
			continue
		}
		for index, entry := range entries {
			errs = append(errs, validateEdit(contract, index, entry)...)
		}
	}
	return errs
}

// Valid reports whether raw is an acceptable replace specification.
func Valid(raw any) bool {
	return len(ValidateSpec(raw)) == 0
}

func validateEdit(contract Contract, index int, entry any) []error {
	fields, ok := asMap(entry)
	if !ok {
		return []error{fmt.Errorf("%s[%d] must be a mapping, got %T", contract.Key, index, entry)}
	}
	var errs []error
	if from, ok := fields["from"].(string); !ok || from == "" {
		errs = append(errs, fmt.Errorf("%s[%d].from must be a non-empty string", contract.Key, index))
	}
	if _, ok := fields["to"].(string); !ok {
		errs = append(errs, fmt.Errorf("%s[%d].to must be a string", contract.Key, index))
	}
	if target, ok := fields[contract.TargetField].(string); !ok || target == "" {
		errs = append(errs, fmt.Errorf("%s[%d].%s must be a non-empty string", contract.Key, index, contract.TargetField))
	}
	if all, present := fields["all"]; present {
		if _, ok := all.(bool); !ok {
			errs = append(errs, fmt.Errorf("%s[%d].all must be a boolean, got %T", contract.Key, index, all))
		}
	}
	return errs
}

func asMap(value any) (map[string]any, bool) {
	switch typed := value.(type) {
	case map[string]any:
		return typed, true
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, v := range typed {
			name, ok := key.(string)
			if !ok {
				return nil, false
			}
			out[name] = v
		}
		return out, true
	}
	return nil, false
}

func asList(value any) ([]any, bool) {
	switch typed := value.(type) {
	case []any:
		return typed, true
	case []map[string]any:
		out := make([]any, len(typed))
		for i, entry := range typed {
			out[i] = entry
		}
		return out, true
	}
	return nil, false
}
