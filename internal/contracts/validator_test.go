package contracts

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/kingrea/modpatch/internal/content"
)

func TestValidateSpec(t *testing.T) {
	tests := []struct {
		name      string
		raw       any
		wantValid bool
	}{
		{name: "nil", raw: nil, wantValid: false},
		{name: "not-a-mapping", raw: "js", wantValid: false},
		{name: "empty-mapping", raw: map[string]any{}, wantValid: true},
		{name: "null-group", raw: map[string]any{"js": nil}, wantValid: true},
		{
			name: "valid-all-groups",
			raw: map[string]any{
				"js":   []any{map[string]any{"fileName": "main.js", "from": "a", "to": "b"}},
				"css":  []any{map[string]any{"fileName": "s.css", "from": "a", "to": "", "all": true}},
				"twee": []any{map[string]any{"passageName": "Start", "from": "a", "to": "b", "debug": true}},
			},
			wantValid: true,
		},
		{
			name:      "group-not-a-list",
			raw:       map[string]any{"js": map[string]any{"fileName": "main.js"}},
			wantValid: false,
		},
		{
			name:      "empty-from",
			raw:       map[string]any{"js": []any{map[string]any{"fileName": "main.js", "from": "", "to": "b"}}},
			wantValid: false,
		},
		{
			name:      "missing-to",
			raw:       map[string]any{"js": []any{map[string]any{"fileName": "main.js", "from": "a"}}},
			wantValid: false,
		},
		{
			name:      "non-string-to",
			raw:       map[string]any{"css": []any{map[string]any{"fileName": "s.css", "from": "a", "to": 3}}},
			wantValid: false,
		},
		{
			name:      "twee-needs-passage-name",
			raw:       map[string]any{"twee": []any{map[string]any{"fileName": "Start", "from": "a", "to": "b"}}},
			wantValid: false,
		},
		{
			name:      "all-must-be-bool",
			raw:       map[string]any{"js": []any{map[string]any{"fileName": "main.js", "from": "a", "to": "b", "all": "true"}}},
			wantValid: false,
		},
		{
			name:      "entry-not-a-mapping",
			raw:       map[string]any{"twee": []any{"Start"}},
			wantValid: false,
		},
		{
			name:      "yaml-style-keys",
			raw:       map[any]any{"js": []any{map[any]any{"fileName": "main.js", "from": "a", "to": "b"}}},
			wantValid: true,
		},
		{
			name:      "non-string-key",
			raw:       map[any]any{1: "x"},
			wantValid: false,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			errs := ValidateSpec(test.raw)
			if got := len(errs) == 0; got != test.wantValid {
				t.Fatalf("valid=%v want=%v errors=%v", got, test.wantValid, errs)
			}
			if Valid(test.raw) != test.wantValid {
				t.Fatalf("Valid disagrees with ValidateSpec")
			}
		})
	}
}

func TestValidateSpecReportsEveryProblem(t *testing.T) {
	raw := map[string]any{
		"js": []any{
			map[string]any{"fileName": "main.js", "from": "a", "to": "b"},
			map[string]any{"from": "", "all": 1},
		},
	}
	errs := ValidateSpec(raw)
	if len(errs) != 4 {
		t.Fatalf("len(errs) = %d, want 4: %v", len(errs), errs)
	}
}

func TestDecodeSpec(t *testing.T) {
	raw := map[string]any{
		"twee": []any{map[string]any{"passageName": "Start", "from": "Hello", "to": "Hi", "debug": true}},
		"js": []any{
			map[string]any{"fileName": "main.js", "from": "let x = 1;", "to": "let y = 2;", "all": true},
			map[string]any{"fileName": "main.js", "from": "y", "to": ""},
		},
		"unknown": "ignored",
	}
	spec, err := DecodeSpec(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := Spec{
		Scripts: []Edit{
			{Kind: content.KindScript, Target: "main.js", From: "let x = 1;", To: "let y = 2;", All: true},
			{Kind: content.KindScript, Target: "main.js", From: "y", To: ""},
		},
		Passages: []Edit{
			{Kind: content.KindPassage, Target: "Start", From: "Hello", To: "Hi", Debug: true},
		},
	}
	if diff := cmp.Diff(want, spec); diff != "" {
		t.Fatalf("spec mismatch (-want +got):\n%s", diff)
	}
	if spec.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", spec.Len())
	}
}

func TestDecodeSpecRejectsWholeSpec(t *testing.T) {
	raw := map[string]any{
		"js": []any{
			map[string]any{"fileName": "main.js", "from": "a", "to": "b"},
			map[string]any{"fileName": "main.js", "from": "c", "to": "d", "all": "yes"},
		},
	}
	spec, err := DecodeSpec(raw)
	if !errors.Is(err, ErrInvalidSpec) {
		t.Fatalf("err = %v, want ErrInvalidSpec", err)
	}
	if spec.Len() != 0 {
		t.Fatalf("rejected spec must carry no edits, got %d", spec.Len())
	}
}

func TestDecodeSpecFromManifestFormats(t *testing.T) {
	jsonDoc := `{"js":[{"fileName":"main.js","from":"a","to":"b","all":true}]}`
	yamlDoc := "js:\n  - fileName: main.js\n    from: a\n    to: b\n    all: true\n"
	tomlDoc := "[[js]]\nfileName = \"main.js\"\nfrom = \"a\"\nto = \"b\"\nall = true\n"

	var fromJSON, fromYAML, fromTOML any
	if err := json.Unmarshal([]byte(jsonDoc), &fromJSON); err != nil {
		t.Fatalf("json: %v", err)
	}
	if err := yaml.Unmarshal([]byte(yamlDoc), &fromYAML); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	var tomlMap map[string]any
	if _, err := toml.Decode(tomlDoc, &tomlMap); err != nil {
		t.Fatalf("toml: %v", err)
	}
	fromTOML = tomlMap

	want := Spec{Scripts: []Edit{{Kind: content.KindScript, Target: "main.js", From: "a", To: "b", All: true}}}
	for name, raw := range map[string]any{"json": fromJSON, "yaml": fromYAML, "toml": fromTOML} {
		spec, err := DecodeSpec(raw)
		if err != nil {
			t.Fatalf("%s: decode: %v", name, err)
		}
		if diff := cmp.Diff(want, spec); diff != "" {
			t.Fatalf("%s: spec mismatch (-want +got):\n%s", name, diff)
		}
	}
}

func TestCheckReport(t *testing.T) {
	report := Check("mods/a", map[string]any{"css": []any{map[string]any{"fileName": "s.css", "from": "a", "to": "b"}}})
	if !report.IsValid() || report.Edits != 1 || report.Source != "mods/a" {
		t.Fatalf("unexpected report: %+v", report)
	}
	bad := Check("mods/b", 42)
	if bad.IsValid() || bad.Edits != 0 {
		t.Fatalf("unexpected report: %+v", bad)
	}
	var nilReport *Report
	if nilReport.IsValid() {
		t.Fatalf("nil report must be invalid")
	}
}

func TestContractLookup(t *testing.T) {
	c, ok := ContractForKey("twee")
	if !ok || c.TargetField != "passageName" || c.Kind != content.KindPassage {
		t.Fatalf("ContractForKey(twee) = %+v, %v", c, ok)
	}
	if _, ok := ContractForKey("html"); ok {
		t.Fatalf("unexpected contract for html")
	}
	c, ok = ContractForKind(content.KindStyle)
	if !ok || c.Key != "css" {
		t.Fatalf("ContractForKind(style) = %+v, %v", c, ok)
	}
}
