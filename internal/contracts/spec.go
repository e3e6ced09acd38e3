package contracts

import (
	"errors"
	"fmt"

	"github.com/kingrea/modpatch/internal/content"
)

// ErrInvalidSpec marks a specification rejected by ValidateSpec.
var ErrInvalidSpec = errors.New("contracts: invalid replace specification")

// Edit is one literal find-and-replace instruction against one content item.
type Edit struct {
	Kind   content.Kind
	Target string
	From   string
	To     string
	// Debug asks the engine to report the content before and after the edit.
	Debug bool
	// All replaces every non-overlapping occurrence instead of the first.
	All bool
}

// Spec groups the edits declared by one contributor.
type Spec struct {
	Scripts  []Edit
	Styles   []Edit
	Passages []Edit
}

// Edits returns the edits of one kind.
func (s Spec) Edits(kind content.Kind) []Edit {
	switch kind {
	case content.KindScript:
		return s.Scripts
	case content.KindStyle:
		return s.Styles
	case content.KindPassage:
		return s.Passages
	}
	return nil
}

// Len reports the total number of edits.
func (s Spec) Len() int {
	return len(s.Scripts) + len(s.Styles) + len(s.Passages)
}

// DecodeSpec validates raw and converts it into typed edits. Any validation
// error rejects the whole specification.
func DecodeSpec(raw any) (Spec, error) {
	if errs := ValidateSpec(raw); len(errs) > 0 {
		return Spec{}, fmt.Errorf("%w: %w", ErrInvalidSpec, errors.Join(errs...))
	}
	fields, _ := asMap(raw)
	var spec Spec
	for _, contract := range Groups {
		entries, _ := asList(fields[contract.Key])
		if len(entries) == 0 {
			continue
		}
		edits := make([]Edit, 0, len(entries))
		for _, entry := range entries {
			edits = append(edits, decodeEdit(contract, entry))
		}
		switch contract.Kind {
		case content.KindScript:
			spec.Scripts = edits
		case content.KindStyle:
			spec.Styles = edits
		case content.KindPassage:
			spec.Passages = edits
		}
	}
	return spec, nil
}

func decodeEdit(contract Contract, entry any) Edit {
	fields, _ := asMap(entry)
	edit := Edit{
		Kind:   contract.Kind,
		Target: fields[contract.TargetField].(string),
		From:   fields["from"].(string),
		To:     fields["to"].(string),
	}
	edit.All, _ = fields["all"].(bool)
	edit.Debug, _ = fields["debug"].(bool)
	return edit
}
