package contracts

// Report captures validation results for one contributor's specification.
type Report struct {
	Source string
	Edits  int
	Errors []error
}

// Check validates raw and records where it came from. Edits counts the
// entries that would apply when the specification is valid.
func Check(source string, raw any) *Report {
	report := &Report{
		Source: source,
		Errors: ValidateSpec(raw),
	}
	if report.IsValid() {
		if spec, err := DecodeSpec(raw); err == nil {
			report.Edits = spec.Len()
		}
	}
	return report
}

// IsValid reports whether the validation passed.
func (r *Report) IsValid() bool {
	return r != nil && len(r.Errors) == 0
}
