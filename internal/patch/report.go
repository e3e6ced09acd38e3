package patch

import (
	"time"

	"github.com/kingrea/modpatch/internal/content"
)

// EditStatus is the outcome of a single edit.
type EditStatus string

const (
	EditApplied       EditStatus = "applied"
	EditTargetMissing EditStatus = "target-missing"
	EditMatchMissing  EditStatus = "match-missing"
)

// ContributorStatus summarizes how one contributor's specification fared.
type ContributorStatus string

const (
	// ContributorApplied means every edit matched.
	ContributorApplied ContributorStatus = "applied"
	// ContributorPartial means at least one edit was skipped.
	ContributorPartial ContributorStatus = "partial"
	// ContributorRejected means the specification failed validation.
	ContributorRejected ContributorStatus = "rejected"
	// ContributorSkipped means the package declared no replace addon entry.
	ContributorSkipped ContributorStatus = "skipped"
	// ContributorFailed means processing stopped on an unexpected fault.
	ContributorFailed ContributorStatus = "failed"
)

// EditOutcome records what happened to one edit.
type EditOutcome struct {
	Kind   content.Kind `yaml:"kind"`
	Target string       `yaml:"target"`
	From   string       `yaml:"from"`
	All    bool         `yaml:"all,omitempty"`
	Status EditStatus   `yaml:"status"`
	// Occurrences counts non-overlapping matches before the edit ran.
	Occurrences int `yaml:"occurrences"`
	Replaced    int `yaml:"replaced"`
	// Ambiguous is set when several matches existed but only the first was replaced.
	Ambiguous bool   `yaml:"ambiguous,omitempty"`
	Err       string `yaml:"error,omitempty"`
}

// Cause maps the outcome back to its sentinel error, nil when applied.
func (o EditOutcome) Cause() error {
	switch o.Status {
	case EditTargetMissing:
		return ErrTargetNotFound
	case EditMatchMissing:
		return ErrMatchNotFound
	}
	return nil
}

// ContributorResult records the processing of one registration.
type ContributorResult struct {
	ID     string            `yaml:"id"`
	Source string            `yaml:"source,omitempty"`
	Status ContributorStatus `yaml:"status"`
	Err    string            `yaml:"error,omitempty"`
	Edits  []EditOutcome     `yaml:"edits,omitempty"`
}

// Applied counts the contributor's edits that matched and ran.
func (r ContributorResult) Applied() int {
	n := 0
	for _, edit := range r.Edits {
		if edit.Status == EditApplied {
			n++
		}
	}
	return n
}

// Report describes one apply cycle.
type Report struct {
	CycleID      string              `yaml:"cycle"`
	StartedAt    time.Time           `yaml:"started"`
	FinishedAt   time.Time           `yaml:"finished"`
	Before       string              `yaml:"before"`
	After        string              `yaml:"after"`
	Contributors []ContributorResult `yaml:"contributors"`
	// Changes holds every item whose content the cycle modified.
	Changes []content.Change `yaml:"-"`
}

// Totals aggregates a report for summaries.
type Totals struct {
	Contributors  int
	Rejected      int
	Failed        int
	Applied       int
	TargetMissing int
	MatchMissing  int
}

// Totals counts contributors and edit outcomes across the report.
func (r *Report) Totals() Totals {
	var t Totals
	if r == nil {
		return t
	}
	for _, c := range r.Contributors {
		t.Contributors++
		switch c.Status {
		case ContributorRejected:
			t.Rejected++
		case ContributorFailed:
			t.Failed++
		}
		for _, edit := range c.Edits {
			switch edit.Status {
			case EditApplied:
				t.Applied++
			case EditTargetMissing:
				t.TargetMissing++
			case EditMatchMissing:
				t.MatchMissing++
			}
		}
	}
	return t
}

// Clean reports whether every contributor applied every edit.
func (r *Report) Clean() bool {
	if r == nil {
		return false
	}
	for _, c := range r.Contributors {
		if c.Status != ContributorApplied {
			return false
		}
	}
	return true
}

func summarize(edits []EditOutcome) ContributorStatus {
	for _, edit := range edits {
		if edit.Status != EditApplied {
			return ContributorPartial
		}
	}
	return ContributorApplied
}
