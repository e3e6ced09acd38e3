package patch

import (
	"errors"
	"testing"
)

func TestReportTotalsAndClean(t *testing.T) {
	rep := &Report{Contributors: []ContributorResult{
		{ID: "a", Status: ContributorApplied, Edits: []EditOutcome{{Status: EditApplied}, {Status: EditApplied}}},
		{ID: "b", Status: ContributorPartial, Edits: []EditOutcome{{Status: EditTargetMissing}, {Status: EditMatchMissing}, {Status: EditApplied}}},
		{ID: "c", Status: ContributorRejected},
		{ID: "d", Status: ContributorFailed},
	}}
	want := Totals{Contributors: 4, Rejected: 1, Failed: 1, Applied: 3, TargetMissing: 1, MatchMissing: 1}
	if got := rep.Totals(); got != want {
		t.Fatalf("totals = %+v, want %+v", got, want)
	}
	if rep.Clean() {
		t.Fatalf("report with partial contributors must not be clean")
	}
	if (&Report{Contributors: rep.Contributors[:1]}).Clean() != true {
		t.Fatalf("all-applied report should be clean")
	}
	var nilReport *Report
	if nilReport.Clean() || nilReport.Totals() != (Totals{}) {
		t.Fatalf("nil report should be empty and unclean")
	}
}

func TestEditOutcomeCause(t *testing.T) {
	tests := []struct {
		status EditStatus
		want   error
	}{
		{EditApplied, nil},
		{EditTargetMissing, ErrTargetNotFound},
		{EditMatchMissing, ErrMatchNotFound},
	}
	for _, test := range tests {
		if got := (EditOutcome{Status: test.status}).Cause(); !errors.Is(got, test.want) || (test.want == nil && got != nil) {
			t.Fatalf("%s cause = %v, want %v", test.status, got, test.want)
		}
	}
}

func TestSummarize(t *testing.T) {
	if got := summarize(nil); got != ContributorApplied {
		t.Fatalf("no edits = %s, want applied", got)
	}
	if got := summarize([]EditOutcome{{Status: EditApplied}, {Status: EditMatchMissing}}); got != ContributorPartial {
		t.Fatalf("mixed edits = %s, want partial", got)
	}
}
