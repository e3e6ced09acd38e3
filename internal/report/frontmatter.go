package report

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kingrea/modpatch/internal/patch"
)

var (
	// ErrMissingFrontMatter indicates the document did not start with a YAML fence.
	ErrMissingFrontMatter = errors.New("report: missing frontmatter")
	// ErrMalformedFrontMatter indicates the YAML block could not be parsed.
	ErrMalformedFrontMatter = errors.New("report: malformed frontmatter")
)

// Parse extracts the report metadata and Markdown body from a document
// written by Render. Item changes live only in the body, so the returned
// report has no Changes.
func Parse(content []byte) (*patch.Report, []byte, error) {
	if len(content) == 0 {
		return nil, nil, ErrMissingFrontMatter
	}
	normalized := normalizeNewlines(content)
	if !bytes.HasPrefix(normalized, []byte("---\n")) {
		return nil, nil, ErrMissingFrontMatter
	}
	rest := normalized[4:]
	parts := bytes.SplitN(rest, []byte("\n---\n"), 2)
	if len(parts) < 2 {
		return nil, nil, ErrMalformedFrontMatter
	}
	var envelope reportEnvelope
	if err := yaml.Unmarshal(parts[0], &envelope); err != nil {
		return nil, nil, fmt.Errorf("report: parse frontmatter: %w", err)
	}
	rep, err := envelope.toReport()
	if err != nil {
		return nil, nil, err
	}
	return rep, bytes.TrimLeft(parts[1], "\n"), nil
}

// Render writes the report as Markdown with a YAML frontmatter block.
func Render(rep *patch.Report) ([]byte, error) {
	if rep == nil || rep.CycleID == "" {
		return nil, fmt.Errorf("report: missing cycle id")
	}
	envelope := reportEnvelope{}
	envelope.fromReport(rep)
	data, err := yaml.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("report: encode frontmatter: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(bytes.TrimRight(data, "\n"))
	buf.WriteString("\n---\n\n")
	writeBody(&buf, rep)
	return buf.Bytes(), nil
}

type reportEnvelope struct {
	Modpatch reportMetadata `yaml:"modpatch"`
}

type reportMetadata struct {
	Cycle        string                    `yaml:"cycle"`
	Started      string                    `yaml:"started"`
	Finished     string                    `yaml:"finished"`
	Before       string                    `yaml:"before"`
	After        string                    `yaml:"after"`
	Totals       reportTotals              `yaml:"totals"`
	Contributors []patch.ContributorResult `yaml:"contributors,omitempty"`
}

type reportTotals struct {
	Contributors  int `yaml:"contributors"`
	Applied       int `yaml:"applied"`
	TargetMissing int `yaml:"target_missing"`
	MatchMissing  int `yaml:"match_missing"`
	Rejected      int `yaml:"rejected"`
	Failed        int `yaml:"failed"`
}

func (e reportEnvelope) toReport() (*patch.Report, error) {
	if e.Modpatch.Cycle == "" {
		return nil, ErrMalformedFrontMatter
	}
	started, err := parseTime(e.Modpatch.Started)
	if err != nil {
		return nil, fmt.Errorf("report: parse started timestamp: %w", err)
	}
	finished, err := parseTime(e.Modpatch.Finished)
	if err != nil {
		return nil, fmt.Errorf("report: parse finished timestamp: %w", err)
	}
	return &patch.Report{
		CycleID:      e.Modpatch.Cycle,
		StartedAt:    started,
		FinishedAt:   finished,
		Before:       e.Modpatch.Before,
		After:        e.Modpatch.After,
		Contributors: append([]patch.ContributorResult(nil), e.Modpatch.Contributors...),
	}, nil
}

func (e *reportEnvelope) fromReport(rep *patch.Report) {
	totals := rep.Totals()
	e.Modpatch = reportMetadata{
		Cycle:    rep.CycleID,
		Started:  rep.StartedAt.UTC().Format(timeLayout),
		Finished: rep.FinishedAt.UTC().Format(timeLayout),
		Before:   rep.Before,
		After:    rep.After,
		Totals: reportTotals{
			Contributors:  totals.Contributors,
			Applied:       totals.Applied,
			TargetMissing: totals.TargetMissing,
			MatchMissing:  totals.MatchMissing,
			Rejected:      totals.Rejected,
			Failed:        totals.Failed,
		},
		Contributors: rep.Contributors,
	}
}

func writeBody(buf *bytes.Buffer, rep *patch.Report) {
	totals := rep.Totals()
	fmt.Fprintf(buf, "# Apply cycle %s\n\n", rep.CycleID)
	fmt.Fprintf(buf, "%d contributors: %d edits applied, %d targets missing, %d matches missing, %d rejected, %d failed.\n",
		totals.Contributors, totals.Applied, totals.TargetMissing, totals.MatchMissing, totals.Rejected, totals.Failed)

	if len(rep.Contributors) > 0 {
		buf.WriteString("\n## Contributors\n\n")
		for _, c := range rep.Contributors {
			fmt.Fprintf(buf, "- %s (%s): %d/%d edits applied\n", c.ID, c.Status, c.Applied(), len(c.Edits))
			if c.Err != "" {
				fmt.Fprintf(buf, "  - error: %s\n", c.Err)
			}
			for _, edit := range c.Edits {
				fmt.Fprintf(buf, "  - %s %s %q: %s", edit.Kind, edit.Target, edit.From, edit.Status)
				if edit.Status == patch.EditApplied {
					fmt.Fprintf(buf, " (%d of %d)", edit.Replaced, edit.Occurrences)
				}
				if edit.Ambiguous {
					buf.WriteString(" ambiguous")
				}
				buf.WriteString("\n")
			}
		}
	}

	if len(rep.Changes) > 0 {
		buf.WriteString("\n## Changes\n")
		for _, change := range rep.Changes {
			fmt.Fprintf(buf, "\n### %s %s\n\n````diff\n", change.Kind, change.Name)
			buf.WriteString(patch.Diff(change.Before, change.After))
			buf.WriteString("````\n")
		}
	}
}

const timeLayout = "2006-01-02T15:04:05Z07:00"

func parseTime(value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, fmt.Errorf("report: empty timestamp")
	}
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func normalizeNewlines(content []byte) []byte {
	return bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
}
