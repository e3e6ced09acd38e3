package patch

import (
	"strings"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

const diffContextLines = 2

// Diff renders the change from before to after line by line: removed lines
// start with "-", added lines with "+", and unchanged runs are cut down to a
// little context around each change ("..." marks a cut). Identical inputs
// produce "".
func Diff(before, after string) string {
	if before == after {
		return ""
	}
	dmp := diffpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out strings.Builder
	for i, d := range diffs {
		chunk := strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n")
		switch d.Type {
		case diffpatch.DiffDelete:
			writePrefixed(&out, "-", chunk)
		case diffpatch.DiffInsert:
			writePrefixed(&out, "+", chunk)
		case diffpatch.DiffEqual:
			head, tail, elided := contextLines(chunk, i > 0, i < len(diffs)-1)
			writePrefixed(&out, " ", head)
			if elided {
				out.WriteString("...\n")
			}
			writePrefixed(&out, " ", tail)
		}
	}
	return out.String()
}

func contextLines(lines []string, afterChange, beforeChange bool) (head, tail []string, elided bool) {
	n := diffContextLines
	switch {
	case afterChange && beforeChange:
		if len(lines) <= 2*n+1 {
			return lines, nil, false
		}
		return lines[:n], lines[len(lines)-n:], true
	case afterChange:
		if len(lines) <= n {
			return lines, nil, false
		}
		return lines[:n], nil, true
	case beforeChange:
		if len(lines) <= n {
			return nil, lines, false
		}
		return nil, lines[len(lines)-n:], true
	}
	return nil, nil, len(lines) > 0
}

func writePrefixed(out *strings.Builder, prefix string, lines []string) {
	for _, line := range lines {
		out.WriteString(prefix)
		out.WriteString(line)
		out.WriteString("\n")
	}
}
