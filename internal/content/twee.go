package content

import (
	"bytes"
	"fmt"
	"strings"
)

const tweeHeaderPrefix = "::"

// ParseTwee splits a Twee document into passage items. source is recorded on
// each item so WriteDir can regroup passages into the file they came from.
func ParseTwee(source string, data []byte) ([]Item, error) {
	text := string(normalizeNewlines(data))
	lines := strings.Split(text, "\n")
	var (
		items   []Item
		current *Item
		body    []string
	)
	flush := func() {
		if current == nil {
			return
		}
		current.Content = strings.TrimRight(strings.Join(body, "\n"), "\n")
		items = append(items, *current)
		current = nil
		body = nil
	}
	for idx, line := range lines {
		if strings.HasPrefix(line, tweeHeaderPrefix) {
			flush()
			name, meta := parseTweeHeader(line[len(tweeHeaderPrefix):])
			if name == "" {
				return nil, fmt.Errorf("content: %s:%d: passage header without a name", source, idx+1)
			}
			current = &Item{Name: name, Source: source, Meta: meta}
			continue
		}
		if current == nil {
			if strings.TrimSpace(line) != "" {
				return nil, fmt.Errorf("content: %s:%d: text before the first passage header", source, idx+1)
			}
			continue
		}
		body = append(body, line)
	}
	flush()
	return items, nil
}

func parseTweeHeader(header string) (string, string) {
	var name strings.Builder
	rest := ""
	escaped := false
	for i, r := range header {
		if escaped {
			name.WriteRune(r)
			escaped = false
			continue
		}
		if r == '\\' {
			escaped = true
			continue
		}
		if r == '[' || r == '{' {
			rest = header[i:]
			break
		}
		name.WriteRune(r)
	}
	return strings.TrimSpace(name.String()), strings.TrimSpace(rest)
}

// FormatTwee renders passages back into a Twee document.
func FormatTwee(items []*Item) []byte {
	var buf bytes.Buffer
	for i, item := range items {
		if i > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(tweeHeaderPrefix)
		buf.WriteString(" ")
		buf.WriteString(escapeTweeName(item.Name))
		if item.Meta != "" {
			buf.WriteString(" ")
			buf.WriteString(item.Meta)
		}
		buf.WriteString("\n")
		buf.WriteString(item.Content)
		buf.WriteString("\n")
	}
	return buf.Bytes()
}

var tweeNameEscaper = strings.NewReplacer(`\`, `\\`, `[`, `\[`, `]`, `\]`, `{`, `\{`, `}`, `\}`)

func escapeTweeName(name string) string {
	return tweeNameEscaper.Replace(name)
}

func normalizeNewlines(content []byte) []byte {
	return bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
}
