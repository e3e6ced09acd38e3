package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/modpatch/internal/logbook"
	"github.com/kingrea/modpatch/internal/patch"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)
	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
	focusedPaneStyle = paneStyle.Copy().
				BorderForeground(lipgloss.Color("#5B8DEF"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#E5C07B"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#E06C75"))
	appliedMark = lipgloss.NewStyle().Foreground(lipgloss.Color("#98C379"))
)

// View renders the whole screen.
func (a *App) View() string {
	header := headerStyle.Render("⬡ MODPATCH · REVIEW")
	if a.path != "" {
		header = lipgloss.JoinHorizontal(lipgloss.Top, header, mutedStyle.Render("  "+filepath.Base(a.path)))
	}

	var main string
	if a.report == nil {
		main = paneStyle.Render(a.emptyMessage())
	} else {
		left, right := paneStyle, paneStyle
		if a.focus == focusList {
			left = focusedPaneStyle
		} else {
			right = focusedPaneStyle
		}
		main = lipgloss.JoinHorizontal(lipgloss.Top,
			left.Render(a.list.View()),
			right.Render(a.detail.View()),
		)
	}

	sections := []string{header, main}
	if status := a.renderStatus(); status != "" {
		sections = append(sections, status)
	}
	if panel := a.renderLogPanel(); panel != "" {
		sections = append(sections, panel)
	}
	sections = append(sections, mutedStyle.Render("tab: switch pane · ↑/↓: move · r: reload · q: quit"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (a *App) emptyMessage() string {
	if a.err != nil {
		return errorStyle.Render("Error: " + a.err.Error())
	}
	if a.statusMsg != "" {
		return a.statusMsg
	}
	return "Loading report..."
}

func (a *App) renderStatus() string {
	if a.report == nil || a.statusMsg == "" {
		return ""
	}
	return mutedStyle.Render(a.statusMsg)
}

func (a *App) renderLogPanel() string {
	if a.logbook == nil {
		return ""
	}
	lines, total := a.logbook.Tail(logTailLines)
	if len(lines) == 0 {
		return ""
	}
	rendered := make([]string, 0, len(lines))
	for _, line := range lines {
		rendered = append(rendered, renderLogLine(line))
	}
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render(fmt.Sprintf("LOG · %s · %d lines", filepath.Base(a.logbook.Path()), total))
	return paneStyle.Render(head + "\n" + strings.Join(rendered, "\n"))
}

func renderLogLine(line string) string {
	entry, ok := logbook.ParseLine(line)
	if !ok {
		return mutedStyle.Render(line)
	}
	message := strings.SplitN(entry.Message, "\n", 2)[0]
	text := fmt.Sprintf("%s %s", entry.Time.Local().Format("15:04:05"), message)
	switch entry.Level {
	case logbook.LevelWarn:
		return warnStyle.Render(text)
	case logbook.LevelError:
		return errorStyle.Render(text)
	}
	return mutedStyle.Render(text)
}

func renderContributor(result patch.ContributorResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", lipgloss.NewStyle().Bold(true).Render(result.ID))
	if result.Source != "" {
		fmt.Fprintf(&b, "%s\n", mutedStyle.Render(result.Source))
	}
	fmt.Fprintf(&b, "status: %s\n", result.Status)
	if result.Err != "" {
		fmt.Fprintf(&b, "%s\n", errorStyle.Render(result.Err))
	}
	if len(result.Edits) == 0 {
		return b.String()
	}
	b.WriteString("\n")
	for _, edit := range result.Edits {
		b.WriteString(renderEdit(edit))
		b.WriteString("\n")
	}
	return b.String()
}

func renderEdit(edit patch.EditOutcome) string {
	line := fmt.Sprintf("%s %s: %q", edit.Kind, edit.Target, edit.From)
	switch edit.Status {
	case patch.EditApplied:
		detail := fmt.Sprintf(" replaced %d of %d", edit.Replaced, edit.Occurrences)
		if edit.Ambiguous {
			return warnStyle.Render("! " + line + detail + " (ambiguous)")
		}
		return appliedMark.Render("✓ ") + line + mutedStyle.Render(detail)
	}
	return errorStyle.Render(fmt.Sprintf("✗ %s (%s)", line, edit.Status))
}

func statusGlyph(status patch.ContributorStatus) string {
	switch status {
	case patch.ContributorApplied:
		return "✓"
	case patch.ContributorPartial:
		return "!"
	case patch.ContributorSkipped:
		return "·"
	}
	return "✗"
}
