// internal/tui/app.go
//
// This is the review TUI for modpatch. It shows the most recent apply
// report: contributors on the left, the selected contributor's edits (or the
// content diffs) on the right, and the tail of the project log underneath.
// It uses bubbletea, which follows The Elm Architecture:
//
// 1. Model: Your application state
// 2. Update: A function that updates state based on messages
// 3. View: A function that renders state to a string

package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/modpatch/internal/config"
	"github.com/kingrea/modpatch/internal/logbook"
	"github.com/kingrea/modpatch/internal/patch"
	"github.com/kingrea/modpatch/internal/report"
)

type paneFocus int

const (
	focusList paneFocus = iota
	focusDetail
)

const (
	logTailLines   = 6
	changesHeading = "## Changes"
)

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithReportStore overrides where reports are read from.
func WithReportStore(store *report.Store) AppOption {
	return func(a *App) {
		if store != nil {
			a.reports = store
		}
	}
}

type reportLoadedMsg struct {
	report *patch.Report
	body   []byte
	path   string
	err    error
}

// contributorItem implements list.Item for one contributor result.
type contributorItem struct {
	result patch.ContributorResult
}

func (i contributorItem) Title() string {
	return fmt.Sprintf("%s %s", statusGlyph(i.result.Status), i.result.ID)
}

func (i contributorItem) Description() string {
	return fmt.Sprintf("%s · %d/%d edits", i.result.Status, i.result.Applied(), len(i.result.Edits))
}

func (i contributorItem) FilterValue() string { return i.result.ID }

// changesItem is the trailing list entry that shows the rendered diffs.
type changesItem struct {
	count int
}

func (i changesItem) Title() string       { return "Δ Changes" }
func (i changesItem) Description() string { return fmt.Sprintf("%d items modified", i.count) }
func (i changesItem) FilterValue() string { return "changes" }

// App is the review model.
type App struct {
	config  *config.Config
	reports *report.Store
	logbook *logbook.Logbook

	list   list.Model
	detail viewport.Model
	focus  paneFocus

	report  *patch.Report
	body    []byte
	path    string
	changes string

	statusMsg string
	err       error

	width  int
	height int
}

// NewApp creates a new App instance for the project in projectDir.
func NewApp(projectDir string, opts ...AppOption) (*App, error) {
	cfg, err := config.NewConfig(projectDir)
	if err != nil {
		return nil, err
	}
	lb, err := logbook.New(cfg.LogPath())
	if err != nil {
		return nil, fmt.Errorf("tui: open log: %w", err)
	}

	contributors := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	contributors.Title = "Contributors"
	contributors.SetShowStatusBar(false)
	contributors.SetFilteringEnabled(false)

	app := &App{
		config:  cfg,
		reports: report.NewStore(cfg.ReportsDir()),
		logbook: lb,
		list:    contributors,
		detail:  viewport.New(0, 0),
		focus:   focusList,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	return app, nil
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return a.loadLatest()
}

func (a *App) loadLatest() tea.Cmd {
	store := a.reports
	return func() tea.Msg {
		rep, body, path, err := store.Latest()
		return reportLoadedMsg{report: rep, body: body, path: path, err: err}
	}
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resize()
		return a, nil

	case reportLoadedMsg:
		a.applyReport(msg)
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return a, tea.Quit
		case "tab":
			if a.focus == focusList {
				a.focus = focusDetail
			} else {
				a.focus = focusList
			}
			return a, nil
		case "r":
			a.statusMsg = "Reloading latest report..."
			return a, a.loadLatest()
		}
	}

	var cmd tea.Cmd
	if a.focus == focusList {
		before := a.list.Index()
		a.list, cmd = a.list.Update(msg)
		if a.list.Index() != before {
			a.refreshDetail()
		}
		return a, cmd
	}
	a.detail, cmd = a.detail.Update(msg)
	return a, cmd
}

func (a *App) applyReport(msg reportLoadedMsg) {
	if msg.err != nil {
		a.report = nil
		a.list.SetItems(nil)
		if errors.Is(msg.err, report.ErrNoReports) {
			a.err = nil
			a.statusMsg = "No apply reports yet. Run `modpatch apply` first."
		} else {
			a.err = msg.err
			a.statusMsg = ""
		}
		a.refreshDetail()
		return
	}
	a.err = nil
	a.report = msg.report
	a.body = msg.body
	a.path = msg.path
	a.changes = changesSection(string(msg.body))

	items := make([]list.Item, 0, len(msg.report.Contributors)+1)
	for _, c := range msg.report.Contributors {
		items = append(items, contributorItem{result: c})
	}
	if a.changes != "" {
		items = append(items, changesItem{count: strings.Count(a.changes, "\n### ")})
	}
	a.list.SetItems(items)
	a.list.Select(0)
	totals := msg.report.Totals()
	a.statusMsg = fmt.Sprintf("cycle %s · %d applied · %d skipped edits",
		shortID(msg.report.CycleID), totals.Applied, totals.TargetMissing+totals.MatchMissing)
	a.refreshDetail()
}

func (a *App) refreshDetail() {
	a.detail.SetContent(a.detailContent())
	a.detail.GotoTop()
}

func (a *App) detailContent() string {
	if a.report == nil {
		return ""
	}
	switch item := a.list.SelectedItem().(type) {
	case contributorItem:
		return renderContributor(item.result)
	case changesItem:
		return a.changes
	}
	return ""
}

func (a *App) resize() {
	leftWidth, rightWidth, bodyHeight := a.layout()
	a.list.SetSize(leftWidth, bodyHeight)
	a.detail.Width = rightWidth
	a.detail.Height = bodyHeight
}

func (a *App) layout() (left, right, height int) {
	width := a.width
	if width <= 0 {
		width = 100
	}
	left = max(24, width/3)
	right = max(20, width-left-6)
	height = max(6, a.height-logTailLines-8)
	return left, right, height
}

// changesSection returns the rendered diffs from a report body.
func changesSection(body string) string {
	idx := strings.Index(body, changesHeading)
	if idx < 0 {
		return ""
	}
	section := strings.TrimPrefix(body[idx:], changesHeading)
	return strings.TrimSpace(section) + "\n"
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
