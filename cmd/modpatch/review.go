package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kingrea/modpatch/internal/tui"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Browse the most recent apply report",
	Args:  cobra.NoArgs,
	RunE:  runReview,
}

func runReview(cmd *cobra.Command, _ []string) error {
	cfg, err := loadProject(cmd)
	if err != nil {
		return err
	}
	app, err := tui.NewApp(cfg.ProjectDir)
	if err != nil {
		return err
	}
	// tea.WithAltScreen keeps the terminal contents intact after quitting
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run review: %w", err)
	}
	return nil
}
