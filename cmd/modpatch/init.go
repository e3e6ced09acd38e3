package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create .modpatch/ and the content and mods directories",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, _ []string) error {
	cfg, err := loadProject(cmd)
	if err != nil {
		return err
	}
	for _, dir := range []string{cfg.ContentDir(), cfg.ModsDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "config:  %s\n", cfg.ProjectConfigPath())
	fmt.Fprintf(out, "content: %s\n", cfg.ContentDir())
	fmt.Fprintf(out, "mods:    %s\n", cfg.ModsDir())
	return nil
}
