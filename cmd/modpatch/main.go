// cmd/modpatch/main.go
//
// This is the entry point for the modpatch CLI. It loads the base content of
// a project, collects the replace edits declared by mod packages, applies
// them and records what happened under .modpatch/.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kingrea/modpatch/internal/config"
)

var rootCmd = &cobra.Command{
	Use:           "modpatch",
	Short:         "Apply declarative find-and-replace mods to game content",
	Long:          `modpatch applies the literal js/css/twee replace edits declared by mod packages to a content snapshot.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(reviewCmd)

	rootCmd.PersistentFlags().String("project", "", "path to the project directory (defaults to cwd)")
	rootCmd.PersistentFlags().String("color", "", "colorize console output (auto|on|off); overrides log.color")

	if err := rootCmd.Execute(); err != nil {
		die("%v", err)
	}
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// projectDir resolves --project against the working directory.
func projectDir(cmd *cobra.Command) (string, error) {
	project, err := cmd.Flags().GetString("project")
	if err != nil {
		return "", fmt.Errorf("failed to get project flag: %w", err)
	}
	if project == "" {
		project, err = os.Getwd()
		if err != nil {
			return "", fmt.Errorf("determine working directory: %w", err)
		}
	}
	abs, err := filepath.Abs(project)
	if err != nil {
		return "", fmt.Errorf("resolve project dir: %w", err)
	}
	return abs, nil
}

// loadProject makes sure .modpatch exists and loads its configuration.
func loadProject(cmd *cobra.Command) (*config.Config, error) {
	dir, err := projectDir(cmd)
	if err != nil {
		return nil, err
	}
	if err := config.InitDir(dir); err != nil {
		return nil, fmt.Errorf("init %s: %w", config.ProjectDirName, err)
	}
	cfg, err := config.NewConfig(dir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func colorFlag(cmd *cobra.Command) (string, error) {
	mode, err := cmd.Flags().GetString("color")
	if err != nil {
		return "", fmt.Errorf("failed to get color flag: %w", err)
	}
	if mode != "" && !config.ValidColor(mode) {
		return "", fmt.Errorf("unsupported color mode: %s (auto|on|off)", mode)
	}
	return mode, nil
}
