package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kingrea/modpatch/internal/config"
	"github.com/kingrea/modpatch/internal/content"
	"github.com/kingrea/modpatch/internal/logging"
	"github.com/kingrea/modpatch/internal/module"
	"github.com/kingrea/modpatch/internal/patch"
	"github.com/kingrea/modpatch/internal/report"
	"github.com/kingrea/modpatch/plugins"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply every mod's replace edits to the base content",
	Long: `Load the base content, register every mod package in load order, run one
apply cycle and publish the result. The patched content is written to the
output directory (when configured), the published snapshot is saved under
.modpatch/state and a report is written to .modpatch/reports.`,
	Args: cobra.NoArgs,
	RunE: runApply,
}

func init() {
	applyCmd.Flags().Bool("dry-run", false, "apply in memory and print the report without writing anything")
	applyCmd.Flags().String("out", "", "write patched content here instead of the configured output")
}

type applyOptions struct {
	DryRun bool
	Out    string
}

type applyResult struct {
	Report     *patch.Report
	Snapshot   *content.Snapshot
	ReportPath string
	Unmatched  map[string][]module.Addon
}

func runApply(cmd *cobra.Command, _ []string) error {
	cfg, err := loadProject(cmd)
	if err != nil {
		return err
	}
	mode, err := colorFlag(cmd)
	if err != nil {
		return err
	}
	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return fmt.Errorf("failed to get dry-run flag: %w", err)
	}
	out, err := cmd.Flags().GetString("out")
	if err != nil {
		return fmt.Errorf("failed to get out flag: %w", err)
	}
	log, err := logging.Open(cfg, mode)
	if err != nil {
		return err
	}
	result, err := applyProject(cmd.Context(), cfg, applyOptions{DryRun: dryRun, Out: out}, log)
	if err != nil {
		return err
	}
	printSummary(cmd.OutOrStdout(), result, dryRun)
	return nil
}

// applyProject runs the whole pipeline for one project: load content, load
// and register packages, run the cycle and persist the outcome.
func applyProject(ctx context.Context, cfg *config.Config, opts applyOptions, log patch.Logger) (*applyResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	base, err := content.LoadDir(cfg.ContentDir())
	if err != nil {
		return nil, fmt.Errorf("load content: %w", err)
	}
	store := content.NewMemoryStore(base)
	engine := patch.New(store, patch.WithLogger(log))
	reg := module.NewRegistry()
	if err := engine.Init(reg); err != nil {
		return nil, fmt.Errorf("install %s: %w", patch.ModName, err)
	}

	pkgs, err := plugins.Discover(ctx, cfg.ModsDir(), cfg.LoadOrder())
	if err != nil {
		return nil, fmt.Errorf("load packages: %w", err)
	}
	unmatched, err := plugins.RegisterPackages(ctx, reg, pkgs)
	if err != nil {
		return nil, err
	}
	for name, addons := range unmatched {
		for _, addon := range addons {
			log.Warn("%s: addon %s/%s has no installed hook; ignored", name, addon.ModName, addon.AddonName)
		}
	}

	if err := reg.AfterPatch(ctx); err != nil {
		return nil, err
	}
	rep := engine.LastReport()
	if rep == nil {
		return nil, errors.New("apply cycle produced no report")
	}
	published, err := store.Current()
	if err != nil {
		return nil, err
	}
	result := &applyResult{Report: rep, Snapshot: published, Unmatched: unmatched}
	if opts.DryRun {
		return result, nil
	}

	outDir := cfg.OutputDir()
	if opts.Out != "" {
		outDir = opts.Out
	}
	if outDir != "" {
		if err := content.WriteDir(published, outDir); err != nil {
			return nil, fmt.Errorf("write output: %w", err)
		}
	}
	if err := content.SaveState(cfg.StatePath(), published); err != nil {
		return nil, fmt.Errorf("save state: %w", err)
	}
	path, err := report.NewStore(cfg.ReportsDir()).Save(rep)
	if err != nil {
		return nil, err
	}
	result.ReportPath = path
	return result, nil
}

func printSummary(out io.Writer, result *applyResult, dryRun bool) {
	totals := result.Report.Totals()
	fmt.Fprintf(out, "%d contributors: %d edits applied, %d targets missing, %d matches missing, %d rejected, %d failed\n",
		totals.Contributors, totals.Applied, totals.TargetMissing, totals.MatchMissing, totals.Rejected, totals.Failed)
	for _, change := range result.Report.Changes {
		fmt.Fprintf(out, "  modified %s %s\n", change.Kind, change.Name)
		if dryRun {
			fmt.Fprint(out, patch.Diff(change.Before, change.After))
		}
	}
	if result.ReportPath != "" {
		fmt.Fprintf(out, "report: %s\n", result.ReportPath)
	}
}
