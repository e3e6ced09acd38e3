package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kingrea/modpatch/internal/contracts"
	"github.com/kingrea/modpatch/internal/module"
	"github.com/kingrea/modpatch/internal/patch"
	"github.com/kingrea/modpatch/plugins"
)

var validateCmd = &cobra.Command{
	Use:   "validate [package...]",
	Short: "Check the replace specifications of mod packages without applying them",
	Long: `Load the given packages (or every package in the mods directory) and
validate their ReplacePatcher params. Exits non-zero when any package fails.`,
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	var pkgs []*plugins.Package
	if len(args) > 0 {
		for _, source := range args {
			pkg, err := plugins.LoadPackage(source)
			if err != nil {
				return err
			}
			pkgs = append(pkgs, pkg)
		}
	} else {
		cfg, err := loadProject(cmd)
		if err != nil {
			return err
		}
		pkgs, err = plugins.Discover(cmd.Context(), cfg.ModsDir(), cfg.LoadOrder())
		if err != nil {
			return fmt.Errorf("load packages: %w", err)
		}
	}
	if invalid := validatePackages(cmd.OutOrStdout(), pkgs); invalid > 0 {
		return fmt.Errorf("%d of %d packages failed validation", invalid, len(pkgs))
	}
	return nil
}

// validatePackages prints one block per package and returns how many failed.
func validatePackages(out io.Writer, pkgs []*plugins.Package) int {
	invalid := 0
	for _, pkg := range pkgs {
		addon, ok := module.FindAddon(pkg, patch.ModName, patch.AddonName)
		if !ok {
			fmt.Fprintf(out, "- %s: no %s addon, nothing to check\n", pkg.Name(), patch.ModName)
			continue
		}
		report := contracts.Check(pkg.Source, addon.Params)
		if report.IsValid() {
			fmt.Fprintf(out, "✓ %s: %d edits\n", pkg.Name(), report.Edits)
			continue
		}
		invalid++
		fmt.Fprintf(out, "✗ %s (%s)\n", pkg.Name(), report.Source)
		for _, err := range report.Errors {
			fmt.Fprintf(out, "    %v\n", err)
		}
	}
	return invalid
}
