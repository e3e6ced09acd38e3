package plugins

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/kingrea/modpatch/internal/module"
)

const maxParallelLoads = 8

// Discover loads every package under dir. Packages are read in parallel but
// returned in a fixed order: names listed in order come first, in that
// order, followed by the rest sorted by source path. Missing directories are
// treated as "no packages".
func Discover(ctx context.Context, dir string, order []string) ([]*Package, error) {
	trimmed := strings.TrimSpace(dir)
	if trimmed == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(trimmed)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("plugin: read %s: %w", trimmed, err)
	}
	var sources []string
	for _, entry := range entries {
		if IsPackageSource(entry.Name(), entry.IsDir()) {
			sources = append(sources, filepath.Join(trimmed, entry.Name()))
		}
	}
	sort.Strings(sources)

	pkgs := make([]*Package, len(sources))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelLoads)
	for idx, source := range sources {
		idx, source := idx, source
		g.Go(func() error {
			pkg, err := LoadPackage(source)
			if err != nil {
				return err
			}
			pkgs[idx] = pkg
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]string, len(pkgs))
	for _, pkg := range pkgs {
		if existing, ok := seen[pkg.Name()]; ok {
			return nil, fmt.Errorf("plugin: duplicate package name %s (%s and %s)", pkg.Name(), existing, pkg.Source)
		}
		seen[pkg.Name()] = pkg.Source
	}
	return applyLoadOrder(pkgs, order), nil
}

func applyLoadOrder(pkgs []*Package, order []string) []*Package {
	if len(order) == 0 {
		return pkgs
	}
	rank := make(map[string]int, len(order))
	for idx, name := range order {
		if _, exists := rank[name]; !exists {
			rank[name] = idx
		}
	}
	out := append([]*Package(nil), pkgs...)
	sort.SliceStable(out, func(i, j int) bool {
		ri, iok := rank[out[i].Name()]
		rj, jok := rank[out[j].Name()]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		}
		return false
	})
	return out
}

// RegisterPackages hands every package to the hooks its addon list names,
// in order. Addon entries without an installed hook are returned keyed by
// package name so the caller can report them.
func RegisterPackages(ctx context.Context, reg *module.Registry, pkgs []*Package) (map[string][]module.Addon, error) {
	if reg == nil {
		return nil, nil
	}
	unmatched := map[string][]module.Addon{}
	for _, pkg := range pkgs {
		missing, err := reg.Dispatch(ctx, pkg, pkg.Source)
		if err != nil {
			return nil, fmt.Errorf("plugin: register %s from %s: %w", pkg.Name(), pkg.Source, err)
		}
		if len(missing) > 0 {
			unmatched[pkg.Name()] = missing
		}
	}
	return unmatched, nil
}
