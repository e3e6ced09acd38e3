package content

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

const stateVersion = 1

type stateFile struct {
	Version  int    `msgpack:"version"`
	Scripts  []Item `msgpack:"scripts"`
	Styles   []Item `msgpack:"styles"`
	Passages []Item `msgpack:"passages"`
}

// SaveState persists a snapshot as msgpack so later commands can inspect
// what was published without reloading the content tree.
func SaveState(path string, snap *Snapshot) error {
	if snap == nil {
		return fmt.Errorf("content: nothing to save")
	}
	state := stateFile{
		Version:  stateVersion,
		Scripts:  flatten(snap.Scripts),
		Styles:   flatten(snap.Styles),
		Passages: flatten(snap.Passages),
	}
	data, err := msgpack.Marshal(&state)
	if err != nil {
		return fmt.Errorf("content: encode state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("content: ensure state dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("content: write state: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("content: commit state: %w", err)
	}
	return nil
}

// LoadState reads a snapshot written by SaveState. A missing file yields
// ErrNoSnapshot.
func LoadState(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("content: read state: %w", err)
	}
	var state stateFile
	if err := msgpack.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("content: decode state: %w", err)
	}
	if state.Version != stateVersion {
		return nil, fmt.Errorf("content: unsupported state version %d", state.Version)
	}
	snap := NewSnapshot()
	groups := map[Kind][]Item{
		KindScript:  state.Scripts,
		KindStyle:   state.Styles,
		KindPassage: state.Passages,
	}
	for _, kind := range Kinds {
		for _, item := range groups[kind] {
			if err := snap.Group(kind).Add(item); err != nil {
				return nil, fmt.Errorf("content: state %s: %w", kind, err)
			}
		}
	}
	return snap, nil
}

func flatten(g *Group) []Item {
	items := g.Items()
	out := make([]Item, len(items))
	for i, item := range items {
		out[i] = *item
	}
	return out
}
