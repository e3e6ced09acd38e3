package content

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultPassageFile receives passages that carry no Source.
const DefaultPassageFile = "passages.twee"

// KindForFile classifies a content file by extension. Twee files hold
// passages; the second return is false for files the loader ignores.
func KindForFile(name string) (Kind, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".js":
		return KindScript, true
	case ".css":
		return KindStyle, true
	case ".twee", ".tw":
		return KindPassage, true
	}
	return "", false
}

// LoadDir reads a content tree into a snapshot. Script and style items are
// keyed by their slash-separated path relative to root; passages by name.
// Files are visited in lexical order so item order is stable across runs.
func LoadDir(root string) (*Snapshot, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("content: stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("content: %s is not a directory", root)
	}
	snap := NewSnapshot()
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if p != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		kind, ok := KindForFile(d.Name())
		if !ok {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		data, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("content: read %s: %w", p, err)
		}
		if kind == KindPassage {
			passages, err := ParseTwee(rel, data)
			if err != nil {
				return err
			}
			for _, passage := range passages {
				if err := snap.Passages.Add(passage); err != nil {
					return fmt.Errorf("content: %s: %w", rel, err)
				}
			}
			return nil
		}
		return snap.Group(kind).Add(Item{Name: rel, Content: string(data), Source: rel})
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// WriteDir writes every item of the snapshot under root, regrouping passages
// into the twee files they were loaded from.
func WriteDir(snap *Snapshot, root string) error {
	if snap == nil {
		return fmt.Errorf("content: nothing to write")
	}
	for _, kind := range []Kind{KindScript, KindStyle} {
		for _, item := range snap.Group(kind).Items() {
			if err := writeFile(root, item.Name, []byte(item.Content)); err != nil {
				return err
			}
		}
	}
	bySource := map[string][]*Item{}
	for _, item := range snap.Passages.Items() {
		source := item.Source
		if source == "" {
			source = DefaultPassageFile
		}
		bySource[source] = append(bySource[source], item)
	}
	sources := make([]string, 0, len(bySource))
	for source := range bySource {
		sources = append(sources, source)
	}
	sort.Strings(sources)
	for _, source := range sources {
		if err := writeFile(root, source, FormatTwee(bySource[source])); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(root, name string, data []byte) error {
	clean := path.Clean("/" + name)
	target := filepath.Join(root, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("content: ensure dir for %s: %w", name, err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return fmt.Errorf("content: write %s: %w", name, err)
	}
	return nil
}
