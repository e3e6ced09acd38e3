package report

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/kingrea/modpatch/internal/patch"
)

// ErrNoReports is returned by Latest when no report has been saved yet.
var ErrNoReports = errors.New("report: no reports saved")

const (
	reportExt       = ".md"
	fileStampLayout = "20060102T150405Z"
)

// Store reads and writes rendered reports in a single directory.
type Store struct {
	dir string
}

// NewStore builds a store rooted at dir (usually .modpatch/reports).
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the directory reports are written to.
func (s *Store) Dir() string {
	return s.dir
}

// Save renders rep and writes it under a name that sorts by start time.
func (s *Store) Save(rep *patch.Report) (string, error) {
	data, err := Render(rep)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("report: ensure %s: %w", s.dir, err)
	}
	path := filepath.Join(s.dir, fileName(rep))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("report: write %s: %w", path, err)
	}
	return path, nil
}

// List returns saved report paths, oldest first.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("report: read %s: %w", s.dir, err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), reportExt) {
			continue
		}
		paths = append(paths, filepath.Join(s.dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Load parses the report at path.
func (s *Store) Load(path string) (*patch.Report, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("report: read %s: %w", path, err)
	}
	rep, body, err := Parse(data)
	if err != nil {
		return nil, nil, fmt.Errorf("report: %s: %w", path, err)
	}
	return rep, body, nil
}

// Latest loads the most recent report.
func (s *Store) Latest() (*patch.Report, []byte, string, error) {
	paths, err := s.List()
	if err != nil {
		return nil, nil, "", err
	}
	if len(paths) == 0 {
		return nil, nil, "", ErrNoReports
	}
	path := paths[len(paths)-1]
	rep, body, err := s.Load(path)
	if err != nil {
		return nil, nil, "", err
	}
	return rep, body, path, nil
}

func fileName(rep *patch.Report) string {
	stamp := rep.StartedAt
	if stamp.IsZero() {
		stamp = time.Now()
	}
	id := rep.CycleID
	if len(id) > 8 {
		id = id[:8]
	}
	return stamp.UTC().Format(fileStampLayout) + "-" + id + reportExt
}
