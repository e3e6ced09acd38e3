// internal/config/config.go
//
// This package handles configuration and the .modpatch directory structure.
// Every project that patches content gets a .modpatch/ folder in its root.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// ProjectDirName is the name of the directory we create in each project
	ProjectDirName = ".modpatch"

	// ContentEnv overrides the content directory from config.yaml.
	ContentEnv = "MODPATCH_CONTENT"

	defaultContentDir = "content"
	defaultModsDir    = "mods"
)

// Color modes for console logging.
const (
	ColorAuto = "auto"
	ColorOn   = "on"
	ColorOff  = "off"
)

const defaultProjectConfigYAML = `# modpatch project configuration
version: 1

# Directory holding the base content: .js scripts, .css styles and .twee passages.
content: content

# Directory holding mod packages (directories, .zip or .tar.xz archives).
mods: mods

# Where "modpatch apply" writes the patched content. Leave empty to only
# record the published snapshot under .modpatch/state.
# output: build

# Mods listed here register first, in this order. Others follow by path.
# load_order:
#   - base-fixes

log:
  console: true
  color: auto
`

// LogConfig controls the console side of logging. The log file is always written.
type LogConfig struct {
	Console bool   `yaml:"console"`
	Color   string `yaml:"color"`
}

// ProjectConfig models .modpatch/config.yaml.
type ProjectConfig struct {
	Version   int       `yaml:"version"`
	Content   string    `yaml:"content"`
	Mods      string    `yaml:"mods"`
	Output    string    `yaml:"output,omitempty"`
	LoadOrder []string  `yaml:"load_order,omitempty"`
	Log       LogConfig `yaml:"log"`
}

// Config holds the runtime configuration for one project.
type Config struct {
	// ProjectDir is the directory modpatch runs against
	ProjectDir string

	// StateRoot is ProjectDir/.modpatch
	StateRoot string

	Project ProjectConfig
}

// InitDir creates the .modpatch directory structure in the given project directory.
//
// Structure created:
// .modpatch/
// ├── config.yaml
// ├── logs/     <- modpatch.log
// ├── state/    <- last published snapshot
// └── reports/  <- one report per apply cycle
func InitDir(projectDir string) error {
	root := filepath.Join(projectDir, ProjectDirName)
	dirs := []string{
		filepath.Join(root, "logs"),
		filepath.Join(root, "state"),
		filepath.Join(root, "reports"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return ensureProjectConfig(filepath.Join(root, "config.yaml"))
}

// NewConfig loads the project configuration. A missing config.yaml yields the defaults.
func NewConfig(projectDir string) (*Config, error) {
	abs, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", projectDir, err)
	}
	cfg := &Config{
		ProjectDir: abs,
		StateRoot:  filepath.Join(abs, ProjectDirName),
		Project:    defaultProjectConfig(),
	}
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	if override := strings.TrimSpace(os.Getenv(ContentEnv)); override != "" {
		cfg.Project.Content = resolvePath(abs, override)
	}
	return cfg, nil
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.StateRoot, "logs")
}

// LogPath returns the log file shared by every command.
func (c *Config) LogPath() string {
	return filepath.Join(c.LogsDir(), "modpatch.log")
}

// StateDir returns the path to the state directory
func (c *Config) StateDir() string {
	return filepath.Join(c.StateRoot, "state")
}

// StatePath returns where the last published snapshot is persisted.
func (c *Config) StatePath() string {
	return filepath.Join(c.StateDir(), "published.msgpack")
}

// ReportsDir returns the path to the reports directory
func (c *Config) ReportsDir() string {
	return filepath.Join(c.StateRoot, "reports")
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.StateRoot, "config.yaml")
}

// ContentDir returns the resolved base content directory.
func (c *Config) ContentDir() string {
	return c.Project.Content
}

// ModsDir returns the resolved mod package directory.
func (c *Config) ModsDir() string {
	return c.Project.Mods
}

// OutputDir returns the resolved output directory, or "" when none is configured.
func (c *Config) OutputDir() string {
	return c.Project.Output
}

// LoadOrder returns the explicit mod order.
func (c *Config) LoadOrder() []string {
	return append([]string(nil), c.Project.LoadOrder...)
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	parsed := defaultProjectConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize(c.ProjectDir)
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	c.Project = parsed
	return nil
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version: 1,
		Content: defaultContentDir,
		Mods:    defaultModsDir,
		Log:     LogConfig{Console: true, Color: ColorAuto},
	}
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if strings.TrimSpace(pc.Content) == "" {
		pc.Content = defaultContentDir
	}
	if strings.TrimSpace(pc.Mods) == "" {
		pc.Mods = defaultModsDir
	}
	if strings.TrimSpace(pc.Log.Color) == "" {
		pc.Log.Color = ColorAuto
	}
}

func (pc *ProjectConfig) normalize(base string) {
	pc.Content = resolvePath(base, pc.Content)
	pc.Mods = resolvePath(base, pc.Mods)
	pc.Output = resolvePath(base, pc.Output)
	pc.Log.Color = strings.ToLower(strings.TrimSpace(pc.Log.Color))
	var order []string
	for _, name := range pc.LoadOrder {
		name = strings.TrimSpace(name)
		if name != "" && !contains(order, name) {
			order = append(order, name)
		}
	}
	pc.LoadOrder = order
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if !ValidColor(pc.Log.Color) {
		return fmt.Errorf("log.color must be 'auto', 'on' or 'off'")
	}
	if pc.Output != "" && pc.Output == pc.Content {
		return fmt.Errorf("output must differ from content")
	}
	return nil
}

// ValidColor reports whether mode is a known color mode.
func ValidColor(mode string) bool {
	switch mode {
	case ColorAuto, ColorOn, ColorOff:
		return true
	}
	return false
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0644)
}
