package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// ConfigFileName is the name of the gosense configuration file
const ConfigFileName = "config.yaml"

// ConfigDirName is the name of the gosense configuration directory
const ConfigDirName = ".gosense"

// Config holds all gosense configuration
type Config struct {
	Toolchain  ToolchainConfig  `yaml:"toolchain"`
	Scan       ScanConfig       `yaml:"scan"`
	Completion CompletionConfig `yaml:"completion"`
	Output     OutputConfig     `yaml:"output"`
	Log        LogConfig        `yaml:"log"`
	History    HistoryConfig    `yaml:"history"`
}

// Toolchain describes one installed Go SDK.
type Toolchain struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version,omitempty"`
	Home    string `yaml:"home,omitempty"`
	// Roots are library roots holding compiled package archives.
	Roots []string `yaml:"roots,omitempty"`
	// SourceRoots are library roots holding package sources.
	SourceRoots []string `yaml:"source_roots,omitempty"`
}

// ToolchainConfig selects which toolchain serves which module
type ToolchainConfig struct {
	Default    string            `yaml:"default"`
	Toolchains []Toolchain       `yaml:"toolchains"`
	Modules    map[string]string `yaml:"modules"`
}

// ScanConfig holds configuration for directory walks
type ScanConfig struct {
	SourceExt    string   `yaml:"source_ext"`
	ArchiveExt   string   `yaml:"archive_ext"`
	EntryPackage string   `yaml:"entry_package"`
	SkipDirs     []string `yaml:"skip_dirs"`
	SkipFiles    []string `yaml:"skip_files"`
	AutoExclude  *bool    `yaml:"auto_exclude,omitempty"`
}

// AutoExcludeEnabled reports whether marker-based exclusion is on.
func (s ScanConfig) AutoExcludeEnabled() bool {
	return s.AutoExclude == nil || *s.AutoExclude
}

// CompletionConfig holds presentation settings for suggestions
type CompletionConfig struct {
	ViaProjectLabel string `yaml:"via_project_label"`
	Keywords        *bool  `yaml:"keywords,omitempty"`
}

// KeywordsEnabled reports whether identifier completion offers keywords.
func (c CompletionConfig) KeywordsEnabled() bool {
	return c.Keywords == nil || *c.Keywords
}

// OutputConfig holds configuration for output formatting
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `yaml:"level"`
}

// HistoryConfig controls the query history database
type HistoryConfig struct {
	Enabled bool `yaml:"enabled"`
}

// ValidFormats lists the accepted output formats
var ValidFormats = []string{"yaml", "json"}

// ValidLogLevels lists the accepted log levels
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// ErrConfigNotFound is returned when no config file can be found
var ErrConfigNotFound = errors.New("config file not found")

// ErrInvalidConfig is returned when config validation fails
var ErrInvalidConfig = errors.New("invalid configuration")

// Load reads config from .gosense/config.yaml, falling back to defaults.
// It searches for the config directory starting from workDir and walking up
// the directory tree. If no config is found, returns defaults.
func Load(workDir string) (*Config, error) {
	configDir, err := FindConfigDir(workDir)
	if err != nil {
		return DefaultConfig(), nil
	}

	return LoadFromPath(filepath.Join(configDir, ConfigFileName))
}

// LoadFromPath reads config from a specific path.
// Merges loaded config with defaults and validates the result.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	loaded := &Config{}
	if err := yaml.Unmarshal(data, loaded); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	merged := Merge(loaded, DefaultConfig())
	if err := Validate(merged); err != nil {
		return nil, err
	}

	return merged, nil
}

// FindConfigDir locates the .gosense directory by walking up from startDir.
func FindConfigDir(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	currentDir := absDir
	for {
		configDir := filepath.Join(currentDir, ConfigDirName)
		info, err := os.Stat(configDir)
		if err == nil && info.IsDir() {
			return configDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", ErrConfigNotFound
		}
		currentDir = parentDir
	}
}

// EnsureConfigDir creates the .gosense directory if it doesn't exist.
// Returns the path to the .gosense directory.
func EnsureConfigDir(workDir string) (string, error) {
	absDir, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	configDir := filepath.Join(absDir, ConfigDirName)

	info, err := os.Stat(configDir)
	if err == nil {
		if info.IsDir() {
			return configDir, nil
		}
		return "", fmt.Errorf("%s exists but is not a directory", configDir)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	return configDir, nil
}

// Validate checks that config values are valid.
func Validate(cfg *Config) error {
	if !strings.HasPrefix(cfg.Scan.SourceExt, ".") {
		return fmt.Errorf("%w: source_ext must start with a dot, got %q",
			ErrInvalidConfig, cfg.Scan.SourceExt)
	}

	if !strings.HasPrefix(cfg.Scan.ArchiveExt, ".") {
		return fmt.Errorf("%w: archive_ext must start with a dot, got %q",
			ErrInvalidConfig, cfg.Scan.ArchiveExt)
	}

	if cfg.Scan.EntryPackage == "" {
		return fmt.Errorf("%w: entry_package must not be empty", ErrInvalidConfig)
	}

	if !contains(ValidFormats, cfg.Output.DefaultFormat) {
		return fmt.Errorf("%w: default_format must be one of %v, got %q",
			ErrInvalidConfig, ValidFormats, cfg.Output.DefaultFormat)
	}

	if !contains(ValidLogLevels, strings.ToLower(cfg.Log.Level)) {
		return fmt.Errorf("%w: log level must be one of %v, got %q",
			ErrInvalidConfig, ValidLogLevels, cfg.Log.Level)
	}

	return validateToolchains(cfg.Toolchain)
}

func validateToolchains(tc ToolchainConfig) error {
	names := make(map[string]bool, len(tc.Toolchains))
	for _, t := range tc.Toolchains {
		if t.Name == "" {
			return fmt.Errorf("%w: toolchain name must not be empty", ErrInvalidConfig)
		}
		if names[t.Name] {
			return fmt.Errorf("%w: duplicate toolchain %q", ErrInvalidConfig, t.Name)
		}
		names[t.Name] = true

		if t.Version != "" && !semver.IsValid(CanonicalVersion(t.Version)) {
			return fmt.Errorf("%w: toolchain %q has invalid version %q",
				ErrInvalidConfig, t.Name, t.Version)
		}
	}

	if tc.Default != "" && !names[tc.Default] {
		return fmt.Errorf("%w: default toolchain %q is not defined", ErrInvalidConfig, tc.Default)
	}

	for mod, name := range tc.Modules {
		if !names[name] {
			return fmt.Errorf("%w: module %q maps to undefined toolchain %q",
				ErrInvalidConfig, mod, name)
		}
	}

	return nil
}

// CanonicalVersion turns a Go release name ("go1.22.3", "1.22") into the
// "v"-prefixed form understood by x/mod/semver.
func CanonicalVersion(v string) string {
	v = strings.TrimPrefix(strings.TrimSpace(v), "go")
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}

// SaveDefault writes the default configuration to .gosense/config.yaml in workDir.
// Creates the .gosense directory if it doesn't exist.
func SaveDefault(workDir string, force bool) (string, error) {
	configDir, err := EnsureConfigDir(workDir)
	if err != nil {
		return "", err
	}

	configPath := filepath.Join(configDir, ConfigFileName)

	if _, err := os.Stat(configPath); err == nil && !force {
		return "", fmt.Errorf("config file already exists: %s", configPath)
	}

	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return "", fmt.Errorf("marshaling config: %w", err)
	}

	header := "# gosense configuration\n" +
		"# Toolchains without explicit roots are detected from GOROOT.\n" +
		"# scan.skip_files leaves out *_test.go by default; set it to [] to offer\n" +
		"# packages that only hold tests.\n\n"
	data = append([]byte(header), data...)

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}

	return configPath, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
