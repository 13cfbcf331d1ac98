package config

// DefaultConfig returns configuration with sensible defaults.
// These defaults are used when no config file exists or when
// config file is missing specific fields.
func DefaultConfig() *Config {
	return &Config{
		Toolchain: ToolchainConfig{
			Modules: map[string]string{},
		},
		Scan: ScanConfig{
			SourceExt:    ".go",
			ArchiveExt:   ".a",
			EntryPackage: "main",
			SkipDirs:     []string{".git", ConfigDirName},
			SkipFiles:    []string{"*_test.go"},
		},
		Completion: CompletionConfig{
			ViaProjectLabel: "via project",
		},
		Output: OutputConfig{
			DefaultFormat: "yaml",
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Merge merges loaded config with defaults.
// Values from loaded config take precedence over defaults.
// Returns a new Config with merged values.
func Merge(loaded, defaults *Config) *Config {
	return &Config{
		Toolchain:  mergeToolchainConfig(loaded.Toolchain, defaults.Toolchain),
		Scan:       mergeScanConfig(loaded.Scan, defaults.Scan),
		Completion: mergeCompletionConfig(loaded.Completion, defaults.Completion),
		Output:     mergeOutputConfig(loaded.Output, defaults.Output),
		Log:        mergeLogConfig(loaded.Log, defaults.Log),
		// History is opt-in: the zero value is the default.
		History: loaded.History,
	}
}

func mergeToolchainConfig(loaded, defaults ToolchainConfig) ToolchainConfig {
	result := ToolchainConfig{
		Default:    loaded.Default,
		Toolchains: loaded.Toolchains,
		Modules:    loaded.Modules,
	}

	if result.Default == "" {
		result.Default = defaults.Default
	}
	if len(result.Toolchains) == 0 {
		result.Toolchains = defaults.Toolchains
	}
	if result.Modules == nil {
		result.Modules = defaults.Modules
	}

	return result
}

func mergeScanConfig(loaded, defaults ScanConfig) ScanConfig {
	result := loaded

	if result.SourceExt == "" {
		result.SourceExt = defaults.SourceExt
	}
	if result.ArchiveExt == "" {
		result.ArchiveExt = defaults.ArchiveExt
	}
	if result.EntryPackage == "" {
		result.EntryPackage = defaults.EntryPackage
	}
	if len(result.SkipDirs) == 0 {
		result.SkipDirs = defaults.SkipDirs
	}
	// An explicit empty list turns the default off.
	if result.SkipFiles == nil {
		result.SkipFiles = defaults.SkipFiles
	}
	if result.AutoExclude == nil {
		result.AutoExclude = defaults.AutoExclude
	}

	return result
}

func mergeCompletionConfig(loaded, defaults CompletionConfig) CompletionConfig {
	result := loaded

	if result.ViaProjectLabel == "" {
		result.ViaProjectLabel = defaults.ViaProjectLabel
	}
	if result.Keywords == nil {
		result.Keywords = defaults.Keywords
	}

	return result
}

func mergeOutputConfig(loaded, defaults OutputConfig) OutputConfig {
	if loaded.DefaultFormat != "" {
		return loaded
	}
	return defaults
}

func mergeLogConfig(loaded, defaults LogConfig) LogConfig {
	if loaded.Level != "" {
		return loaded
	}
	return defaults
}

// FindToolchain returns the configured toolchain with the given name.
func (c *Config) FindToolchain(name string) (Toolchain, bool) {
	for _, t := range c.Toolchain.Toolchains {
		if t.Name == name {
			return t, true
		}
	}
	return Toolchain{}, false
}
