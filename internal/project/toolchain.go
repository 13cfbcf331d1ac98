package project

import (
	"bufio"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/gosense/gosense/internal/config"
)

// Toolchain is a resolved Go SDK with its library roots.
type Toolchain struct {
	Name    string
	Version string
	Home    string
	// Roots hold compiled package archives.
	Roots []string
	// SourceRoots hold package sources.
	SourceRoots []string
}

// ToolchainFor returns the toolchain serving m. Candidates in order: the
// module mapping in config, a configured toolchain matching the module's
// toolchain directive, the configured default, the first configured
// toolchain, and finally one detected from GOROOT.
func (p *Project) ToolchainFor(m *Module) (*Toolchain, bool) {
	if m == nil {
		return nil, false
	}

	tc, ok := p.selectToolchain(m)
	if !ok {
		p.logger.Debug("no toolchain for module", "module", m.Path, "dir", m.Dir)
		return nil, false
	}

	if tc.Version != "" && m.GoVersion != "" {
		have, want := config.CanonicalVersion(tc.Version), config.CanonicalVersion(m.GoVersion)
		if semver.IsValid(have) && semver.IsValid(want) && semver.Compare(have, want) < 0 {
			p.logger.Warn("toolchain older than module go directive",
				"toolchain", tc.Name, "version", tc.Version, "module", m.Path, "go", m.GoVersion)
		}
	}

	p.logger.Debug("selected toolchain", "module", m.Path, "toolchain", tc.Name)
	return tc, true
}

func (p *Project) selectToolchain(m *Module) (*Toolchain, bool) {
	cfg := p.cfg.Toolchain

	if name, ok := cfg.Modules[m.Path]; ok && m.Path != "" {
		if t, ok := p.cfg.FindToolchain(name); ok {
			return fromConfig(t), true
		}
	}

	if m.Toolchain != "" {
		want := config.CanonicalVersion(m.Toolchain)
		for _, t := range cfg.Toolchains {
			if t.Version != "" && semver.Compare(config.CanonicalVersion(t.Version), want) == 0 {
				return fromConfig(t), true
			}
		}
	}

	if cfg.Default != "" {
		if t, ok := p.cfg.FindToolchain(cfg.Default); ok {
			return fromConfig(t), true
		}
	}

	if len(cfg.Toolchains) > 0 {
		return fromConfig(cfg.Toolchains[0]), true
	}

	return p.detectToolchain()
}

// fromConfig resolves a configured toolchain, deriving the standard
// library roots from Home when none are listed.
func fromConfig(t config.Toolchain) *Toolchain {
	tc := &Toolchain{
		Name:        t.Name,
		Version:     t.Version,
		Home:        t.Home,
		Roots:       t.Roots,
		SourceRoots: t.SourceRoots,
	}
	if len(tc.Roots) == 0 && len(tc.SourceRoots) == 0 && tc.Home != "" {
		tc.Roots, tc.SourceRoots = standardRoots(tc.Home)
	}
	if tc.Version == "" && tc.Home != "" {
		tc.Version = readVersionFile(tc.Home)
	}
	return tc
}

func (p *Project) detectToolchain() (*Toolchain, bool) {
	home := p.getenv("GOROOT")
	if home == "" {
		return nil, false
	}
	if info, err := os.Stat(home); err != nil || !info.IsDir() {
		p.logger.Debug("GOROOT is not a directory", "goroot", home)
		return nil, false
	}

	roots, sources := standardRoots(home)
	version := readVersionFile(home)
	name := version
	if name == "" {
		name = "goroot"
	}
	return &Toolchain{
		Name:        name,
		Version:     version,
		Home:        home,
		Roots:       roots,
		SourceRoots: sources,
	}, true
}

func standardRoots(home string) (roots, sources []string) {
	roots = []string{filepath.Join(home, "pkg", runtime.GOOS+"_"+runtime.GOARCH)}
	sources = []string{filepath.Join(home, "src")}
	return roots, sources
}

// readVersionFile returns the first line of $GOROOT/VERSION ("go1.22.3").
func readVersionFile(home string) string {
	f, err := os.Open(filepath.Join(home, "VERSION"))
	if err != nil {
		return ""
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	if sc.Scan() {
		return strings.TrimSpace(sc.Text())
	}
	return ""
}
