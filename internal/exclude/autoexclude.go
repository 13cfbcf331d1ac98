// Package exclude decides which directories a package walk may skip.
package exclude

import (
	"os"
	"path/filepath"
	"strings"
)

// AutoExcludeResult contains the directories to exclude and why.
type AutoExcludeResult struct {
	// Directories to exclude, slash-separated and relative to the root
	Directories []string
	// Reasons maps each directory to why it was excluded
	Reasons map[string]string
}

// DetectAutoExcludes scans root for dependency directories that never hold
// importable project packages. Detection is marker based only: a vendor
// directory counts when vendor/modules.txt sits next to a go.mod.
func DetectAutoExcludes(root string) *AutoExcludeResult {
	result := &AutoExcludeResult{
		Directories: []string{},
		Reasons:     make(map[string]string),
	}

	add := func(dir, reason string) {
		if !contains(result.Directories, dir) {
			result.Directories = append(result.Directories, dir)
			result.Reasons[dir] = reason
		}
	}

	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			for _, excluded := range result.Directories {
				if rel == excluded || strings.HasPrefix(rel, excluded+"/") {
					return filepath.SkipDir
				}
			}
			switch d.Name() {
			case "node_modules", "vendor", ".git":
				return filepath.SkipDir
			}
			return nil
		}

		dir := filepath.ToSlash(filepath.Dir(rel))
		sibling := func(name string) string {
			if dir == "." {
				return name
			}
			return dir + "/" + name
		}

		switch d.Name() {
		case "go.mod":
			vendor := sibling("vendor")
			if fileExists(filepath.Join(root, filepath.FromSlash(vendor), "modules.txt")) {
				add(vendor, "Go vendored dependencies (vendor/modules.txt detected)")
			}
		case "package.json":
			modules := sibling("node_modules")
			if dirExists(filepath.Join(root, filepath.FromSlash(modules))) {
				add(modules, "Node.js dependencies (package.json detected)")
			}
		case "pyvenv.cfg":
			add(dir, "Python virtual environment (pyvenv.cfg detected)")
		}

		return nil
	})

	return result
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
