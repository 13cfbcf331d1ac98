package exclude

import (
	"path/filepath"
	"strings"
)

// Rules decides which directories and files a walk under root visits.
// A nil *Rules skips nothing.
type Rules struct {
	root     string
	names    map[string]bool
	paths    map[string]string
	patterns []string
}

// New builds rules for root. Entries of skipDirs containing a slash are
// root-relative paths; bare entries match a directory name at any depth.
// skipFiles are filepath.Match patterns applied to file names.
func New(root string, skipDirs, skipFiles []string) *Rules {
	r := &Rules{
		root:     filepath.Clean(root),
		names:    make(map[string]bool),
		paths:    make(map[string]string),
		patterns: skipFiles,
	}
	for _, d := range skipDirs {
		d = strings.Trim(filepath.ToSlash(d), "/")
		if d == "" {
			continue
		}
		if strings.Contains(d, "/") {
			r.paths[d] = "configured"
		} else {
			r.names[d] = true
		}
	}
	return r
}

// WithAutoExcludes adds the marker-detected dependency directories of root.
func (r *Rules) WithAutoExcludes() *Rules {
	detected := DetectAutoExcludes(r.root)
	for _, dir := range detected.Directories {
		r.paths[dir] = detected.Reasons[dir]
	}
	return r
}

// Reasons maps every excluded root-relative path to why it is excluded.
func (r *Rules) Reasons() map[string]string {
	if r == nil {
		return nil
	}
	out := make(map[string]string, len(r.paths))
	for k, v := range r.paths {
		out[k] = v
	}
	return out
}

// SkipDir reports whether the walk should not descend into dir.
func (r *Rules) SkipDir(dir string) bool {
	if r == nil {
		return false
	}
	if r.names[filepath.Base(dir)] {
		return true
	}
	rel, ok := r.rel(dir)
	if !ok {
		return false
	}
	_, skip := r.paths[rel]
	return skip
}

// SkipFile reports whether a file name matches a skip pattern.
func (r *Rules) SkipFile(path string) bool {
	if r == nil {
		return false
	}
	name := filepath.Base(path)
	for _, p := range r.patterns {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}
	return false
}

// Excluded reports whether path lies in a skipped directory below root.
// File patterns do not apply: they only filter what a walk collects.
func (r *Rules) Excluded(path string) bool {
	if r == nil {
		return false
	}
	rel, ok := r.rel(path)
	if !ok {
		return false
	}
	parts := strings.Split(rel, "/")
	for i := range parts {
		if r.names[parts[i]] {
			return true
		}
		if _, skip := r.paths[strings.Join(parts[:i+1], "/")]; skip {
			return true
		}
	}
	return false
}

func (r *Rules) rel(path string) (string, bool) {
	rel, err := filepath.Rel(r.root, filepath.Clean(path))
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}
