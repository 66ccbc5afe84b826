// Package finder maps between logical template identifiers and absolute
// file paths, given an ordered list of template root directories.
//
// An identifier is the root-relative path with separators replaced by dots
// and the template extension stripped, e.g. "components/alert.html" under a
// root becomes "components.alert". Root order matters in both directions:
// the first matching root wins.
package finder

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultExtensions are the template file extensions recognized when
// deriving identifiers and resolving them back to files.
var DefaultExtensions = []string{".html", ".tmpl", ".gohtml"}

// Finder resolves template identifiers against an ordered set of roots.
// Roots are read-only after construction, so a Finder is safe for
// concurrent use.
type Finder struct {
	roots      []string
	extensions []string
}

// New creates a Finder over the given roots. Roots are cleaned but not
// required to exist; a root that does not exist simply never matches.
// If no extensions are supplied, DefaultExtensions is used.
func New(roots []string, extensions ...string) *Finder {
	cleaned := make([]string, 0, len(roots))
	for _, r := range roots {
		if r == "" {
			continue
		}
		cleaned = append(cleaned, filepath.Clean(r))
	}

	exts := extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}

	return &Finder{roots: cleaned, extensions: exts}
}

// Roots returns a copy of the configured root list in resolution order.
func (f *Finder) Roots() []string {
	out := make([]string, len(f.roots))
	copy(out, f.roots)
	return out
}

// TemplateID derives the logical identifier for an absolute template path.
//
// The first root that is a directory-boundary prefix of the path wins. If no
// root matches, the bare filename without extension is returned as a
// best-effort identifier.
func (f *Finder) TemplateID(absPath string) string {
	path := filepath.Clean(absPath)

	for _, root := range f.roots {
		rel, ok := relativeTo(path, root)
		if !ok {
			continue
		}
		return strings.ReplaceAll(filepath.ToSlash(f.stripExtension(rel)), "/", ".")
	}

	return f.stripExtension(filepath.Base(path))
}

// Abs resolves a template identifier back to an absolute path: the first
// root under which the derived relative path exists wins. Returns ok=false
// when the identifier does not resolve to any existing file.
func (f *Finder) Abs(templateID string) (string, bool) {
	if templateID == "" {
		return "", false
	}
	rel := strings.ReplaceAll(templateID, ".", string(filepath.Separator))

	for _, root := range f.roots {
		for _, ext := range f.extensions {
			candidate := filepath.Join(root, rel+ext)
			if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
				return candidate, true
			}
		}
	}
	return "", false
}

// relativeTo returns path relative to root when root is a directory-boundary
// prefix of path. A plain string prefix is not enough: /srv/views must not
// claim /srv/views-old/index.html.
func relativeTo(path, root string) (string, bool) {
	prefix := root + string(filepath.Separator)
	if !strings.HasPrefix(path, prefix) {
		return "", false
	}
	return path[len(prefix):], true
}

// stripExtension removes a recognized template extension from name, leaving
// unrecognized extensions intact.
func (f *Finder) stripExtension(name string) string {
	lower := strings.ToLower(name)
	for _, ext := range f.extensions {
		if strings.HasSuffix(lower, ext) {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}
