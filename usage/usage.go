// Package usage scans a Go source tree for template render invocations, so
// an editor can show where a template is rendered from. It looks for method
// calls like c.Render("views/home.html", ...) or
// tmpl.ExecuteTemplate(w, "home.html", ...) and records the template name
// with its call site.
package usage

import (
	goast "go/ast"
	"go/token"
	"path/filepath"
	"sort"
	"strconv"

	"golang.org/x/tools/go/packages"
)

// RenderCall is one template render invocation found in Go source.
type RenderCall struct {
	// Template is the template name or path passed to the render call.
	Template string `json:"template"`
	// File is the Go file containing the call, relative to the scanned dir.
	File string `json:"file"`
	// Line is the 1-based line of the call.
	Line int `json:"line"`
}

// DefaultMethods are the render method names recognized when none are given.
var DefaultMethods = []string{"Render", "ExecuteTemplate"}

// Scan loads the packages under dir and returns every call to one of
// methods whose arguments include a string literal naming a template. The
// first string-literal argument is taken as the template name, which covers
// both Render(name, data) and ExecuteTemplate(w, name, data) shapes.
//
// Results are sorted by file then line. Package load errors for code that
// still parses are tolerated; only a total load failure is returned.
func Scan(dir string, methods ...string) ([]RenderCall, error) {
	if len(methods) == 0 {
		methods = DefaultMethods
	}
	names := make(map[string]struct{}, len(methods))
	for _, m := range methods {
		names[m] = struct{}{}
	}

	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedSyntax,
		Dir:  dir,
	}
	pkgs, err := packages.Load(cfg, "./...")
	if err != nil {
		return nil, err
	}

	var calls []RenderCall
	for _, pkg := range pkgs {
		for _, file := range pkg.Syntax {
			goast.Inspect(file, func(n goast.Node) bool {
				call, ok := n.(*goast.CallExpr)
				if !ok {
					return true
				}
				sel, ok := call.Fun.(*goast.SelectorExpr)
				if !ok {
					return true
				}
				if _, ok := names[sel.Sel.Name]; !ok {
					return true
				}

				if rc, ok := templateArg(call, pkg.Fset, dir); ok {
					calls = append(calls, rc)
				}
				return true
			})
		}
	}

	sort.Slice(calls, func(i, j int) bool {
		if calls[i].File != calls[j].File {
			return calls[i].File < calls[j].File
		}
		return calls[i].Line < calls[j].Line
	})
	return calls, nil
}

// templateArg extracts the first string-literal argument of a render call.
func templateArg(call *goast.CallExpr, fset *token.FileSet, dir string) (RenderCall, bool) {
	for _, arg := range call.Args {
		lit, ok := arg.(*goast.BasicLit)
		if !ok || lit.Kind != token.STRING {
			continue
		}

		name, err := strconv.Unquote(lit.Value)
		if err != nil || name == "" {
			return RenderCall{}, false
		}

		pos := fset.Position(call.Pos())
		file := pos.Filename
		if rel, err := filepath.Rel(dir, file); err == nil {
			file = rel
		}
		return RenderCall{Template: name, File: file, Line: pos.Line}, true
	}
	return RenderCall{}, false
}
