// Package instrument rewrites template source so that selected opening tags
// carry a source-location attribute. The attribute value is an opaque token
// (see the marker package) encoding the logical template identifier and the
// 1-based line number of the tag in the original file, which lets a client
// map a rendered element back to the exact source line that produced it.
//
// The engine is pure and deterministic: one call operates on one buffer
// with no I/O and no shared state. Safety wins over completeness — any tag
// whose attribute region contains unquoted template syntax is left
// byte-for-byte untouched rather than risk corrupting it.
package instrument

import (
	"os"
	"strings"

	"github.com/thedevdojo/refine/finder"
	"github.com/thedevdojo/refine/marker"
)

// DefaultAttribute is the marker attribute injected into annotated tags.
const DefaultAttribute = "data-source"

// DefaultComponentPrefix identifies component-style tags by naming
// convention, e.g. <x-alert> or <x-form.input>.
const DefaultComponentPrefix = "x-"

// DefaultTags is the plain tag-name set annotated by default.
var DefaultTags = []string{
	"a", "article", "aside", "button", "div", "footer", "form",
	"h1", "h2", "h3", "h4", "h5", "h6", "header", "img", "input",
	"label", "li", "main", "nav", "ol", "option", "p", "section",
	"select", "span", "table", "tbody", "td", "textarea", "th",
	"thead", "tr", "ul",
}

// Options configures an instrumentation pass. The zero value means
// "defaults": DefaultAttribute, DefaultTags, components enabled.
type Options struct {
	// Attribute is the marker attribute name.
	Attribute string
	// Tags is the plain tag-name set, matched case-insensitively.
	Tags []string
	// Components disables the component-tag sub-pass when false and
	// ComponentsSet is true.
	Components bool
	// ComponentsSet distinguishes an explicit Components=false from the
	// zero value.
	ComponentsSet bool
	// ComponentPrefix is the naming-convention prefix for component tags.
	ComponentPrefix string
}

func (o Options) withDefaults() Options {
	if o.Attribute == "" {
		o.Attribute = DefaultAttribute
	}
	if len(o.Tags) == 0 {
		o.Tags = DefaultTags
	}
	if o.ComponentPrefix == "" {
		o.ComponentPrefix = DefaultComponentPrefix
	}
	if !o.ComponentsSet {
		o.Components = true
	}
	return o
}

// Skip reasons reported by Inspect for tags left untouched.
const (
	SkipAlreadyAnnotated = "already annotated"
	SkipUnsafe           = "unsafe template syntax"
	SkipEncoding         = "marker encoding failed"
)

// TagReport describes one candidate tag examined during a pass: where it
// was, and whether it gained a marker. Reason is empty for annotated tags.
type TagReport struct {
	TagName   string
	Line      int
	Annotated bool
	Reason    string
}

// Instrument annotates rawSource with default options. See
// InstrumentWithOptions.
func Instrument(rawSource, templateID, originalContents string) string {
	return InstrumentWithOptions(rawSource, templateID, originalContents, Options{})
}

// InstrumentWithOptions returns rawSource with a marker attribute inserted
// into every opening tag that is configured, not yet annotated, and safe to
// rewrite. Two sub-passes run in sequence over the evolving buffer: plain
// tags first, then component-style tags.
//
// rawSource is the text as currently being compiled and may already differ
// from the on-disk file; originalContents, when non-empty, is the literal
// on-disk text used to recover correct line numbers (pass "" when
// unavailable). The call never fails: tags it cannot confidently classify
// as safe are simply skipped.
func InstrumentWithOptions(rawSource, templateID, originalContents string, opts Options) string {
	opts = opts.withDefaults()

	buf := annotatePass(rawSource, templateID, originalContents, opts, plainMatcher(opts.Tags), nil)
	if opts.Components {
		buf = annotatePass(buf, templateID, originalContents, opts, componentMatcher(opts.ComponentPrefix), nil)
	}
	return buf
}

// Inspect performs the same two-pass scan as InstrumentWithOptions but
// returns the per-tag outcome instead of the rewritten source, in document
// order within each pass. The buffer still evolves internally so skip
// decisions match exactly what InstrumentWithOptions would do.
func Inspect(rawSource, templateID, originalContents string, opts Options) []TagReport {
	opts = opts.withDefaults()

	var reports []TagReport
	trace := func(m tagMatch, line int, reason string) {
		reports = append(reports, TagReport{
			TagName:   m.Name,
			Line:      line,
			Annotated: reason == "",
			Reason:    reason,
		})
	}

	buf := annotatePass(rawSource, templateID, originalContents, opts, plainMatcher(opts.Tags), trace)
	if opts.Components {
		annotatePass(buf, templateID, originalContents, opts, componentMatcher(opts.ComponentPrefix), trace)
	}
	return reports
}

// annotatePass runs one scan-and-splice pass over buf for the tags accepted
// by match. The cursor resumes just past each rewritten tag so the injected
// attribute is never re-matched, while children of an annotated tag remain
// ahead of the cursor and are matched on later iterations.
//
// searchFrom tracks how far line anchoring has consumed the original file,
// so repeated identical tags each anchor to their own occurrence. trace,
// when non-nil, receives every examined tag with its resolved line and skip
// reason ("" for annotated).
func annotatePass(buf, templateID, originalContents string, opts Options, match func(string) bool, trace func(tagMatch, int, string)) string {
	cursor := 0
	searchFrom := 0
	for {
		m, ok := findTag(buf, cursor, match)
		if !ok {
			return buf
		}

		// Idempotence: never double-annotate.
		if strings.Contains(m.Attrs, opts.Attribute) {
			if trace != nil {
				line, _ := resolveLine(m.Text, m.Start, buf, originalContents, searchFrom)
				trace(m, line, SkipAlreadyAnnotated)
			}
			cursor = m.End
			continue
		}
		if isUnsafe(m.Text) {
			if trace != nil {
				line, _ := resolveLine(m.Text, m.Start, buf, originalContents, searchFrom)
				trace(m, line, SkipUnsafe)
			}
			cursor = m.End
			continue
		}

		line, next := resolveLine(m.Text, m.Start, buf, originalContents, searchFrom)
		token, err := marker.Encode(templateID, line)
		if err != nil {
			if trace != nil {
				trace(m, line, SkipEncoding)
			}
			cursor = m.End
			continue
		}
		searchFrom = next
		if trace != nil {
			trace(m, line, "")
		}

		rewritten := inject(m, opts.Attribute, token)
		buf = buf[:m.Start] + rewritten + buf[m.End:]
		cursor = m.Start + len(rewritten)
	}
}

// inject rewrites a matched tag with the marker attribute appended to its
// attribute region, preserving self-closing syntax.
func inject(m tagMatch, attribute, token string) string {
	body := strings.TrimRight(m.Text[:len(m.Text)-1], " \t\r\n")
	if m.SelfClosing {
		body = strings.TrimRight(body[:len(body)-1], " \t\r\n")
		return body + ` ` + attribute + `="` + token + `" />`
	}
	return body + ` ` + attribute + `="` + token + `">`
}

// plainMatcher accepts the configured plain tag names (already lowercased
// by the scanner).
func plainMatcher(tags []string) func(string) bool {
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		set[strings.ToLower(t)] = struct{}{}
	}
	return func(name string) bool {
		_, ok := set[name]
		return ok
	}
}

// componentMatcher accepts dash-qualified component names such as x-alert
// or x-form.input. The bare prefix alone is not a name.
func componentMatcher(prefix string) func(string) bool {
	prefix = strings.ToLower(prefix)
	return func(name string) bool {
		return len(name) > len(prefix) && strings.HasPrefix(name, prefix)
	}
}

// Hook adapts the engine to a template compiler callback. The returned
// function derives the template identifier from the path being compiled,
// reads the on-disk contents best-effort for line anchoring, and returns
// the annotated source. This is the only place the instrumentation side
// touches the filesystem; Instrument itself stays I/O free.
func Hook(f *finder.Finder, opts Options) func(absPath, rawSource string) string {
	return func(absPath, rawSource string) string {
		original := ""
		if b, err := os.ReadFile(absPath); err == nil {
			original = string(b)
		}
		return InstrumentWithOptions(rawSource, f.TemplateID(absPath), original, opts)
	}
}
