package instrument

import (
	"regexp"
	"strings"
	"testing"

	"github.com/thedevdojo/refine/marker"
)

// extractRefs decodes every marker attribute in annotated output, in
// document order.
func extractRefs(t *testing.T, out, attribute string) []marker.SourceRef {
	t.Helper()

	re := regexp.MustCompile(regexp.QuoteMeta(attribute) + `="([^"]*)"`)
	var refs []marker.SourceRef
	for _, m := range re.FindAllStringSubmatch(out, -1) {
		ref, ok := marker.Decode(m[1])
		if !ok {
			t.Fatalf("embedded token %q does not decode", m[1])
		}
		refs = append(refs, ref)
	}
	return refs
}

func countMarkers(out, attribute string) int {
	return strings.Count(out, attribute+`="`)
}

func TestInstrumentAnnotatesSimpleTag(t *testing.T) {
	in := `<div class="container">Content</div>`
	out := Instrument(in, "test.view", "")

	if n := countMarkers(out, DefaultAttribute); n != 1 {
		t.Fatalf("expected exactly 1 marker, got %d in %q", n, out)
	}
	if !strings.Contains(out, `class="container"`) {
		t.Errorf("original attribute not preserved: %q", out)
	}

	refs := extractRefs(t, out, DefaultAttribute)
	if refs[0].TemplateID != "test.view" || refs[0].Line != 1 {
		t.Errorf("got ref %+v, want {test.view 1}", refs[0])
	}
}

func TestInstrumentUnsafeTagsUntouched(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "attribute spread via echo",
			input: `<div {{ attributes.merge({class: "x"}) }}>`,
		},
		{
			name:  "raw echo shorthand",
			input: `<div {!! $attrs !!}>content</div>`,
		},
		{
			name:  "conditional directive in attributes",
			input: `<div @if($active) class="on" @endif>x</div>`,
		},
		{
			name:  "checked output helper",
			input: `<input type="checkbox" @checked($user->active)>`,
		},
		{
			name:  "dynamic attribute binding",
			input: `<div :class="open ? 'block' : 'hidden'">x</div>`,
		},
		{
			name:  "raw php escape",
			input: `<div <?php echo $attrs; ?>>x</div>`,
		},
		{
			name:  "php short echo",
			input: `<span <?= $id ?>>x</span>`,
		},
		{
			name:  "arrow pair outside quotes",
			input: `<div x-data={count => count + 1}>x</div>`,
		},
		{
			name:  "class helper with arrow map",
			input: `<li @class(['p-4', 'font-bold' => $active])>item</li>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Instrument(tt.input, "views.page", "")
			if out != tt.input {
				t.Errorf("unsafe tag was modified:\n  in:  %q\n  out: %q", tt.input, out)
			}
		})
	}
}

func TestInstrumentQuotedSyntaxIsSafe(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "echo inside quoted href",
			input: `<a href="{{ route('login') }}" class="btn">Login</a>`,
		},
		{
			name:  "ternary echo inside quoted class",
			input: `<div class="{{ $isActive ? 'on' : 'off' }}">x</div>`,
		},
		{
			name:  "alpine event handler",
			input: `<button @click="open = !open">Toggle</button>`,
		},
		{
			name:  "alpine modified event handlers only",
			input: `<div @keydown.escape="close()" @click.outside="close()">x</div>`,
		},
		{
			name:  "vue style submit handler",
			input: `<form @submit.prevent="send">x</form>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Instrument(tt.input, "views.page", "")
			if n := countMarkers(out, DefaultAttribute); n != 1 {
				t.Errorf("expected 1 marker, got %d in %q", n, out)
			}
		})
	}
}

func TestInstrumentIdempotent(t *testing.T) {
	sources := []string{
		`<div class="container">Content</div>`,
		`<div class="a">
<span>inner</span>
<div {{ attributes.merge({class: "x"}) }}>unsafe</div>
</div>`,
		`<x-alert type="error" />`,
	}

	for _, src := range sources {
		once := Instrument(src, "views.page", "")
		twice := Instrument(once, "views.page", "")
		if once != twice {
			t.Errorf("instrumentation is not idempotent:\n  once:  %q\n  twice: %q", once, twice)
		}
	}
}

func TestInstrumentNestedTagsGetDistinctLines(t *testing.T) {
	in := "<div>\n<div>\n<div>\n</div>\n</div>\n</div>"

	// Identical tags repeated through a file must each anchor to their own
	// occurrence, whether lines come from the working buffer or from the
	// original file.
	for _, tt := range []struct {
		name     string
		original string
	}{
		{name: "without original contents", original: ""},
		{name: "with original contents", original: in},
	} {
		t.Run(tt.name, func(t *testing.T) {
			out := Instrument(in, "views.nested", tt.original)

			refs := extractRefs(t, out, DefaultAttribute)
			if len(refs) != 3 {
				t.Fatalf("expected 3 markers, got %d in %q", len(refs), out)
			}
			for i, want := range []int{1, 2, 3} {
				if refs[i].Line != want {
					t.Errorf("marker %d line = %d, want %d", i, refs[i].Line, want)
				}
			}
		})
	}
}

func TestInstrumentRepeatedSiblingTagsAnchorInOrder(t *testing.T) {
	in := "<li>a</li>\n<li>b</li>\n<li>c</li>\n"
	out := Instrument(in, "views.list", in)

	refs := extractRefs(t, out, DefaultAttribute)
	if len(refs) != 3 {
		t.Fatalf("expected 3 markers, got %d in %q", len(refs), out)
	}
	for i, want := range []int{1, 2, 3} {
		if refs[i].Line != want {
			t.Errorf("marker %d line = %d, want %d", i, refs[i].Line, want)
		}
	}
}

func TestInstrumentLineAnchorsToOriginalFile(t *testing.T) {
	original := strings.Repeat("<!-- filler -->\n", 6) + `<div class="x">target</div>` + "\n"

	// Simulate an earlier compiler pass that injected leading whitespace:
	// offsets in the working buffer no longer line up with the file.
	working := "\n\n\n\n" + original

	out := Instrument(working, "views.drift", original)
	refs := extractRefs(t, out, DefaultAttribute)
	if len(refs) != 1 {
		t.Fatalf("expected 1 marker, got %d", len(refs))
	}
	if refs[0].Line != 7 {
		t.Errorf("line = %d, want 7 (position in original file, not working buffer)", refs[0].Line)
	}
}

func TestInstrumentMultilineTagUsesOpeningLine(t *testing.T) {
	in := "<p>intro</p>\n<form\n  action=\"/login\"\n  method=\"post\"\n>\n</form>"
	out := Instrument(in, "views.form", in)

	refs := extractRefs(t, out, DefaultAttribute)
	if len(refs) != 2 {
		t.Fatalf("expected 2 markers, got %d in %q", len(refs), out)
	}
	// <p> on line 1, <form on line 2 regardless of where its '>' lands.
	if refs[0].Line != 1 || refs[1].Line != 2 {
		t.Errorf("lines = %d,%d want 1,2", refs[0].Line, refs[1].Line)
	}
}

func TestInstrumentSelfClosingTag(t *testing.T) {
	in := `<img src="logo.png" />`
	out := Instrument(in, "views.header", "")

	if n := countMarkers(out, DefaultAttribute); n != 1 {
		t.Fatalf("expected 1 marker, got %d in %q", n, out)
	}
	if !strings.HasSuffix(out, "/>") {
		t.Errorf("self-closing syntax not preserved: %q", out)
	}
	if !strings.Contains(out, `src="logo.png"`) {
		t.Errorf("original attribute not preserved: %q", out)
	}
}

func TestInstrumentQuotedAngleBracket(t *testing.T) {
	in := `<a title="a > b" href="/docs">docs</a>`
	out := Instrument(in, "views.docs", "")

	if n := countMarkers(out, DefaultAttribute); n != 1 {
		t.Fatalf("expected 1 marker, got %d in %q", n, out)
	}
	if !strings.Contains(out, `title="a > b"`) {
		t.Errorf("quoted '>' mangled the tag: %q", out)
	}
}

func TestInstrumentComponentTags(t *testing.T) {
	in := "<x-alert type=\"error\" />\n<x-form.input name=\"q\">\n<p>text</p>"
	out := Instrument(in, "components.demo", "")

	refs := extractRefs(t, out, DefaultAttribute)
	if len(refs) != 3 {
		t.Fatalf("expected 3 markers (2 components + 1 plain), got %d in %q", len(refs), out)
	}
	if refs[0].Line != 1 || refs[1].Line != 2 || refs[2].Line != 3 {
		t.Errorf("lines = %d,%d,%d want 1,2,3", refs[0].Line, refs[1].Line, refs[2].Line)
	}
}

func TestInstrumentComponentsDisabled(t *testing.T) {
	in := `<x-alert type="error" />`
	opts := Options{Components: false, ComponentsSet: true}
	out := InstrumentWithOptions(in, "components.demo", "", opts)

	if out != in {
		t.Errorf("component tag annotated with components disabled: %q", out)
	}
}

func TestInstrumentSkipsAlreadyAnnotated(t *testing.T) {
	in := `<div data-source="sometoken" class="x">y</div>`
	out := Instrument(in, "views.page", "")
	if out != in {
		t.Errorf("already-annotated tag modified: %q", out)
	}
}

func TestInstrumentCustomOptions(t *testing.T) {
	in := `<widget id="a"><div>ignored</div></widget>`
	opts := Options{
		Attribute:     "data-origin",
		Tags:          []string{"widget"},
		Components:    false,
		ComponentsSet: true,
	}
	out := InstrumentWithOptions(in, "views.custom", "", opts)

	if n := countMarkers(out, "data-origin"); n != 1 {
		t.Fatalf("expected 1 data-origin marker, got %d in %q", n, out)
	}
	if strings.Contains(out, DefaultAttribute+`="`) {
		t.Errorf("default attribute leaked into output: %q", out)
	}
	if countMarkers(out, "data-origin") == 1 && strings.Contains(out, `<div data-origin`) {
		t.Errorf("unconfigured tag annotated: %q", out)
	}
}

func TestInstrumentClosingTagsAndCommentsIgnored(t *testing.T) {
	in := "<!-- <div class=\"note\"> in a comment -->\n<!DOCTYPE html>\n<div>real</div>"
	out := Instrument(in, "views.page", in)

	refs := extractRefs(t, out, DefaultAttribute)
	if len(refs) != 1 {
		t.Fatalf("expected 1 marker, got %d in %q", len(refs), out)
	}
	if refs[0].Line != 3 {
		t.Errorf("line = %d, want 3", refs[0].Line)
	}
	if !strings.Contains(out, "<!-- <div class=\"note\"> in a comment -->") {
		t.Errorf("comment modified: %q", out)
	}
}

func TestInspectReportsPerTag(t *testing.T) {
	in := "<div class=\"a\">x</div>\n<div {{ $attrs }}>y</div>\n<div data-source=\"tok\">z</div>\n"
	reports := Inspect(in, "views.page", in, Options{})

	want := []TagReport{
		{TagName: "div", Line: 1, Annotated: true},
		{TagName: "div", Line: 2, Reason: SkipUnsafe},
		{TagName: "div", Line: 3, Reason: SkipAlreadyAnnotated},
	}
	if len(reports) != len(want) {
		t.Fatalf("got %d reports, want %d: %+v", len(reports), len(want), reports)
	}
	for i, w := range want {
		if reports[i] != w {
			t.Errorf("report %d = %+v, want %+v", i, reports[i], w)
		}
	}
}

func TestInspectMatchesInstrumentDecisions(t *testing.T) {
	in := "<x-alert type=\"error\" />\n<div @if($x) class=\"a\" @endif>y</div>\n<span>z</span>\n"
	out := Instrument(in, "views.mixed", in)
	reports := Inspect(in, "views.mixed", in, Options{})

	annotated := 0
	for _, r := range reports {
		if r.Annotated {
			annotated++
		}
	}
	if n := countMarkers(out, DefaultAttribute); n != annotated {
		t.Errorf("inspect reported %d annotated tags, instrument produced %d markers", annotated, n)
	}
}

func TestInstrumentDeterministic(t *testing.T) {
	in := `<div class="a"><span id="b">x</span></div>`
	first := Instrument(in, "views.page", in)
	second := Instrument(in, "views.page", in)
	if first != second {
		t.Errorf("same input produced different output:\n  %q\n  %q", first, second)
	}
}
