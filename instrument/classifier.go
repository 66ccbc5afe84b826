package instrument

import (
	"regexp"
	"strings"
)

// directiveKeywords is the Blade control-flow and output directive
// vocabulary. A tag whose unquoted text contains '@' immediately followed by
// one of these (stored lowercase) is structurally dynamic and unsafe to
// rewrite. Event-handler attributes like @click or @keydown.escape share the
// '@' convention but are plain attributes; their names are not in this set,
// so they never block annotation.
var directiveKeywords = map[string]struct{}{
	"if": {}, "elseif": {}, "else": {}, "endif": {},
	"unless": {}, "endunless": {},
	"isset": {}, "endisset": {}, "empty": {}, "endempty": {},
	"switch": {}, "case": {}, "default": {}, "endswitch": {},
	"for": {}, "endfor": {}, "foreach": {}, "endforeach": {},
	"forelse": {}, "endforelse": {}, "while": {}, "endwhile": {},
	"break": {}, "continue": {},
	"include": {}, "includeif": {}, "includewhen": {}, "includeunless": {}, "includefirst": {},
	"each": {}, "once": {}, "endonce": {},
	"push": {}, "endpush": {}, "pushif": {}, "pushonce": {},
	"prepend": {}, "endprepend": {}, "stack": {},
	"extends": {}, "section": {}, "endsection": {}, "show": {}, "stop": {}, "overwrite": {},
	"yield": {}, "parent": {},
	"slot": {}, "endslot": {}, "component": {}, "endcomponent": {},
	"props": {}, "aware": {}, "inject": {},
	"auth": {}, "endauth": {}, "guest": {}, "endguest": {},
	"env": {}, "endenv": {}, "production": {}, "endproduction": {},
	"can": {}, "cannot": {}, "canany": {}, "endcan": {}, "endcannot": {}, "endcanany": {},
	"csrf": {}, "method": {}, "error": {}, "enderror": {},
	"checked": {}, "selected": {}, "disabled": {}, "readonly": {}, "required": {},
	"class": {}, "style": {},
	"json": {}, "js": {}, "dd": {}, "dump": {},
	"verbatim": {}, "endverbatim": {}, "php": {}, "endphp": {}, "use": {},
	"lang": {}, "choice": {}, "vite": {},
}

var (
	// dynamicAttrPattern matches a colon-prefixed attribute name followed by
	// '=', the shorthand for binding an attribute to a host-language
	// expression. Only meaningful after quoted spans are stripped.
	dynamicAttrPattern = regexp.MustCompile(`\s:[a-zA-Z_][a-zA-Z0-9_.-]*=`)

	// directivePattern captures each '@'-prefixed word for keyword lookup.
	directivePattern = regexp.MustCompile(`@([a-zA-Z]+)`)
)

// isUnsafe decides whether rewriting tagText risks corrupting embedded
// template syntax. The check runs against the tag text with all quoted
// attribute values emptied out: template syntax inside a quoted value is a
// literal string as far as the tag's structure goes, and appending one more
// attribute after it cannot break re-serialization. Anything dynamic left
// in the unquoted remainder blocks annotation.
func isUnsafe(tagText string) bool {
	s := stripQuoted(tagText)

	// Raw PHP escapes: <?php ... ?> or <?= ... ?>
	if strings.Contains(s, "<?") {
		return true
	}

	// Echo and attribute-spread markers: {{ ... }} / {!! ... !!}. Catches
	// constructs like {{ $attributes->merge(...) }} where the tag's final
	// attribute set is not statically known.
	if strings.Contains(s, "{{") || strings.Contains(s, "{!!") {
		return true
	}

	// Key => value pairs outside quotes signal an embedded expression.
	if strings.Contains(s, "=>") {
		return true
	}

	if dynamicAttrPattern.MatchString(s) {
		return true
	}

	for _, m := range directivePattern.FindAllStringSubmatch(s, -1) {
		if _, ok := directiveKeywords[strings.ToLower(m[1])]; ok {
			return true
		}
	}

	return false
}

// stripQuoted empties the contents of every single- and double-quoted span,
// keeping the quote characters themselves so attribute shapes like
// @click="" survive for the directive scan.
func stripQuoted(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == quote {
				quote = 0
				b.WriteByte(c)
			}
			continue
		}
		if c == '"' || c == '\'' {
			quote = c
		}
		b.WriteByte(c)
	}
	return b.String()
}
