package instrument

import "strings"

// tagMatch describes one opening tag located in the working buffer.
type tagMatch struct {
	// Name is the tag name exactly as written in the source.
	Name string
	// Start and End are byte offsets of the full match in the working
	// buffer, End pointing just past the closing '>'.
	Start int
	End   int
	// Text is the exact matched substring, including '<' and '>'.
	Text string
	// Attrs is the region between the tag name and the closing '>',
	// including a trailing '/' for self-closing tags.
	Attrs string
	// SelfClosing reports whether the trimmed match ends in "/>".
	SelfClosing bool
}

// findTag scans buf from offset for the next opening tag whose name is
// accepted by match. Scanning is a small character state machine rather
// than a regex: quoted attribute values ("..." and '...') are opaque, so a
// '>' inside quotes never terminates the tag.
//
// Closing tags, comments, doctype declarations and processing instructions
// are skipped. A matched tag whose attribute region never terminates before
// end of input is abandoned (fail-closed) and scanning resumes after its
// name.
func findTag(buf string, offset int, match func(name string) bool) (tagMatch, bool) {
	i := offset
	for i < len(buf) {
		if buf[i] != '<' {
			i++
			continue
		}

		// HTML comments are opaque: a tag inside one is not markup.
		if strings.HasPrefix(buf[i:], "<!--") {
			commentEnd := strings.Index(buf[i+4:], "-->")
			if commentEnd == -1 {
				return tagMatch{}, false
			}
			i += 4 + commentEnd + 3
			continue
		}

		nameStart := i + 1
		if nameStart >= len(buf) || !isNameStart(buf[nameStart]) {
			// "</", "<!--", "<!DOCTYPE", "<?php", stray '<'
			i++
			continue
		}

		nameEnd := nameStart
		for nameEnd < len(buf) && isNameByte(buf[nameEnd]) {
			nameEnd++
		}
		name := buf[nameStart:nameEnd]

		if !match(strings.ToLower(name)) {
			i = nameEnd
			continue
		}

		end, ok := scanAttributes(buf, nameEnd)
		if !ok {
			i = nameEnd
			continue
		}

		text := buf[i:end]
		trimmed := strings.TrimRight(text[:len(text)-1], " \t\r\n")
		return tagMatch{
			Name:        name,
			Start:       i,
			End:         end,
			Text:        text,
			Attrs:       buf[nameEnd : end-1],
			SelfClosing: strings.HasSuffix(trimmed, "/"),
		}, true
	}
	return tagMatch{}, false
}

// scanAttributes walks the attribute region starting at pos and returns the
// offset just past the closing '>'. Single- and double-quoted spans are
// treated as opaque. ok=false when the tag never closes.
func scanAttributes(buf string, pos int) (end int, ok bool) {
	var quote byte
	for j := pos; j < len(buf); j++ {
		c := buf[j]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '>':
			return j + 1, true
		}
	}
	return 0, false
}

// isNameStart reports whether b can begin a tag name.
func isNameStart(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// isNameByte reports whether b can appear inside a tag name. Dots and
// dashes are included so component-style names like "x-alert.title" scan
// as a single name.
func isNameByte(b byte) bool {
	return isNameStart(b) || (b >= '0' && b <= '9') || b == '-' || b == '.' || b == ':'
}
