package instrument

import "strings"

// anchorLength bounds the fuzzy-match prefix used when a matched tag cannot
// be found verbatim in the original file.
const anchorLength = 100

// resolveLine maps a match in the working buffer back to a 1-based line
// number in the original file. It returns the line and the offset in the
// original where the next search should resume.
//
// The working buffer may have drifted from the on-disk text when unrelated
// compiler passes ran first, so offsets in it are not trusted directly.
// Instead the matched tag text is located in the original contents,
// starting at searchFrom — the end of the previous tag's anchor. Scanning
// and anchoring both move left to right, so identical tags repeated
// through a file each resolve to their own occurrence instead of all
// collapsing onto the first. If the exact text is absent, the first
// anchorLength bytes serve as a fuzzy anchor. When both searches miss, or
// no original contents are available, the line is counted in the working
// buffer itself — an accuracy degradation, never a failure — and
// searchFrom is returned unchanged.
func resolveLine(matchText string, matchOffset int, working, original string, searchFrom int) (int, int) {
	if original != "" {
		if line, end, ok := anchorAt(original, matchText, searchFrom); ok {
			return line, end
		}
		if len(matchText) > anchorLength {
			if line, end, ok := anchorAt(original, matchText[:anchorLength], searchFrom); ok {
				return line, end
			}
		}
	}

	if matchOffset > len(working) {
		matchOffset = len(working)
	}
	return 1 + strings.Count(working[:matchOffset], "\n"), searchFrom
}

// anchorAt locates needle at or after from, retrying from the start of the
// file when the tail misses (drift may have reordered content relative to
// the working buffer). Returns the 1-based line of the hit and the offset
// just past it.
func anchorAt(original, needle string, from int) (int, int, bool) {
	if from >= 0 && from <= len(original) {
		if idx := strings.Index(original[from:], needle); idx >= 0 {
			at := from + idx
			return 1 + strings.Count(original[:at], "\n"), at + len(needle), true
		}
	}

	idx := strings.Index(original, needle)
	if idx < 0 {
		return 0, 0, false
	}
	return 1 + strings.Count(original[:idx], "\n"), idx + len(needle), true
}
