// Package marker encodes and decodes the opaque tokens embedded in rendered
// HTML as source-location attributes.
//
// A token carries a logical template identifier and a 1-based line number.
// The binary record is msgpack, wrapped in unpadded URL-safe base64 so the
// result is always safe inside a double-quoted HTML attribute (the alphabet
// contains no quotes, angle brackets or control characters).
package marker

import (
	"encoding/base64"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// SourceRef is the payload carried by one marker token.
type SourceRef struct {
	// TemplateID is the dot-delimited logical template name, e.g. "components.alert".
	TemplateID string `msgpack:"t" json:"templateId"`
	// Line is the 1-based line number in the original template file.
	Line int `msgpack:"l" json:"line"`
}

// Encode serializes {templateID, line} into an attribute-safe token.
//
// An empty templateID or a line below 1 is a caller bug, not a data
// condition, and is reported as an error.
func Encode(templateID string, line int) (string, error) {
	if templateID == "" {
		return "", fmt.Errorf("marker: empty template identifier")
	}
	if line < 1 {
		return "", fmt.Errorf("marker: invalid line %d (must be >= 1)", line)
	}

	raw, err := msgpack.Marshal(SourceRef{TemplateID: templateID, Line: line})
	if err != nil {
		return "", fmt.Errorf("marker: encode %q: %w", templateID, err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// Decode reverses Encode. It never panics: malformed, truncated or tampered
// tokens yield ok=false so callers can report an invalid reference instead
// of crashing.
func Decode(token string) (SourceRef, bool) {
	if token == "" {
		return SourceRef{}, false
	}

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return SourceRef{}, false
	}

	var ref SourceRef
	if err := msgpack.Unmarshal(raw, &ref); err != nil {
		return SourceRef{}, false
	}
	if ref.TemplateID == "" || ref.Line < 1 {
		return SourceRef{}, false
	}
	return ref, true
}
