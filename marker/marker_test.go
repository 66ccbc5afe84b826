package marker

import (
	"strings"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		templateID string
		line       int
	}{
		{"components.alert", 1},
		{"test.view", 7},
		{"views.inpatient.treatment-chart", 412},
		{"a", 1},
		{"deeply.nested.path.to.a.partial", 99999},
		{"with-dash.and_underscore", 3},
	}

	for _, tt := range tests {
		token, err := Encode(tt.templateID, tt.line)
		if err != nil {
			t.Fatalf("Encode(%q, %d): %v", tt.templateID, tt.line, err)
		}

		ref, ok := Decode(token)
		if !ok {
			t.Fatalf("Decode(%q) failed for %q:%d", token, tt.templateID, tt.line)
		}
		if ref.TemplateID != tt.templateID || ref.Line != tt.line {
			t.Errorf("round trip = %+v, want {%s %d}", ref, tt.templateID, tt.line)
		}
	}
}

func TestEncodeAttributeSafeAlphabet(t *testing.T) {
	token, err := Encode("views.page", 42)
	if err != nil {
		t.Fatal(err)
	}
	if strings.ContainsAny(token, `"'<>&=+/ `) {
		t.Errorf("token %q contains characters unsafe inside a quoted attribute", token)
	}
	for i := 0; i < len(token); i++ {
		if token[i] < 0x21 || token[i] > 0x7e {
			t.Errorf("token %q contains control or non-ASCII byte %#x", token, token[i])
		}
	}
}

func TestEncodeContractViolations(t *testing.T) {
	if _, err := Encode("", 1); err == nil {
		t.Error("Encode with empty template id should fail")
	}
	if _, err := Encode("views.page", 0); err == nil {
		t.Error("Encode with line 0 should fail")
	}
	if _, err := Encode("views.page", -5); err == nil {
		t.Error("Encode with negative line should fail")
	}
}

func TestDecodeRobustness(t *testing.T) {
	valid, err := Encode("views.page", 12)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"not base64", "!!!not-base64***"},
		{"random base64", "AAAA"},
		{"plain text", "views.page:12"},
		{"truncated valid token", valid[:len(valid)/2]},
		{"tampered valid token", "Z" + valid[1:]},
		{"whitespace", "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if ref, ok := Decode(tt.token); ok {
				t.Errorf("Decode(%q) = %+v, ok=true; want failure", tt.token, ref)
			}
		})
	}
}
