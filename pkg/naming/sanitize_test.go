package naming

import (
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Plain", "Daft Punk", "Daft Punk"},
		{"ForbiddenChars", `AC/DC: Live? "Yes" <1|2> *\`, `AC_DC_ Live_ _Yes_ _1_2_ __`},
		{"ControlChars", "Bad\x00Name\x1f", "BadName"},
		{"LeadingDots", "...hidden", "hidden"},
		{"LeadingDotsAfterSpace", "  .hidden", "hidden"},
		{"Whitespace", "  padded  ", "padded"},
		{"Empty", "", "unknown"},
		{"OnlyControl", "\x01\x02\x03", "unknown"},
		{"OnlyDots", "....", "unknown"},
		{"ReservedUpper", "CON", "_CON"},
		{"ReservedLower", "nul", "_nul"},
		{"ReservedPadded", "  com1 ", "_com1"},
		{"ReservedWithExtension", "LPT9.mp3", "_LPT9.mp3"},
		{"NotReserved", "CONCERT", "CONCERT"},
		{"Unicode", "Sigur Rós", "Sigur Rós"},
		{"InternalDotsKept", "Mr. Oizo", "Mr. Oizo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Sanitize(tt.input)
			if result != tt.expected {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestSanitize_Truncates(t *testing.T) {
	long := strings.Repeat("a", 300)
	result := Sanitize(long)
	if len(result) != MaxSegmentLength {
		t.Errorf("len(Sanitize(300 chars)) = %d, want %d", len(result), MaxSegmentLength)
	}

	// Multi-byte runes must not be split at the boundary
	multi := strings.Repeat("é", 200)
	result = Sanitize(multi)
	if len(result) > MaxSegmentLength {
		t.Errorf("len = %d, exceeds %d", len(result), MaxSegmentLength)
	}
	if !utf8.ValidString(result) {
		t.Error("truncated result is not valid UTF-8")
	}

	// Trailing whitespace exposed by the cut is trimmed
	spaced := strings.Repeat("a", 254) + "  tail"
	result = Sanitize(spaced)
	if strings.HasSuffix(result, " ") {
		t.Errorf("truncated result has trailing space: %q", result)
	}
}

func TestSanitize_Invariants(t *testing.T) {
	inputs := []string{
		"",
		" ",
		".",
		"..",
		" . . ",
		"CON",
		" aux ",
		"a/b\\c:d*e?f\"g<h>i|j",
		"\x00\x01\x1f",
		"\t.\tname",
		".CON",
		"prn.txt",
		strings.Repeat("x ", 200),
		strings.Repeat("ü", 300),
		"\xff\xfe broken utf8",
		"Ĳsselmeer / Øresund",
		"CON" + strings.Repeat(" ", 300) + "x",
		"lpt1." + strings.Repeat("a", 250),
	}

	for _, in := range inputs {
		out := Sanitize(in)

		if out == "" {
			t.Errorf("Sanitize(%q) returned empty string", in)
		}
		if len(out) > MaxSegmentLength {
			t.Errorf("Sanitize(%q) length %d > %d", in, len(out), MaxSegmentLength)
		}
		if strings.ContainsAny(out, forbiddenChars) {
			t.Errorf("Sanitize(%q) = %q contains a forbidden character", in, out)
		}
		for _, r := range out {
			if r < 0x20 {
				t.Errorf("Sanitize(%q) = %q contains control character %U", in, out, r)
			}
		}
		if strings.HasPrefix(out, ".") {
			t.Errorf("Sanitize(%q) = %q starts with a dot", in, out)
		}
		if again := Sanitize(out); again != out {
			t.Errorf("Sanitize not idempotent: %q -> %q -> %q", in, out, again)
		}
	}
}

func TestSanitize_ReservedAfterTruncation(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"TrailingSpacesCut", "CON" + strings.Repeat(" ", 300) + "x", "_CON"},
		{"ExtensionAtLimit", "NUL." + strings.Repeat("a", 251), "_NUL." + strings.Repeat("a", 250)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Sanitize(tt.input)
			if result != tt.expected {
				t.Errorf("Sanitize() = %q, want %q", result, tt.expected)
			}
			if len(result) > MaxSegmentLength {
				t.Errorf("Sanitize() length %d > %d", len(result), MaxSegmentLength)
			}
		})
	}
}

func TestFormatPath(t *testing.T) {
	values := Values{"genre": "Rock", "artist": "AC/DC", "album": nil, "blank": "  ", "dots": ".."}

	tests := []struct {
		name     string
		template string
		expected string
	}{
		{"AllPresent", "{genre}/{artist}", filepath.Join("Rock", "AC", "DC")},
		{"MissingMiddle", "{genre}/{album}/{artist}", filepath.Join("Rock", "unknown", "AC", "DC")},
		{"MissingFirst", "{album}/{genre}", filepath.Join("unknown", "Rock")},
		{"BlankValue", "{blank}/{genre}", filepath.Join("unknown", "Rock")},
		{"TemplateSeparators", "/{genre}//{genre}/", filepath.Join("Rock", "Rock")},
		{"LiteralKept", "{album} - live", "- live"},
		{"DotDotValue", "{genre}/{dots}", filepath.Join("Rock", "unknown")},
		{"UnknownPlaceholder", "{genre}/{mood}", filepath.Join("Rock", "{mood}")},
		{"Empty", "", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatPath(tt.template, values)
			if result != tt.expected {
				t.Errorf("FormatPath(%q) = %q, want %q", tt.template, result, tt.expected)
			}
		})
	}
}

func TestSanitizePath(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Simple", "Artist/Album", filepath.Join("Artist", "Album")},
		{"Backslash", `Artist\Album`, filepath.Join("Artist", "Album")},
		{"EmptySegments", "//Artist///Album/", filepath.Join("Artist", "Album")},
		{"DotDot", "../../etc/passwd", filepath.Join("unknown", "unknown", "etc", "passwd")},
		{"PerSegment", "AC:DC/Back in Black?", filepath.Join("AC_DC", "Back in Black_")},
		{"Empty", "", "unknown"},
		{"WhitespaceSegment", "A/ /B", filepath.Join("A", "B")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SanitizePath(tt.input)
			if result != tt.expected {
				t.Errorf("SanitizePath(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name string
		stem string
		ext  string
		want string
	}{
		{"Simple", "Queen - Innuendo", ".mp3", "Queen - Innuendo.mp3"},
		{"Forbidden", "AC/DC - T.N.T.", ".flac", "AC_DC - T.N.T..flac"},
		{"Empty", "  ", ".mp3", "unknown.mp3"},
		{"NoExtension", "Song", "", "Song"},
		{"ReservedAfterShortening", "NUL" + strings.Repeat(" ", 250) + "x", ".mp3", "_NUL.mp3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFilename(tt.stem, tt.ext); got != tt.want {
				t.Errorf("SanitizeFilename(%q, %q) = %q, want %q", tt.stem, tt.ext, got, tt.want)
			}
		})
	}

	long := SanitizeFilename(strings.Repeat("a", 300), ".flac")
	if len(long) != MaxSegmentLength || !strings.HasSuffix(long, ".flac") {
		t.Errorf("long name = %d bytes, suffix ok = %v", len(long), strings.HasSuffix(long, ".flac"))
	}
}
