package naming

import (
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxSegmentLength is the maximum length in bytes of a sanitized segment
const MaxSegmentLength = 255

// Fallback is returned when nothing usable remains of a segment
const Fallback = "unknown"

// forbiddenChars are invalid in a path segment on at least one of
// Windows, macOS or Linux
const forbiddenChars = `/\:*?"<>|`

// reservedNames are Windows device names, matched case-insensitively
var reservedNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM0": true, "COM1": true, "COM2": true, "COM3": true, "COM4": true,
	"COM5": true, "COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT0": true, "LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true,
	"LPT5": true, "LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// Sanitize converts arbitrary text into a single path segment that is valid
// on every supported platform. It never fails and never returns an empty
// string. Sanitize(Sanitize(s)) == Sanitize(s) for every s.
func Sanitize(segment string) string {
	var b strings.Builder
	b.Grow(len(segment))

	for _, r := range segment {
		switch {
		case strings.ContainsRune(forbiddenChars, r):
			b.WriteByte('_')
		case r < 0x20:
			// control characters are dropped
		case r == utf8.RuneError:
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}

	// Leading dots would produce hidden files; whitespace exposed by
	// removing them is trimmed in the same pass.
	s := strings.TrimLeftFunc(b.String(), func(r rune) bool {
		return r == '.' || unicode.IsSpace(r)
	})
	s = strings.TrimSpace(s)

	if s == "" {
		return Fallback
	}

	// Truncation trims trailing whitespace, which can expose a device
	// name, so the reserved check runs on the truncated value.
	s = truncate(s, MaxSegmentLength)
	if isReserved(s) {
		s = truncate("_"+s, MaxSegmentLength)
	}
	return s
}

// SanitizeFilename sanitizes stem and appends ext, shortening the stem so
// the whole name fits in MaxSegmentLength
func SanitizeFilename(stem, ext string) string {
	s := Sanitize(stem)
	if len(s)+len(ext) > MaxSegmentLength {
		s = strings.TrimSpace(truncate(s, MaxSegmentLength-len(ext)))
		if s == "" {
			s = Fallback
		}
		if isReserved(s) {
			s = truncate("_"+s, MaxSegmentLength-len(ext))
		}
	}
	return s + ext
}

// SanitizePath sanitizes every segment of a relative path independently.
// Both '/' and '\' are treated as separators regardless of the host OS, and
// the result is joined with the host separator. Empty segments, "." and ".."
// never survive, so the result cannot escape its root.
func SanitizePath(rel string) string {
	parts := SplitSegments(rel)
	if len(parts) == 0 {
		return Fallback
	}
	clean := make([]string, 0, len(parts))
	for _, p := range parts {
		clean = append(clean, Sanitize(p))
	}
	return filepath.Join(clean...)
}

// FormatPath renders a path template one level at a time. Separators in
// the template text delimit levels and a level that renders to nothing
// becomes Fallback, so a missing value never shifts the levels after it.
// Separators inside substituted values still split their level.
func FormatPath(template string, values Values) string {
	var parts []string
	for _, level := range SplitSegments(template) {
		rendered := SplitSegments(Format(level, values))
		if len(rendered) == 0 {
			parts = append(parts, Fallback)
			continue
		}
		for _, r := range rendered {
			parts = append(parts, Sanitize(r))
		}
	}
	if len(parts) == 0 {
		return Fallback
	}
	return filepath.Join(parts...)
}

// SplitSegments splits a path on both '/' and '\', dropping empty segments
func SplitSegments(rel string) []string {
	fields := strings.FieldsFunc(rel, func(r rune) bool {
		return r == '/' || r == '\\'
	})
	out := fields[:0]
	for _, f := range fields {
		if strings.TrimSpace(f) == "" {
			continue
		}
		out = append(out, f)
	}
	return out
}

// isReserved reports whether s names a Windows device, either exactly or
// with an extension ("NUL.mp3" is just as unusable as "NUL").
func isReserved(s string) bool {
	stem := s
	if i := strings.IndexByte(s, '.'); i >= 0 {
		stem = s[:i]
	}
	return reservedNames[strings.ToUpper(strings.TrimSpace(stem))]
}

// truncate cuts s to at most max bytes without splitting a rune
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return strings.TrimRightFunc(s[:cut], unicode.IsSpace)
}
