package naming

import (
	"fmt"
	"strconv"
	"strings"
)

// Values maps placeholder names to their substitution values.
// Supported value types are string, the integer types, fmt.Stringer, and
// pointers to string or int; nil values (including nil pointers) expand to
// the empty string.
type Values map[string]any

// Format replaces every {key} in template whose key is present in values.
// Placeholders without a matching key are left verbatim. Substituted text is
// never rescanned, so the result does not depend on key order.
func Format(template string, values Values) string {
	if template == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(template))

	s := template
	for {
		open := strings.IndexByte(s, '{')
		if open < 0 {
			b.WriteString(s)
			break
		}
		end := strings.IndexByte(s[open+1:], '}')
		if end < 0 {
			b.WriteString(s)
			break
		}
		name := s[open+1 : open+1+end]
		if v, ok := values[name]; ok {
			b.WriteString(s[:open])
			b.WriteString(stringify(v))
			s = s[open+end+2:]
			continue
		}
		// Unknown key: keep the brace and rescan from the next byte so
		// that "{{artist}" still expands the inner placeholder.
		b.WriteString(s[:open+1])
		s = s[open+1:]
	}

	return b.String()
}

// Placeholders returns the distinct placeholder names used in template, in
// order of first appearance.
func Placeholders(template string) []string {
	var names []string
	seen := make(map[string]bool)

	s := template
	for {
		open := strings.IndexByte(s, '{')
		if open < 0 {
			break
		}
		end := strings.IndexAny(s[open+1:], "{}")
		if end < 0 {
			break
		}
		if s[open+1+end] == '{' {
			s = s[open+1+end:]
			continue
		}
		name := s[open+1 : open+1+end]
		if name != "" && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
		s = s[open+end+2:]
	}

	return names
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case *string:
		if val == nil {
			return ""
		}
		return *val
	case int:
		return strconv.Itoa(val)
	case *int:
		if val == nil {
			return ""
		}
		return strconv.Itoa(*val)
	case int64:
		return strconv.FormatInt(val, 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case uint:
		return strconv.FormatUint(uint64(val), 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
