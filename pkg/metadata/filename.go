package metadata

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sdejongh/musicsort/pkg/models"
)

// MatchKind tags the outcome of a filename matcher
type MatchKind int

const (
	// MatchNone means the pattern did not apply
	MatchNone MatchKind = iota
	// MatchPartial means some fields were recovered from the name
	MatchPartial
)

// Match is the result of running a matcher against a filename stem
type Match struct {
	Kind    MatchKind
	Pattern string
	Partial models.Metadata
}

// Matcher recovers metadata from filenames of one shape
type Matcher struct {
	Name  string
	re    *regexp.Regexp
	build func(groups []string) models.Metadata
}

// Match applies the matcher to a filename stem
func (m Matcher) Match(stem string) Match {
	groups := m.re.FindStringSubmatch(strings.TrimSpace(stem))
	if groups == nil {
		return Match{Kind: MatchNone}
	}
	return Match{Kind: MatchPartial, Pattern: m.Name, Partial: m.build(groups)}
}

// DefaultMatchers are tried in order; the first partial match wins.
// Track prefixes are one or two digits so numeric artist names survive.
var DefaultMatchers = []Matcher{
	{
		Name: "NN - Artist - Title",
		re:   regexp.MustCompile(`^(\d{1,2})\s*[-.]\s*(.+?)\s+-\s+(.+)$`),
		build: func(g []string) models.Metadata {
			return models.Metadata{TrackNumber: parseTrack(g[1]), Artist: models.Str(g[2]), Title: models.Str(g[3])}
		},
	},
	{
		Name: "NN. Title",
		re:   regexp.MustCompile(`^(\d{1,2})(?:\.|\s+-)\s*(.+)$`),
		build: func(g []string) models.Metadata {
			return models.Metadata{TrackNumber: parseTrack(g[1]), Title: models.Str(g[2])}
		},
	},
	{
		Name: "Artist - Title",
		re:   regexp.MustCompile(`^(.+?)\s+-\s+(.+)$`),
		build: func(g []string) models.Metadata {
			return models.Metadata{Artist: models.Str(g[1]), Title: models.Str(g[2])}
		},
	},
	{
		Name: "Artist_Title",
		re:   regexp.MustCompile(`^([^_]+)_(.+)$`),
		build: func(g []string) models.Metadata {
			return models.Metadata{
				Artist: models.Str(g[1]),
				Title:  models.Str(strings.ReplaceAll(g[2], "_", " ")),
			}
		},
	},
}

// MatchFilename runs matchers in order and returns the first partial match
func MatchFilename(stem string, matchers []Matcher) Match {
	for _, m := range matchers {
		if match := m.Match(stem); match.Kind == MatchPartial {
			return match
		}
	}
	return Match{Kind: MatchNone}
}

func parseTrack(s string) *int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return models.Int(n)
}
