package models

import (
	"fmt"
	"strings"
)

// SortPattern selects the shape of the destination tree
type SortPattern string

const (
	// PatternArtist sorts into by-artist/<artist>/
	PatternArtist SortPattern = "artist"
	// PatternAlbumArtist sorts into by-album-artist/<album artist>/<album>/
	PatternAlbumArtist SortPattern = "album-artist"
	// PatternAlbum sorts into by-album/<artist>/<album>/
	PatternAlbum SortPattern = "album"
	// PatternGenre sorts into by-genre/<genre>/
	PatternGenre SortPattern = "genre"
	// PatternYear sorts into by-year/<year>/
	PatternYear SortPattern = "year"
	// PatternCustom sorts into custom/<rendered template>/
	PatternCustom SortPattern = "custom"
)

// SortPatterns lists every supported pattern
var SortPatterns = []SortPattern{
	PatternArtist,
	PatternAlbumArtist,
	PatternAlbum,
	PatternGenre,
	PatternYear,
	PatternCustom,
}

// ParseSortPattern parses a pattern name. "albumartist" and "album_artist"
// are accepted as aliases of album-artist.
func ParseSortPattern(s string) (SortPattern, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "artist":
		return PatternArtist, nil
	case "album-artist", "albumartist", "album_artist":
		return PatternAlbumArtist, nil
	case "album":
		return PatternAlbum, nil
	case "genre":
		return PatternGenre, nil
	case "year":
		return PatternYear, nil
	case "custom":
		return PatternCustom, nil
	}
	return "", &ValidationError{
		Field:   "pattern",
		Message: fmt.Sprintf("unknown sort pattern %q (valid: artist, album-artist, album, genre, year, custom)", s),
	}
}

// SortSpecification describes how a run lays out its destination tree
type SortSpecification struct {
	Pattern  SortPattern
	CopyMode bool
	// Template is required when Pattern is PatternCustom
	Template string
}

// Validate checks the specification before any file is touched.
// Errors are FileOperation AppErrors.
func (s SortSpecification) Validate() error {
	switch s.Pattern {
	case PatternArtist, PatternAlbumArtist, PatternAlbum, PatternGenre, PatternYear:
		return nil
	case PatternCustom:
		if strings.TrimSpace(s.Template) == "" {
			return NewAppError(CategoryFileOperation, "validate sort specification",
				"custom pattern requires a template", nil, nil)
		}
		return nil
	default:
		return NewAppError(CategoryFileOperation, "validate sort specification",
			fmt.Sprintf("unknown sort pattern %q", s.Pattern), nil, nil)
	}
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
