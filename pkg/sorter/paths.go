package sorter

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sdejongh/musicsort/pkg/models"
	"github.com/sdejongh/musicsort/pkg/naming"
)

// Top-level directories of the destination tree, one per pattern
const (
	DirByArtist      = "by-artist"
	DirByAlbumArtist = "by-album-artist"
	DirByAlbum       = "by-album"
	DirByGenre       = "by-genre"
	DirByYear        = "by-year"
	DirCustom        = "custom"
)

// Placeholder values for missing tags
const (
	UnknownArtist = "Unknown Artist"
	UnknownAlbum  = "Unknown Album"
	UnknownGenre  = "Unknown Genre"
	UnknownYear   = "Unknown Year"
)

// DestinationFor computes the path of file relative to the target root.
// The file's basename is kept as is.
func DestinationFor(file models.MediaFile, spec models.SortSpecification) (string, error) {
	m := file.Metadata
	base := file.Basename()

	switch spec.Pattern {
	case models.PatternArtist:
		return filepath.Join(DirByArtist, segment(m.Artist, UnknownArtist), base), nil

	case models.PatternAlbumArtist:
		artist := m.AlbumArtist
		if models.StringOr(artist, "") == "" {
			artist = m.Artist
		}
		return filepath.Join(DirByAlbumArtist, segment(artist, UnknownArtist), segment(m.Album, UnknownAlbum), base), nil

	case models.PatternAlbum:
		return filepath.Join(DirByAlbum, segment(m.Artist, UnknownArtist), segment(m.Album, UnknownAlbum), base), nil

	case models.PatternGenre:
		return filepath.Join(DirByGenre, segment(m.Genre, UnknownGenre), base), nil

	case models.PatternYear:
		year := UnknownYear
		if m.Year != nil {
			year = strconv.Itoa(*m.Year)
		}
		return filepath.Join(DirByYear, year, base), nil

	case models.PatternCustom:
		if strings.TrimSpace(spec.Template) == "" {
			return "", models.NewAppError(models.CategoryFileOperation, "compute destination",
				"custom pattern requires a template", nil, map[string]string{models.ContextSource: file.Path})
		}
		return filepath.Join(DirCustom, naming.FormatPath(spec.Template, TemplateValues(file)), base), nil
	}

	return "", models.NewAppError(models.CategoryFileOperation, "compute destination",
		fmt.Sprintf("unknown sort pattern %q", spec.Pattern), nil, map[string]string{models.ContextSource: file.Path})
}

// TemplateValues returns the placeholder values available to custom
// templates and the rename command
func TemplateValues(file models.MediaFile) naming.Values {
	m := file.Metadata
	stem := file.Stem()

	albumArtist := m.AlbumArtist
	if models.StringOr(albumArtist, "") == "" {
		albumArtist = m.Artist
	}

	title := models.StringOr(m.Title, stem)

	var track any
	if m.TrackNumber != nil {
		track = fmt.Sprintf("%02d", *m.TrackNumber)
	}

	return naming.Values{
		"artist":      m.Artist,
		"albumArtist": albumArtist,
		"album":       m.Album,
		"title":       title,
		"genre":       m.Genre,
		"year":        m.Year,
		"track":       track,
		"disc":        m.DiscNumber,
		"extension":   strings.TrimPrefix(file.Extension, "."),
		"filename":    stem,
	}
}

func segment(value *string, fallback string) string {
	return naming.Sanitize(models.StringOr(value, fallback))
}
