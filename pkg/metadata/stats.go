package metadata

import (
	"sort"
	"strings"

	"github.com/sdejongh/musicsort/pkg/models"
)

// Stats summarizes a collection of media files
type Stats struct {
	Files     int
	TotalSize int64

	// Sorted unique values; names differing only by case count once
	Artists []string
	Albums  []string
	Genres  []string

	// MinYear and MaxYear are zero when no file carries a year
	MinYear int
	MaxYear int

	// Extensions counts files per lower-cased extension
	Extensions map[string]int

	// Missing counts files lacking each field, keyed by field name
	Missing map[string]int
}

// Summarize computes collection statistics
func Summarize(files []models.MediaFile) Stats {
	stats := Stats{
		Extensions: make(map[string]int),
		Missing:    make(map[string]int),
	}
	artists := newUniqueSet()
	albums := newUniqueSet()
	genres := newUniqueSet()

	for _, f := range files {
		stats.Files++
		stats.TotalSize += f.Size
		stats.Extensions[f.Extension]++

		m := f.Metadata
		if !artists.add(m.Artist) {
			stats.Missing["artist"]++
		}
		if !albums.add(m.Album) {
			stats.Missing["album"]++
		}
		if !genres.add(m.Genre) {
			stats.Missing["genre"]++
		}
		if m.Title == nil {
			stats.Missing["title"]++
		}
		if m.Year == nil {
			stats.Missing["year"]++
			continue
		}
		if stats.MinYear == 0 || *m.Year < stats.MinYear {
			stats.MinYear = *m.Year
		}
		if *m.Year > stats.MaxYear {
			stats.MaxYear = *m.Year
		}
	}

	stats.Artists = artists.sorted()
	stats.Albums = albums.sorted()
	stats.Genres = genres.sorted()
	return stats
}

// uniqueSet keeps the first spelling seen for each case-folded value
type uniqueSet map[string]string

func newUniqueSet() uniqueSet {
	return make(uniqueSet)
}

// add records s and reports whether it was present
func (u uniqueSet) add(s *string) bool {
	if s == nil || strings.TrimSpace(*s) == "" {
		return false
	}
	v := strings.TrimSpace(*s)
	key := strings.ToLower(v)
	if _, ok := u[key]; !ok {
		u[key] = v
	}
	return true
}

func (u uniqueSet) sorted() []string {
	values := make([]string, 0, len(u))
	for _, v := range u {
		values = append(values, v)
	}
	sort.Slice(values, func(i, j int) bool {
		return strings.ToLower(values[i]) < strings.ToLower(values[j])
	})
	return values
}
