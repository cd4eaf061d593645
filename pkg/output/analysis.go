package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/dustin/go-humanize"

	"github.com/sdejongh/musicsort/pkg/compare"
	"github.com/sdejongh/musicsort/pkg/metadata"
)

// maxListed bounds the names printed per category in human output
const maxListed = 10

// Analysis is the result of inspecting a collection without changing it
type Analysis struct {
	Source       string
	Stats        metadata.Stats
	Unsupported  int
	Unreadable   int
	FromFilename int
	// Duplicates is nil when duplicate detection was skipped
	Duplicates []compare.DuplicateGroup
}

// JSONAnalysisData is the JSON shape of an Analysis
type JSONAnalysisData struct {
	Source       string               `json:"source"`
	Files        int                  `json:"files"`
	TotalBytes   int64                `json:"total_bytes"`
	TotalSize    string               `json:"total_size"`
	Unsupported  int                  `json:"unsupported"`
	Unreadable   int                  `json:"unreadable"`
	FromFilename int                  `json:"from_filename"`
	Artists      []string             `json:"artists"`
	Albums       []string             `json:"albums"`
	Genres       []string             `json:"genres"`
	MinYear      int                  `json:"min_year,omitempty"`
	MaxYear      int                  `json:"max_year,omitempty"`
	Extensions   map[string]int       `json:"extensions"`
	Missing      map[string]int       `json:"missing,omitempty"`
	Duplicates   []JSONDuplicateGroup `json:"duplicates,omitempty"`
	WastedBytes  int64                `json:"wasted_bytes,omitempty"`
}

// JSONDuplicateGroup is the JSON shape of a duplicate group
type JSONDuplicateGroup struct {
	Hash  string   `json:"sha256"`
	Size  int64    `json:"size"`
	Paths []string `json:"paths"`
}

// WriteAnalysis renders an analysis in the given format ("human" or "json")
func WriteAnalysis(w io.Writer, a *Analysis, format string) error {
	if format == "json" {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(newJSONAnalysis(a))
	}
	writeAnalysisHuman(w, a)
	return nil
}

func newJSONAnalysis(a *Analysis) JSONAnalysisData {
	data := JSONAnalysisData{
		Source:       a.Source,
		Files:        a.Stats.Files,
		TotalBytes:   a.Stats.TotalSize,
		TotalSize:    humanize.IBytes(uint64(a.Stats.TotalSize)),
		Unsupported:  a.Unsupported,
		Unreadable:   a.Unreadable,
		FromFilename: a.FromFilename,
		Artists:      nonNil(a.Stats.Artists),
		Albums:       nonNil(a.Stats.Albums),
		Genres:       nonNil(a.Stats.Genres),
		MinYear:      a.Stats.MinYear,
		MaxYear:      a.Stats.MaxYear,
		Extensions:   a.Stats.Extensions,
		Missing:      a.Stats.Missing,
	}
	for _, g := range a.Duplicates {
		data.Duplicates = append(data.Duplicates, JSONDuplicateGroup{Hash: g.Hash, Size: g.Size, Paths: g.Paths})
		data.WastedBytes += g.Wasted()
	}
	return data
}

func writeAnalysisHuman(w io.Writer, a *Analysis) {
	s := a.Stats
	fmt.Fprintf(w, "Collection: %s\n\n", a.Source)
	fmt.Fprintf(w, "  Files:          %s (%s)\n", humanize.Comma(int64(s.Files)), humanize.IBytes(uint64(s.TotalSize)))
	if a.Unsupported > 0 {
		fmt.Fprintf(w, "  Unsupported:    %d\n", a.Unsupported)
	}
	if a.Unreadable > 0 {
		fmt.Fprintf(w, "  Unreadable:     %d\n", a.Unreadable)
	}
	if a.FromFilename > 0 {
		fmt.Fprintf(w, "  From filename:  %d\n", a.FromFilename)
	}
	fmt.Fprintf(w, "  Artists:        %d\n", len(s.Artists))
	fmt.Fprintf(w, "  Albums:         %d\n", len(s.Albums))
	fmt.Fprintf(w, "  Genres:         %d\n", len(s.Genres))
	if s.MinYear > 0 {
		fmt.Fprintf(w, "  Years:          %d - %d\n", s.MinYear, s.MaxYear)
	}

	if len(s.Extensions) > 0 {
		fmt.Fprintf(w, "\n  Formats:\n")
		for _, ext := range sortedKeys(s.Extensions) {
			fmt.Fprintf(w, "    %-8s %d\n", ext, s.Extensions[ext])
		}
	}
	if len(s.Missing) > 0 {
		fmt.Fprintf(w, "\n  Missing tags:\n")
		for _, field := range sortedKeys(s.Missing) {
			fmt.Fprintf(w, "    %-8s %d\n", field, s.Missing[field])
		}
	}
	writeNames(w, "Artists", s.Artists)
	writeNames(w, "Genres", s.Genres)

	if a.Duplicates == nil {
		return
	}
	fmt.Fprintf(w, "\n  Duplicates:     %d groups\n", len(a.Duplicates))
	var wasted int64
	for _, g := range a.Duplicates {
		wasted += g.Wasted()
		fmt.Fprintf(w, "    %s x%d (%s)\n", shortHash(g.Hash), len(g.Paths), humanize.IBytes(uint64(g.Size)))
		for _, p := range g.Paths {
			fmt.Fprintf(w, "      %s\n", p)
		}
	}
	if wasted > 0 {
		fmt.Fprintf(w, "    Reclaimable:  %s\n", humanize.IBytes(uint64(wasted)))
	}
}

func writeNames(w io.Writer, title string, names []string) {
	if len(names) == 0 {
		return
	}
	fmt.Fprintf(w, "\n  %s:\n", title)
	for i, n := range names {
		if i == maxListed {
			fmt.Fprintf(w, "    ... and %d more\n", len(names)-maxListed)
			break
		}
		fmt.Fprintf(w, "    %s\n", n)
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
