package models

import (
	"path/filepath"
	"strings"
	"time"
)

// Metadata holds the semantic tag fields of a media file.
// Every field is optional; nil means the tag is absent.
type Metadata struct {
	Title       *string `json:"title,omitempty" yaml:"title,omitempty"`
	Artist      *string `json:"artist,omitempty" yaml:"artist,omitempty"`
	AlbumArtist *string `json:"album_artist,omitempty" yaml:"album_artist,omitempty"`
	Album       *string `json:"album,omitempty" yaml:"album,omitempty"`
	Genre       *string `json:"genre,omitempty" yaml:"genre,omitempty"`
	Year        *int    `json:"year,omitempty" yaml:"year,omitempty"`
	TrackNumber *int    `json:"track_number,omitempty" yaml:"track_number,omitempty"`
	DiscNumber  *int    `json:"disc_number,omitempty" yaml:"disc_number,omitempty"`
}

// MediaFile is a file on disk together with its parsed metadata
type MediaFile struct {
	// Path is the absolute path of the file
	Path string

	// Filename is the base name including extension
	Filename string

	// Extension is the lower-cased extension including the leading dot
	Extension string

	// Size in bytes
	Size int64

	// LastModified is the file modification time
	LastModified time.Time

	// Metadata may be patched by higher layers (e.g. filename fallback)
	Metadata Metadata
}

// NewMediaFile builds a MediaFile from a path and its stat data
func NewMediaFile(path string, size int64, modTime time.Time, meta Metadata) MediaFile {
	name := filepath.Base(path)
	return MediaFile{
		Path:         path,
		Filename:     name,
		Extension:    strings.ToLower(filepath.Ext(name)),
		Size:         size,
		LastModified: modTime,
		Metadata:     meta,
	}
}

// Basename returns the name the file keeps in its destination directory
func (f MediaFile) Basename() string {
	if f.Filename != "" {
		return f.Filename
	}
	return filepath.Base(f.Path)
}

// Stem returns the file name without its extension
func (f MediaFile) Stem() string {
	name := f.Basename()
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// Merge fills the fields that are absent in m with the ones set in other.
// Fields already present in m are kept.
func (m Metadata) Merge(other Metadata) Metadata {
	if m.Title == nil {
		m.Title = other.Title
	}
	if m.Artist == nil {
		m.Artist = other.Artist
	}
	if m.AlbumArtist == nil {
		m.AlbumArtist = other.AlbumArtist
	}
	if m.Album == nil {
		m.Album = other.Album
	}
	if m.Genre == nil {
		m.Genre = other.Genre
	}
	if m.Year == nil {
		m.Year = other.Year
	}
	if m.TrackNumber == nil {
		m.TrackNumber = other.TrackNumber
	}
	if m.DiscNumber == nil {
		m.DiscNumber = other.DiscNumber
	}
	return m
}

// StringOr returns *s, or def when s is nil or blank
func StringOr(s *string, def string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return def
	}
	return *s
}

// Str returns a pointer to s, or nil when s is blank.
// Tag readers report missing tags as empty strings.
func Str(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Int returns a pointer to n, or nil when n is not positive
func Int(n int) *int {
	if n <= 0 {
		return nil
	}
	return &n
}
