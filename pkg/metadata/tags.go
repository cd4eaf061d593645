package metadata

import (
	"context"
	"errors"
	"os"

	"github.com/dhowden/tag"

	"github.com/sdejongh/musicsort/pkg/models"
)

// Reader extracts embedded metadata from an audio file
type Reader interface {
	Read(ctx context.Context, path string) (models.Metadata, error)
}

// ErrUnreadable marks files that could not be opened at all
var ErrUnreadable = errors.New("file unreadable")

// TagReader reads ID3, MP4, FLAC and Vorbis tags
type TagReader struct{}

// NewTagReader creates a tag reader
func NewTagReader() *TagReader {
	return &TagReader{}
}

// Read returns the file's tags. A file without tags yields empty
// metadata and no error. Open failures wrap ErrUnreadable.
func (r *TagReader) Read(ctx context.Context, path string) (models.Metadata, error) {
	if err := ctx.Err(); err != nil {
		return models.Metadata{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return models.Metadata{}, models.NewAppError(models.CategoryMetadataExtraction, "open file", "",
			errors.Join(ErrUnreadable, err), map[string]string{models.ContextPath: path})
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if errors.Is(err, tag.ErrNoTagsFound) {
		return models.Metadata{}, nil
	}
	if err != nil {
		return models.Metadata{}, models.NewAppError(models.CategoryMetadataExtraction, "read tags", "", err,
			map[string]string{models.ContextPath: path})
	}

	track, _ := m.Track()
	disc, _ := m.Disc()

	return models.Metadata{
		Title:       models.Str(m.Title()),
		Artist:      models.Str(m.Artist()),
		AlbumArtist: models.Str(m.AlbumArtist()),
		Album:       models.Str(m.Album()),
		Genre:       models.Str(m.Genre()),
		Year:        models.Int(m.Year()),
		TrackNumber: models.Int(track),
		DiscNumber:  models.Int(disc),
	}, nil
}
