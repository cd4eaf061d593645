package metadata

import (
	"context"
	"errors"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/sdejongh/musicsort/pkg/logging"
	"github.com/sdejongh/musicsort/pkg/models"
)

// ResolverConfig holds settings for a Resolver
type ResolverConfig struct {
	// Reader extracts embedded tags (defaults to a TagReader)
	Reader Reader

	// Matchers recover artist and title from filenames when tags lack
	// them (nil means DefaultMatchers, empty disables the fallback)
	Matchers []Matcher

	// Extensions restricts accepted files (nil means SupportedExtensions)
	Extensions []string

	// Workers bounds concurrent tag reads (0 means GOMAXPROCS)
	Workers int

	Logger logging.Logger
}

// Result is the outcome of resolving a list of paths
type Result struct {
	// Files holds one record per accepted path, in input order
	Files []models.MediaFile

	// Unsupported counts paths skipped for their extension or type
	Unsupported int

	// Failures holds the errors of paths that could not be read at all
	Failures []error

	// FromFilename counts files whose metadata was patched from the name
	FromFilename int
}

// Resolver turns file paths into MediaFile records
type Resolver struct {
	reader     Reader
	matchers   []Matcher
	extensions []string
	workers    int
	logger     logging.Logger
}

// NewResolver creates a resolver
func NewResolver(config ResolverConfig) *Resolver {
	r := &Resolver{
		reader:     config.Reader,
		matchers:   config.Matchers,
		extensions: config.Extensions,
		workers:    config.Workers,
		logger:     config.Logger,
	}
	if r.reader == nil {
		r.reader = NewTagReader()
	}
	if r.matchers == nil {
		r.matchers = DefaultMatchers
	}
	if r.workers <= 0 {
		r.workers = runtime.GOMAXPROCS(0)
	}
	if r.logger == nil {
		r.logger = logging.NewNullLogger()
	}
	r.logger = r.logger.WithFields(logging.Fields{"component": "metadata"})
	return r
}

type resolved struct {
	file         models.MediaFile
	ok           bool
	unsupported  bool
	fromFilename bool
	err          error
}

// Resolve stats each path, filters unsupported files and reads metadata.
// Files whose tags cannot be parsed are still returned, with metadata
// recovered from the filename. Only files that cannot be opened are
// dropped and reported in Failures. The returned error is non-nil only
// when ctx is cancelled.
func (r *Resolver) Resolve(ctx context.Context, paths []string) (*Result, error) {
	slots := make([]resolved, len(paths))

	var g errgroup.Group
	g.SetLimit(r.workers)
	for i, path := range paths {
		if ctx.Err() != nil {
			break
		}
		i, path := i, path
		g.Go(func() error {
			slots[i] = r.resolveOne(ctx, path)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &Result{Files: make([]models.MediaFile, 0, len(paths))}
	for _, s := range slots {
		switch {
		case s.unsupported:
			result.Unsupported++
		case s.err != nil:
			result.Failures = append(result.Failures, s.err)
		case s.ok:
			result.Files = append(result.Files, s.file)
			if s.fromFilename {
				result.FromFilename++
			}
		}
	}

	r.logger.Info(ctx, "Resolved metadata", logging.Fields{
		"files":         len(result.Files),
		"unsupported":   result.Unsupported,
		"failures":      len(result.Failures),
		"from_filename": result.FromFilename,
	})
	return result, nil
}

func (r *Resolver) resolveOne(ctx context.Context, path string) resolved {
	info, err := os.Stat(path)
	if err != nil {
		appErr := models.NewAppError(models.CategoryMetadataExtraction, "stat file", "", err,
			map[string]string{models.ContextPath: path})
		r.logger.Error(ctx, "Cannot access file", err, logging.Fields{"path": path})
		return resolved{err: appErr}
	}
	if !info.Mode().IsRegular() || !IsSupported(path, r.extensions) {
		return resolved{unsupported: true}
	}

	meta, err := r.reader.Read(ctx, path)
	if err != nil {
		if errors.Is(err, ErrUnreadable) {
			r.logger.Error(ctx, "Skipping unreadable file", err, logging.Fields{"path": path})
			return resolved{err: err}
		}
		r.logger.Warn(ctx, "Could not parse tags", logging.Fields{"path": path, "error": err.Error()})
		meta = models.Metadata{}
	}

	file := models.NewMediaFile(path, info.Size(), info.ModTime(), meta)

	fromFilename := false
	if meta.Artist == nil || meta.Title == nil {
		if match := MatchFilename(file.Stem(), r.matchers); match.Kind == MatchPartial {
			file.Metadata = meta.Merge(match.Partial)
			fromFilename = true
			r.logger.Debug(ctx, "Metadata recovered from filename", logging.Fields{
				"path":    path,
				"pattern": match.Pattern,
			})
		}
	}

	return resolved{file: file, ok: true, fromFilename: fromFilename}
}
