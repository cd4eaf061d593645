package storage

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sdejongh/musicsort/pkg/logging"
	"github.com/sdejongh/musicsort/pkg/models"
	"github.com/sdejongh/musicsort/pkg/ratelimit"
)

// LocalConfig holds optional settings for a Local backend
type LocalConfig struct {
	// Logger receives operation logs (nil disables logging)
	Logger logging.Logger

	// Limiter caps copy bandwidth (nil means unlimited)
	Limiter *ratelimit.Limiter

	// BufferSize is the copy buffer size in bytes
	BufferSize int
}

// Local is a filesystem-based storage backend rooted at a target directory
type Local struct {
	rootPath   string
	logger     logging.Logger
	limiter    *ratelimit.Limiter
	bufferSize int
	now        func() time.Time

	moved  atomic.Int64
	copied atomic.Int64
	failed atomic.Int64
}

// NewLocal creates a new local filesystem backend. The root directory is
// created if it does not exist.
func NewLocal(rootPath string, config LocalConfig) (*Local, error) {
	absPath, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, models.NewAppError(models.CategoryFileOperation, "resolve root", "", err,
			map[string]string{models.ContextPath: rootPath})
	}

	logger := config.Logger
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	if config.BufferSize < 4096 {
		config.BufferSize = 64 * 1024
	}

	l := &Local{
		rootPath:   absPath,
		logger:     logger.WithFields(logging.Fields{"component": "storage"}),
		limiter:    config.Limiter,
		bufferSize: config.BufferSize,
		now:        time.Now,
	}

	if err := l.EnsureDirectoryExists(context.Background(), absPath); err != nil {
		return nil, err
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, models.NewAppError(models.CategoryFileOperation, "access root", "", err,
			map[string]string{models.ContextPath: absPath})
	}
	if !info.IsDir() {
		return nil, models.NewAppError(models.CategoryFileOperation, "access root", "path is not a directory", nil,
			map[string]string{models.ContextPath: absPath})
	}

	return l, nil
}

// Root returns the absolute target root
func (l *Local) Root() string {
	return l.rootPath
}

// EnsureDirectoryExists creates a directory and all necessary parents.
// Calling it on an existing directory is a no-op.
func (l *Local) EnsureDirectoryExists(ctx context.Context, dir string) error {
	path := l.resolve(dir)

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return nil
	}

	if err := os.MkdirAll(path, 0755); err != nil {
		return models.NewAppError(models.CategoryFileOperation, "ensure directory", "", err,
			map[string]string{models.ContextPath: path})
	}

	l.logger.Debug(ctx, "Created directory", logging.Fields{"path": path})
	return nil
}

// ScanDirectory returns all files under dir, sorted lexically.
// Symlinked directories are never descended into, which rules out
// symlink cycles; symlinks to regular files are listed.
func (l *Local) ScanDirectory(ctx context.Context, dir string, opts ScanOptions) ([]string, error) {
	root := l.resolve(dir)

	if err := l.EnsureDirectoryExists(ctx, root); err != nil {
		return nil, err
	}

	ignore, err := compilePatterns(opts.IgnorePatterns)
	if err != nil {
		return nil, models.NewAppError(models.CategoryFileOperation, "scan directory", "invalid ignore pattern", err,
			map[string]string{models.ContextPath: root})
	}

	var files []string
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Check context cancellation
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if p == root {
			return nil
		}

		name := d.Name()
		rel, _ := filepath.Rel(root, p)

		excluded := (!opts.IncludeHidden && strings.HasPrefix(name, ".")) ||
			matchesAny(ignore, name, filepath.ToSlash(rel))

		if d.IsDir() {
			if excluded || !opts.Recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if excluded {
			return nil
		}

		switch {
		case d.Type().IsRegular():
			files = append(files, p)
		case d.Type()&fs.ModeSymlink != 0:
			if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
				files = append(files, p)
			}
		}
		return nil
	})
	if err != nil {
		return nil, models.NewAppError(models.CategoryFileOperation, "scan directory", "", err,
			map[string]string{models.ContextPath: root})
	}

	sort.Strings(files)

	l.logger.Debug(ctx, "Scanned directory", logging.Fields{
		"path":      root,
		"files":     len(files),
		"recursive": opts.Recursive,
	})
	return files, nil
}

// MoveFile moves a file below the root without overwriting
func (l *Local) MoveFile(ctx context.Context, sourcePath, destRelativePath string) (string, error) {
	return l.transfer(ctx, opMove, sourcePath, destRelativePath)
}

// CopyFile copies a file below the root without overwriting
func (l *Local) CopyFile(ctx context.Context, sourcePath, destRelativePath string) (string, error) {
	return l.transfer(ctx, opCopy, sourcePath, destRelativePath)
}

// RenameFile renames sourcePath inside its own directory. An existing file
// named newName is kept and the renamed file gets a " (N)" counter.
func (l *Local) RenameFile(ctx context.Context, sourcePath, newName string) (string, error) {
	source, err := filepath.Abs(sourcePath)
	if err != nil {
		source = filepath.Clean(sourcePath)
	}
	target := filepath.Join(filepath.Dir(source), newName)

	final, err := l.rename(ctx, source, newName, target)
	if err != nil {
		l.failed.Add(1)
		l.logger.Error(ctx, "Failed to rename file", err, logging.Fields{
			"source": source,
			"target": target,
		})
		return "", models.NewFileOperationError("rename file", source, target, err)
	}
	if final == source {
		return final, nil
	}

	l.moved.Add(1)
	fields := logging.Fields{"source": source, "target": final}
	if final != target {
		fields["renamed_from"] = target
	}
	l.logger.Info(ctx, "Renamed file", fields)
	return final, nil
}

func (l *Local) rename(ctx context.Context, source, newName, target string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if newName == "" || newName == "." || newName == ".." || filepath.Base(newName) != newName {
		return "", fmt.Errorf("invalid file name %q", newName)
	}

	info, err := os.Stat(source)
	if err != nil {
		return "", fmt.Errorf("source unavailable: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("source is a directory")
	}
	if target == source {
		return source, nil
	}

	return placeNumbered(target, func(candidate string) error {
		return l.moveExclusive(ctx, source, candidate, info)
	})
}

// Exists checks if a file or directory exists
func (l *Local) Exists(ctx context.Context, path string) (bool, error) {
	fullPath := l.resolve(path)

	_, err := os.Stat(fullPath)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, models.NewAppError(models.CategoryFileOperation, "check existence", "", err,
		map[string]string{models.ContextPath: fullPath})
}

// Stat returns file metadata
func (l *Local) Stat(ctx context.Context, path string) (*FileInfo, error) {
	fullPath := l.resolve(path)

	info, err := os.Stat(fullPath)
	if err != nil {
		return nil, models.NewAppError(models.CategoryFileOperation, "stat file", "", err,
			map[string]string{models.ContextPath: fullPath})
	}

	return &FileInfo{
		Path:        fullPath,
		Size:        info.Size(),
		ModTime:     info.ModTime(),
		IsDir:       info.IsDir(),
		Permissions: uint32(info.Mode().Perm()),
	}, nil
}

// Counters returns the cumulative operation counters
func (l *Local) Counters() models.OperationCounters {
	return models.OperationCounters{
		Moved:  l.moved.Load(),
		Copied: l.copied.Load(),
		Failed: l.failed.Load(),
	}
}

// ResetCounters zeroes the operation counters
func (l *Local) ResetCounters() {
	l.moved.Store(0)
	l.copied.Store(0)
	l.failed.Store(0)
}

// Close releases resources (no-op for local filesystem)
func (l *Local) Close() error {
	return nil
}

type opKind string

const (
	opMove opKind = "move"
	opCopy opKind = "copy"
)

// transfer performs a move or copy and keeps the counters and logs in step
// with the outcome
func (l *Local) transfer(ctx context.Context, kind opKind, sourcePath, destRelativePath string) (string, error) {
	target := l.resolve(destRelativePath)

	final, err := l.place(ctx, kind, sourcePath, target)
	if err != nil {
		l.failed.Add(1)
		appErr := models.NewFileOperationError(string(kind)+" file", sourcePath, target, err)
		l.logger.Error(ctx, fmt.Sprintf("Failed to %s file", kind), err, logging.Fields{
			"source": sourcePath,
			"target": target,
		})
		return "", appErr
	}

	if kind == opMove {
		l.moved.Add(1)
	} else {
		l.copied.Add(1)
	}

	fields := logging.Fields{"source": sourcePath, "target": final}
	if final != target {
		fields["renamed_from"] = target
	}
	if kind == opMove {
		l.logger.Info(ctx, "Moved file", fields)
	} else {
		l.logger.Info(ctx, "Copied file", fields)
	}

	return final, nil
}

func (l *Local) place(ctx context.Context, kind opKind, sourcePath, target string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	info, err := os.Stat(sourcePath)
	if err != nil {
		return "", fmt.Errorf("source unavailable: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("source is a directory")
	}

	// A file already at its destination is left untouched
	if abs, err := filepath.Abs(sourcePath); err == nil && abs == target {
		return target, nil
	}

	if err := l.EnsureDirectoryExists(ctx, filepath.Dir(target)); err != nil {
		return "", err
	}

	// A hard link to a symlink copies the link text, which breaks
	// relative links, so moved symlinks are recreated instead
	linkInfo, err := os.Lstat(sourcePath)
	if err != nil {
		return "", fmt.Errorf("source unavailable: %w", err)
	}
	symlink := linkInfo.Mode()&os.ModeSymlink != 0

	return placeWithoutOverwrite(target, l.now, func(candidate string) error {
		if kind == opMove && symlink {
			return moveSymlink(sourcePath, candidate)
		}
		if kind == opMove {
			return l.moveExclusive(ctx, sourcePath, candidate, info)
		}
		return l.copyExclusive(ctx, sourcePath, candidate, info)
	})
}

// resolve turns a path relative to the root into an absolute path.
// Absolute paths are returned cleaned.
func (l *Local) resolve(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(l.rootPath, path)
}

func compilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		if p == "" {
			continue
		}
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", p, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

func matchesAny(patterns []*regexp.Regexp, name, rel string) bool {
	for _, re := range patterns {
		if re.MatchString(name) || re.MatchString(rel) {
			return true
		}
	}
	return false
}
