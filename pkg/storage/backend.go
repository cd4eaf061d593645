package storage

import (
	"context"
	"time"

	"github.com/sdejongh/musicsort/pkg/models"
)

// FileInfo represents metadata about a file
type FileInfo struct {
	Path        string
	Size        int64
	ModTime     time.Time
	IsDir       bool
	Permissions uint32
}

// ScanOptions controls ScanDirectory
type ScanOptions struct {
	// Recursive descends into subdirectories
	Recursive bool

	// IgnorePatterns are regular expressions matched against each entry's
	// name and its slash-separated path relative to the scan root.
	// A matching directory prunes its whole subtree.
	IgnorePatterns []string

	// IncludeHidden includes dot-prefixed files and directories
	IncludeHidden bool
}

// DefaultScanOptions returns recursive scanning without hidden entries
func DefaultScanOptions() ScanOptions {
	return ScanOptions{Recursive: true}
}

// Backend defines the filesystem operations the sorter relies on.
// Every method returns a *models.AppError of category FileOperation on
// failure, never a sentinel value.
type Backend interface {
	// Root returns the absolute target root that relative destinations
	// are resolved against
	Root() string

	// EnsureDirectoryExists creates dir and its parents if needed
	EnsureDirectoryExists(ctx context.Context, dir string) error

	// ScanDirectory returns the absolute paths of the files under dir
	ScanDirectory(ctx context.Context, dir string, opts ScanOptions) ([]string, error)

	// MoveFile moves sourcePath to Root()/destRelativePath without
	// overwriting, returning the absolute path actually written
	MoveFile(ctx context.Context, sourcePath, destRelativePath string) (string, error)

	// CopyFile copies sourcePath to Root()/destRelativePath without
	// overwriting, returning the absolute path actually written
	CopyFile(ctx context.Context, sourcePath, destRelativePath string) (string, error)

	// RenameFile renames sourcePath inside its directory without
	// overwriting, returning the path actually written
	RenameFile(ctx context.Context, sourcePath, newName string) (string, error)

	// Exists checks if a file or directory exists
	Exists(ctx context.Context, path string) (bool, error)

	// Stat returns file metadata
	Stat(ctx context.Context, path string) (*FileInfo, error)

	// Counters returns the cumulative operation counters
	Counters() models.OperationCounters

	// ResetCounters zeroes the operation counters
	ResetCounters()

	// Close releases any resources held by the backend
	Close() error
}
