package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sdejongh/musicsort/pkg/ratelimit"
)

// maxPlacementAttempts bounds retries when concurrent writers keep
// claiming the same disambiguated name
const maxPlacementAttempts = 16

// placeWithoutOverwrite calls create with the target path, then with
// timestamp-suffixed variants while create reports fs.ErrExist. create
// must atomically fail with fs.ErrExist when the candidate already exists.
func placeWithoutOverwrite(target string, now func() time.Time, create func(candidate string) error) (string, error) {
	candidate := target
	for attempt := 0; attempt < maxPlacementAttempts; attempt++ {
		err := create(candidate)
		if err == nil {
			return candidate, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", err
		}
		candidate = timestampedName(target, now())
	}
	return "", fmt.Errorf("no free name for %s after %d attempts", target, maxPlacementAttempts)
}

// maxNumberedNames bounds the " (N)" counter used by renames
const maxNumberedNames = 9999

// placeNumbered calls create with the target path, then with " (N)"
// variants while create reports fs.ErrExist.
func placeNumbered(target string, create func(candidate string) error) (string, error) {
	candidate := target
	for n := 1; n <= maxNumberedNames; n++ {
		err := create(candidate)
		if err == nil {
			return candidate, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", err
		}
		candidate = NumberedName(target, n)
	}
	return "", fmt.Errorf("no free name for %s after %d attempts", target, maxNumberedNames)
}

// NumberedName inserts " (n)" before the extension
func NumberedName(target string, n int) string {
	dir := filepath.Dir(target)
	base := filepath.Base(target)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, n, ext))
}

// timestampedName inserts _<nanoseconds> before the extension
func timestampedName(target string, t time.Time) string {
	dir := filepath.Dir(target)
	base := filepath.Base(target)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, t.UnixNano(), ext))
}

// copyExclusive copies src to dst, failing with fs.ErrExist if dst exists.
// Modification time and permissions are preserved.
func (l *Local) copyExclusive(ctx context.Context, src, dst string, info os.FileInfo) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			out.Close()
			os.Remove(dst)
		}
	}()

	reader := ratelimit.NewReader(ctx, in, l.limiter)
	buf := make([]byte, l.bufferSize)
	if _, err = io.CopyBuffer(out, reader, buf); err != nil {
		return err
	}
	if err = out.Close(); err != nil {
		return err
	}

	// Preserve metadata
	if err = os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return err
	}
	if err = os.Chmod(dst, info.Mode().Perm()); err != nil {
		return err
	}
	return nil
}

// moveExclusive moves src to dst, failing with fs.ErrExist if dst exists.
// A hard link claims the name atomically; filesystems without hard links
// fall back to rename, and cross-device moves to copy and delete.
func (l *Local) moveExclusive(ctx context.Context, src, dst string, info os.FileInfo) error {
	err := os.Link(src, dst)
	if err == nil {
		if rmErr := os.Remove(src); rmErr != nil {
			os.Remove(dst)
			return rmErr
		}
		return nil
	}
	if errors.Is(err, fs.ErrExist) {
		return err
	}

	if _, statErr := os.Lstat(dst); statErr == nil {
		return fs.ErrExist
	}
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	if err := l.copyExclusive(ctx, src, dst, info); err != nil {
		return err
	}
	if err := os.Remove(src); err != nil {
		os.Remove(dst)
		return err
	}
	return nil
}

// moveSymlink recreates the link src at dst pointing to the absolute
// location src resolves through, then removes src. os.Symlink fails with
// fs.ErrExist when dst is taken.
func moveSymlink(src, dst string) error {
	dest, err := os.Readlink(src)
	if err != nil {
		return err
	}
	if !filepath.IsAbs(dest) {
		dir, err := filepath.Abs(filepath.Dir(src))
		if err != nil {
			return err
		}
		dest = filepath.Join(dir, dest)
	}
	if err := os.Symlink(dest, dst); err != nil {
		return err
	}
	if err := os.Remove(src); err != nil {
		os.Remove(dst)
		return err
	}
	return nil
}
