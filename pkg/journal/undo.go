package journal

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/sdejongh/musicsort/pkg/logging"
	"github.com/sdejongh/musicsort/pkg/models"
	"github.com/sdejongh/musicsort/pkg/storage"
)

// UndoReport summarizes an undo
type UndoReport struct {
	RunID string
	// Restored counts moved files put back at their source
	Restored int
	// Removed counts copies deleted from the target
	Removed int
	// Missing counts targets that no longer exist
	Missing int
	Failed  int
	Errors  []error
}

// Undo reverses a run recorded in j. Moved files go back to their source
// path without overwriting (a timestamp suffix is added on collision);
// copies are deleted. Directories left empty under the target root are
// pruned. With dryRun nothing is changed.
func Undo(ctx context.Context, backend storage.Backend, j *Journal, dryRun bool, logger logging.Logger) *UndoReport {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	logger = logger.WithFields(logging.Fields{"component": "undo", "run_id": j.RunID})

	report := &UndoReport{RunID: j.RunID}
	dirs := make(map[string]bool)

	// Last placed first, so nested renames unwind in order
	for i := len(j.Entries) - 1; i >= 0; i-- {
		e := j.Entries[i]

		exists, err := backend.Exists(ctx, e.Target)
		if err != nil {
			report.fail(err)
			continue
		}
		if !exists {
			report.Missing++
			logger.Warn(ctx, "Sorted file no longer exists", logging.Fields{"target": e.Target})
			continue
		}

		if dryRun {
			logger.Info(ctx, "Would restore file", logging.Fields{"source": e.Source, "target": e.Target})
			if j.CopyMode {
				report.Removed++
			} else {
				report.Restored++
			}
			continue
		}

		if j.CopyMode {
			if err := os.Remove(e.Target); err != nil {
				report.fail(models.NewAppError(models.CategoryFileOperation, "remove copy", "", err,
					map[string]string{models.ContextTarget: e.Target}))
				continue
			}
			report.Removed++
		} else {
			if _, err := backend.MoveFile(ctx, e.Target, e.Source); err != nil {
				report.fail(err)
				continue
			}
			report.Restored++
		}
		dirs[filepath.Dir(e.Target)] = true
	}

	if !dryRun {
		for dir := range dirs {
			pruneEmpty(dir, j.TargetRoot)
		}
	}

	logger.Info(ctx, "Undo completed", logging.Fields{
		"restored": report.Restored,
		"removed":  report.Removed,
		"missing":  report.Missing,
		"failed":   report.Failed,
	})
	return report
}

func (r *UndoReport) fail(err error) {
	r.Failed++
	r.Errors = append(r.Errors, err)
}

// pruneEmpty removes dir and its empty parents, stopping at root
func pruneEmpty(dir, root string) {
	root = filepath.Clean(root)
	for {
		dir = filepath.Clean(dir)
		if dir == root || !strings.HasPrefix(dir, root+string(filepath.Separator)) {
			return
		}
		// Remove fails on non-empty directories
		if err := os.Remove(dir); err != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}
