package sorter

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/sdejongh/musicsort/pkg/logging"
	"github.com/sdejongh/musicsort/pkg/models"
	"github.com/sdejongh/musicsort/pkg/naming"
	"github.com/sdejongh/musicsort/pkg/storage"
)

// DefaultRenamePattern is used when no rename template is configured
const DefaultRenamePattern = "{artist} - {title}"

// RenameResult records what happened to a single file during a rename
type RenameResult struct {
	Source string
	Target string
	// Skipped is set when the file already carries its rendered name
	Skipped bool
	Error   error
}

// RenameReport summarizes a rename run
type RenameReport struct {
	RunID   string
	DryRun  bool
	Renamed int
	Skipped int
	Failed  int
	Results []RenameResult
}

// Status derives the overall status from the counts
func (r *RenameReport) Status() models.Status {
	switch {
	case r.Failed == 0:
		return models.StatusSuccess
	case r.Renamed+r.Skipped == 0:
		return models.StatusFailed
	default:
		return models.StatusPartial
	}
}

// RenameValues returns the placeholder values used by renames. Missing
// tags render as their "Unknown" placeholders and a missing track as 00.
func RenameValues(file models.MediaFile) naming.Values {
	values := TemplateValues(file)
	m := file.Metadata

	values["artist"] = models.StringOr(m.Artist, UnknownArtist)
	values["albumArtist"] = models.StringOr(m.AlbumArtist, models.StringOr(m.Artist, UnknownArtist))
	values["album"] = models.StringOr(m.Album, UnknownAlbum)
	values["genre"] = models.StringOr(m.Genre, UnknownGenre)
	if m.Year == nil {
		values["year"] = UnknownYear
	}
	if m.TrackNumber == nil {
		values["track"] = "00"
	}
	return values
}

// RenameTarget renders the new base name of file, keeping its extension
func RenameTarget(file models.MediaFile, template string) string {
	ext := filepath.Ext(file.Basename())
	return naming.SanitizeFilename(naming.Format(template, RenameValues(file)), ext)
}

// RenameFiles renames every file in place from template. Files that
// already carry their rendered name are skipped; name clashes get a
// " (N)" counter. Files are processed one at a time so the counters are
// assigned in input order.
func (e *Engine) RenameFiles(ctx context.Context, files []models.MediaFile, template string) (*RenameReport, error) {
	report := &RenameReport{
		RunID:   uuid.New().String(),
		DryRun:  e.dryRun,
		Results: make([]RenameResult, len(files)),
	}
	logger := e.logger.WithFields(logging.Fields{"run_id": report.RunID, "op": "rename"})

	if strings.TrimSpace(template) == "" {
		err := models.NewAppError(models.CategoryFileOperation, "validate rename pattern",
			"rename pattern must not be empty", nil, nil)
		logger.Error(ctx, "Invalid rename pattern", err, nil)
		return report, err
	}

	e.mu.Lock()
	e.state = models.StateRunning
	e.progress = models.ProgressSnapshot{Total: len(files)}
	e.mu.Unlock()
	e.backend.ResetCounters()

	logger.Info(ctx, "Starting rename", logging.Fields{
		"files":   len(files),
		"pattern": template,
		"dry_run": e.dryRun,
	})

	// claimed holds the paths planned during a dry run
	claimed := make(map[string]bool)

	for i, file := range files {
		result := &report.Results[i]
		result.Source = file.Path

		if err := ctx.Err(); err != nil {
			result.Error = err
			e.recordRename(ctx, logger, report, result)
			continue
		}

		name := RenameTarget(file, template)
		if name == file.Basename() {
			result.Target = file.Path
			result.Skipped = true
			e.recordRename(ctx, logger, report, result)
			continue
		}

		if e.dryRun {
			result.Target, result.Error = e.planRename(ctx, file.Path, name, claimed)
		} else {
			result.Target, result.Error = e.backend.RenameFile(ctx, file.Path, name)
		}
		e.recordRename(ctx, logger, report, result)
	}

	e.mu.Lock()
	e.state = models.StateCompleted
	e.mu.Unlock()

	logger.Info(ctx, "Rename completed", logging.Fields{
		"renamed": report.Renamed,
		"skipped": report.Skipped,
		"failed":  report.Failed,
	})
	return report, nil
}

// planRename picks the name a rename would use without touching the file
func (e *Engine) planRename(ctx context.Context, source, name string, claimed map[string]bool) (string, error) {
	target := filepath.Join(filepath.Dir(source), name)
	candidate := target
	for n := 1; ; n++ {
		exists, err := e.backend.Exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists && !claimed[candidate] {
			claimed[candidate] = true
			return candidate, nil
		}
		if n > 9999 {
			return "", models.NewFileOperationError("rename file", source, target,
				fmt.Errorf("no free name after %d attempts", n))
		}
		candidate = storage.NumberedName(target, n)
	}
}

func (e *Engine) recordRename(ctx context.Context, logger logging.Logger, report *RenameReport, result *RenameResult) {
	e.mu.Lock()
	e.progress.Processed++
	e.progress.CurrentFile = result.Source
	switch {
	case result.Error != nil:
		report.Failed++
		e.progress.Failed++
	case result.Skipped:
		report.Skipped++
		e.progress.Succeeded++
	default:
		report.Renamed++
		e.progress.Succeeded++
	}
	snapshot := e.progress
	e.mu.Unlock()

	switch {
	case result.Error != nil:
		logger.Error(ctx, "Failed to rename file", result.Error, logging.Fields{"source": result.Source})
	case result.Skipped:
		logger.Debug(ctx, "Name already correct", logging.Fields{"source": result.Source})
	case e.dryRun:
		logger.Info(ctx, "Would rename file", logging.Fields{"source": result.Source, "target": result.Target})
	}

	if e.observer != nil {
		e.observer(snapshot)
	}
}
