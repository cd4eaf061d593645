package sorter

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sdejongh/musicsort/pkg/logging"
	"github.com/sdejongh/musicsort/pkg/models"
	"github.com/sdejongh/musicsort/pkg/storage"
)

// Observer receives a progress snapshot after each file outcome.
// It is called on the goroutine running SortFiles.
type Observer func(models.ProgressSnapshot)

// Config holds optional engine settings
type Config struct {
	// BatchSize bounds concurrent filesystem operations
	BatchSize int

	// DryRun computes destinations without touching the filesystem
	DryRun bool

	Logger logging.Logger
}

// Engine orchestrates a sort run over a storage backend.
// An engine must not run several sorts concurrently.
type Engine struct {
	backend   storage.Backend
	logger    logging.Logger
	batchSize int
	dryRun    bool
	observer  Observer

	mu       sync.Mutex
	state    models.RunState
	progress models.ProgressSnapshot
}

// NewEngine creates a new sort engine
func NewEngine(backend storage.Backend, config Config) *Engine {
	logger := config.Logger
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Engine{
		backend:   backend,
		logger:    logger.WithFields(logging.Fields{"component": "sorter"}),
		batchSize: config.BatchSize,
		dryRun:    config.DryRun,
		state:     models.StateIdle,
	}
}

// SetObserver registers the progress observer (nil disables it)
func (e *Engine) SetObserver(fn Observer) {
	e.observer = fn
}

// State returns the current run state
func (e *Engine) State() models.RunState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Progress returns a copy of the current progress
func (e *Engine) Progress() models.ProgressSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.progress
}

// SortFiles moves or copies every file to its computed destination.
// Per-file failures are recorded in the summary and never abort the run.
// An invalid specification fails the run before any file is touched and
// is returned as an error alongside the failed summary.
func (e *Engine) SortFiles(ctx context.Context, files []models.MediaFile, spec models.SortSpecification) (*models.RunSummary, error) {
	summary := &models.RunSummary{
		RunID:      uuid.New().String(),
		TargetRoot: e.backend.Root(),
		Spec:       spec,
		DryRun:     e.dryRun,
		StartTime:  time.Now(),
		State:      models.StateRunning,
		Results:    make([]models.FileResult, len(files)),
	}
	logger := e.logger.WithFields(logging.Fields{"run_id": summary.RunID})

	e.mu.Lock()
	e.state = models.StateRunning
	e.progress = models.ProgressSnapshot{Total: len(files)}
	e.mu.Unlock()
	e.backend.ResetCounters()

	if err := spec.Validate(); err != nil {
		logger.Error(ctx, "Invalid sort specification", err, logging.Fields{
			"pattern": string(spec.Pattern),
		})
		e.finish(summary, models.StateFailed)
		return summary, err
	}

	logger.Info(ctx, "Starting sort", logging.Fields{
		"files":   len(files),
		"pattern": string(spec.Pattern),
		"copy":    spec.CopyMode,
		"target":  summary.TargetRoot,
		"dry_run": e.dryRun,
	})

	// indexes maps queue sequence numbers to result slots
	var indexes []int
	queue := storage.NewQueue(e.batchSize, func(o storage.Outcome) {
		e.record(ctx, logger, summary, indexes[o.Seq], o.Err)
	})

	for i, file := range files {
		summary.Results[i].Source = file.Path

		dest, err := DestinationFor(file, spec)
		if err != nil {
			e.record(ctx, logger, summary, i, err)
			continue
		}
		summary.Results[i].Destination = dest

		if e.dryRun {
			summary.Results[i].Target = filepath.Join(summary.TargetRoot, dest)
			e.record(ctx, logger, summary, i, nil)
			continue
		}

		result := &summary.Results[i]
		source := file.Path
		copyMode := spec.CopyMode
		indexes = append(indexes, i)
		queue.Enqueue(ctx, func(ctx context.Context) error {
			var target string
			var err error
			if copyMode {
				target, err = e.backend.CopyFile(ctx, source, dest)
			} else {
				target, err = e.backend.MoveFile(ctx, source, dest)
			}
			result.Target = target
			return err
		})
	}
	queue.Flush(ctx)

	e.finish(summary, models.StateCompleted)

	logger.Info(ctx, "Sort completed", logging.Fields{
		"processed": summary.Processed,
		"succeeded": summary.Succeeded,
		"failed":    summary.Failed,
		"duration":  summary.Duration.String(),
	})
	return summary, nil
}

// record applies one file outcome to the summary and progress, then
// notifies the observer
func (e *Engine) record(ctx context.Context, logger logging.Logger, summary *models.RunSummary, index int, err error) {
	result := &summary.Results[index]
	summary.Processed++

	e.mu.Lock()
	e.progress.Processed++
	e.progress.CurrentFile = result.Source
	if err != nil {
		result.Error = err
		summary.Failed++
		e.progress.Failed++
	} else {
		summary.Succeeded++
		e.progress.Succeeded++
	}
	snapshot := e.progress
	e.mu.Unlock()

	if err != nil {
		logger.Error(ctx, "Failed to sort file", err, logging.Fields{
			"source":      result.Source,
			"destination": result.Destination,
		})
	} else {
		logger.Debug(ctx, "Sorted file", logging.Fields{
			"source": result.Source,
			"target": result.Target,
		})
	}

	if e.observer != nil {
		e.observer(snapshot)
	}
}

func (e *Engine) finish(summary *models.RunSummary, state models.RunState) {
	summary.EndTime = time.Now()
	summary.Duration = summary.EndTime.Sub(summary.StartTime)
	summary.State = state
	summary.Counters = e.backend.Counters()

	e.mu.Lock()
	e.state = state
	e.mu.Unlock()
}
