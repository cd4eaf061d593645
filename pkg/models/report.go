package models

import (
	"time"
)

// RunState is the lifecycle state of a sort run
type RunState string

const (
	// StateIdle indicates no run has started
	StateIdle RunState = "idle"
	// StateRunning indicates files are being processed
	StateRunning RunState = "running"
	// StateCompleted indicates every file was attempted
	StateCompleted RunState = "completed"
	// StateFailed indicates the run aborted before or during processing
	StateFailed RunState = "failed"
)

// RunSummary represents the results of a sort run
type RunSummary struct {
	// Run details
	RunID      string
	TargetRoot string
	Spec       SortSpecification
	DryRun     bool

	// Timing
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	// State is completed even when individual files failed
	State RunState

	// Authoritative counts
	Processed int
	Succeeded int
	Failed    int

	// Counters is the filesystem layer's view of the run
	Counters OperationCounters

	// Results holds one entry per input file, in input order
	Results []FileResult
}

// FileResult records what happened to a single file
type FileResult struct {
	Source string
	// Destination is the computed path relative to the target root
	Destination string
	// Target is the absolute path actually written (may carry a
	// collision suffix)
	Target string
	Error  error
}

// Status summarizes a finished run for exit codes and reports
type Status string

const (
	// StatusSuccess indicates all files were sorted
	StatusSuccess Status = "success"
	// StatusPartial indicates some files failed
	StatusPartial Status = "partial"
	// StatusFailed indicates the run failed or every file failed
	StatusFailed Status = "failed"
)

// Status derives the overall status from the counts
func (r *RunSummary) Status() Status {
	switch {
	case r.State == StateFailed:
		return StatusFailed
	case r.Failed == 0:
		return StatusSuccess
	case r.Succeeded == 0:
		return StatusFailed
	default:
		return StatusPartial
	}
}

// Errors returns the per-file results that failed
func (r *RunSummary) Errors() []FileResult {
	var errs []FileResult
	for _, res := range r.Results {
		if res.Error != nil {
			errs = append(errs, res)
		}
	}
	return errs
}

// ExitCode returns the appropriate exit code for the status
func (s Status) ExitCode() int {
	switch s {
	case StatusSuccess:
		return 0
	case StatusPartial:
		return 1
	case StatusFailed:
		return 2
	default:
		return 2
	}
}
