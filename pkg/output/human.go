package output

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/sdejongh/musicsort/pkg/models"
)

// HumanFormatter formats output in human-readable format
type HumanFormatter struct {
	writer     io.Writer
	info       RunInfo
	lastFailed int
}

// NewHumanFormatter creates a new human-readable formatter
func NewHumanFormatter() *HumanFormatter {
	return &HumanFormatter{}
}

// Start initializes the formatter
func (f *HumanFormatter) Start(writer io.Writer, info RunInfo) error {
	if writer == nil {
		writer = io.Discard
	}
	f.writer = writer
	f.info = info
	f.lastFailed = 0

	prefix := "Sorting"
	if info.DryRun {
		prefix = "Dry run:"
	}
	fmt.Fprintf(writer, "%s %d files (%s), %s into %s\n",
		prefix, info.TotalFiles, humanize.IBytes(uint64(info.TotalBytes)),
		describe(info.Spec), info.TargetRoot)
	return nil
}

// Progress prints one line per processed file
func (f *HumanFormatter) Progress(snapshot models.ProgressSnapshot) error {
	if f.writer == nil {
		return nil
	}
	mark := "✓"
	if snapshot.Failed > f.lastFailed {
		mark = "✗"
		f.lastFailed = snapshot.Failed
	}
	fmt.Fprintf(f.writer, "[%d/%d] %s %s\n",
		snapshot.Processed, snapshot.Total, mark, filepath.Base(snapshot.CurrentFile))
	return nil
}

// Complete finalizes output and displays summary
func (f *HumanFormatter) Complete(summary *models.RunSummary) error {
	if f.writer == nil {
		f.writer = io.Discard
	}
	writeSummary(f.writer, summary)
	return nil
}

// Error reports an error
func (f *HumanFormatter) Error(err error) error {
	if f.writer != nil {
		fmt.Fprintf(f.writer, "Error: %v\n", err)
	}
	return nil
}

// Name returns the formatter name
func (f *HumanFormatter) Name() string {
	return "human"
}

// writeSummary prints the end-of-run block shared by the text formatters
func writeSummary(w io.Writer, summary *models.RunSummary) {
	fmt.Fprintf(w, "\n")
	if summary.DryRun {
		fmt.Fprintf(w, "Dry run completed in %s\n", summary.Duration.Round(time.Millisecond))
	} else {
		fmt.Fprintf(w, "Sort completed in %s\n", summary.Duration.Round(time.Millisecond))
	}
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Summary:\n")
	fmt.Fprintf(w, "  Run ID:       %s\n", summary.RunID)
	fmt.Fprintf(w, "  Target:       %s\n", summary.TargetRoot)
	fmt.Fprintf(w, "  Layout:       %s\n", describe(summary.Spec))
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "  Files:\n")
	fmt.Fprintf(w, "    Processed:  %d\n", summary.Processed)
	fmt.Fprintf(w, "    Succeeded:  %d\n", summary.Succeeded)
	fmt.Fprintf(w, "    Failed:     %d\n", summary.Failed)
	if !summary.DryRun {
		fmt.Fprintf(w, "\n")
		fmt.Fprintf(w, "  Operations:\n")
		fmt.Fprintf(w, "    Moved:      %d\n", summary.Counters.Moved)
		fmt.Fprintf(w, "    Copied:     %d\n", summary.Counters.Copied)
		fmt.Fprintf(w, "    Failed:     %d\n", summary.Counters.Failed)
	}
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Status: %s\n", summary.Status())

	if errs := summary.Errors(); len(errs) > 0 {
		fmt.Fprintf(w, "\nErrors:\n")
		for _, res := range errs {
			fmt.Fprintf(w, "  %s: %v\n", res.Source, res.Error)
		}
	}
}
