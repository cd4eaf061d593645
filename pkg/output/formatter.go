package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/sdejongh/musicsort/pkg/models"
)

// RunInfo describes a sort run before its first file is processed
type RunInfo struct {
	TotalFiles int
	TotalBytes int64
	TargetRoot string
	Spec       models.SortSpecification
	DryRun     bool
}

// Formatter defines the interface for output formatting
// Implementations include human-readable, JSON and progress bar formatters
type Formatter interface {
	// Start initializes the formatter for a new sort run
	Start(writer io.Writer, info RunInfo) error

	// Progress reports a snapshot after each file outcome
	Progress(snapshot models.ProgressSnapshot) error

	// Complete finalizes output and displays summary
	Complete(summary *models.RunSummary) error

	// Error reports an error that aborted the run
	Error(err error) error

	// Name returns the formatter name
	Name() string
}

// Formats lists the accepted output format names
var Formats = []string{"human", "json", "progress"}

// NewFormatter selects a formatter by name. The human format upgrades to a
// progress bar when progress is set and w is a terminal.
func NewFormatter(format string, progress bool, w io.Writer) (Formatter, error) {
	switch strings.ToLower(format) {
	case "", "human":
		if progress && IsTerminal(w) {
			return NewProgressFormatter(), nil
		}
		return NewHumanFormatter(), nil
	case "progress":
		return NewProgressFormatter(), nil
	case "json":
		return NewJSONFormatter(), nil
	}
	return nil, fmt.Errorf("unknown output format %q (valid: %s)", format, strings.Join(Formats, ", "))
}

// IsTerminal reports whether w is a file attached to a terminal
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// terminalWidth returns the width of w, or def when it is not a terminal
func terminalWidth(w io.Writer, def int) int {
	f, ok := w.(*os.File)
	if !ok {
		return def
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return def
	}
	return width
}

// describe renders the layout of a run for headers
func describe(spec models.SortSpecification) string {
	mode := "move"
	if spec.CopyMode {
		mode = "copy"
	}
	if spec.Pattern == models.PatternCustom {
		return fmt.Sprintf("%s by %s %q", mode, spec.Pattern, spec.Template)
	}
	return fmt.Sprintf("%s by %s", mode, spec.Pattern)
}
