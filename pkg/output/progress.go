package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"

	"github.com/sdejongh/musicsort/pkg/models"
)

const (
	defaultTermWidth = 120
	// maxFileLabel bounds the current file name shown next to the bar
	maxFileLabel = 40
)

// progressTemplate renders "<counters> <bar> <percent> <elapsed> <file>"
const progressTemplate = `{{counters . }} {{bar . "[" "=" ">" " " "]"}} {{percent . }} {{etime . }} {{string . "file"}}`

// getUpdateInterval returns the progress refresh interval based on OS.
// Windows terminals have higher latency with ANSI sequences.
func getUpdateInterval() time.Duration {
	if runtime.GOOS == "windows" {
		return 300 * time.Millisecond
	}
	return 100 * time.Millisecond
}

// ProgressFormatter formats output with a progress bar
type ProgressFormatter struct {
	writer io.Writer
	info   RunInfo

	mu        sync.Mutex
	bar       *pb.ProgressBar
	termWidth int
}

// NewProgressFormatter creates a new progress bar formatter
func NewProgressFormatter() *ProgressFormatter {
	return &ProgressFormatter{}
}

// Start initializes the formatter and draws an empty bar
func (f *ProgressFormatter) Start(writer io.Writer, info RunInfo) error {
	if writer == nil {
		writer = os.Stdout
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	f.writer = writer
	f.info = info
	f.termWidth = terminalWidth(writer, defaultTermWidth)

	prefix := "Sorting"
	if info.DryRun {
		prefix = "Dry run:"
	}
	fmt.Fprintf(writer, "%s %d files, %s into %s\n",
		prefix, info.TotalFiles, describe(info.Spec), info.TargetRoot)

	f.bar = pb.New(info.TotalFiles)
	f.bar.SetTemplateString(progressTemplate)
	f.bar.SetWriter(writer)
	f.bar.SetWidth(f.termWidth)
	f.bar.SetRefreshRate(getUpdateInterval())
	f.bar.Set(pb.Terminal, IsTerminal(writer))
	f.bar.Set("file", "")
	f.bar.Start()
	return nil
}

// Progress advances the bar to the snapshot
func (f *ProgressFormatter) Progress(snapshot models.ProgressSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.bar == nil {
		return nil
	}
	f.bar.SetTotal(int64(snapshot.Total))
	f.bar.SetCurrent(int64(snapshot.Processed))
	f.bar.Set("file", truncateLabel(filepath.Base(snapshot.CurrentFile), maxFileLabel))
	return nil
}

// Complete stops the bar and displays the summary
func (f *ProgressFormatter) Complete(summary *models.RunSummary) error {
	f.stop()
	if f.writer == nil {
		f.writer = io.Discard
	}
	writeSummary(f.writer, summary)
	return nil
}

// Error stops the bar and reports an error
func (f *ProgressFormatter) Error(err error) error {
	f.stop()
	if f.writer != nil {
		fmt.Fprintf(f.writer, "Error: %v\n", err)
	}
	return nil
}

// Name returns the formatter name
func (f *ProgressFormatter) Name() string {
	return "progress"
}

func (f *ProgressFormatter) stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.bar != nil {
		f.bar.Set("file", "")
		f.bar.Finish()
		f.bar = nil
	}
}

// truncateLabel shortens s to max runes, keeping its end
func truncateLabel(s string, max int) string {
	r := []rune(s)
	if len(r) <= max || max < 4 {
		return s
	}
	return "..." + string(r[len(r)-max+3:])
}
