package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/sdejongh/musicsort/pkg/models"
)

// JSONFormatter formats output as JSON for automation and scripting
type JSONFormatter struct {
	writer    io.Writer
	info      RunInfo
	startTime time.Time
	events    []JSONEvent
}

// JSONEvent represents a single event in the JSON output stream
type JSONEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Type      string    `json:"type"`
	Data      any       `json:"data,omitempty"`
}

// JSONStartData represents the data for a start event
type JSONStartData struct {
	TotalFiles int    `json:"total_files"`
	TotalBytes int64  `json:"total_bytes"`
	TargetRoot string `json:"target_root"`
	Pattern    string `json:"pattern"`
	CopyMode   bool   `json:"copy"`
	DryRun     bool   `json:"dry_run"`
}

// JSONReportData represents the final report data
type JSONReportData struct {
	RunID      string                   `json:"run_id"`
	Status     string                   `json:"status"`
	State      string                   `json:"state"`
	DryRun     bool                     `json:"dry_run"`
	TargetRoot string                   `json:"target_root"`
	Pattern    string                   `json:"pattern"`
	Template   string                   `json:"template,omitempty"`
	CopyMode   bool                     `json:"copy"`
	Duration   string                   `json:"duration"`
	DurationMs int64                    `json:"duration_ms"`
	Stats      JSONStatsData            `json:"stats"`
	Counters   models.OperationCounters `json:"operations"`
	Files      []JSONFileData           `json:"files,omitempty"`
	Errors     []JSONErrorData          `json:"errors,omitempty"`
}

// JSONStatsData holds the authoritative per-file counts
type JSONStatsData struct {
	Processed int `json:"processed"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// JSONFileData represents the outcome for one file
type JSONFileData struct {
	Source      string `json:"source"`
	Destination string `json:"destination,omitempty"`
	Target      string `json:"target,omitempty"`
	Error       string `json:"error,omitempty"`
}

// JSONErrorData represents a per-file error
type JSONErrorData struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{
		events: make([]JSONEvent, 0),
	}
}

// Start initializes the formatter
func (f *JSONFormatter) Start(writer io.Writer, info RunInfo) error {
	if writer == nil {
		writer = os.Stdout
	}
	f.writer = writer
	f.info = info
	f.startTime = time.Now()

	f.events = append(f.events, JSONEvent{
		Timestamp: f.startTime,
		Type:      "start",
		Data: JSONStartData{
			TotalFiles: info.TotalFiles,
			TotalBytes: info.TotalBytes,
			TargetRoot: info.TargetRoot,
			Pattern:    string(info.Spec.Pattern),
			CopyMode:   info.Spec.CopyMode,
			DryRun:     info.DryRun,
		},
	})
	return nil
}

// Progress reports progress during the run.
// Nothing is written until Complete so the output stays one JSON document.
func (f *JSONFormatter) Progress(snapshot models.ProgressSnapshot) error {
	return nil
}

// Complete finalizes output and writes the report as JSON
func (f *JSONFormatter) Complete(summary *models.RunSummary) error {
	if f.writer == nil {
		f.writer = io.Discard
	}
	reportData := NewJSONReport(summary)

	f.events = append(f.events, JSONEvent{
		Timestamp: time.Now(),
		Type:      "complete",
		Data:      reportData,
	})

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(reportData)
}

// Error reports an error
func (f *JSONFormatter) Error(err error) error {
	f.events = append(f.events, JSONEvent{
		Timestamp: time.Now(),
		Type:      "error",
		Data: map[string]string{
			"error": err.Error(),
		},
	})
	if f.writer == nil {
		return nil
	}
	return json.NewEncoder(f.writer).Encode(map[string]string{
		"status": string(models.StatusFailed),
		"error":  err.Error(),
	})
}

// Events returns the events recorded so far
func (f *JSONFormatter) Events() []JSONEvent {
	return f.events
}

// Name returns the formatter name
func (f *JSONFormatter) Name() string {
	return "json"
}

// NewJSONReport converts a run summary to its JSON shape
func NewJSONReport(summary *models.RunSummary) JSONReportData {
	data := JSONReportData{
		RunID:      summary.RunID,
		Status:     string(summary.Status()),
		State:      string(summary.State),
		DryRun:     summary.DryRun,
		TargetRoot: summary.TargetRoot,
		Pattern:    string(summary.Spec.Pattern),
		Template:   summary.Spec.Template,
		CopyMode:   summary.Spec.CopyMode,
		Duration:   summary.Duration.Round(time.Millisecond).String(),
		DurationMs: summary.Duration.Milliseconds(),
		Stats: JSONStatsData{
			Processed: summary.Processed,
			Succeeded: summary.Succeeded,
			Failed:    summary.Failed,
		},
		Counters: summary.Counters,
	}
	for _, res := range summary.Results {
		file := JSONFileData{
			Source:      res.Source,
			Destination: res.Destination,
			Target:      res.Target,
		}
		if res.Error != nil {
			file.Error = res.Error.Error()
			data.Errors = append(data.Errors, JSONErrorData{
				Path:  res.Source,
				Error: res.Error.Error(),
			})
		}
		data.Files = append(data.Files, file)
	}
	return data
}
