package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sdejongh/musicsort/pkg/models"
)

// WriteReport writes the per-file report of a run to a file.
// Format can be "human" or "json". Nothing is written for an empty run.
func WriteReport(summary *models.RunSummary, path string, format string) error {
	if len(summary.Results) == 0 {
		return nil
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	switch format {
	case "json":
		err = writeReportJSON(summary, file)
	default:
		err = writeReportHuman(summary, file)
	}
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return file.Close()
}

func writeReportJSON(summary *models.RunSummary, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewJSONReport(summary))
}

func writeReportHuman(summary *models.RunSummary, w io.Writer) error {
	fmt.Fprintf(w, "musicsort run %s\n", summary.RunID)
	fmt.Fprintf(w, "Started:  %s\n", summary.StartTime.Format(time.RFC3339))
	fmt.Fprintf(w, "Target:   %s\n", summary.TargetRoot)
	fmt.Fprintf(w, "Layout:   %s\n", describe(summary.Spec))
	fmt.Fprintf(w, "Status:   %s (%d/%d succeeded)\n\n",
		summary.Status(), summary.Succeeded, summary.Processed)

	for _, res := range summary.Results {
		switch {
		case res.Error != nil:
			fmt.Fprintf(w, "FAILED  %s\n        %v\n", res.Source, res.Error)
		case summary.DryRun:
			fmt.Fprintf(w, "PLANNED %s\n     -> %s\n", res.Source, res.Target)
		default:
			fmt.Fprintf(w, "OK      %s\n     -> %s\n", res.Source, res.Target)
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}
