package output

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/sdejongh/musicsort/pkg/journal"
	"github.com/sdejongh/musicsort/pkg/sorter"
)

// JSONRenameData is the JSON shape of a rename report
type JSONRenameData struct {
	RunID   string           `json:"run_id"`
	Status  string           `json:"status"`
	DryRun  bool             `json:"dry_run"`
	Renamed int              `json:"renamed"`
	Skipped int              `json:"skipped"`
	Failed  int              `json:"failed"`
	Files   []JSONRenameFile `json:"files,omitempty"`
}

// JSONRenameFile is the outcome of renaming one file
type JSONRenameFile struct {
	Source  string `json:"source"`
	Target  string `json:"target,omitempty"`
	Skipped bool   `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`
}

// WriteRenameReport renders a rename report ("human" or "json")
func WriteRenameReport(w io.Writer, r *sorter.RenameReport, format string) error {
	if format == "json" {
		data := JSONRenameData{
			RunID:   r.RunID,
			Status:  string(r.Status()),
			DryRun:  r.DryRun,
			Renamed: r.Renamed,
			Skipped: r.Skipped,
			Failed:  r.Failed,
		}
		for _, res := range r.Results {
			file := JSONRenameFile{Source: res.Source, Target: res.Target, Skipped: res.Skipped}
			if res.Error != nil {
				file.Error = res.Error.Error()
			}
			data.Files = append(data.Files, file)
		}
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(data)
	}

	verb := "Renamed"
	if r.DryRun {
		verb = "Would rename"
	}
	for _, res := range r.Results {
		switch {
		case res.Error != nil:
			fmt.Fprintf(w, "✗ %s: %v\n", res.Source, res.Error)
		case res.Skipped:
			continue
		default:
			fmt.Fprintf(w, "%s: %s -> %s\n", verb, filepath.Base(res.Source), filepath.Base(res.Target))
		}
	}
	if r.DryRun {
		fmt.Fprintf(w, "\nDry run complete. %d files would be renamed, %d would be skipped, %d errors.\n",
			r.Renamed, r.Skipped, r.Failed)
	} else {
		fmt.Fprintf(w, "\nRenaming complete. %d files renamed, %d skipped, %d errors.\n",
			r.Renamed, r.Skipped, r.Failed)
	}
	return nil
}

// JSONUndoData is the JSON shape of an undo report
type JSONUndoData struct {
	RunID    string   `json:"run_id"`
	DryRun   bool     `json:"dry_run"`
	Restored int      `json:"restored"`
	Removed  int      `json:"removed"`
	Missing  int      `json:"missing"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
}

// WriteUndoReport renders an undo report ("human" or "json")
func WriteUndoReport(w io.Writer, r *journal.UndoReport, dryRun bool, format string) error {
	if format == "json" {
		data := JSONUndoData{
			RunID:    r.RunID,
			DryRun:   dryRun,
			Restored: r.Restored,
			Removed:  r.Removed,
			Missing:  r.Missing,
			Failed:   r.Failed,
		}
		for _, err := range r.Errors {
			data.Errors = append(data.Errors, err.Error())
		}
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(data)
	}

	if dryRun {
		fmt.Fprintf(w, "Dry run: undo of run %s\n", r.RunID)
	} else {
		fmt.Fprintf(w, "Undo of run %s\n", r.RunID)
	}
	fmt.Fprintf(w, "  Restored:  %d\n", r.Restored)
	fmt.Fprintf(w, "  Removed:   %d\n", r.Removed)
	fmt.Fprintf(w, "  Missing:   %d\n", r.Missing)
	fmt.Fprintf(w, "  Failed:    %d\n", r.Failed)
	if len(r.Errors) > 0 {
		fmt.Fprintf(w, "\nErrors:\n")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  %v\n", err)
		}
	}
	return nil
}
