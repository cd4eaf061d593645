package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sdejongh/musicsort/pkg/journal"
	"github.com/sdejongh/musicsort/pkg/logging"
	"github.com/sdejongh/musicsort/pkg/models"
	"github.com/sdejongh/musicsort/pkg/output"
	"github.com/sdejongh/musicsort/pkg/storage"
)

// UndoFlags holds undo command flags
type UndoFlags struct {
	RunID      string
	DryRun     bool
	List       bool
	Output     string
	JournalDir string
	Log        LogFlags
}

var undoFlags UndoFlags

// NewUndoCommand creates the undo command
func NewUndoCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "undo",
		Short: "Reverse a previous sort",
		Long: `Reverse the last sort (or the one named by --run-id) from its journal.
Moved files go back to their original location without overwriting anything;
copies are deleted. Directories left empty in the target are removed.`,
		RunE: runUndo,
	}

	cmd.Flags().StringVar(&undoFlags.RunID, "run-id", "", "run to undo (default: the last run)")
	cmd.Flags().BoolVarP(&undoFlags.DryRun, "dry-run", "n", false, "show what would be restored")
	cmd.Flags().BoolVarP(&undoFlags.List, "list", "l", false, "list recorded runs, oldest first")
	cmd.Flags().StringVarP(&undoFlags.Output, "output", "o", "human", "output format: human, json")
	cmd.Flags().StringVar(&undoFlags.JournalDir, "journal-dir", "", "directory holding run journals")
	cmd.Flags().MarkHidden("journal-dir")
	addLogFlags(cmd, &undoFlags.Log)

	return cmd
}

func runUndo(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	store := journal.NewStore(undoFlags.JournalDir)
	out := stdout(cmd)

	if undoFlags.List {
		ids, err := store.List()
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Fprintln(out, "No recorded runs")
		}
		for _, id := range ids {
			fmt.Fprintln(out, id)
		}
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyLogFlagsToConfig(cfg, undoFlags.Log)
	applyGlobalFlagsToConfig(cfg)

	logger, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer logger.Close()

	var j *journal.Journal
	if undoFlags.RunID != "" {
		j, err = store.Load(undoFlags.RunID)
	} else {
		j, err = store.Last()
	}
	if errors.Is(err, journal.ErrNoJournal) {
		return fmt.Errorf("nothing to undo: %w", err)
	}
	if err != nil {
		return err
	}

	backend, err := storage.NewLocal(j.TargetRoot, storage.LocalConfig{Logger: logger})
	if err != nil {
		return err
	}
	defer backend.Close()

	report := journal.Undo(ctx, backend, j, undoFlags.DryRun, logger)
	if err := output.WriteUndoReport(out, report, undoFlags.DryRun, undoFlags.Output); err != nil {
		return err
	}

	if report.Failed > 0 {
		code := models.StatusPartial.ExitCode()
		if report.Restored+report.Removed == 0 {
			code = models.StatusFailed.ExitCode()
		}
		return &ExitError{Code: code, Err: fmt.Errorf("undo of run %s left %d files in place", j.RunID, report.Failed)}
	}

	// A fully reversed run cannot be undone twice
	if !undoFlags.DryRun {
		if err := store.Remove(j.RunID); err != nil {
			logger.Warn(ctx, "Failed to remove run journal", logging.Fields{"run_id": j.RunID, "error": err.Error()})
		}
	}
	return nil
}
