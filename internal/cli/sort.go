package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sdejongh/musicsort/pkg/config"
	"github.com/sdejongh/musicsort/pkg/journal"
	"github.com/sdejongh/musicsort/pkg/logging"
	"github.com/sdejongh/musicsort/pkg/models"
	"github.com/sdejongh/musicsort/pkg/output"
	"github.com/sdejongh/musicsort/pkg/ratelimit"
	"github.com/sdejongh/musicsort/pkg/sorter"
	"github.com/sdejongh/musicsort/pkg/storage"
)

// SortFlags holds sort command flags
type SortFlags struct {
	Source       string
	Target       string
	Pattern      string
	Template     string
	Copy         bool
	DryRun       bool
	BatchSize    int
	Bandwidth    string
	Ignore       []string
	Output       string
	Report       string
	ReportFormat string
	NoJournal    bool
	JournalDir   string
	Log          LogFlags
}

var sortFlags SortFlags

// NewSortCommand creates the sort command
func NewSortCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sort",
		Short: "Sort music files into a folder hierarchy",
		Long: `Sort audio files from the source directory into the target directory,
laid out by artist, album artist, album, genre, year or a custom template.
Existing files are never overwritten: a clashing file gets a timestamp
suffix. Files are moved unless --copy is given.`,
		RunE: runSort,
	}

	cmd.Flags().StringVarP(&sortFlags.Source, "source", "s", "", "source directory path (default: paths.source)")
	cmd.Flags().StringVarP(&sortFlags.Target, "target", "t", "", "target directory path (default: paths.target)")
	cmd.Flags().StringVarP(&sortFlags.Pattern, "pattern", "p", "", "sort pattern: artist, album-artist, album, genre, year, custom")
	cmd.Flags().StringVar(&sortFlags.Template, "template", "", "template for the custom pattern (e.g. \"{genre}/{artist}\")")
	cmd.Flags().BoolVarP(&sortFlags.Copy, "copy", "c", false, "copy files instead of moving them")
	cmd.Flags().BoolVarP(&sortFlags.DryRun, "dry-run", "n", false, "show where files would go without touching them")
	cmd.Flags().IntVar(&sortFlags.BatchSize, "batch-size", 0, "maximum concurrent file operations (default: performance.batch_size)")
	cmd.Flags().StringVarP(&sortFlags.Bandwidth, "bandwidth", "b", "", "bandwidth limit for copies (e.g., \"10M\", \"1G\")")
	cmd.Flags().StringSliceVar(&sortFlags.Ignore, "ignore", []string{}, "regular expressions of names or paths to skip")
	cmd.Flags().StringVarP(&sortFlags.Output, "output", "o", "", "output format: human, json, progress")
	cmd.Flags().StringVar(&sortFlags.Report, "report", "", "write a per-file report to file")
	cmd.Flags().StringVar(&sortFlags.ReportFormat, "report-format", "human", "report format: human, json")
	cmd.Flags().BoolVar(&sortFlags.NoJournal, "no-journal", false, "do not record the run for undo")
	cmd.Flags().StringVar(&sortFlags.JournalDir, "journal-dir", "", "directory holding run journals")
	cmd.Flags().MarkHidden("journal-dir")
	addLogFlags(cmd, &sortFlags.Log)

	return cmd
}

func runSort(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Override config with command-line flags
	applySortFlagsToConfig(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	spec, err := cfg.SortSpecification()
	if err != nil {
		return err
	}

	// Validate paths
	source, target, err := validateSourceTarget(cfg.Paths.Source, cfg.Paths.Target)
	if err != nil {
		return err
	}

	// Create logger
	logger, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer logger.Close()

	bandwidth, _ := config.ParseBandwidth(cfg.Performance.BandwidthLimit)
	limiter := ratelimit.NewLimiter(bandwidth)

	// Scan and read tags
	result, err := collect(ctx, cfg, source, targetIgnorePattern(source, target), logger)
	if err != nil {
		return err
	}

	// Create storage backend
	backend, err := storage.NewLocal(target, storage.LocalConfig{
		Logger:     logger,
		Limiter:    limiter,
		BufferSize: cfg.Performance.BufferSize,
	})
	if err != nil {
		return fmt.Errorf("failed to create target backend: %w", err)
	}
	defer backend.Close()

	// Create output formatter
	out := stdout(cmd)
	formatter, err := output.NewFormatter(cfg.Output.Format, cfg.Output.Progress, out)
	if err != nil {
		return err
	}

	var totalBytes int64
	for _, f := range result.Files {
		totalBytes += f.Size
	}
	formatter.Start(out, output.RunInfo{
		TotalFiles: len(result.Files),
		TotalBytes: totalBytes,
		TargetRoot: target,
		Spec:       spec,
		DryRun:     sortFlags.DryRun,
	})

	// Create sort engine
	engine := sorter.NewEngine(backend, sorter.Config{
		BatchSize: cfg.Performance.BatchSize,
		DryRun:    sortFlags.DryRun,
		Logger:    logger,
	})
	engine.SetObserver(func(snapshot models.ProgressSnapshot) {
		formatter.Progress(snapshot)
	})

	// Run sort
	summary, err := engine.SortFiles(ctx, result.Files, spec)
	if err != nil {
		formatter.Error(err)
		return &ExitError{Code: summary.Status().ExitCode(), Err: fmt.Errorf("sort failed: %w", err)}
	}
	formatter.Complete(summary)

	// Record the run for undo
	if !sortFlags.NoJournal {
		if j := journal.FromSummary(summary); j != nil {
			store := journal.NewStore(sortFlags.JournalDir)
			if err := store.Save(j); err != nil {
				logger.Error(ctx, "Failed to save run journal", err, logging.Fields{"run_id": j.RunID})
			} else {
				logger.Info(ctx, "Saved run journal", logging.Fields{
					"run_id":  j.RunID,
					"entries": len(j.Entries),
					"dir":     store.Dir(),
				})
			}
		}
	}

	// Write per-file report if requested
	if sortFlags.Report != "" {
		if err := output.WriteReport(summary, sortFlags.Report, sortFlags.ReportFormat); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	// Exit with appropriate code
	return exitWithStatus(summary.Status())
}

// applySortFlagsToConfig overrides config values with command-line flags
func applySortFlagsToConfig(cfg *config.Config) {
	if sortFlags.Source != "" {
		cfg.Paths.Source = sortFlags.Source
	}
	if sortFlags.Target != "" {
		cfg.Paths.Target = sortFlags.Target
	}

	// Sort layout
	if sortFlags.Pattern != "" {
		cfg.Sort.Pattern = sortFlags.Pattern
	}
	if sortFlags.Template != "" {
		cfg.Sort.Template = sortFlags.Template
		// A template alone selects the custom pattern
		if sortFlags.Pattern == "" {
			cfg.Sort.Pattern = "custom"
		}
	}
	if sortFlags.Copy {
		cfg.Sort.Copy = true
	}

	// Performance
	if sortFlags.BatchSize > 0 {
		cfg.Performance.BatchSize = sortFlags.BatchSize
	}
	if sortFlags.Bandwidth != "" {
		cfg.Performance.BandwidthLimit = sortFlags.Bandwidth
	}

	// Ignore patterns
	if len(sortFlags.Ignore) > 0 {
		cfg.Scan.Ignore = sortFlags.Ignore
	}

	// Output format
	if sortFlags.Output != "" {
		cfg.Output.Format = sortFlags.Output
	}

	applyLogFlagsToConfig(cfg, sortFlags.Log)
	applyGlobalFlagsToConfig(cfg)
}
