package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sdejongh/musicsort/pkg/compare"
	"github.com/sdejongh/musicsort/pkg/config"
	"github.com/sdejongh/musicsort/pkg/metadata"
	"github.com/sdejongh/musicsort/pkg/output"
	"github.com/sdejongh/musicsort/pkg/ratelimit"
)

// AnalyzeFlags holds analyze command flags
type AnalyzeFlags struct {
	Source     string
	Duplicates bool
	Workers    int
	Output     string
	Log        LogFlags
}

var analyzeFlags AnalyzeFlags

// NewAnalyzeCommand creates the analyze command
func NewAnalyzeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Report statistics about a music collection",
		Long: `Scan a directory and report file counts, total size, unique artists,
albums and genres, the year span and the audio formats found. With
--duplicates, files with identical content are grouped by SHA-256.
Nothing is modified.`,
		RunE: runAnalyze,
	}

	cmd.Flags().StringVarP(&analyzeFlags.Source, "source", "s", "", "directory to analyze (default: paths.source)")
	cmd.Flags().BoolVarP(&analyzeFlags.Duplicates, "duplicates", "d", false, "find files with identical content")
	cmd.Flags().IntVarP(&analyzeFlags.Workers, "parallel", "p", 0, "number of parallel hashing workers (default: CPU count)")
	cmd.Flags().StringVarP(&analyzeFlags.Output, "output", "o", "", "output format: human, json")
	addLogFlags(cmd, &analyzeFlags.Log)

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if analyzeFlags.Source != "" {
		cfg.Paths.Source = analyzeFlags.Source
	}
	if analyzeFlags.Output != "" {
		cfg.Output.Format = analyzeFlags.Output
	}
	applyLogFlagsToConfig(cfg, analyzeFlags.Log)
	applyGlobalFlagsToConfig(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	source, err := validateSource(cfg.Paths.Source)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer logger.Close()

	result, err := collect(ctx, cfg, source, "", logger)
	if err != nil {
		return err
	}

	analysis := &output.Analysis{
		Source:       source,
		Stats:        metadata.Summarize(result.Files),
		Unsupported:  result.Unsupported,
		Unreadable:   len(result.Failures),
		FromFilename: result.FromFilename,
	}

	if analyzeFlags.Duplicates {
		bandwidth, _ := config.ParseBandwidth(cfg.Performance.BandwidthLimit)
		hasher := compare.NewHasher(cfg.Performance.BufferSize, ratelimit.NewLimiter(bandwidth))
		groups, err := compare.NewDuplicateFinder(hasher, analyzeFlags.Workers).Find(ctx, result.Files)
		if err != nil {
			return fmt.Errorf("duplicate detection failed: %w", err)
		}
		analysis.Duplicates = groups
		if analysis.Duplicates == nil {
			analysis.Duplicates = []compare.DuplicateGroup{}
		}
	}

	format := cfg.Output.Format
	if format != "json" {
		format = "human"
	}
	return output.WriteAnalysis(stdout(cmd), analysis, format)
}
