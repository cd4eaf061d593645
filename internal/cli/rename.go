package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sdejongh/musicsort/pkg/sorter"
	"github.com/sdejongh/musicsort/pkg/output"
	"github.com/sdejongh/musicsort/pkg/storage"
)

// RenameFlags holds rename command flags
type RenameFlags struct {
	Source  string
	Pattern string
	DryRun  bool
	Output  string
	Log     LogFlags
}

var renameFlags RenameFlags

// NewRenameCommand creates the rename command
func NewRenameCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rename",
		Short: "Rename music files from their tags",
		Long: `Rename audio files in place from a template such as "{artist} - {title}".
Placeholders: {artist} {albumArtist} {album} {title} {genre} {year} {track}
{disc} {extension} {filename}. Files that already carry the rendered name
are skipped; a clashing name gets a " (N)" counter.`,
		RunE: runRename,
	}

	cmd.Flags().StringVarP(&renameFlags.Source, "source", "s", "", "directory to rename in (default: paths.source)")
	cmd.Flags().StringVarP(&renameFlags.Pattern, "pattern", "p", "", "rename template (default: sort.rename_pattern)")
	cmd.Flags().BoolVarP(&renameFlags.DryRun, "dry-run", "n", false, "preview changes without renaming files")
	cmd.Flags().StringVarP(&renameFlags.Output, "output", "o", "", "output format: human, json")
	addLogFlags(cmd, &renameFlags.Log)

	return cmd
}

func runRename(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if renameFlags.Source != "" {
		cfg.Paths.Source = renameFlags.Source
	}
	if renameFlags.Pattern != "" {
		cfg.Sort.RenamePattern = renameFlags.Pattern
	}
	if cfg.Sort.RenamePattern == "" {
		cfg.Sort.RenamePattern = sorter.DefaultRenamePattern
	}
	if renameFlags.Output != "" {
		cfg.Output.Format = renameFlags.Output
	}
	applyLogFlagsToConfig(cfg, renameFlags.Log)
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

	backend, err := storage.NewLocal(source, storage.LocalConfig{Logger: logger})
	if err != nil {
		return err
	}
	defer backend.Close()

	engine := sorter.NewEngine(backend, sorter.Config{DryRun: renameFlags.DryRun, Logger: logger})
	report, err := engine.RenameFiles(ctx, result.Files, cfg.Sort.RenamePattern)
	if err != nil {
		return err
	}

	format := cfg.Output.Format
	if format != "json" {
		format = "human"
	}
	if err := output.WriteRenameReport(stdout(cmd), report, format); err != nil {
		return err
	}
	return exitWithStatus(report.Status())
}
