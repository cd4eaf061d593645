package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"github.com/spf13/cobra"

	"github.com/sdejongh/musicsort/internal/platform"
	"github.com/sdejongh/musicsort/pkg/config"
	"github.com/sdejongh/musicsort/pkg/logging"
	"github.com/sdejongh/musicsort/pkg/metadata"
	"github.com/sdejongh/musicsort/pkg/models"
	"github.com/sdejongh/musicsort/pkg/storage"
)

// ExitError carries a process exit code out of a command
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode maps a command error to a process exit code
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}

// exitWithStatus turns a run status into an ExitError (nil on success)
func exitWithStatus(status models.Status) error {
	if code := status.ExitCode(); code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}

// loadConfig loads configuration from file or returns default
func loadConfig() (*config.Config, error) {
	if globalFlags.ConfigFile != "" {
		return config.LoadFromFile(globalFlags.ConfigFile)
	}
	return config.LoadDefault()
}

// applyGlobalFlagsToConfig applies --quiet and --verbose
func applyGlobalFlagsToConfig(cfg *config.Config) {
	// Disable progress in quiet mode
	if globalFlags.Quiet {
		cfg.Output.Progress = false
		cfg.Output.Quiet = true
	}
}

// applyLogFlagsToConfig overrides logging settings with command-line flags
func applyLogFlagsToConfig(cfg *config.Config, flags LogFlags) {
	if flags.LogFile != "" {
		cfg.Logging.File = flags.LogFile
		cfg.Logging.Enabled = true
	}
	if flags.LogFormat != "" {
		cfg.Logging.Format = flags.LogFormat
	}
	if flags.LogLevel != "" {
		cfg.Logging.Level = flags.LogLevel
	}
}

// validateSource resolves the source directory, which must exist
func validateSource(source string) (string, error) {
	if source == "" {
		return "", fmt.Errorf("source directory is required (--source or paths.source)")
	}
	sourceAbs, err := platform.ResolvePath(source)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(sourceAbs)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("source path does not exist: %s", source)
	} else if err != nil {
		return "", fmt.Errorf("failed to access source path: %w", err)
	} else if !info.IsDir() {
		return "", fmt.Errorf("source path is not a directory: %s", source)
	}
	return sourceAbs, nil
}

// validateSourceTarget resolves both directories. The target is created
// on demand by the storage layer but must not be a file or the source.
func validateSourceTarget(source, target string) (string, string, error) {
	sourceAbs, err := validateSource(source)
	if err != nil {
		return "", "", err
	}
	if target == "" {
		return "", "", fmt.Errorf("target directory is required (--target or paths.target)")
	}
	targetAbs, err := platform.ResolvePath(target)
	if err != nil {
		return "", "", err
	}
	if info, err := os.Stat(targetAbs); err == nil && !info.IsDir() {
		return "", "", fmt.Errorf("target path exists but is not a directory: %s", target)
	}
	if sourceAbs == targetAbs {
		return "", "", fmt.Errorf("source and target cannot be the same: %s", sourceAbs)
	}
	return sourceAbs, targetAbs, nil
}

// targetIgnorePattern keeps a target nested inside the source out of the
// scan, so already sorted files are not picked up again
func targetIgnorePattern(sourceAbs, targetAbs string) string {
	if !platform.IsWithin(targetAbs, sourceAbs) {
		return ""
	}
	rel, err := filepath.Rel(sourceAbs, targetAbs)
	if err != nil {
		return ""
	}
	return "^" + regexp.QuoteMeta(filepath.ToSlash(rel)) + "$"
}

// newLogger builds the console logger (stderr) and, when enabled, the file
// logger described by cfg
func newLogger(cfg *config.Config, stderr io.Writer) (logging.Logger, error) {
	level := logging.WarnLevel
	switch {
	case globalFlags.Quiet:
		level = logging.ErrorLevel
	case globalFlags.Verbose:
		level = logging.DebugLevel
	}
	loggers := []logging.Logger{logging.NewConsoleLogger(stderr, level, logging.FormatText)}

	if cfg.Logging.Enabled {
		path := cfg.Logging.File
		if path == "" {
			path = defaultLogPath()
		}
		fileLogger, err := logging.NewFileLogger(logging.FileLoggerConfig{
			Path:       path,
			Format:     logging.ParseFormat(cfg.Logging.Format),
			Level:      logging.ParseLevel(cfg.Logging.Level),
			MaxSize:    10 * 1024 * 1024, // 10 MB
			MaxBackups: 5,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
		loggers = append(loggers, fileLogger)
	}

	return logging.NewMultiLogger(loggers...), nil
}

// defaultLogPath returns the log file used when logging is enabled
// without an explicit path
func defaultLogPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}
	return filepath.Join(configDir, "musicsort", "musicsort.log")
}

// stdout returns the writer for command output, discarded with --quiet
func stdout(cmd *cobra.Command) io.Writer {
	if globalFlags.Quiet {
		return io.Discard
	}
	return cmd.OutOrStdout()
}

// collect scans source and resolves the metadata of every supported file
func collect(ctx context.Context, cfg *config.Config, source string, extraIgnore string, logger logging.Logger) (*metadata.Result, error) {
	scanner, err := storage.NewLocal(source, storage.LocalConfig{Logger: logger})
	if err != nil {
		return nil, err
	}
	defer scanner.Close()

	opts := cfg.ScanOptions()
	if extraIgnore != "" {
		opts.IgnorePatterns = append(append([]string{}, opts.IgnorePatterns...), extraIgnore)
	}

	paths, err := scanner.ScanDirectory(ctx, source, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to scan source: %w", err)
	}

	resolver := metadata.NewResolver(metadata.ResolverConfig{
		Extensions: cfg.Scan.Extensions,
		Logger:     logger,
	})
	result, err := resolver.Resolve(ctx, paths)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	for _, failure := range result.Failures {
		logger.Warn(ctx, "Skipped unreadable file", logging.Fields{"error": failure.Error()})
	}
	return result, nil
}

// commandContext returns the command context or a background context
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
