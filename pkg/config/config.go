package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/sdejongh/musicsort/pkg/models"
	"github.com/sdejongh/musicsort/pkg/storage"
)

// Config represents the application configuration
type Config struct {
	Paths       PathsConfig       `yaml:"paths"`
	Sort        SortConfig        `yaml:"sort"`
	Scan        ScanConfig        `yaml:"scan"`
	Performance PerformanceConfig `yaml:"performance"`
	Output      OutputConfig      `yaml:"output"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// PathsConfig holds default source and target directories
type PathsConfig struct {
	Source string `yaml:"source"`
	Target string `yaml:"target"`
}

// SortConfig holds sort-related settings
type SortConfig struct {
	Pattern       string `yaml:"pattern"`
	Copy          bool   `yaml:"copy"`
	Template      string `yaml:"template"`       // Used by the custom pattern
	RenamePattern string `yaml:"rename_pattern"` // Used by the rename command
}

// ScanConfig holds source scanning settings
type ScanConfig struct {
	Recursive     bool     `yaml:"recursive"`
	IncludeHidden bool     `yaml:"include_hidden"`
	Ignore        []string `yaml:"ignore"`     // Regular expressions
	Extensions    []string `yaml:"extensions"` // Accepted audio extensions
}

// PerformanceConfig holds performance-related settings
type PerformanceConfig struct {
	BatchSize      int    `yaml:"batch_size"`
	BufferSize     int    `yaml:"buffer_size"`
	BandwidthLimit string `yaml:"bandwidth_limit"` // e.g. "10M", empty = unlimited
}

// OutputConfig holds output-related settings
type OutputConfig struct {
	Format   string `yaml:"format"`   // "human", "json" or "progress"
	Progress bool   `yaml:"progress"` // Show progress bars
	Quiet    bool   `yaml:"quiet"`    // Suppress non-error output
}

// LoggingConfig holds logging-related settings
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Format  string `yaml:"format"` // "json" or "text"
	Level   string `yaml:"level"`  // "debug", "info", "warn", "error"
	File    string `yaml:"file"`   // Log file path (empty = no file log)
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Sort: SortConfig{
			Pattern:       string(models.PatternArtist),
			Copy:          false,
			RenamePattern: "{artist} - {title}",
		},
		Scan: ScanConfig{
			Recursive:  true,
			Ignore:     []string{`\.tmp$`, `^@eaDir$`},
			Extensions: []string{".mp3", ".flac", ".wav", ".ogg", ".m4a", ".aac"},
		},
		Performance: PerformanceConfig{
			BatchSize:  storage.DefaultBatchSize,
			BufferSize: 65536,
		},
		Output: OutputConfig{
			Format:   "human",
			Progress: true,
			Quiet:    false,
		},
		Logging: LoggingConfig{
			Enabled: false,
			Format:  "text",
			Level:   "info",
			File:    "",
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	pattern, err := models.ParseSortPattern(c.Sort.Pattern)
	if err != nil {
		return &models.ValidationError{
			Field:   "sort.pattern",
			Message: fmt.Sprintf("unknown pattern %q", c.Sort.Pattern),
		}
	}
	if pattern == models.PatternCustom && strings.TrimSpace(c.Sort.Template) == "" {
		return &models.ValidationError{
			Field:   "sort.template",
			Message: "required when sort.pattern is custom",
		}
	}

	for _, p := range c.Scan.Ignore {
		if _, err := regexp.Compile(p); err != nil {
			return &models.ValidationError{
				Field:   "scan.ignore",
				Message: fmt.Sprintf("invalid regular expression %q: %v", p, err),
			}
		}
	}

	if c.Performance.BatchSize < 1 {
		return &models.ValidationError{
			Field:   "performance.batch_size",
			Message: "must be at least 1",
		}
	}

	if c.Performance.BufferSize < 1024 {
		return &models.ValidationError{
			Field:   "performance.buffer_size",
			Message: "must be at least 1024 bytes",
		}
	}

	if _, err := ParseBandwidth(c.Performance.BandwidthLimit); err != nil {
		return &models.ValidationError{
			Field:   "performance.bandwidth_limit",
			Message: err.Error(),
		}
	}

	validFormats := map[string]bool{"human": true, "json": true, "progress": true}
	if !validFormats[c.Output.Format] {
		return &models.ValidationError{
			Field:   "output.format",
			Message: "must be 'human', 'json' or 'progress'",
		}
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		return &models.ValidationError{
			Field:   "logging.format",
			Message: "must be 'json' or 'text'",
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return &models.ValidationError{
			Field:   "logging.level",
			Message: "must be 'debug', 'info', 'warn', or 'error'",
		}
	}

	return nil
}

// SortSpecification builds the sort specification described by the config
func (c *Config) SortSpecification() (models.SortSpecification, error) {
	pattern, err := models.ParseSortPattern(c.Sort.Pattern)
	if err != nil {
		return models.SortSpecification{}, err
	}
	return models.SortSpecification{
		Pattern:  pattern,
		CopyMode: c.Sort.Copy,
		Template: c.Sort.Template,
	}, nil
}

// ScanOptions builds the scan options described by the config
func (c *Config) ScanOptions() storage.ScanOptions {
	return storage.ScanOptions{
		Recursive:      c.Scan.Recursive,
		IncludeHidden:  c.Scan.IncludeHidden,
		IgnorePatterns: c.Scan.Ignore,
	}
}

// ParseBandwidth parses a bandwidth limit such as "10M", "512KiB" or
// "1G" into bytes per second. Empty and "0" mean unlimited.
func ParseBandwidth(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid bandwidth %q: %w", s, err)
	}
	return int64(n), nil
}
