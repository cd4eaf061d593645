package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sdejongh/musicsort/pkg/models"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}
	if cfg.Sort.Pattern != "artist" {
		t.Errorf("Sort.Pattern = %q, want artist", cfg.Sort.Pattern)
	}
	if cfg.Performance.BatchSize != 50 {
		t.Errorf("Performance.BatchSize = %d, want 50", cfg.Performance.BatchSize)
	}
	if !cfg.Scan.Recursive || cfg.Scan.IncludeHidden {
		t.Errorf("Scan = %+v, want recursive without hidden files", cfg.Scan)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"UnknownPattern", func(c *Config) { c.Sort.Pattern = "mood" }, "sort.pattern"},
		{"CustomWithoutTemplate", func(c *Config) { c.Sort.Pattern = "custom" }, "sort.template"},
		{"BadIgnore", func(c *Config) { c.Scan.Ignore = []string{"("} }, "scan.ignore"},
		{"BatchSize", func(c *Config) { c.Performance.BatchSize = 0 }, "performance.batch_size"},
		{"BufferSize", func(c *Config) { c.Performance.BufferSize = 10 }, "performance.buffer_size"},
		{"Bandwidth", func(c *Config) { c.Performance.BandwidthLimit = "fast" }, "performance.bandwidth_limit"},
		{"OutputFormat", func(c *Config) { c.Output.Format = "xml" }, "output.format"},
		{"LogFormat", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"LogLevel", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			var verr *models.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() error = %v, want *models.ValidationError", err)
			}
			if verr.Field != tt.field {
				t.Errorf("Field = %q, want %q", verr.Field, tt.field)
			}
		})
	}

	t.Run("CustomWithTemplate", func(t *testing.T) {
		cfg := Default()
		cfg.Sort.Pattern = "custom"
		cfg.Sort.Template = "{artist}/{album}"
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})
}

func TestSortSpecification(t *testing.T) {
	cfg := Default()
	cfg.Sort.Pattern = "album_artist"
	cfg.Sort.Copy = true

	spec, err := cfg.SortSpecification()
	if err != nil {
		t.Fatalf("SortSpecification() error = %v", err)
	}
	if spec.Pattern != models.PatternAlbumArtist || !spec.CopyMode {
		t.Errorf("SortSpecification() = %+v", spec)
	}

	opts := cfg.ScanOptions()
	if !opts.Recursive || len(opts.IgnorePatterns) != len(cfg.Scan.Ignore) {
		t.Errorf("ScanOptions() = %+v", opts)
	}
}

func TestParseBandwidth(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"", 0, false},
		{"0", 0, false},
		{"1024", 1024, false},
		{"10M", 10 * 1000 * 1000, false},
		{"10MB", 10 * 1000 * 1000, false},
		{"512KiB", 512 * 1024, false},
		{"1G", 1000 * 1000 * 1000, false},
		{"fast", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseBandwidth(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseBandwidth(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseBandwidth(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := Default()
	cfg.Paths.Target = "/music"
	cfg.Sort.Pattern = "year"
	cfg.Performance.BandwidthLimit = "5M"

	if err := SaveToFile(cfg, path); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if loaded.Paths.Target != "/music" || loaded.Sort.Pattern != "year" || loaded.Performance.BandwidthLimit != "5M" {
		t.Errorf("loaded config = %+v", loaded)
	}
}

func TestLoadFromFile_PartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("sort:\n  pattern: genre\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if cfg.Sort.Pattern != "genre" {
		t.Errorf("Sort.Pattern = %q, want genre", cfg.Sort.Pattern)
	}
	if cfg.Performance.BatchSize != 50 || cfg.Output.Format != "human" {
		t.Error("unset keys should keep their defaults")
	}
}

func TestLoadFromFile_Errors(t *testing.T) {
	dir := t.TempDir()

	t.Run("Missing", func(t *testing.T) {
		_, err := LoadFromFile(filepath.Join(dir, "missing.yaml"))
		if !models.IsCategory(err, models.CategorySettings) {
			t.Errorf("error = %v, want Settings error", err)
		}
	})

	t.Run("Malformed", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		os.WriteFile(path, []byte("sort: [unclosed"), 0644)
		_, err := LoadFromFile(path)
		if !models.IsCategory(err, models.CategorySettings) {
			t.Errorf("error = %v, want Settings error", err)
		}
	})

	t.Run("Invalid", func(t *testing.T) {
		path := filepath.Join(dir, "invalid.yaml")
		os.WriteFile(path, []byte("output:\n  format: xml\n"), 0644)
		_, err := LoadFromFile(path)
		var verr *models.ValidationError
		if !errors.As(err, &verr) || verr.Field != "output.format" {
			t.Errorf("error = %v, want output.format validation error", err)
		}
	})
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if cfg.Sort.Pattern != Default().Sort.Pattern {
		t.Error("LoadOrDefault() should return defaults for a missing file")
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path, err := DefaultConfigPath()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	if !strings.HasSuffix(filepath.ToSlash(path), ".config/musicsort/config.yaml") {
		t.Errorf("DefaultConfigPath() = %q", path)
	}
}
