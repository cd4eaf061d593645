package journal

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sdejongh/musicsort/pkg/models"
)

const (
	journalVersion  = 1
	lastPointerFile = "last"
)

// ErrNoJournal is returned when no journal is recorded
var ErrNoJournal = errors.New("no sort run recorded")

// Journal records the files a sort run placed, so the run can be undone
type Journal struct {
	// Version for journal file format compatibility
	Version int `json:"version"`

	RunID      string    `json:"run_id"`
	CreatedAt  time.Time `json:"created_at"`
	TargetRoot string    `json:"target_root"`
	Pattern    string    `json:"pattern"`
	CopyMode   bool      `json:"copy_mode"`

	Entries []Entry `json:"entries"`
}

// Entry maps an original file to where the run put it
type Entry struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// FromSummary builds a journal from the successful results of a run.
// Dry runs and runs without successful files yield nil.
func FromSummary(summary *models.RunSummary) *Journal {
	if summary == nil || summary.DryRun {
		return nil
	}

	j := &Journal{
		Version:    journalVersion,
		RunID:      summary.RunID,
		CreatedAt:  summary.EndTime,
		TargetRoot: summary.TargetRoot,
		Pattern:    string(summary.Spec.Pattern),
		CopyMode:   summary.Spec.CopyMode,
	}
	for _, r := range summary.Results {
		if r.Error != nil || r.Target == "" || r.Target == r.Source {
			continue
		}
		j.Entries = append(j.Entries, Entry{Source: r.Source, Target: r.Target})
	}
	if len(j.Entries) == 0 {
		return nil
	}
	return j
}

// Store persists journals as JSON files in a directory
type Store struct {
	dir string
}

// NewStore creates a store in dir (DefaultDir when empty)
func NewStore(dir string) *Store {
	if dir == "" {
		dir = DefaultDir()
	}
	return &Store{dir: dir}
}

// DefaultDir returns the journal directory in the user's config directory
func DefaultDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to home directory
		configDir, _ = os.UserHomeDir()
		configDir = filepath.Join(configDir, ".config")
	}
	return filepath.Join(configDir, "musicsort", "journal")
}

// Dir returns the store directory
func (s *Store) Dir() string {
	return s.dir
}

// Save writes the journal and marks it as the last run
func (s *Store) Save(j *Journal) error {
	if j == nil || j.RunID == "" {
		return fmt.Errorf("journal has no run ID")
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create journal directory: %w", err)
	}

	data, err := json.MarshalIndent(j, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal journal: %w", err)
	}
	if err := writeAtomic(s.path(j.RunID), data); err != nil {
		return err
	}
	return writeAtomic(filepath.Join(s.dir, lastPointerFile), []byte(j.RunID+"\n"))
}

// Load reads the journal of a run
func (s *Store) Load(runID string) (*Journal, error) {
	data, err := os.ReadFile(s.path(runID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoJournal, runID)
		}
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}

	var j Journal
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("failed to parse journal: %w", err)
	}

	// Check version compatibility
	if j.Version > journalVersion {
		return nil, fmt.Errorf("journal version %d is newer than supported version %d", j.Version, journalVersion)
	}
	return &j, nil
}

// Last loads the journal of the most recent run
func (s *Store) Last() (*Journal, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, lastPointerFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoJournal
		}
		return nil, fmt.Errorf("failed to read last run pointer: %w", err)
	}
	runID := strings.TrimSpace(string(data))
	if runID == "" {
		return nil, ErrNoJournal
	}
	return s.Load(runID)
}

// List returns the recorded run IDs, oldest first
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	type run struct {
		id  string
		mod time.Time
	}
	var runs []run
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".json" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		runs = append(runs, run{id: strings.TrimSuffix(name, ".json"), mod: info.ModTime()})
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].mod.Before(runs[j].mod) })

	ids := make([]string, len(runs))
	for i, r := range runs {
		ids[i] = r.id
	}
	return ids, nil
}

// Remove deletes a journal and clears the last-run pointer if it
// referenced it
func (s *Store) Remove(runID string) error {
	if err := os.Remove(s.path(runID)); err != nil && !os.IsNotExist(err) {
		return err
	}

	pointer := filepath.Join(s.dir, lastPointerFile)
	data, err := os.ReadFile(pointer)
	if err == nil && strings.TrimSpace(string(data)) == runID {
		if err := os.Remove(pointer); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

func (s *Store) path(runID string) string {
	return filepath.Join(s.dir, filepath.Base(runID)+".json")
}

// writeAtomic writes through a temp file and rename
func writeAtomic(path string, data []byte) error {
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath) // Clean up temp file
		return fmt.Errorf("failed to finalize %s: %w", filepath.Base(path), err)
	}
	return nil
}
