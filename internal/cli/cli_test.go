package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sdejongh/musicsort/pkg/output"
)

// TestHelper provides a source tree, a target and an isolated journal
type TestHelper struct {
	t          *testing.T
	tempDir    string
	sourceDir  string
	targetDir  string
	journalDir string
}

// NewTestHelper creates a new end-to-end test helper
func NewTestHelper(t *testing.T) *TestHelper {
	t.Helper()
	tempDir := t.TempDir()

	// Keep the default config and journal locations inside the test
	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tempDir, ".config"))

	h := &TestHelper{
		t:          t,
		tempDir:    tempDir,
		sourceDir:  filepath.Join(tempDir, "source"),
		targetDir:  filepath.Join(tempDir, "target"),
		journalDir: filepath.Join(tempDir, "journal"),
	}
	if err := os.MkdirAll(h.sourceDir, 0755); err != nil {
		t.Fatalf("failed to create source dir: %v", err)
	}
	return h
}

// CreateSourceFile creates an untagged file whose content derives from name
func (h *TestHelper) CreateSourceFile(name string) string {
	h.t.Helper()
	path := filepath.Join(h.sourceDir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		h.t.Fatalf("failed to create parent dir: %v", err)
	}
	content := bytes.Repeat([]byte(name), 512/len(name)+1)
	if err := os.WriteFile(path, content, 0644); err != nil {
		h.t.Fatalf("failed to write file: %v", err)
	}
	return path
}

// Run executes the command line and returns stdout
func (h *TestHelper) Run(args ...string) (string, error) {
	h.t.Helper()
	cmd := NewRootCommand("test")
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func (h *TestHelper) exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ============== Sort Tests ==============

func TestSort_MoveAndUndo(t *testing.T) {
	h := NewTestHelper(t)
	queen := h.CreateSourceFile("Queen - Innuendo.mp3")
	abba := h.CreateSourceFile("sub/ABBA - SOS.flac")
	notes := h.CreateSourceFile("notes.txt")

	out, err := h.Run("sort", "-s", h.sourceDir, "-t", h.targetDir, "--journal-dir", h.journalDir)
	if err != nil {
		t.Fatalf("sort error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "Status: success") {
		t.Errorf("unexpected output:\n%s", out)
	}

	movedQueen := filepath.Join(h.targetDir, "by-artist", "Queen", "Queen - Innuendo.mp3")
	movedABBA := filepath.Join(h.targetDir, "by-artist", "ABBA", "ABBA - SOS.flac")
	for _, p := range []string{movedQueen, movedABBA} {
		if !h.exists(p) {
			t.Errorf("expected %s", p)
		}
	}
	if h.exists(queen) || h.exists(abba) {
		t.Error("sources still present after move")
	}
	if !h.exists(notes) {
		t.Error("unsupported file was touched")
	}

	out, err = h.Run("undo", "--journal-dir", h.journalDir)
	if err != nil {
		t.Fatalf("undo error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "Restored:  2") {
		t.Errorf("unexpected undo output:\n%s", out)
	}
	if !h.exists(queen) || !h.exists(abba) {
		t.Error("sources not restored")
	}
	if h.exists(filepath.Join(h.targetDir, "by-artist")) {
		t.Error("empty sort directories not pruned")
	}

	// The journal is consumed by a successful undo
	if _, err := h.Run("undo", "--journal-dir", h.journalDir); err == nil {
		t.Error("second undo should report nothing to undo")
	}
}

func TestSort_CopyWithJSONOutputAndReport(t *testing.T) {
	h := NewTestHelper(t)
	src := h.CreateSourceFile("Queen - Innuendo.mp3")
	reportPath := filepath.Join(h.tempDir, "report.json")

	out, err := h.Run("sort", "-s", h.sourceDir, "-t", h.targetDir, "--copy", "-p", "genre",
		"-o", "json", "--report", reportPath, "--report-format", "json", "--no-journal")
	if err != nil {
		t.Fatalf("sort error = %v\n%s", err, out)
	}

	var report output.JSONReportData
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, out)
	}
	if report.Status != "success" || report.Stats.Succeeded != 1 || report.Counters.Copied != 1 {
		t.Errorf("report = %+v", report)
	}

	if !h.exists(src) {
		t.Error("copy removed the source")
	}
	if !h.exists(filepath.Join(h.targetDir, "by-genre", "Unknown Genre", "Queen - Innuendo.mp3")) {
		t.Error("copy missing in target")
	}
	if !h.exists(reportPath) {
		t.Error("report file not written")
	}
	if h.exists(h.journalDir) {
		t.Error("journal written despite --no-journal")
	}
}

func TestSort_DryRun(t *testing.T) {
	h := NewTestHelper(t)
	src := h.CreateSourceFile("Queen - Innuendo.mp3")

	out, err := h.Run("sort", "-s", h.sourceDir, "-t", h.targetDir, "-n", "--template", "{artist}/{title}",
		"--journal-dir", h.journalDir)
	if err != nil {
		t.Fatalf("sort error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "Dry run completed") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if !h.exists(src) {
		t.Error("dry run moved the source")
	}
	if h.exists(filepath.Join(h.targetDir, "custom")) {
		t.Error("dry run created destination directories")
	}
	if h.exists(h.journalDir) {
		t.Error("dry run recorded a journal")
	}
}

func TestSort_TargetInsideSource(t *testing.T) {
	h := NewTestHelper(t)
	h.CreateSourceFile("Queen - Innuendo.mp3")
	target := filepath.Join(h.sourceDir, "sorted")

	for run, want := range []int{1, 0} {
		out, err := h.Run("sort", "-s", h.sourceDir, "-t", target, "-o", "json", "--no-journal")
		if err != nil {
			t.Fatalf("run %d error = %v\n%s", run, err, out)
		}
		var report output.JSONReportData
		if err := json.Unmarshal([]byte(out), &report); err != nil {
			t.Fatalf("invalid JSON output: %v", err)
		}
		if report.Stats.Processed != want {
			t.Errorf("run %d processed %d files, want %d", run, report.Stats.Processed, want)
		}
	}
}

func TestSort_InvalidArguments(t *testing.T) {
	h := NewTestHelper(t)
	h.CreateSourceFile("Queen - Innuendo.mp3")

	tests := []struct {
		name string
		args []string
	}{
		{"custom without template", []string{"sort", "-s", h.sourceDir, "-t", h.targetDir, "-p", "custom"}},
		{"unknown pattern", []string{"sort", "-s", h.sourceDir, "-t", h.targetDir, "-p", "mood"}},
		{"same directories", []string{"sort", "-s", h.sourceDir, "-t", h.sourceDir}},
		{"missing source", []string{"sort", "-s", filepath.Join(h.tempDir, "absent"), "-t", h.targetDir}},
		{"no target", []string{"sort", "-s", h.sourceDir}},
		{"bad bandwidth", []string{"sort", "-s", h.sourceDir, "-t", h.targetDir, "-b", "fast"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := h.Run(tt.args...); err == nil {
				t.Fatal("expected an error")
			}
			if h.exists(h.targetDir) {
				entries, _ := os.ReadDir(h.targetDir)
				if len(entries) > 0 {
					t.Errorf("target modified: %v", entries)
				}
			}
		})
	}
}

// ============== Analyze Tests ==============

func TestAnalyze_JSON(t *testing.T) {
	h := NewTestHelper(t)
	h.CreateSourceFile("Queen - Innuendo.mp3")
	h.CreateSourceFile("ABBA - SOS.flac")
	h.CreateSourceFile("cover.jpg")

	// An identical copy under another name
	data, _ := os.ReadFile(filepath.Join(h.sourceDir, "Queen - Innuendo.mp3"))
	os.WriteFile(filepath.Join(h.sourceDir, "copy.mp3"), data, 0644)

	out, err := h.Run("analyze", "-s", h.sourceDir, "-o", "json", "--duplicates")
	if err != nil {
		t.Fatalf("analyze error = %v\n%s", err, out)
	}

	var a output.JSONAnalysisData
	if err := json.Unmarshal([]byte(out), &a); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if a.Files != 3 || a.Unsupported != 1 {
		t.Errorf("Files = %d, Unsupported = %d", a.Files, a.Unsupported)
	}
	if a.Extensions[".mp3"] != 2 || a.Extensions[".flac"] != 1 {
		t.Errorf("Extensions = %v", a.Extensions)
	}
	if len(a.Artists) != 2 {
		t.Errorf("Artists = %v, want ABBA and Queen", a.Artists)
	}
	if len(a.Duplicates) != 1 || len(a.Duplicates[0].Paths) != 2 {
		t.Errorf("Duplicates = %+v", a.Duplicates)
	}
}

// ============== Rename Tests ==============

func TestRename(t *testing.T) {
	h := NewTestHelper(t)
	src := h.CreateSourceFile("Queen - Innuendo.mp3")
	renamed := filepath.Join(h.sourceDir, "Innuendo by Queen.mp3")

	out, err := h.Run("rename", "-s", h.sourceDir, "-p", "{title} by {artist}", "--dry-run")
	if err != nil {
		t.Fatalf("rename error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "Would rename: Queen - Innuendo.mp3 -> Innuendo by Queen.mp3") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if !h.exists(src) || h.exists(renamed) {
		t.Fatal("dry run renamed the file")
	}

	if out, err := h.Run("rename", "-s", h.sourceDir, "-p", "{title} by {artist}"); err != nil {
		t.Fatalf("rename error = %v\n%s", err, out)
	}
	if h.exists(src) || !h.exists(renamed) {
		t.Error("file not renamed")
	}
}

// ============== Config Tests ==============

func TestConfigInitAndShow(t *testing.T) {
	h := NewTestHelper(t)
	path := filepath.Join(h.tempDir, "musicsort.yaml")

	out, err := h.Run("--config", path, "config", "init")
	if err != nil {
		t.Fatalf("config init error = %v", err)
	}
	if !strings.Contains(out, path) {
		t.Errorf("unexpected output: %s", out)
	}
	if _, err := h.Run("--config", path, "config", "init"); err == nil {
		t.Error("config init overwrote an existing file without --force")
	}

	out, err = h.Run("--config", path, "config", "show")
	if err != nil {
		t.Fatalf("config show error = %v", err)
	}
	if !strings.Contains(out, "pattern: artist") || !strings.Contains(out, "batch_size: 50") {
		t.Errorf("unexpected config:\n%s", out)
	}
}

func TestVersion(t *testing.T) {
	h := NewTestHelper(t)
	out, err := h.Run("version", "--short")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != Version {
		t.Errorf("version = %q, want %q", out, Version)
	}
}

// ============== Helper Tests ==============

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plain", errors.New("boom"), 1},
		{"partial", &ExitError{Code: 1}, 1},
		{"failed", &ExitError{Code: 2, Err: errors.New("sort failed")}, 2},
		{"wrapped", errors.Join(errors.New("ctx"), &ExitError{Code: 2}), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTargetIgnorePattern(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "music")
	tests := []struct {
		target string
		want   string
	}{
		{filepath.Join(root, "sorted"), `^sorted$`},
		{filepath.Join(root, "a.b", "out"), `^a\.b/out$`},
		{filepath.Join(string(filepath.Separator), "elsewhere"), ""},
	}
	for _, tt := range tests {
		if got := targetIgnorePattern(root, tt.target); got != tt.want {
			t.Errorf("targetIgnorePattern(%q) = %q, want %q", tt.target, got, tt.want)
		}
	}
}
