package platform

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestResolvePath(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}

	got, err := ResolvePath(filepath.Join("music", "..", "sorted"))
	if err != nil {
		t.Fatalf("ResolvePath() error = %v", err)
	}
	if want := filepath.Join(wd, "sorted"); got != want {
		t.Errorf("ResolvePath() = %q, want %q", got, want)
	}

	_, err = ResolvePath("")
	var pathErr *PathError
	if !errors.As(err, &pathErr) {
		t.Errorf("ResolvePath(\"\") error = %v, want *PathError", err)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	tests := []struct {
		in   string
		want string
	}{
		{"~", home},
		{"~/Music", filepath.Join(home, "Music")},
		{"/abs/~/x", "/abs/~/x"},
		{"~user/x", "~user/x"},
	}
	for _, tt := range tests {
		if got := ExpandHome(tt.in); got != tt.want {
			t.Errorf("ExpandHome(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsWithin(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "music")
	tests := []struct {
		path string
		want bool
	}{
		{root, true},
		{filepath.Join(root, "sorted"), true},
		{filepath.Join(root, "a", "b"), true},
		{filepath.Join(string(filepath.Separator), "musicbox"), false},
		{string(filepath.Separator), false},
		{filepath.Join(root, "..hidden"), true},
	}
	for _, tt := range tests {
		if got := IsWithin(tt.path, root); got != tt.want {
			t.Errorf("IsWithin(%q, %q) = %v, want %v", tt.path, root, got, tt.want)
		}
	}
}
