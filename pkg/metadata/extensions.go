package metadata

import (
	"path/filepath"
	"strings"
)

// SupportedExtensions lists the audio formats the resolver accepts
var SupportedExtensions = []string{".mp3", ".flac", ".wav", ".ogg", ".m4a", ".aac"}

// IsSupported reports whether path has one of the given extensions,
// compared case-insensitively. A nil list means SupportedExtensions.
func IsSupported(path string, extensions []string) bool {
	if extensions == nil {
		extensions = SupportedExtensions
	}
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return false
	}
	for _, e := range extensions {
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}
