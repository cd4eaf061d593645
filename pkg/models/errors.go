package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorCategory classifies application errors
type ErrorCategory string

const (
	// CategoryFileOperation covers directory creation, scan, move and copy failures
	CategoryFileOperation ErrorCategory = "FileOperation"
	// CategoryMetadataExtraction covers failures reading a file's metadata
	CategoryMetadataExtraction ErrorCategory = "MetadataExtraction"
	// CategorySettings covers configuration loading and validation failures
	CategorySettings ErrorCategory = "Settings"
	// CategoryUnknown is the catch-all
	CategoryUnknown ErrorCategory = "Unknown"
)

// Context keys carried by file operation errors
const (
	ContextPath   = "path"
	ContextSource = "source"
	ContextTarget = "target"
)

// AppError is a categorized error with contextual path information
type AppError struct {
	Category ErrorCategory
	Op       string
	Message  string
	Err      error
	Context  map[string]string
}

// NewAppError creates an AppError
func NewAppError(category ErrorCategory, op, message string, err error, context map[string]string) *AppError {
	return &AppError{
		Category: category,
		Op:       op,
		Message:  message,
		Err:      err,
		Context:  context,
	}
}

// NewFileOperationError creates a FileOperation error for a source/target pair.
// Empty paths are omitted from the context.
func NewFileOperationError(op, source, target string, err error) *AppError {
	ctx := make(map[string]string, 2)
	if source != "" {
		ctx[ContextSource] = source
	}
	if target != "" {
		ctx[ContextTarget] = target
	}
	return NewAppError(CategoryFileOperation, op, "", err, ctx)
}

func (e *AppError) Error() string {
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(string(e.Category))
	b.WriteString("] ")
	b.WriteString(e.Op)
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString(" (")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%s", k, e.Context[k])
		}
		b.WriteString(")")
	}
	return b.String()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// IsCategory reports whether err is, or wraps, an AppError of the category
func IsCategory(err error, category ErrorCategory) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Category == category
	}
	return false
}

// CategoryOf returns the category of err, or CategoryUnknown
func CategoryOf(err error) ErrorCategory {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Category
	}
	return CategoryUnknown
}
