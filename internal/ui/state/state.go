// Package state keeps the page controller's only long-lived client state:
// the file staged for upload.
package state

import (
	"errors"
	"fmt"

	"github.com/Its-donkey/sharebox/internal/ui/model"
)

// ErrTooLarge is returned by Stage when the file exceeds the upload limit.
var ErrTooLarge = errors.New("file exceeds upload limit")

// StagedFile is the file picked or dropped by the user. Handle carries the
// platform object (a browser File under WASM) and is opaque to this package.
type StagedFile struct {
	Name   string
	Size   int64
	Handle any
}

// Selection holds at most one staged file.
type Selection struct {
	maxBytes int64
	current  *StagedFile
}

// Upload is the selection used by the page controller.
var Upload = NewSelection(model.DefaultMaxUploadBytes)

// NewSelection returns an empty selection enforcing maxBytes (<= 0 means the default).
func NewSelection(maxBytes int64) *Selection {
	if maxBytes <= 0 {
		maxBytes = model.DefaultMaxUploadBytes
	}
	return &Selection{maxBytes: maxBytes}
}

// SetLimit changes the size limit applied by later Stage calls.
func (s *Selection) SetLimit(maxBytes int64) {
	if maxBytes > 0 {
		s.maxBytes = maxBytes
	}
}

// Limit returns the size limit in bytes.
func (s *Selection) Limit() int64 {
	return s.maxBytes
}

// Stage replaces the current selection with file. A nil file clears it.
// An oversized file clears the selection and returns ErrTooLarge.
func (s *Selection) Stage(file *StagedFile) error {
	if file == nil {
		s.Clear()
		return nil
	}
	if file.Size > s.maxBytes {
		s.Clear()
		return fmt.Errorf("%w: %s is %d bytes, limit %d", ErrTooLarge, file.Name, file.Size, s.maxBytes)
	}
	staged := *file
	s.current = &staged
	return nil
}

// Clear drops the staged file.
func (s *Selection) Clear() {
	s.current = nil
}

// Current returns the staged file, or nil.
func (s *Selection) Current() *StagedFile {
	return s.current
}

// HasFile reports whether a file is staged.
func (s *Selection) HasFile() bool {
	return s.current != nil
}

// LimitLabel formats the limit for messages, e.g. "100MB".
func LimitLabel(maxBytes int64) string {
	const mb = 1024 * 1024
	if maxBytes%mb == 0 {
		return fmt.Sprintf("%dMB", maxBytes/mb)
	}
	return fmt.Sprintf("%.1fMB", float64(maxBytes)/mb)
}
