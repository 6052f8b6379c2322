// Package model holds the JSON shapes exchanged between the ShareBox server,
// the browser controller and sharectl.
package model

import "time"

// DefaultMaxUploadBytes is the staged-file limit used when the page does not
// advertise one.
const DefaultMaxUploadBytes int64 = 100 * 1024 * 1024

// Envelope is the common wrapper every API endpoint answers with.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// FileInfo describes one shared file as listed by GET /files.
type FileInfo struct {
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	SizeStr  string    `json:"size_str"`
	MTime    time.Time `json:"mtime"`
	MTimeStr string    `json:"mtime_str"`
}

// UploadResponse is returned by POST /upload.
type UploadResponse struct {
	Envelope
	Filename string `json:"filename,omitempty"`
}

// ListResponse is returned by GET /files.
type ListResponse struct {
	Envelope
	Files []FileInfo `json:"files"`
}

// TextResponse is returned by GET /get_text.
type TextResponse struct {
	Envelope
	Content string `json:"content"`
}

// WatchEvent is pushed over /ws when the shared folder changes.
type WatchEvent struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
}

// WatchFilesChanged is the only WatchEvent type the server emits today.
const WatchFilesChanged = "files_changed"

// Toast kinds understood by the page stylesheet.
const (
	ToastInfo    = "info"
	ToastSuccess = "success"
	ToastError   = "error"
)
