package logging

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func decodeEntries(t *testing.T, buf *bytes.Buffer) []Entry {
	t.Helper()
	var entries []Entry
	scanner := bufio.NewScanner(buf)
	for scanner.Scan() {
		var entry Entry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			t.Fatalf("decode entry %q: %v", scanner.Text(), err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestLoggerFiltersBelowMinLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New("sharebox", WARN, &buf)

	logger.Debug("files", "debug", nil)
	logger.Info("files", "info", nil)
	logger.Warn("files", "warn", map[string]any{"name": "a.txt"})
	logger.Error("files", "failed", errors.New("boom"), nil)

	entries := decodeEntries(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Level != "WARN" || entries[0].Fields["name"] != "a.txt" {
		t.Fatalf("unexpected warn entry: %+v", entries[0])
	}
	if entries[1].Error != "boom" || entries[1].Service != "sharebox" {
		t.Fatalf("unexpected error entry: %+v", entries[1])
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{"debug": DEBUG, "": INFO, "Warning": WARN, "ERROR": ERROR}
	for input, want := range cases {
		got, err := ParseLevel(input)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v; want %v", input, got, err, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestLogContextCarriesRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := New("sharebox", INFO, &buf)

	logger.WithRequestID("req-1").WithCategory("upload").WithField("file", "a.txt").Info("stored")

	entries := decodeEntries(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].RequestID != "req-1" || entries[0].Category != "upload" || entries[0].Fields["file"] != "a.txt" {
		t.Fatalf("unexpected entry: %+v", entries[0])
	}
}

func TestHTTPLoggerMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := New("sharebox", INFO, &buf)

	var seenID string
	handler := NewHTTPLogger(logger).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = RequestIDFromContext(r.Context())
		http.NotFound(w, r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/download/missing.txt", nil)
	req.Header.Set("Cookie", "sharebox_session=secret")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if seenID == "" || rec.Header().Get("X-Request-ID") != seenID {
		t.Fatalf("request id mismatch: header %q context %q", rec.Header().Get("X-Request-ID"), seenID)
	}

	entries := decodeEntries(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.Level != "WARN" || entry.Category != "http" || entry.RequestID != seenID {
		t.Fatalf("unexpected http entry: %+v", entry)
	}
	if strings.Contains(buf.String(), "secret") {
		t.Fatalf("cookie value leaked into log")
	}
}

func TestFileWriterRotatesAndCompresses(t *testing.T) {
	dir := t.TempDir()
	fw, err := NewFileWriter(dir, "sharebox.log", 1, 2)
	if err != nil {
		t.Fatalf("new file writer: %v", err)
	}
	defer fw.Close()

	tick := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	fw.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}

	chunk := bytes.Repeat([]byte("x"), 700*1024)
	for i := 0; i < 4; i++ {
		if _, err := fw.Write(chunk); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}

	rotated, err := filepath.Glob(filepath.Join(dir, "sharebox.log.*.gz"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(rotated) != 2 {
		t.Fatalf("expected 2 rotated files, got %v", rotated)
	}
	info, err := os.Stat(filepath.Join(dir, "sharebox.log"))
	if err != nil {
		t.Fatalf("stat active file: %v", err)
	}
	if info.Size() != int64(len(chunk)) {
		t.Fatalf("expected active file to hold one chunk, got %d bytes", info.Size())
	}
}

func TestFileWriterClosed(t *testing.T) {
	fw, err := NewFileWriter(t.TempDir(), "sharebox.log", 1, 1)
	if err != nil {
		t.Fatalf("new file writer: %v", err)
	}
	if err := fw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := fw.Write([]byte("late")); !errors.Is(err, os.ErrClosed) {
		t.Fatalf("expected os.ErrClosed, got %v", err)
	}
}
