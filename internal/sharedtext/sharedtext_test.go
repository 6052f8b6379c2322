package sharedtext

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestGetBeforeSetIsEmpty(t *testing.T) {
	store, err := New(filepath.Join(t.TempDir(), "shared", "text.txt"))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	got, err := store.Get()
	if err != nil || got != "" {
		t.Fatalf("expected empty text, got %q %v", got, err)
	}
}

func TestSetTrimsAndReplaces(t *testing.T) {
	store, err := New(filepath.Join(t.TempDir(), "text.txt"))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := store.Set("first"); err != nil {
		t.Fatalf("set first: %v", err)
	}
	saved, err := store.Set("  second line\n多字节  \n")
	if err != nil {
		t.Fatalf("set second: %v", err)
	}
	if saved != "second line\n多字节" {
		t.Fatalf("unexpected saved text %q", saved)
	}
	got, err := store.Get()
	if err != nil || got != saved {
		t.Fatalf("get = %q %v, want %q", got, err, saved)
	}
}

func TestSetRejectsBlank(t *testing.T) {
	dir := t.TempDir()
	store, err := New(filepath.Join(dir, "text.txt"))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := store.Set("keep"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, err := store.Set(" \n\t "); !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
	if got, _ := store.Get(); got != "keep" {
		t.Fatalf("blank set must not overwrite, got %q", got)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("expected only the text file, found %d entries", len(entries))
	}
}
