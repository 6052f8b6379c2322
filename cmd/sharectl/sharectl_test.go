package main

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/Its-donkey/sharebox/internal/auth"
	"github.com/Its-donkey/sharebox/internal/files"
	"github.com/Its-donkey/sharebox/internal/server"
	"github.com/Its-donkey/sharebox/internal/sharedtext"
)

const testPassword = "hunter2"

func startServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	root := t.TempDir()
	uploadDir := filepath.Join(root, "uploads")
	store, err := files.New(uploadDir, files.Options{Hidden: []string{".*"}})
	if err != nil {
		t.Fatal(err)
	}
	text, err := sharedtext.New(filepath.Join(root, "text.txt"))
	if err != nil {
		t.Fatal(err)
	}
	manager, err := auth.NewManager(auth.NewMemoryStore(), auth.Options{Password: testPassword})
	if err != nil {
		t.Fatal(err)
	}
	srv, err := server.New(server.Options{Files: store, Text: text, Auth: manager})
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, uploadDir
}

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestUploadListRemove(t *testing.T) {
	ts, uploadDir := startServer(t)
	common := []string{"--server", ts.URL, "--password", testPassword}

	out, err := runCLI(t, "", append([]string{"ls"}, common...)...)
	if err != nil {
		t.Fatalf("ls: %v", err)
	}
	if !strings.Contains(out, "No files yet") {
		t.Fatalf("expected empty listing, got %q", out)
	}

	local := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(local, []byte("remember the milk"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err = runCLI(t, "", append([]string{"upload", "-q", local}, common...)...)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !strings.Contains(out, "File notes.txt uploaded") {
		t.Fatalf("unexpected upload output %q", out)
	}
	data, err := os.ReadFile(filepath.Join(uploadDir, "notes.txt"))
	if err != nil || string(data) != "remember the milk" {
		t.Fatalf("stored file %q err %v", data, err)
	}

	out, err = runCLI(t, "", append([]string{"ls"}, common...)...)
	if err != nil {
		t.Fatalf("ls: %v", err)
	}
	if !strings.Contains(out, "NAME") || !strings.Contains(out, "notes.txt") || !strings.Contains(out, "17 B") {
		t.Fatalf("unexpected listing %q", out)
	}

	out, err = runCLI(t, "", append([]string{"rm", "--yes", "notes.txt"}, common...)...)
	if err != nil {
		t.Fatalf("rm: %v", err)
	}
	if !strings.Contains(out, "File notes.txt deleted") {
		t.Fatalf("unexpected rm output %q", out)
	}

	_, err = runCLI(t, "", append([]string{"rm", "--yes", "notes.txt"}, common...)...)
	if err == nil || err.Error() != "File not found" {
		t.Fatalf("expected server message as error, got %v", err)
	}
}

func TestTextSetAndGet(t *testing.T) {
	ts, _ := startServer(t)
	common := []string{"--server", ts.URL, "--password", testPassword}

	if _, err := runCLI(t, "", append([]string{"text", "set", "   "}, common...)...); err == nil || err.Error() != "Text cannot be empty" {
		t.Fatalf("expected empty text error, got %v", err)
	}

	out, err := runCLI(t, "  from stdin\n", append([]string{"text", "set", "-"}, common...)...)
	if err != nil {
		t.Fatalf("text set: %v", err)
	}
	if !strings.Contains(out, "Text shared") {
		t.Fatalf("unexpected output %q", out)
	}

	out, err = runCLI(t, "", append([]string{"text", "get"}, common...)...)
	if err != nil {
		t.Fatalf("text get: %v", err)
	}
	if strings.TrimSpace(out) != "from stdin" {
		t.Fatalf("unexpected text %q", out)
	}
}

func TestWrongPassword(t *testing.T) {
	ts, _ := startServer(t)
	_, err := runCLI(t, "", "ls", "--server", ts.URL, "--password", "nope")
	if err == nil || !strings.Contains(err.Error(), "Wrong password") {
		t.Fatalf("expected login failure, got %v", err)
	}
}

func TestMissingPassword(t *testing.T) {
	t.Setenv("SHAREBOX_PASSWORD", "")
	_, err := runCLI(t, "", "ls", "--server", "http://127.0.0.1:1")
	if err == nil || !strings.Contains(err.Error(), "no password") {
		t.Fatalf("expected missing password error, got %v", err)
	}
}

func TestHashPassword(t *testing.T) {
	out, err := runCLI(t, "", "hash-password", "s3cret")
	if err != nil {
		t.Fatalf("hash-password: %v", err)
	}
	hash := strings.TrimSpace(out)
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")); err != nil {
		t.Fatalf("hash does not verify: %v", err)
	}
}
