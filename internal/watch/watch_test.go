package watch

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Its-donkey/sharebox/internal/ui/model"
	"github.com/gorilla/websocket"
)

func TestHubBroadcastAndCancel(t *testing.T) {
	hub := NewHub(nil)
	events, cancel := hub.Subscribe()
	if hub.Clients() != 1 {
		t.Fatalf("expected 1 client, got %d", hub.Clients())
	}

	hub.NotifyFilesChanged("a.txt")
	select {
	case evt := <-events:
		if evt.Type != model.WatchFilesChanged || evt.Name != "a.txt" {
			t.Fatalf("unexpected event %+v", evt)
		}
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}

	cancel()
	cancel()
	if hub.Clients() != 0 {
		t.Fatalf("expected 0 clients after cancel, got %d", hub.Clients())
	}
	if _, ok := <-events; ok {
		t.Fatal("expected channel closed after cancel")
	}
}

func TestHubBroadcastDoesNotBlockOnFullClient(t *testing.T) {
	hub := NewHub(nil)
	_, cancel := hub.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < clientBuf*4; i++ {
			hub.NotifyFilesChanged("x")
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a slow client")
	}
}

func TestHubCloseClosesSubscribers(t *testing.T) {
	hub := NewHub(nil)
	events, _ := hub.Subscribe()
	hub.Close()
	if _, ok := <-events; ok {
		t.Fatal("expected closed channel")
	}
	late, _ := hub.Subscribe()
	if _, ok := <-late; ok {
		t.Fatal("expected subscription after close to be closed")
	}
}

func TestServeHTTPStreamsEvents(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	defer conn.Close()
	if resp.StatusCode != 101 {
		t.Fatalf("expected 101, got %d", resp.StatusCode)
	}

	deadline := time.Now().Add(2 * time.Second)
	for hub.Clients() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never subscribed")
		}
		time.Sleep(10 * time.Millisecond)
	}

	hub.NotifyFilesChanged("report.pdf")

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var evt model.WatchEvent
	if err := conn.ReadJSON(&evt); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if evt.Type != model.WatchFilesChanged || evt.Name != "report.pdf" {
		t.Fatalf("unexpected event %+v", evt)
	}
}

func TestWatcherReportsNewFiles(t *testing.T) {
	dir := t.TempDir()
	hub := NewHub(nil)
	events, cancel := hub.Subscribe()
	defer cancel()

	w := NewWatcher(dir, hub, nil,
		WithDebounce(20*time.Millisecond),
		WithSkip(func(name string) bool { return strings.HasPrefix(name, ".") }),
	)
	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, ".hidden"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "visible.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case evt := <-events:
		if evt.Name != "visible.txt" {
			t.Fatalf("expected visible.txt, got %+v", evt)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no change event")
	}

	stop()
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcherMissingDir(t *testing.T) {
	w := NewWatcher(filepath.Join(t.TempDir(), "missing"), NewHub(nil), nil)
	if err := w.Run(context.Background()); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
