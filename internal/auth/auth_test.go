package auth

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func newMemoryManager(t *testing.T, opts Options) *Manager {
	t.Helper()
	m, err := NewManager(NewMemoryStore(), opts)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}

func TestNewManagerRequiresPassword(t *testing.T) {
	if _, err := NewManager(NewMemoryStore(), Options{}); !errors.Is(err, ErrNoPassword) {
		t.Fatalf("expected ErrNoPassword, got %v", err)
	}
	if _, err := NewManager(NewMemoryStore(), Options{PasswordHash: "not-bcrypt"}); err == nil {
		t.Fatal("expected error for malformed hash")
	}
}

func TestLoginWithPlainPassword(t *testing.T) {
	m := newMemoryManager(t, Options{Password: "secret"})
	ctx := context.Background()

	if _, err := m.Login(ctx, "wrong"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
	sess, err := m.Login(ctx, "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if sess.Token == "" {
		t.Fatal("expected token")
	}
	if !sess.ExpiresAt.IsZero() {
		t.Fatalf("expected permanent session, got expiry %s", sess.ExpiresAt)
	}
	if _, err := m.Validate(ctx, sess.Token); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if err := m.Logout(ctx, sess.Token); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := m.Validate(ctx, sess.Token); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after logout, got %v", err)
	}
}

func TestLoginWithHashPrefersHash(t *testing.T) {
	hash, err := HashPassword("hashed")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	m := newMemoryManager(t, Options{Password: "plain", PasswordHash: hash})
	if m.CheckPassword("plain") {
		t.Fatal("plain password should be ignored when a hash is set")
	}
	if !m.CheckPassword("hashed") {
		t.Fatal("hashed password rejected")
	}
}

func TestValidateExpiredSession(t *testing.T) {
	m := newMemoryManager(t, Options{Password: "pw", TTL: time.Hour})
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	sess, err := m.Login(ctx, "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if want := now.Add(time.Hour); !sess.ExpiresAt.Equal(want) {
		t.Fatalf("expires = %s, want %s", sess.ExpiresAt, want)
	}
	now = now.Add(2 * time.Hour)
	if _, err := m.Validate(ctx, sess.Token); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected expired session to be rejected, got %v", err)
	}
}

func TestValidateBlankToken(t *testing.T) {
	m := newMemoryManager(t, Options{Password: "pw"})
	if _, err := m.Validate(context.Background(), "  "); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "data", "sessions.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer store.Close()
	exerciseStore(t, store)
}

func TestSQLiteStoreUsesWALAndBusyTimeout(t *testing.T) {
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer store.Close()

	var mode string
	if err := store.db.QueryRow(`PRAGMA journal_mode`).Scan(&mode); err != nil {
		t.Fatalf("journal_mode: %v", err)
	}
	if !strings.EqualFold(mode, "wal") {
		t.Fatalf("expected WAL journal, got %q", mode)
	}
	var timeout int
	if err := store.db.QueryRow(`PRAGMA busy_timeout`).Scan(&timeout); err != nil {
		t.Fatalf("busy_timeout: %v", err)
	}
	if timeout != 5000 {
		t.Fatalf("expected busy_timeout 5000, got %d", timeout)
	}
}

func TestSQLiteStoreConcurrentAccess(t *testing.T) {
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	now := time.Now().UTC()
	seed := Session{Token: "seed", CreatedAt: now}
	if err := store.Put(ctx, seed); err != nil {
		t.Fatalf("Put seed: %v", err)
	}

	const workers, rounds = 8, 50
	errs := make(chan error, 2*workers*rounds)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(2)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				sess := Session{Token: fmt.Sprintf("tok-%d-%d", w, i), CreatedAt: now}
				if err := store.Put(ctx, sess); err != nil {
					errs <- err
				}
			}
		}(w)
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				if _, err := store.Get(ctx, "seed"); err != nil {
					errs <- err
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	failed := 0
	var first error
	for err := range errs {
		if first == nil {
			first = err
		}
		failed++
	}
	if failed > 0 {
		t.Fatalf("%d concurrent session calls failed, first: %v", failed, first)
	}

	var count int
	if err := store.db.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if want := workers*rounds + 1; count != want {
		t.Fatalf("expected %d sessions, got %d", want, count)
	}
}

func TestSQLiteStoreInMemory(t *testing.T) {
	store, err := OpenSQLiteMemory()
	if err != nil {
		t.Fatalf("OpenSQLiteMemory: %v", err)
	}
	defer store.Close()
	exerciseStore(t, store)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	permanent := Session{Token: "permanent", CreatedAt: base}
	expiring := Session{Token: "expiring", CreatedAt: base, ExpiresAt: base.Add(time.Minute)}
	for _, s := range []Session{permanent, expiring} {
		if err := store.Put(ctx, s); err != nil {
			t.Fatalf("Put(%s): %v", s.Token, err)
		}
	}

	got, err := store.Get(ctx, "expiring")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.ExpiresAt.Equal(expiring.ExpiresAt) || !got.CreatedAt.Equal(base) {
		t.Fatalf("unexpected session %+v", got)
	}
	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}

	removed, err := store.Prune(ctx, base.Add(time.Hour))
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != 1 {
		t.Fatalf("pruned %d sessions, want 1", removed)
	}
	if _, err := store.Get(ctx, "permanent"); err != nil {
		t.Fatalf("permanent session pruned: %v", err)
	}
	if err := store.Delete(ctx, "permanent"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, "permanent"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected deleted session to be gone, got %v", err)
	}
}

func TestSignerRoundTrip(t *testing.T) {
	s := NewSigner("key")
	signed := s.Sign("success|File a.txt uploaded")
	got, err := s.Verify(signed)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got != "success|File a.txt uploaded" {
		t.Fatalf("got %q", got)
	}
	if _, err := NewSigner("other").Verify(signed); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("expected ErrBadSignature for wrong key, got %v", err)
	}
	if _, err := s.Verify("garbage"); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("expected ErrBadSignature, got %v", err)
	}
}
