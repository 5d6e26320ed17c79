package engine

import (
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/drummonds/rotatepdf/config"
	"github.com/drummonds/rotatepdf/engine/pdfdoc"
	"github.com/drummonds/rotatepdf/intake"
	"github.com/drummonds/rotatepdf/session"
)

func TestMain(m *testing.M) {
	Logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
	os.Exit(m.Run())
}

func newTestStore() *SessionStore {
	return NewSessionStore(func() *session.Session {
		return session.New(intake.New(0), pdfdoc.NewPDFCPU())
	})
}

func TestSessionStoreLifecycle(t *testing.T) {
	store := newTestStore()

	id, s, err := store.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if s.State() != session.Empty {
		t.Errorf("New session should be Empty, got %s", s.State())
	}

	got, ok := store.Get(id)
	if !ok || got != s {
		t.Fatal("Expected to find the created session")
	}
	if _, ok := store.Get("missing"); ok {
		t.Error("Unknown id should not be found")
	}
	if store.Len() != 1 {
		t.Errorf("Expected 1 session, got %d", store.Len())
	}
	if !store.Delete(id) {
		t.Error("Delete should report an existing session")
	}
	if store.Delete(id) {
		t.Error("Second delete should report nothing removed")
	}
}

func TestSessionStoreSweep(t *testing.T) {
	store := newTestStore()
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }

	staleID, _, _ := store.Create()
	clock = clock.Add(20 * time.Minute)
	freshID, _, _ := store.Create()
	clock = clock.Add(15 * time.Minute)

	if removed := store.Sweep(30 * time.Minute); removed != 1 {
		t.Fatalf("Expected 1 session swept, got %d", removed)
	}
	if _, ok := store.Get(staleID); ok {
		t.Error("Stale session should be gone")
	}
	if _, ok := store.Get(freshID); !ok {
		t.Error("Fresh session should survive")
	}

	// Get refreshes the idle timer
	clock = clock.Add(29 * time.Minute)
	store.Get(freshID)
	clock = clock.Add(29 * time.Minute)
	if removed := store.Sweep(30 * time.Minute); removed != 0 {
		t.Errorf("Recently used session was swept")
	}
}

func TestSessionStoreConcurrentAccess(t *testing.T) {
	store := newTestStore()
	var wg sync.WaitGroup
	ids := make(chan string, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, _, err := store.Create()
			if err != nil {
				t.Error(err)
				return
			}
			store.Get(id)
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		if seen[id] {
			t.Errorf("Duplicate session id %s", id)
		}
		seen[id] = true
	}
	if store.Len() != 50 {
		t.Errorf("Expected 50 sessions, got %d", store.Len())
	}
}

func TestSweepJobFunc(t *testing.T) {
	handler := NewServerHandler(config.ServerConfig{SessionIdleMinutes: 1}, nil, nil, nil)
	clock := time.Now()
	handler.Sessions.now = func() time.Time { return clock }
	handler.Sessions.Create()

	clock = clock.Add(2 * time.Minute)
	handler.sweepJobFunc()
	if handler.Sessions.Len() != 0 {
		t.Errorf("Expected idle session to be swept, %d left", handler.Sessions.Len())
	}
}

func TestInitializeSchedules(t *testing.T) {
	handler := NewServerHandler(config.ServerConfig{SweepInterval: 5, JobRetentionHours: 24}, nil, nil, nil)
	c := handler.InitializeSchedules()
	defer c.Stop()

	// without a ledger only the sweep is scheduled
	if n := len(c.Entries()); n != 1 {
		t.Errorf("Expected 1 scheduled job, got %d", n)
	}
}

func TestStartupChecks(t *testing.T) {
	dir := t.TempDir()
	if webDirectoryChecks(dir) {
		t.Error("Expected missing app.wasm to be reported")
	}
	if err := os.WriteFile(dir+"/app.wasm", []byte("wasm"), 0644); err != nil {
		t.Fatal(err)
	}
	if !webDirectoryChecks(dir) {
		t.Error("Expected app.wasm to be found")
	}

	handler := NewServerHandler(config.ServerConfig{WebDir: dir}, nil, nil, nil)
	if err := handler.StartupChecks(); err != nil {
		t.Errorf("Startup checks without a ledger should pass: %v", err)
	}
}
