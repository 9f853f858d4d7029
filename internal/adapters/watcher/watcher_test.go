package watcher_test

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"sync"
	"testing"
	"time"

	"go.trai.ch/mason/internal/adapters/watcher"
	"go.trai.ch/mason/internal/core/ports"
)

func TestWatcher_DetectsWrite(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "index.md")
	if err := os.WriteFile(path, []byte("v1"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	w, err := watcher.NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Stop() //nolint:errcheck // Best effort cleanup

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx, tmpDir); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	got := make(chan ports.WatchEvent, 1)
	go func() {
		for event := range w.Events() {
			if event.Operation == ports.OpWrite || event.Operation == ports.OpCreate {
				got <- event
				return
			}
		}
	}()

	// Give the watch set a moment to be registered before writing.
	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(path, []byte("v2"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	select {
	case event := <-got:
		if filepath.Base(event.Path) != "index.md" {
			t.Errorf("event path = %q, want index.md", event.Path)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no event received for file write")
	}
}

func TestDebouncer_CoalescesEvents(t *testing.T) {
	var (
		mu      sync.Mutex
		batches [][]string
	)
	done := make(chan struct{}, 1)

	d := watcher.NewDebouncer(30*time.Millisecond, func(paths []string) {
		mu.Lock()
		sort.Strings(paths)
		batches = append(batches, paths)
		mu.Unlock()
		done <- struct{}{}
	})

	d.Add("a.md")
	d.Add("b.md")
	d.Add("a.md")

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("debouncer never fired")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(batches) != 1 {
		t.Fatalf("fired %d times, want 1", len(batches))
	}
	if !slices.Equal(batches[0], []string{"a.md", "b.md"}) {
		t.Errorf("batch = %v, want deduplicated [a.md b.md]", batches[0])
	}
}

func TestDebouncer_Flush(t *testing.T) {
	var (
		mu    sync.Mutex
		paths []string
	)
	d := watcher.NewDebouncer(time.Hour, func(batch []string) {
		mu.Lock()
		paths = append(paths, batch...)
		mu.Unlock()
	})

	d.Add("a.md")
	d.Flush()

	mu.Lock()
	defer mu.Unlock()
	if !slices.Equal(paths, []string{"a.md"}) {
		t.Errorf("flushed paths = %v, want [a.md]", paths)
	}
}

func TestDebouncer_FlushEmpty(t *testing.T) {
	fired := false
	d := watcher.NewDebouncer(time.Hour, func([]string) { fired = true })

	d.Flush()
	if fired {
		t.Error("Flush with no pending paths invoked the callback")
	}
}
