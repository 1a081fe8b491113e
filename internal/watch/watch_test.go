package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherDebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.nup")
	if err := os.WriteFile(path, []byte("v0"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	calls := make(chan string, 10)
	w, err := New(path, func(p string) { calls <- p }, Options{Debounce: 100 * time.Millisecond})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	defer w.Stop()

	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte{'v', byte('1' + i)}, 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	// unrelated files are ignored
	if err := os.WriteFile(filepath.Join(dir, "b.nup"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case got := <-calls:
		if got != w.Path() {
			t.Fatalf("handler path = %s, want %s", got, w.Path())
		}
	case <-time.After(5 * time.Second):
		t.Fatal("handler never called")
	}
	select {
	case <-calls:
		t.Fatal("burst of writes produced more than one call")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestStopIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.nup")
	w, err := New(path, nil, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	w.Start(context.Background())
	w.Stop()
	w.Stop()
}
