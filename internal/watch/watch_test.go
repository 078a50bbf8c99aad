package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/moocn/pkg/errors"
)

func collect(t *testing.T, w *Watcher) (<-chan string, context.CancelFunc) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	changed := make(chan string, 16)
	go w.Run(ctx, func(path string) { changed <- filepath.Base(path) })
	t.Cleanup(func() {
		cancel()
		w.Close()
	})
	return changed, cancel
}

func expect(t *testing.T, changed <-chan string, want string) {
	t.Helper()
	select {
	case got := <-changed:
		if got != want {
			t.Fatalf("changed = %q, want %q", got, want)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("no change reported for %s", want)
	}
}

func TestWatchDirectory(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	changed, _ := collect(t, w)

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sales.csv"), []byte("x,a\n1,2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	expect(t, changed, "sales.csv")
}

func TestWatchSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sales.json")
	if err := os.WriteFile(path, []byte(`{}`), 0o644); err != nil {
		t.Fatal(err)
	}
	w, err := New(path, WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	changed, _ := collect(t, w)

	if err := os.WriteFile(filepath.Join(dir, "other.json"), []byte(`{}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(`{"x":[1]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	expect(t, changed, "sales.json")
}

func TestWatchCoalescesBursts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "live.yaml")
	w, err := New(dir, WithDebounce(100*time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	changed, _ := collect(t, w)

	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte("x: [1]\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	expect(t, changed, "live.yaml")
	select {
	case got := <-changed:
		t.Fatalf("unexpected second report %q", got)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatchMissingPath(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Fatalf("err = %v, want FILE_NOT_FOUND", err)
	}
}
