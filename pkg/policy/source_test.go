package policy

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestStaticSource_Load(t *testing.T) {
	id, err := StaticSource("deadbeef").Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if id != "deadbeef" {
		t.Errorf("Load() = %q, want %q", id, "deadbeef")
	}
}

func TestStaticSource_Load_Empty(t *testing.T) {
	_, err := StaticSource("").Load(context.Background())
	if !errors.Is(err, ErrEmptyIdentity) {
		t.Errorf("Load() error = %v, want ErrEmptyIdentity", err)
	}
}

func TestFileSource_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identity")
	if err := os.WriteFile(path, []byte("  cdd01ef066bc6cf2\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	id, err := NewFileSource(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if id != "cdd01ef066bc6cf2" {
		t.Errorf("Load() = %q, want trimmed contents", id)
	}
}

func TestFileSource_Load_Missing(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "nope"))

	_, err := src.Load(context.Background())
	if err == nil {
		t.Fatal("Load() error = nil, want error")
	}
	var lerr *LoadError
	if !errors.As(err, &lerr) {
		t.Fatalf("Load() error type = %T, want *LoadError", err)
	}
	if lerr.Source != "file" {
		t.Errorf("LoadError.Source = %q, want %q", lerr.Source, "file")
	}
}

func TestFileSource_Load_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identity")
	if err := os.WriteFile(path, []byte("\n \n"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := NewFileSource(path).Load(context.Background())
	if !errors.Is(err, ErrEmptyIdentity) {
		t.Errorf("Load() error = %v, want ErrEmptyIdentity", err)
	}
}

func TestFileWatcher_RotatesOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "identity")
	if err := os.WriteFile(path, []byte("v1"), 0o600); err != nil {
		t.Fatal(err)
	}

	source := NewFileSource(path)
	holder := NewHolder("v1")

	rotated := make(chan Identity, 1)
	holder.Subscribe(func(_, new Identity) {
		select {
		case rotated <- new:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := NewFileWatcher(source, holder, nil)
	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx) }()

	// Give the watcher time to install its fsnotify watch.
	time.Sleep(200 * time.Millisecond)

	if err := os.WriteFile(path, []byte("v2"), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case id := <-rotated:
		if id != "v2" {
			t.Errorf("rotated to %q, want %q", id, "v2")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not rotate within 5s")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch() error = %v", err)
	}
}
