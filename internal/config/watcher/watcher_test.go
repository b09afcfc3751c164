package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dshills/richcore/internal/config"
)

const minimalConfig = `
log_level = "%s"

[[schema.nodes]]
name = "doc"
`

func writeConfig(t *testing.T, path, level string) {
	t.Helper()
	data := []byte(fmt.Sprintf(minimalConfig, level))
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "richcore.toml")
	writeConfig(t, path, "info")

	got := make(chan *config.Config, 4)
	w, err := New(path, func(cfg *config.Config, err error) {
		if err == nil {
			got <- cfg
		}
	}, WithDebounce(10*time.Millisecond))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	writeConfig(t, path, "debug")

	select {
	case cfg := <-got:
		if cfg.LogLevel != "debug" {
			t.Errorf("expected log level debug, got %q", cfg.LogLevel)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "richcore.toml")
	writeConfig(t, path, "info")

	calls := make(chan struct{}, 4)
	w, err := New(path, func(*config.Config, error) {
		calls <- struct{}{}
	}, WithDebounce(10*time.Millisecond))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-calls:
		t.Error("expected no reload for unrelated file")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_ReportsLoadErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "richcore.toml")
	writeConfig(t, path, "info")

	errs := make(chan error, 4)
	w, err := New(path, func(cfg *config.Config, err error) {
		if err != nil {
			if cfg != nil {
				t.Error("expected nil config with error")
			}
			errs <- err
		}
	}, WithDebounce(10*time.Millisecond))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("log_level = [unterminated"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-errs:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for load error")
	}
}

func TestWatcher_CustomLoader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "richcore.toml")
	writeConfig(t, path, "info")

	loaded := make(chan string, 4)
	loader := func(p string) (*config.Config, error) {
		loaded <- p
		return &config.Config{LogLevel: "warn"}, nil
	}
	w, err := New(path, func(*config.Config, error) {}, WithDebounce(0), WithLoader(loader))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	writeConfig(t, path, "error")

	select {
	case p := <-loaded:
		if p != w.Path() {
			t.Errorf("expected loader path %q, got %q", w.Path(), p)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for loader")
	}
}

func TestWatcher_CloseTwice(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "richcore.toml")
	writeConfig(t, path, "info")

	w, err := New(path, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := w.Close(); err != ErrWatcherClosed {
		t.Errorf("expected ErrWatcherClosed, got %v", err)
	}
}
