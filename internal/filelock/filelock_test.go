package filelock

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestNewDirLockCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports", "nested")

	lock, err := NewDirLock(dir)
	if err != nil {
		t.Fatalf("NewDirLock() error = %v", err)
	}
	if lock.dir != dir {
		t.Errorf("expected dir %s, got %s", dir, lock.dir)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("expected directory %s to exist", dir)
	}
}

func TestDirLockExclusive(t *testing.T) {
	dir := t.TempDir()

	first, err := NewDirLock(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := first.Lock(context.Background()); err != nil {
		t.Fatalf("Lock() error = %v", err)
	}

	second, err := NewDirLock(dir)
	if err != nil {
		t.Fatal(err)
	}
	locked, err := second.TryLock()
	if err != nil {
		t.Fatalf("TryLock() error = %v", err)
	}
	if locked {
		t.Fatal("second lock acquired while first is held")
	}

	if err := first.Unlock(); err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}
	locked, err = second.TryLock()
	if err != nil || !locked {
		t.Fatalf("TryLock() after release = %v, %v; want true, nil", locked, err)
	}
	second.Unlock()
}

func TestDirLockContextTimeout(t *testing.T) {
	dir := t.TempDir()

	holder, _ := NewDirLock(dir)
	if err := holder.Lock(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer holder.Unlock()

	waiter, _ := NewDirLock(dir)
	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	if err := waiter.Lock(ctx); err == nil {
		t.Fatal("expected error when lock is held until the deadline")
	}
}

func TestWithDirLockSerializes(t *testing.T) {
	dir := t.TempDir()
	counter := filepath.Join(dir, "counter")

	const goroutines = 5
	var wg sync.WaitGroup
	var mu sync.Mutex
	active, maxActive := 0, 0

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := WithDirLock(context.Background(), dir, func() error {
				mu.Lock()
				active++
				if active > maxActive {
					maxActive = active
				}
				mu.Unlock()

				data, _ := os.ReadFile(counter)
				time.Sleep(5 * time.Millisecond)
				err := AtomicWrite(counter, append(data, 'x'), 0o644)

				mu.Lock()
				active--
				mu.Unlock()
				return err
			})
			if err != nil {
				t.Errorf("WithDirLock() error = %v", err)
			}
		}()
	}
	wg.Wait()

	data, err := os.ReadFile(counter)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != goroutines {
		t.Errorf("expected %d writes, got %d", goroutines, len(data))
	}
	if maxActive != 1 {
		t.Errorf("expected at most one holder at a time, saw %d", maxActive)
	}
}

func TestWithDirLockPropagatesError(t *testing.T) {
	want := errors.New("boom")
	err := WithDirLock(context.Background(), t.TempDir(), func() error { return want })
	if !errors.Is(err, want) {
		t.Errorf("expected %v, got %v", want, err)
	}
}

func TestAtomicWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "report.md")

	if err := AtomicWrite(path, []byte("first"), 0o644); err != nil {
		t.Fatalf("AtomicWrite() error = %v", err)
	}
	if err := AtomicWrite(path, []byte("second"), 0o600); err != nil {
		t.Fatalf("AtomicWrite() overwrite error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "second" {
		t.Errorf("expected content 'second', got %q", data)
	}

	info, _ := os.Stat(path)
	if info.Mode().Perm() != 0o600 {
		t.Errorf("expected perm 0600, got %v", info.Mode().Perm())
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	for _, e := range entries {
		if filepath.Ext(e.Name()) != ".md" {
			t.Errorf("leftover temp file %s", e.Name())
		}
	}
}

func TestAtomicWriteFailureLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target")
	if err := os.Mkdir(target, 0o755); err != nil {
		t.Fatal(err)
	}
	// a non-empty directory cannot be replaced by rename
	if err := os.WriteFile(filepath.Join(target, "keep"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := AtomicWrite(target, []byte("data"), 0o644); err == nil {
		t.Fatal("expected error renaming over a non-empty directory")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected only the target directory to remain, found %d entries", len(entries))
	}
}
