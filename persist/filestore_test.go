package persist

import (
	"path/filepath"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	fs, err := Open(filepath.Join(dir, "state.log"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer fs.Close()

	if err := fs.SetBool("101", true); err != nil {
		t.Fatalf("SetBool: %v", err)
	}
	if err := fs.SetInt32("102", -4200); err != nil {
		t.Fatalf("SetInt32: %v", err)
	}
	if err := fs.SetString("103", "hello"); err != nil {
		t.Fatalf("SetString: %v", err)
	}

	if v, ok := fs.GetBool("101"); !ok || !v {
		t.Fatalf("GetBool = %v,%v, want true,true", v, ok)
	}
	if v, ok := fs.GetInt32("102"); !ok || v != -4200 {
		t.Fatalf("GetInt32 = %v,%v, want -4200,true", v, ok)
	}
	if v, ok := fs.GetString("103"); !ok || v != "hello" {
		t.Fatalf("GetString = %q,%v, want hello,true", v, ok)
	}
}

func TestFileStoreReplaysAcrossOpen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.log")

	fs, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := fs.SetInt8(Key(3, 7), 42); err != nil {
		t.Fatalf("SetInt8: %v", err)
	}
	if err := fs.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	fs2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer fs2.Close()
	if v, ok := fs2.GetInt8(Key(3, 7)); !ok || v != 42 {
		t.Fatalf("GetInt8 after reopen = %v,%v, want 42,true", v, ok)
	}
}

func TestFileStoreFlockRejectsSecondOpen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.log")

	fs, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer fs.Close()

	if _, err := Open(path); err == nil {
		t.Fatalf("expected second Open to fail under flock")
	}
}

func TestFileStoreCompactPreservesLatest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.log")

	fs, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer fs.Close()

	for i := 0; i < 5; i++ {
		if err := fs.SetInt32("200", int32(i)); err != nil {
			t.Fatalf("SetInt32: %v", err)
		}
	}
	if err := fs.Compact(); err != nil {
		t.Fatalf("Compact: %v", err)
	}
	if v, ok := fs.GetInt32("200"); !ok || v != 4 {
		t.Fatalf("GetInt32 after compact = %v,%v, want 4,true", v, ok)
	}
}

func TestPrimeBool(t *testing.T) {
	dir := t.TempDir()
	fs, err := Open(filepath.Join(dir, "state.log"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer fs.Close()

	if got := PrimeBool(fs, "k", true, InitFixed); got != true {
		t.Fatalf("InitFixed with no persisted value = %v, want true", got)
	}

	fs.SetBool("k", false)
	if got := PrimeBool(fs, "k", true, InitLast); got != false {
		t.Fatalf("InitLast = %v, want false", got)
	}
	if got := PrimeBool(fs, "k", true, InitInvLast); got != true {
		t.Fatalf("InitInvLast = %v, want true", got)
	}
}

func TestDebouncerCoalescesWrites(t *testing.T) {
	calls := 0
	d := NewDebouncer(0, func() error { calls++; return nil })
	d.Mark()
	d.Mark()
	d.Mark()
	d.Stop()
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}
