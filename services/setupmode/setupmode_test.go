package setupmode

import "testing"

func TestToggleReachesThreshold(t *testing.T) {
	d := NewDoor(3, 60)
	d.lastToggle = d.bootAt.Add(-2 * RearmWindow) // pretend the previous toggle is long past

	if d.Toggle() {
		t.Fatalf("1st toggle should not yet enter setup")
	}
	d.lastToggle = d.bootAt.Add(-2 * RearmWindow)
	if d.Toggle() {
		t.Fatalf("2nd toggle should not yet enter setup")
	}
	d.lastToggle = d.bootAt.Add(-2 * RearmWindow)
	if !d.Toggle() {
		t.Fatalf("3rd toggle should reach the threshold and enter setup")
	}
}

func TestToggleDebounced(t *testing.T) {
	d := NewDoor(2, 60)
	d.lastToggle = d.bootAt.Add(-2 * RearmWindow)
	d.Toggle()
	if d.Toggle() {
		t.Fatalf("a second toggle within the rearm window should be ignored, not counted")
	}
	if d.count != 1 {
		t.Fatalf("debounced toggle should not have incremented count, got %d", d.count)
	}
}

type fakeStore struct {
	int8s map[string]int8
}

func newFakeStore() *fakeStore { return &fakeStore{int8s: map[string]int8{}} }

func (f *fakeStore) GetBool(string) (bool, bool)        { return false, false }
func (f *fakeStore) SetBool(string, bool) error         { return nil }
func (f *fakeStore) GetInt8(k string) (int8, bool)      { v, ok := f.int8s[k]; return v, ok }
func (f *fakeStore) SetInt8(k string, v int8) error     { f.int8s[k] = v; return nil }
func (f *fakeStore) GetInt32(string) (int32, bool)      { return 0, false }
func (f *fakeStore) SetInt32(string, int32) error       { return nil }
func (f *fakeStore) GetString(string) (string, bool)    { return "", false }
func (f *fakeStore) SetString(string, string) error     { return nil }
func (f *fakeStore) GetBytes(string) ([]byte, bool)     { return nil, false }
func (f *fakeStore) SetBytes(string, []byte) error      { return nil }

func TestEnterAndClearSetup(t *testing.T) {
	store := newFakeStore()
	if IsSetup(store) {
		t.Fatalf("fresh store should not report setup mode")
	}
	EnterSetup(store)
	if !IsSetup(store) {
		t.Fatalf("after EnterSetup, IsSetup should be true")
	}
	ClearSetup(store)
	if IsSetup(store) {
		t.Fatalf("after ClearSetup, IsSetup should be false")
	}
}

func TestConfigErrorForcesSetup(t *testing.T) {
	store := newFakeStore()
	if !ConfigError(store, 0, nil) {
		t.Fatalf("zero accessory count should force setup mode")
	}
	if !IsSetup(store) {
		t.Fatalf("ConfigError should have persisted the setup flag")
	}
}
