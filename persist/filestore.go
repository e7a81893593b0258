package persist

import (
	"bufio"
	"encoding/hex"
	"errors"
	"os"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sys/unix"
)

// FileStore is an append-log key/value store with periodic compaction,
// grounded on the teacher's single-writer-file discipline in
// services/hal/internal/devices/ltc4015adpt (one open fd, one mutex, one
// writer goroutine). Single-writer safety across processes is enforced
// with unix.Flock rather than a sentinel lock file, since golang.org/x/sys
// is already a teacher dependency and Flock is the idiomatic host-side
// equivalent of the MCU's single-threaded cooperative loop.
type FileStore struct {
	mu   sync.RWMutex
	path string
	f    *os.File
	data map[string]string // hex-encoded values, so any []byte round-trips
}

// Record separator for the append log: "<key>\t<hex-value>\n".
const recordSep = '\t'

// Open opens or creates the log file at path, takes an exclusive flock,
// and replays it into memory. The returned FileStore owns the fd until
// Close is called.
func Open(path string) (*FileStore, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, err
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		return nil, errors.New("persist: store already locked: " + err.Error())
	}
	fs := &FileStore{path: path, f: f, data: make(map[string]string)}
	if err := fs.replay(); err != nil {
		f.Close()
		return nil, err
	}
	return fs, nil
}

func (fs *FileStore) replay() error {
	if _, err := fs.f.Seek(0, 0); err != nil {
		return err
	}
	sc := bufio.NewScanner(fs.f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := sc.Text()
		i := strings.IndexByte(line, recordSep)
		if i < 0 {
			continue // corrupt/partial trailing record, skip
		}
		key, hexVal := line[:i], line[i+1:]
		if hexVal == "" {
			delete(fs.data, key) // tombstone
			continue
		}
		fs.data[key] = hexVal
	}
	return sc.Err()
}

// Close closes the log file, which releases the lock. It does not
// compact the log.
func (fs *FileStore) Close() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.f.Close()
}

func (fs *FileStore) getRaw(key string) (string, bool) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	v, ok := fs.data[key]
	return v, ok
}

func (fs *FileStore) setRaw(key string, v []byte) error {
	hexVal := hex.EncodeToString(v)
	fs.mu.Lock()
	fs.data[key] = hexVal
	line := key + string(recordSep) + hexVal + "\n"
	_, err := fs.f.WriteString(line)
	fs.mu.Unlock()
	return err
}

// Compact rewrites the log from the in-memory snapshot, dropping
// superseded records. It is not run on every write, and the runtime's
// 500ms save-debounce flush does not call it.
func (fs *FileStore) Compact() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	tmp := fs.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	for k, v := range fs.data {
		if _, err := w.WriteString(k + string(recordSep) + v + "\n"); err != nil {
			f.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		return err
	}
	oldF := fs.f
	if err := os.Rename(tmp, fs.path); err != nil {
		f.Close()
		return err
	}
	fs.f = f
	oldF.Close()
	return nil
}

func (fs *FileStore) GetBool(key string) (bool, bool) {
	raw, ok := fs.getRaw(key)
	if !ok {
		return false, false
	}
	b, err := hex.DecodeString(raw)
	if err != nil || len(b) != 1 {
		return false, false
	}
	return b[0] != 0, true
}

func (fs *FileStore) SetBool(key string, v bool) error {
	if v {
		return fs.setRaw(key, []byte{1})
	}
	return fs.setRaw(key, []byte{0})
}

func (fs *FileStore) GetInt8(key string) (int8, bool) {
	raw, ok := fs.getRaw(key)
	if !ok {
		return 0, false
	}
	b, err := hex.DecodeString(raw)
	if err != nil || len(b) != 1 {
		return 0, false
	}
	return int8(b[0]), true
}

func (fs *FileStore) SetInt8(key string, v int8) error {
	return fs.setRaw(key, []byte{byte(v)})
}

func (fs *FileStore) GetInt32(key string) (int32, bool) {
	raw, ok := fs.getRaw(key)
	if !ok {
		return 0, false
	}
	b, err := hex.DecodeString(raw)
	if err != nil || len(b) != 4 {
		return 0, false
	}
	n := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16 | int32(b[3])<<24
	return n, true
}

func (fs *FileStore) SetInt32(key string, v int32) error {
	b := []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
	return fs.setRaw(key, b)
}

func (fs *FileStore) GetString(key string) (string, bool) {
	raw, ok := fs.getRaw(key)
	if !ok {
		return "", false
	}
	b, err := hex.DecodeString(raw)
	if err != nil {
		return "", false
	}
	return string(b), true
}

func (fs *FileStore) SetString(key string, v string) error {
	return fs.setRaw(key, []byte(v))
}

func (fs *FileStore) GetBytes(key string) ([]byte, bool) {
	raw, ok := fs.getRaw(key)
	if !ok {
		return nil, false
	}
	b, err := hex.DecodeString(raw)
	if err != nil {
		return nil, false
	}
	return b, true
}

func (fs *FileStore) SetBytes(key string, v []byte) error {
	return fs.setRaw(key, v)
}

var _ Store = (*FileStore)(nil)

// FormatInt32Key is a convenience for callers building dynamic keys
// (e.g. a history ring's "<key>_<slot>" addressing, spec.md §4.8).
func FormatInt32Key(base string, suffix int) string {
	return base + "_" + strconv.Itoa(suffix)
}
