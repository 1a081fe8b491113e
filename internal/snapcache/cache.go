// Package snapcache keeps the last good checker report per document on
// disk, so a session that starts while the checker is broken still has
// something to navigate.
package snapcache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// bump when Entry changes shape
const schemaVersion uint16 = 1

// Key identifies one document checked from one working directory.
type Key [32]byte

// KeyFor hashes a (workdir, path) pair. Fields are length-prefixed so
// different splits of the same bytes never collide.
func KeyFor(workDir, path string) Key {
	h := sha256.New()
	var n [8]byte
	for _, field := range []string{workDir, path} {
		binary.LittleEndian.PutUint64(n[:], uint64(len(field)))
		_, _ = h.Write(n[:])
		_, _ = h.Write([]byte(field))
	}
	var out Key
	copy(out[:], h.Sum(nil))
	return out
}

// SumText hashes a document body for Entry.TextSum.
func SumText(text string) [32]byte {
	return sha256.Sum256([]byte(text))
}

func (k Key) String() string {
	return hex.EncodeToString(k[:])
}

// Entry is one cached checker report.
type Entry struct {
	Schema    uint16    `msgpack:"schema"`
	WorkDir   string    `msgpack:"workdir"`
	Path      string    `msgpack:"path"`
	TextSum   [32]byte  `msgpack:"text_sum"` // sha256 of the checked text
	CreatedAt time.Time `msgpack:"created_at"`
	Raw       []byte    `msgpack:"raw"`
}

// Cache stores entries under dir. A nil *Cache is valid and stores nothing.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

// DefaultDir returns $XDG_CACHE_HOME/nuprlnav, falling back to ~/.cache.
func DefaultDir() (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, "nuprlnav"), nil
}

// Open creates the cache directory. An empty dir means DefaultDir.
func Open(dir string) (*Cache, error) {
	if dir == "" {
		var err error
		if dir, err = DefaultDir(); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("snapcache: %w", err)
	}
	return &Cache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *Cache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *Cache) pathFor(key Key) string {
	return filepath.Join(c.dir, "snapshots", key.String()+".mp")
}

// Put writes an entry atomically.
func (c *Cache) Put(key Key, e Entry) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	e.Schema = schemaVersion
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if err := msgpack.NewEncoder(f).Encode(&e); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, p); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// Get reads an entry. Missing files and entries of another schema are
// misses, not errors.
func (c *Cache) Get(key Key) (Entry, bool, error) {
	if c == nil {
		return Entry{}, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Entry{}, false, nil
		}
		return Entry{}, false, err
	}
	defer f.Close()

	var e Entry
	if err := msgpack.NewDecoder(f).Decode(&e); err != nil {
		return Entry{}, false, fmt.Errorf("snapcache: decode %s: %w", key, err)
	}
	if e.Schema != schemaVersion {
		return Entry{}, false, nil
	}
	return e, true, nil
}

// DropAll removes every entry.
func (c *Cache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshots := filepath.Join(c.dir, "snapshots")
	old := snapshots + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(snapshots, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.RemoveAll(old)
}
