package snapcache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vmihailenco/msgpack/v5"
)

func TestPutGet(t *testing.T) {
	c, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	key := KeyFor("/w", "/w/a.nup")
	if _, ok, err := c.Get(key); err != nil || ok {
		t.Fatalf("empty cache Get = %v, %v", ok, err)
	}
	raw := []byte(`{"errors":[]}`)
	if err := c.Put(key, Entry{WorkDir: "/w", Path: "/w/a.nup", TextSum: SumText("thm t : P"), Raw: raw}); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, ok, err := c.Get(key)
	if err != nil || !ok {
		t.Fatalf("Get = %v, %v", ok, err)
	}
	if string(got.Raw) != string(raw) || got.Path != "/w/a.nup" || got.CreatedAt.IsZero() || got.TextSum != SumText("thm t : P") {
		t.Fatalf("entry = %+v", got)
	}
}

func TestKeyForSeparatesFields(t *testing.T) {
	a := KeyFor("/wa", "b")
	b := KeyFor("/w", "ab")
	if a == b {
		t.Fatal("field boundaries must matter")
	}
	if KeyFor("/w", "a") != KeyFor("/w", "a") {
		t.Fatal("keys must be deterministic")
	}
}

func TestSchemaMismatchIsMiss(t *testing.T) {
	dir := t.TempDir()
	c, err := Open(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	key := KeyFor("/w", "/w/a.nup")
	stale, err := msgpack.Marshal(&Entry{Schema: schemaVersion + 1, Raw: []byte("{}")})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(p, stale, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, ok, err := c.Get(key); ok || err != nil {
		t.Fatalf("stale schema Get = %v, %v", ok, err)
	}
}

func TestCorruptEntryIsError(t *testing.T) {
	c, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	key := KeyFor("", "")
	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(p, []byte{0xc1}, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := c.Get(key); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestNilCacheIsNoop(t *testing.T) {
	var c *Cache
	if err := c.Put(Key{}, Entry{}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, ok, err := c.Get(Key{}); ok || err != nil {
		t.Fatalf("Get = %v, %v", ok, err)
	}
	if err := c.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}
}

func TestDropAll(t *testing.T) {
	c, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	key := KeyFor("/w", "a")
	if err := c.Put(key, Entry{Raw: []byte("{}")}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := c.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}
	if _, ok, _ := c.Get(key); ok {
		t.Fatal("entry survived DropAll")
	}
	if err := c.DropAll(); err != nil {
		t.Fatalf("second DropAll: %v", err)
	}
}

func TestDefaultDirHonoursXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")
	dir, err := DefaultDir()
	if err != nil {
		t.Fatalf("DefaultDir: %v", err)
	}
	if dir != filepath.Join("/tmp/xdg", "nuprlnav") {
		t.Fatalf("dir = %s", dir)
	}
}
