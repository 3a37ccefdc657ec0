package cache

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"time"
)

// entryExt is the file suffix of cache entries. Clear only removes files
// with this suffix so a misconfigured cache dir does not lose user files.
const entryExt = ".entry"

// headerLen is the size of the expiry prefix: Unix nanoseconds, big endian,
// zero for no expiry.
const headerLen = 8

// FileCache stores each entry as one file under dir, fanned out into
// 256 subdirectories by the first byte of the key hash.
type FileCache struct {
	dir string
}

// NewFileCache opens (and creates) a file cache rooted at dir.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir}, nil
}

func (c *FileCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	if len(raw) < headerLen {
		_ = os.Remove(path)
		return nil, false, nil
	}
	if exp := int64(binary.BigEndian.Uint64(raw)); exp != 0 && time.Now().UnixNano() > exp {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return raw[headerLen:], true, nil
}

// Set writes through a temp file and a rename, so concurrent CLI runs never
// read a half-written entry.
func (c *FileCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	buf := make([]byte, headerLen+len(data))
	if ttl > 0 {
		binary.BigEndian.PutUint64(buf, uint64(time.Now().Add(ttl).UnixNano()))
	}
	copy(buf[headerLen:], data)

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(buf); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (c *FileCache) Delete(_ context.Context, key string) error {
	if err := os.Remove(c.path(key)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Dir returns the cache root.
func (c *FileCache) Dir() string { return c.dir }

// Clear removes every entry and reports how many it removed. Emptied
// fan-out directories go too; the root stays.
func (c *FileCache) Clear() (int, error) {
	matches, err := filepath.Glob(filepath.Join(c.dir, "*", "*"+entryExt))
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, m := range matches {
		if os.Remove(m) == nil {
			removed++
		}
	}
	subdirs, _ := os.ReadDir(c.dir)
	for _, d := range subdirs {
		if d.IsDir() {
			_ = os.Remove(filepath.Join(c.dir, d.Name())) // fails unless empty
		}
	}
	return removed, nil
}

func (c *FileCache) Close() error { return nil }

func (c *FileCache) path(key string) string {
	h := Hash([]byte(key))
	return filepath.Join(c.dir, h[:2], h[2:]+entryExt)
}

var _ Cache = (*FileCache)(nil)
