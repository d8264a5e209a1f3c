package driver

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"hilite/internal/source"
	"hilite/internal/token"
)

// Current schema version - increment when DiskPayload format changes
const diskCacheSchemaVersion uint16 = 1

// DiskCache хранит деревья токенов по ключу cacheKey на диске.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload is the cached token tree of one file.
type DiskPayload struct {
	// Schema version for safe invalidation when format changes
	Schema uint16 `msgpack:"v"`

	Lang        string `msgpack:"l"`
	Fingerprint string `msgpack:"g"`
	// Size of the content the tree was built for.
	Size uint32 `msgpack:"s"`

	Tokens []cachedToken `msgpack:"t"`
}

// cachedToken drops Text and the file ID; both come back from the file the
// payload is loaded for.
type cachedToken struct {
	Name     string        `msgpack:"n,omitempty"`
	Alias    string        `msgpack:"a,omitempty"`
	Start    uint32        `msgpack:"s"`
	End      uint32        `msgpack:"e"`
	Children []cachedToken `msgpack:"c,omitempty"`
	// Nested отличает токен без детей от токена с пустым вложенным потоком.
	Nested bool `msgpack:"x,omitempty"`
}

// OpenDiskCache initializes and returns a disk cache at the standard location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return NewDiskCache(filepath.Join(base, app))
}

// NewDiskCache opens a cache rooted at dir, creating it when needed.
func NewDiskCache(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *DiskCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *DiskCache) pathFor(key Digest) string {
	hexKey := hex.EncodeToString(key[:])
	// два уровня, чтобы не держать тысячи файлов в одном каталоге
	return filepath.Join(c.dir, "tokens", hexKey[:2], hexKey+".mp")
}

// Put serializes and writes a payload to the disk cache.
func (c *DiskCache) Put(key Digest, payload *DiskPayload) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	if err = msgpack.NewEncoder(f).Encode(payload); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), p)
}

// Get reads and deserializes a payload from the disk cache. Entries written
// by another schema version are reported as missing.
func (c *DiskCache) Get(key Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, fmt.Errorf("decode cache entry: %w", err)
	}
	if out.Schema != diskCacheSchemaVersion {
		return false, nil
	}
	return true, nil
}

// DropAll invalidates the cache, useful after format changes.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// тривиально: переименуем каталог и удалим
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}

// newPayload converts a token tree for caching.
func newPayload(lang, fingerprint string, size uint32, s token.Stream) *DiskPayload {
	return &DiskPayload{
		Schema:      diskCacheSchemaVersion,
		Lang:        lang,
		Fingerprint: fingerprint,
		Size:        size,
		Tokens:      toCached(s),
	}
}

func toCached(s []token.Token) []cachedToken {
	out := make([]cachedToken, len(s))
	for i, t := range s {
		out[i] = cachedToken{
			Name:   t.Name,
			Alias:  t.Alias,
			Start:  t.Span.Start,
			End:    t.Span.End,
			Nested: t.Children != nil,
		}
		if t.Children != nil {
			out[i].Children = toCached(t.Children)
		}
	}
	return out
}

// Stream rebuilds the token tree for f. It fails when the payload does not
// describe f: wrong size, spans outside the content or a broken partition.
func (p *DiskPayload) Stream(f *source.File) (token.Stream, error) {
	if int(p.Size) != len(f.Content) {
		return nil, fmt.Errorf("cache entry is for %d bytes, file has %d", p.Size, len(f.Content))
	}
	text := f.Text()
	s, err := fromCached(p.Tokens, text, f.ID)
	if err != nil {
		return nil, err
	}
	if err := token.Stream(s).Validate(text, 0); err != nil {
		return nil, fmt.Errorf("cache entry does not match file: %w", err)
	}
	return s, nil
}

func fromCached(ct []cachedToken, text string, file source.FileID) ([]token.Token, error) {
	out := make([]token.Token, len(ct))
	for i, c := range ct {
		if c.Start > c.End || int(c.End) > len(text) {
			return nil, fmt.Errorf("cached span %d-%d out of range", c.Start, c.End)
		}
		out[i] = token.Token{
			Name:  c.Name,
			Alias: c.Alias,
			Text:  text[c.Start:c.End],
			Span:  source.Span{File: file, Start: c.Start, End: c.End},
		}
		if c.Nested {
			children, err := fromCached(c.Children, text, file)
			if err != nil {
				return nil, err
			}
			out[i].Children = children
		}
	}
	return out, nil
}
