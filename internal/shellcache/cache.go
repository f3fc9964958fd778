package shellcache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
)

// diskCache is one on-disk cache namespace: a directory holding one
// meta/body file pair per cached request path.
type diskCache struct {
	dir string
}

func newDiskCache(root, namespace string) *diskCache {
	return &diskCache{dir: filepath.Join(root, namespace)}
}

// entry is a cached response. Body is a private copy; serving it never
// consumes anything shared with the original network response.
type entry struct {
	Status int
	Header http.Header
	Body   []byte
}

type entryMeta struct {
	Path   string      `json:"path"`
	Status int         `json:"status"`
	Header http.Header `json:"header"`
}

func (c *diskCache) init() error {
	return os.MkdirAll(c.dir, 0o755)
}

func (c *diskCache) destroy() error {
	return os.RemoveAll(c.dir)
}

// put stores a response under the request path. The body slice must already
// be a buffered copy owned by the cache.
func (c *diskCache) put(path string, status int, header http.Header, body []byte) error {
	meta, err := json.Marshal(entryMeta{Path: path, Status: status, Header: header})
	if err != nil {
		return fmt.Errorf("marshal cache meta: %w", err)
	}

	key := cacheKey(path)
	if err := os.WriteFile(filepath.Join(c.dir, key+".body"), body, 0o644); err != nil {
		return fmt.Errorf("write cache body: %w", err)
	}
	if err := os.WriteFile(filepath.Join(c.dir, key+".json"), meta, 0o644); err != nil {
		return fmt.Errorf("write cache meta: %w", err)
	}
	return nil
}

// get loads the cached response for a request path, (nil, false) on miss.
func (c *diskCache) get(path string) (*entry, bool) {
	key := cacheKey(path)

	rawMeta, err := os.ReadFile(filepath.Join(c.dir, key+".json"))
	if err != nil {
		return nil, false
	}
	var meta entryMeta
	if err := json.Unmarshal(rawMeta, &meta); err != nil {
		return nil, false
	}

	body, err := os.ReadFile(filepath.Join(c.dir, key+".body"))
	if err != nil {
		return nil, false
	}

	return &entry{Status: meta.Status, Header: meta.Header, Body: body}, true
}

func cacheKey(path string) string {
	sum := sha256.Sum256([]byte(path))
	return hex.EncodeToString(sum[:])
}
