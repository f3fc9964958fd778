package shellcache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Manifest is the precache list: the URLs that make up the application shell,
// versioned by a token. Bumping the token is the only supported way to force
// a cache cutover across deployments.
type Manifest struct {
	Version string   `json:"version"`
	URLs    []string `json:"urls"`
}

// LoadManifest reads a manifest JSON file.
func LoadManifest(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	if m.Version == "" {
		return nil, errors.New("manifest: version token is empty")
	}
	if len(m.URLs) == 0 {
		return nil, errors.New("manifest: no URLs to precache")
	}
	return &m, nil
}

// Namespace is the cache namespace name for this manifest version.
func (m *Manifest) Namespace() string {
	return "shell-" + m.Version
}

// Shell is the entry served when a navigation request cannot reach the
// network. By convention it is the first manifest URL.
func (m *Manifest) Shell() string {
	return m.URLs[0]
}
