package frame

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNotFound is returned when a frame reference does not resolve to a file.
var ErrNotFound = errors.New("frame not found")

const frameExt = ".json"

// Catalog finds frame files in a directory. It never caches or mutates what it
// loads; every Load returns a fresh Definition.
type Catalog struct {
	dir          string
	allowOutside bool
}

// NewCatalog returns a catalog rooted at dir. When allowOutside is false,
// path references that escape dir are rejected, which is what the HTTP API
// wants; the CLI passes true so any frame file on disk can be used.
func NewCatalog(dir string, allowOutside bool) *Catalog {
	return &Catalog{dir: dir, allowOutside: allowOutside}
}

// Dir returns the catalog root.
func (c *Catalog) Dir() string { return c.dir }

// List returns the names of all frame files in the catalog, sorted.
// A missing directory is an empty catalog.
func (c *Catalog) List() ([]string, error) {
	entries, err := os.ReadDir(c.dir)
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read frame directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), frameExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
	}
	sort.Strings(names)
	return names, nil
}

// Resolve turns a frame reference into a file path. A reference that ends in
// ".json" or contains a path separator is a path; anything else is a frame
// name inside the catalog directory.
func (c *Catalog) Resolve(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("%w: empty frame reference", ErrNotFound)
	}

	var path string
	if isPathRef(ref) {
		path = ref
		if !filepath.IsAbs(path) {
			if _, err := os.Stat(path); err != nil || !c.allowOutside {
				path = filepath.Join(c.dir, ref)
			}
		}
	} else {
		path = filepath.Join(c.dir, ref+frameExt)
	}

	if !c.allowOutside && !within(c.dir, path) {
		return "", fmt.Errorf("%w: %s is outside the frame directory", ErrNotFound, ref)
	}
	return path, nil
}

// Load resolves ref and decodes the frame file it points to.
func (c *Catalog) Load(ref string) (*Definition, error) {
	path, err := c.Resolve(ref)
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile decodes the frame file at path.
func LoadFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read frame file: %w", err)
	}

	def, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// Parse decodes a frame definition from JSON.
func Parse(data []byte) (*Definition, error) {
	var def Definition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse frame JSON: %w", err)
	}
	return &def, nil
}

func isPathRef(ref string) bool {
	return strings.EqualFold(filepath.Ext(ref), frameExt) || strings.ContainsAny(ref, `/\`)
}

func within(dir, path string) bool {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absDir, absPath)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
