package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/peterbourgon/diskv/v3"
)

// Persistence is a namespaced key-value store. Each key holds one JSON
// document that is always replaced as a whole.
type Persistence interface {
	Get(key string, v any) error
	Put(key string, v any) error
	Delete(key string) error
	Keys(ctx context.Context) []string
	BasePath() string
	Watch(ctx context.Context) (<-chan Event, error)
}

// ErrNotExist is returned by Get when nothing is stored under the key.
var ErrNotExist = errors.New("store: key does not exist")

const (
	fileSuffix = ".json"
	tempDir    = ".tmp"
)

var keyPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]*$`)

// Load creates a Persistence backed by diskv using the provided config.
func Load(cfg Config) (Persistence, error) {
	if cfg == nil {
		var err error
		cfg, err = LoadConfig()
		if err != nil {
			return nil, err
		}
	}

	basePath := cfg.BasePath()
	if basePath == "" {
		return nil, errors.New("store: base path unknown")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}
	return &persistence{d: diskv.New(diskv.Options{
		BasePath:          basePath,
		TempDir:           filepath.Join(basePath, tempDir),
		AdvancedTransform: keyToPathTransform,
		InverseTransform:  pathToKeyTransform,
		// Snapshots are small and rewritten by other processes; always read
		// the file.
		CacheSizeMax: 0,
	}), basePath: basePath}, nil
}

type persistence struct {
	d        *diskv.Diskv
	basePath string
}

func (p *persistence) BasePath() string {
	return p.basePath
}

func (p *persistence) Get(key string, v any) error {
	if err := validKey(key); err != nil {
		return err
	}
	if !p.d.Has(key) {
		return ErrNotExist
	}
	val, err := p.d.Read(key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotExist
		}
		return fmt.Errorf("store: read %s: %w", key, err)
	}
	if err := json.Unmarshal(val, v); err != nil {
		return fmt.Errorf("store: decode %s: %w", key, err)
	}
	return nil
}

func (p *persistence) Put(key string, v any) error {
	if err := validKey(key); err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", key, err)
	}
	if err := p.d.Write(key, data); err != nil {
		return fmt.Errorf("store: write %s: %w", key, err)
	}
	return nil
}

// Delete erases key. Deleting a missing key is not an error.
func (p *persistence) Delete(key string) error {
	if err := validKey(key); err != nil {
		return err
	}
	if err := p.d.Erase(key); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("store: erase %s: %w", key, err)
	}
	return nil
}

func (p *persistence) Keys(ctx context.Context) []string {
	keys := make([]string, 0)
	for key := range p.d.Keys(ctx.Done()) {
		if key == "" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func validKey(key string) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("store: invalid key %q", key)
	}
	return nil
}

func keyToPathTransform(key string) *diskv.PathKey {
	return &diskv.PathKey{
		Path:     []string{},
		FileName: key + fileSuffix,
	}
}

// pathToKeyTransform maps files back to keys. Anything that is not a
// top-level .json document (temp files, stray files) maps to "".
func pathToKeyTransform(pathKey *diskv.PathKey) string {
	if len(pathKey.Path) > 0 && !(len(pathKey.Path) == 1 && pathKey.Path[0] == "") {
		return ""
	}
	return keyForFile(pathKey.FileName)
}

func keyForFile(name string) string {
	if !strings.HasSuffix(name, fileSuffix) {
		return ""
	}
	key := strings.TrimSuffix(name, fileSuffix)
	if !keyPattern.MatchString(key) {
		return ""
	}
	return key
}
