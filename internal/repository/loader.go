package repository

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// ── Loader ─────────────────────────────────────────────────
// A Loader materializes source tables from an external system.
// Implementations live in repository/loaders/, one file per backend.

// LoaderConfig is an opaque configuration map parsed per loader type.
type LoaderConfig map[string]any

// String returns the string option key, or "".
func (c LoaderConfig) String(key string) string {
	s, _ := c[key].(string)
	return strings.TrimSpace(s)
}

// Int returns the integer option key, or 0.
func (c LoaderConfig) Int(key string) int {
	switch v := c[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// ConfigField describes a single configuration input for a loader.
type ConfigField struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Required bool   `json:"required"`
	Default  string `json:"default,omitempty"`
	Help     string `json:"help,omitempty"`
}

// LoaderSpec describes a loader type and its configuration inputs.
type LoaderSpec struct {
	Type         string        `json:"type"`
	Label        string        `json:"label"`
	ConfigFields []ConfigField `json:"configFields"`
}

// Loader is the interface every repository backend implements.
type Loader interface {
	// Spec returns metadata about this loader type.
	Spec() LoaderSpec

	// Load reads the tables named by schema (or every table the backend
	// holds when the schema declares none).
	Load(ctx context.Context, cfg LoaderConfig, schema *Schema) (Tables, error)
}

// ── Loader Registry ────────────────────────────────────────
// Compile-time registration via init() in each loader file.

var (
	registryMu sync.RWMutex
	registry   = map[string]Loader{}
)

// RegisterLoader registers a loader by its spec type.
func RegisterLoader(l Loader) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[l.Spec().Type] = l
}

// GetLoader returns a registered loader by type, or an error if not found.
func GetLoader(typ string) (Loader, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	l, ok := registry[typ]
	if !ok {
		return nil, fmt.Errorf("unknown loader type: %q", typ)
	}
	return l, nil
}

// ListLoaders returns the specs of all registered loaders, sorted by type.
func ListLoaders() []LoaderSpec {
	registryMu.RLock()
	defer registryMu.RUnlock()
	specs := make([]LoaderSpec, 0, len(registry))
	for _, l := range registry {
		specs = append(specs, l.Spec())
	}
	slices.SortFunc(specs, func(a, b LoaderSpec) int { return strings.Compare(a.Type, b.Type) })
	return specs
}

// Open loads every table through the loader registered as typ and builds
// an in-memory repository from them.
func Open(ctx context.Context, typ string, cfg LoaderConfig, schema *Schema) (*Memory, error) {
	l, err := GetLoader(typ)
	if err != nil {
		return nil, err
	}
	tables, err := l.Load(ctx, cfg, schema)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", typ, err)
	}
	return NewMemory(schema, tables)
}
