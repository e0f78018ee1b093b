package etl

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/Skino1337/PyPoE/internal/corrections"
	"github.com/Skino1337/PyPoE/internal/repository"
	"github.com/Skino1337/PyPoE/internal/translate"
)

var ErrUnknownExporter = errors.New("unknown exporter")

// ── Exporter ───────────────────────────────────────────────
// An Exporter turns repository tables into one or more artifacts.
// Implementations live in exporters/, one file per dataset family.

// ExporterSpec describes an exporter and the tables it reads.
type ExporterSpec struct {
	Name   string   `json:"name"`
	Label  string   `json:"label"`
	Tables []string `json:"tables"`
}

// Env is everything an export reads besides the exporter itself.
type Env struct {
	Repo        *repository.Memory
	Language    string
	Corrections corrections.Provider
	Translator  translate.Translator
	Warnings    *Warnings
}

// Projector returns a projector reading through the repository.
func (e Env) Projector() Projector {
	return Projector{Resolver: e.Repo}
}

// Rows returns the rows of table.
func (e Env) Rows(table string) ([]*repository.Row, error) {
	return e.Repo.Rows(table)
}

// Exporter is the interface every dataset must implement.
type Exporter interface {
	Spec() ExporterSpec

	// Export builds the artifacts for the dataset. Non-fatal conditions go
	// to env.Warnings; a returned error discards the whole result.
	Export(ctx context.Context, env Env) (*Result, error)
}

// ── Exporter Registry ──────────────────────────────────────
// Compile-time registration via init() in each exporter file.

var (
	registryMu sync.RWMutex
	registry   = map[string]Exporter{}
)

// RegisterExporter registers an exporter by its spec name.
func RegisterExporter(e Exporter) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[e.Spec().Name] = e
}

// GetExporter returns a registered exporter by name.
func GetExporter(name string) (Exporter, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	e, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownExporter, name)
	}
	return e, nil
}

// ListExporters returns the specs of all registered exporters, sorted by name.
func ListExporters() []ExporterSpec {
	registryMu.RLock()
	defer registryMu.RUnlock()
	specs := make([]ExporterSpec, 0, len(registry))
	for _, e := range registry {
		specs = append(specs, e.Spec())
	}
	slices.SortFunc(specs, func(a, b ExporterSpec) int { return strings.Compare(a.Name, b.Name) })
	return specs
}
