package etl

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// ── Engine ─────────────────────────────────────────────────
// Runs exporters against a loaded repository and hands the artifacts of
// each successful dataset to the destination.

// ExportResult is the outcome of running one exporter.
type ExportResult struct {
	Dataset   string        `json:"dataset"`
	Status    string        `json:"status"` // "success" | "error"
	Artifacts []Artifact    `json:"artifacts,omitempty"`
	Warnings  []Warning     `json:"warnings,omitempty"`
	Duration  time.Duration `json:"duration"`
	Error     string        `json:"error,omitempty"`
}

// Engine runs exporters. A nil Dest runs without writing anything.
// Check, when set, must accept every artifact of a dataset before the first
// one is written.
type Engine struct {
	Dest  Destination
	Check func(Artifact) error
}

// Run executes ex end-to-end. Artifacts are written only when the whole
// export succeeded; on error none of them are.
func (e *Engine) Run(ctx context.Context, ex Exporter, env Env) (*ExportResult, error) {
	start := time.Now()
	name := ex.Spec().Name
	result := &ExportResult{Dataset: name}

	env.Warnings = NewWarnings(name)
	fail := func(err error) (*ExportResult, error) {
		result.Status = "error"
		result.Error = err.Error()
		result.Warnings = env.Warnings.List()
		result.Duration = time.Since(start)
		log.Printf("export: %s failed: %v", name, err)
		return result, fmt.Errorf("%s: %w", name, err)
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	// 1. Build every artifact in memory.
	res, err := ex.Export(ctx, env)
	if err != nil {
		return fail(err)
	}

	// 2. Check the whole dataset.
	if e.Check != nil {
		for _, a := range res.Artifacts {
			if err := e.Check(a); err != nil {
				return fail(fmt.Errorf("check %s: %w", a.OutFile, err))
			}
		}
	}

	// 3. Persist.
	if e.Dest != nil {
		for _, a := range res.Artifacts {
			if err := e.Dest.Write(ctx, a); err != nil {
				return fail(fmt.Errorf("write %s: %w", a.OutFile, err))
			}
		}
	}

	result.Status = "success"
	result.Artifacts = res.Artifacts
	result.Warnings = env.Warnings.List()
	result.Duration = time.Since(start)
	log.Printf("export: %s done: %d artifact(s), %d warning(s) in %s",
		name, len(result.Artifacts), len(result.Warnings), result.Duration.Round(time.Millisecond))
	return result, nil
}

// RunAll runs the named exporters one after another. A failed dataset is
// recorded and the rest still run; the returned error joins every failure.
func (e *Engine) RunAll(ctx context.Context, names []string, env Env) ([]*ExportResult, error) {
	var (
		results []*ExportResult
		errs    []error
	)
	for _, name := range names {
		ex, err := GetExporter(name)
		if err != nil {
			errs = append(errs, err)
			results = append(results, &ExportResult{Dataset: name, Status: "error", Error: err.Error()})
			continue
		}
		res, err := e.Run(ctx, ex, env)
		results = append(results, res)
		if err != nil {
			errs = append(errs, err)
			if ctx.Err() != nil {
				break
			}
		}
	}
	return results, errors.Join(errs...)
}
