package etl

import (
	"fmt"

	"github.com/Skino1337/PyPoE/internal/repository"
)

// ── Field Projection ───────────────────────────────────────
// A FieldSpec list is plain data: which source field to read, what key to
// store it under and how to convert it. The projector walks the list in
// order, so the declared order is the key order of the output record.

// FieldSpec maps one source field onto one output key.
// A nil Transform copies the value as is.
type FieldSpec struct {
	Source    string
	Key       string
	Transform TransformFunc
}

// Resolver reads a field from a row with references resolved.
// *repository.Memory implements it.
type Resolver interface {
	Value(row *repository.Row, field string) (any, error)
}

// Projector builds output records from source rows.
type Projector struct {
	Resolver Resolver
}

// Project projects row and appends the result to out.
func (p Projector) Project(row *repository.Row, specs []FieldSpec, out []*Record) ([]*Record, error) {
	rec, err := p.Record(row, specs)
	if err != nil {
		return out, err
	}
	return append(out, rec), nil
}

// ProjectAt merges the projection of row into out[index], overwriting keys
// on collision and keeping the rest. An index past the end appends.
func (p Projector) ProjectAt(row *repository.Row, specs []FieldSpec, out []*Record, index int) ([]*Record, error) {
	if index < 0 {
		return out, fmt.Errorf("project %s: negative index %d", row, index)
	}
	rec, err := p.Record(row, specs)
	if err != nil {
		return out, err
	}
	if index < len(out) {
		out[index].Update(rec)
		return out, nil
	}
	return append(out, rec), nil
}

// Record projects row into a fresh record. Fields that read as nil, the
// empty string or an unresolved reference are left out.
func (p Projector) Record(row *repository.Row, specs []FieldSpec) (*Record, error) {
	rec := NewRecord()
	for _, spec := range specs {
		raw, err := p.Resolver.Value(row, spec.Source)
		if err != nil {
			return nil, fmt.Errorf("project %s: %w", row, err)
		}
		if skip(raw) {
			continue
		}

		var v Value
		if spec.Transform != nil {
			v, err = spec.Transform(raw)
		} else {
			v, err = ValueOf(raw)
		}
		if err != nil {
			return nil, fmt.Errorf("project %s.%s: %w", row, spec.Source, err)
		}
		rec.Set(spec.Key, v)
	}
	return rec, nil
}

func skip(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case *repository.Row:
		return v == nil
	}
	return false
}
