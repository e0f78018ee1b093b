package repository

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Row is one record of a source table. Rows are owned by the repository and
// are never mutated after loading.
type Row struct {
	repo   *Memory
	table  string
	index  int
	fields map[string]any
}

func (r *Row) Table() string { return r.table }
func (r *Row) Index() int    { return r.index }

func (r *Row) String() string {
	return fmt.Sprintf("%s[%d]", r.table, r.index)
}

// Raw returns the stored value of field without resolving references.
func (r *Row) Raw(field string) (any, bool) {
	v, ok := r.fields[field]
	return v, ok
}

// Get returns field with references resolved: a *Row, a []*Row or a scalar.
func (r *Row) Get(field string) (any, error) {
	return r.repo.Value(r, field)
}

// Ref resolves a single reference field. A dangling reference yields nil.
func (r *Row) Ref(field string) (*Row, error) {
	return r.repo.Resolve(r, field)
}

// Refs resolves a multi reference field, dropping dangling entries.
func (r *Row) Refs(field string) ([]*Row, error) {
	return r.repo.ResolveAll(r, field)
}

// Text returns field as a string. Missing values read as "".
func (r *Row) Text(field string) (string, error) {
	v, err := r.scalar(field)
	if err != nil || v == nil {
		return "", err
	}
	if s, ok := v.(string); ok {
		return s, nil
	}
	return fmt.Sprint(v), nil
}

// Int returns field as an integer.
func (r *Row) Int(field string) (int64, error) {
	v, err := r.scalar(field)
	if err != nil {
		return 0, err
	}
	n, ok := toInt(v)
	if !ok {
		return 0, fmt.Errorf("%s.%s: expected integer, got %T", r, field, v)
	}
	return n, nil
}

// Ints returns a list field as integers.
func (r *Row) Ints(field string) ([]int64, error) {
	v, err := r.scalar(field)
	if err != nil || v == nil {
		return nil, err
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%s.%s: expected list, got %T", r, field, v)
	}
	out := make([]int64, 0, len(list))
	for i, e := range list {
		n, ok := toInt(e)
		if !ok {
			return nil, fmt.Errorf("%s.%s[%d]: expected integer, got %T", r, field, i, e)
		}
		out = append(out, n)
	}
	return out, nil
}

func (r *Row) scalar(field string) (any, error) {
	if _, ok := r.repo.schema.ref(r.table, field); ok {
		return nil, fmt.Errorf("%s.%s is a reference", r, field)
	}
	v, ok := r.fields[field]
	if !ok {
		return nil, fmt.Errorf("%s: %w: %s", r, ErrUnknownField, field)
	}
	return v, nil
}

// normalize folds the loosely typed values produced by the loaders into
// int64, float64, string, bool, []any or nil.
func normalize(v any, list bool) (any, error) {
	switch x := v.(type) {
	case nil, bool, int64, string:
		if s, ok := x.(string); ok && list {
			return decodeList(s)
		}
		return x, nil
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n, nil
		}
		return x.Float64()
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return nil, fmt.Errorf("integer %d overflows int64", x)
		}
		return int64(x), nil
	case float32:
		return float64(x), nil
	case float64:
		return x, nil
	case []byte:
		return normalize(string(x), list)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			n, err := normalize(e, false)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

// decodeList reads a list stored as text: a JSON array, or an empty string.
func decodeList(s string) (any, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return []any{}, nil
	}
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var raw []any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode list %q: %w", s, err)
	}
	return normalize(raw, false)
}

func toInt(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case float64:
		if x != math.Trunc(x) {
			return 0, false
		}
		return int64(x), true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}
