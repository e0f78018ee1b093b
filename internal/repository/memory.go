package repository

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
)

var (
	ErrUnknownTable = errors.New("unknown table")
	ErrUnknownField = errors.New("unknown field")
)

// Tables is the raw material a loader produces: table name to ordered rows.
type Tables map[string][]map[string]any

// Memory is a fully materialized record repository. References are resolved
// on read through Resolve/ResolveAll; rows never hold pointers to each other.
type Memory struct {
	schema *Schema
	tables map[string][]*Row

	mu      sync.Mutex
	indexes map[indexKey]map[string]*Row
}

type indexKey struct {
	table string
	field string
}

// NewMemory normalizes raw tables into rows. Tables declared in the schema
// but missing from raw are created empty.
func NewMemory(schema *Schema, raw Tables) (*Memory, error) {
	if schema == nil {
		schema = &Schema{Tables: map[string]TableSchema{}}
	}
	m := &Memory{
		schema:  schema,
		tables:  make(map[string][]*Row, len(raw)),
		indexes: make(map[indexKey]map[string]*Row),
	}
	for name := range schema.Tables {
		m.tables[name] = nil
	}
	for name, rows := range raw {
		out := make([]*Row, len(rows))
		for i, data := range rows {
			fields := make(map[string]any, len(data))
			for k, v := range data {
				n, err := normalize(v, schema.isList(name, k))
				if err != nil {
					return nil, fmt.Errorf("%s[%d].%s: %w", name, i, k, err)
				}
				fields[k] = n
			}
			out[i] = &Row{repo: m, table: name, index: i, fields: fields}
		}
		m.tables[name] = out
	}
	return m, nil
}

// Schema returns the schema the repository was built with.
func (m *Memory) Schema() *Schema { return m.schema }

// Rows returns the ordered rows of table.
func (m *Memory) Rows(table string) ([]*Row, error) {
	rows, ok := m.tables[table]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	return rows, nil
}

// Row returns the row at index, or nil when out of range.
func (m *Memory) Row(table string, index int) (*Row, error) {
	rows, err := m.Rows(table)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(rows) {
		return nil, nil
	}
	return rows[index], nil
}

// Lookup returns the first row of table whose field equals value, or nil.
// The index for (table, field) is built on first use.
func (m *Memory) Lookup(table, field string, value any) (*Row, error) {
	rows, err := m.Rows(table)
	if err != nil {
		return nil, err
	}
	key := indexKey{table: table, field: field}

	m.mu.Lock()
	defer m.mu.Unlock()
	idx, ok := m.indexes[key]
	if !ok {
		idx = make(map[string]*Row, len(rows))
		for _, r := range rows {
			v, ok := r.fields[field]
			if !ok || v == nil {
				continue
			}
			for _, k := range indexKeys(v) {
				if _, dup := idx[k]; !dup {
					idx[k] = r
				}
			}
		}
		m.indexes[key] = idx
	}
	return idx[lookupKey(value)], nil
}

// lookupKey keys a lookup value by its own kind: numbers match numerically,
// text matches only the exact same text.
func lookupKey(v any) string {
	if n, ok := numericKey(v); ok {
		return "n:" + strconv.FormatInt(n, 10)
	}
	return "s:" + fmt.Sprint(v)
}

// indexKeys lists every key a stored value answers to. Integer text such as
// "007" also answers numeric lookups; numbers also answer their decimal text.
func indexKeys(v any) []string {
	if n, ok := numericKey(v); ok {
		s := strconv.FormatInt(n, 10)
		return []string{"n:" + s, "s:" + s}
	}
	keys := []string{"s:" + fmt.Sprint(v)}
	if s, ok := v.(string); ok {
		if n, ok := toInt(s); ok {
			keys = append(keys, "n:"+strconv.FormatInt(n, 10))
		}
	}
	return keys
}

// numericKey reports whether v is a whole number held in a numeric type.
func numericKey(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64, float64:
		return toInt(x)
	default:
		return 0, false
	}
}

// Resolve follows a single reference field of row.
func (m *Memory) Resolve(row *Row, field string) (*Row, error) {
	ref, raw, err := m.refField(row, field)
	if err != nil {
		return nil, err
	}
	if ref.Many {
		return nil, fmt.Errorf("%s.%s is a multi reference", row, field)
	}
	return m.target(ref.Table, raw)
}

// ResolveAll follows a multi reference field of row.
func (m *Memory) ResolveAll(row *Row, field string) ([]*Row, error) {
	ref, raw, err := m.refField(row, field)
	if err != nil {
		return nil, err
	}
	if !ref.Many {
		r, err := m.target(ref.Table, raw)
		if err != nil || r == nil {
			return nil, err
		}
		return []*Row{r}, nil
	}
	if raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%s.%s: expected list of references, got %T", row, field, raw)
	}
	out := make([]*Row, 0, len(list))
	for _, e := range list {
		r, err := m.target(ref.Table, e)
		if err != nil {
			return nil, err
		}
		if r != nil {
			out = append(out, r)
		}
	}
	return out, nil
}

// Value returns field of row with references resolved.
func (m *Memory) Value(row *Row, field string) (any, error) {
	ref, ok := m.schema.ref(row.table, field)
	if !ok {
		return row.scalar(field)
	}
	if ref.Many {
		return m.ResolveAll(row, field)
	}
	r, err := m.Resolve(row, field)
	if err != nil || r == nil {
		// A typed nil would defeat the caller's nil check.
		return nil, err
	}
	return r, nil
}

func (m *Memory) refField(row *Row, field string) (RefSpec, any, error) {
	ref, ok := m.schema.ref(row.table, field)
	if !ok {
		return RefSpec{}, nil, fmt.Errorf("%s.%s is not a reference", row, field)
	}
	return ref, row.fields[field], nil
}

func (m *Memory) target(table string, raw any) (*Row, error) {
	if raw == nil {
		return nil, nil
	}
	idx, ok := toInt(raw)
	if !ok {
		return nil, fmt.Errorf("%s: invalid row reference %v", table, raw)
	}
	return m.Row(table, int(idx))
}
