package etl

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ── Record ─────────────────────────────────────────────────
// Common intermediate data format.
// Projection produces Records, merge folds them, the serializer consumes them.
// Keys keep their insertion order so the rendered table reads like the
// declared field specs.

// Record is a single flat output row.
type Record struct {
	fields *orderedmap.OrderedMap[string, Value]
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{fields: orderedmap.New[string, Value]()}
}

// RecordOf builds a record from alternating key/value pairs, mostly for tests.
func RecordOf(kv ...any) *Record {
	r := NewRecord()
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		v, err := ValueOf(kv[i+1])
		if err != nil {
			panic(err)
		}
		r.Set(key, v)
	}
	return r
}

// Set stores v under key. An existing key keeps its position.
// Setting the absent Value removes the key.
func (r *Record) Set(key string, v Value) {
	if v.IsAbsent() {
		r.fields.Delete(key)
		return
	}
	r.fields.Set(key, v)
}

// Get returns the value under key.
func (r *Record) Get(key string) (Value, bool) {
	return r.fields.Get(key)
}

// Text returns the string form of key, or "" when absent.
func (r *Record) Text(key string) string {
	v, ok := r.fields.Get(key)
	if !ok {
		return ""
	}
	return v.String()
}

func (r *Record) Has(key string) bool {
	_, ok := r.fields.Get(key)
	return ok
}

func (r *Record) Delete(key string) {
	r.fields.Delete(key)
}

func (r *Record) Len() int {
	return r.fields.Len()
}

// Keys returns the field names in insertion order.
func (r *Record) Keys() []string {
	keys := make([]string, 0, r.fields.Len())
	for pair := r.fields.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Each calls fn for every field in insertion order.
func (r *Record) Each(fn func(key string, v Value)) {
	for pair := r.fields.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}

// Update copies every field of other into r, overwriting on collision.
func (r *Record) Update(other *Record) {
	other.Each(func(key string, v Value) {
		r.fields.Set(key, v)
	})
}

// Clone returns an independent copy of r.
func (r *Record) Clone() *Record {
	c := NewRecord()
	c.Update(r)
	return c
}
