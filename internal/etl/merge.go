package etl

import (
	"slices"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// UnitSeparator joins accumulated contributions inside a single text field.
const UnitSeparator = "\x1f"

// ── Merge ──────────────────────────────────────────────────
// Records sharing an identity key fold into the first one seen. Later
// records only contribute to the accumulator fields; everything else on
// them is ignored.

// KeyFunc derives the identity key of a record. ok=false means the record
// has no usable identity and must be skipped.
type KeyFunc func(rec *Record) (key string, ok bool)

// KeyFrom builds the identity key by concatenating the string form of
// fields. A missing field yields no key.
func KeyFrom(fields ...string) KeyFunc {
	return func(rec *Record) (string, bool) {
		var b strings.Builder
		for _, f := range fields {
			v, ok := rec.Get(f)
			if !ok {
				return "", false
			}
			b.WriteString(v.String())
		}
		return b.String(), true
	}
}

// RecordKeys holds identity keys taken from source rows rather than from
// record fields.
type RecordKeys map[*Record]string

// Key is a KeyFunc over k.
func (k RecordKeys) Key(rec *Record) (string, bool) {
	key, ok := k[rec]
	return key, ok
}

// Merger is an incremental merge group keyed by identity.
type Merger struct {
	accumulators []string
	groups       *orderedmap.OrderedMap[string, *Record]
}

func NewMerger(accumulators ...string) *Merger {
	return &Merger{
		accumulators: accumulators,
		groups:       orderedmap.New[string, *Record](),
	}
}

// Add folds rec into the group for key. The first record for a key is kept
// as the representative.
func (m *Merger) Add(key string, rec *Record) {
	rep, ok := m.groups.Get(key)
	if !ok {
		m.groups.Set(key, rec)
		return
	}
	for _, field := range m.accumulators {
		add, ok := rec.Get(field)
		if !ok {
			continue
		}
		// A representative without the field already applies to everything.
		cur, ok := rep.Get(field)
		if !ok {
			continue
		}
		rep.Set(field, Text(cur.String()+UnitSeparator+add.String()))
	}
}

// Len returns the number of groups.
func (m *Merger) Len() int { return m.groups.Len() }

// Get returns the representative for key.
func (m *Merger) Get(key string) (*Record, bool) { return m.groups.Get(key) }

// Records returns the representatives in first-seen order.
func (m *Merger) Records() []*Record {
	out := make([]*Record, 0, m.groups.Len())
	for pair := m.groups.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// Collapse canonicalizes field on every group: the distinct contributions
// are sorted and re-joined, or the field is dropped when they cover universe.
func (m *Merger) Collapse(field string, universe []string) {
	for pair := m.groups.Oldest(); pair != nil; pair = pair.Next() {
		CollapseField(pair.Value, field, universe)
	}
}

// CollapseField canonicalizes one accumulated field of rec.
// An empty universe never matches.
func CollapseField(rec *Record, field string, universe []string) {
	v, ok := rec.Get(field)
	if !ok {
		return
	}
	parts := strings.Split(v.String(), UnitSeparator)
	slices.Sort(parts)
	parts = slices.Compact(parts)

	if len(universe) > 0 {
		want := slices.Clone(universe)
		slices.Sort(want)
		if slices.Equal(parts, slices.Compact(want)) {
			rec.Delete(field)
			return
		}
	}
	rec.Set(field, Text(strings.Join(parts, UnitSeparator)))
}

// Merge folds records by identity in input order. Records without a key are
// reported to warnings and skipped.
func Merge(records []*Record, keyFn KeyFunc, warnings *Warnings, accumulators ...string) *Merger {
	m := NewMerger(accumulators...)
	for i, rec := range records {
		key, ok := keyFn(rec)
		if !ok {
			warnings.Warnf(i, "no identity key, skipping record %v", rec.Keys())
			continue
		}
		m.Add(key, rec)
	}
	return m
}
