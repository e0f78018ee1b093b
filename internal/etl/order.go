package etl

import "slices"

// SortKey extracts the comparison value from a record.
type SortKey func(rec *Record) Value

// ByField sorts on the value stored under name. A missing field reads as
// absent and sorts first.
func ByField(name string) SortKey {
	return func(rec *Record) Value {
		v, _ := rec.Get(name)
		return v
	}
}

// Order returns a sorted copy of records. Keys are listed most significant
// first: Order(recs, ByField("act"), ByField("quest_id")) sorts by act and
// breaks ties by quest_id. Each key is applied as a stable sort starting
// from the least significant, so equal records keep their input order.
func Order(records []*Record, keys ...SortKey) []*Record {
	out := slices.Clone(records)
	for i := len(keys) - 1; i >= 0; i-- {
		key := keys[i]
		slices.SortStableFunc(out, func(a, b *Record) int {
			return Compare(key(a), key(b))
		})
	}
	return out
}
