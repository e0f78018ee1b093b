package etl

import (
	"cmp"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ── Value ──────────────────────────────────────────────────
// Every projected field carries one of four kinds. The set is closed so the
// serializer can switch over it exhaustively.

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindAbsent Kind = iota
	KindInt
	KindFloat
	KindText
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	case KindList:
		return "list"
	default:
		return "absent"
	}
}

// Value is a single Output Record value. The zero Value is absent.
type Value struct {
	kind  Kind
	i     int64
	f     float64
	s     string
	items []Value
}

func Int(i int64) Value     { return Value{kind: KindInt, i: i} }
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }
func Text(s string) Value   { return Value{kind: KindText, s: s} }

// List builds a list value. Elements are expected to be scalars.
func List(items ...Value) Value {
	return Value{kind: KindList, items: append([]Value(nil), items...)}
}

// TextList builds a list of text values.
func TextList(items ...string) Value {
	vs := make([]Value, len(items))
	for i, s := range items {
		vs[i] = Text(s)
	}
	return Value{kind: KindList, items: vs}
}

func (v Value) Kind() Kind      { return v.kind }
func (v Value) IsAbsent() bool  { return v.kind == KindAbsent }
func (v Value) Int() int64      { return v.i }
func (v Value) Float() float64  { return v.f }
func (v Value) Text() string    { return v.s }
func (v Value) Items() []Value  { return v.items }
func (v Value) IsNumeric() bool { return v.kind == KindInt || v.kind == KindFloat }
func (v Value) IsScalar() bool  { return v.IsNumeric() || v.kind == KindText }

func (v Value) numeric() float64 {
	if v.kind == KindInt {
		return float64(v.i)
	}
	return v.f
}

// String renders the value the way identity keys and accumulators see it.
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindText:
		return v.s
	case KindList:
		parts := make([]string, len(v.items))
		for i, it := range v.items {
			parts[i] = it.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return ""
	}
}

// Compare orders two values. Absent sorts first, numbers before text,
// numbers compare numerically and text lexically.
func Compare(a, b Value) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return cmp.Compare(ra, rb)
	}
	switch ra {
	case 1:
		if a.kind == KindInt && b.kind == KindInt {
			return cmp.Compare(a.i, b.i)
		}
		return cmp.Compare(a.numeric(), b.numeric())
	case 2:
		return strings.Compare(a.s, b.s)
	case 3:
		for i := 0; i < len(a.items) && i < len(b.items); i++ {
			if c := Compare(a.items[i], b.items[i]); c != 0 {
				return c
			}
		}
		return cmp.Compare(len(a.items), len(b.items))
	}
	return 0
}

func rank(v Value) int {
	switch v.kind {
	case KindInt, KindFloat:
		return 1
	case KindText:
		return 2
	case KindList:
		return 3
	default:
		return 0
	}
}

// ValueOf converts a raw repository scalar or list into a Value.
// nil yields the absent Value. Linked rows are not values and are rejected.
func ValueOf(raw any) (Value, error) {
	switch v := raw.(type) {
	case nil:
		return Value{}, nil
	case Value:
		return v, nil
	case int:
		return Int(int64(v)), nil
	case int8:
		return Int(int64(v)), nil
	case int16:
		return Int(int64(v)), nil
	case int32:
		return Int(int64(v)), nil
	case int64:
		return Int(v), nil
	case uint8:
		return Int(int64(v)), nil
	case uint16:
		return Int(int64(v)), nil
	case uint32:
		return Int(int64(v)), nil
	case uint64:
		if v > math.MaxInt64 {
			return Value{}, fmt.Errorf("integer %d overflows int64", v)
		}
		return Int(int64(v)), nil
	case float32:
		return Float(float64(v)), nil
	case float64:
		return Float(v), nil
	case bool:
		if v {
			return Int(1), nil
		}
		return Int(0), nil
	case string:
		return Text(v), nil
	case []string:
		return TextList(v...), nil
	case []int64:
		items := make([]Value, len(v))
		for i, n := range v {
			items[i] = Int(n)
		}
		return List(items...), nil
	case []any:
		items := make([]Value, 0, len(v))
		for i, e := range v {
			item, err := ValueOf(e)
			if err != nil {
				return Value{}, fmt.Errorf("list element %d: %w", i, err)
			}
			if !item.IsScalar() {
				return Value{}, fmt.Errorf("list element %d: expected scalar, got %s", i, item.kind)
			}
			items = append(items, item)
		}
		return List(items...), nil
	default:
		return Value{}, fmt.Errorf("unsupported value type %T", raw)
	}
}
