package etl

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Skino1337/PyPoE/internal/repository"
)

// ── Transforms ─────────────────────────────────────────────
// Transforms map a raw field value to the stored Value. The raw value is
// whatever the resolver returned: a scalar, a list, a linked *Row or a
// []*Row. A transform returning the absent Value omits the key.
//
// Transforms are pure. An error means the data broke the contract the
// field spec assumed, and aborts the dataset.

// TransformFunc converts one raw field value.
type TransformFunc func(raw any) (Value, error)

// Field dereferences a linked row and reads name from it.
func Field(name string) TransformFunc {
	return func(raw any) (Value, error) {
		row, err := asRow(raw)
		if err != nil {
			return Value{}, err
		}
		v, err := row.Get(name)
		if err != nil {
			return Value{}, err
		}
		return ValueOf(v)
	}
}

// Path follows a chain of references and reads the last name.
// Path("ItemClassesKey", "Id") reads row.ItemClassesKey.Id.
func Path(names ...string) TransformFunc {
	return func(raw any) (Value, error) {
		cur := raw
		for _, name := range names {
			row, err := asRow(cur)
			if err != nil {
				return Value{}, fmt.Errorf("path %s: %w", strings.Join(names, "."), err)
			}
			if cur, err = row.Get(name); err != nil {
				return Value{}, err
			}
		}
		if _, ok := cur.(*repository.Row); ok {
			return Value{}, fmt.Errorf("path %s ends on a row", strings.Join(names, "."))
		}
		return ValueOf(cur)
	}
}

// RowID stores the index of the linked row.
func RowID() TransformFunc {
	return func(raw any) (Value, error) {
		row, err := asRow(raw)
		if err != nil {
			return Value{}, err
		}
		return Int(int64(row.Index())), nil
	}
}

// Lower lower-cases a text value.
func Lower() TransformFunc {
	return func(raw any) (Value, error) {
		s, ok := raw.(string)
		if !ok {
			return Value{}, fmt.Errorf("lower: expected text, got %T", raw)
		}
		return Text(strings.ToLower(s)), nil
	}
}

// FieldList reads name from every linked row into a list.
func FieldList(name string) TransformFunc {
	return func(raw any) (Value, error) {
		rows, err := asRows(raw)
		if err != nil {
			return Value{}, err
		}
		items := make([]Value, 0, len(rows))
		for _, row := range rows {
			v, err := row.Get(name)
			if err != nil {
				return Value{}, err
			}
			item, err := ValueOf(v)
			if err != nil {
				return Value{}, fmt.Errorf("%s.%s: %w", row, name, err)
			}
			if !item.IsScalar() {
				return Value{}, fmt.Errorf("%s.%s: expected scalar, got %s", row, name, item.Kind())
			}
			items = append(items, item)
		}
		return List(items...), nil
	}
}

// JoinField reads name from every linked row and joins the results with sep.
func JoinField(name, sep string) TransformFunc {
	list := FieldList(name)
	return func(raw any) (Value, error) {
		v, err := list(raw)
		if err != nil {
			return Value{}, err
		}
		parts := make([]string, len(v.Items()))
		for i, it := range v.Items() {
			parts[i] = it.String()
		}
		return Text(strings.Join(parts, sep)), nil
	}
}

// Divide scales a numeric value down by d, always yielding a float.
func Divide(d float64) TransformFunc {
	return func(raw any) (Value, error) {
		if d == 0 {
			return Value{}, fmt.Errorf("divide by zero")
		}
		n, err := toFloat(raw)
		if err != nil {
			return Value{}, fmt.Errorf("divide: %w", err)
		}
		return Float(n / d), nil
	}
}

// Truncate converts a numeric value to an integer, dropping the fraction.
// Integer text such as "12" is accepted too.
func Truncate() TransformFunc {
	return func(raw any) (Value, error) {
		if s, ok := raw.(string); ok {
			n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
			if err != nil {
				return Value{}, fmt.Errorf("truncate: %w", err)
			}
			return Int(n), nil
		}
		n, err := toFloat(raw)
		if err != nil {
			return Value{}, fmt.Errorf("truncate: %w", err)
		}
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return Value{}, fmt.Errorf("truncate: %v is not finite", n)
		}
		return Int(int64(n)), nil
	}
}

func toFloat(raw any) (float64, error) {
	v, err := ValueOf(raw)
	if err != nil {
		return 0, err
	}
	switch v.Kind() {
	case KindInt:
		return float64(v.Int()), nil
	case KindFloat:
		return v.Float(), nil
	default:
		return 0, fmt.Errorf("expected number, got %s", v.Kind())
	}
}

func asRow(raw any) (*repository.Row, error) {
	row, ok := raw.(*repository.Row)
	if !ok || row == nil {
		return nil, fmt.Errorf("expected linked row, got %T", raw)
	}
	return row, nil
}

func asRows(raw any) ([]*repository.Row, error) {
	switch v := raw.(type) {
	case []*repository.Row:
		return v, nil
	case *repository.Row:
		return []*repository.Row{v}, nil
	default:
		return nil, fmt.Errorf("expected linked rows, got %T", raw)
	}
}
