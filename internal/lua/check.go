package lua

import (
	"fmt"
	"math"

	golua "github.com/Shopify/go-lua"
)

// Check runs a rendered module and verifies that it returns a table.
func Check(text string) error {
	_, err := run(text, func(*golua.State) (any, error) { return nil, nil })
	return err
}

// Eval runs a rendered module and decodes the returned sequence of records.
// Numbers decode as int64 when integral and float64 otherwise, nested
// tables as []any.
func Eval(text string) ([]map[string]any, error) {
	v, err := run(text, func(l *golua.State) (any, error) { return decodeRecords(l) })
	if err != nil {
		return nil, err
	}
	return v.([]map[string]any), nil
}

func run(text string, decode func(*golua.State) (any, error)) (any, error) {
	l := golua.NewState()
	golua.OpenLibraries(l)

	if err := golua.LoadString(l, text); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	if err := l.ProtectedCall(0, 1, 0); err != nil {
		return nil, fmt.Errorf("run lua: %w", err)
	}
	defer l.Pop(1)

	if l.TypeOf(-1) != golua.TypeTable {
		return nil, fmt.Errorf("module must return a table, got %s", golua.TypeNameOf(l, -1))
	}
	return decode(l)
}

func decodeRecords(l *golua.State) ([]map[string]any, error) {
	n := golua.LengthEx(l, -1)
	out := make([]map[string]any, 0, n)
	for i := 1; i <= n; i++ {
		l.RawGetInt(-1, i)
		rec, err := decodeRecord(l)
		l.Pop(1)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func decodeRecord(l *golua.State) (map[string]any, error) {
	if l.TypeOf(-1) != golua.TypeTable {
		return nil, fmt.Errorf("expected table, got %s", golua.TypeNameOf(l, -1))
	}
	rec := map[string]any{}
	l.PushNil()
	for l.Next(-2) {
		// Only string keys; ToString on a number key would break Next.
		if l.TypeOf(-2) != golua.TypeString {
			l.Pop(2)
			return nil, fmt.Errorf("non-string key of type %s", golua.TypeNameOf(l, -2))
		}
		key, _ := l.ToString(-2)
		v, err := decodeValue(l)
		l.Pop(1)
		if err != nil {
			l.Pop(1)
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		rec[key] = v
	}
	return rec, nil
}

func decodeValue(l *golua.State) (any, error) {
	switch l.TypeOf(-1) {
	case golua.TypeNumber:
		f, _ := l.ToNumber(-1)
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return int64(f), nil
		}
		return f, nil
	case golua.TypeString:
		s, _ := l.ToString(-1)
		return s, nil
	case golua.TypeTable:
		n := golua.LengthEx(l, -1)
		items := make([]any, 0, n)
		for i := 1; i <= n; i++ {
			l.RawGetInt(-1, i)
			v, err := decodeValue(l)
			l.Pop(1)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			items = append(items, v)
		}
		return items, nil
	default:
		return nil, fmt.Errorf("unsupported value of type %s", golua.TypeNameOf(l, -1))
	}
}
