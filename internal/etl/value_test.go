package etl_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skino1337/PyPoE/internal/etl"
)

func TestValueOf(t *testing.T) {
	cases := []struct {
		name string
		raw  any
		want etl.Value
	}{
		{"nil is absent", nil, etl.Value{}},
		{"int", 7, etl.Int(7)},
		{"uint8", uint8(3), etl.Int(3)},
		{"float", 1.5, etl.Float(1.5)},
		{"bool true", true, etl.Int(1)},
		{"bool false", false, etl.Int(0)},
		{"text", "Mercy Mission", etl.Text("Mercy Mission")},
		{"strings", []string{"a", "b"}, etl.TextList("a", "b")},
		{"mixed list", []any{int64(1), "x", 2.5}, etl.List(etl.Int(1), etl.Text("x"), etl.Float(2.5))},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := etl.ValueOf(tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestValueOf_Rejects(t *testing.T) {
	_, err := etl.ValueOf(uint64(math.MaxUint64))
	assert.Error(t, err)

	_, err = etl.ValueOf([]any{[]any{1}})
	assert.Error(t, err, "nested lists")

	_, err = etl.ValueOf(struct{}{})
	assert.Error(t, err)
}

func TestValue_String(t *testing.T) {
	assert.Equal(t, "42", etl.Int(42).String())
	assert.Equal(t, "0.25", etl.Float(0.25).String())
	assert.Equal(t, "abc", etl.Text("abc").String())
	assert.Equal(t, "[1, x]", etl.List(etl.Int(1), etl.Text("x")).String())
	assert.Equal(t, "", etl.Value{}.String())
}

func TestCompare(t *testing.T) {
	assert.Negative(t, etl.Compare(etl.Value{}, etl.Int(0)), "absent sorts first")
	assert.Negative(t, etl.Compare(etl.Int(2), etl.Int(10)))
	assert.Negative(t, etl.Compare(etl.Int(1), etl.Float(1.5)), "int and float compare numerically")
	assert.Zero(t, etl.Compare(etl.Int(2), etl.Float(2)))
	assert.Negative(t, etl.Compare(etl.Int(100), etl.Text("1")), "numbers before text")
	assert.Negative(t, etl.Compare(etl.Text("a10"), etl.Text("a2")), "text compares lexically")
	assert.Positive(t, etl.Compare(etl.TextList("a", "b"), etl.TextList("a")))
}

func TestRecord_KeepsInsertionOrder(t *testing.T) {
	rec := etl.NewRecord()
	rec.Set("name", etl.Text("x"))
	rec.Set("id", etl.Int(1))
	rec.Set("act", etl.Int(2))
	rec.Set("name", etl.Text("y"))

	assert.Equal(t, []string{"name", "id", "act"}, rec.Keys())
	assert.Equal(t, "y", rec.Text("name"))

	rec.Set("id", etl.Value{})
	assert.False(t, rec.Has("id"), "setting absent removes the key")
	assert.Equal(t, 2, rec.Len())
}

func TestRecord_UpdateAndClone(t *testing.T) {
	a := etl.RecordOf("id", 1, "name", "a")
	b := etl.RecordOf("name", "b", "extra", 2.5)

	c := a.Clone()
	a.Update(b)

	assert.Equal(t, []string{"id", "name", "extra"}, a.Keys())
	assert.Equal(t, "b", a.Text("name"))
	assert.Equal(t, "a", c.Text("name"), "clone is independent")
}
