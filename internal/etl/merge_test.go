package etl_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skino1337/PyPoE/internal/etl"
)

func TestMerge_FoldsByIdentity(t *testing.T) {
	records := []*etl.Record{
		etl.RecordOf("quest_id", "a1q1", "reward", "Iron Ring", "classes", "Marauder"),
		etl.RecordOf("quest_id", "a1q2", "reward", "Coral Ring"),
		etl.RecordOf("quest_id", "a1q1", "reward", "ignored", "classes", "Witch"),
	}
	w := etl.NewWarnings("test")

	m := etl.Merge(records, etl.KeyFrom("quest_id"), w, "classes")

	require.Equal(t, 2, m.Len())
	out := m.Records()
	assert.Equal(t, "a1q1", out[0].Text("quest_id"), "first seen order")
	assert.Equal(t, "Iron Ring", out[0].Text("reward"), "representative wins")
	assert.Equal(t, "Marauder\x1fWitch", out[0].Text("classes"))
	assert.Zero(t, w.Len())
}

func TestMerge_RepresentativeWithoutAccumulator(t *testing.T) {
	m := etl.NewMerger("classes")
	m.Add("k", etl.RecordOf("id", 1))
	m.Add("k", etl.RecordOf("id", 1, "classes", "Witch"))

	rec, ok := m.Get("k")
	require.True(t, ok)
	assert.False(t, rec.Has("classes"))
}

func TestMerge_MissingKeyWarns(t *testing.T) {
	w := etl.NewWarnings("test")
	m := etl.Merge([]*etl.Record{etl.RecordOf("reward", "x")}, etl.KeyFrom("quest_id", "reward"), w)

	assert.Zero(t, m.Len())
	require.Equal(t, 1, w.Len())
	assert.Equal(t, 0, w.List()[0].Row)
}

func TestMerge_RecordKeys(t *testing.T) {
	a := etl.RecordOf("reward", "Ring", "classes", "Witch")
	b := etl.RecordOf("reward", "Ring", "classes", "Ranger")
	c := etl.RecordOf("reward", "Ring", "classes", "Duelist")
	orphan := etl.RecordOf("reward", "Amulet")
	keys := etl.RecordKeys{a: "q1:ring", b: "q1:ring", c: "q2:ring"}

	w := etl.NewWarnings("test")
	m := etl.Merge([]*etl.Record{a, orphan, b, c}, keys.Key, w, "classes")

	require.Equal(t, 2, m.Len())
	rep, ok := m.Get("q1:ring")
	require.True(t, ok)
	assert.Same(t, a, rep)
	assert.Equal(t, "Witch\x1fRanger", rep.Text("classes"))

	require.Equal(t, 1, w.Len(), "a record with no key is warned and skipped")
	assert.Equal(t, 1, w.List()[0].Row)
}

func TestCollapseField(t *testing.T) {
	universe := []string{"Witch", "Marauder", "Ranger"}

	rec := etl.RecordOf("classes", "Witch\x1fMarauder\x1fWitch")
	etl.CollapseField(rec, "classes", universe)
	assert.Equal(t, "Marauder\x1fWitch", rec.Text("classes"), "sorted and deduplicated")

	rec = etl.RecordOf("classes", "Ranger\x1fWitch\x1fMarauder\x1fRanger")
	etl.CollapseField(rec, "classes", universe)
	assert.False(t, rec.Has("classes"), "covering the universe drops the field")

	rec = etl.RecordOf("classes", "Witch")
	etl.CollapseField(rec, "classes", nil)
	assert.Equal(t, "Witch", rec.Text("classes"))
}

func TestMerger_Collapse(t *testing.T) {
	m := etl.NewMerger("classes")
	m.Add("a", etl.RecordOf("classes", "Witch"))
	m.Add("a", etl.RecordOf("classes", "Marauder"))
	m.Add("b", etl.RecordOf("classes", "Witch"))

	m.Collapse("classes", []string{"Marauder", "Witch"})

	out := m.Records()
	assert.False(t, out[0].Has("classes"))
	assert.Equal(t, "Witch", out[1].Text("classes"))
}

func TestOrder(t *testing.T) {
	records := []*etl.Record{
		etl.RecordOf("act", 2, "quest_id", "q1", "reward", "x"),
		etl.RecordOf("act", 1, "quest_id", "q2", "reward", "y"),
		etl.RecordOf("act", 1, "quest_id", "q1", "reward", "z"),
	}

	out := etl.Order(records, etl.ByField("act"), etl.ByField("quest_id"), etl.ByField("reward"))

	got := make([]string, len(out))
	for i, r := range out {
		got[i] = r.Text("act") + "," + r.Text("quest_id") + "," + r.Text("reward")
	}
	assert.Equal(t, []string{"1,q1,z", "1,q2,y", "2,q1,x"}, got)
	assert.Equal(t, "x", records[0].Text("reward"), "input is not reordered")
}

func TestOrder_StableAndMissingFirst(t *testing.T) {
	records := []*etl.Record{
		etl.RecordOf("id", "first", "act", 1),
		etl.RecordOf("id", "noact"),
		etl.RecordOf("id", "second", "act", 1),
	}

	out := etl.Order(records, etl.ByField("act"))

	assert.Equal(t, "noact", out[0].Text("id"))
	assert.Equal(t, "first", out[1].Text("id"))
	assert.Equal(t, "second", out[2].Text("id"))
}
