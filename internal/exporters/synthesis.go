package exporters

import (
	"context"
	"fmt"
	"strings"

	"github.com/Skino1337/PyPoE/internal/etl"
	"github.com/Skino1337/PyPoE/internal/lua"
)

// ── Synthesis ──────────────────────────────────────────────

// tableSpec projects every row of one table into the dataset named key.
type tableSpec struct {
	key   string
	table string
	specs []etl.FieldSpec
}

var synthesisTables = []tableSpec{
	{
		key:   "synthesis_corrupted_mods",
		table: "ItemSynthesisCorruptedMods",
		specs: []etl.FieldSpec{
			fieldWith("ItemClassesKey", "item_class_id", etl.Field("Id")),
			fieldWith("ModsKeys", "mod_ids", etl.FieldList("Id")),
		},
	},
	{
		key:   "synthesis_mods",
		table: "ItemSynthesisMods",
		specs: []etl.FieldSpec{
			fieldWith("StatsKey", "stat_id", etl.Field("Id")),
			field("StatValue", "stat_value"),
			fieldWith("ItemClassesKeys", "item_class_ids", etl.FieldList("Id")),
			fieldWith("ModsKeys", "mod_ids", etl.FieldList("Id")),
		},
	},
	{
		key:   "synthesis_areas",
		table: "SynthesisAreas",
		specs: []etl.FieldSpec{
			field("Id", "id"),
			field("MinLevel", "min_level"),
			field("MaxLevel", "max_level"),
			field("Weight", "weight"),
			field("Name", "name"),
			fieldWith("SynthesisAreaSizeKey", "size", etl.RowID()),
		},
	},
	{
		key:   "synthesis_global_mods",
		table: "SynthesisGlobalMods",
		specs: []etl.FieldSpec{
			fieldWith("ModsKey", "mod_id", etl.Field("Id")),
			field("MinLevel", "min_level"),
			field("MaxLevel", "max_level"),
			field("Weight", "weight"),
		},
	},
}

type synthesis struct{}

func init() { etl.RegisterExporter(&synthesis{}) }

func (synthesis) Spec() etl.ExporterSpec {
	tables := []string{"Stats", "Mods", "ItemClasses", "SynthesisAreaSize"}
	for _, t := range synthesisTables {
		tables = append(tables, t.table)
	}
	return etl.ExporterSpec{Name: "synthesis", Label: "Synthesis mods and areas", Tables: tables}
}

func (synthesis) Export(ctx context.Context, env etl.Env) (*etl.Result, error) {
	if env.Translator == nil {
		return nil, fmt.Errorf("synthesis needs a translator")
	}

	data := make(map[string][]*etl.Record, len(synthesisTables))
	for _, t := range synthesisTables {
		recs, err := project(env, t.table, t.specs)
		if err != nil {
			return nil, err
		}
		data[t.key] = recs
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, rec := range data["synthesis_mods"] {
		statID, ok := rec.Get("stat_id")
		if !ok {
			return nil, fmt.Errorf("synthesis mod without stat")
		}
		value, ok := rec.Get("stat_value")
		if !ok || value.Kind() != etl.KindInt {
			return nil, fmt.Errorf("synthesis mod %s: missing integer stat value", statID)
		}
		lines, err := env.Translator.Translate([]string{statID.Text()}, []int64{value.Int()}, env.Language)
		if err != nil {
			return nil, fmt.Errorf("translate %s: %w", statID, err)
		}
		text := strings.ReplaceAll(strings.Join(lines, "<br>"), "\n", "")
		rec.Set("stat_text", etl.Text(text))
	}

	r := &etl.Result{}
	for _, t := range synthesisTables {
		r.Add("synthesis", t.key+".lua", lua.Format(data[t.key]), "Module:Synthesis/"+t.key)
	}
	return r, nil
}
