package exporters

import (
	"context"

	"github.com/Skino1337/PyPoE/internal/etl"
	"github.com/Skino1337/PyPoE/internal/lua"
)

// ── Monster ────────────────────────────────────────────────

var monsterTables = []tableSpec{
	{
		key:   "monster_types",
		table: "MonsterTypes",
		specs: []etl.FieldSpec{
			field("Id", "id"),
			fieldWith("TagsKeys", "tags", etl.JoinField("Id", ", ")),
			fieldWith("MonsterResistancesKey", "monster_resistance_id", etl.Field("Id")),
			fieldWith("Armour", "armour_multiplier", etl.Divide(100)),
			fieldWith("Evasion", "evasion_multiplier", etl.Divide(100)),
			fieldWith("EnergyShieldFromLife", "energy_shield_multiplier", etl.Divide(100)),
			fieldWith("DamageSpread", "damage_spread", etl.Divide(100)),
		},
	},
	{
		key:   "monster_resistances",
		table: "MonsterResistances",
		specs: []etl.FieldSpec{
			field("Id", "id"),
			field("FireNormal", "part1_fire"),
			field("ColdNormal", "part1_cold"),
			field("LightningNormal", "part1_lightning"),
			field("ChaosNormal", "part1_chaos"),
			field("FireCruel", "part2_fire"),
			field("ColdCruel", "part2_cold"),
			field("LightningCruel", "part2_lightning"),
			field("ChaosCruel", "part2_chaos"),
			field("FireMerciless", "maps_fire"),
			field("ColdMerciless", "maps_cold"),
			field("LightningMerciless", "maps_lightning"),
			field("ChaosMerciless", "maps_chaos"),
		},
	},
	{
		key:   "monster_base_stats",
		table: "DefaultMonsterStats",
		specs: []etl.FieldSpec{
			fieldWith("DisplayLevel", "level", etl.Truncate()),
			field("Damage", "damage"),
			field("Evasion", "evasion"),
			field("Accuracy", "accuracy"),
			field("Life", "life"),
			field("Experience", "experience"),
			field("AllyLife", "summon_life"),
		},
	},
}

// Positional datasets: row i of every table merges into record i.
var monsterLevelTables = []struct {
	key    string
	tables []tableSpec
}{
	{
		key: "monster_map_multipliers",
		tables: []tableSpec{
			{table: "MonsterMapDifficulty", specs: []etl.FieldSpec{
				field("MapLevel", "level"),
				// map_hidden_monster_life_+%_final
				field("Stat1Value", "life"),
				// map_hidden_monster_damage_+%_final
				field("Stat2Value", "damage"),
			}},
			{table: "MonsterMapBossDifficulty", specs: []etl.FieldSpec{
				field("Stat1Value", "boss_life"),
				field("Stat2Value", "boss_damage"),
				// monster_dropped_item_quantity_+%
				field("Stat3Value", "boss_item_quantity"),
				// monster_dropped_item_rarity_+%
				field("Stat4Value", "boss_item_rarity"),
			}},
		},
	},
	{
		key: "monster_life_scaling",
		tables: []tableSpec{
			{table: "MagicMonsterLifeScalingPerLevel", specs: []etl.FieldSpec{
				field("Level", "level"),
				field("Life", "magic"),
			}},
			{table: "RareMonsterLifeScalingPerLevel", specs: []etl.FieldSpec{
				field("Life", "rare"),
			}},
		},
	},
}

type monster struct{}

func init() { etl.RegisterExporter(&monster{}) }

func (monster) Spec() etl.ExporterSpec {
	tables := []string{"Tags"}
	for _, t := range monsterTables {
		tables = append(tables, t.table)
	}
	for _, l := range monsterLevelTables {
		for _, t := range l.tables {
			tables = append(tables, t.table)
		}
	}
	return etl.ExporterSpec{Name: "monster", Label: "Monster stats and scaling", Tables: tables}
}

func (monster) Export(ctx context.Context, env etl.Env) (*etl.Result, error) {
	var pages []tablePage
	for _, t := range monsterTables {
		recs, err := project(env, t.table, t.specs)
		if err != nil {
			return nil, err
		}
		pages = append(pages, tablePage{t.key, recs})
	}

	p := env.Projector()
	for _, l := range monsterLevelTables {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var recs []*etl.Record
		for _, t := range l.tables {
			rows, err := env.Rows(t.table)
			if err != nil {
				return nil, err
			}
			for i, row := range rows {
				if recs, err = p.ProjectAt(row, t.specs, recs, i); err != nil {
					return nil, err
				}
			}
		}
		pages = append(pages, tablePage{l.key, recs})
	}

	r := &etl.Result{}
	for _, t := range pages {
		r.Add("monster", t.key+".lua", lua.Format(t.records), "Module:Monster/"+t.key)
	}
	return r, nil
}
