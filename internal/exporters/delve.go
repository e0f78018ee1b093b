package exporters

import (
	"context"
	"fmt"

	"github.com/Skino1337/PyPoE/internal/etl"
	"github.com/Skino1337/PyPoE/internal/lua"
)

// ── Delve ──────────────────────────────────────────────────

var delveLevelScalingSpecs = []etl.FieldSpec{
	field("Depth", "depth"),
	field("MonsterLevel", "monster_level"),
	field("SulphiteCost", "sulphite_cost"),
	field("DarknessResistance", "darkness_resistance"),
	field("LightRadius", "light_radius"),
	field("MoreMonsterLife", "monster_life"),
	field("MoreMonsterDamage", "monster_damage"),
}

var delveResourceSpecs = []etl.FieldSpec{
	field("AreaLevel", "area_level"),
	field("Sulphite", "sulphite"),
}

var delveUpgradeSpecs = []etl.FieldSpec{
	fieldWith("DelveUpgradeTypeKey", "type", etl.Lower()),
	field("UpgradeLevel", "level"),
}

type delve struct{}

func init() { etl.RegisterExporter(&delve{}) }

func (delve) Spec() etl.ExporterSpec {
	return etl.ExporterSpec{
		Name:   "delve",
		Label:  "Delve scaling and upgrades",
		Tables: []string{"DelveLevelScaling", "DelveResourcePerLevel", "DelveUpgrades", "Stats"},
	}
}

func (delve) Export(ctx context.Context, env etl.Env) (*etl.Result, error) {
	levelScaling, err := project(env, "DelveLevelScaling", delveLevelScalingSpecs)
	if err != nil {
		return nil, err
	}
	resources, err := project(env, "DelveResourcePerLevel", delveResourceSpecs)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := env.Rows("DelveUpgrades")
	if err != nil {
		return nil, err
	}
	p := env.Projector()
	var upgrades, upgradeStats []*etl.Record
	for _, row := range rows {
		base, err := p.Record(row, delveUpgradeSpecs)
		if err != nil {
			return nil, err
		}
		cost, err := row.Get("Cost")
		if err != nil {
			return nil, err
		}
		upgrade := base.Clone()
		if err := setRaw(upgrade, "cost", cost); err != nil {
			return nil, fmt.Errorf("%s.Cost: %w", row, err)
		}
		upgrades = append(upgrades, upgrade)

		stats, err := row.Refs("StatsKeys")
		if err != nil {
			return nil, err
		}
		values, err := row.Ints("StatValues")
		if err != nil {
			return nil, err
		}
		// Stats and values pair up positionally; extras on either side are dropped.
		for i := 0; i < len(stats) && i < len(values); i++ {
			id, err := stats[i].Text("Id")
			if err != nil {
				return nil, err
			}
			rec := base.Clone()
			rec.Set("id", etl.Text(id))
			rec.Set("value", etl.Int(values[i]))
			upgradeStats = append(upgradeStats, rec)
		}
	}

	r := &etl.Result{}
	for _, t := range []tablePage{
		{"level_scaling", levelScaling},
		{"resources_per_level", resources},
		{"upgrades", upgrades},
		{"upgrade_stats", upgradeStats},
	} {
		r.Add("delve", "delve_"+t.key+".lua", lua.Format(t.records), "Module:Delve/delve_"+t.key)
	}
	return r, nil
}

// setRaw stores a raw repository value on rec.
func setRaw(rec *etl.Record, key string, raw any) error {
	v, err := etl.ValueOf(raw)
	if err != nil {
		return err
	}
	rec.Set(key, v)
	return nil
}
