package exporters

import (
	"context"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/Skino1337/PyPoE/internal/etl"
	"github.com/Skino1337/PyPoE/internal/lua"
)

// ── Bestiary ───────────────────────────────────────────────

var bestiaryRecipeSpecs = []etl.FieldSpec{
	field("Id", "id"),
	field("HintText", "header"),
	field("Description", "subheader"),
	field("Notes", "notes"),
}

var bestiaryComponentSpecs = []etl.FieldSpec{
	field("Id", "id"),
	field("MinLevel", "min_level"),
	fieldWith("BestiaryFamiliesKey", "family", etl.Field("Name")),
	fieldWith("BestiaryGroupsKey", "beast_group", etl.Field("Name")),
	fieldWith("BestiaryGenusKey", "genus", etl.Field("Name")),
	fieldWith("ModsKey", "mod_id", etl.Field("Id")),
	fieldWith("BestiaryCapturableMonstersKey", "monster", etl.Field("Name")),
}

type bestiary struct{}

func init() { etl.RegisterExporter(&bestiary{}) }

func (bestiary) Spec() etl.ExporterSpec {
	return etl.ExporterSpec{
		Name:  "bestiary",
		Label: "Bestiary recipes and components",
		Tables: []string{
			"BestiaryRecipes", "BestiaryRecipeComponent", "BestiaryFamilies",
			"BestiaryGroups", "BestiaryGenus", "BestiaryCapturableMonsters",
			"Mods", "ClientStrings",
		},
	}
}

func (bestiary) Export(ctx context.Context, env etl.Env) (*etl.Result, error) {
	p := env.Projector()

	recipeRows, err := env.Rows("BestiaryRecipes")
	if err != nil {
		return nil, err
	}
	var recipes []*etl.Record
	// recipe id -> component id -> amount, both in first-seen order
	counts := orderedmap.New[string, *orderedmap.OrderedMap[string, int64]]()
	for _, row := range recipeRows {
		if recipes, err = p.Project(row, bestiaryRecipeSpecs, recipes); err != nil {
			return nil, err
		}
		recipeID, err := row.Text("Id")
		if err != nil {
			return nil, err
		}
		parts, err := row.Refs("BestiaryRecipeComponentKeys")
		if err != nil {
			return nil, err
		}
		perRecipe, ok := counts.Get(recipeID)
		if !ok {
			perRecipe = orderedmap.New[string, int64]()
			counts.Set(recipeID, perRecipe)
		}
		for _, part := range parts {
			id, err := part.Text("Id")
			if err != nil {
				return nil, err
			}
			n, _ := perRecipe.Get(id)
			perRecipe.Set(id, n+1)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	componentRows, err := env.Rows("BestiaryRecipeComponent")
	if err != nil {
		return nil, err
	}
	var components []*etl.Record
	for _, row := range componentRows {
		rec, err := p.Record(row, bestiaryComponentSpecs)
		if err != nil {
			return nil, err
		}
		rarity, err := rarityOf(row, "RarityKey")
		if err != nil {
			return nil, err
		}
		if rarity != rarityAny {
			text, err := rarityText(env, rarity)
			if err != nil {
				return nil, err
			}
			rec.Set("rarity", etl.Text(text))
		}
		components = append(components, rec)
	}

	var recipeComponents []*etl.Record
	for recipe := counts.Oldest(); recipe != nil; recipe = recipe.Next() {
		for part := recipe.Value.Oldest(); part != nil; part = part.Next() {
			rec := etl.NewRecord()
			rec.Set("recipe_id", etl.Text(recipe.Key))
			rec.Set("component_id", etl.Text(part.Key))
			rec.Set("amount", etl.Int(part.Value))
			recipeComponents = append(recipeComponents, rec)
		}
	}

	r := &etl.Result{}
	for _, t := range []tablePage{
		{"recipes", recipes},
		{"components", components},
		{"recipe_components", recipeComponents},
	} {
		r.Add("bestiary", "bestiary_"+t.key+".lua", lua.Format(t.records), "Module:Bestiary/"+t.key)
	}
	return r, nil
}
