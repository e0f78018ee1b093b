// Package exporters holds the wiki datasets. Each file registers its
// exporter with the etl registry from init().
package exporters

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Skino1337/PyPoE/internal/etl"
	"github.com/Skino1337/PyPoE/internal/repository"
)

// Rarity values as stored in RarityKey columns. Text columns hold the
// names instead.
var rarityNames = map[int64]string{
	1: "normal",
	2: "magic",
	3: "rare",
	4: "unique",
	5: "any",
}

const rarityAny = "any"

var titleCase = cases.Title(language.Und)

// rarityOf reads a RarityKey column and returns the lower-case rarity name.
func rarityOf(row *repository.Row, field string) (string, error) {
	raw, err := row.Get(field)
	if err != nil {
		return "", err
	}
	switch v := raw.(type) {
	case int64:
		name, ok := rarityNames[v]
		if !ok {
			return "", fmt.Errorf("%s.%s: unknown rarity %d", row, field, v)
		}
		return name, nil
	case string:
		name := strings.ToLower(strings.TrimSpace(v))
		for _, known := range rarityNames {
			if name == known {
				return name, nil
			}
		}
		return "", fmt.Errorf("%s.%s: unknown rarity %q", row, field, v)
	default:
		return "", fmt.Errorf("%s.%s: expected rarity, got %T", row, field, raw)
	}
}

// rarityText returns the localized display string of a rarity.
func rarityText(env etl.Env, rarity string) (string, error) {
	return clientString(env, "ItemDisplayString"+titleCase.String(rarity))
}

// clientString returns the Text of the ClientStrings row with the given Id.
func clientString(env etl.Env, id string) (string, error) {
	row, err := env.Repo.Lookup("ClientStrings", "Id", id)
	if err != nil {
		return "", err
	}
	if row == nil {
		return "", fmt.Errorf("ClientStrings: no row with Id %q", id)
	}
	return row.Text("Text")
}

// project runs specs over every row of table.
func project(env etl.Env, table string, specs []etl.FieldSpec) ([]*etl.Record, error) {
	rows, err := env.Rows(table)
	if err != nil {
		return nil, err
	}
	p := env.Projector()
	out := make([]*etl.Record, 0, len(rows))
	for _, row := range rows {
		if out, err = p.Project(row, specs, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// tablePage is a dataset rendered into its own file and module page.
type tablePage struct {
	key     string
	records []*etl.Record
}

func field(source, key string) etl.FieldSpec {
	return etl.FieldSpec{Source: source, Key: key}
}

func fieldWith(source, key string, fn etl.TransformFunc) etl.FieldSpec {
	return etl.FieldSpec{Source: source, Key: key, Transform: fn}
}
