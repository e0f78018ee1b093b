package exporters

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Skino1337/PyPoE/internal/corrections"
	"github.com/Skino1337/PyPoE/internal/etl"
	"github.com/Skino1337/PyPoE/internal/lua"
	"github.com/Skino1337/PyPoE/internal/repository"
)

// ── Quest Rewards ──────────────────────────────────────────
// One record per quest, item and reward variant. Rows that differ only by
// character class fold into one record listing every class.

// Item classes whose rewards carry neither item level nor rarity.
var plainRewardClasses = map[string]bool{
	"Active Skill Gem":  true,
	"Support Skill Gem": true,
	"QuestItem":         true,
	"StackableCurrency": true,
}

var questSpecs = []etl.FieldSpec{
	field("Name", "quest"),
	field("Id", "quest_id"),
	field("Act", "act"),
}

type questRewards struct{}

func init() { etl.RegisterExporter(&questRewards{}) }

func (questRewards) Spec() etl.ExporterSpec {
	return etl.ExporterSpec{
		Name:  "quest_rewards",
		Label: "Quest rewards",
		Tables: []string{
			"QuestRewards", "Quest", "BaseItemTypes", "ItemClasses",
			"Characters", "ClientStrings", "MapSeries",
		},
	}
}

func (questRewards) Export(ctx context.Context, env etl.Env) (*etl.Result, error) {
	rows, err := env.Rows("QuestRewards")
	if err != nil {
		return nil, err
	}
	p := env.Projector()
	var records []*etl.Record
	keys := etl.RecordKeys{}
	var noUniqueTable, noRingTable bool

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		item, err := row.Ref("BaseItemTypesKey")
		if err != nil {
			return nil, err
		}
		// Random map rewards with a master mod have no base item.
		if item == nil {
			continue
		}
		quest, err := row.Ref("QuestKey")
		if err != nil {
			return nil, err
		}
		if quest == nil {
			env.Warnings.Warnf(row.Index(), "quest reward has no quest")
			continue
		}

		data, err := p.Record(quest, questSpecs)
		if err != nil {
			return nil, err
		}
		// Unreleased, broken or master quests have no name.
		if !data.Has("quest") {
			continue
		}
		questName := data.Text("quest")

		character, err := row.Ref("CharactersKey")
		if err != nil {
			return nil, err
		}
		if character != nil {
			if err := copyText(data, "classes", character, "Name"); err != nil {
				return nil, err
			}
		}

		rarity, err := rarityOf(row, "RarityKey")
		if err != nil {
			return nil, err
		}
		var rarityName string
		if rarity != rarityAny {
			if rarityName, err = rarityText(env, rarity); err != nil {
				return nil, err
			}
		}

		sockets, err := row.Text("SocketGems")
		if err != nil {
			return nil, err
		}
		if sockets != "" {
			data.Set("sockets", etl.Text(sockets))
		}

		itemClass, err := etl.Path("ItemClassesKey", "Id")(item)
		if err != nil {
			return nil, err
		}
		itemID, err := item.Text("Id")
		if err != nil {
			return nil, err
		}
		name, err := item.Text("Name")
		if err != nil {
			return nil, err
		}
		key0, err := row.Int("Key0")
		if err != nil {
			return nil, err
		}

		switch cls := itemClass.Text(); {
		case cls == "QuestItem" && strings.Contains(itemID, "Book"):
			name = fmt.Sprintf("%s (%s)", name, questName)
		case cls == "Map":
			series, err := env.Repo.Lookup("MapSeries", "Id", "MapWorlds")
			if err != nil {
				return nil, err
			}
			if series == nil {
				return nil, fmt.Errorf("MapSeries: no row with Id %q", "MapWorlds")
			}
			seriesName, err := series.Text("Name")
			if err != nil {
				return nil, err
			}
			name = fmt.Sprintf("%s (%s)", name, seriesName)
		}

		if !plainRewardClasses[itemClass.Text()] {
			level, err := row.Int("ItemLevel")
			if err != nil {
				return nil, err
			}
			data.Set("item_level", etl.Int(level))
			if rarityName != "" {
				data.Set("rarity", etl.Text(rarityName))
			}

			// Uniques without a fixed rarity are told apart by Key0.
			if rarity == rarityAny {
				unique, ok, err := env.Corrections.Lookup(corrections.UniqueItems, env.Language, strconv.FormatInt(key0, 10))
				switch {
				case errors.Is(err, corrections.ErrNoTable):
					if !noUniqueTable {
						env.Warnings.Warnf(-1, "no unique item mapping defined for %s", env.Language)
						noUniqueTable = true
					}
				case err != nil:
					return nil, err
				case ok:
					name = unique
					text, err := rarityText(env, "unique")
					if err != nil {
						return nil, err
					}
					data.Set("rarity", etl.Text(text))
				default:
					env.Warnings.Warnf(row.Index(), "uncaptured unique item %d %s %s", key0, questName, name)
				}
			}
		}

		ring, ok, err := env.Corrections.Lookup(corrections.TwoStoneRings, env.Language, itemID)
		switch {
		case errors.Is(err, corrections.ErrNoTable):
			if !noRingTable {
				env.Warnings.Warnf(-1, "no two stone ring mapping defined for %s", env.Language)
				noRingTable = true
			}
		case err != nil:
			return nil, err
		case ok:
			name = ring
		}
		data.Set("reward", etl.Text(name))

		records = append(records, data)
		keys[data] = data.Text("quest_id") + itemID + strconv.FormatInt(key0, 10)
	}

	merged := etl.Merge(records, keys.Key, env.Warnings, "classes")
	return rewardResult("quest", merged.Records()), nil
}

// rewardResult orders reward records by act, quest and reward and renders
// them into <dataType>_rewards.txt.
func rewardResult(dataType string, records []*etl.Record) *etl.Result {
	ordered := etl.Order(records,
		etl.ByField("act"),
		etl.ByField("quest_id"),
		etl.ByField("reward"),
	)
	r := &etl.Result{}
	r.Add(dataType+"_rewards", dataType+"_rewards.txt", lua.Format(ordered),
		"Module:Quest reward/data/"+dataType)
	return r
}

// copyText sets key on rec from a text field of row, leaving it out when empty.
func copyText(rec *etl.Record, key string, row *repository.Row, field string) error {
	s, err := row.Text(field)
	if err != nil {
		return err
	}
	if s != "" {
		rec.Set(key, etl.Text(s))
	}
	return nil
}
