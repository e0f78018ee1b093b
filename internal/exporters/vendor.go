package exporters

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/Skino1337/PyPoE/internal/corrections"
	"github.com/Skino1337/PyPoE/internal/etl"
	"github.com/Skino1337/PyPoE/internal/repository"
)

// ── Vendor Rewards ─────────────────────────────────────────
// Vendor rewards hang off quest states rather than quests. Every quest
// owning the state and every offered item yields one record; records for
// the same quest and item merge their classes.

type vendorRewards struct{}

func init() { etl.RegisterExporter(&vendorRewards{}) }

func (vendorRewards) Spec() etl.ExporterSpec {
	return etl.ExporterSpec{
		Name:  "vendor_rewards",
		Label: "Quest vendor rewards",
		Tables: []string{
			"QuestVendorRewards", "QuestStates", "Quest", "NPCs",
			"BaseItemTypes", "Characters",
		},
	}
}

func (vendorRewards) Export(ctx context.Context, env etl.Env) (*etl.Result, error) {
	rows, err := env.Rows("QuestVendorRewards")
	if err != nil {
		return nil, err
	}
	byState, err := questsByState(env)
	if err != nil {
		return nil, err
	}

	p := env.Projector()
	var records []*etl.Record
	keys := etl.RecordKeys{}
	var noFallbackTable bool

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		state, err := row.Int("QuestState")
		if err != nil {
			return nil, err
		}

		quests := byState[state]
		if len(quests) == 0 {
			quest, ok, err := fallbackQuest(env, state)
			switch {
			case errors.Is(err, corrections.ErrNoTable):
				if !noFallbackTable {
					env.Warnings.Warnf(-1, "no quest state fallback defined for %s", env.Language)
					noFallbackTable = true
				}
			case err != nil:
				return nil, err
			case ok:
				quests = append(quests, quest)
			}
		}

		items, err := row.Refs("BaseItemTypesKeys")
		if err != nil {
			return nil, err
		}
		npc, err := row.Ref("NPCKey")
		if err != nil {
			return nil, err
		}
		npcName := ""
		if npc != nil {
			if npcName, err = npc.Text("Name"); err != nil {
				return nil, err
			}
		}

		if len(quests) == 0 {
			names, err := etl.FieldList("Name")(items)
			if err != nil {
				return nil, err
			}
			env.Warnings.Warnf(row.Index(), "quest vendor reward has no quest; state: %d, npc: %s, items: %s",
				state, npcName, names)
			continue
		}
		if len(items) == 0 {
			env.Warnings.Warnf(row.Index(), "no corresponding items found for given item ids")
			continue
		}

		characters, err := row.Refs("CharactersKeys")
		if err != nil {
			return nil, err
		}
		classes, err := etl.JoinField("Name", etl.UnitSeparator)(characters)
		if err != nil {
			return nil, err
		}

		for _, quest := range quests {
			questID, err := quest.Text("Id")
			if err != nil {
				return nil, err
			}
			for _, item := range items {
				data, err := p.Record(quest, questSpecs)
				if err != nil {
					return nil, err
				}
				if err := copyText(data, "reward", item, "Name"); err != nil {
					return nil, err
				}
				if npcName != "" {
					data.Set("npc", etl.Text(npcName))
				}
				if len(characters) > 0 {
					data.Set("classes", classes)
				}

				itemID, err := item.Text("Id")
				if err != nil {
					return nil, err
				}
				records = append(records, data)
				keys[data] = questID + itemID
			}
		}
	}

	universe, err := characterNames(env)
	if err != nil {
		return nil, err
	}
	merged := etl.Merge(records, keys.Key, env.Warnings, "classes")
	merged.Collapse("classes", universe)

	return rewardResult("vendor", merged.Records()), nil
}

// questsByState maps each quest state to the quests listing it, in
// QuestStates order.
func questsByState(env etl.Env) (map[int64][]*repository.Row, error) {
	rows, err := env.Rows("QuestStates")
	if err != nil {
		return nil, err
	}
	out := make(map[int64][]*repository.Row)
	for _, row := range rows {
		states, err := row.Ints("QuestStates")
		if err != nil {
			return nil, err
		}
		quest, err := row.Ref("QuestKey")
		if err != nil {
			return nil, err
		}
		if quest == nil {
			continue
		}
		seen := make(map[int64]bool, len(states))
		for _, s := range states {
			if seen[s] {
				continue
			}
			seen[s] = true
			out[s] = append(out[s], quest)
		}
	}
	return out, nil
}

// fallbackQuest resolves a quest state no quest lists through the
// correction table.
func fallbackQuest(env etl.Env, state int64) (*repository.Row, bool, error) {
	id, ok, err := env.Corrections.Lookup(corrections.QuestStateFallback, env.Language, strconv.FormatInt(state, 10))
	if err != nil || !ok {
		return nil, false, err
	}
	quest, err := env.Repo.Lookup("Quest", "Id", id)
	if err != nil {
		return nil, false, err
	}
	if quest == nil {
		return nil, false, fmt.Errorf("quest state %d falls back to unknown quest %q", state, id)
	}
	return quest, true, nil
}

// characterNames lists the Name of every playable character.
func characterNames(env etl.Env) ([]string, error) {
	rows, err := env.Rows("Characters")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		name, err := row.Text("Name")
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}
