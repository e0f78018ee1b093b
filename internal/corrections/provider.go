// Package corrections holds the hand-maintained lookup tables that patch
// known gaps in the game data, keyed by table, language and entity id.
package corrections

import (
	"errors"
	"fmt"
	"maps"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrNoTable means a correction table has no entries for the language.
var ErrNoTable = errors.New("no correction table")

const (
	// UniqueItems maps a quest reward row's Key0 to the unique item name.
	UniqueItems = "unique_items"
	// TwoStoneRings maps a base item id to a name that tells the variants apart.
	TwoStoneRings = "two_stone_rings"
	// QuestStateFallback maps a quest state with no owning quest to a quest id.
	QuestStateFallback = "quest_state_fallback"
)

// AnyLanguage marks entries that apply regardless of the language.
const AnyLanguage = "*"

// Provider looks up corrections. Lookup returns ErrNoTable when table holds
// nothing for lang, and ok=false when the table exists but lacks id.
type Provider interface {
	Lookup(table, lang, id string) (value string, ok bool, err error)
}

// Static is an in-memory provider: table -> language -> id -> value.
type Static map[string]map[string]map[string]string

func (s Static) Lookup(table, lang, id string) (string, bool, error) {
	byLang := s[table]
	entries, ok := byLang[lang]
	if !ok {
		entries, ok = byLang[AnyLanguage]
	}
	if !ok {
		return "", false, fmt.Errorf("%w: %s (%s)", ErrNoTable, table, lang)
	}
	v, ok := entries[id]
	return v, ok, nil
}

// Merge overlays other onto s, entry by entry.
func (s Static) Merge(other Static) {
	for table, byLang := range other {
		if s[table] == nil {
			s[table] = map[string]map[string]string{}
		}
		for lang, entries := range byLang {
			if s[table][lang] == nil {
				s[table][lang] = map[string]string{}
			}
			maps.Copy(s[table][lang], entries)
		}
	}
}

// Load returns the default tables overlaid with the YAML file at path.
// An empty path returns the defaults.
func Load(path string) (Static, error) {
	s := Default()
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corrections: %w", err)
	}
	var extra Static
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return nil, fmt.Errorf("parse corrections: %w", err)
	}
	s.Merge(extra)
	return s, nil
}
