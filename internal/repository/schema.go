package repository

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// RefSpec declares a reference column: its raw value is the row index of a
// row in Table, or a list of indexes when Many is set.
type RefSpec struct {
	Table string `yaml:"table"`
	Many  bool   `yaml:"many,omitempty"`
}

// TableSchema describes the non-scalar columns of one table.
// Columns that are not mentioned are plain scalars.
type TableSchema struct {
	Refs  map[string]RefSpec `yaml:"refs,omitempty"`
	Lists []string           `yaml:"lists,omitempty"`
}

// Schema maps table names to their column declarations.
type Schema struct {
	Tables map[string]TableSchema `yaml:"tables"`
}

// LoadSchema reads a YAML schema file.
func LoadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	return ParseSchema(data)
}

// ParseSchema decodes a YAML schema and checks that every reference points
// at a declared table.
func ParseSchema(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	if s.Tables == nil {
		s.Tables = map[string]TableSchema{}
	}
	for name, t := range s.Tables {
		for field, ref := range t.Refs {
			if ref.Table == "" {
				return nil, fmt.Errorf("schema: %s.%s: reference without table", name, field)
			}
			if _, ok := s.Tables[ref.Table]; !ok {
				return nil, fmt.Errorf("schema: %s.%s references undeclared table %q", name, field, ref.Table)
			}
		}
	}
	return &s, nil
}

// TableNames returns the declared tables in sorted order.
func (s *Schema) TableNames() []string {
	names := make([]string, 0, len(s.Tables))
	for name := range s.Tables {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (s *Schema) ref(table, field string) (RefSpec, bool) {
	if s == nil {
		return RefSpec{}, false
	}
	ref, ok := s.Tables[table].Refs[field]
	return ref, ok
}

func (s *Schema) isList(table, field string) bool {
	if s == nil {
		return false
	}
	t := s.Tables[table]
	return slices.Contains(t.Lists, field) || t.Refs[field].Many
}
