package repository_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skino1337/PyPoE/internal/repository"
)

const schemaYAML = `
tables:
  Quest: {}
  Characters: {}
  QuestStates:
    refs:
      QuestKey: {table: Quest}
    lists: [QuestStates]
  QuestVendorRewards:
    refs:
      CharactersKeys: {table: Characters, many: true}
`

func newRepo(t *testing.T) *repository.Memory {
	t.Helper()
	schema, err := repository.ParseSchema([]byte(schemaYAML))
	require.NoError(t, err)
	repo, err := repository.NewMemory(schema, repository.Tables{
		"Quest": {
			{"Id": "a1q1", "Act": 1},
			{"Id": "a1q2", "Act": "1"},
			{"Id": "a1q1", "Act": 9},
		},
		"Characters": {{"Name": "Marauder"}, {"Name": "Witch"}},
		"QuestStates": {
			{"QuestKey": int64(1), "QuestStates": "[3, 4]"},
			{"QuestKey": nil, "QuestStates": ""},
			{"QuestKey": int64(7), "QuestStates": []any{5}},
		},
		"QuestVendorRewards": {
			{"CharactersKeys": "[1, 0, 5]"},
		},
	})
	require.NoError(t, err)
	return repo
}

func TestParseSchema_RejectsUnknownRefTable(t *testing.T) {
	_, err := repository.ParseSchema([]byte("tables:\n  A:\n    refs:\n      BKey: {table: B}\n"))
	assert.Error(t, err)

	s, err := repository.ParseSchema([]byte("tables:\n  B: {}\n  A:\n    refs:\n      BKey: {table: B}\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, s.TableNames())
}

func TestMemory_Rows(t *testing.T) {
	repo := newRepo(t)

	rows, err := repo.Rows("Quest")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Quest[1]", rows[1].String())

	_, err = repo.Rows("Nope")
	assert.ErrorIs(t, err, repository.ErrUnknownTable)

	row, err := repo.Row("Quest", 3)
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestMemory_LookupFirstMatch(t *testing.T) {
	repo := newRepo(t)

	row, err := repo.Lookup("Quest", "Id", "a1q1")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, 0, row.Index())

	// Integer and integer text index alike.
	row, err = repo.Lookup("Quest", "Act", 1)
	require.NoError(t, err)
	assert.Equal(t, 0, row.Index())

	row, err = repo.Lookup("Quest", "Id", "missing")
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestMemory_LookupTextIsExact(t *testing.T) {
	schema, err := repository.ParseSchema([]byte("tables:\n  Quest: {}\n"))
	require.NoError(t, err)
	repo, err := repository.NewMemory(schema, repository.Tables{
		"Quest": {
			{"Id": "7"},
			{"Id": "007"},
			{"Id": int64(12)},
		},
	})
	require.NoError(t, err)

	tests := []struct {
		value any
		want  int
	}{
		{"7", 0},
		{"007", 1},
		{int64(7), 0},
		{7, 0},
		{"12", 2},
		{12, 2},
		{"0012", -1},
		{"7.0", -1},
	}
	for _, tt := range tests {
		row, err := repo.Lookup("Quest", "Id", tt.value)
		require.NoError(t, err)
		if tt.want < 0 {
			assert.Nil(t, row, "lookup %#v", tt.value)
			continue
		}
		require.NotNil(t, row, "lookup %#v", tt.value)
		assert.Equal(t, tt.want, row.Index(), "lookup %#v", tt.value)
	}
}

func TestRow_References(t *testing.T) {
	repo := newRepo(t)
	states, err := repo.Rows("QuestStates")
	require.NoError(t, err)

	quest, err := states[0].Ref("QuestKey")
	require.NoError(t, err)
	require.NotNil(t, quest)
	id, err := quest.Text("Id")
	require.NoError(t, err)
	assert.Equal(t, "a1q2", id)

	quest, err = states[1].Ref("QuestKey")
	require.NoError(t, err)
	assert.Nil(t, quest, "null reference")

	quest, err = states[2].Ref("QuestKey")
	require.NoError(t, err)
	assert.Nil(t, quest, "dangling reference")

	v, err := states[2].Get("QuestKey")
	require.NoError(t, err)
	assert.Nil(t, v, "dangling reference reads as untyped nil")

	rewards, err := repo.Rows("QuestVendorRewards")
	require.NoError(t, err)
	chars, err := rewards[0].Refs("CharactersKeys")
	require.NoError(t, err)
	require.Len(t, chars, 2, "dangling entries are dropped")
	assert.Equal(t, 1, chars[0].Index())

	_, err = states[0].Text("QuestKey")
	assert.Error(t, err, "references are not scalars")
}

func TestRow_Scalars(t *testing.T) {
	repo := newRepo(t)
	states, err := repo.Rows("QuestStates")
	require.NoError(t, err)

	ints, err := states[0].Ints("QuestStates")
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 4}, ints)

	ints, err = states[1].Ints("QuestStates")
	require.NoError(t, err)
	assert.Empty(t, ints, "empty text is an empty list")

	quests, err := repo.Rows("Quest")
	require.NoError(t, err)
	act, err := quests[1].Int("Act")
	require.NoError(t, err)
	assert.Equal(t, int64(1), act)

	_, err = quests[0].Text("Missing")
	assert.ErrorIs(t, err, repository.ErrUnknownField)
}

func TestNewMemory_RejectsBadList(t *testing.T) {
	schema, err := repository.ParseSchema([]byte("tables:\n  T:\n    lists: [L]\n"))
	require.NoError(t, err)

	_, err = repository.NewMemory(schema, repository.Tables{"T": {{"L": "[1, 2"}}})
	assert.Error(t, err)
}

func TestLoaderConfig(t *testing.T) {
	cfg := repository.LoaderConfig{"path": "  data  ", "port": 5432, "ratio": 2.0}
	assert.Equal(t, "data", cfg.String("path"))
	assert.Equal(t, 5432, cfg.Int("port"))
	assert.Equal(t, 2, cfg.Int("ratio"))
	assert.Equal(t, "", cfg.String("missing"))
}
