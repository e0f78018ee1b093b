package loaders_test

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	_ "modernc.org/sqlite"

	"github.com/Skino1337/PyPoE/internal/repository"
	_ "github.com/Skino1337/PyPoE/internal/repository/loaders"
)

const schemaYAML = `
tables:
  Quest: {}
  QuestStates:
    refs:
      QuestKey: {table: Quest}
    lists: [QuestStates]
`

func testSchema(t *testing.T) *repository.Schema {
	t.Helper()
	s, err := repository.ParseSchema([]byte(schemaYAML))
	require.NoError(t, err)
	return s
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// assertQuests checks the fixture every loader test reads.
func assertQuests(t *testing.T, repo *repository.Memory) {
	t.Helper()
	states, err := repo.Rows("QuestStates")
	require.NoError(t, err)
	require.Len(t, states, 1)

	quest, err := states[0].Ref("QuestKey")
	require.NoError(t, err)
	require.NotNil(t, quest)
	name, err := quest.Text("Name")
	require.NoError(t, err)
	assert.Equal(t, "Mercy Mission", name)

	ints, err := states[0].Ints("QuestStates")
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 4}, ints)

	act, err := quest.Int("Act")
	require.NoError(t, err)
	assert.Equal(t, int64(1), act)
}

func TestListLoaders(t *testing.T) {
	var types []string
	for _, s := range repository.ListLoaders() {
		types = append(types, s.Type)
	}
	assert.Equal(t, []string{"csv_dir", "database", "json_file", "xlsx"}, types)

	_, err := repository.GetLoader("http")
	assert.Error(t, err)
}

func TestJSONFile_Document(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	writeFile(t, path, `{
		"Quest": [{"Id": "a1q1", "Name": "Enemy at the Gate", "Act": 1}, {"Id": "a1q2", "Name": "Mercy Mission", "Act": 1}],
		"QuestStates": [{"QuestKey": 1, "QuestStates": [3, 4]}],
		"Unrelated": [{"x": 1}]
	}`)

	repo, err := repository.Open(context.Background(), "json_file", repository.LoaderConfig{"path": path}, testSchema(t))
	require.NoError(t, err)
	assertQuests(t, repo)

	_, err = repo.Rows("Unrelated")
	assert.ErrorIs(t, err, repository.ErrUnknownTable, "tables outside the schema are not loaded")
}

func TestJSONFile_Directory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Quest.json"), `[{"Id": "a1q1", "Name": "Enemy at the Gate", "Act": 1}, {"Id": "a1q2", "Name": "Mercy Mission", "Act": 1.0}]`)
	writeFile(t, filepath.Join(dir, "QuestStates.json"), `[{"QuestKey": 1, "QuestStates": "[3, 4]"}]`)
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")

	repo, err := repository.Open(context.Background(), "json_file", repository.LoaderConfig{"path": dir}, testSchema(t))
	require.NoError(t, err)
	assertQuests(t, repo)
}

func TestJSONFile_Errors(t *testing.T) {
	_, err := repository.Open(context.Background(), "json_file", repository.LoaderConfig{}, nil)
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	writeFile(t, path, `{"Quest": [`)
	_, err = repository.Open(context.Background(), "json_file", repository.LoaderConfig{"path": path}, nil)
	assert.Error(t, err)
}

func TestCSVDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Quest.csv"), "Id,Name,Act\na1q1,Enemy at the Gate,1\na1q2,Mercy Mission,1\n")
	writeFile(t, filepath.Join(dir, "QuestStates.csv"), "QuestKey,QuestStates\n1,\"[3, 4]\"\n")

	repo, err := repository.Open(context.Background(), "csv_dir", repository.LoaderConfig{"path": dir}, testSchema(t))
	require.NoError(t, err)
	assertQuests(t, repo)
}

func TestCSVDir_Delimiter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Quest.csv"), "Id;Name;Act\na1q1;Enemy at the Gate;1\na1q2;Mercy Mission;1\n")
	writeFile(t, filepath.Join(dir, "QuestStates.csv"), "QuestKey;QuestStates\n1;[3, 4]\n")

	repo, err := repository.Open(context.Background(), "csv_dir", repository.LoaderConfig{"path": dir, "delimiter": ";"}, testSchema(t))
	require.NoError(t, err)
	assertQuests(t, repo)
}

func TestXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "Quest"))
	require.NoError(t, f.SetSheetRow("Quest", "A1", &[]any{"Id", "Name", "Act"}))
	require.NoError(t, f.SetSheetRow("Quest", "A2", &[]any{"a1q1", "Enemy at the Gate", 1}))
	require.NoError(t, f.SetSheetRow("Quest", "A3", &[]any{"a1q2", "Mercy Mission", 1}))
	_, err := f.NewSheet("QuestStates")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("QuestStates", "A1", &[]any{"QuestKey", "QuestStates"}))
	require.NoError(t, f.SetSheetRow("QuestStates", "A2", &[]any{1, "[3, 4]"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	repo, err := repository.Open(context.Background(), "xlsx", repository.LoaderConfig{"path": path}, testSchema(t))
	require.NoError(t, err)
	assertQuests(t, repo)
}

func TestDatabase_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	for _, stmt := range []string{
		`CREATE TABLE Quest (Id TEXT, Name TEXT, Act INTEGER)`,
		`INSERT INTO Quest VALUES ('a1q1', 'Enemy at the Gate', 1), ('a1q2', 'Mercy Mission', 1)`,
		`CREATE TABLE QuestStates (QuestKey INTEGER, QuestStates TEXT)`,
		`INSERT INTO QuestStates VALUES (1, '[3, 4]')`,
		`CREATE TABLE Filler (N INTEGER)`,
	} {
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}
	// Enough rows to page through more than one fetch.
	for i := 0; i < 1200; i++ {
		_, err := db.Exec(`INSERT INTO Filler VALUES (?)`, i)
		require.NoError(t, err)
	}
	require.NoError(t, db.Close())

	cfg := repository.LoaderConfig{"driver": "sqlite", "host": path}
	repo, err := repository.Open(context.Background(), "database", cfg, testSchema(t))
	require.NoError(t, err)
	assertQuests(t, repo)

	// Without a schema every table is read.
	repo, err = repository.Open(context.Background(), "database", cfg, nil)
	require.NoError(t, err)
	rows, err := repo.Rows("Filler")
	require.NoError(t, err)
	require.Len(t, rows, 1200)
	last, err := rows[1199].Int("N")
	require.NoError(t, err)
	assert.Equal(t, int64(1199), last, "rows keep storage order")
}

func TestDatabase_RequiresDriver(t *testing.T) {
	_, err := repository.Open(context.Background(), "database", repository.LoaderConfig{"host": "x"}, nil)
	assert.Error(t, err)
}
