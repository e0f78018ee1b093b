package storage_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skino1337/PyPoE/internal/etl"
	"github.com/Skino1337/PyPoE/internal/storage"
)

func openStore(t *testing.T) (*storage.ExportLogStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "runs.db")
	db, err := storage.New(path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return storage.NewExportLogStore(db), path
}

func result(dataset string) *etl.ExportResult {
	return &etl.ExportResult{
		Dataset: dataset,
		Status:  "success",
		Artifacts: []etl.Artifact{
			{Dataset: dataset, OutFile: dataset + "_a.lua", Text: "local data = {}", Pages: []etl.Page{{Page: "Module:A"}}},
			{Dataset: dataset, OutFile: dataset + "_b.lua", Text: "x", Pages: []etl.Page{{Page: "Module:B", Condition: "en"}}},
		},
		Warnings: []etl.Warning{
			{Dataset: dataset, Row: 4, Message: "no quest"},
			{Dataset: dataset, Row: -1, Message: "no table"},
		},
		Duration: 1500 * time.Millisecond,
	}
}

func TestExportLog_RecordAndRead(t *testing.T) {
	store, _ := openStore(t)
	finished := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	run, err := store.RecordRun(result("delve"), "English", "manual", finished)
	require.NoError(t, err)
	assert.True(t, run.StartedAt.Equal(finished.Add(-1500*time.Millisecond)))

	got, err := store.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, "delve", got.Dataset)
	assert.Equal(t, "English", got.Language)
	assert.Equal(t, "manual", got.Trigger)
	assert.Equal(t, 1500*time.Millisecond, got.Duration)
	assert.True(t, got.FinishedAt.Equal(finished))

	arts, err := store.ListArtifacts(run.ID)
	require.NoError(t, err)
	require.Len(t, arts, 2)
	assert.Equal(t, "delve_a.lua", arts[0].OutFile)
	assert.Equal(t, len("local data = {}"), arts[0].Size)
	assert.Equal(t, []etl.Page{{Page: "Module:B", Condition: "en"}}, arts[1].Pages)

	warns, err := store.ListWarnings(run.ID)
	require.NoError(t, err)
	assert.Equal(t, result("delve").Warnings, warns)

	_, err = store.GetRun("missing")
	assert.Error(t, err)
}

func TestExportLog_ListRunsNewestFirst(t *testing.T) {
	store, _ := openStore(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, ds := range []string{"delve", "monster", "delve"} {
		_, err := store.RecordRun(result(ds), "English", "schedule", base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, err)
	}

	all, err := store.ListRuns("", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].StartedAt.After(all[1].StartedAt))

	delve, err := store.ListRuns("delve", 1)
	require.NoError(t, err)
	require.Len(t, delve, 1)
	assert.True(t, delve[0].FinishedAt.Equal(base.Add(2*time.Hour)))
}

func TestExportLog_Prune(t *testing.T) {
	store, _ := openStore(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	var oldest string
	for i := 0; i < 3; i++ {
		run, err := store.RecordRun(result("bestiary"), "English", "manual", base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
		if i == 0 {
			oldest = run.ID
		}
	}

	n, err := store.Prune("bestiary", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	arts, err := store.ListArtifacts(oldest)
	require.NoError(t, err)
	assert.Empty(t, arts, "artifacts go with their run")
}

func TestNew_ReopenKeepsData(t *testing.T) {
	store, path := openStore(t)
	_, err := store.RecordRun(result("synthesis"), "German", "file_watch", time.Now())
	require.NoError(t, err)

	db, err := storage.New(path)
	require.NoError(t, err, "migrations are idempotent")
	defer db.Close()

	runs, err := storage.NewExportLogStore(db).ListRuns("synthesis", 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
