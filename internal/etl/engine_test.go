package etl_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skino1337/PyPoE/internal/etl"
)

type fakeExporter struct {
	name string
	err  error
}

func (f fakeExporter) Spec() etl.ExporterSpec {
	return etl.ExporterSpec{Name: f.name, Label: "fake", Tables: []string{"Quest"}}
}

func (f fakeExporter) Export(_ context.Context, env etl.Env) (*etl.Result, error) {
	env.Warnings.Warnf(3, "row three is odd")
	if f.err != nil {
		return nil, f.err
	}
	res := &etl.Result{}
	res.Add(f.name, f.name+"_a.lua", "A", "Module:A")
	res.Add(f.name, f.name+"_b.lua", "B", "Module:B")
	return res, nil
}

type recordingDest struct {
	written []string
	failOn  string
}

func (d *recordingDest) Write(_ context.Context, a etl.Artifact) error {
	if a.OutFile == d.failOn {
		return errors.New("disk full")
	}
	d.written = append(d.written, a.OutFile)
	return nil
}

func TestEngine_Run(t *testing.T) {
	dest := &recordingDest{}
	e := &etl.Engine{Dest: dest}

	res, err := e.Run(context.Background(), fakeExporter{name: "eng_ok"}, etl.Env{})
	require.NoError(t, err)
	assert.Equal(t, "success", res.Status)
	assert.Equal(t, []string{"eng_ok_a.lua", "eng_ok_b.lua"}, dest.written)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "eng_ok: row 3: row three is odd", res.Warnings[0].String())
}

func TestEngine_RunFailureWritesNothing(t *testing.T) {
	dest := &recordingDest{}
	e := &etl.Engine{Dest: dest}

	res, err := e.Run(context.Background(), fakeExporter{name: "eng_bad", err: errors.New("broken table")}, etl.Env{})
	require.Error(t, err)
	assert.Equal(t, "error", res.Status)
	assert.Equal(t, "broken table", res.Error)
	assert.Empty(t, dest.written)
	assert.Len(t, res.Warnings, 1, "warnings survive a failure")
}

func TestEngine_CheckRunsBeforeAnyWrite(t *testing.T) {
	dest := &recordingDest{}
	var checked []string
	e := &etl.Engine{
		Dest: dest,
		Check: func(a etl.Artifact) error {
			checked = append(checked, a.OutFile)
			if a.Text == "B" {
				return errors.New("does not load")
			}
			return nil
		},
	}

	res, err := e.Run(context.Background(), fakeExporter{name: "eng_check"}, etl.Env{})
	require.Error(t, err)
	assert.Equal(t, "error", res.Status)
	assert.Contains(t, res.Error, "check eng_check_b.lua")
	assert.Equal(t, []string{"eng_check_a.lua", "eng_check_b.lua"}, checked)
	assert.Empty(t, dest.written, "a failed check on a later file keeps the earlier ones unwritten")
}

func TestEngine_RunAll(t *testing.T) {
	etl.RegisterExporter(fakeExporter{name: "eng_all_ok"})
	etl.RegisterExporter(fakeExporter{name: "eng_all_bad", err: errors.New("boom")})

	e := &etl.Engine{}
	results, err := e.RunAll(context.Background(), []string{"eng_all_bad", "eng_all_missing", "eng_all_ok"}, etl.Env{})

	require.Error(t, err)
	assert.ErrorIs(t, err, etl.ErrUnknownExporter)
	require.Len(t, results, 3)
	assert.Equal(t, "error", results[0].Status)
	assert.Equal(t, "error", results[1].Status)
	assert.Equal(t, "success", results[2].Status, "a failed dataset does not stop the rest")
}

func TestExporterRegistry(t *testing.T) {
	etl.RegisterExporter(fakeExporter{name: "reg_b"})
	etl.RegisterExporter(fakeExporter{name: "reg_a"})

	_, err := etl.GetExporter("reg_a")
	require.NoError(t, err)

	_, err = etl.GetExporter("reg_nope")
	assert.ErrorIs(t, err, etl.ErrUnknownExporter)

	var names []string
	for _, s := range etl.ListExporters() {
		names = append(names, s.Name)
	}
	assert.IsIncreasing(t, names)
}

func TestFileDestination(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	d := &etl.FileDestination{Dir: dir}

	require.NoError(t, d.Write(context.Background(), etl.Artifact{OutFile: "quest_rewards.txt", Text: "local data = {}"}))
	data, err := os.ReadFile(filepath.Join(dir, "quest_rewards.txt"))
	require.NoError(t, err)
	assert.Equal(t, "local data = {}", string(data))

	assert.Error(t, d.Write(context.Background(), etl.Artifact{OutFile: "../escape.lua"}))
	assert.Error(t, d.Write(context.Background(), etl.Artifact{OutFile: ""}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestWarnings_NilSafe(t *testing.T) {
	var w *etl.Warnings
	w.Warnf(1, "dropped")
	assert.Zero(t, w.Len())
	assert.Nil(t, w.List())
}
