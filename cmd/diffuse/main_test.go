package main

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"grove-ca/internal/batch"
	"grove-ca/internal/persistence/resultsdb"
	"grove-ca/internal/persistence/snapshot"
)

func TestConfigPath(t *testing.T) {
	assert.Equal(t, "a.yaml", configPath([]string{"-v", "-config", "a.yaml", "x.txt"}))
	assert.Equal(t, "b.yaml", configPath([]string{"--config=b.yaml"}))
	assert.Equal(t, "", configPath([]string{"-rounds", "3", "-config"}))
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	opts, err := parseOptions([]string{
		"-config", filepath.Join("testdata", "run.yaml"),
		"-rounds", "20", "-engine", "naive",
		filepath.Join("testdata", "small.txt"),
	}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 8, opts.run.WordBits, "from the file")
	assert.Equal(t, 2, opts.run.Workers, "from the file")
	assert.Equal(t, 20, opts.run.Rounds, "flag wins")
	assert.Equal(t, "naive", opts.run.Engine, "flag wins")
	assert.Len(t, opts.inputs, 1)
}

func TestParseOptionsErrors(t *testing.T) {
	_, err := parseOptions(nil, io.Discard)
	assert.Error(t, err)

	_, err = parseOptions([]string{"-word", "12", "x.txt"}, io.Discard)
	assert.Error(t, err)

	_, err = parseOptions([]string{"-watch", "a.txt", "b.txt"}, io.Discard)
	assert.Error(t, err)

	_, err = parseOptions([]string{"-config", "missing.yaml", "a.txt"}, io.Discard)
	assert.Error(t, err)

	_, err = parseOptions([]string{"-stable", "-rounds", "0", "a.txt"}, io.Discard)
	assert.ErrorIs(t, err, batch.ErrUnsizedSearch)
}

func TestStableWithoutRoundLimit(t *testing.T) {
	for _, args := range [][]string{
		{"-stable", "-rounds", "0", "-padding", "30"},
		{"-stable", "-rounds", "0", "-engine", "naive"},
	} {
		opts, err := parseOptions(append(args, filepath.Join("testdata", "larger.txt")), io.Discard)
		require.NoError(t, err)

		var out bytes.Buffer
		require.NoError(t, run(context.Background(), opts, &out, zap.NewNop()), args)
		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		require.Len(t, lines, 2)
		fields := strings.Fields(lines[1])
		require.GreaterOrEqual(t, len(fields), 6)
		assert.Equal(t, "146", fields[4], args)
		assert.Equal(t, "20", fields[5], args)
	}
}

func TestRunPrintsSortedResults(t *testing.T) {
	dir := t.TempDir()
	opts, err := parseOptions([]string{
		"-word", "16",
		"-snapshot", filepath.Join(dir, "snaps"),
		"-db", filepath.Join(dir, "results.db"),
		filepath.Join("testdata", "small.txt"),
		filepath.Join("testdata", "larger.txt"),
	}, io.Discard)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), opts, &out, zap.NewNop()))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "larger.txt"))
	assert.Contains(t, lines[1], " 110 ")
	assert.True(t, strings.HasPrefix(lines[2], "small.txt"))
	assert.Contains(t, lines[2], " 25 ")

	snap, err := snapshot.ReadSnapshot(filepath.Join(dir, "snaps", "larger.snap"))
	require.NoError(t, err)
	assert.Equal(t, 10, snap.Header.Round)
	assert.Equal(t, 16, snap.WordBits)

	idx, err := resultsdb.OpenSQLite(filepath.Join(dir, "results.db"))
	require.NoError(t, err)
	defer idx.Close()
	recent, err := idx.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}

func TestResumeContinuesFromSnapshot(t *testing.T) {
	dir := t.TempDir()
	opts, err := parseOptions([]string{
		"-rounds", "5",
		"-snapshot", dir,
		filepath.Join("testdata", "larger.txt"),
	}, io.Discard)
	require.NoError(t, err)
	require.NoError(t, run(context.Background(), opts, io.Discard, zap.NewNop()))

	opts, err = parseOptions([]string{
		"-rounds", "5",
		"-resume", filepath.Join(dir, "larger.snap"),
	}, io.Discard)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), opts, &out, zap.NewNop()))
	assert.Equal(t, "larger.txt: round 10, empty 110, stable 0\n", out.String())
}

func TestRunReportsFailures(t *testing.T) {
	opts, err := parseOptions([]string{
		"-word", "8", "-padding", "1",
		filepath.Join("testdata", "larger.txt"),
	}, io.Discard)
	require.NoError(t, err)

	var out bytes.Buffer
	err = run(context.Background(), opts, &out, zap.NewNop())
	assert.Error(t, err)
	assert.Contains(t, out.String(), "capacity")
}
