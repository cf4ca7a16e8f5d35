package app

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grove-ca/internal/config"
)

func parse(t *testing.T, args ...string) (*Config, *flag.FlagSet) {
	t.Helper()
	cfg := NewConfig()
	fs := flag.NewFlagSet("ca", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cfg.Bind(fs)
	require.NoError(t, fs.Parse(args))
	return cfg, fs
}

func TestBind(t *testing.T) {
	cfg, _ := parse(t, "-sim", "life", "-rps", "30", "-params", "w=64, h=32")

	assert.Equal(t, "life", cfg.Sim)
	assert.Equal(t, 30, cfg.RPS)
	assert.Equal(t, 4, cfg.Scale)

	params, err := cfg.SimParams()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"w": "64", "h": "32"}, params)
}

func TestSimParamsErrors(t *testing.T) {
	cfg := NewConfig()
	params, err := cfg.SimParams()
	require.NoError(t, err)
	assert.Empty(t, params)

	cfg.Params = "word=8,rounds"
	_, err = cfg.SimParams()
	assert.Error(t, err)

	cfg.Params = ""
	cfg.Layout = filepath.Join(t.TempDir(), "missing.txt")
	_, err = cfg.SimParams()
	assert.Error(t, err)
}

func TestLayoutFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "small.txt")
	require.NoError(t, os.WriteFile(path, []byte("##\n#."), 0o644))

	cfg, _ := parse(t, "-layout", path)
	params, err := cfg.SimParams()
	require.NoError(t, err)
	assert.Equal(t, "##\n#.", params["layout"])
}

func TestMergeRunFile(t *testing.T) {
	run := config.Default()
	run.WordBits = 16
	run.Viewer.Scale = 2
	run.Viewer.RoundsPerSecond = 5

	cfg, fs := parse(t, "-rps", "30", "-params", "word=8")
	params, err := cfg.SimParams()
	require.NoError(t, err)
	cfg.Merge(run, fs, params)

	assert.Equal(t, 2, cfg.Scale, "scale comes from the run file")
	assert.Equal(t, 30, cfg.RPS, "an explicit flag wins")
	assert.Equal(t, "8", params["word"], "an explicit param wins")
	assert.Equal(t, "10", params["rounds"])
	assert.Equal(t, "NSWE", params["order"])
}
