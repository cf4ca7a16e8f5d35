package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	r, err := Load(filepath.Join("testdata", "run.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 16, r.WordBits)
	assert.Equal(t, 25, r.Rounds)
	assert.Equal(t, "ENSW", r.Order)
	assert.False(t, r.Strict)
	assert.Equal(t, 2, r.Workers)
	assert.Equal(t, "bitgrid", r.Engine, "missing keys keep defaults")
	assert.Equal(t, 30, r.Viewer.RoundsPerSecond)
	assert.Equal(t, 4, r.Viewer.Scale)
	assert.Equal(t, "out/grove.snap", r.Storage.Snapshot)
	assert.Equal(t, "out/results.db", r.Storage.ResultsDB)

	assert.Equal(t, map[string]string{
		"word":   "16",
		"rounds": "25",
		"order":  "ENSW",
		"strict": "false",
	}, r.SimConfig())
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"word":    "word_bits: 12\n",
		"padding": "padding: -1\n",
		"order":   "order: NS\n",
		"engine":  "engine: quantum\n",
		"workers": "workers: 0\n",
		"syntax":  "word_bits: [\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "run.yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDefaultIsValid(t *testing.T) {
	r := Default()
	require.NoError(t, r.Validate())
	_, ok := r.SimConfig()["padding"]
	assert.False(t, ok, "zero padding derives from rounds")

	r.Padding = 11
	assert.Equal(t, "11", r.SimConfig()["padding"])
}
