package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grove-ca/internal/batch"
)

func TestSweepAgrees(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("..", "diffuse", "testdata", "larger.txt"))
	require.NoError(t, err)

	s := sweep{rounds: 10, repeat: 1, workers: 4, multipliers: []int{1, 2}, naive: true}
	tasks := s.tasks(batch.Job{Name: "larger.txt", Layout: string(data)})
	require.Len(t, tasks, 4*2+1)
	assert.Equal(t, 22, tasks[1].Options.Padding)

	results := batch.Run(context.Background(), tasks, s.workers)
	for _, r := range results {
		require.NoError(t, r.Err)
		assert.Equal(t, 110, r.Empty)
	}
	_, _, bad := disagreement(results)
	assert.False(t, bad)

	var out bytes.Buffer
	batch.SortByElapsed(results)
	report(&out, results, 3)
	assert.Equal(t, 3, bytes.Count(out.Bytes(), []byte("\n")))
}

func TestDisagreement(t *testing.T) {
	results := []batch.Result{
		{Err: errors.New("capacity")},
		{Empty: 110},
		{Empty: 110},
		{Empty: 109},
	}
	a, b, bad := disagreement(results)
	require.True(t, bad)
	assert.Equal(t, 110, a.Empty)
	assert.Equal(t, 109, b.Empty)
}
