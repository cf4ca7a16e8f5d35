package batch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grove-ca/internal/sims/diffusion"
)

func job(t *testing.T, name string) Job {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return Job{Name: name, Layout: string(data)}
}

func TestEvaluateEngines(t *testing.T) {
	for _, engine := range []string{EngineBitgrid, EngineNaive} {
		t.Run(engine, func(t *testing.T) {
			res := Evaluate(job(t, "larger.txt"), Options{Engine: engine, WordBits: 32, Rounds: 10, Strict: true})
			require.NoError(t, res.Err)
			assert.Equal(t, 110, res.Empty)
			assert.Equal(t, 10, res.Rounds)
			assert.Equal(t, 22, res.Population)

			res = Evaluate(job(t, "larger.txt"), Options{Engine: engine, WordBits: 32, Rounds: 40, Strict: true, Stable: true})
			require.NoError(t, res.Err)
			assert.Equal(t, 20, res.StableRound)
			assert.Len(t, res.Digest, 64)
		})
	}
}

func TestEvaluateErrors(t *testing.T) {
	res := Evaluate(job(t, "small.txt"), Options{Engine: "quantum", WordBits: 64, Rounds: 1})
	assert.Error(t, res.Err)

	res = Evaluate(Job{Name: "bad", Layout: "#?"}, Options{WordBits: 64, Rounds: 1})
	assert.Error(t, res.Err)
	assert.Equal(t, EngineBitgrid, res.Options.Engine, "empty engine means bitgrid")

	res = Evaluate(job(t, "larger.txt"), Options{Engine: EngineBitgrid, WordBits: 8, Padding: 1, Rounds: 10, Strict: true})
	assert.ErrorIs(t, res.Err, diffusion.ErrCapacityExhausted)

	res = Evaluate(job(t, "larger.txt"), Options{Engine: EngineNaive, Rounds: 5, Stable: true})
	assert.ErrorIs(t, res.Err, diffusion.ErrRoundLimit)

	res = Evaluate(job(t, "small.txt"), Options{Engine: EngineNaive, Rounds: 1, Order: "XXXX"})
	assert.Error(t, res.Err)
}

func TestRunKeepsTaskOrder(t *testing.T) {
	var tasks []Task
	for _, word := range []int{64, 8, 32, 16} {
		tasks = append(tasks, Task{
			Job:     job(t, "small.txt"),
			Options: Options{Engine: EngineBitgrid, WordBits: word, Rounds: 10, Strict: true},
		})
	}
	tasks = append(tasks, Task{Job: job(t, "small.txt"), Options: Options{Engine: EngineNaive, Rounds: 10}})

	results := Run(context.Background(), tasks, 3)
	require.Len(t, results, len(tasks))
	for i, res := range results {
		require.NoError(t, res.Err)
		assert.Equal(t, tasks[i].Options.WordBits, res.Options.WordBits)
		assert.Equal(t, 25, res.Empty)
	}

	SortByName(results)
	assert.Equal(t, EngineBitgrid, results[0].Options.Engine)
	assert.Equal(t, 8, results[0].Options.WordBits)
	assert.Equal(t, EngineNaive, results[len(results)-1].Options.Engine)

	SortByElapsed(results)
	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i-1].Elapsed, results[i].Elapsed)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results := Run(ctx, []Task{{Job: job(t, "small.txt"), Options: Options{WordBits: 64, Rounds: 10}}}, 0)
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, context.Canceled)
}

func TestRecord(t *testing.T) {
	res := Evaluate(job(t, "small.txt"), Options{Engine: EngineBitgrid, WordBits: 16, Rounds: 10})
	rec := res.Record()
	assert.Equal(t, "small.txt", rec.Input)
	assert.Equal(t, EngineBitgrid, rec.Engine)
	assert.Equal(t, 16, rec.WordBits)
	assert.Equal(t, 25, rec.Empty)
	assert.Equal(t, 4, rec.StableRound)
	assert.Equal(t, res.Rows, rec.Rows)
	assert.Equal(t, "NSWE", rec.Order)
	assert.False(t, rec.Stable)

	res = Evaluate(job(t, "small.txt"), Options{Engine: EngineNaive, Rounds: 10, Stable: true, Order: "wens"})
	rec = res.Record()
	assert.Equal(t, "WENS", rec.Order)
	assert.True(t, rec.Stable)
}

func TestStableSearchWithoutLimit(t *testing.T) {
	res := Evaluate(job(t, "larger.txt"), Options{WordBits: 64, Stable: true})
	assert.ErrorIs(t, res.Err, ErrUnsizedSearch)

	res = Evaluate(job(t, "larger.txt"), Options{WordBits: 64, Stable: true, Padding: 30, Strict: true})
	require.NoError(t, res.Err)
	assert.Equal(t, 20, res.StableRound)
	assert.Equal(t, 146, res.Empty)

	res = Evaluate(job(t, "larger.txt"), Options{Engine: EngineNaive, Stable: true})
	require.NoError(t, res.Err)
	assert.Equal(t, 20, res.StableRound)
	assert.Equal(t, 146, res.Empty)
}
