package resultsdb

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAndLookup(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "results.db")

	idx, err := OpenSQLite(path)
	require.NoError(t, err)
	defer idx.Close()

	digest := Digest("....#..\n..###.#\n")
	first := Run{
		Input: "larger.txt", Digest: digest, Engine: "bitgrid", WordBits: 64, Order: "NSWE",
		Rows: 69, Cols: 128, Rounds: 10, Empty: 110, Elapsed: 3 * time.Millisecond,
		RecordedAt: time.Date(2024, 12, 23, 6, 0, 0, 0, time.UTC),
	}
	require.NoError(t, idx.Record(ctx, first))

	second := first
	second.StableRound = 20
	second.Elapsed = 2 * time.Millisecond
	second.RecordedAt = time.Time{}
	require.NoError(t, idx.Record(ctx, second))

	got, ok, err := idx.Lookup(ctx, first)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 20, got.StableRound, "the newest matching run wins")
	assert.Equal(t, 2*time.Millisecond, got.Elapsed)
	assert.False(t, got.RecordedAt.IsZero())

	for _, key := range []Run{
		{Digest: digest, Engine: "naive", WordBits: 64, Rounds: 10, Order: "NSWE"},
		{Digest: digest, Engine: "bitgrid", WordBits: 64, Rounds: 10, Order: "WENS"},
		{Digest: digest, Engine: "bitgrid", WordBits: 64, Rounds: 10, Order: "NSWE", Stable: true},
	} {
		_, ok, err = idx.Lookup(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok, "%+v", key)
	}

	recent, err := idx.Recent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.True(t, first.RecordedAt.Equal(recent[1].RecordedAt))
	assert.Equal(t, 110, recent[1].Empty)
}

func TestElapsedKeepsSubMillisecondTimings(t *testing.T) {
	ctx := context.Background()
	idx, err := OpenSQLite(filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	defer idx.Close()

	r := Run{Input: "small.txt", Digest: Digest("x"), Engine: "bitgrid", WordBits: 8, Order: "NSWE",
		Stable: true, Rounds: 10, Empty: 25, StableRound: 4, Elapsed: 37*time.Microsecond + 250}
	require.NoError(t, idx.Record(ctx, r))

	got, ok, err := idx.Lookup(ctx, r)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, r.Elapsed, got.Elapsed)
	assert.True(t, got.Stable)
	assert.Equal(t, "NSWE", got.Order)
}

func TestRowsSurviveReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "results.db")

	idx, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, idx.Record(ctx, Run{Input: "small.txt", Digest: Digest("x"), Engine: "naive", WordBits: 64, Rounds: 10, Empty: 25}))
	require.NoError(t, idx.Close())

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()
	var (
		input string
		empty int
	)
	require.NoError(t, db.QueryRow(`SELECT input, empty FROM runs`).Scan(&input, &empty))
	assert.Equal(t, "small.txt", input)
	assert.Equal(t, 25, empty)
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	_, err := OpenSQLite("")
	assert.Error(t, err)
}

func TestDigest(t *testing.T) {
	assert.Len(t, Digest(""), 64)
	assert.NotEqual(t, Digest("#."), Digest(".#"))
}
