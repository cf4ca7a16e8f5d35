package life

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"grove-ca/pkg/bitgrid"
)

func TestCountNeighbors(t *testing.T) {
	g := bitgrid.New[uint64](5, 70)
	for _, p := range [][2]int{{1, 62}, {1, 63}, {1, 64}, {2, 63}, {3, 63}} {
		g.Set(p[0], p[1])
	}
	n := CountNeighbors(g)

	assert.True(t, n.Exactly(4).IsSet(2, 63))
	assert.True(t, n.Exactly(4).IsSet(2, 62))
	assert.True(t, n.Exactly(1).IsSet(0, 61))
	assert.True(t, n.Exactly(2).IsSet(0, 62))
	assert.True(t, n.Exactly(3).IsSet(0, 63))
	assert.True(t, n.Exactly(0).IsSet(4, 0))
	assert.False(t, n.Exactly(0).IsSet(4, 63))
}
