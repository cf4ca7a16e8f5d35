package diffusion

import (
	"fmt"

	"grove-ca/internal/persistence/snapshot"
	"grove-ca/pkg/bitgrid"
)

// Snapshot captures the grid, the next priority order and the round counter.
func (s *Simulation[W]) Snapshot(name string) snapshot.SnapshotV1 {
	shape := s.grid.Shape()
	words := make([]uint64, len(s.grid.Words()))
	for i, w := range s.grid.Words() {
		words[i] = uint64(w)
	}
	return snapshot.SnapshotV1{
		Header: snapshot.Header{
			Version: snapshot.Version,
			Name:    name,
			Round:   s.round,
		},
		WordBits:    s.WordBits(),
		Rows:        shape.Rows,
		Chunks:      shape.Chunks,
		Order:       s.rules.String(),
		Strict:      s.cfg.Strict,
		StableRound: s.stable,
		Words:       words,
	}
}

// Restore rebuilds a simulation from a snapshot. The word width stored in the
// snapshot wins over cfg.WordBits; cfg supplies everything else used by Reset.
func Restore(snap snapshot.SnapshotV1, cfg Config) (Runner, error) {
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	rules, err := ParseRules(snap.Order)
	if err != nil {
		return nil, fmt.Errorf("diffusion: snapshot order: %w", err)
	}
	cfg.Strict = snap.Strict
	switch snap.WordBits {
	case 8:
		return asRunner(restore[uint8](snap, rules, cfg))
	case 16:
		return asRunner(restore[uint16](snap, rules, cfg))
	case 32:
		return asRunner(restore[uint32](snap, rules, cfg))
	default:
		return asRunner(restore[uint64](snap, rules, cfg))
	}
}

func restore[W bitgrid.Word](snap snapshot.SnapshotV1, rules Rules, cfg Config) (*Simulation[W], error) {
	words := make([]W, len(snap.Words))
	for i, w := range snap.Words {
		words[i] = W(w)
	}
	g, err := bitgrid.FromWords(snap.Rows, snap.Chunks, words)
	if err != nil {
		return nil, err
	}
	s := FromGrid(g, cfg)
	s.rules = rules
	s.round = snap.Header.Round
	s.stable = snap.StableRound
	return s, nil
}
