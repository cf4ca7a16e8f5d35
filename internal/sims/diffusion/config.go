package diffusion

import (
	"errors"
	"fmt"
	"strconv"

	"grove-ca/pkg/bitgrid"
)

// ErrUnknownWordBits is returned for word widths other than 8, 16, 32 or 64.
var ErrUnknownWordBits = errors.New("diffusion: word bits must be 8, 16, 32 or 64")

// Config controls how a Simulation builds and steps its grid.
type Config struct {
	// Layout is the initial occupancy map as '#'/'.' text. When empty, Reset
	// scatters agents randomly over a Extent × Extent square.
	Layout string

	// Rounds is the planned round budget used to size the capacity when
	// Padding is zero.
	Rounds  int
	Padding int

	WordBits int
	Strict   bool
	Rules    Rules

	Seed    int64
	Extent  int
	Density float64
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		Rounds:   100,
		WordBits: 64,
		Strict:   true,
		Rules:    DefaultRules(),
		Seed:     1337,
		Extent:   48,
		Density:  0.45,
	}
}

// EffectivePadding returns Padding, or the padding derived from Rounds when
// Padding is unset.
func (c Config) EffectivePadding() int {
	if c.Padding > 0 {
		return c.Padding
	}
	return bitgrid.PaddingFor(c.Rounds)
}

// Validate checks the fields a Simulation cannot recover from.
func (c Config) Validate() error {
	switch c.WordBits {
	case 8, 16, 32, 64:
	default:
		return fmt.Errorf("%w: got %d", ErrUnknownWordBits, c.WordBits)
	}
	if c.Layout == "" && c.Extent <= 0 {
		return fmt.Errorf("diffusion: random layout needs a positive extent, got %d", c.Extent)
	}
	if !c.Rules.Valid() {
		return fmt.Errorf("diffusion: priority order %v must list each direction once", [4]Direction(c.Rules))
	}
	return nil
}

// FromMap populates a Config from a string map (flag-style key/value pairs).
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if v, ok := cfg["layout"]; ok {
		c.Layout = v
	}
	if v, ok := cfg["rounds"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			c.Rounds = parsed
		}
	}
	if v, ok := cfg["padding"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			c.Padding = parsed
		}
	}
	if v, ok := cfg["word"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil {
			c.WordBits = parsed
		}
	}
	if v, ok := cfg["strict"]; ok {
		if parsed, err := strconv.ParseBool(v); err == nil {
			c.Strict = parsed
		}
	}
	if v, ok := cfg["order"]; ok {
		if parsed, err := ParseRules(v); err == nil {
			c.Rules = parsed
		}
	}
	if v, ok := cfg["seed"]; ok {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = parsed
		}
	}
	if v, ok := cfg["extent"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Extent = parsed
		}
	}
	if v, ok := cfg["density"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 && parsed <= 1 {
			c.Density = parsed
		}
	}
	return c
}
