// Package config loads the YAML run file shared by the grove-ca commands.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Run holds the settings of one diffuse invocation.
type Run struct {
	WordBits int    `yaml:"word_bits"`
	Padding  int    `yaml:"padding"`
	Rounds   int    `yaml:"rounds"`
	Order    string `yaml:"order"`
	Strict   bool   `yaml:"strict"`
	Engine   string `yaml:"engine"`
	Workers  int    `yaml:"workers"`

	Viewer  Viewer  `yaml:"viewer"`
	Storage Storage `yaml:"storage"`
}

// Viewer paces the terminal viewer.
type Viewer struct {
	RoundsPerSecond int `yaml:"rounds_per_second"`
	Scale           int `yaml:"scale"`
}

// Storage names where results are kept. Empty paths disable that output.
type Storage struct {
	Snapshot  string `yaml:"snapshot"`
	ResultsDB string `yaml:"results_db"`
}

// Default returns the values used when no run file is given.
func Default() Run {
	return Run{
		WordBits: 64,
		Rounds:   10,
		Order:    "NSWE",
		Strict:   true,
		Engine:   "bitgrid",
		Workers:  4,
		Viewer:   Viewer{RoundsPerSecond: 10, Scale: 4},
	}
}

// Load reads path over the defaults. Keys missing from the file keep their
// default value.
func Load(path string) (Run, error) {
	r := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return r, err
	}
	if err := yaml.Unmarshal(raw, &r); err != nil {
		return r, fmt.Errorf("%s: %w", path, err)
	}
	if err := r.Validate(); err != nil {
		return r, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// Validate reports the first field outside its accepted range.
func (r Run) Validate() error {
	switch r.WordBits {
	case 8, 16, 32, 64:
	default:
		return fmt.Errorf("word_bits must be 8, 16, 32 or 64, got %d", r.WordBits)
	}
	if r.Padding < 0 {
		return fmt.Errorf("padding must not be negative, got %d", r.Padding)
	}
	if r.Rounds < 0 {
		return fmt.Errorf("rounds must not be negative, got %d", r.Rounds)
	}
	if len(r.Order) != 4 {
		return fmt.Errorf("order must name four directions, got %q", r.Order)
	}
	switch r.Engine {
	case "bitgrid", "naive":
	default:
		return fmt.Errorf("engine must be bitgrid or naive, got %q", r.Engine)
	}
	if r.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", r.Workers)
	}
	if r.Viewer.RoundsPerSecond <= 0 {
		return fmt.Errorf("viewer.rounds_per_second must be positive, got %d", r.Viewer.RoundsPerSecond)
	}
	return nil
}

// SimConfig renders the fields understood by the diffusion registry entry.
func (r Run) SimConfig() map[string]string {
	m := map[string]string{
		"word":   strconv.Itoa(r.WordBits),
		"rounds": strconv.Itoa(r.Rounds),
		"order":  r.Order,
		"strict": strconv.FormatBool(r.Strict),
	}
	if r.Padding > 0 {
		m["padding"] = strconv.Itoa(r.Padding)
	}
	return m
}
