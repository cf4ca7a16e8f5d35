package app

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"grove-ca/internal/config"
)

// Config represents the command-line parameters for the GUI.
type Config struct {
	Sim     string
	Scale   int
	RPS     int
	TPS     int
	Seed    int64
	Panel   int
	Params  string
	Layout  string
	RunFile string
}

// NewConfig returns a Config populated with sensible defaults.
func NewConfig() *Config {
	return &Config{Sim: "diffusion", Scale: 4, RPS: 10, TPS: 60, Seed: 42, Panel: 220}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.Sim, "sim", c.Sim, "simulation to run")
	fs.IntVar(&c.Scale, "scale", c.Scale, "pixel scale multiplier")
	fs.IntVar(&c.RPS, "rps", c.RPS, "simulation rounds per second")
	fs.IntVar(&c.TPS, "tps", c.TPS, "ticks per second")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "seed for simulation reset")
	fs.IntVar(&c.Panel, "panel", c.Panel, "parameter panel width in pixels, 0 hides it")
	fs.StringVar(&c.Params, "params", c.Params, "simulation settings as key=value pairs separated by commas")
	fs.StringVar(&c.Layout, "layout", c.Layout, "layout file for the diffusion sim")
	fs.StringVar(&c.RunFile, "config", c.RunFile, "YAML run file; flags override its values")
}

// SimParams parses Params into the map handed to a sim factory and adds the
// layout file contents under "layout".
func (c *Config) SimParams() (map[string]string, error) {
	out := map[string]string{}
	if strings.TrimSpace(c.Params) != "" {
		for _, kv := range strings.Split(c.Params, ",") {
			k, v, ok := strings.Cut(kv, "=")
			k = strings.TrimSpace(k)
			if !ok || k == "" {
				return nil, fmt.Errorf("app: param %q is not key=value", kv)
			}
			out[k] = strings.TrimSpace(v)
		}
	}
	if c.Layout != "" {
		data, err := os.ReadFile(c.Layout)
		if err != nil {
			return nil, fmt.Errorf("app: layout: %w", err)
		}
		out["layout"] = string(data)
	}
	return out, nil
}

// Merge applies run-file values to every setting not given explicitly on fs
// or in params.
func (c *Config) Merge(run config.Run, fs *flag.FlagSet, params map[string]string) {
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if !set["scale"] && run.Viewer.Scale > 0 {
		c.Scale = run.Viewer.Scale
	}
	if !set["rps"] && run.Viewer.RoundsPerSecond > 0 {
		c.RPS = run.Viewer.RoundsPerSecond
	}
	for k, v := range run.SimConfig() {
		if _, ok := params[k]; !ok {
			params[k] = v
		}
	}
}
