//go:build ebiten

package main

import (
	"errors"
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"grove-ca/internal/app"
	"grove-ca/internal/config"
	"grove-ca/internal/core"
	_ "grove-ca/internal/sims/briansbrain"
	_ "grove-ca/internal/sims/diffusion"
	_ "grove-ca/internal/sims/elementary"
	_ "grove-ca/pkg/sims/life"
)

func main() {
	cfg := app.NewConfig()
	cfg.Bind(flag.CommandLine)
	flag.Parse()

	factory, ok := core.Sims()[cfg.Sim]
	if !ok {
		log.Fatalf("unknown sim %q (have %v)", cfg.Sim, core.Names())
	}
	params, err := cfg.SimParams()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.RunFile != "" {
		run, err := config.Load(cfg.RunFile)
		if err != nil {
			log.Fatal(err)
		}
		cfg.Merge(run, flag.CommandLine, params)
	}

	sim := factory(params)
	sim.Reset(cfg.Seed)

	game := app.New(sim, cfg)
	size := sim.Size()

	ebiten.SetWindowTitle("grove-ca: " + sim.Name())
	ebiten.SetTPS(cfg.TPS)
	ebiten.SetWindowSize(size.W*cfg.Scale+cfg.Panel, size.H*cfg.Scale)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}
