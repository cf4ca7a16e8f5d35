// Package batch evaluates layouts with either engine on a pool of workers.
package batch

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"grove-ca/internal/persistence/resultsdb"
	"grove-ca/internal/sims/diffusion"
	"grove-ca/internal/sims/grove"
)

const (
	EngineBitgrid = "bitgrid"
	EngineNaive   = "naive"
)

// ErrUnsizedSearch is returned for an unlimited fixpoint search on a grid
// whose padding would otherwise be derived from the round limit.
var ErrUnsizedSearch = errors.New("stable search without a round limit needs an explicit padding")

// Job is one layout to evaluate.
type Job struct {
	Name   string
	Layout string
}

// Options selects the engine and the round budget.
type Options struct {
	Engine   string
	WordBits int
	Padding  int
	Strict   bool
	Order    string

	// Rounds is played exactly unless Stable is set, in which case it caps
	// the search for a fixpoint and sizes the capacity. Zero with Stable
	// searches without a limit and then needs a positive Padding.
	Rounds int
	Stable bool
}

// Result is the outcome of one Job. Rows and Cols are the grid capacity for
// the bit-parallel engine and the final bounds for the naive one.
type Result struct {
	Name        string
	Digest      string
	Options     Options
	Rows, Cols  int
	Rounds      int
	Empty       int
	StableRound int
	Population  int
	Elapsed     time.Duration
	Sim         diffusion.Runner
	Err         error
}

// Record converts r into a results index row.
func (r Result) Record() resultsdb.Run {
	return resultsdb.Run{
		Input:       r.Name,
		Digest:      r.Digest,
		Engine:      r.Options.Engine,
		WordBits:    r.Options.WordBits,
		Order:       r.Options.order(),
		Stable:      r.Options.Stable,
		Rows:        r.Rows,
		Cols:        r.Cols,
		Rounds:      r.Rounds,
		Empty:       r.Empty,
		StableRound: r.StableRound,
		Elapsed:     r.Elapsed,
	}
}

// order spells the initial priority order in its canonical letters so that
// equivalent spellings share a results key.
func (o Options) order() string {
	if o.Order == "" {
		return diffusion.DefaultRules().String()
	}
	rules, err := diffusion.ParseRules(o.Order)
	if err != nil {
		return o.Order
	}
	return rules.String()
}

// SimConfig builds the diffusion configuration for a layout.
func (o Options) SimConfig(layout string) (diffusion.Config, error) {
	cfg := diffusion.DefaultConfig()
	if o.Stable && o.Rounds <= 0 && o.Padding <= 0 {
		return cfg, ErrUnsizedSearch
	}
	cfg.Layout = layout
	cfg.WordBits = o.WordBits
	cfg.Rounds = o.Rounds
	cfg.Padding = o.Padding
	cfg.Strict = o.Strict
	if o.Order != "" {
		rules, err := diffusion.ParseRules(o.Order)
		if err != nil {
			return cfg, err
		}
		cfg.Rules = rules
	}
	return cfg, nil
}

// Evaluate runs job with opts.
func Evaluate(job Job, opts Options) Result {
	res := Result{Name: job.Name, Digest: resultsdb.Digest(job.Layout), Options: opts}
	start := time.Now()
	switch opts.Engine {
	case EngineNaive:
		evaluateNaive(&res, job, opts)
	case EngineBitgrid, "":
		res.Options.Engine = EngineBitgrid
		evaluateBitgrid(&res, job, opts)
	default:
		res.Err = fmt.Errorf("unknown engine %q", opts.Engine)
	}
	res.Elapsed = time.Since(start)
	return res
}

func evaluateBitgrid(res *Result, job Job, opts Options) {
	cfg, err := opts.SimConfig(job.Layout)
	if err != nil {
		res.Err = err
		return
	}
	sim, err := diffusion.NewSim(cfg)
	if err != nil {
		res.Err = err
		return
	}
	res.Sim = sim
	size := sim.Size()
	res.Rows, res.Cols = size.H, size.W

	if opts.Stable {
		res.StableRound, res.Err = sim.RunUntilStable(opts.Rounds)
	} else {
		res.Err = sim.RunFor(opts.Rounds)
		res.StableRound, _ = sim.StableRound()
	}
	res.Rounds = sim.Round()
	_, res.Empty = sim.EmptyInBounds()
	res.Population = sim.Population()
}

func evaluateNaive(res *Result, job Job, opts Options) {
	g, err := grove.Parse(job.Layout)
	if err != nil {
		res.Err = err
		return
	}
	if opts.Order != "" {
		order, err := grove.ParseOrder(opts.Order)
		if err != nil {
			res.Err = err
			return
		}
		g.SetOrder(order)
	}
	if opts.Stable {
		for g.Round() < opts.Rounds || opts.Rounds <= 0 {
			if g.Step() == 0 {
				res.StableRound = g.Round()
				break
			}
		}
		if res.StableRound == 0 {
			res.Err = fmt.Errorf("%w after %d rounds", diffusion.ErrRoundLimit, g.Round())
		}
	} else {
		g.RunFixed(opts.Rounds)
	}
	lo, hi, ok := g.Bounds()
	if ok {
		res.Rows, res.Cols = hi.Row-lo.Row+1, hi.Col-lo.Col+1
	}
	res.Rounds = g.Round()
	res.Empty = g.EmptyInBounds()
	res.Population = g.Len()
}

// Task pairs a Job with the options to evaluate it under.
type Task struct {
	Job     Job
	Options Options
}

// Run evaluates every task on workers goroutines and returns the results in
// task order. Tasks not started before ctx is cancelled report ctx.Err().
func Run(ctx context.Context, tasks []Task, workers int) []Result {
	if workers <= 0 {
		workers = 1
	}
	type indexed struct {
		i   int
		res Result
	}

	jobs := make(chan int)
	results := make(chan indexed)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				t := tasks[i]
				if err := ctx.Err(); err != nil {
					results <- indexed{i, Result{Name: t.Job.Name, Options: t.Options, Err: err}}
					continue
				}
				results <- indexed{i, Evaluate(t.Job, t.Options)}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	go func() {
		for i := range tasks {
			jobs <- i
		}
		close(jobs)
	}()

	out := make([]Result, len(tasks))
	for r := range results {
		out[r.i] = r.res
	}
	return out
}

// SortByName orders results by input name, then engine and word width.
func SortByName(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		if a.Options.Engine != b.Options.Engine {
			return a.Options.Engine < b.Options.Engine
		}
		return a.Options.WordBits < b.Options.WordBits
	})
}

// SortByElapsed orders results fastest first.
func SortByElapsed(results []Result) {
	sort.SliceStable(results, func(i, j int) bool { return results[i].Elapsed < results[j].Elapsed })
}
