// Command capacity-sweep times one layout across every storage word width and
// several capacity paddings, checks that every configuration agrees, and lists
// them fastest first.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"time"

	"go.uber.org/zap"

	"grove-ca/internal/batch"
	"grove-ca/internal/sims/diffusion"
	"grove-ca/pkg/bitgrid"
)

type sweep struct {
	rounds      int
	stable      bool
	repeat      int
	workers     int
	multipliers []int
	naive       bool
}

func (s sweep) tasks(job batch.Job) []batch.Task {
	base := bitgrid.PaddingFor(s.rounds)
	var tasks []batch.Task
	for _, word := range []int{8, 16, 32, 64} {
		for _, mult := range s.multipliers {
			for i := 0; i < s.repeat; i++ {
				tasks = append(tasks, batch.Task{Job: job, Options: batch.Options{
					Engine:   batch.EngineBitgrid,
					WordBits: word,
					Padding:  base * mult,
					Strict:   true,
					Rounds:   s.rounds,
					Stable:   s.stable,
				}})
			}
		}
	}
	if s.naive {
		tasks = append(tasks, batch.Task{Job: job, Options: batch.Options{
			Engine: batch.EngineNaive,
			Rounds: s.rounds,
			Stable: s.stable,
		}})
	}
	return tasks
}

// disagreement returns the first successful result whose answer differs from
// the first successful result, if any.
func disagreement(results []batch.Result) (batch.Result, batch.Result, bool) {
	var ref *batch.Result
	for i := range results {
		r := results[i]
		if r.Err != nil {
			continue
		}
		if ref == nil {
			ref = &results[i]
			continue
		}
		if r.Empty != ref.Empty || r.StableRound != ref.StableRound || r.Population != ref.Population {
			return *ref, r, true
		}
	}
	return batch.Result{}, batch.Result{}, false
}

func report(w io.Writer, results []batch.Result, top int) {
	for i, r := range results {
		if top > 0 && i >= top {
			break
		}
		if r.Err != nil {
			fmt.Fprintf(w, "%2d) %-7s word=%-2d padding=%-4d error: %v\n", i+1, r.Options.Engine, r.Options.WordBits, r.Options.Padding, r.Err)
			continue
		}
		fmt.Fprintf(w, "%2d) %-7s word=%-2d padding=%-4d grid=%dx%d elapsed=%s empty=%d stable=%d\n",
			i+1, r.Options.Engine, r.Options.WordBits, r.Options.Padding, r.Rows, r.Cols,
			r.Elapsed.Round(time.Microsecond), r.Empty, r.StableRound)
	}
}

func main() {
	rounds := flag.Int("rounds", 10, "rounds to play, or the round limit with -stable")
	stable := flag.Bool("stable", false, "run until a round moves no agent")
	repeat := flag.Int("repeat", 3, "runs per configuration")
	workers := flag.Int("workers", runtime.NumCPU(), "number of worker goroutines")
	naive := flag.Bool("naive", true, "include the per-agent engine")
	top := flag.Int("top", 10, "configurations to list")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: capacity-sweep [flags] layout.txt")
		os.Exit(2)
	}
	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, "capacity-sweep:", err)
		os.Exit(1)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, "capacity-sweep:", err)
		os.Exit(1)
	}
	defer logger.Sync()
	diffusion.SetLogger(logger.Named("diffusion").WithOptions(zap.IncreaseLevel(zap.WarnLevel)))

	s := sweep{
		rounds:      *rounds,
		stable:      *stable,
		repeat:      max(*repeat, 1),
		workers:     *workers,
		multipliers: []int{1, 2, 4},
		naive:       *naive,
	}
	job := batch.Job{Name: filepath.Base(flag.Arg(0)), Layout: string(data)}
	tasks := s.tasks(job)

	fmt.Printf("Sweeping %d configurations (%d workers, %d rounds)\n", len(tasks), s.workers, s.rounds)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	results := batch.Run(ctx, tasks, s.workers)
	elapsed := time.Since(start)

	if a, b, bad := disagreement(results); bad {
		logger.Error("configurations disagree",
			zap.String("engine", a.Options.Engine), zap.Int("word", a.Options.WordBits), zap.Int("empty", a.Empty),
			zap.String("other_engine", b.Options.Engine), zap.Int("other_word", b.Options.WordBits), zap.Int("other_empty", b.Empty))
		os.Exit(1)
	}

	batch.SortByElapsed(results)
	fmt.Printf("\nFastest configurations (elapsed %s):\n", elapsed.Round(time.Millisecond))
	report(os.Stdout, results, *top)
}
