// Command diffuse runs diffusion rounds over one or more layout files and
// prints the empty cell count of each final bounding box.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"grove-ca/internal/batch"
	"grove-ca/internal/config"
	"grove-ca/internal/persistence/resultsdb"
	"grove-ca/internal/persistence/snapshot"
	"grove-ca/internal/sims/diffusion"
	"grove-ca/internal/tui"
)

type options struct {
	run     config.Run
	stable  bool
	resume  string
	watch   bool
	verbose bool
	inputs  []string
}

// configPath finds -config among args before the full flag set is built, so
// the file can supply the defaults that the remaining flags override.
func configPath(args []string) string {
	for i, a := range args {
		switch {
		case a == "-config" || a == "--config":
			if i+1 < len(args) {
				return args[i+1]
			}
		case strings.HasPrefix(a, "-config="):
			return strings.TrimPrefix(a, "-config=")
		case strings.HasPrefix(a, "--config="):
			return strings.TrimPrefix(a, "--config=")
		}
	}
	return ""
}

func parseOptions(args []string, stderr io.Writer) (options, error) {
	opts := options{run: config.Default()}
	path := configPath(args)
	if path != "" {
		run, err := config.Load(path)
		if err != nil {
			return opts, err
		}
		opts.run = run
	}

	fs := flag.NewFlagSet("diffuse", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: diffuse [flags] layout.txt ...")
		fs.PrintDefaults()
	}
	r := &opts.run
	fs.String("config", path, "YAML run file; flags override its values")
	fs.IntVar(&r.Rounds, "rounds", r.Rounds, "rounds to play, or the round limit with -stable (0 for none, needs -padding)")
	fs.BoolVar(&opts.stable, "stable", false, "run until a round moves no agent")
	fs.IntVar(&r.WordBits, "word", r.WordBits, "storage word width: 8, 16, 32 or 64")
	fs.IntVar(&r.Padding, "padding", r.Padding, "empty cells added on every side (0 derives it from -rounds)")
	fs.StringVar(&r.Engine, "engine", r.Engine, "engine: bitgrid or naive")
	fs.StringVar(&r.Order, "order", r.Order, "initial priority order")
	fs.BoolVar(&r.Strict, "strict", r.Strict, "fail when agents reach the grid capacity")
	fs.IntVar(&r.Workers, "workers", r.Workers, "number of worker goroutines")
	fs.StringVar(&r.Storage.ResultsDB, "db", r.Storage.ResultsDB, "SQLite results index")
	fs.StringVar(&r.Storage.Snapshot, "snapshot", r.Storage.Snapshot, "directory receiving a snapshot per input")
	fs.StringVar(&opts.resume, "resume", "", "continue from a snapshot instead of reading layouts")
	fs.BoolVar(&opts.watch, "watch", false, "open the terminal viewer on a single input")
	fs.IntVar(&r.Viewer.RoundsPerSecond, "rps", r.Viewer.RoundsPerSecond, "rounds per second in the viewer")
	fs.BoolVar(&opts.verbose, "v", false, "log every round")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if err := r.Validate(); err != nil {
		return opts, err
	}
	opts.inputs = fs.Args()
	if len(opts.inputs) == 0 && opts.resume == "" {
		fs.Usage()
		return opts, errors.New("no layout given")
	}
	if opts.stable && r.Rounds <= 0 && r.Padding <= 0 && r.Engine != batch.EngineNaive && opts.resume == "" {
		return opts, fmt.Errorf("-stable -rounds %d: %w", r.Rounds, batch.ErrUnsizedSearch)
	}
	if opts.watch && len(opts.inputs)+boolInt(opts.resume != "") != 1 {
		return opts, errors.New("-watch needs exactly one layout or -resume")
	}
	return opts, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

func main() {
	opts, err := parseOptions(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "diffuse:", err)
		os.Exit(2)
	}

	logger, err := newLogger(opts.verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, "diffuse:", err)
		os.Exit(1)
	}
	defer logger.Sync()
	diffusion.SetLogger(logger.Named("diffusion"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts, os.Stdout, logger); err != nil {
		logger.Error("run failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, stdout io.Writer, logger *zap.Logger) error {
	if opts.watch {
		return watch(opts, logger)
	}
	if opts.resume != "" {
		return resume(opts, stdout)
	}

	tasks, err := loadTasks(opts)
	if err != nil {
		return err
	}
	results := batch.Run(ctx, tasks, opts.run.Workers)
	batch.SortByName(results)

	if err := printResults(stdout, results); err != nil {
		return err
	}
	if err := writeSnapshots(opts.run.Storage.Snapshot, results, logger); err != nil {
		return err
	}
	if err := recordResults(ctx, opts.run.Storage.ResultsDB, results, logger); err != nil {
		return err
	}
	for _, res := range results {
		if res.Err != nil {
			return fmt.Errorf("%d of %d inputs failed", countFailed(results), len(results))
		}
	}
	return nil
}

func countFailed(results []batch.Result) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

func batchOptions(opts options) batch.Options {
	return batch.Options{
		Engine:   opts.run.Engine,
		WordBits: opts.run.WordBits,
		Padding:  opts.run.Padding,
		Strict:   opts.run.Strict,
		Order:    opts.run.Order,
		Rounds:   opts.run.Rounds,
		Stable:   opts.stable,
	}
}

func loadTasks(opts options) ([]batch.Task, error) {
	bo := batchOptions(opts)
	tasks := make([]batch.Task, 0, len(opts.inputs))
	for _, path := range opts.inputs {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, batch.Task{
			Job:     batch.Job{Name: filepath.Base(path), Layout: string(data)},
			Options: bo,
		})
	}
	return tasks, nil
}

func printResults(w io.Writer, results []batch.Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INPUT\tENGINE\tWORD\tROUNDS\tEMPTY\tSTABLE\tELAPSED")
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t-\t-\terror: %v\n", r.Name, r.Options.Engine, r.Options.WordBits, r.Rounds, r.Err)
			continue
		}
		stable := "-"
		if r.StableRound > 0 {
			stable = fmt.Sprint(r.StableRound)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
			r.Name, r.Options.Engine, r.Options.WordBits, r.Rounds, r.Empty, stable, r.Elapsed)
	}
	return tw.Flush()
}

func writeSnapshots(dir string, results []batch.Result, logger *zap.Logger) error {
	if dir == "" {
		return nil
	}
	for _, r := range results {
		if r.Sim == nil {
			continue
		}
		path := filepath.Join(dir, strings.TrimSuffix(r.Name, filepath.Ext(r.Name))+".snap")
		if err := snapshot.WriteSnapshot(path, r.Sim.Snapshot(r.Name)); err != nil {
			return fmt.Errorf("snapshot %s: %w", r.Name, err)
		}
		logger.Info("snapshot written", zap.String("path", path), zap.Int("round", r.Rounds))
	}
	return nil
}

func recordResults(ctx context.Context, path string, results []batch.Result, logger *zap.Logger) error {
	if path == "" {
		return nil
	}
	idx, err := resultsdb.OpenSQLite(path)
	if err != nil {
		return err
	}
	defer idx.Close()

	for _, r := range results {
		if r.Err != nil {
			continue
		}
		rec := r.Record()
		if prev, ok, err := idx.Lookup(ctx, rec); err == nil && ok {
			if prev.Empty != rec.Empty || prev.StableRound != rec.StableRound {
				logger.Warn("result differs from an earlier run",
					zap.String("input", rec.Input),
					zap.Int("empty", rec.Empty), zap.Int("previous_empty", prev.Empty),
					zap.Int("stable_round", rec.StableRound), zap.Int("previous_stable_round", prev.StableRound))
			}
			logger.Info("earlier run", zap.String("input", rec.Input),
				zap.Duration("elapsed", rec.Elapsed), zap.Duration("previous_elapsed", prev.Elapsed))
		}
		if err := idx.Record(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

func resume(opts options, stdout io.Writer) error {
	snap, err := snapshot.ReadSnapshot(opts.resume)
	if err != nil {
		return err
	}
	sim, err := diffusion.Restore(snap, diffusion.DefaultConfig())
	if err != nil {
		return err
	}
	if opts.stable {
		if _, err := sim.RunUntilStable(opts.run.Rounds); err != nil {
			return err
		}
	} else if err := sim.RunFor(opts.run.Rounds); err != nil {
		return err
	}
	_, empty := sim.EmptyInBounds()
	stable, _ := sim.StableRound()
	fmt.Fprintf(stdout, "%s: round %d, empty %d, stable %d\n", snap.Header.Name, sim.Round(), empty, stable)
	return nil
}

func watch(opts options, logger *zap.Logger) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("-watch needs a terminal on stdout")
	}
	// Round logs would tear the viewer.
	diffusion.SetLogger(zap.NewNop())
	defer diffusion.SetLogger(logger.Named("diffusion"))

	var (
		sim   diffusion.Runner
		title string
	)
	if opts.resume != "" {
		snap, err := snapshot.ReadSnapshot(opts.resume)
		if err != nil {
			return err
		}
		if sim, err = diffusion.Restore(snap, diffusion.DefaultConfig()); err != nil {
			return err
		}
		title = snap.Header.Name
	} else {
		data, err := os.ReadFile(opts.inputs[0])
		if err != nil {
			return err
		}
		cfg, err := batchOptions(opts).SimConfig(string(data))
		if err != nil {
			return err
		}
		if sim, err = diffusion.NewSim(cfg); err != nil {
			return err
		}
		title = filepath.Base(opts.inputs[0])
	}
	return tui.Run(sim, title, opts.run.Viewer.RoundsPerSecond)
}
