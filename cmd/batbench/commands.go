package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Baaaaam/optim/bat"
	"github.com/Baaaaam/optim/bench"
	"github.com/Baaaaam/optim/report"
	"github.com/Baaaaam/optim/suite"
)

var (
	planPath   string
	dbPath     string
	chartDir   string
	chartExt   string
	verbose    bool
	logEvals   bool
	funcs      []string
	pops       []int
	dimension  int
	iterations int
	parallel   int
	seed       uint64
	perturb    string

	rootCmd = &cobra.Command{
		Use:          "batbench",
		Short:        "Benchmark the bat algorithm against classic test functions",
		SilenceUsage: true,
	}

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run every function with every population size and report the results",
		RunE:  runBench,
	}

	listCmd = &cobra.Command{
		Use:   "list",
		Short: "List the available benchmark functions",
		Run: func(cmd *cobra.Command, args []string) {
			listFuncs(cmd.OutOrStdout())
		},
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every run at debug level")

	f := runCmd.Flags()
	f.StringVarP(&planPath, "plan", "p", "", "YAML plan file (defaults are used for missing fields)")
	f.StringVar(&dbPath, "db", "", "sqlite database to record runs in")
	f.StringVar(&chartDir, "charts", "", "directory to write one convergence chart per function into")
	f.StringVar(&chartExt, "chart-format", "png", "chart image format (png, svg, pdf)")
	f.StringSliceVarP(&funcs, "funcs", "f", nil, "functions to run (default all)")
	f.IntSliceVarP(&pops, "pops", "n", nil, "population sizes")
	f.IntVarP(&dimension, "dim", "d", 0, "problem dimension")
	f.IntVarP(&iterations, "iter", "i", 0, "iterations per run")
	f.IntVarP(&parallel, "parallel", "j", 0, "maximum concurrent runs")
	f.Uint64Var(&seed, "seed", 0, "seed of the first run")
	f.StringVar(&perturb, "perturb", "", "local search: loudness or gaussian")
	f.BoolVar(&logEvals, "log-evals", false, "log every objective evaluation (implies --verbose)")

	rootCmd.AddCommand(runCmd, listCmd)
}

func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if verbose || logEvals {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadPlan reads the plan file if one was given and applies the flags the
// user set on top of it.
func loadPlan(cmd *cobra.Command) (suite.Plan, error) {
	plan := suite.DefaultPlan()
	if planPath != "" {
		var err error
		if plan, err = suite.LoadPlan(planPath); err != nil {
			return plan, err
		}
	}

	f := cmd.Flags()
	if f.Changed("funcs") {
		plan.Functions = funcs
	}
	if f.Changed("pops") {
		plan.Populations = pops
	}
	if f.Changed("dim") {
		plan.Dimension = dimension
	}
	if f.Changed("iter") {
		plan.Iterations = iterations
	}
	if f.Changed("parallel") {
		plan.Parallel = parallel
	}
	if f.Changed("seed") {
		plan.Seed = seed
	}
	if f.Changed("perturb") {
		plan.Perturbation = perturb
	}
	if f.Changed("log-evals") {
		plan.LogEvals = logEvals
	}
	return plan, plan.Validate()
}

func runBench(cmd *cobra.Command, args []string) error {
	logger := newLogger(cmd.ErrOrStderr())

	plan, err := loadPlan(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("starting runs",
		slog.Int("cases", len(plan.Cases())),
		slog.Int("dimension", plan.Dimension),
		slog.Int("iterations", plan.Iterations),
		slog.Int("parallel", plan.Parallel),
	)
	outcomes, err := suite.Run(ctx, plan, logger)
	if err != nil {
		return err
	}

	if dbPath != "" {
		if err := record(dbPath, outcomes); err != nil {
			return err
		}
		logger.Info("runs recorded", slog.String("db", dbPath))
	}

	if chartDir != "" {
		if err := charts(chartDir, chartExt, outcomes); err != nil {
			return err
		}
		logger.Info("charts written", slog.String("dir", chartDir))
	}

	summarize(cmd.OutOrStdout(), outcomes)
	return nil
}

func record(path string, outcomes []suite.Outcome) error {
	store, err := report.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	for _, o := range outcomes {
		if _, err := store.Save(o.Result); err != nil {
			return fmt.Errorf("recording %v with %v bats: %w", o.Func.Name, o.PopSize, err)
		}
	}
	return nil
}

// charts writes one chart per function with a line per population size.
func charts(dir, ext string, outcomes []suite.Outcome) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	var order []string
	byFunc := map[string][]*bat.Result{}
	for _, o := range outcomes {
		if _, ok := byFunc[o.Func.Name]; !ok {
			order = append(order, o.Func.Name)
		}
		byFunc[o.Func.Name] = append(byFunc[o.Func.Name], o.Result)
	}

	for _, name := range order {
		path := filepath.Join(dir, strings.ToLower(name)+"."+ext)
		if err := report.Chart(path, name, byFunc[name]...); err != nil {
			return err
		}
	}
	return nil
}

func summarize(w io.Writer, outcomes []suite.Outcome) {
	rank := report.NewRanking()
	nsolved := 0
	for _, o := range outcomes {
		rank.Add(report.Entry{
			Name:    o.Func.Name,
			PopSize: o.PopSize,
			Best:    o.Result.Best.Val,
			Gap:     o.Result.Best.Val - o.Func.Optimum,
			Solved:  o.Solved,
		})
		if o.Solved {
			nsolved++
		}
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tFUNCTION\tBATS\tBEST\tGAP\tSOLVED")
	for i, e := range rank.Top(-1) {
		fmt.Fprintf(tw, "%v\t%v\t%v\t%.6g\t%.6g\t%v\n", i+1, e.Name, e.PopSize, e.Best, e.Gap, e.Solved)
	}
	tw.Flush()
	fmt.Fprintf(w, "%v/%v runs solved\n", nsolved, len(outcomes))
}

func listFuncs(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FUNCTION\tLOW\tUP\tOPTIMUM\tARGMIN")
	for _, fn := range bench.AllFuncs {
		fmt.Fprintf(tw, "%v\t%v\t%v\t%v\t%v\n", fn.Name, fn.Low, fn.Up, fn.Optimum, fn.Argmin)
	}
	tw.Flush()
}
