package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/corobench/corobench"
	"github.com/corobench/corobench/model"
	"github.com/corobench/corobench/progress"
	"github.com/corobench/corobench/service/estimator"
	"github.com/urfave/cli/v2"
	"github.com/viant/afs"
)

var Version = "0.1.0"

func main() {
	app := &cli.App{
		Name:    "corobench",
		Usage:   "Coroutine memory-overhead benchmarking harness",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML config file path (flags override it)",
			},
			&cli.StringFlag{
				Name:  "trace",
				Usage: "Write OpenTelemetry spans to file ('-' for stdout)",
			},
		},
		Commands: []*cli.Command{
			sweepCommand(),
			estimateCommand(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func sweepCommand() *cli.Command {
	return &cli.Command{
		Name:  "sweep",
		Usage: "Run the benchmark sweep across the population sequence",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "min-exp", Usage: "Smallest exponent of the geometric sequence", Value: 4},
			&cli.IntFlag{Name: "max-exp", Usage: "Largest exponent of the geometric sequence", Value: 23},
			&cli.IntFlag{Name: "base", Usage: "Base of the geometric sequence", Value: 2},
			&cli.IntFlag{Name: "repeats", Aliases: []string{"r"}, Usage: "Full-sweep repetitions for confidence estimation", Value: 1},
			&cli.DurationFlag{Name: "ready-timeout", Usage: "Bound on the per-run readiness wait", Value: corobench.DefaultConfig().Sweep.ReadyTimeout()},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Result file path", Value: "corobench.csv"},
			&cli.StringFlag{Name: "interpreter", Aliases: []string{"i"}, Usage: "Target interpreter binary", Value: "lua"},
			&cli.StringFlag{Name: "workdir", Usage: "Directory for workload and signal artifacts"},
			&cli.StringFlag{Name: "signal", Usage: "Readiness backend: fs (polling) or watch (fsnotify)", Value: corobench.SignalFs},
		},
		Action: runSweep,
	}
}

func estimateCommand() *cli.Command {
	return &cli.Command{
		Name:  "estimate",
		Usage: "Compute the per-unit overhead report from a recorded result set",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "input", Aliases: []string{"f"}, Usage: "Result file to analyse", Required: true},
			&cli.Float64Flag{Name: "threshold", Usage: "Relative growth over baseline marking the linear region", Value: estimator.DefaultConfig().TransitionThreshold},
			&cli.Float64Flag{Name: "confidence", Usage: "Confidence level (0.90, 0.95 or 0.99)", Value: estimator.DefaultConfig().ConfidenceLevel},
		},
		Action: runEstimate,
	}
}

func loadConfig(c *cli.Context) (*corobench.Config, error) {
	if configPath := c.String("config"); configPath != "" {
		return corobench.LoadConfig(c.Context, afs.New(), configPath)
	}
	return corobench.DefaultConfig(), nil
}

func runSweep(c *cli.Context) error {
	config, err := loadConfig(c)
	if err != nil {
		return err
	}
	config.Sweep.Sequence = model.Sequence{
		Base:        c.Int("base"),
		MinExponent: c.Int("min-exp"),
		MaxExponent: c.Int("max-exp"),
	}
	config.Sweep.Repeats = c.Int("repeats")
	config.Sweep.ReadyTimeoutMs = int(c.Duration("ready-timeout").Milliseconds())
	config.Sweep.Signal = c.String("signal")
	config.Output = c.String("output")
	config.Runtime.Interpreter = c.String("interpreter")
	if workdir := c.String("workdir"); workdir != "" {
		config.Workdir = workdir
	}

	options := []corobench.Option{corobench.WithConfig(config)}
	if traceOut := c.String("trace"); traceOut != "" {
		if traceOut == "-" {
			traceOut = ""
		}
		options = append(options, corobench.WithTracing("corobench", Version, traceOut))
	}
	service, err := corobench.New(options...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, _ = progress.WithNewTracker(ctx, "", config.Runtime.Interpreter, func(p progress.Snapshot) {
		if p.Population > 0 {
			log.Printf("sweep %d/%d N=%d (failed: %d)", p.CompletedRuns, p.TotalRuns, p.Population, p.FailedRuns)
		}
	})

	outcomes, sweepErr := service.Sweep(ctx)
	completed := 0
	requested := 0
	for _, outcome := range outcomes {
		completed += outcome.Completed()
		requested += outcome.Requested
	}
	fmt.Printf("sweep finished: %d/%d samples recorded -> %s\n", completed, requested, config.Output)
	if sweepErr != nil && completed == 0 {
		return sweepErr
	}
	if sweepErr != nil {
		log.Printf("sweep ended early: %v", sweepErr)
	}
	if completed == 0 {
		return cli.Exit("no samples were obtained", 1)
	}

	report, err := service.Estimate(outcomes)
	if err != nil {
		log.Printf("estimation skipped: %v", err)
		return nil
	}
	printReport(report)
	return nil
}

func runEstimate(c *cli.Context) error {
	config := corobench.DefaultConfig()
	config.Estimator.TransitionThreshold = c.Float64("threshold")
	config.Estimator.ConfidenceLevel = c.Float64("confidence")
	service, err := corobench.New(corobench.WithConfig(config))
	if err != nil {
		return err
	}
	report, err := service.EstimateStored(c.Context, c.String("input"))
	if err != nil {
		return err
	}
	printReport(report)
	return nil
}

func printReport(report *estimator.Report) {
	fmt.Printf("samples used: %d/%d\n", report.UsedSamples, report.RequestedSamples)
	if report.ShortSample {
		fmt.Println("warning: statistics computed from fewer samples than requested")
	}
	printStat("flat-region baseline (kB)", report.Baseline)
	if report.TransitionPopulation > 0 {
		fmt.Printf("linear growth starts at N=%d\n", report.TransitionPopulation)
	} else {
		fmt.Println("linear growth starts at: n/a (memory never left the flat region)")
	}
	printStat("linear-region slope (kB/unit)", report.SlopeKbPerUnit)
	fmt.Printf("largest sampled population: %d\n", report.LargestPopulation)
	printStat(fmt.Sprintf("per-unit overhead at N=%d (kB)", report.LargestPopulation), report.PerUnitKb)
	interval := report.PerUnitInterval
	if interval.Available {
		fmt.Printf("per-unit overhead: %.4f ± %.4f kB (%.0f%% confidence, %d repeats)\n",
			interval.Mean, interval.Margin, interval.Level*100, interval.Samples)
	} else {
		fmt.Println("confidence interval: n/a (needs at least two repeats)")
	}
}

func printStat(label string, stat estimator.Stat) {
	if !stat.Available {
		fmt.Printf("%s: n/a (insufficient samples)\n", label)
		return
	}
	fmt.Printf("%s: %.4f\n", label, stat.Value)
}
