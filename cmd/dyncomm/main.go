// Command dyncomm tracks communities across a sequence of CSV edge-list
// snapshots given in time order.
//
//	dyncomm [flags] snap1.csv snap2.csv ...
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dd0wney/cluso-dyncomm/pkg/config"
	"github.com/dd0wney/cluso-dyncomm/pkg/edgelist"
	"github.com/dd0wney/cluso-dyncomm/pkg/logging"
	"github.com/dd0wney/cluso-dyncomm/pkg/report"
	"github.com/dd0wney/cluso-dyncomm/pkg/snapshot"
	"github.com/dd0wney/cluso-dyncomm/pkg/temporal"
)

func main() {
	configPath := flag.String("config", "", "YAML config file")
	seed := flag.Uint64("seed", 0, "random seed (overrides config when set)")
	partitioner := flag.String("partitioner", "", "bootstrap partitioner: greedy or louvain")
	trees := flag.Int("trees", 0, "number of trees in the forest")
	workers := flag.Int("workers", -1, "parallel workers (0 = GOMAXPROCS)")
	jsonPath := flag.String("json", "", "write results JSON to this path")
	compress := flag.Bool("compress", false, "snappy-compress the -json output")
	quiet := flag.Bool("quiet", false, "do not print the results table")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] snapshot.csv...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "seed":
			cfg.Detection.Seed = *seed
		case "partitioner":
			cfg.Detection.Partitioner = *partitioner
		case "trees":
			cfg.Detection.Trees = *trees
		case "workers":
			cfg.Detection.Workers = *workers
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log.Level, os.Stderr)

	if err := run(cfg, logger, flag.Args(), *jsonPath, *compress, *quiet); err != nil {
		logger.Error("run failed", logging.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger logging.Logger, paths []string, jsonPath string, compress, quiet bool) error {
	snaps := make([]*snapshot.Snapshot[string], 0, len(paths))
	for _, path := range paths {
		timer := logging.StartTimer(logger, "load snapshot", logging.String("path", path))
		s, err := edgelist.ReadFile(path)
		if err != nil {
			timer.EndError(err)
			return err
		}
		timer.End(logging.Nodes(s.Order()), logging.Edges(s.Size()))
		snaps = append(snaps, s)
	}

	detCfg := cfg.Detection.Detector()
	detCfg.Logger = logger

	detector, err := temporal.New[string](detCfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	records, err := detector.RunContext(ctx, snaps)
	env := report.Envelope{RunID: detector.RunID(), Results: records}

	if !quiet && len(records) > 0 {
		fmt.Println(report.Table(records))
	}
	fmt.Println(report.Summary(env))

	if err != nil {
		return err
	}

	if jsonPath != "" {
		f, err := os.Create(jsonPath)
		if err != nil {
			return err
		}
		if err := report.WriteJSON(f, env, compress); err != nil {
			f.Close()
			return fmt.Errorf("write %s: %w", jsonPath, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		logger.Info("results written", logging.String("path", jsonPath), logging.Bool("compressed", compress))
	}
	return nil
}
