package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/plus3/earthshot/config"
	"github.com/plus3/earthshot/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "", "YAML config file; defaults are used when empty.")
	sessions := flag.Int("sessions", runtime.GOMAXPROCS(0), "Number of sessions to run in parallel.")
	ticks := flag.Int("ticks", 60*60*5, "Ticks to run each session for.")
	dt := flag.Float64("dt", 1.0/60.0, "Fixed time step in seconds.")
	seed := flag.Uint64("seed", 1, "Seed of the first session; session i uses seed+i.")
	timeout := flag.Duration("timeout", 5*time.Minute, "Abort the run after this long.")
	verify := flag.Bool("verify", true, "Replay the first session and check its digest.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "load config: %v\n", err)
			os.Exit(1)
		}
	}

	logger := log.New(log.ParseLevel(cfg.LogLevel)).Named("stress")
	defer logger.Sync()

	report := &Report{
		Sessions:       *sessions,
		Ticks:          *ticks,
		DeltaTime:      *dt,
		GCPauseMetrics: *gcPauseMetrics,
		Results:        make([]Result, *sessions),
	}
	runtime.ReadMemStats(&report.MemStatsStart)

	logger.Info("starting stress run", log.Int("sessions", *sessions), log.Int("ticks", *ticks))
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for i := range *sessions {
		g.Go(func() error {
			res, err := run(gctx, cfg, *seed+uint64(i), *ticks, *dt, logger)
			if err != nil {
				return fmt.Errorf("session %d: %w", i, err)
			}
			report.Results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("stress run failed", log.Err(err))
		os.Exit(1)
	}
	report.TotalTime = time.Since(start)

	if *verify && *sessions > 0 {
		replay, err := run(ctx, cfg, *seed, *ticks, *dt, logger)
		if err != nil {
			logger.Error("replay failed", log.Err(err))
			os.Exit(1)
		}
		report.Verified = true
		report.Deterministic = replay.Digest == report.Results[0].Digest
	}
	runtime.ReadMemStats(&report.MemStatsEnd)

	fmt.Println("\n--- Stress Test Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		logger.Error("failed to generate report", log.Err(err))
		os.Exit(1)
	}
	fmt.Println("--- End of Report ---")

	if report.Verified && !report.Deterministic {
		logger.Error("replay digest mismatch", log.Uint64("seed", *seed))
		os.Exit(2)
	}
}
