// aurad is the telemetry recorder. It samples host CPU and memory and
// appends the snapshots to the durable store, pruning anything older than
// the retention window as it goes. By default it takes a single sample and
// prints it; -watch records continuously until signaled.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/aurasys/aura/internal/collector"
	"github.com/aurasys/aura/internal/loader"
	"github.com/aurasys/aura/internal/logging"
	"github.com/aurasys/aura/internal/poller"
	"github.com/aurasys/aura/internal/store"
	"github.com/aurasys/aura/internal/telemetry"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfgPath := flag.String("config", "", "config file path")
	dbPath := flag.String("db", "", "snapshot log path (overrides config)")
	retention := flag.Float64("retention-seconds", 0, "retention window in seconds (overrides config)")
	interval := flag.Float64("interval", 0, "sampling interval in seconds (overrides config)")
	noPersist := flag.Bool("no-persist", false, "sample without writing a snapshot log")
	watch := flag.Bool("watch", false, "record continuously until signaled")
	count := flag.Int("count", 0, "stop after this many snapshots (0 = until signaled; ignores -watch)")
	jsonOut := flag.Bool("json", false, "print sampled snapshots as JSON")
	logLevel := flag.String("log-level", "", "log level: debug, info, warn, error")
	logJSON := flag.Bool("log-json", false, "emit logs as JSON")
	flag.Parse()

	cfg, err := loader.Resolve(loader.Flags{
		ConfigPath:       *cfgPath,
		DBPath:           *dbPath,
		RetentionSeconds: *retention,
		IntervalSeconds:  *interval,
		NoPersist:        *noPersist,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "aurad: %v\n", err)
		os.Exit(1)
	}

	level := cfg.LogLevel
	if *logLevel != "" {
		level = *logLevel
	}
	logging.Init(logging.ParseLevel(level), *logJSON || cfg.LogJSON)
	log := logging.Component("aurad")
	log.Info("starting", "version", Version, "db", cfg.DBPath, "db_source", cfg.DBSource,
		"retention_seconds", cfg.RetentionSeconds, "interval_seconds", cfg.PollIntervalSeconds)

	var st store.Store
	if cfg.PersistenceEnabled {
		st, err = store.Open(cfg.DBPath, cfg.RetentionSeconds)
		if err != nil {
			log.Error("open store", "error", err)
			os.Exit(1)
		}
		defer st.Close()
	}

	// One sample and out unless asked to keep going.
	maxSnapshots := *count
	if !*watch && maxSnapshots == 0 {
		maxSnapshots = 1
	}

	col := collector.New()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		delivered, err := poller.Run(ctx, poller.Options{
			IntervalSeconds: cfg.PollIntervalSeconds,
			MaxSnapshots:    maxSnapshots,
			Collect:         col.Collect,
			OnSnapshot: func(s telemetry.Snapshot) error {
				if !*watch {
					printSnapshot(s, *jsonOut)
				}
				if st == nil {
					return nil
				}
				if err := st.Append(s); err != nil {
					// Keep sampling; the next append retries persistence
					// from scratch.
					log.Warn("persist snapshot failed", "error", err)
				}
				return nil
			},
			ContinueOnError: true,
		})
		log.Info("collection stopped", "snapshots", delivered)
		return err
	})

	if err := g.Wait(); err != nil {
		log.Error("recorder failed", "error", err)
		os.Exit(1)
	}
}

func printSnapshot(s telemetry.Snapshot, asJSON bool) {
	if asJSON {
		json.NewEncoder(os.Stdout).Encode(s)
		return
	}
	fmt.Printf("%s  cpu=%6.2f  mem=%6.2f\n",
		strconv.FormatFloat(s.Timestamp, 'f', 3, 64), s.CPUPercent, s.MemoryPercent)
}
