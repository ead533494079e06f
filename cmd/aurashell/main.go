// aurashell is the query console for the snapshot store. One-shot query
// flags run a single command for scripting; with none given and a terminal
// attached it starts the interactive prompt.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/aurasys/aura/config"
	"github.com/aurasys/aura/internal/loader"
	"github.com/aurasys/aura/internal/logging"
	"github.com/aurasys/aura/internal/shell"
	"github.com/aurasys/aura/internal/store"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfgPath := flag.String("config", "", "config file path")
	dbPath := flag.String("db", "", "snapshot log path (overrides config)")
	retention := flag.Float64("retention-seconds", 0, "retention window in seconds (overrides config)")
	noPersist := flag.Bool("no-persist", false, "query an empty ephemeral store")

	countQ := flag.Bool("count", false, "print the snapshot count and exit")
	latestQ := flag.Int("latest", 0, "print the most recent n snapshots and exit")
	since := flag.String("since", "-", "range start as unix seconds (- for open)")
	until := flag.String("until", "-", "range end as unix seconds (- for open)")
	timelineQ := flag.Int("timeline", 0, "print a downsampled series of this many points and exit")
	summaryQ := flag.Bool("summary", false, "print window statistics and exit")
	exportQ := flag.String("export", "", "write the window to this Parquet archive and exit")
	jsonOut := flag.Bool("json", false, "emit results as JSON")
	flag.Parse()

	// Keep log noise off the console; errors still reach stderr.
	logging.Init(logging.ParseLevel("warn"), false)

	cfg, err := loader.Resolve(loader.Flags{
		ConfigPath:       *cfgPath,
		DBPath:           *dbPath,
		RetentionSeconds: *retention,
		NoPersist:        *noPersist,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "aurashell: %v\n", err)
		os.Exit(1)
	}

	path := cfg.DBPath
	if !cfg.PersistenceEnabled {
		path = config.MemoryPath
	}
	st, err := store.Open(path, cfg.RetentionSeconds)
	if err != nil {
		fmt.Fprintf(os.Stderr, "aurashell: open store: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	sh := shell.New(st, shell.Options{JSON: *jsonOut})

	var command string
	bounds := *since + " " + *until
	rangeGiven := *since != "-" || *until != "-"
	switch {
	case *countQ:
		command = "count"
	case *latestQ > 0:
		command = "latest " + strconv.Itoa(*latestQ)
	case *timelineQ > 0:
		command = "timeline " + bounds + " " + strconv.Itoa(*timelineQ)
	case *summaryQ:
		command = "summary " + bounds
	case *exportQ != "":
		command = "export " + *exportQ + " " + bounds
	case rangeGiven:
		command = "between " + bounds
	}

	if command != "" {
		if err := sh.Execute(command); err != nil {
			fmt.Fprintf(os.Stderr, "aurashell: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := sh.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "aurashell: %v\n", err)
		os.Exit(1)
	}
}
