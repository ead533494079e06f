// Package shell implements the interactive query console. It speaks a
// small command language over a store: counts, recent snapshots, range
// queries, downsampled timelines, window summaries, and Parquet export.
package shell

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/c-bata/go-prompt"
	"golang.org/x/term"

	"github.com/aurasys/aura/internal/errors"
	"github.com/aurasys/aura/internal/export"
	"github.com/aurasys/aura/internal/store"
	"github.com/aurasys/aura/internal/summary"
	"github.com/aurasys/aura/internal/telemetry"
	"github.com/aurasys/aura/internal/timeline"
)

// Shell executes query commands against a store.
type Shell struct {
	store store.Store
	out   io.Writer
	json  bool
	done  bool
}

// Options configures a Shell.
type Options struct {
	// Out receives command output. Defaults to os.Stdout.
	Out io.Writer

	// JSON switches output from human-readable lines to JSON documents.
	JSON bool
}

// New returns a Shell bound to the given store.
func New(s store.Store, opts Options) *Shell {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	return &Shell{store: s, out: out, json: opts.JSON}
}

// Run starts the interactive prompt. It requires stdin to be a terminal;
// piped input should use Execute per line instead.
func (sh *Shell) Run() error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.ErrNotTerminal
	}

	p := prompt.New(
		sh.executor,
		completer,
		prompt.OptionPrefix("aura> "),
		prompt.OptionTitle("aura shell"),
		prompt.OptionSetExitCheckerOnInput(func(_ string, breakline bool) bool {
			return sh.done && breakline
		}),
	)
	p.Run()
	return nil
}

func (sh *Shell) executor(line string) {
	if err := sh.Execute(line); err != nil {
		fmt.Fprintf(sh.out, "error: %v\n", err)
	}
}

// Execute runs a single command line. Unknown commands and malformed
// arguments return validation errors; an empty line is a no-op.
func (sh *Shell) Execute(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	cmd, args := fields[0], fields[1:]
	switch cmd {
	case "count":
		return sh.count(args)
	case "latest":
		return sh.latest(args)
	case "between":
		return sh.between(args)
	case "timeline":
		return sh.timeline(args)
	case "summary":
		return sh.summary(args)
	case "export":
		return sh.export(args)
	case "help":
		sh.printHelp()
		return nil
	case "exit", "quit":
		sh.done = true
		return nil
	default:
		return errors.Wrapf(errors.ErrInvalidCommand, "unknown command %q, try help", cmd)
	}
}

// Done reports whether an exit command has been executed.
func (sh *Shell) Done() bool {
	return sh.done
}

func (sh *Shell) count(args []string) error {
	if len(args) != 0 {
		return errors.Wrap(errors.ErrInvalidCommand, "count takes no arguments")
	}
	n, err := sh.store.Count()
	if err != nil {
		return err
	}
	if sh.json {
		return sh.emit(map[string]int{"count": n})
	}
	fmt.Fprintf(sh.out, "%d\n", n)
	return nil
}

func (sh *Shell) latest(args []string) error {
	limit := 1
	if len(args) > 1 {
		return errors.Wrap(errors.ErrInvalidCommand, "usage: latest [n]")
	}
	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return errors.NewInvalidValue("limit", args[0], errors.ErrInvalidLimit)
		}
		limit = n
	}

	snapshots, err := sh.store.Latest(limit)
	if err != nil {
		return err
	}
	return sh.printSnapshots(snapshots)
}

func (sh *Shell) between(args []string) error {
	start, end, err := parseBounds(args)
	if err != nil {
		return err
	}
	snapshots, err := sh.store.Between(start, end)
	if err != nil {
		return err
	}
	return sh.printSnapshots(snapshots)
}

func (sh *Shell) timeline(args []string) error {
	var resolution int
	if len(args) == 1 || len(args) == 3 {
		n, err := strconv.Atoi(args[len(args)-1])
		if err != nil {
			return errors.NewInvalidValue("resolution", args[len(args)-1], errors.ErrInvalidResolution)
		}
		resolution = n
		args = args[:len(args)-1]
	}

	start, end, err := parseBounds(args)
	if err != nil {
		return err
	}

	snapshots, err := timeline.Query(sh.store, timeline.Request{
		Start:      start,
		End:        end,
		Resolution: resolution,
	})
	if err != nil {
		return err
	}
	return sh.printSnapshots(snapshots)
}

func (sh *Shell) summary(args []string) error {
	start, end, err := parseBounds(args)
	if err != nil {
		return err
	}

	ws, err := summary.ForRange(sh.store, start, end)
	if err != nil {
		return err
	}
	if sh.json {
		return sh.emit(ws)
	}

	fmt.Fprintf(sh.out, "snapshots: %d\n", ws.Count)
	if ws.Count == 0 {
		return nil
	}
	fmt.Fprintf(sh.out, "window:    %s .. %s\n",
		formatSeconds(ws.Start), formatSeconds(ws.End))
	printSignal(sh.out, "cpu", ws.CPU)
	printSignal(sh.out, "mem", ws.Memory)
	return nil
}

func (sh *Shell) export(args []string) error {
	if len(args) != 1 && len(args) != 3 {
		return errors.Wrap(errors.ErrInvalidCommand, "usage: export <path> [start end]")
	}
	path := args[0]

	start, end, err := parseBounds(args[1:])
	if err != nil {
		return err
	}

	n, err := export.Range(sh.store, path, start, end)
	if err != nil {
		return err
	}
	if sh.json {
		return sh.emit(map[string]any{"path": path, "rows": n})
	}
	fmt.Fprintf(sh.out, "wrote %d rows to %s\n", n, path)
	return nil
}

func (sh *Shell) printSnapshots(snapshots []telemetry.Snapshot) error {
	if sh.json {
		return sh.emit(snapshots)
	}
	for _, s := range snapshots {
		fmt.Fprintf(sh.out, "%s  cpu=%6.2f  mem=%6.2f\n",
			formatSeconds(s.Timestamp), s.CPUPercent, s.MemoryPercent)
	}
	return nil
}

func (sh *Shell) emit(v any) error {
	enc := json.NewEncoder(sh.out)
	return enc.Encode(v)
}

func (sh *Shell) printHelp() {
	fmt.Fprint(sh.out, `commands:
  count                          number of retained snapshots
  latest [n]                     most recent n snapshots (default 1)
  between [start end]            snapshots in [start, end], unix seconds
  timeline [start end] [points]  downsampled series (default 500 points)
  summary [start end]            min/max/avg/percentiles for a window
  export <path> [start end]      write a window to a Parquet archive
  help                           this text
  exit                           leave the shell
`)
}

// parseBounds accepts either no bounds or a start/end pair. The literal
// "-" leaves one side open.
func parseBounds(args []string) (start, end *float64, err error) {
	switch len(args) {
	case 0:
		return nil, nil, nil
	case 2:
		start, err = parseBound(args[0])
		if err != nil {
			return nil, nil, err
		}
		end, err = parseBound(args[1])
		if err != nil {
			return nil, nil, err
		}
		return start, end, nil
	default:
		return nil, nil, errors.Wrap(errors.ErrInvalidCommand, "expected no bounds or a start and end")
	}
}

func parseBound(arg string) (*float64, error) {
	if arg == "-" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return nil, errors.NewInvalidValue("bound", arg, errors.ErrInvalidTimestamp)
	}
	return &v, nil
}

func formatSeconds(ts float64) string {
	return strconv.FormatFloat(ts, 'f', 3, 64)
}

func printSignal(out io.Writer, name string, s summary.SignalSummary) {
	fmt.Fprintf(out, "%s:  min=%6.2f  max=%6.2f  avg=%6.2f  p50=%6.2f  p90=%6.2f  p95=%6.2f  p99=%6.2f\n",
		name, s.Min, s.Max, s.Avg, s.P50, s.P90, s.P95, s.P99)
}

func completer(d prompt.Document) []prompt.Suggest {
	suggestions := []prompt.Suggest{
		{Text: "count", Description: "number of retained snapshots"},
		{Text: "latest", Description: "most recent snapshots"},
		{Text: "between", Description: "snapshots in a time range"},
		{Text: "timeline", Description: "downsampled series"},
		{Text: "summary", Description: "window statistics"},
		{Text: "export", Description: "write a Parquet archive"},
		{Text: "help", Description: "command reference"},
		{Text: "exit", Description: "leave the shell"},
	}
	if d.FindStartOfPreviousWord() != 0 {
		return nil
	}
	return prompt.FilterHasPrefix(suggestions, d.GetWordBeforeCursor(), true)
}
