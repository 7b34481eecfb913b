// Command sheetcore is the process entrypoint: manual subcommand
// dispatch over os.Args (a flat switch, no subcommand-parsing
// library), with per-subcommand flags handled by the standard flag
// package.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"sheetcore/internal/csvio"
	"sheetcore/internal/engine"
	"sheetcore/internal/liveview"
	"sheetcore/internal/parser"
	"sheetcore/internal/snapshot"
	"sheetcore/internal/tui"
)

const (
	defaultRows = 999
	defaultCols = 18278
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	sub := os.Args[1]
	switch sub {
	case "-h", "--help", "help":
		usage()
		return
	case "run":
		os.Exit(runCommand(os.Args[2:]))
	case "serve":
		os.Exit(serveCommand(os.Args[2:]))
	case "csv-import":
		os.Exit(csvImportCommand(os.Args[2:]))
	case "csv-export":
		os.Exit(csvExportCommand(os.Args[2:]))
	case "snapshot-save":
		os.Exit(snapshotSaveCommand(os.Args[2:]))
	case "snapshot-load":
		os.Exit(snapshotLoadCommand(os.Args[2:]))
	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand: %s\n", sub)
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage:\n")
	fmt.Fprintf(os.Stderr, "  sheetcore <command> [arguments]\n")
	fmt.Fprintf(os.Stderr, "\nCommands:\n")
	fmt.Fprintf(os.Stderr, "  run                      interactive terminal grid editor\n")
	fmt.Fprintf(os.Stderr, "  serve [addr]             start the live-view websocket server (default :8080)\n")
	fmt.Fprintf(os.Stderr, "  csv-import <file.csv>    load a CSV file as literal cell values\n")
	fmt.Fprintf(os.Stderr, "  csv-export <file.csv>    dump the sheet's values as CSV\n")
	fmt.Fprintf(os.Stderr, "  snapshot-save <dsn> <name>   save stdin's command lines under name in Postgres\n")
	fmt.Fprintf(os.Stderr, "  snapshot-load <dsn> <name>   replay a saved snapshot and open the interactive grid\n")
	fmt.Fprintf(os.Stderr, "  help                     show this help message\n")
}

// normalizeAddr strips a "localhost" host (binding to it can cause
// IPv4/IPv6 mismatches on some systems; binding all interfaces avoids
// that) and tolerates a bare port with no leading colon.
func normalizeAddr(addr string) string {
	addr = strings.Replace(addr, "localhost", "", 1)
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}
	return addr
}

func runCommand(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	rows := fs.Int("rows", defaultRows, "number of grid rows")
	cols := fs.Int("cols", defaultCols, "number of grid columns")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	eng := engine.New(*rows, *cols)
	if err := tui.Run(eng, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "run error: %v\n", err)
		return 1
	}
	return 0
}

func serveCommand(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	rows := fs.Int("rows", defaultRows, "number of grid rows")
	cols := fs.Int("cols", defaultCols, "number of grid columns")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	addr := ":8080"
	if fs.NArg() > 0 {
		addr = normalizeAddr(fs.Arg(0))
	}

	eng := engine.New(*rows, *cols)
	view := liveview.New(eng)
	eng.OnEvaluated = view.Notify

	go func() {
		if err := tui.Run(eng, os.Stdin, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "run error: %v\n", err)
		}
	}()

	if err := view.Start(addr); err != nil {
		fmt.Fprintf(os.Stderr, "serve error: %v\n", err)
		return 1
	}
	return 0
}

func csvImportCommand(args []string) int {
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "usage: sheetcore csv-import <file.csv>\n")
		return 2
	}
	f, err := os.Open(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "csv-import: %v\n", err)
		return 1
	}
	defer f.Close()

	eng := engine.New(defaultRows, defaultCols)
	if err := csvio.Load(f, eng); err != nil {
		fmt.Fprintf(os.Stderr, "csv-import: %v\n", err)
		return 1
	}
	if err := tui.Run(eng, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "run error: %v\n", err)
		return 1
	}
	return 0
}

func csvExportCommand(args []string) int {
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "usage: sheetcore csv-export <file.csv>\n")
		return 2
	}
	eng := engine.New(defaultRows, defaultCols)
	if err := tui.Run(eng, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "csv-export: %v\n", err)
		return 1
	}
	f, err := os.Create(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "csv-export: %v\n", err)
		return 1
	}
	defer f.Close()
	if err := csvio.Dump(f, eng, defaultRows, defaultCols); err != nil {
		fmt.Fprintf(os.Stderr, "csv-export: %v\n", err)
		return 1
	}
	return 0
}

// snapshotSaveCommand reads command lines from stdin, validates each
// one parses, and persists the raw text under name — never the
// dependency graph, which snapshot-load rebuilds by replaying them.
func snapshotSaveCommand(args []string) int {
	if len(args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: sheetcore snapshot-save <dsn> <name>\n")
		return 2
	}
	dsn, name := args[0], args[1]

	ctx := context.Background()
	store, err := snapshot.Open(ctx, dsn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "snapshot-save: %v\n", err)
		return 1
	}
	defer store.Close()

	var lines []string
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		if p := parser.Parse(line); p.Status != 0 {
			fmt.Fprintf(os.Stderr, "snapshot-save: skipping unparseable line %q\n", line)
			continue
		}
		lines = append(lines, line)
	}

	if err := store.Save(ctx, name, lines); err != nil {
		fmt.Fprintf(os.Stderr, "snapshot-save: %v\n", err)
		return 1
	}
	return 0
}

// snapshotLoadCommand replays a saved snapshot's command lines through
// a fresh engine — the dispatcher, not this command, rebuilds the
// dependency graph — then hands off to the interactive grid editor.
func snapshotLoadCommand(args []string) int {
	if len(args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: sheetcore snapshot-load <dsn> <name>\n")
		return 2
	}
	dsn, name := args[0], args[1]

	ctx := context.Background()
	store, err := snapshot.Open(ctx, dsn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "snapshot-load: %v\n", err)
		return 1
	}
	defer store.Close()

	lines, err := store.Load(ctx, name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "snapshot-load: %v\n", err)
		return 1
	}

	eng := engine.New(defaultRows, defaultCols)
	for _, line := range lines {
		if status := eng.Dispatch(parser.Parse(line)); status != 0 && status != -1 {
			fmt.Fprintf(os.Stderr, "snapshot-load: replaying %q: status %d\n", line, status)
		}
	}

	if err := tui.Run(eng, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "run error: %v\n", err)
		return 1
	}
	return 0
}
