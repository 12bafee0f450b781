// Command pfsimple reconstructs short-lived decay candidates from a JSONL
// event file and optionally persists them to a SQLite database.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/viktorklochkov/PFSimple/internal/runner"
	"github.com/viktorklochkov/PFSimple/internal/version"
)

func main() {
	configPath := flag.String("config", "", "decay configuration JSON (default: k0s -> pion+ pion-)")
	eventsPath := flag.String("events", "", "input event file (JSONL)")
	dbPath := flag.String("db", "", "SQLite database for candidates (empty: no persistence)")
	workers := flag.Int("workers", 0, "worker goroutines (0: from config)")
	note := flag.String("note", "", "free-form note stored with the run")
	verbose := flag.Bool("v", false, "log per-run diagnostics to stderr")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("pfsimple", version.String())
		return
	}

	if *eventsPath == "" {
		log.Fatalf("missing -events: need a JSONL event file")
	}

	if *verbose {
		runner.SetLogWriters(os.Stderr, os.Stderr, nil)
	} else {
		runner.SetLogWriters(os.Stderr, nil, nil)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sum, err := runner.Run(ctx, runner.Options{
		ConfigPath: *configPath,
		EventsPath: *eventsPath,
		DBPath:     *dbPath,
		Workers:    *workers,
		Note:       *note,
	})
	if err != nil {
		log.Fatalf("Reconstruction failed: %v", err)
	}

	fmt.Printf("decay:      %s\n", sum.Decay)
	fmt.Printf("events:     %d (%d skipped)\n", sum.Events, sum.Skipped)
	fmt.Printf("tracks:     %d\n", sum.Tracks)
	fmt.Printf("pairs:      %d\n", sum.Counters.Pairs)
	if sum.Counters.Triples > 0 {
		fmt.Printf("triples:    %d\n", sum.Counters.Triples)
	}
	fmt.Printf("candidates: %d (%d rejected)\n", sum.Candidates, sum.Counters.TotalRejected())
	fmt.Printf("elapsed:    %v\n", sum.Duration)
	if sum.RunID != "" {
		fmt.Printf("run id:     %s\n", sum.RunID)
	}

	if *verbose && len(sum.Counters.Rejected) > 0 {
		stages := make([]string, 0, len(sum.Counters.Rejected))
		for st := range sum.Counters.Rejected {
			stages = append(stages, st)
		}
		sort.Strings(stages)
		fmt.Println("rejections by stage:")
		for _, st := range stages {
			fmt.Printf("  %-14s %d\n", st, sum.Counters.Rejected[st])
		}
	}
}
