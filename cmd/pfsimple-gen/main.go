// Command pfsimple-gen writes a synthetic JSONL event sample: known decays
// buried in combinatorial background, reproducible by seed.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/viktorklochkov/PFSimple/internal/config"
	"github.com/viktorklochkov/PFSimple/internal/eventio"
	"github.com/viktorklochkov/PFSimple/internal/version"
)

func main() {
	outPath := flag.String("out", "events.jsonl", "output event file (JSONL)")
	configPath := flag.String("config", "", "decay configuration JSON (default: k0s -> pion+ pion-)")
	events := flag.Int("events", 100, "number of events")
	signal := flag.Int("signal", 1, "injected decays per event")
	background := flag.Int("background", 10, "primary tracks per event")
	bz := flag.Float64("bz", 5, "magnetic field (kilogauss)")
	seed := flag.Int64("seed", 1, "random seed")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("pfsimple-gen", version.String())
		return
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	decay, err := cfg.BuildDecay()
	if err != nil {
		log.Fatalf("Invalid decay: %v", err)
	}

	gen := eventio.NewGenerator(eventio.GenConfig{
		Events:     *events,
		Signal:     *signal,
		Background: *background,
		Decay:      decay,
		Bz:         *bz,
		Seed:       *seed,
	})
	sample := gen.Events()

	if err := eventio.WriteFile(*outPath, sample); err != nil {
		log.Fatalf("Failed to write events: %v", err)
	}

	tracks := 0
	for i := range sample {
		tracks += len(sample[i].Tracks)
	}
	fmt.Printf("wrote %d events (%d tracks) with %s to %s\n", len(sample), tracks, decay, *outPath)
}
