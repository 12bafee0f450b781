// Command pfsimple-report reads persisted candidates from a SQLite database
// and renders the run as an HTML page and an optional PNG mass spectrum.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/viktorklochkov/PFSimple/internal/particle"
	"github.com/viktorklochkov/PFSimple/internal/report"
	sqlite "github.com/viktorklochkov/PFSimple/internal/storage/sqlite"
	"github.com/viktorklochkov/PFSimple/internal/version"
)

func main() {
	dbPath := flag.String("db", "candidates.db", "SQLite database written by pfsimple")
	runID := flag.String("run", "", "run ID (empty: most recent run)")
	htmlPath := flag.String("html", "report.html", "output HTML page (empty: skip)")
	pngPath := flag.String("png", "", "output PNG mass spectrum (empty: skip)")
	bins := flag.Int("bins", 60, "mass histogram bins")
	histLo := flag.Float64("lo", 0, "mass histogram lower edge (GeV/c2)")
	histHi := flag.Float64("hi", 0, "mass histogram upper edge (0: from data)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("pfsimple-report", version.String())
		return
	}

	if _, err := os.Stat(*dbPath); err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	db, err := sqlite.Open(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	runs := sqlite.NewRunStore(db.DB)
	run, err := resolveRun(runs, *runID)
	if err != nil {
		log.Fatalf("Failed to resolve run: %v", err)
	}

	cands := sqlite.NewCandidateStore(db.DB)
	candidates, err := cands.ListByRun(run.RunID)
	if err != nil {
		log.Fatalf("Failed to load candidates: %v", err)
	}
	if len(candidates) == 0 {
		log.Fatalf("run %s has no candidates", run.RunID)
	}
	masses, err := cands.MassesForRun(run.RunID)
	if err != nil {
		log.Fatalf("Failed to load masses: %v", err)
	}

	lo, hi := *histLo, *histHi
	if lo >= hi {
		lo, hi = histRange(masses)
	}
	sum := report.BuildSummary(candidates)
	hist, err := report.NewHist(masses, lo, hi, *bins)
	if err != nil {
		log.Fatalf("Failed to build mass histogram: %v", err)
	}

	title := "run " + run.RunID
	if run.Note != "" {
		title = run.Note
	}

	fmt.Printf("run:        %s\n", run.RunID)
	if run.Note != "" {
		fmt.Printf("note:       %s\n", run.Note)
	}
	fmt.Printf("candidates: %d\n", sum.Candidates)
	fmt.Printf("mass:       mean %.4f sigma %.4f median %.4f GeV/c2\n", sum.MassMean, sum.MassStdDev, sum.MassP50)
	fmt.Printf("chi2 geo:   p50 %.2f p95 %.2f\n", sum.Chi2GeoP50, sum.Chi2GeoP95)
	fmt.Printf("fit prob:   p50 %.3f, %.1f%% of fits above the 1%% floor\n", sum.FitProbP50, 100*sum.GoodFitFrac)

	if *htmlPath != "" {
		f, err := os.Create(*htmlPath)
		if err != nil {
			log.Fatalf("Failed to create %s: %v", *htmlPath, err)
		}
		if err := report.RenderHTML(f, title, sum, hist, candidates); err != nil {
			f.Close()
			log.Fatalf("Failed to render report: %v", err)
		}
		if err := f.Close(); err != nil {
			log.Fatalf("Failed to write %s: %v", *htmlPath, err)
		}
		fmt.Printf("wrote %s\n", *htmlPath)
	}

	if *pngPath != "" {
		refMass := 0.0
		if sp, ok := particle.SpeciesByPDG(run.MotherPDG); ok {
			refMass = sp.Mass
		}
		if err := report.SaveMassPNG(*pngPath, masses, *bins, refMass); err != nil {
			log.Fatalf("Failed to save mass spectrum: %v", err)
		}
		fmt.Printf("wrote %s\n", *pngPath)
	}
}

func resolveRun(runs *sqlite.RunStore, runID string) (*sqlite.Run, error) {
	if runID != "" {
		return runs.Get(runID)
	}
	latest, err := runs.List(1)
	if err != nil {
		return nil, err
	}
	if len(latest) == 0 {
		return nil, fmt.Errorf("database has no runs")
	}
	return latest[0], nil
}

// histRange picks histogram edges from the data, padded so the extreme
// values stay inside the binned range.
func histRange(masses []float64) (lo, hi float64) {
	if len(masses) == 0 {
		return 0, 1
	}
	lo, hi = masses[0], masses[0]
	for _, m := range masses {
		if m < lo {
			lo = m
		}
		if m > hi {
			hi = m
		}
	}
	if lo == hi {
		return lo - 0.05, hi + 0.05
	}
	pad := 0.02 * (hi - lo)
	return lo - pad, hi + pad
}
