// Command checkrunways validates a runway geometry file before it is
// deployed: runway ends must be reciprocal, preferred runways must exist, and
// ENGM must have the parallel layout the mode resolver assumes.
//
// Usage:
//
//	go run ./cmd/checkrunways -runway-file runway.txt [-rwy-dir .]
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/couchcryptid/runway-selector/internal/adapter/sectorfile"
	"github.com/couchcryptid/runway-selector/internal/domain"
)

// headingTolerance is how far a runway's two headings may stray from 180°
// apart.
const headingTolerance = 5

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	runwayFile := flag.String("runway-file", "runway.txt", "runway geometry file")
	rwyDir := flag.String("rwy-dir", "", "directory that must contain .rwy files (optional)")
	flag.Parse()

	os.Exit(run(*runwayFile, *rwyDir))
}

func run(runwayFile, rwyDir string) int {
	fmt.Println("=== Runway Geometry Validation ===")
	fmt.Println()

	f, err := os.Open(runwayFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}
	runways, err := sectorfile.ParseRunways(f)
	f.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: parse %s: %v\n", runwayFile, err)
		return 1
	}

	preferred := domain.DefaultPreferredRunways()
	table, err := domain.NewGeometryTable(runways, preferred)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: build geometry: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateReciprocalEnds(runways),
		validateHeadings(runways),
		validatePreferred(table, preferred),
		validateENGMLayout(table),
	}
	if rwyDir != "" {
		phases = append(phases, validateRwyDir(rwyDir))
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Geometry: %d physical runways at %d airports\n", len(runways), len(table.Airports()))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// validateReciprocalEnds checks that each runway's second end is the
// opposite designator of its first ("01L" and "19R").
func validateReciprocalEnds(runways []domain.PhysicalRunway) *phase {
	p := &phase{name: "Reciprocal runway designators"}
	for _, r := range runways {
		a, b := r.Ends[0].ID, r.Ends[1].ID
		opp := domain.OppositeRunwayID(a)
		switch {
		case opp == "":
			p.errorf("%s: %q is not a runway designator", r.ICAO, a)
		case opp != b:
			p.errorf("%s: %s/%s, expected %s opposite %s", r.ICAO, a, b, opp, a)
		}
	}
	return p
}

// validateHeadings checks that the two headings of a runway are reciprocal
// within tolerance.
func validateHeadings(runways []domain.PhysicalRunway) *phase {
	p := &phase{name: "Reciprocal headings"}
	for _, r := range runways {
		a, b := r.Ends[0], r.Ends[1]
		if d := domain.HeadingDifference(a.Heading, b.Heading); d < 180-headingTolerance {
			p.errorf("%s %s/%s: headings %03d/%03d are %d° apart", r.ICAO, a.ID, b.ID, a.Heading, b.Heading, d)
		}
	}
	return p
}

// validatePreferred checks that every configured airport's preferred runway
// is one of its ends.
func validatePreferred(table *domain.GeometryTable, preferred map[string]string) *phase {
	p := &phase{name: "Preferred runways exist"}
	for _, icao := range table.Airports() {
		want, ok := preferred[icao]
		if !ok {
			continue
		}
		ap, err := table.Lookup(icao)
		if err != nil {
			p.errorf("%v", err)
			continue
		}
		if !ap.HasRunway(want) {
			p.errorf("%s: preferred runway %s not in geometry", icao, want)
		}
	}
	return p
}

// validateENGMLayout checks the parallel runway pair that the ENGM operating
// modes assign.
func validateENGMLayout(table *domain.GeometryTable) *phase {
	p := &phase{name: "ENGM parallel runway layout"}
	ap, err := table.Lookup(domain.ENGM)
	if err != nil {
		p.errorf("%v", err)
		return p
	}
	for _, id := range []string{"01L", "01R", "19L", "19R"} {
		if !ap.HasRunway(id) {
			p.errorf("ENGM: runway %s missing", id)
		}
	}
	return p
}

// validateRwyDir checks that the output directory holds .rwy files.
func validateRwyDir(dir string) *phase {
	p := &phase{name: "Output .rwy files present"}
	files, err := filepath.Glob(filepath.Join(dir, "*.rwy"))
	if err != nil {
		p.errorf("%v", err)
		return p
	}
	if len(files) == 0 {
		p.errorf("no .rwy files in %s", dir)
	}
	return p
}
