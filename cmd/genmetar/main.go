// Command genmetar writes a synthetic METAR file for every airport in a
// runway geometry file, for offline runs with METAR_FILE. It also writes the
// decisions the selector is expected to make for that file, computed with the
// selector's own domain package, so replay runs can be diffed against them.
//
// Usage:
//
//	go run ./cmd/genmetar \
//	  -runway-file configs/runway.txt \
//	  -wind 19012KT -visibility 9999 \
//	  -metar-out testdata/metar.txt \
//	  -expect-out testdata/expected.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/runway-selector/internal/adapter/sectorfile"
	"github.com/couchcryptid/runway-selector/internal/domain"
)

// observedAt is the fixed report time used for reproducible output.
var observedAt = time.Date(2026, time.October, 19, 12, 50, 0, 0, time.UTC)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	runwayFile := flag.String("runway-file", "configs/runway.txt", "runway geometry file")
	wind := flag.String("wind", "19012KT", "wind group, e.g. 19012KT, VRB03KT, 00000KT")
	variable := flag.String("variable", "", "optional variable direction group, e.g. 160V220")
	visibility := flag.String("visibility", "9999", "visibility group, e.g. 9999, 0800, CAVOK")
	weather := flag.String("weather", "", "optional present weather, e.g. FG")
	metarOut := flag.String("metar-out", "", "output path for the METAR file")
	expectOut := flag.String("expect-out", "", "output path for expected decisions JSON (optional)")
	flag.Parse()

	if *metarOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -metar-out")
	}

	table, err := sectorfile.LoadFile(*runwayFile, domain.DefaultPreferredRunways())
	if err != nil {
		return err
	}

	// Fixed clock for reproducible DecidedAt timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(observedAt))
	defer domain.SetClock(nil)

	groups := []string{*wind, *variable, *visibility, *weather, "FEW030", "05/01", "Q1013"}

	var (
		lines    []string
		expected []domain.Decision
	)
	for _, icao := range table.Airports() {
		report := buildMETAR(icao, groups)
		obs, err := domain.ParseObservation(report)
		if err != nil {
			return fmt.Errorf("generated report does not parse: %w", err)
		}
		lines = append(lines, report)

		ap, err := table.Lookup(icao)
		if err != nil {
			return err
		}
		if icao == domain.ENGM {
			log.Printf("%s: %s (mode depends on operator when not steady)", icao, report)
			continue
		}
		result, err := domain.SelectRunway(ap, obs.Wind)
		if err != nil {
			return fmt.Errorf("%s: %w", icao, err)
		}
		expected = append(expected, domain.NewDecision(result, report))
		log.Printf("%s: %s -> %s (%s)", icao, report, strings.Join(result.Active, ","), result.Reason)
	}

	if err := writeFile(*metarOut, []byte(strings.Join(lines, "\n")+"\n")); err != nil {
		return err
	}
	log.Printf("wrote %d reports to %s", len(lines), *metarOut)

	if *expectOut != "" {
		data, err := json.MarshalIndent(expected, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal expected decisions: %w", err)
		}
		if err := writeFile(*expectOut, append(data, '\n')); err != nil {
			return err
		}
		log.Printf("wrote %d expected decisions to %s", len(expected), *expectOut)
	}
	return nil
}

// buildMETAR assembles a report, dropping empty groups.
func buildMETAR(icao string, groups []string) string {
	parts := []string{icao, observedAt.Format("021504Z")}
	for _, g := range groups {
		if g != "" {
			parts = append(parts, g)
		}
	}
	return strings.Join(parts, " ")
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
