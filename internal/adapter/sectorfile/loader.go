// Package sectorfile loads runway geometry from a sector-file style
// runway.txt.
package sectorfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/runway-selector/internal/domain"
)

// minFields is end1 end2 hdg1 hdg2 lat1 lon1 lat2 lon2 ICAO.
const minFields = 9

// LoadFile reads a runway.txt file and builds the geometry table using
// preferred as the fallback runway per airport.
func LoadFile(path string, preferred map[string]string) (*domain.GeometryTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open runway file: %w", err)
	}
	defer f.Close()

	runways, err := ParseRunways(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return domain.NewGeometryTable(runways, preferred)
}

// ParseRunways reads one physical runway per line. Blank lines, section
// headers ("[RUNWAY]") and lines with too few fields are skipped.
func ParseRunways(r io.Reader) ([]domain.PhysicalRunway, error) {
	var runways []domain.PhysicalRunway
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "[") || strings.HasPrefix(line, ";") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < minFields {
			continue
		}

		hdg1, err := parseHeading(fields[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		hdg2, err := parseHeading(fields[3])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		runways = append(runways, domain.PhysicalRunway{
			ICAO: strings.ToUpper(fields[8]),
			Ends: [2]domain.RunwayEnd{
				{ID: strings.ToUpper(fields[0]), Heading: hdg1},
				{ID: strings.ToUpper(fields[1]), Heading: hdg2},
			},
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read runways: %w", err)
	}
	return runways, nil
}

func parseHeading(s string) (int, error) {
	h, err := strconv.Atoi(s)
	if err != nil || h < 0 || h > 360 {
		return 0, fmt.Errorf("invalid heading %q", s)
	}
	return domain.NormalizeHeading(h), nil
}
