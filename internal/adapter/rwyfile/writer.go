// Package rwyfile writes runway decisions into controller client .rwy files.
//
// A .rwy file holds one ACTIVE_RUNWAY:{ICAO}:{RWY}:{FLAG} line per active
// runway, where FLAG is 1 for departures and 0 for arrivals. Some files also
// carry {ICAO}_ARR: and {ICAO}_DEP: summary lines, which are rewritten in
// place when present.
package rwyfile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/couchcryptid/runway-selector/internal/domain"
)

// ErrNoFiles is returned when the directory holds no .rwy files.
var ErrNoFiles = errors.New("no .rwy files found")

// Writer updates every .rwy file in a directory.
// It implements pipeline.Loader.
type Writer struct {
	dir    string
	logger *slog.Logger
}

// NewWriter creates a writer for the .rwy files in dir.
func NewWriter(dir string, logger *slog.Logger) *Writer {
	return &Writer{dir: dir, logger: logger}
}

// Name identifies the sink in logs and errors.
func (w *Writer) Name() string { return "rwyfile" }

// Files lists the .rwy files in the directory in sorted order.
func (w *Writer) Files() ([]string, error) {
	files, err := filepath.Glob(filepath.Join(w.dir, "*.rwy"))
	if err != nil {
		return nil, fmt.Errorf("list rwy files: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%s: %w", w.dir, ErrNoFiles)
	}
	slices.Sort(files)
	return files, nil
}

// LoadBatch applies every decision to every .rwy file. Files are updated one
// at a time; a failure on one file does not stop the others.
func (w *Writer) LoadBatch(ctx context.Context, decisions []domain.Decision) error {
	files, err := w.Files()
	if err != nil {
		return err
	}
	if len(decisions) == 0 {
		return nil
	}

	var errs []error
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := updateFile(path, decisions); err != nil {
			errs = append(errs, err)
			continue
		}
		w.logger.Debug("rwy file updated", "file", filepath.Base(path), "airports", len(decisions))
	}
	return errors.Join(errs...)
}

func updateFile(path string, decisions []domain.Decision) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	out := Apply(string(data), decisions)

	// Write to a sibling temp file and rename so a controller client never
	// reads a half-written file.
	tmp, err := os.CreateTemp(filepath.Dir(path), ".rwy-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(out); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), info.Mode().Perm()); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// Apply returns content with the decisions' airports updated. Lines that do
// not belong to a decided airport are kept in their original order. A file
// using CRLF line endings keeps them.
func Apply(content string, decisions []domain.Decision) string {
	eol := "\n"
	if strings.Contains(content, "\r\n") {
		eol = "\r\n"
	}
	lines := splitLines(content)
	for _, d := range decisions {
		lines = applyDecision(lines, d.SelectionResult)
	}
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, eol) + eol
}

func applyDecision(lines []string, r domain.SelectionResult) []string {
	activePrefix := "ACTIVE_RUNWAY:" + r.ICAO + ":"
	arrPrefix := r.ICAO + "_ARR:"
	depPrefix := r.ICAO + "_DEP:"

	out := lines[:0:0]
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, activePrefix):
			continue
		case strings.HasPrefix(line, arrPrefix):
			line = arrPrefix + strings.Join(r.Arrivals, ",")
		case strings.HasPrefix(line, depPrefix):
			line = depPrefix + strings.Join(r.Departures, ",")
		}
		out = append(out, line)
	}
	for _, rwy := range r.Departures {
		out = append(out, activePrefix+rwy+":1")
	}
	for _, rwy := range r.Arrivals {
		out = append(out, activePrefix+rwy+":0")
	}
	return out
}

func splitLines(content string) []string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.TrimRight(content, "\n")
	if content == "" {
		return nil
	}
	return strings.Split(content, "\n")
}
