package metar

import (
	"context"
	"fmt"
	"os"
)

// FileSource reads METARs from a local file in the same one-per-line format
// the METAR service returns. It is used for offline runs and replays.
type FileSource struct {
	path string
}

// NewFileSource creates a FileSource for path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// FetchMETARs re-reads the file on every call, so edits are picked up by the
// next cycle. The airports argument is ignored.
func (s *FileSource) FetchMETARs(_ context.Context, _ []string) (map[string]string, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open metar file: %w", err)
	}
	defer f.Close()
	return ParseReports(f)
}
