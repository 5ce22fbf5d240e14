package rwyfile

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/runway-selector/internal/domain"
)

func decision(icao string, deps, arrs []string) domain.Decision {
	active := append(append([]string{}, deps...), arrs...)
	return domain.Decision{SelectionResult: domain.SelectionResult{
		ICAO:       icao,
		Active:     active,
		Departures: deps,
		Arrivals:   arrs,
		Reason:     domain.ReasonWindOptimal,
	}}
}

func newTestWriter(dir string) *Writer {
	return NewWriter(dir, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestApply_ReplacesActiveRunway(t *testing.T) {
	in := "ACTIVE_RUNWAY:ENBR:35:1\nACTIVE_RUNWAY:ENBR:35:0\nACTIVE_RUNWAY:ENZV:18:1\n"

	out := Apply(in, []domain.Decision{decision("ENBR", []string{"17"}, []string{"17"})})

	assert.Equal(t, "ACTIVE_RUNWAY:ENZV:18:1\nACTIVE_RUNWAY:ENBR:17:1\nACTIVE_RUNWAY:ENBR:17:0\n", out)
}

func TestApply_ENGMSummaryLines(t *testing.T) {
	in := "ENGM_ARR:01L,01R\r\nENGM_DEP:01L,01R\r\nACTIVE_RUNWAY:ENGM:01L:1\r\n"

	out := Apply(in, []domain.Decision{decision("ENGM", []string{"19L"}, []string{"19R"})})

	assert.Equal(t,
		"ENGM_ARR:19R\r\nENGM_DEP:19L\r\nACTIVE_RUNWAY:ENGM:19L:1\r\nACTIVE_RUNWAY:ENGM:19R:0\r\n",
		out)
}

func TestApply_KeepsLineEndings(t *testing.T) {
	d := []domain.Decision{decision("ENBR", []string{"17"}, []string{"17"})}

	crlf := Apply("; sector\r\nACTIVE_RUNWAY:ENBR:35:1\r\n", d)
	assert.Equal(t, "; sector\r\nACTIVE_RUNWAY:ENBR:17:1\r\nACTIVE_RUNWAY:ENBR:17:0\r\n", crlf)

	lf := Apply("; sector\nACTIVE_RUNWAY:ENBR:35:1\n", d)
	assert.Equal(t, "; sector\nACTIVE_RUNWAY:ENBR:17:1\nACTIVE_RUNWAY:ENBR:17:0\n", lf)
}

func TestApply_PrefixIsExact(t *testing.T) {
	// ENGMX must not be mistaken for ENGM.
	in := "ACTIVE_RUNWAY:ENGMX:09:1\n"

	out := Apply(in, []domain.Decision{decision("ENGM", []string{"19R"}, []string{"19R"})})

	assert.Contains(t, out, "ACTIVE_RUNWAY:ENGMX:09:1")
}

func TestApply_EmptyFile(t *testing.T) {
	out := Apply("", []domain.Decision{decision("ENVA", []string{"09"}, []string{"09"})})
	assert.Equal(t, "ACTIVE_RUNWAY:ENVA:09:1\nACTIVE_RUNWAY:ENVA:09:0\n", out)
	assert.Empty(t, Apply("", nil))
}

func TestWriter_LoadBatch(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.rwy")
	b := filepath.Join(dir, "b.rwy")
	require.NoError(t, os.WriteFile(a, []byte("ACTIVE_RUNWAY:ENBR:35:1\n"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte(""), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	w := newTestWriter(dir)
	files, err := w.Files()
	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, files)

	err = w.LoadBatch(context.Background(), []domain.Decision{decision("ENBR", []string{"17"}, []string{"17"})})
	require.NoError(t, err)

	for _, path := range files {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "ACTIVE_RUNWAY:ENBR:17:1\nACTIVE_RUNWAY:ENBR:17:0\n", string(data))
	}

	info, err := os.Stat(b)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	leftovers, err := filepath.Glob(filepath.Join(dir, ".rwy-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestWriter_NoFiles(t *testing.T) {
	err := newTestWriter(t.TempDir()).LoadBatch(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoFiles))
}
