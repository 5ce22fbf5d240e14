package metar

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/runway-selector/internal/observability"
)

// --- mock for cache tests ---

type countingSource struct {
	calls   int
	reports map[string]string
	err     error
}

func (m *countingSource) FetchMETARs(_ context.Context, _ []string) (map[string]string, error) {
	m.calls++
	return m.reports, m.err
}

// --- CachedSource tests ---

func TestCachedSource_Hit(t *testing.T) {
	inner := &countingSource{reports: map[string]string{"ENGM": testENGM, "ENBR": testENBR}}
	metrics := observability.NewMetricsForTesting()
	cached := NewCachedSource(inner, 100, time.Minute, metrics)

	r1, err := cached.FetchMETARs(context.Background(), []string{"ENGM", "ENBR"})
	require.NoError(t, err)
	assert.Equal(t, testENGM, r1["ENGM"])

	r2, err := cached.FetchMETARs(context.Background(), []string{"ENGM"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"ENGM": testENGM}, r2)

	assert.Equal(t, 1, inner.calls, "should only call inner once")
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.METARCache.WithLabelValues("hit")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.METARCache.WithLabelValues("miss")), 0)
}

func TestCachedSource_PartialMissRefetches(t *testing.T) {
	inner := &countingSource{reports: map[string]string{"ENGM": testENGM}}
	cached := NewCachedSource(inner, 100, time.Minute, observability.NewMetricsForTesting())

	_, err := cached.FetchMETARs(context.Background(), []string{"ENGM"})
	require.NoError(t, err)
	_, err = cached.FetchMETARs(context.Background(), []string{"ENGM", "ENBR"})
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls)
}

func TestCachedSource_AbsentAirportStillHits(t *testing.T) {
	inner := &countingSource{reports: map[string]string{"ENGM": testENGM, "ENBR": testENBR}}
	metrics := observability.NewMetricsForTesting()
	cached := NewCachedSource(inner, 100, time.Hour, metrics)

	for range 5 {
		r, err := cached.FetchMETARs(context.Background(), []string{"ENBR", "ENGM", "ENSH"})
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"ENGM": testENGM, "ENBR": testENBR}, r)
	}

	assert.Equal(t, 1, inner.calls)
	assert.InDelta(t, 4, testutil.ToFloat64(metrics.METARCache.WithLabelValues("hit")), 0)
}

func TestCachedSource_AbsentAirportReappears(t *testing.T) {
	inner := &countingSource{reports: map[string]string{"ENGM": testENGM}}
	cached := NewCachedSource(inner, 100, 10*time.Millisecond, observability.NewMetricsForTesting())

	_, err := cached.FetchMETARs(context.Background(), []string{"ENGM", "ENBR"})
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	inner.reports = map[string]string{"ENGM": testENGM, "ENBR": testENBR}
	r, err := cached.FetchMETARs(context.Background(), []string{"ENGM", "ENBR"})
	require.NoError(t, err)

	assert.Equal(t, testENBR, r["ENBR"])
	assert.Equal(t, 2, inner.calls)
}

func TestCachedSource_Expiry(t *testing.T) {
	inner := &countingSource{reports: map[string]string{"ENGM": testENGM}}
	cached := NewCachedSource(inner, 100, 10*time.Millisecond, observability.NewMetricsForTesting())

	_, err := cached.FetchMETARs(context.Background(), []string{"ENGM"})
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)
	_, err = cached.FetchMETARs(context.Background(), []string{"ENGM"})
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls)
}

func TestCachedSource_ErrorNotCached(t *testing.T) {
	inner := &countingSource{err: errors.New("boom")}
	cached := NewCachedSource(inner, 100, time.Minute, observability.NewMetricsForTesting())

	_, err := cached.FetchMETARs(context.Background(), []string{"ENGM"})
	require.Error(t, err)

	inner.err = nil
	inner.reports = map[string]string{"ENGM": testENGM}
	r, err := cached.FetchMETARs(context.Background(), []string{"ENGM"})
	require.NoError(t, err)
	assert.Equal(t, testENGM, r["ENGM"])
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metar.txt")
	require.NoError(t, os.WriteFile(path, []byte(testENGM+"\n"+testESKS+"\n"), 0o644))

	reports, err := NewFileSource(path).FetchMETARs(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, testESKS, reports["ESKS"])
	assert.Len(t, reports, 2)

	_, err = NewFileSource(filepath.Join(t.TempDir(), "missing.txt")).FetchMETARs(context.Background(), nil)
	assert.Error(t, err)
}
