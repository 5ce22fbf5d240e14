package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/runway-selector/internal/domain"
	"github.com/couchcryptid/runway-selector/internal/observability"
)

// Source fetches raw METARs keyed by ICAO.
type Source interface {
	FetchMETARs(ctx context.Context, airports []string) (map[string]string, error)
}

// Geometry looks up configured airports.
type Geometry interface {
	Lookup(icao string) (domain.AirportConfig, error)
	Airports() []string
}

// Resolver turns one airport observation into a runway decision.
type Resolver interface {
	Resolve(ctx context.Context, airport domain.AirportConfig, obs domain.Observation) (domain.Decision, error)
}

// Loader writes a cycle's decisions to a destination.
type Loader interface {
	Name() string
	LoadBatch(ctx context.Context, decisions []domain.Decision) error
}

// Options tune which airports a cycle covers and how fetches are retried.
type Options struct {
	// Airports limits processing to these ICAO codes. Empty means every
	// airport in the geometry table.
	Airports []string
	// Ignored airports are never processed.
	Ignored []string
	// FetchRetries is how many times a failed METAR fetch is retried.
	FetchRetries int
}

// CycleReport summarises one selection cycle.
type CycleReport struct {
	Decisions []domain.Decision
	Failed    int // parse, configuration, or operator failures
	Skipped   int // ignored airports and airports without a METAR
	Duration  time.Duration
}

// Pipeline runs the fetch-select-write cycle.
type Pipeline struct {
	source   Source
	geometry Geometry
	resolver Resolver
	loader   Loader
	opts     Options
	logger   *slog.Logger
	metrics  *observability.Metrics
	clock    clockwork.Clock
	ready    atomic.Bool
}

// New creates a Pipeline with the given stages and observability.
func New(src Source, geo Geometry, r Resolver, l Loader, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		source:   src,
		geometry: geo,
		resolver: r,
		loader:   l,
		opts:     opts,
		logger:   logger,
		metrics:  metrics,
		clock:    clockwork.NewRealClock(),
	}
}

// SetClock swaps the time source used for scheduling and retries.
func (p *Pipeline) SetClock(c clockwork.Clock) {
	p.clock = c
}

// CheckReadiness returns nil once a cycle has produced at least one decision,
// or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no runway decision has been made yet")
	}
	return nil
}

// Run executes a cycle immediately and then once per interval until the
// context is cancelled. A non-positive interval runs a single cycle and
// returns its error.
func (p *Pipeline) Run(ctx context.Context, interval time.Duration) error {
	p.logger.Info("pipeline started", "interval", interval)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	if interval <= 0 {
		_, err := p.RunOnce(ctx)
		return err
	}

	ticker := p.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := p.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				p.logger.Info("pipeline stopping", "reason", ctx.Err())
				return nil
			}
			p.logger.Error("cycle failed", "error", err)
		}

		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
		}
	}
}

// RunOnce fetches METARs, resolves a configuration for every airport, and
// hands the decisions to the loader. A failing airport is logged and
// skipped; only fetch, load, and cancellation errors fail the cycle.
func (p *Pipeline) RunOnce(ctx context.Context) (CycleReport, error) {
	start := p.clock.Now()
	p.metrics.CyclesTotal.Inc()

	var report CycleReport
	airports := p.airports(&report)

	reports, err := p.fetchWithRetry(ctx, airports)
	if err != nil {
		return report, err
	}

	for _, icao := range airports {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		d, err := p.decide(ctx, icao, reports[icao])
		switch {
		case errors.Is(err, errNoMETAR):
			report.Skipped++
			continue
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return report, err
		case err != nil:
			report.Failed++
			continue
		}
		report.Decisions = append(report.Decisions, d)
	}

	if len(report.Decisions) > 0 {
		if err := p.loader.LoadBatch(ctx, report.Decisions); err != nil {
			return report, fmt.Errorf("load decisions: %w", err)
		}
		p.ready.Store(true)
	}

	report.Duration = p.clock.Since(start)
	p.metrics.CycleDuration.Observe(report.Duration.Seconds())
	p.logger.Info("cycle complete",
		"decided", len(report.Decisions),
		"failed", report.Failed,
		"skipped", report.Skipped,
		"duration", report.Duration,
	)
	return report, nil
}

var errNoMETAR = errors.New("no metar")

// decide resolves one airport, recording metrics and logging failures.
func (p *Pipeline) decide(ctx context.Context, icao, raw string) (domain.Decision, error) {
	if raw == "" {
		p.logger.Warn("no metar for airport", "icao", icao)
		p.metrics.AirportErrors.WithLabelValues("missing_metar").Inc()
		return domain.Decision{}, errNoMETAR
	}

	airport, err := p.geometry.Lookup(icao)
	if err != nil {
		p.logger.Error("airport not configured", "icao", icao, "error", err)
		p.metrics.AirportErrors.WithLabelValues("configuration").Inc()
		return domain.Decision{}, err
	}

	obs, err := domain.ParseObservation(raw)
	if err != nil {
		p.logger.Warn("metar parse failed, skipping airport", "icao", icao, "error", err)
		p.metrics.AirportErrors.WithLabelValues("parse").Inc()
		return domain.Decision{}, err
	}

	d, err := p.resolver.Resolve(ctx, airport, obs)
	if err != nil {
		if ctx.Err() != nil {
			return domain.Decision{}, ctx.Err()
		}
		kind := "selection"
		var (
			cfgErr *domain.ConfigurationError
			opErr  *domain.OperatorError
		)
		switch {
		case errors.As(err, &cfgErr):
			kind = "configuration"
		case errors.As(err, &opErr), errors.Is(err, domain.ErrOperatorUnavailable):
			kind = "operator"
		}
		p.logger.Error("runway selection failed", "icao", icao, "error", err)
		p.metrics.AirportErrors.WithLabelValues(kind).Inc()
		return domain.Decision{}, err
	}

	p.metrics.AirportsProcessed.Inc()
	p.metrics.Selections.WithLabelValues(string(d.Reason)).Inc()
	p.logger.Info("runway selected",
		"icao", icao,
		"active", d.Active,
		"mode", d.Mode,
		"reason", d.Reason,
		"wind", windSummary(obs.Wind),
	)
	return d, nil
}

// airports returns the sorted airports to process this cycle, counting
// ignored ones as skipped.
func (p *Pipeline) airports(report *CycleReport) []string {
	candidates := p.opts.Airports
	if len(candidates) == 0 {
		candidates = p.geometry.Airports()
	}
	out := make([]string, 0, len(candidates))
	for _, icao := range candidates {
		if slices.Contains(p.opts.Ignored, icao) {
			report.Skipped++
			continue
		}
		if !slices.Contains(out, icao) {
			out = append(out, icao)
		}
	}
	slices.Sort(out)
	return out
}

func (p *Pipeline) fetchWithRetry(ctx context.Context, airports []string) (map[string]string, error) {
	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for attempt := 0; ; attempt++ {
		start := p.clock.Now()
		reports, err := p.source.FetchMETARs(ctx, airports)
		p.metrics.FetchDuration.Observe(p.clock.Since(start).Seconds())
		if err == nil {
			return reports, nil
		}
		p.metrics.FetchErrors.Inc()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if attempt >= p.opts.FetchRetries {
			return nil, fmt.Errorf("fetch metars: %w", err)
		}
		p.logger.Warn("metar fetch failed, retrying", "error", err, "attempt", attempt+1, "backoff", backoff)
		if !sleepWithContext(ctx, p.clock, backoff) {
			return nil, ctx.Err()
		}
		backoff = nextBackoff(backoff, maxBackoff)
	}
}

func windSummary(w domain.WindObservation) string {
	switch {
	case w.Calm:
		return "calm"
	case w.Direction == nil:
		return fmt.Sprintf("VRB%02dKT", w.SpeedKnots)
	default:
		return fmt.Sprintf("%03d%02dKT", *w.Direction, w.SpeedKnots)
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, clock clockwork.Clock, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
