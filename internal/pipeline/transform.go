package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/runway-selector/internal/domain"
	"github.com/couchcryptid/runway-selector/internal/observability"
)

// RunwayResolver implements Resolver: ENGM goes through the operating-mode
// resolver, every other airport through the wind selector.
type RunwayResolver struct {
	modes   *domain.ModeResolver
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewResolver creates a RunwayResolver. Pass a nil prompter to run without an
// operator; ENGM then fails whenever it needs a human choice.
func NewResolver(prompter domain.OperatorPrompter, metrics *observability.Metrics, logger *slog.Logger) *RunwayResolver {
	return &RunwayResolver{
		modes:   domain.NewModeResolver(prompter, logger),
		metrics: metrics,
		logger:  logger,
	}
}

func (r *RunwayResolver) Resolve(ctx context.Context, airport domain.AirportConfig, obs domain.Observation) (domain.Decision, error) {
	if airport.ICAO != domain.ENGM {
		result, err := domain.SelectRunway(airport, obs.Wind)
		if err != nil {
			return domain.Decision{}, err
		}
		return domain.NewDecision(result, obs.Raw), nil
	}

	res, err := r.modes.Resolve(ctx, airport, obs)
	if res.Took(domain.StateAwaitingOperatorChoice) {
		r.metrics.OperatorPrompts.Inc()
	}
	if err != nil {
		return domain.Decision{}, err
	}
	r.logger.Debug("engm configuration resolved", "path", res.Path, "mode", res.Result.Mode)
	return domain.NewDecision(res.Result, obs.Raw), nil
}

// multiLoader fans a batch out to several sinks.
type multiLoader []Loader

// Loaders combines sinks into one Loader. Every sink receives every batch; a
// failing sink does not stop the others and the errors are joined.
func Loaders(loaders ...Loader) Loader {
	return multiLoader(loaders)
}

func (m multiLoader) Name() string { return "all" }

func (m multiLoader) LoadBatch(ctx context.Context, decisions []domain.Decision) error {
	var errs []error
	for _, l := range m {
		if err := l.LoadBatch(ctx, decisions); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", l.Name(), err))
		}
	}
	return errors.Join(errs...)
}
