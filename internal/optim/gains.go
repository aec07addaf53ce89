package optim

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/san-kum/quadsim/internal/metrics"
	"github.com/san-kum/quadsim/internal/sim"
)

// GainObjective flies cfg with the candidate "kp" and "kd" and returns
// the named metric. A halted flight scores +Inf.
func GainObjective(cfg sim.Config, metric string, logger *zap.Logger) Objective {
	spec := cfg.Flight.Spec
	return func(ctx context.Context, params map[string]float64) (float64, error) {
		run := cfg
		run.Flight.ProportionalScale = params["kp"]
		run.Flight.DerivativeScale = params["kd"]

		s := sim.New(logger)
		for _, m := range metrics.Standard(run.Flight.Target, spec.Mass, spec.Gravity) {
			s.AddMetric(m)
		}
		result, err := s.Run(ctx, run)
		if err != nil {
			return 0, err
		}
		if result.Halted {
			return math.Inf(1), nil
		}
		v, ok := result.Metrics[metric]
		if !ok {
			return 0, fmt.Errorf("optim: unknown metric %q", metric)
		}
		return v, nil
	}
}

// TuneGains grid-searches kp and kd against metric and returns all trials,
// best first.
func TuneGains(ctx context.Context, cfg sim.Config, kps, kds []float64, metric string, logger *zap.Logger) ([]Trial, error) {
	g, err := NewGridSearch([]string{"kp", "kd"}, [][]float64{kps, kds})
	if err != nil {
		return nil, err
	}
	return g.Search(ctx, GainObjective(cfg, metric, logger))
}

// DefaultTuneMetric is the metric TuneGains minimizes unless told otherwise.
const DefaultTuneMetric = "attitude_error"
