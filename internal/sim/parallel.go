package sim

import (
	"context"
	"math"
	"runtime"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/quadsim/internal/dynamo"
)

// Ensemble flies the same configuration many times with consecutive seeds.
// Every run gets its own Flight and its own metric instances.
type Ensemble struct {
	logger    *zap.Logger
	numRuns   int
	seedStart int64
	metrics   func() []dynamo.Metric
}

// NewEnsemble returns an ensemble of numRuns runs seeded seedStart,
// seedStart+1, ... metrics is called once per run and may be nil.
func NewEnsemble(logger *zap.Logger, numRuns int, seedStart int64, metrics func() []dynamo.Metric) *Ensemble {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ensemble{logger: logger, numRuns: numRuns, seedStart: seedStart, metrics: metrics}
}

// Run returns one result per run, in seed order. The first run error
// cancels the rest.
func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*dynamo.Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	results := make([]*dynamo.Result, e.numRuns)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < e.numRuns; i++ {
		idx := i
		g.Go(func() error {
			runCfg := cfg
			runCfg.Flight.Seed = e.seedStart + int64(idx)

			s := New(e.logger)
			if e.metrics != nil {
				for _, m := range e.metrics() {
					s.AddMetric(m)
				}
			}
			res, err := s.Run(ctx, runCfg)
			if err != nil {
				return err
			}
			results[idx] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Summary aggregates the metrics of an ensemble.
type Summary struct {
	Runs   int
	Halted int
	Mean   map[string]float64
	StdDev map[string]float64
}

// MetricNames returns the summarized metric names, sorted.
func (s Summary) MetricNames() []string {
	names := make([]string, 0, len(s.Mean))
	for name := range s.Mean {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func Summarize(results []*dynamo.Result) Summary {
	sum := Summary{
		Runs:   len(results),
		Mean:   make(map[string]float64),
		StdDev: make(map[string]float64),
	}
	values := make(map[string][]float64)
	for _, r := range results {
		if r.Halted {
			sum.Halted++
		}
		for name, v := range r.Metrics {
			values[name] = append(values[name], v)
		}
	}
	for name, vs := range values {
		mean := 0.0
		for _, v := range vs {
			mean += v
		}
		mean /= float64(len(vs))
		variance := 0.0
		for _, v := range vs {
			variance += (v - mean) * (v - mean)
		}
		sum.Mean[name] = mean
		sum.StdDev[name] = math.Sqrt(variance / float64(len(vs)))
	}
	return sum
}
