package sim

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/san-kum/quadsim/internal/dynamo"
)

type Simulator struct {
	logger    *zap.Logger
	metrics   []dynamo.Metric
	observers []dynamo.Observer
}

// New returns a simulator. A nil logger discards log output.
func New(logger *zap.Logger) *Simulator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Simulator{
		logger:    logger,
		metrics:   make([]dynamo.Metric, 0),
		observers: make([]dynamo.Observer, 0),
	}
}

func (s *Simulator) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

// Run builds a flight from cfg and flies it for cfg.Duration.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*dynamo.Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	flight, err := NewFlight(cfg.Flight)
	if err != nil {
		return nil, err
	}
	return s.RunFlight(ctx, flight, cfg)
}

// RunFlight ticks an existing flight. A flight that halts on an invalid
// state ends the run early with Result.Halted set; that is not an error.
func (s *Simulator) RunFlight(ctx context.Context, flight *Flight, cfg Config) (*dynamo.Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	steps := cfg.Steps()
	every := cfg.RecordEvery
	if every < 1 {
		every = 1
	}
	result := &dynamo.Result{
		Snapshots: make([]dynamo.Snapshot, 0, steps/every+2),
		Times:     make([]float64, 0, steps/every+2),
		Metrics:   make(map[string]float64),
		Errors:    make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	log := s.logger.With(zap.Int64("seed", flight.Config().Seed))
	start := time.Now()

	first := flight.Snapshot()
	result.Snapshots = append(result.Snapshots, first)
	result.Times = append(result.Times, first.Time)

	var last dynamo.Snapshot
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			s.collect(result)
			return result, ctx.Err()
		default:
		}

		if err := flight.Tick(cfg.Dt); err != nil {
			if errors.Is(err, dynamo.ErrInvalidState) || errors.Is(err, dynamo.ErrDisarmed) {
				result.Halted = true
				result.Errors = append(result.Errors, err)
				log.Warn("flight halted", zap.Int("step", flight.Step()), zap.Error(err))
				break
			}
			return nil, err
		}
		result.StepsTaken++

		last = flight.Snapshot()
		for _, m := range s.metrics {
			m.Observe(last)
		}
		for _, obs := range s.observers {
			obs.OnStep(last)
		}

		if result.StepsTaken%every == 0 || i == steps-1 {
			result.Snapshots = append(result.Snapshots, last)
			result.Times = append(result.Times, last.Time)
		}
	}

	s.collect(result)
	log.Debug("run complete",
		zap.Int("steps", result.StepsTaken),
		zap.Bool("halted", result.Halted),
		zap.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}

func (s *Simulator) collect(result *dynamo.Result) {
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

// RunWithCallback ticks flight until the callback returns false, the
// flight halts or ctx is done. There is no duration limit.
func (s *Simulator) RunWithCallback(ctx context.Context, flight *Flight, dt float64, callback func(dynamo.Snapshot) bool) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := flight.Tick(dt); err != nil {
			return err
		}
		if !callback(flight.Snapshot()) {
			return nil
		}
	}
}
