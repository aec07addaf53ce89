package report

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/san-kum/quadsim/internal/dynamo"
	"github.com/san-kum/quadsim/internal/optim"
	"github.com/san-kum/quadsim/internal/sim"
	"github.com/san-kum/quadsim/internal/storage"
)

func TestRunIncludesMetricsAndStatus(t *testing.T) {
	result := &dynamo.Result{
		Snapshots:  []dynamo.Snapshot{{}, {Step: 1, Time: 0.01}},
		StepsTaken: 1,
		Metrics:    map[string]float64{"stability": 1, "attitude_error": 0.25},
	}
	out := Run("abc", result, time.Millisecond)

	for _, want := range []string{"abc", "OK", "stability", "attitude_error", "0.250000"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "attitude_error") > strings.Index(out, "stability") {
		t.Error("metrics should be sorted by name")
	}
}

func TestRunShowsHalt(t *testing.T) {
	result := &dynamo.Result{Halted: true, Errors: []error{errors.New("boom")}}
	out := Run("abc", result, 0)
	if !strings.Contains(out, "HALTED") || !strings.Contains(out, "boom") {
		t.Errorf("expected halt details:\n%s", out)
	}
}

func TestEnsemble(t *testing.T) {
	summary := sim.Summary{
		Runs:   3,
		Halted: 1,
		Mean:   map[string]float64{"saturation": 0.1},
		StdDev: map[string]float64{"saturation": 0.05},
	}
	out := Ensemble(summary, time.Second)
	if !strings.Contains(out, "0.100000 ± 0.050000") {
		t.Errorf("expected mean and std:\n%s", out)
	}
}

func TestRunsEmpty(t *testing.T) {
	if !strings.Contains(Runs(nil), "no runs found") {
		t.Error("expected empty message")
	}
	out := Runs([]storage.RunMetadata{{ID: "id-1", Name: "hover", Duration: 2, Dt: 0.01}})
	if !strings.Contains(out, "id-1") || !strings.Contains(out, "hover") {
		t.Errorf("expected run row:\n%s", out)
	}
}

func TestTrialsShowsBestFirstAndLimits(t *testing.T) {
	trials := []optim.Trial{
		{Params: map[string]float64{"kp": 1, "kd": 0.8}, Score: 0.01},
		{Params: map[string]float64{"kp": 2, "kd": 0.1}, Score: math.Inf(1)},
		{Params: map[string]float64{"kp": 3, "kd": 0.1}, Err: errors.New("bad")},
	}
	out := Trials(trials, "attitude_error", 2, time.Second)
	if !strings.Contains(out, "0.010000") || !strings.Contains(out, "HALTED") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if strings.Contains(out, "bad") {
		t.Error("expected only the top 2 trials")
	}
}
