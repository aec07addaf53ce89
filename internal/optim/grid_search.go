// Package optim searches controller parameters by brute force.
package optim

import (
	"context"
	"fmt"
	"math"
	"sort"
)

// Objective scores one parameter set; lower is better.
type Objective func(ctx context.Context, params map[string]float64) (float64, error)

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("optim: %d params but %d ranges", len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("optim: empty range for %s", params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Trial is one evaluated grid point.
type Trial struct {
	Params map[string]float64
	Score  float64
	Err    error
}

// Search evaluates every grid point and returns the trials sorted best
// first. Points whose objective fails or is NaN sort last; only a
// cancelled context aborts the search.
func (g *GridSearch) Search(ctx context.Context, objective Objective) ([]Trial, error) {
	trials := make([]Trial, 0)
	if err := g.searchRecursive(ctx, 0, make(map[string]float64), objective, &trials); err != nil {
		return nil, err
	}

	sort.SliceStable(trials, func(i, j int) bool {
		return rank(trials[i]) < rank(trials[j])
	})
	return trials, nil
}

func rank(t Trial) float64 {
	if t.Err != nil || math.IsNaN(t.Score) {
		return math.Inf(1)
	}
	return t.Score
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	objective Objective,
	trials *[]Trial,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		score, err := objective(ctx, current)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		*trials = append(*trials, Trial{Params: current, Score: score, Err: err})
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, objective, trials); err != nil {
			return err
		}
	}
	return nil
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + step*float64(i)
	}
	return out
}
