// Package tuning searches block parameters offline by running a program
// without the scheduler.
package tuning

import (
	"context"
	"errors"
	"math"
)

var ErrNoCandidates = errors.New("tuning: no candidate succeeded")

// Evaluator scores one parameter set. Lower is better.
type Evaluator func(ctx context.Context, params map[string]float64) (float64, error)

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

type Result struct {
	Params    map[string]float64
	Score     float64
	Evaluated int
	Failed    int
}

// Search evaluates every combination of the ranges and returns the best.
// Failing candidates are counted and skipped.
func (g *GridSearch) Search(ctx context.Context, eval Evaluator) (*Result, error) {
	res := &Result{Score: math.Inf(1)}
	if err := g.searchRecursive(ctx, 0, make(map[string]float64), eval, res); err != nil {
		return nil, err
	}
	if res.Params == nil {
		return res, ErrNoCandidates
	}
	return res, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	eval Evaluator,
	res *Result,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		score, err := eval(ctx, current)
		res.Evaluated++
		if err != nil {
			res.Failed++
			return nil
		}
		if score < res.Score {
			res.Score = score
			res.Params = make(map[string]float64, len(current))
			for k, v := range current {
				res.Params[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, eval, res); err != nil {
			return err
		}
	}
	return nil
}
