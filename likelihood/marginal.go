// Package likelihood computes the marginal likelihood of nonlinear orbital
// parameters with the linear parameters (velocity semi-amplitude and
// polynomial trend) integrated out analytically.
package likelihood

import (
	"errors"
	"fmt"
	"math"

	"github.com/ella918/thejoker/errs"
	"github.com/ella918/thejoker/rvdata"
	"gonum.org/v1/gonum/floats"
)

// Result is the outcome of a marginal likelihood evaluation.
//
// A Degenerate result carries no likelihood; Value reports it as NaN.
type Result struct {
	LnLike     float64
	LogDet     float64
	Sign       float64
	Chi2       float64
	Degenerate bool
}

// Value returns the log marginal likelihood, or NaN for degenerate results.
func (r Result) Value() float64 {
	if r.Degenerate {
		return math.NaN()
	}

	return r.LnLike
}

func degenerate(sign float64) Result {
	return Result{LnLike: math.NaN(), LogDet: math.NaN(), Chi2: math.NaN(), Sign: sign, Degenerate: true}
}

// MarginalLnLikelihood evaluates the log marginal likelihood of
// p = (P, phi0, ecc, omega[, s]) given data. A length-4 vector means no jitter.
//
// When the precision matrix is singular or its determinant is not positive
// the result is Degenerate and the error is nil. Unlike Solve, which returns
// errs.ErrSingularMatrix for an exactly singular system, the evaluator does
// not surface that error: a rank-deficient design yields a NaN Value.
// Malformed inputs and non-physical orbital elements return an error.
func MarginalLnLikelihood(p []float64, data *rvdata.Data, opts ...Option) (Result, error) {
	cfg, err := NewConfig(opts...)
	if err != nil {
		return Result{}, err
	}

	return evaluate(cfg, p, data)
}

func evaluate(cfg *Config, p []float64, data *rvdata.Data) (Result, error) {
	if len(p) != 4 && len(p) != 5 {
		return Result{}, fmt.Errorf("%w: expected 4 or 5 values, got %d", errs.ErrInvalidParameters, len(p))
	}

	a, err := designMatrix(cfg, p, data)
	if err != nil {
		return Result{}, err
	}

	s := math.Inf(-1)
	if len(p) == 5 {
		s = p[4]
	}
	ivar, err := data.IVar(s)
	if err != nil {
		return Result{}, err
	}

	sol, err := Solve(a, ivar, data.RV())
	if errors.Is(err, errs.ErrSingularMatrix) {
		cfg.Logger().Debug("singular precision matrix", "period", p[0], "ecc", p[2])
		return degenerate(0), nil
	}
	if err != nil {
		return Result{}, err
	}

	if sol.Sign != 1 {
		cfg.Logger().Debug("logdet sign < 0", "period", p[0], "ecc", p[2], "sign", sol.Sign)
		return degenerate(sol.Sign), nil
	}

	norm := make([]float64, len(ivar))
	for i, iv := range ivar {
		norm[i] = math.Log(iv / (2 * math.Pi))
	}
	logDet := sol.LogDet + floats.Sum(norm)

	return Result{
		LnLike: 0.5*logDet - 0.5*sol.Chi2,
		LogDet: logDet,
		Sign:   sol.Sign,
		Chi2:   sol.Chi2,
	}, nil
}
