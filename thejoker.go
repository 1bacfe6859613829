// Package thejoker evaluates the marginal likelihood of Keplerian orbits given
// radial-velocity observations, and stores and summarizes batches of orbital
// parameter samples.
//
// The likelihood integrates out the linear parameters (velocity semi-amplitude
// and a polynomial velocity trend) analytically, leaving a function of the
// nonlinear parameters (P, phi0, e, omega) and an optional log jitter
// variance s.
//
// # Core Features
//
//   - Exact marginal likelihood with a weighted linear solve (gonum LU)
//   - Degenerate designs reported as NaN instead of errors
//   - Parallel batch evaluation over a shared, read-only data set
//   - A sample container with slicing, reductions and orbit reconstruction
//   - Binary sample files with Raw or Gorilla values and optional compression
//   - A BadgerDB-backed store for incremental persistence
//
// # Basic Usage
//
// Evaluating the likelihood:
//
//	data, _ := thejoker.NewData(bmjd, rv, rvErr, quantity.KmPerSec)
//	lnL, _ := thejoker.MarginalLnLikelihood([]float64{P, phi0, e, omega}, data)
//
// Storing samples:
//
//	s, _ := samples.New(
//	    samples.WithValues(samples.KeyP, quantity.New(periods, quantity.Day)),
//	    samples.WithValues(samples.KeyEcc, quantity.New(eccs, quantity.Dimensionless)),
//	)
//	var buf bytes.Buffer
//	_ = thejoker.WriteSamples(&buf, s)
//
// Reading them back:
//
//	s, _ = thejoker.ReadSamples(&buf, 0)
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the likelihood,
// samples and store packages. Use those packages directly for fine-grained
// control.
package thejoker

import (
	"context"
	"io"

	"github.com/ella918/thejoker/likelihood"
	"github.com/ella918/thejoker/quantity"
	"github.com/ella918/thejoker/rvdata"
	"github.com/ella918/thejoker/samples"
	"github.com/ella918/thejoker/store"
)

// NewData builds an observation set from barycentric MJDs (TCB), radial
// velocities and their 1-sigma uncertainties, all in unit.
//
// Use rvdata.New to pass inverse variances directly, and rvdata.WithTimeOffset
// to choose the reference epoch.
func NewData(bmjd, rv, rvErr []float64, unit quantity.Unit, opts ...rvdata.Option) (*rvdata.Data, error) {
	return rvdata.FromErrors(bmjd, rv, rvErr, unit, opts...)
}

// MarginalLnLikelihood returns the log marginal likelihood of
// p = (P, phi0, e, omega[, s]) given data.
//
// The value is NaN when the linear system is degenerate; the error is
// reserved for malformed inputs. Use likelihood.MarginalLnLikelihood for the
// full Result.
//
// Example:
//
//	lnL, err := thejoker.MarginalLnLikelihood([]float64{10, 0, 0.1, 0}, data,
//	    likelihood.WithTrendTerms(2),
//	)
func MarginalLnLikelihood(p []float64, data *rvdata.Data, opts ...likelihood.Option) (float64, error) {
	res, err := likelihood.MarginalLnLikelihood(p, data, opts...)
	if err != nil {
		return 0, err
	}

	return res.Value(), nil
}

// BatchLnLikelihood evaluates every parameter vector in parallel. It is
// likelihood.Batch.
func BatchLnLikelihood(ctx context.Context, params [][]float64, data *rvdata.Data, opts ...likelihood.Option) ([]float64, error) {
	return likelihood.Batch(ctx, params, data, opts...)
}

// WriteSamples encodes s as a single binary file. The default is Gorilla values
// with Zstd compression; see store.Option for alternatives.
func WriteSamples(w io.Writer, s *samples.Samples, opts ...store.Option) error {
	tree, err := store.NewTree(opts...)
	if err != nil {
		return err
	}
	if err := s.Persist(tree); err != nil {
		return err
	}

	return tree.Encode(w)
}

// ReadSamples decodes a file written by WriteSamples. When n > 0 only the
// first n samples are loaded.
func ReadSamples(r io.Reader, n int, opts ...samples.Option) (*samples.Samples, error) {
	tree, err := store.Decode(r)
	if err != nil {
		return nil, err
	}

	return samples.Restore(tree, n, opts...)
}
