package samples

import (
	"github.com/ella918/thejoker/errs"
	"github.com/ella918/thejoker/quantity"
	"gonum.org/v1/gonum/stat"
)

// Mean returns a scalar container holding the mean of every key.
func (s *Samples) Mean() (*Samples, error) {
	return s.reduce(func(x []float64) float64 {
		return stat.Mean(x, nil)
	})
}

// Median returns the same result as Mean: each key is reduced to its mean,
// not its median. It is kept for compatibility. Use stat.Quantile on
// Get(key).Values() for a true median.
func (s *Samples) Median() (*Samples, error) {
	return s.Mean()
}

// Std returns a scalar container holding the population standard deviation
// of every key.
func (s *Samples) Std() (*Samples, error) {
	return s.reduce(func(x []float64) float64 {
		_, std := stat.PopMeanStdDev(x, nil)
		return std
	})
}

func (s *Samples) reduce(fn func([]float64) float64) (*Samples, error) {
	if s.shape == nil {
		return nil, errs.ErrNoSamplesStored
	}

	return s.derive(func(q quantity.Quantity) (quantity.Quantity, error) {
		return quantity.Scalar(fn(q.Values()), q.Unit()), nil
	})
}
