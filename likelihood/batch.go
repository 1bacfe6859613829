package likelihood

import (
	"context"
	"fmt"

	"github.com/ella918/thejoker/rvdata"
	"golang.org/x/sync/errgroup"
)

// Batch evaluates MarginalLnLikelihood for every parameter vector against the
// same data, at most Workers at a time. Degenerate points yield NaN.
//
// The first evaluation error, or ctx cancellation, aborts the batch.
func Batch(ctx context.Context, params [][]float64, data *rvdata.Data, opts ...Option) ([]float64, error) {
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(params))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.workers)

	for i, p := range params {
		if gCtx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}

			res, err := evaluate(cfg, p, data)
			if err != nil {
				return fmt.Errorf("parameter vector %d: %w", i, err)
			}
			out[i] = res.Value()

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return out, nil
}
