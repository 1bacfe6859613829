package likelihood

import (
	"errors"
	"fmt"
	"math"

	"github.com/ella918/thejoker/errs"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Solution is the weighted least-squares fit of the linear parameters.
type Solution struct {
	// Precision is A·C⁻¹·Aᵀ, the inverse covariance of the linear parameters.
	Precision *mat.SymDense
	// Coefficients are the best-fit linear parameters.
	Coefficients *mat.VecDense
	// Chi2 is Σ ivar·(Aᵀc − y)².
	Chi2 float64
	// LogDet and Sign are log|det(Precision)| and the determinant's sign.
	LogDet float64
	Sign   float64
}

// Solve fits y ≈ Aᵀc with weights ivar using a direct LU solve of the normal
// equations. A has one row per linear parameter and one column per observation.
//
// Returns errs.ErrSingularMatrix when the precision matrix has a zero pivot.
// Ill-conditioned but non-singular systems are solved without complaint.
func Solve(a mat.Matrix, ivar, y []float64) (Solution, error) {
	rows, cols := a.Dims()
	if rows == 0 || cols == 0 {
		return Solution{}, fmt.Errorf("%w: empty design matrix", errs.ErrInvalidData)
	}
	if len(ivar) != cols || len(y) != cols {
		return Solution{}, fmt.Errorf("%w: design has %d columns, ivar %d, y %d",
			errs.ErrInvalidData, cols, len(ivar), len(y))
	}

	// aw = A·diag(ivar)
	aw := mat.DenseCopyOf(a)
	for i := range rows {
		for j := range cols {
			aw.Set(i, j, aw.At(i, j)*ivar[j])
		}
	}

	var prod mat.Dense
	prod.Mul(aw, a.T())
	precision := mat.NewSymDense(rows, nil)
	for i := range rows {
		for j := i; j < rows; j++ {
			precision.SetSym(i, j, prod.At(i, j))
		}
	}

	rhs := mat.NewVecDense(rows, nil)
	rhs.MulVec(aw, mat.NewVecDense(cols, y))

	var lu mat.LU
	lu.Factorize(precision)
	logDet, sign := lu.LogDet()
	if math.IsInf(logDet, -1) || math.IsNaN(logDet) {
		return Solution{}, fmt.Errorf("%w: precision matrix has a zero pivot", errs.ErrSingularMatrix)
	}

	coeffs := mat.NewVecDense(rows, nil)
	if err := lu.SolveVecTo(coeffs, false, rhs); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return Solution{}, fmt.Errorf("solve normal equations: %w", err)
		}
	}

	model := mat.NewVecDense(cols, nil)
	model.MulVec(a.T(), coeffs)
	resid := make([]float64, cols)
	for j := range cols {
		d := model.AtVec(j) - y[j]
		resid[j] = d * d * ivar[j]
	}

	return Solution{
		Precision:    precision,
		Coefficients: coeffs,
		Chi2:         floats.Sum(resid),
		LogDet:       logDet,
		Sign:         sign,
	}, nil
}
