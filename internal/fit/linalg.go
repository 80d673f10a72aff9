package fit

import (
	"gonum.org/v1/gonum/mat"
)

func dense(rows [][]float64) *mat.Dense {
	n := len(rows[0])
	data := make([]float64, 0, len(rows)*n)
	for _, row := range rows {
		data = append(data, row...)
	}

	return mat.NewDense(len(rows), n, data)
}

// leastSquares solves rows·x ≈ rhs through a QR factorisation. It fails on an empty,
// underdetermined or rank deficient system.
func leastSquares(rows [][]float64, rhs []float64) ([]float64, bool) {
	if len(rows) == 0 || len(rows) < len(rows[0]) {
		return nil, false
	}

	var qr mat.QR
	qr.Factorize(dense(rows))

	var x mat.Dense
	err := qr.SolveTo(&x, false, mat.NewDense(len(rhs), 1, rhs))
	if err != nil {
		return nil, false
	}

	return mat.Col(nil, 0, &x), true
}

// solve returns x with a·x = b for a square system. It fails when a is singular.
func solve(a [][]float64, b []float64) ([]float64, bool) {
	if len(b) == 0 || len(a) != len(b) {
		return nil, false
	}

	var x mat.VecDense
	err := x.SolveVec(dense(a), mat.NewVecDense(len(b), b))
	if err != nil {
		return nil, false
	}

	return mat.Col(nil, 0, &x), true
}
