package training

import (
	"context"
	"math"

	"github.com/pkg/errors"
)

// ElasticNet is a linear regression with combined L1 and L2 penalties. It
// minimises
//
//	1/(2n) ||y - Xw - b||² + alpha*l1_ratio*||w||₁ + alpha*(1-l1_ratio)/2*||w||²
//
// by cyclic coordinate descent on centred data.
type ElasticNet struct {
	Alpha   float64
	L1Ratio float64
	MaxIter int
	Tol     float64

	Coef      []float64
	Intercept float64
	// NIter is the number of passes run by the last Fit.
	NIter int
	// Converged is false when Fit stopped at MaxIter.
	Converged bool
}

var ErrNoSamples = errors.New("no samples to fit")

// Fit estimates Coef and Intercept. Every row of x must have the same length.
func (m *ElasticNet) Fit(ctx context.Context, x [][]float64, y []float64) error {
	n := len(x)
	if n == 0 {
		return ErrNoSamples
	}

	if len(y) != n {
		return errors.Errorf("x has %d rows but y has %d values", n, len(y))
	}

	p := len(x[0])

	xMean := make([]float64, p)
	yMean := 0.0

	for i, row := range x {
		if len(row) != p {
			return errors.Errorf("row %d has %d features, expected %d", i, len(row), p)
		}

		for j, v := range row {
			xMean[j] += v
		}

		yMean += y[i]
	}

	for j := range xMean {
		xMean[j] /= float64(n)
	}

	yMean /= float64(n)

	// Column-major centred copy: coordinate descent walks one feature at a time.
	cols := make([][]float64, p)
	sqNorm := make([]float64, p)

	for j := range cols {
		cols[j] = make([]float64, n)
		for i := range x {
			v := x[i][j] - xMean[j]
			cols[j][i] = v
			sqNorm[j] += v * v
		}

		sqNorm[j] /= float64(n)
	}

	residual := make([]float64, n)
	for i := range y {
		residual[i] = y[i] - yMean
	}

	coef := make([]float64, p)
	l1 := m.Alpha * m.L1Ratio
	l2 := m.Alpha * (1 - m.L1Ratio)

	m.Converged = false
	m.NIter = 0

	for iter := 0; iter < m.MaxIter; iter++ {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, "elastic net fit")
		}

		m.NIter = iter + 1
		maxDelta, maxCoef := 0.0, 0.0

		for j := range coef {
			if sqNorm[j] == 0 {
				continue
			}

			old := coef[j]

			rho := 0.0
			for i, v := range cols[j] {
				rho += v * (residual[i] + v*old)
			}

			rho /= float64(n)

			coef[j] = softThreshold(rho, l1) / (sqNorm[j] + l2)

			if delta := coef[j] - old; delta != 0 {
				for i, v := range cols[j] {
					residual[i] -= v * delta
				}

				maxDelta = math.Max(maxDelta, math.Abs(delta))
			}

			maxCoef = math.Max(maxCoef, math.Abs(coef[j]))
		}

		if maxCoef == 0 || maxDelta/maxCoef < m.Tol {
			m.Converged = true

			break
		}
	}

	intercept := yMean
	for j, w := range coef {
		intercept -= xMean[j] * w
	}

	m.Coef = coef
	m.Intercept = intercept

	return nil
}

// Predict returns Xw + b for every row of x.
func (m *ElasticNet) Predict(x [][]float64) []float64 {
	out := make([]float64, len(x))

	for i, row := range x {
		sum := m.Intercept
		for j, v := range row {
			sum += m.Coef[j] * v
		}

		out[i] = sum
	}

	return out
}

func softThreshold(v, lambda float64) float64 {
	switch {
	case v > lambda:
		return v - lambda
	case v < -lambda:
		return v + lambda
	default:
		return 0
	}
}
