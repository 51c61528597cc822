package training

import "math"

// Metrics are the regression scores computed on the test set.
type Metrics struct {
	RMSE float64 `json:"rmse"`
	MAE  float64 `json:"mae"`
	R2   float64 `json:"r2"`
}

func Evaluate(yTrue, yPred []float64) Metrics {
	return Metrics{
		RMSE: RMSE(yTrue, yPred),
		MAE:  MAE(yTrue, yPred),
		R2:   R2(yTrue, yPred),
	}
}

func MSE(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return 0
	}

	s := 0.0
	for i := range yTrue {
		d := yPred[i] - yTrue[i]
		s += d * d
	}

	return s / float64(len(yTrue))
}

func RMSE(yTrue, yPred []float64) float64 { return math.Sqrt(MSE(yTrue, yPred)) }

func MAE(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return 0
	}

	s := 0.0
	for i := range yTrue {
		s += math.Abs(yPred[i] - yTrue[i])
	}

	return s / float64(len(yTrue))
}

// R2 is the coefficient of determination. A constant target scores 0.
func R2(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return 0
	}

	mean := 0.0
	for _, v := range yTrue {
		mean += v
	}

	mean /= float64(len(yTrue))

	ssTot, ssRes := 0.0, 0.0

	for i := range yTrue {
		d := yTrue[i] - mean
		ssTot += d * d
		r := yTrue[i] - yPred[i]
		ssRes += r * r
	}

	if ssTot == 0 {
		return 0
	}

	return 1 - ssRes/ssTot
}
