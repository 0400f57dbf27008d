// Eventlens - Event Recommendation and Evaluation Engine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventlens/eventlens

package comparison

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Regressor fits a numeric feature matrix against a target vector and
// predicts targets for unseen rows. Predict on an unfitted model returns
// zeros of the right length.
type Regressor interface {
	Fit(X [][]float64, y []float64) error
	Predict(X [][]float64) []float64
}

// MeanRegressor predicts the training-set mean regardless of features.
// It is the floor every real model must beat.
type MeanRegressor struct {
	mean   float64
	fitted bool
}

// NewMeanRegressor returns an unfitted mean baseline.
func NewMeanRegressor() *MeanRegressor { return &MeanRegressor{} }

// Fit records the target mean.
func (r *MeanRegressor) Fit(_ [][]float64, y []float64) error {
	if len(y) == 0 {
		return errors.New("cannot fit on empty target")
	}
	r.mean = stat.Mean(y, nil)
	r.fitted = true
	return nil
}

// Predict returns the training mean for every row.
func (r *MeanRegressor) Predict(x [][]float64) []float64 {
	out := make([]float64, len(x))
	if !r.fitted {
		return out
	}
	for i := range out {
		out[i] = r.mean
	}
	return out
}

// KNNRegressor predicts the mean target of the K nearest training rows
// by Euclidean distance.
type KNNRegressor struct {
	K int

	trainX [][]float64
	trainY []float64
}

// NewKNNRegressor returns a k-nearest-neighbor regressor. K below 1 is
// treated as 1.
func NewKNNRegressor(k int) *KNNRegressor {
	if k < 1 {
		k = 1
	}
	return &KNNRegressor{K: k}
}

// Fit stores the training data.
func (r *KNNRegressor) Fit(x [][]float64, y []float64) error {
	if len(x) == 0 || len(x) != len(y) {
		return fmt.Errorf("invalid training data: %d rows, %d targets", len(x), len(y))
	}
	r.trainX = x
	r.trainY = y
	return nil
}

// Predict averages the targets of the K nearest neighbors per row.
func (r *KNNRegressor) Predict(x [][]float64) []float64 {
	out := make([]float64, len(x))
	if len(r.trainX) == 0 {
		return out
	}

	k := r.K
	if k > len(r.trainX) {
		k = len(r.trainX)
	}

	type neighbor struct {
		dist   float64
		target float64
	}

	for i, row := range x {
		neighbors := make([]neighbor, len(r.trainX))
		for j, train := range r.trainX {
			var d float64
			for f := range row {
				diff := row[f] - train[f]
				d += diff * diff
			}
			neighbors[j] = neighbor{dist: d, target: r.trainY[j]}
		}
		sort.Slice(neighbors, func(a, b int) bool { return neighbors[a].dist < neighbors[b].dist })

		var sum float64
		for _, n := range neighbors[:k] {
			sum += n.target
		}
		out[i] = sum / float64(k)
	}
	return out
}

// LeastSquaresRegressor fits a linear model with an intercept via the
// regularized normal equations (XᵀX + λI)w = Xᵀy.
type LeastSquaresRegressor struct {
	// L2 is the ridge penalty; 0 gives ordinary least squares. The
	// intercept is never penalized.
	L2 float64

	weights []float64
	fitted  bool
}

// NewLeastSquaresRegressor returns a linear regressor with the given
// ridge penalty.
func NewLeastSquaresRegressor(l2 float64) *LeastSquaresRegressor {
	return &LeastSquaresRegressor{L2: l2}
}

// Fit solves for the weight vector.
func (r *LeastSquaresRegressor) Fit(x [][]float64, y []float64) error {
	if len(x) == 0 || len(x) != len(y) {
		return fmt.Errorf("invalid training data: %d rows, %d targets", len(x), len(y))
	}

	rows := len(x)
	cols := len(x[0]) + 1 // intercept column

	design := mat.NewDense(rows, cols, nil)
	for i, row := range x {
		design.Set(i, 0, 1)
		for j, v := range row {
			design.Set(i, j+1, v)
		}
	}
	target := mat.NewVecDense(rows, append([]float64(nil), y...))

	var gram mat.Dense
	gram.Mul(design.T(), design)
	for j := 1; j < cols; j++ {
		gram.Set(j, j, gram.At(j, j)+r.L2)
	}

	var rhs mat.VecDense
	rhs.MulVec(design.T(), target)

	var weights mat.VecDense
	if err := weights.SolveVec(&gram, &rhs); err != nil {
		return fmt.Errorf("solve normal equations: %w", err)
	}

	r.weights = make([]float64, cols)
	for j := 0; j < cols; j++ {
		r.weights[j] = weights.AtVec(j)
	}
	r.fitted = true
	return nil
}

// Predict applies the fitted linear model.
func (r *LeastSquaresRegressor) Predict(x [][]float64) []float64 {
	out := make([]float64, len(x))
	if !r.fitted {
		return out
	}
	for i, row := range x {
		pred := r.weights[0]
		for j, v := range row {
			if j+1 < len(r.weights) {
				pred += r.weights[j+1] * v
			}
		}
		out[i] = pred
	}
	return out
}

// regressionMetrics computes MSE, MAE and RMSE between predictions and
// ground truth. NaN-free for equal-length non-empty inputs.
func regressionMetrics(pred, y []float64) (mse, mae, rmse float64) {
	if len(pred) == 0 {
		return 0, 0, 0
	}
	var se, ae float64
	for i := range pred {
		d := pred[i] - y[i]
		se += d * d
		ae += math.Abs(d)
	}
	mse = se / float64(len(pred))
	mae = ae / float64(len(pred))
	rmse = math.Sqrt(mse)
	return mse, mae, rmse
}
