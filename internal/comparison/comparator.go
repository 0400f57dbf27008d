// Eventlens - Event Recommendation and Evaluation Engine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventlens/eventlens

package comparison

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"
)

// ensembleEpsilon keeps inverse-RMSE weights finite for perfect models.
const ensembleEpsilon = 1e-10

// Params is one hyperparameter assignment.
type Params map[string]float64

// Factory builds a regressor from a hyperparameter assignment.
type Factory func(p Params) Regressor

type registration struct {
	factory Factory
	grid    []Params
}

// Comparator benchmarks and tunes registered models. Safe for
// concurrent use.
type Comparator struct {
	logger zerolog.Logger

	mu     sync.RWMutex
	models map[string]registration
}

// NewComparator creates an empty comparator.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewComparator(logger zerolog.Logger) *Comparator {
	return &Comparator{
		logger: logger.With().Str("component", "comparison").Logger(),
		models: make(map[string]registration),
	}
}

// Register adds a named model factory with an optional parameter grid
// for hyperparameter search. Re-registering a name replaces it.
func (c *Comparator) Register(name string, factory Factory, grid []Params) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.models[name] = registration{factory: factory, grid: grid}
	c.logger.Info().Str("model", name).Int("grid_size", len(grid)).Msg("registered model")
}

// ModelBenchmark is one model's timed benchmark outcome.
type ModelBenchmark struct {
	Name            string        `json:"name"`
	TrainDuration   time.Duration `json:"train_duration"`
	PredictDuration time.Duration `json:"predict_duration"`
	MSE             float64       `json:"mse"`
	MAE             float64       `json:"mae"`
	RMSE            float64       `json:"rmse"`
	Rank            int           `json:"rank"`
	Error           string        `json:"error,omitempty"`
}

// BenchmarkResult ranks all registered models ascending by RMSE.
type BenchmarkResult struct {
	Results []ModelBenchmark `json:"results"`
	Best    string           `json:"best_model"`
}

// Benchmark fits and times every registered model with its default
// (empty) parameters, then ranks them by RMSE. Models that fail to fit
// are reported with their error and ranked last.
func (c *Comparator) Benchmark(trainX [][]float64, trainY []float64, testX [][]float64, testY []float64) (*BenchmarkResult, error) {
	c.mu.RLock()
	names := make([]string, 0, len(c.models))
	for name := range c.models {
		names = append(names, name)
	}
	regs := make(map[string]registration, len(c.models))
	for name, reg := range c.models {
		regs[name] = reg
	}
	c.mu.RUnlock()

	if len(names) == 0 {
		return nil, errors.New("no models registered")
	}
	sort.Strings(names)

	result := &BenchmarkResult{}
	for _, name := range names {
		bench := ModelBenchmark{Name: name}
		model := regs[name].factory(nil)

		start := time.Now()
		if err := model.Fit(trainX, trainY); err != nil {
			bench.Error = err.Error()
			bench.RMSE = math.Inf(1)
			result.Results = append(result.Results, bench)
			c.logger.Warn().Str("model", name).Err(err).Msg("benchmark fit failed")
			continue
		}
		bench.TrainDuration = time.Since(start)

		start = time.Now()
		pred := model.Predict(testX)
		bench.PredictDuration = time.Since(start)

		bench.MSE, bench.MAE, bench.RMSE = regressionMetrics(pred, testY)
		result.Results = append(result.Results, bench)
	}

	sort.SliceStable(result.Results, func(i, j int) bool {
		return result.Results[i].RMSE < result.Results[j].RMSE
	})
	for i := range result.Results {
		result.Results[i].Rank = i + 1
	}
	result.Best = result.Results[0].Name

	return result, nil
}

// ComboScore is the cross-validated outcome of one grid point.
type ComboScore struct {
	Params    Params  `json:"params"`
	MeanRMSE  float64 `json:"mean_rmse"`
	StdRMSE   float64 `json:"std_rmse"`
}

// SearchResult reports a full grid search.
type SearchResult struct {
	Model      string       `json:"model"`
	BestParams Params       `json:"best_params"`
	BestScore  float64      `json:"best_score"`
	Table      []ComboScore `json:"table"`
}

// HyperparameterSearch runs k-fold cross-validated grid search for the
// named model. It fails with an explicit error when the model has no
// registered grid.
func (c *Comparator) HyperparameterSearch(name string, x [][]float64, y []float64, folds int) (*SearchResult, error) {
	c.mu.RLock()
	reg, ok := c.models[name]
	c.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("model %s is not registered", name)
	}
	if len(reg.grid) == 0 {
		return nil, fmt.Errorf("no parameter grid registered for model %s", name)
	}
	if folds < 2 {
		return nil, fmt.Errorf("need at least 2 folds, got %d", folds)
	}
	if len(x) < folds {
		return nil, fmt.Errorf("%d rows cannot be split into %d folds", len(x), folds)
	}

	result := &SearchResult{Model: name, BestScore: math.Inf(1)}
	for _, params := range reg.grid {
		scores := make([]float64, 0, folds)
		for fold := 0; fold < folds; fold++ {
			trainX, trainY, testX, testY := foldSplit(x, y, folds, fold)

			model := reg.factory(params)
			if err := model.Fit(trainX, trainY); err != nil {
				return nil, fmt.Errorf("fit %s with %v: %w", name, params, err)
			}
			_, _, rmse := regressionMetrics(model.Predict(testX), testY)
			scores = append(scores, rmse)
		}

		combo := ComboScore{
			Params:   params,
			MeanRMSE: stat.Mean(scores, nil),
		}
		if len(scores) > 1 {
			combo.StdRMSE = stat.StdDev(scores, nil)
		}
		result.Table = append(result.Table, combo)

		if combo.MeanRMSE < result.BestScore {
			result.BestScore = combo.MeanRMSE
			result.BestParams = params
		}
	}

	c.logger.Info().
		Str("model", name).
		Float64("best_score", result.BestScore).
		Int("combinations", len(result.Table)).
		Msg("hyperparameter search complete")
	return result, nil
}

// foldSplit carves contiguous fold number `fold` out of n rows as the
// test set. Deterministic by construction.
func foldSplit(x [][]float64, y []float64, folds, fold int) (trainX [][]float64, trainY []float64, testX [][]float64, testY []float64) {
	n := len(x)
	lo := n * fold / folds
	hi := n * (fold + 1) / folds

	for i := 0; i < n; i++ {
		if i >= lo && i < hi {
			testX = append(testX, x[i])
			testY = append(testY, y[i])
		} else {
			trainX = append(trainX, x[i])
			trainY = append(trainY, y[i])
		}
	}
	return trainX, trainY, testX, testY
}

// Ensemble methods.
const (
	EnsembleAverage  = "average"
	EnsembleWeighted = "weighted"
)

// EnsembleResult reports combined-prediction quality.
type EnsembleResult struct {
	Method              string             `json:"method"`
	Weights             map[string]float64 `json:"weights"`
	MSE                 float64            `json:"mse"`
	MAE                 float64            `json:"mae"`
	RMSE                float64            `json:"rmse"`
	BestIndividual      string             `json:"best_individual"`
	BestIndividualRMSE  float64            `json:"best_individual_rmse"`
	ImprovementOverBest float64            `json:"improvement_over_best"`
}

// Ensemble combines several models' prediction vectors. "average" takes
// the unweighted mean; "weighted" weights each model by inverse RMSE,
// normalized to sum to 1. The result reports improvement over the single
// best individual model's RMSE (positive means the ensemble is better).
func Ensemble(predictions map[string][]float64, yTest []float64, method string) (*EnsembleResult, error) {
	if len(predictions) == 0 {
		return nil, errors.New("no predictions to ensemble")
	}
	for name, pred := range predictions {
		if len(pred) != len(yTest) {
			return nil, fmt.Errorf("model %s predicted %d values for %d targets", name, len(pred), len(yTest))
		}
	}

	names := make([]string, 0, len(predictions))
	for name := range predictions {
		names = append(names, name)
	}
	sort.Strings(names)

	rmses := make(map[string]float64, len(names))
	bestName, bestRMSE := "", math.Inf(1)
	for _, name := range names {
		_, _, rmse := regressionMetrics(predictions[name], yTest)
		rmses[name] = rmse
		if rmse < bestRMSE {
			bestRMSE = rmse
			bestName = name
		}
	}

	weights := make(map[string]float64, len(names))
	switch method {
	case EnsembleAverage:
		for _, name := range names {
			weights[name] = 1.0 / float64(len(names))
		}
	case EnsembleWeighted:
		var total float64
		for _, name := range names {
			w := 1.0 / (rmses[name] + ensembleEpsilon)
			weights[name] = w
			total += w
		}
		for _, name := range names {
			weights[name] /= total
		}
	default:
		return nil, fmt.Errorf("unknown ensemble method %q", method)
	}

	combined := make([]float64, len(yTest))
	for _, name := range names {
		w := weights[name]
		for i, v := range predictions[name] {
			combined[i] += w * v
		}
	}

	result := &EnsembleResult{
		Method:             method,
		Weights:            weights,
		BestIndividual:     bestName,
		BestIndividualRMSE: bestRMSE,
	}
	result.MSE, result.MAE, result.RMSE = regressionMetrics(combined, yTest)
	if bestRMSE > 0 {
		result.ImprovementOverBest = (bestRMSE - result.RMSE) / bestRMSE
	}
	return result, nil
}
