// Eventlens - Event Recommendation and Evaluation Engine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventlens/eventlens

package features

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// trainFraction fixes the train/test split for every run within a study,
// so ablated runs differ from the baseline only in their columns.
const trainFraction = 0.8

// Regressor fits a numeric feature matrix against a target and predicts
// targets for unseen rows.
type Regressor interface {
	Fit(X [][]float64, y []float64) error
	Predict(X [][]float64) []float64
}

// AblationRun reports one model fit within a study.
type AblationRun struct {
	Name           string   `json:"name"`
	DroppedColumns []string `json:"dropped_columns,omitempty"`
	MSE            float64  `json:"mse"`
	MAE            float64  `json:"mae"`
	RMSE           float64  `json:"rmse"`

	// Importance is the relative MSE degradation versus the baseline.
	// Only set for ablated runs.
	Importance float64 `json:"importance_score"`
}

// AblationResult is a full study: the baseline fit plus one run per
// feature group, ranked by importance descending.
type AblationResult struct {
	Baseline AblationRun   `json:"baseline"`
	Runs     []AblationRun `json:"runs"`
}

// AblationStudy fits a baseline on every frame column, then refits once
// per named group with that group's columns dropped, and ranks groups by
// how much their removal degrades test MSE. The split is deterministic
// for a given seed.
func AblationStudy(
	frame *Frame,
	target []float64,
	groups map[string][]string,
	newModel func() Regressor,
	seed int64,
) (*AblationResult, error) {
	if frame == nil || len(frame.Columns()) == 0 {
		return nil, errors.New("ablation study needs a frame with at least one column")
	}
	if len(target) != frame.Len() {
		return nil, fmt.Errorf("target has %d values, frame has %d rows", len(target), frame.Len())
	}
	if len(groups) == 0 {
		return nil, errors.New("ablation study needs at least one feature group")
	}

	trainIdx, testIdx := splitIndexes(frame.Len(), seed)
	if len(trainIdx) == 0 || len(testIdx) == 0 {
		return nil, fmt.Errorf("%d rows is too few for a train/test split", frame.Len())
	}

	baseline, err := fitAndScore(frame, target, trainIdx, testIdx, newModel)
	if err != nil {
		return nil, fmt.Errorf("baseline fit: %w", err)
	}
	baseline.Name = "baseline"

	result := &AblationResult{Baseline: baseline}
	for name, columns := range groups {
		ablated := frame.Drop(columns...)
		if len(ablated.Columns()) == 0 {
			return nil, fmt.Errorf("group %s drops every column", name)
		}

		run, err := fitAndScore(ablated, target, trainIdx, testIdx, newModel)
		if err != nil {
			return nil, fmt.Errorf("ablation %s: %w", name, err)
		}
		run.Name = name
		run.DroppedColumns = append([]string(nil), columns...)
		if baseline.MSE > 0 {
			run.Importance = (run.MSE - baseline.MSE) / baseline.MSE
		}
		result.Runs = append(result.Runs, run)
	}

	sort.Slice(result.Runs, func(i, j int) bool {
		if result.Runs[i].Importance != result.Runs[j].Importance {
			return result.Runs[i].Importance > result.Runs[j].Importance
		}
		return result.Runs[i].Name < result.Runs[j].Name
	})
	return result, nil
}

// FeatureSetComparison reports metrics per candidate feature set and the
// set with the lowest RMSE.
type FeatureSetComparison struct {
	Results map[string]AblationRun `json:"results"`
	Best    string                 `json:"best_feature_set"`
}

// CompareFeatureSets fits the same model on several candidate frames
// against one target and identifies the best-performing set. All sets
// share the same deterministic split.
func CompareFeatureSets(
	sets map[string]*Frame,
	target []float64,
	newModel func() Regressor,
	seed int64,
) (*FeatureSetComparison, error) {
	if len(sets) == 0 {
		return nil, errors.New("no feature sets to compare")
	}

	out := &FeatureSetComparison{Results: make(map[string]AblationRun, len(sets))}
	bestRMSE := math.Inf(1)

	names := make([]string, 0, len(sets))
	for name := range sets {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		frame := sets[name]
		if frame.Len() != len(target) {
			return nil, fmt.Errorf("set %s has %d rows, target has %d", name, frame.Len(), len(target))
		}

		trainIdx, testIdx := splitIndexes(frame.Len(), seed)
		if len(trainIdx) == 0 || len(testIdx) == 0 {
			return nil, fmt.Errorf("set %s: too few rows for a split", name)
		}

		run, err := fitAndScore(frame, target, trainIdx, testIdx, newModel)
		if err != nil {
			return nil, fmt.Errorf("set %s: %w", name, err)
		}
		run.Name = name
		out.Results[name] = run

		if run.RMSE < bestRMSE {
			bestRMSE = run.RMSE
			out.Best = name
		}
	}
	return out, nil
}

func splitIndexes(n int, seed int64) (train, test []int) {
	perm := rand.New(rand.NewSource(seed)).Perm(n) //nolint:gosec // deterministic study split
	cut := int(float64(n) * trainFraction)
	return perm[:cut], perm[cut:]
}

func fitAndScore(frame *Frame, target []float64, trainIdx, testIdx []int, newModel func() Regressor) (AblationRun, error) {
	matrix := frame.Matrix()

	trainX, trainY := subset(matrix, target, trainIdx)
	testX, testY := subset(matrix, target, testIdx)

	model := newModel()
	if err := model.Fit(trainX, trainY); err != nil {
		return AblationRun{}, err
	}

	pred := model.Predict(testX)
	if len(pred) != len(testY) {
		return AblationRun{}, fmt.Errorf("model predicted %d values for %d rows", len(pred), len(testY))
	}

	var se, ae float64
	for i := range pred {
		d := pred[i] - testY[i]
		se += d * d
		ae += math.Abs(d)
	}
	mse := se / float64(len(pred))
	return AblationRun{
		MSE:  mse,
		MAE:  ae / float64(len(pred)),
		RMSE: math.Sqrt(mse),
	}, nil
}

func subset(matrix [][]float64, target []float64, idx []int) ([][]float64, []float64) {
	x := make([][]float64, len(idx))
	y := make([]float64, len(idx))
	for i, row := range idx {
		x[i] = matrix[row]
		y[i] = target[row]
	}
	return x, y
}
