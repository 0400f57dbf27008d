// Eventlens - Event Recommendation and Evaluation Engine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventlens/eventlens

package comparison

import (
	"math"
	"testing"

	"github.com/rs/zerolog"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// linearFixture builds y = 2x + 1 with a deterministic feature sweep.
func linearFixture(n int) (x [][]float64, y []float64) {
	x = make([][]float64, n)
	y = make([]float64, n)
	for i := 0; i < n; i++ {
		v := float64(i)
		x[i] = []float64{v}
		y[i] = 2*v + 1
	}
	return x, y
}

func TestMeanRegressor(t *testing.T) {
	r := NewMeanRegressor()
	if err := r.Fit([][]float64{{1}, {2}, {3}}, []float64{1, 2, 3}); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	pred := r.Predict([][]float64{{10}, {20}})
	if pred[0] != 2 || pred[1] != 2 {
		t.Errorf("predictions = %v, want all 2", pred)
	}

	if err := NewMeanRegressor().Fit(nil, nil); err == nil {
		t.Error("empty fit should error")
	}
}

func TestKNNRegressor(t *testing.T) {
	x, y := linearFixture(10)
	r := NewKNNRegressor(3)
	if err := r.Fit(x, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	// Nearest to 5.0 are rows 4, 5, 6 with targets 9, 11, 13.
	pred := r.Predict([][]float64{{5}})
	if !almostEqual(pred[0], 11, 1e-9) {
		t.Errorf("prediction = %f, want 11", pred[0])
	}

	t.Run("k clamps to training size", func(t *testing.T) {
		small := NewKNNRegressor(50)
		if err := small.Fit(x[:2], y[:2]); err != nil {
			t.Fatalf("Fit() error = %v", err)
		}
		pred := small.Predict([][]float64{{0}})
		if !almostEqual(pred[0], (y[0]+y[1])/2, 1e-9) {
			t.Errorf("prediction = %f", pred[0])
		}
	})
}

func TestLeastSquaresRegressor(t *testing.T) {
	x, y := linearFixture(20)
	r := NewLeastSquaresRegressor(0)
	if err := r.Fit(x, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	pred := r.Predict([][]float64{{100}})
	if !almostEqual(pred[0], 201, 1e-6) {
		t.Errorf("extrapolated prediction = %f, want 201", pred[0])
	}

	t.Run("ridge shrinks weights", func(t *testing.T) {
		ridge := NewLeastSquaresRegressor(1000)
		if err := ridge.Fit(x, y); err != nil {
			t.Fatalf("Fit() error = %v", err)
		}
		ols := r.Predict([][]float64{{100}})[0]
		shrunk := ridge.Predict([][]float64{{100}})[0]
		if shrunk >= ols {
			t.Errorf("ridge prediction %f should undershoot OLS %f", shrunk, ols)
		}
	})

	t.Run("unfitted predicts zeros", func(t *testing.T) {
		pred := NewLeastSquaresRegressor(0).Predict([][]float64{{1}, {2}})
		if pred[0] != 0 || pred[1] != 0 {
			t.Errorf("unfitted predictions = %v", pred)
		}
	})
}

func benchComparator() *Comparator {
	c := NewComparator(zerolog.Nop())
	c.Register("mean", func(Params) Regressor { return NewMeanRegressor() }, nil)
	c.Register("knn", func(p Params) Regressor {
		k := 3
		if v, ok := p["k"]; ok {
			k = int(v)
		}
		return NewKNNRegressor(k)
	}, []Params{{"k": 1}, {"k": 3}, {"k": 5}})
	c.Register("linear", func(p Params) Regressor {
		return NewLeastSquaresRegressor(p["l2"])
	}, []Params{{"l2": 0}, {"l2": 1}, {"l2": 10}})
	return c
}

func TestComparator_Benchmark(t *testing.T) {
	x, y := linearFixture(40)
	c := benchComparator()

	result, err := c.Benchmark(x[:30], y[:30], x[30:], y[30:])
	if err != nil {
		t.Fatalf("Benchmark() error = %v", err)
	}
	if len(result.Results) != 3 {
		t.Fatalf("got %d results, want 3", len(result.Results))
	}

	// On a perfectly linear target the linear model must win and the
	// mean baseline must come last on extrapolated test rows.
	if result.Best != "linear" {
		t.Errorf("best model = %s, want linear", result.Best)
	}
	if result.Results[0].Rank != 1 || result.Results[2].Name != "mean" {
		t.Errorf("ranking = %+v", result.Results)
	}
	for i := 1; i < len(result.Results); i++ {
		if result.Results[i-1].RMSE > result.Results[i].RMSE {
			t.Error("results not sorted ascending by RMSE")
		}
	}

	t.Run("no models registered", func(t *testing.T) {
		empty := NewComparator(zerolog.Nop())
		if _, err := empty.Benchmark(x[:30], y[:30], x[30:], y[30:]); err == nil {
			t.Error("expected error with no registered models")
		}
	})
}

func TestComparator_HyperparameterSearch(t *testing.T) {
	x, y := linearFixture(30)
	c := benchComparator()

	result, err := c.HyperparameterSearch("linear", x, y, 5)
	if err != nil {
		t.Fatalf("HyperparameterSearch() error = %v", err)
	}
	if len(result.Table) != 3 {
		t.Fatalf("got %d combinations, want 3", len(result.Table))
	}
	// With a noiseless linear target, zero regularization wins.
	if result.BestParams["l2"] != 0 {
		t.Errorf("best params = %v, want l2=0", result.BestParams)
	}
	if result.BestScore > 1e-6 {
		t.Errorf("best score = %f, want ~0", result.BestScore)
	}

	t.Run("no grid", func(t *testing.T) {
		if _, err := c.HyperparameterSearch("mean", x, y, 5); err == nil {
			t.Error("expected error for model without a grid")
		}
	})
	t.Run("unknown model", func(t *testing.T) {
		if _, err := c.HyperparameterSearch("nope", x, y, 5); err == nil {
			t.Error("expected error for unregistered model")
		}
	})
	t.Run("too few folds", func(t *testing.T) {
		if _, err := c.HyperparameterSearch("linear", x, y, 1); err == nil {
			t.Error("expected error for fold count below 2")
		}
	})
}

func TestEnsemble(t *testing.T) {
	yTest := []float64{1, 2, 3, 4}
	predictions := map[string][]float64{
		"over":  {2, 3, 4, 5},
		"under": {0, 1, 2, 3},
	}

	t.Run("average cancels symmetric bias", func(t *testing.T) {
		result, err := Ensemble(predictions, yTest, EnsembleAverage)
		if err != nil {
			t.Fatalf("Ensemble() error = %v", err)
		}
		if !almostEqual(result.RMSE, 0, 1e-12) {
			t.Errorf("ensemble RMSE = %f, want 0", result.RMSE)
		}
		if result.ImprovementOverBest <= 0 {
			t.Errorf("improvement = %f, want positive", result.ImprovementOverBest)
		}
		if !almostEqual(result.Weights["over"], 0.5, 1e-12) {
			t.Errorf("average weights = %v", result.Weights)
		}
	})

	t.Run("weighted favors the better model", func(t *testing.T) {
		preds := map[string][]float64{
			"good": {1.1, 2.1, 3.1, 4.1},
			"bad":  {3, 4, 5, 6},
		}
		result, err := Ensemble(preds, yTest, EnsembleWeighted)
		if err != nil {
			t.Fatalf("Ensemble() error = %v", err)
		}
		if result.Weights["good"] <= result.Weights["bad"] {
			t.Errorf("weights = %v, want good > bad", result.Weights)
		}
		if result.BestIndividual != "good" {
			t.Errorf("best individual = %s", result.BestIndividual)
		}
		var sum float64
		for _, w := range result.Weights {
			sum += w
		}
		if !almostEqual(sum, 1.0, 1e-9) {
			t.Errorf("weights sum to %f, want 1", sum)
		}
	})

	t.Run("errors", func(t *testing.T) {
		if _, err := Ensemble(nil, yTest, EnsembleAverage); err == nil {
			t.Error("empty predictions should error")
		}
		if _, err := Ensemble(predictions, yTest, "median"); err == nil {
			t.Error("unknown method should error")
		}
		if _, err := Ensemble(map[string][]float64{"short": {1}}, yTest, EnsembleAverage); err == nil {
			t.Error("length mismatch should error")
		}
	})
}

func TestSignificanceTest(t *testing.T) {
	n := 30
	yTest := make([]float64, n)
	good := make([]float64, n)
	bad := make([]float64, n)
	for i := 0; i < n; i++ {
		yTest[i] = float64(i)
		// Model A is consistently close, model B consistently off, with
		// slight variation so the error variance is nonzero.
		good[i] = float64(i) + 0.1 + 0.01*float64(i%3)
		bad[i] = float64(i) + 2.0 + 0.1*float64(i%5)
	}

	for _, testType := range []string{TestPairedT, TestWilcoxon} {
		t.Run(testType, func(t *testing.T) {
			result, err := SignificanceTest(good, bad, yTest, testType)
			if err != nil {
				t.Fatalf("SignificanceTest() error = %v", err)
			}
			if !result.Significant {
				t.Errorf("clearly different models not significant: p = %f", result.PValue)
			}
			if result.BetterModel != "A" {
				t.Errorf("better model = %s, want A", result.BetterModel)
			}
			if result.CohensD >= 0 {
				t.Errorf("Cohen's d = %f, want negative (A has lower error)", result.CohensD)
			}
			if result.Interpretation == "" {
				t.Error("interpretation should not be empty")
			}
		})
	}

	t.Run("identical models are not significant", func(t *testing.T) {
		result, err := SignificanceTest(good, good, yTest, TestPairedT)
		if err != nil {
			t.Fatalf("SignificanceTest() error = %v", err)
		}
		if result.Significant {
			t.Errorf("identical predictions flagged significant: p = %f", result.PValue)
		}
		if result.BetterModel != "tie" {
			t.Errorf("better model = %s, want tie", result.BetterModel)
		}
	})

	t.Run("errors", func(t *testing.T) {
		if _, err := SignificanceTest(good, bad, yTest, "anova"); err == nil {
			t.Error("unknown test type should error")
		}
		if _, err := SignificanceTest(good[:5], bad, yTest, TestPairedT); err == nil {
			t.Error("length mismatch should error")
		}
		if _, err := SignificanceTest([]float64{1}, []float64{1}, []float64{1}, TestPairedT); err == nil {
			t.Error("single observation should error")
		}
	})
}

func TestCompareCFHybridGraph(t *testing.T) {
	n := 20
	yTest := make([]float64, n)
	cf := make([]float64, n)
	hybrid := make([]float64, n)
	graph := make([]float64, n)
	for i := 0; i < n; i++ {
		yTest[i] = float64(i)
		hybrid[i] = float64(i) + 0.1 + 0.01*float64(i%2)
		cf[i] = float64(i) + 1.0 + 0.05*float64(i%3)
		graph[i] = float64(i) + 3.0 + 0.1*float64(i%4)
	}

	result, err := CompareCFHybridGraph(cf, hybrid, graph, yTest, TestPairedT)
	if err != nil {
		t.Fatalf("CompareCFHybridGraph() error = %v", err)
	}

	if result.BestModel != "hybrid" {
		t.Errorf("best model = %s, want hybrid", result.BestModel)
	}
	wantRanking := []string{"hybrid", "collaborative", "graph"}
	for i, name := range wantRanking {
		if result.Ranking[i] != name {
			t.Errorf("ranking[%d] = %s, want %s", i, result.Ranking[i], name)
		}
	}
	if len(result.Pairwise) != 3 {
		t.Errorf("got %d pairwise tests, want 3", len(result.Pairwise))
	}
	for _, pair := range result.Pairwise {
		if pair.Result == nil || pair.Result.PValue < 0 || pair.Result.PValue > 1 {
			t.Errorf("pairwise %s vs %s has invalid result", pair.ModelA, pair.ModelB)
		}
	}

	t.Run("length mismatch", func(t *testing.T) {
		if _, err := CompareCFHybridGraph(cf[:3], hybrid, graph, yTest, TestPairedT); err == nil {
			t.Error("expected error on length mismatch")
		}
	})
}
