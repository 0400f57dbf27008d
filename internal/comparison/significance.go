// Eventlens - Event Recommendation and Evaluation Engine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventlens/eventlens

package comparison

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Significance test types.
const (
	TestPairedT  = "paired_ttest"
	TestWilcoxon = "wilcoxon"
)

const significanceAlpha = 0.05

// SignificanceResult reports a paired comparison of two models' absolute
// prediction errors.
type SignificanceResult struct {
	TestType       string  `json:"test_type"`
	Statistic      float64 `json:"statistic"`
	PValue         float64 `json:"p_value"`
	Significant    bool    `json:"significant"`
	CohensD        float64 `json:"cohens_d"`
	MeanErrorA     float64 `json:"mean_error_a"`
	MeanErrorB     float64 `json:"mean_error_b"`
	BetterModel    string  `json:"better_model"`
	Interpretation string  `json:"interpretation"`
}

// SignificanceTest compares two models' per-item absolute errors with a
// paired test. Supported test types are paired_ttest and wilcoxon (the
// signed-rank test with normal approximation). Significance is judged at
// p < 0.05; Cohen's d on the pooled error standard deviation gives the
// effect size.
func SignificanceTest(predA, predB, yTest []float64, testType string) (*SignificanceResult, error) {
	if len(yTest) < 2 {
		return nil, errors.New("need at least 2 observations for a paired test")
	}
	if len(predA) != len(yTest) || len(predB) != len(yTest) {
		return nil, fmt.Errorf("prediction lengths %d/%d do not match %d targets",
			len(predA), len(predB), len(yTest))
	}

	n := len(yTest)
	errA := make([]float64, n)
	errB := make([]float64, n)
	diff := make([]float64, n)
	for i := range yTest {
		errA[i] = math.Abs(predA[i] - yTest[i])
		errB[i] = math.Abs(predB[i] - yTest[i])
		diff[i] = errA[i] - errB[i]
	}

	result := &SignificanceResult{
		TestType:   testType,
		MeanErrorA: stat.Mean(errA, nil),
		MeanErrorB: stat.Mean(errB, nil),
	}

	switch testType {
	case TestPairedT:
		statistic, p, err := pairedTTest(diff)
		if err != nil {
			return nil, err
		}
		result.Statistic, result.PValue = statistic, p
	case TestWilcoxon:
		statistic, p, err := wilcoxonSignedRank(diff)
		if err != nil {
			return nil, err
		}
		result.Statistic, result.PValue = statistic, p
	default:
		return nil, fmt.Errorf("unknown test type %q", testType)
	}

	result.Significant = result.PValue < significanceAlpha
	result.CohensD = cohensD(errA, errB)

	if result.MeanErrorA < result.MeanErrorB {
		result.BetterModel = "A"
	} else if result.MeanErrorB < result.MeanErrorA {
		result.BetterModel = "B"
	} else {
		result.BetterModel = "tie"
	}

	result.Interpretation = interpret(result)
	return result, nil
}

func pairedTTest(diff []float64) (statistic, p float64, err error) {
	n := len(diff)
	mean := stat.Mean(diff, nil)
	sd := stat.StdDev(diff, nil)
	if sd == 0 {
		// Identical error profiles: no evidence of a difference.
		return 0, 1, nil
	}

	statistic = mean / (sd / math.Sqrt(float64(n)))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 1)}
	p = 2 * (1 - dist.CDF(math.Abs(statistic)))
	return statistic, p, nil
}

func wilcoxonSignedRank(diff []float64) (statistic, p float64, err error) {
	type rankedDiff struct {
		abs  float64
		sign int
	}

	var nonzero []rankedDiff
	for _, d := range diff {
		if d == 0 {
			continue
		}
		sign := 1
		if d < 0 {
			sign = -1
		}
		nonzero = append(nonzero, rankedDiff{abs: math.Abs(d), sign: sign})
	}
	if len(nonzero) == 0 {
		return 0, 1, nil
	}

	sort.Slice(nonzero, func(i, j int) bool { return nonzero[i].abs < nonzero[j].abs })

	// Average ranks over ties.
	n := len(nonzero)
	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j < n && nonzero[j].abs == nonzero[i].abs {
			j++
		}
		avgRank := float64(i+j+1) / 2.0
		for k := i; k < j; k++ {
			ranks[k] = avgRank
		}
		i = j
	}

	var wPlus, wMinus float64
	for i, rd := range nonzero {
		if rd.sign > 0 {
			wPlus += ranks[i]
		} else {
			wMinus += ranks[i]
		}
	}
	statistic = math.Min(wPlus, wMinus)

	// Normal approximation of the null distribution.
	fn := float64(n)
	mu := fn * (fn + 1) / 4
	sigma := math.Sqrt(fn * (fn + 1) * (2*fn + 1) / 24)
	if sigma == 0 {
		return statistic, 1, nil
	}
	z := (statistic - mu) / sigma
	p = 2 * distuv.UnitNormal.CDF(-math.Abs(z))
	return statistic, p, nil
}

// cohensD is the standardized mean error difference over the pooled
// standard deviation of both error samples.
func cohensD(errA, errB []float64) float64 {
	sdA := stat.StdDev(errA, nil)
	sdB := stat.StdDev(errB, nil)
	pooled := math.Sqrt((sdA*sdA + sdB*sdB) / 2)
	if pooled == 0 {
		return 0
	}
	return (stat.Mean(errA, nil) - stat.Mean(errB, nil)) / pooled
}

func interpret(r *SignificanceResult) string {
	magnitude := "negligible"
	switch d := math.Abs(r.CohensD); {
	case d >= 0.8:
		magnitude = "large"
	case d >= 0.5:
		magnitude = "medium"
	case d >= 0.2:
		magnitude = "small"
	}

	if !r.Significant {
		return fmt.Sprintf("no significant difference between models (p=%.4f, %s effect)", r.PValue, magnitude)
	}
	if r.BetterModel == "tie" {
		return fmt.Sprintf("significant but directionless difference (p=%.4f)", r.PValue)
	}
	return fmt.Sprintf("model %s has significantly lower error (p=%.4f, %s effect)",
		r.BetterModel, r.PValue, magnitude)
}

// PairwiseComparison is one cell of the cross-model comparison matrix.
type PairwiseComparison struct {
	ModelA string              `json:"model_a"`
	ModelB string              `json:"model_b"`
	Result *SignificanceResult `json:"result"`
}

// CrossComparisonResult reports the three-way model comparison.
type CrossComparisonResult struct {
	RMSE      map[string]float64   `json:"rmse"`
	Ranking   []string             `json:"ranking"`
	Pairwise  []PairwiseComparison `json:"pairwise"`
	BestModel string               `json:"best_model"`
}

// CompareCFHybridGraph runs pairwise significance tests across the three
// named prediction sources, ranks them by RMSE and names the best.
func CompareCFHybridGraph(cf, hybrid, graph, yTest []float64, testType string) (*CrossComparisonResult, error) {
	sources := map[string][]float64{
		"collaborative": cf,
		"hybrid":        hybrid,
		"graph":         graph,
	}

	result := &CrossComparisonResult{RMSE: make(map[string]float64, len(sources))}

	names := []string{"collaborative", "hybrid", "graph"}
	for _, name := range names {
		pred := sources[name]
		if len(pred) != len(yTest) {
			return nil, fmt.Errorf("%s predicted %d values for %d targets", name, len(pred), len(yTest))
		}
		_, _, rmse := regressionMetrics(pred, yTest)
		result.RMSE[name] = rmse
	}

	result.Ranking = append([]string(nil), names...)
	sort.SliceStable(result.Ranking, func(i, j int) bool {
		return result.RMSE[result.Ranking[i]] < result.RMSE[result.Ranking[j]]
	})
	result.BestModel = result.Ranking[0]

	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			sig, err := SignificanceTest(sources[names[i]], sources[names[j]], yTest, testType)
			if err != nil {
				return nil, fmt.Errorf("compare %s vs %s: %w", names[i], names[j], err)
			}
			result.Pairwise = append(result.Pairwise, PairwiseComparison{
				ModelA: names[i],
				ModelB: names[j],
				Result: sig,
			})
		}
	}
	return result, nil
}
