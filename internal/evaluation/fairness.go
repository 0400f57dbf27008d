// Eventlens - Event Recommendation and Evaluation Engine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventlens/eventlens

package evaluation

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Fairness thresholds. Groups are considered fairly treated when the gap
// between best and worst group mean stays under the disparity threshold;
// provider exposure is fair while the Gini coefficient stays under its
// threshold.
const (
	demographicDisparityThreshold = 0.1
	providerGiniThreshold         = 0.4
)

// GroupStats summarizes a ranking metric across one user group.
type GroupStats struct {
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Median float64 `json:"median"`
	Count  int     `json:"count"`
}

// DemographicParityResult reports per-group metric statistics and the
// disparity between the best- and worst-served groups.
type DemographicParityResult struct {
	Groups                 map[string]GroupStats `json:"groups"`
	MaxDisparity           float64               `json:"max_disparity"`
	CoefficientOfVariation float64               `json:"coefficient_of_variation"`
	IsFair                 bool                  `json:"is_fair"`
}

// DemographicParity evaluates a ranking metric per user group and
// reports the spread of group means. Users without a group assignment
// are ignored; groups with no users produce no entry.
func DemographicParity(
	recommendations map[string][]string,
	relevant map[string][]string,
	userGroups map[string]string,
	k int,
	metric RankingMetric,
) DemographicParityResult {
	scoresByGroup := make(map[string][]float64)
	for user, recs := range recommendations {
		group, ok := userGroups[user]
		if !ok {
			continue
		}
		score := metric(recs, relevant[user], k)
		scoresByGroup[group] = append(scoresByGroup[group], score)
	}

	result := DemographicParityResult{Groups: make(map[string]GroupStats, len(scoresByGroup))}
	var means []float64
	for group, scores := range scoresByGroup {
		sorted := append([]float64(nil), scores...)
		sort.Float64s(sorted)

		gs := GroupStats{
			Mean:   stat.Mean(sorted, nil),
			Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
			Count:  len(sorted),
		}
		if len(sorted) > 1 {
			gs.Std = stat.StdDev(sorted, nil)
		}
		result.Groups[group] = gs
		means = append(means, gs.Mean)
	}

	if len(means) == 0 {
		result.IsFair = true
		return result
	}

	minMean, maxMean := means[0], means[0]
	for _, m := range means[1:] {
		if m < minMean {
			minMean = m
		}
		if m > maxMean {
			maxMean = m
		}
	}
	result.MaxDisparity = maxMean - minMean
	result.IsFair = result.MaxDisparity < demographicDisparityThreshold

	if grand := stat.Mean(means, nil); grand != 0 && len(means) > 1 {
		result.CoefficientOfVariation = stat.StdDev(means, nil) / grand
	}
	return result
}

// ProviderStats describes one provider's share of recommendations versus
// its share of the catalog.
type ProviderStats struct {
	ExposureRate      float64 `json:"exposure_rate"`
	CatalogShare      float64 `json:"catalog_share"`
	ExposureVsCatalog float64 `json:"exposure_vs_catalog"`
}

// ProviderParityResult reports exposure equity across content providers.
type ProviderParityResult struct {
	Providers map[string]ProviderStats `json:"providers"`
	Gini      float64                  `json:"gini_coefficient"`
	IsFair    bool                     `json:"is_fair"`
}

// ProviderParity measures how recommendation exposure is distributed
// across providers relative to their catalog share. The Gini coefficient
// is computed over exposure rates of every provider in the catalog, so
// providers with zero exposure drag equity down.
func ProviderParity(
	recommended []string,
	itemProvider map[string]string,
	catalogCounts map[string]int,
) ProviderParityResult {
	result := ProviderParityResult{Providers: make(map[string]ProviderStats, len(catalogCounts))}

	totalCatalog := 0
	for _, n := range catalogCounts {
		totalCatalog += n
	}
	if totalCatalog == 0 || len(catalogCounts) == 0 {
		result.IsFair = true
		return result
	}

	// Items without a provider mapping stay in the denominator: the
	// exposure rate is the provider's share of the full recommendation
	// list, not of the mapped subset.
	exposureCounts := make(map[string]int)
	for _, id := range recommended {
		if provider, ok := itemProvider[id]; ok {
			exposureCounts[provider]++
		}
	}

	exposureRates := make([]float64, 0, len(catalogCounts))
	for provider, catalogSize := range catalogCounts {
		stats := ProviderStats{
			CatalogShare: float64(catalogSize) / float64(totalCatalog),
		}
		if len(recommended) > 0 {
			stats.ExposureRate = float64(exposureCounts[provider]) / float64(len(recommended))
		}
		if stats.CatalogShare > 0 {
			stats.ExposureVsCatalog = stats.ExposureRate / stats.CatalogShare
		}
		result.Providers[provider] = stats
		exposureRates = append(exposureRates, stats.ExposureRate)
	}

	result.Gini = GiniCoefficient(exposureRates)
	result.IsFair = result.Gini < providerGiniThreshold
	return result
}

// GiniCoefficient computes the standard Gini inequality measure over the
// given values: (2·Σ(i+1)·v_i)/(n·Σv) − (n+1)/n on ascending-sorted
// values. Returns 0 for fewer than two values or a zero sum.
func GiniCoefficient(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	var sum, weighted float64
	for i, v := range sorted {
		sum += v
		weighted += float64(i+1) * v
	}
	if sum == 0 {
		return 0
	}
	return (2*weighted)/(float64(n)*sum) - float64(n+1)/float64(n)
}
