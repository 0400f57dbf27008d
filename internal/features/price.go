// Eventlens - Event Recommendation and Evaluation Engine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventlens/eventlens

package features

import (
	"math"
	"sort"
)

// priceEpsilon guards ratio denominators against zero mean prices.
const priceEpsilon = 1e-6

const quintileTiers = 5

// ExtractPrice appends price-sensitivity columns: absolute price, price
// relative to the user's historical mean (ratio and difference),
// percentile rank within the event's category, discount columns when an
// original price is present, an equal-frequency quintile tier code and
// log1p(price). Samples without any price make the family a no-op.
func ExtractPrice(samples []Sample, f *Frame) error {
	if !anyField(samples, func(s *Sample) bool { return s.Price != nil }) {
		return nil
	}

	n := len(samples)
	price := make([]float64, n)
	for i := range samples {
		if samples[i].Price != nil {
			price[i] = *samples[i].Price
		}
	}
	if err := f.AddColumn("event_price", price); err != nil {
		return err
	}

	userMeans := userMeanPrices(samples)
	ratio := make([]float64, n)
	diff := make([]float64, n)
	for i := range samples {
		mean := userMeans[samples[i].UserID]
		ratio[i] = price[i] / (mean + priceEpsilon)
		diff[i] = price[i] - mean
	}
	if err := f.AddColumn("price_vs_user_avg_ratio", ratio); err != nil {
		return err
	}
	if err := f.AddColumn("price_vs_user_avg_diff", diff); err != nil {
		return err
	}

	if err := f.AddColumn("price_percentile_in_category", categoryPercentiles(samples, price)); err != nil {
		return err
	}

	if anyField(samples, func(s *Sample) bool { return s.OriginalPrice != nil }) {
		amount := make([]float64, n)
		percent := make([]float64, n)
		flag := make([]float64, n)
		for i := range samples {
			if samples[i].OriginalPrice == nil {
				continue
			}
			orig := *samples[i].OriginalPrice
			amount[i] = orig - price[i]
			if orig > 0 {
				percent[i] = (orig - price[i]) / orig * 100
			}
			if amount[i] > 0 {
				flag[i] = 1
			}
		}
		if err := f.AddColumn("discount_amount", amount); err != nil {
			return err
		}
		if err := f.AddColumn("discount_percent", percent); err != nil {
			return err
		}
		if err := f.AddColumn("is_discounted", flag); err != nil {
			return err
		}
	}

	if err := f.AddColumn("price_tier", quintileTierCodes(price)); err != nil {
		return err
	}

	logPrice := make([]float64, n)
	for i, p := range price {
		logPrice[i] = math.Log1p(p)
	}
	return f.AddColumn("price_log", logPrice)
}

// userMeanPrices computes each user's historical mean price over samples
// that carry one.
func userMeanPrices(samples []Sample) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for i := range samples {
		if samples[i].Price == nil {
			continue
		}
		sums[samples[i].UserID] += *samples[i].Price
		counts[samples[i].UserID]++
	}
	means := make(map[string]float64, len(sums))
	for user, sum := range sums {
		means[user] = sum / float64(counts[user])
	}
	return means
}

// categoryPercentiles ranks each price within its category as a
// percentile in [0, 1]. Uncategorized samples rank against each other.
func categoryPercentiles(samples []Sample, price []float64) []float64 {
	byCategory := make(map[string][]int)
	for i := range samples {
		byCategory[samples[i].Category] = append(byCategory[samples[i].Category], i)
	}

	out := make([]float64, len(samples))
	for _, idxs := range byCategory {
		if len(idxs) == 1 {
			out[idxs[0]] = 0.5
			continue
		}
		sorted := append([]int(nil), idxs...)
		sort.Slice(sorted, func(a, b int) bool { return price[sorted[a]] < price[sorted[b]] })
		for rank, idx := range sorted {
			out[idx] = float64(rank) / float64(len(sorted)-1)
		}
	}
	return out
}

// quintileTierCodes bins prices into up to five equal-frequency tiers,
// coded 0 (cheapest) upward. Duplicate quantile edges collapse, dropping
// degenerate bins, so low-cardinality price sets yield fewer tiers.
func quintileTierCodes(price []float64) []float64 {
	sorted := append([]float64(nil), price...)
	sort.Float64s(sorted)

	var edges []float64
	for q := 1; q < quintileTiers; q++ {
		edge := sorted[(len(sorted)-1)*q/quintileTiers]
		if len(edges) == 0 || edge > edges[len(edges)-1] {
			edges = append(edges, edge)
		}
	}

	out := make([]float64, len(price))
	for i, p := range price {
		tier := 0
		for _, edge := range edges {
			if p > edge {
				tier++
			}
		}
		out[i] = float64(tier)
	}
	return out
}
