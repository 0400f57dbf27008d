// Eventlens - Event Recommendation and Evaluation Engine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventlens/eventlens

package behavior

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat"
)

const kmeansMaxIterations = 100

// UserIntentCluster describes one discovered intent cluster.
type UserIntentCluster struct {
	ID       int       `json:"id"`
	Size     int       `json:"size"`
	Centroid []float64 `json:"centroid"`

	// FeatureMeans are the per-feature means in the original
	// (unstandardized) scale.
	FeatureMeans []float64 `json:"feature_means"`
}

// ClusterResult reports a full intent clustering run.
type ClusterResult struct {
	Clusters    []UserIntentCluster `json:"clusters"`
	Assignments map[string]int      `json:"assignments"`
	Iterations  int                 `json:"iterations"`
}

// ClusterUserIntents groups users by behavioral features with k-means.
// Features are standardized per column before clustering and the run is
// deterministic for a given seed. Fails when there are fewer users than
// clusters or inconsistent feature widths.
func ClusterUserIntents(features map[string][]float64, k int, seed int64) (*ClusterResult, error) {
	if k < 1 {
		return nil, fmt.Errorf("cluster count must be positive, got %d", k)
	}
	if len(features) < k {
		return nil, fmt.Errorf("cannot form %d clusters from %d users", k, len(features))
	}

	users := make([]string, 0, len(features))
	for user := range features {
		users = append(users, user)
	}
	sort.Strings(users)

	dims := len(features[users[0]])
	if dims == 0 {
		return nil, fmt.Errorf("user %s has no features", users[0])
	}
	raw := make([][]float64, len(users))
	for i, user := range users {
		if len(features[user]) != dims {
			return nil, fmt.Errorf("user %s has %d features, expected %d", user, len(features[user]), dims)
		}
		raw[i] = features[user]
	}

	standardized, means, stds := standardize(raw)

	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic clustering
	centroids := make([][]float64, k)
	for i, idx := range rng.Perm(len(standardized))[:k] {
		centroids[i] = append([]float64(nil), standardized[idx]...)
	}

	assignments := make([]int, len(standardized))
	iterations := 0
	for ; iterations < kmeansMaxIterations; iterations++ {
		changed := false
		for i, row := range standardized {
			best := nearestCentroid(row, centroids)
			if best != assignments[i] {
				assignments[i] = best
				changed = true
			}
		}
		if iterations > 0 && !changed {
			break
		}

		// Recompute centroids; empty clusters keep their position.
		sums := make([][]float64, k)
		counts := make([]int, k)
		for c := range sums {
			sums[c] = make([]float64, dims)
		}
		for i, row := range standardized {
			c := assignments[i]
			counts[c]++
			for d, v := range row {
				sums[c][d] += v
			}
		}
		for c := range centroids {
			if counts[c] == 0 {
				continue
			}
			for d := range centroids[c] {
				centroids[c][d] = sums[c][d] / float64(counts[c])
			}
		}
	}

	result := &ClusterResult{
		Assignments: make(map[string]int, len(users)),
		Iterations:  iterations,
	}
	for i, user := range users {
		result.Assignments[user] = assignments[i]
	}

	for c := 0; c < k; c++ {
		cluster := UserIntentCluster{
			ID:           c,
			Centroid:     centroids[c],
			FeatureMeans: make([]float64, dims),
		}
		for i := range standardized {
			if assignments[i] != c {
				continue
			}
			cluster.Size++
			for d, v := range raw[i] {
				cluster.FeatureMeans[d] += v
			}
		}
		if cluster.Size > 0 {
			for d := range cluster.FeatureMeans {
				cluster.FeatureMeans[d] /= float64(cluster.Size)
			}
		} else {
			// Report empty-cluster centroids in the original scale.
			for d := range cluster.FeatureMeans {
				cluster.FeatureMeans[d] = centroids[c][d]*stds[d] + means[d]
			}
		}
		result.Clusters = append(result.Clusters, cluster)
	}
	return result, nil
}

// standardize z-scores each column; zero-variance columns pass through
// centered only.
func standardize(rows [][]float64) (out [][]float64, means, stds []float64) {
	dims := len(rows[0])
	means = make([]float64, dims)
	stds = make([]float64, dims)

	col := make([]float64, len(rows))
	for d := 0; d < dims; d++ {
		for i := range rows {
			col[i] = rows[i][d]
		}
		means[d] = stat.Mean(col, nil)
		if len(rows) > 1 {
			stds[d] = stat.StdDev(col, nil)
		}
		if stds[d] == 0 {
			stds[d] = 1
		}
	}

	out = make([][]float64, len(rows))
	for i, row := range rows {
		out[i] = make([]float64, dims)
		for d, v := range row {
			out[i][d] = (v - means[d]) / stds[d]
		}
	}
	return out, means, stds
}

func nearestCentroid(row []float64, centroids [][]float64) int {
	best, bestDist := 0, math.Inf(1)
	for c, centroid := range centroids {
		var d float64
		for i, v := range row {
			diff := v - centroid[i]
			d += diff * diff
		}
		if d < bestDist {
			bestDist = d
			best = c
		}
	}
	return best
}
