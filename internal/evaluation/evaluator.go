// Eventlens - Event Recommendation and Evaluation Engine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventlens/eventlens

package evaluation

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"
)

// RankingMetrics bundles the four ranked-retrieval metrics at one cutoff,
// averaged across users.
type RankingMetrics struct {
	NDCG      float64 `json:"ndcg"`
	MAP       float64 `json:"map"`
	Recall    float64 `json:"recall"`
	Precision float64 `json:"precision"`
}

// Report is a timestamped snapshot of a comprehensive evaluation run.
type Report struct {
	ID             string                 `json:"id"`
	Timestamp      time.Time              `json:"timestamp"`
	Ranking        map[int]RankingMetrics `json:"ranking_metrics"`
	Diversity      float64                `json:"diversity"`
	Novelty        float64                `json:"novelty"`
	PopularityBias float64                `json:"popularity_bias"`
	EvaluatedUsers int                    `json:"evaluated_users"`
}

// ComprehensiveInput carries everything a full evaluation run consumes.
type ComprehensiveInput struct {
	// Recommendations maps user to their ranked recommendation list.
	Recommendations map[string][]string

	// Relevant maps user to the ground-truth relevance set.
	Relevant map[string][]string

	// Cutoffs are the K values to evaluate ranking metrics at.
	Cutoffs []int

	// ItemFeatures maps item to its feature set, for diversity.
	ItemFeatures map[string][]string

	// Popularity maps item to its interaction count.
	Popularity map[string]int

	// TotalInteractions is the popularity normalizer.
	TotalInteractions int
}

// Evaluator runs comprehensive evaluations and retains an append-only
// in-memory history of reports for the process lifetime. Safe for
// concurrent use.
type Evaluator struct {
	mu      sync.RWMutex
	history []Report

	now   func() time.Time
	newID func() string
}

// NewEvaluator creates an evaluator with an empty history.
func NewEvaluator() *Evaluator {
	return &Evaluator{
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}
}

// Comprehensive evaluates ranking metrics at every requested cutoff plus
// diversity, novelty and popularity bias over the union of recommended
// items, appends the report to history and returns it.
func (e *Evaluator) Comprehensive(in ComprehensiveInput) Report {
	report := Report{
		ID:             e.newID(),
		Timestamp:      e.now(),
		Ranking:        make(map[int]RankingMetrics, len(in.Cutoffs)),
		EvaluatedUsers: len(in.Recommendations),
	}

	for _, k := range in.Cutoffs {
		report.Ranking[k] = meanRankingMetrics(in.Recommendations, in.Relevant, k)
	}

	var allItems []string
	seen := make(map[string]struct{})
	for _, recs := range in.Recommendations {
		for _, id := range recs {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			allItems = append(allItems, id)
		}
	}

	report.Diversity = DiversityScore(allItems, in.ItemFeatures)
	report.Novelty = NoveltyScore(allItems, in.Popularity, in.TotalInteractions)
	report.PopularityBias = PopularityBias(allItems, in.Popularity)

	e.mu.Lock()
	e.history = append(e.history, report)
	e.mu.Unlock()

	return report
}

// History returns a copy of all reports, oldest first.
func (e *Evaluator) History() []Report {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]Report(nil), e.history...)
}

func meanRankingMetrics(recommendations, relevant map[string][]string, k int) RankingMetrics {
	if len(recommendations) == 0 {
		return RankingMetrics{}
	}

	var ndcg, mapk, recall, precision []float64
	for user, recs := range recommendations {
		rel := relevant[user]
		ndcg = append(ndcg, NDCGAtK(recs, rel, k))
		mapk = append(mapk, MAPAtK(recs, rel, k))
		recall = append(recall, RecallAtK(recs, rel, k))
		precision = append(precision, PrecisionAtK(recs, rel, k))
	}

	return RankingMetrics{
		NDCG:      stat.Mean(ndcg, nil),
		MAP:       stat.Mean(mapk, nil),
		Recall:    stat.Mean(recall, nil),
		Precision: stat.Mean(precision, nil),
	}
}
