// Eventlens - Event Recommendation and Evaluation Engine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventlens/eventlens

package behavior

import "sort"

// Popularity prior blend: engagement volume, purchase intent and
// satisfaction, in that order of weight.
const (
	priorViewWeight    = 0.3
	priorBookingWeight = 0.5
	priorRatingWeight  = 0.2
)

// Content-similarity blend across the three matchable attributes.
const (
	similarityCategoryWeight = 0.4
	similarityLocationWeight = 0.3
	similarityPriceWeight    = 0.3
)

// EventStats carries the aggregate signals the popularity prior scores.
type EventStats struct {
	EventID   string  `json:"event_id"`
	Views     int     `json:"views"`
	Bookings  int     `json:"bookings"`
	AvgRating float64 `json:"avg_rating"`
}

// ScoredEvent is one cold-start candidate with its strategy score.
type ScoredEvent struct {
	EventID string  `json:"event_id"`
	Score   float64 `json:"score"`
}

// PopularityPrior ranks events for users with no history by blending
// max-normalized views (0.3), bookings (0.5) and average rating (0.2).
// Returns the top n, ties broken by event id.
func PopularityPrior(events []EventStats, n int) []ScoredEvent {
	if len(events) == 0 || n <= 0 {
		return nil
	}

	var maxViews, maxBookings int
	var maxRating float64
	for i := range events {
		if events[i].Views > maxViews {
			maxViews = events[i].Views
		}
		if events[i].Bookings > maxBookings {
			maxBookings = events[i].Bookings
		}
		if events[i].AvgRating > maxRating {
			maxRating = events[i].AvgRating
		}
	}

	scored := make([]ScoredEvent, 0, len(events))
	for i := range events {
		var score float64
		if maxViews > 0 {
			score += priorViewWeight * float64(events[i].Views) / float64(maxViews)
		}
		if maxBookings > 0 {
			score += priorBookingWeight * float64(events[i].Bookings) / float64(maxBookings)
		}
		if maxRating > 0 {
			score += priorRatingWeight * events[i].AvgRating / maxRating
		}
		scored = append(scored, ScoredEvent{EventID: events[i].EventID, Score: score})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].EventID < scored[j].EventID
	})
	if len(scored) > n {
		scored = scored[:n]
	}
	return scored
}

// UserPreferences captures the declared signup-time preferences a
// cold-start user brings before any interaction exists.
type UserPreferences struct {
	Categories []string `json:"categories"`
	City       string   `json:"city"`
	PriceMin   float64  `json:"price_min"`
	PriceMax   float64  `json:"price_max"`
}

// EventProfile is the content view of an event for similarity matching.
type EventProfile struct {
	EventID  string  `json:"event_id"`
	Category string  `json:"category"`
	City     string  `json:"city"`
	Price    float64 `json:"price"`
}

// ContentSimilarity ranks events for a cold-start user by matching
// declared preferences: category (0.4), city (0.3) and price range
// (0.3). Returns the top n, ties broken by event id.
func ContentSimilarity(prefs UserPreferences, events []EventProfile, n int) []ScoredEvent {
	if len(events) == 0 || n <= 0 {
		return nil
	}

	categories := make(map[string]struct{}, len(prefs.Categories))
	for _, c := range prefs.Categories {
		categories[c] = struct{}{}
	}

	scored := make([]ScoredEvent, 0, len(events))
	for i := range events {
		var score float64
		if _, ok := categories[events[i].Category]; ok {
			score += similarityCategoryWeight
		}
		if prefs.City != "" && events[i].City == prefs.City {
			score += similarityLocationWeight
		}
		if prefs.PriceMax > 0 && events[i].Price >= prefs.PriceMin && events[i].Price <= prefs.PriceMax {
			score += similarityPriceWeight
		}
		scored = append(scored, ScoredEvent{EventID: events[i].EventID, Score: score})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].EventID < scored[j].EventID
	})
	if len(scored) > n {
		scored = scored[:n]
	}
	return scored
}

// StrategyEvaluation reports how a cold-start strategy's picks matched
// the interactions a user actually went on to have.
type StrategyEvaluation struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Hits      int     `json:"hits"`
}

// EvaluateColdStartStrategy scores recommended events against actual
// later interactions. All rates are 0 on empty inputs.
func EvaluateColdStartStrategy(recommended []ScoredEvent, actual []string) StrategyEvaluation {
	if len(recommended) == 0 || len(actual) == 0 {
		return StrategyEvaluation{}
	}

	actualSet := make(map[string]struct{}, len(actual))
	for _, id := range actual {
		actualSet[id] = struct{}{}
	}

	hits := 0
	for _, rec := range recommended {
		if _, ok := actualSet[rec.EventID]; ok {
			hits++
		}
	}

	eval := StrategyEvaluation{
		Hits:      hits,
		Precision: float64(hits) / float64(len(recommended)),
		Recall:    float64(hits) / float64(len(actualSet)),
	}
	if eval.Precision+eval.Recall > 0 {
		eval.F1 = 2 * eval.Precision * eval.Recall / (eval.Precision + eval.Recall)
	}
	return eval
}
