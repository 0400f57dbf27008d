// Eventlens - Event Recommendation and Evaluation Engine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventlens/eventlens

package behavior

import (
	"math"
	"testing"
	"time"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestSummarizeClicks(t *testing.T) {
	t.Run("empty log", func(t *testing.T) {
		summary := SummarizeClicks(nil)
		if summary.TotalClicks != 0 || summary.UniqueUsers != 0 {
			t.Errorf("empty summary = %+v", summary)
		}
	})

	at := func(hour int) time.Time {
		return time.Date(2026, 8, 1, hour, 0, 0, 0, time.UTC)
	}
	records := []ClickRecord{
		{UserID: "u1", EventID: "e1", Timestamp: at(9)},
		{UserID: "u1", EventID: "e2", Timestamp: at(9)},
		{UserID: "u2", EventID: "e1", Timestamp: at(20)},
		{UserID: "u3", EventID: "e1", Timestamp: at(20)},
	}

	summary := SummarizeClicks(records)
	if summary.TotalClicks != 4 {
		t.Errorf("total = %d, want 4", summary.TotalClicks)
	}
	if summary.UniqueUsers != 3 || summary.UniqueEvents != 2 {
		t.Errorf("unique users/events = %d/%d, want 3/2", summary.UniqueUsers, summary.UniqueEvents)
	}
	if !almostEqual(summary.AvgClicksPerUser, 4.0/3.0, 1e-12) {
		t.Errorf("avg per user = %f", summary.AvgClicksPerUser)
	}
	if !almostEqual(summary.AvgClicksPerEvent, 2.0, 1e-12) {
		t.Errorf("avg per event = %f", summary.AvgClicksPerEvent)
	}
	if summary.HourlyDistribution[9] != 2 || summary.HourlyDistribution[20] != 2 {
		t.Errorf("hourly = %v", summary.HourlyDistribution)
	}
}

func TestSummarizeBookings(t *testing.T) {
	records := []BookingRecord{
		{UserID: "u1", EventID: "e1", Status: BookingStatusConfirmed, Amount: 50},
		{UserID: "u2", EventID: "e1", Status: BookingStatusConfirmed, Amount: 50},
		{UserID: "u3", EventID: "e2", Status: BookingStatusConfirmed, Amount: 30},
		{UserID: "u4", EventID: "e2", Status: "cancelled", Amount: 30},
	}

	summary := SummarizeBookings(records, 1)
	if summary.TotalBookings != 4 || summary.ConfirmedBookings != 3 {
		t.Errorf("counts = %d/%d, want 4/3", summary.TotalBookings, summary.ConfirmedBookings)
	}
	if !almostEqual(summary.Revenue, 130, 1e-12) {
		t.Errorf("revenue = %f, want 130 (cancelled excluded)", summary.Revenue)
	}
	if !almostEqual(summary.ConversionRate, 0.75, 1e-12) {
		t.Errorf("conversion rate = %f, want 0.75", summary.ConversionRate)
	}
	if len(summary.TopEvents) != 1 || summary.TopEvents[0].EventID != "e1" {
		t.Errorf("top events = %v, want [e1]", summary.TopEvents)
	}
}

func TestClusterUserIntents(t *testing.T) {
	// Two well-separated behavioral groups: heavy bookers and browsers.
	features := map[string][]float64{
		"b1": {10, 0.9}, "b2": {11, 0.85}, "b3": {9, 0.95},
		"v1": {1, 0.05}, "v2": {2, 0.1}, "v3": {1, 0.08},
	}

	result, err := ClusterUserIntents(features, 2, 42)
	if err != nil {
		t.Fatalf("ClusterUserIntents() error = %v", err)
	}
	if len(result.Clusters) != 2 {
		t.Fatalf("got %d clusters, want 2", len(result.Clusters))
	}

	// The two groups must land in different clusters, each internally
	// consistent.
	if result.Assignments["b1"] != result.Assignments["b2"] ||
		result.Assignments["b1"] != result.Assignments["b3"] {
		t.Errorf("bookers split across clusters: %v", result.Assignments)
	}
	if result.Assignments["v1"] != result.Assignments["v2"] ||
		result.Assignments["v1"] != result.Assignments["v3"] {
		t.Errorf("browsers split across clusters: %v", result.Assignments)
	}
	if result.Assignments["b1"] == result.Assignments["v1"] {
		t.Error("bookers and browsers should separate")
	}

	bookerCluster := result.Clusters[result.Assignments["b1"]]
	browserCluster := result.Clusters[result.Assignments["v1"]]
	if bookerCluster.Size != 3 || browserCluster.Size != 3 {
		t.Errorf("cluster sizes = %d/%d, want 3/3", bookerCluster.Size, browserCluster.Size)
	}
	if bookerCluster.FeatureMeans[0] <= browserCluster.FeatureMeans[0] {
		t.Errorf("booker mean %f should exceed browser mean %f",
			bookerCluster.FeatureMeans[0], browserCluster.FeatureMeans[0])
	}

	t.Run("deterministic for a seed", func(t *testing.T) {
		again, err := ClusterUserIntents(features, 2, 42)
		if err != nil {
			t.Fatalf("ClusterUserIntents() error = %v", err)
		}
		for user, cluster := range result.Assignments {
			if again.Assignments[user] != cluster {
				t.Errorf("assignment for %s changed across runs", user)
			}
		}
	})

	t.Run("fewer users than clusters", func(t *testing.T) {
		if _, err := ClusterUserIntents(map[string][]float64{"u1": {1}}, 2, 1); err == nil {
			t.Error("expected error for k > user count")
		}
	})

	t.Run("inconsistent feature widths", func(t *testing.T) {
		bad := map[string][]float64{"u1": {1, 2}, "u2": {1}}
		if _, err := ClusterUserIntents(bad, 1, 1); err == nil {
			t.Error("expected error for ragged features")
		}
	})
}

func TestPopularityPrior(t *testing.T) {
	events := []EventStats{
		{EventID: "balanced", Views: 100, Bookings: 50, AvgRating: 4.0},
		{EventID: "viewed", Views: 100, Bookings: 0, AvgRating: 0},
		{EventID: "booked", Views: 0, Bookings: 50, AvgRating: 0},
		{EventID: "rated", Views: 0, Bookings: 0, AvgRating: 4.0},
	}

	ranked := PopularityPrior(events, 4)
	if len(ranked) != 4 {
		t.Fatalf("got %d events, want 4", len(ranked))
	}
	if ranked[0].EventID != "balanced" {
		t.Errorf("top event = %s, want balanced", ranked[0].EventID)
	}
	if !almostEqual(ranked[0].Score, 1.0, 1e-12) {
		t.Errorf("balanced score = %f, want 1.0 (all maxima)", ranked[0].Score)
	}

	// Bookings outweigh views outweigh ratings.
	byID := make(map[string]float64, len(ranked))
	for _, se := range ranked {
		byID[se.EventID] = se.Score
	}
	if !almostEqual(byID["booked"], 0.5, 1e-12) ||
		!almostEqual(byID["viewed"], 0.3, 1e-12) ||
		!almostEqual(byID["rated"], 0.2, 1e-12) {
		t.Errorf("scores = %v, want weights 0.5/0.3/0.2", byID)
	}

	if got := PopularityPrior(events, 2); len(got) != 2 {
		t.Errorf("top-2 returned %d events", len(got))
	}
	if got := PopularityPrior(nil, 5); got != nil {
		t.Errorf("empty input returned %v", got)
	}
}

func TestContentSimilarity(t *testing.T) {
	prefs := UserPreferences{
		Categories: []string{"music"},
		City:       "berlin",
		PriceMin:   10,
		PriceMax:   50,
	}
	events := []EventProfile{
		{EventID: "perfect", Category: "music", City: "berlin", Price: 30},
		{EventID: "category_only", Category: "music", City: "hamburg", Price: 200},
		{EventID: "city_only", Category: "sports", City: "berlin", Price: 500},
		{EventID: "nothing", Category: "theatre", City: "munich", Price: 500},
	}

	ranked := ContentSimilarity(prefs, events, 4)
	if ranked[0].EventID != "perfect" || !almostEqual(ranked[0].Score, 1.0, 1e-12) {
		t.Errorf("top = %+v, want perfect with score 1.0", ranked[0])
	}

	byID := make(map[string]float64, len(ranked))
	for _, se := range ranked {
		byID[se.EventID] = se.Score
	}
	if !almostEqual(byID["category_only"], 0.4, 1e-12) {
		t.Errorf("category-only score = %f, want 0.4", byID["category_only"])
	}
	if !almostEqual(byID["city_only"], 0.3, 1e-12) {
		t.Errorf("city-only score = %f, want 0.3", byID["city_only"])
	}
	if !almostEqual(byID["nothing"], 0.0, 1e-12) {
		t.Errorf("no-match score = %f, want 0", byID["nothing"])
	}
}

func TestEvaluateColdStartStrategy(t *testing.T) {
	recommended := []ScoredEvent{
		{EventID: "a"}, {EventID: "b"}, {EventID: "c"}, {EventID: "d"},
	}
	actual := []string{"a", "c", "x"}

	eval := EvaluateColdStartStrategy(recommended, actual)
	if eval.Hits != 2 {
		t.Errorf("hits = %d, want 2", eval.Hits)
	}
	if !almostEqual(eval.Precision, 0.5, 1e-12) {
		t.Errorf("precision = %f, want 0.5", eval.Precision)
	}
	if !almostEqual(eval.Recall, 2.0/3.0, 1e-12) {
		t.Errorf("recall = %f, want 2/3", eval.Recall)
	}
	wantF1 := 2 * 0.5 * (2.0 / 3.0) / (0.5 + 2.0/3.0)
	if !almostEqual(eval.F1, wantF1, 1e-12) {
		t.Errorf("f1 = %f, want %f", eval.F1, wantF1)
	}

	if got := EvaluateColdStartStrategy(nil, actual); got != (StrategyEvaluation{}) {
		t.Errorf("empty recommendations = %+v, want zeros", got)
	}
	if got := EvaluateColdStartStrategy(recommended, nil); got != (StrategyEvaluation{}) {
		t.Errorf("empty actuals = %+v, want zeros", got)
	}
}
