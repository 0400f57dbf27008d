// Eventlens - Event Recommendation and Evaluation Engine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventlens/eventlens

package recommend

import (
	"errors"
	"math"
	"testing"
)

// antiCorrelatedRatings is a 2×2 scenario with opposite tastes: u1 loves
// e1 and dislikes e2, u2 the other way around.
func antiCorrelatedRatings() []Rating {
	return []Rating{
		{UserID: "u1", EventID: "e1", Rating: 5.0},
		{UserID: "u1", EventID: "e2", Rating: 1.0},
		{UserID: "u2", EventID: "e1", Rating: 1.0},
		{UserID: "u2", EventID: "e2", Rating: 5.0},
	}
}

func trainedModel(t *testing.T, ratings []Rating, nFactors int) *Model {
	t.Helper()
	m := NewModel()
	if err := m.BuildMatrix(ratings); err != nil {
		t.Fatalf("BuildMatrix() error = %v", err)
	}
	if err := m.Train(nFactors); err != nil {
		t.Fatalf("Train(%d) error = %v", nFactors, err)
	}
	return m
}

func TestModel_BuildMatrix_Errors(t *testing.T) {
	tests := []struct {
		name    string
		ratings []Rating
	}{
		{"empty input", nil},
		{"missing user id", []Rating{{EventID: "e1", Rating: 3}}},
		{"missing event id", []Rating{{UserID: "u1", Rating: 3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewModel()
			if err := m.BuildMatrix(tt.ratings); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestModel_BuildMatrix_AveragesDuplicates(t *testing.T) {
	m := NewModel()
	err := m.BuildMatrix([]Rating{
		{UserID: "u1", EventID: "e1", Rating: 2.0},
		{UserID: "u1", EventID: "e1", Rating: 4.0},
		{UserID: "u2", EventID: "e2", Rating: 5.0},
	})
	if err != nil {
		t.Fatalf("BuildMatrix() error = %v", err)
	}

	if got := m.matrix.At(m.userIndex["u1"], m.eventIndex["e1"]); got != 3.0 {
		t.Errorf("duplicate (u1,e1) = %f, want averaged 3.0", got)
	}
	if got := m.matrix.At(m.userIndex["u1"], m.eventIndex["e2"]); got != 0.0 {
		t.Errorf("missing (u1,e2) = %f, want 0", got)
	}
}

func TestModel_BuildMatrix_SortedIndexes(t *testing.T) {
	m := NewModel()
	err := m.BuildMatrix([]Rating{
		{UserID: "zoe", EventID: "concert", Rating: 3},
		{UserID: "amy", EventID: "theatre", Rating: 4},
	})
	if err != nil {
		t.Fatalf("BuildMatrix() error = %v", err)
	}

	if m.userIDs[0] != "amy" || m.userIDs[1] != "zoe" {
		t.Errorf("user order = %v, want lexicographic", m.userIDs)
	}
	if m.eventIDs[0] != "concert" || m.eventIDs[1] != "theatre" {
		t.Errorf("event order = %v, want lexicographic", m.eventIDs)
	}
}

func TestModel_Train_Errors(t *testing.T) {
	t.Run("matrix not built", func(t *testing.T) {
		m := NewModel()
		if err := m.Train(2); !errors.Is(err, ErrMatrixNotBuilt) {
			t.Errorf("Train() error = %v, want ErrMatrixNotBuilt", err)
		}
	})

	t.Run("too many factors", func(t *testing.T) {
		m := NewModel()
		if err := m.BuildMatrix(antiCorrelatedRatings()); err != nil {
			t.Fatalf("BuildMatrix() error = %v", err)
		}
		if err := m.Train(3); err == nil {
			t.Error("Train(3) on a 2x2 matrix should fail fast")
		}
		if m.IsTrained() {
			t.Error("failed training must not mark the model trained")
		}
	})

	t.Run("non-positive factors", func(t *testing.T) {
		m := NewModel()
		if err := m.BuildMatrix(antiCorrelatedRatings()); err != nil {
			t.Fatalf("BuildMatrix() error = %v", err)
		}
		if err := m.Train(0); err == nil {
			t.Error("Train(0) should fail")
		}
	})
}

func TestModel_AntiCorrelatedTastes(t *testing.T) {
	m := trainedModel(t, antiCorrelatedRatings(), 2)

	recs := m.Recommend("u1", 2, false)
	if len(recs) != 2 {
		t.Fatalf("got %d recommendations, want 2", len(recs))
	}
	if recs[0].EventID != "e1" {
		t.Errorf("u1 top pick = %s, want e1", recs[0].EventID)
	}
	if recs[0].Score <= recs[1].Score {
		t.Errorf("scores not descending: %f then %f", recs[0].Score, recs[1].Score)
	}
	if recs[0].Reason != ReasonCollaborative {
		t.Errorf("reason = %q, want %q", recs[0].Reason, ReasonCollaborative)
	}

	recs = m.Recommend("u2", 2, false)
	if recs[0].EventID != "e2" {
		t.Errorf("u2 top pick = %s, want e2", recs[0].EventID)
	}
}

func TestModel_Recommend_Untrained(t *testing.T) {
	m := NewModel()
	if recs := m.Recommend("u1", 5, false); len(recs) != 0 {
		t.Errorf("untrained model returned %d recommendations, want 0", len(recs))
	}
	if recs := m.SimilarEvents("e1", 5); len(recs) != 0 {
		t.Errorf("untrained model returned %d similar events, want 0", len(recs))
	}
}

func TestModel_Recommend_ColdStartPopularity(t *testing.T) {
	ratings := []Rating{
		{UserID: "u1", EventID: "hot", Rating: 5.0},
		{UserID: "u2", EventID: "hot", Rating: 5.0},
		{UserID: "u1", EventID: "warm", Rating: 3.0},
		{UserID: "u2", EventID: "warm", Rating: 2.0},
		{UserID: "u1", EventID: "cold", Rating: 1.0},
	}
	m := trainedModel(t, ratings, 2)

	recs := m.Recommend("stranger", 5, true)
	if len(recs) != 3 {
		t.Fatalf("got %d recommendations, want 3", len(recs))
	}

	wantOrder := []string{"hot", "warm", "cold"}
	wantScore := []float64{5.0, 2.5, 0.5}
	for i := range wantOrder {
		if recs[i].EventID != wantOrder[i] {
			t.Errorf("rank %d = %s, want %s", i, recs[i].EventID, wantOrder[i])
		}
		if !almostEqual(recs[i].Score, wantScore[i], 1e-9) {
			t.Errorf("rank %d score = %f, want %f", i, recs[i].Score, wantScore[i])
		}
		if recs[i].Reason != ReasonPopular {
			t.Errorf("rank %d reason = %q, want %q", i, recs[i].Reason, ReasonPopular)
		}
	}
}

func TestModel_Recommend_ExcludeViewed(t *testing.T) {
	ratings := []Rating{
		{UserID: "u1", EventID: "e1", Rating: 5.0},
		{UserID: "u1", EventID: "e2", Rating: 3.0},
		{UserID: "u2", EventID: "e2", Rating: 4.0},
		{UserID: "u2", EventID: "e3", Rating: 5.0},
	}
	m := trainedModel(t, ratings, 2)

	recs := m.Recommend("u1", 10, true)
	for _, r := range recs {
		if r.EventID == "e1" || r.EventID == "e2" {
			t.Errorf("excludeViewed leaked already-rated event %s", r.EventID)
		}
	}
	if len(recs) != 1 || recs[0].EventID != "e3" {
		t.Errorf("recs = %v, want only e3", recs)
	}

	all := m.Recommend("u1", 10, false)
	if len(all) != 3 {
		t.Errorf("without exclusion got %d events, want 3", len(all))
	}
}

func TestModel_SimilarEvents(t *testing.T) {
	// e1 and e2 share an audience; e3 belongs to the other camp.
	ratings := []Rating{
		{UserID: "u1", EventID: "e1", Rating: 5.0},
		{UserID: "u1", EventID: "e2", Rating: 4.0},
		{UserID: "u2", EventID: "e1", Rating: 4.0},
		{UserID: "u2", EventID: "e2", Rating: 5.0},
		{UserID: "u3", EventID: "e3", Rating: 5.0},
	}
	m := trainedModel(t, ratings, 2)

	recs := m.SimilarEvents("e1", 2)
	if len(recs) != 2 {
		t.Fatalf("got %d similar events, want 2", len(recs))
	}
	if recs[0].EventID != "e2" {
		t.Errorf("most similar to e1 = %s, want e2", recs[0].EventID)
	}
	if recs[0].Reason != ReasonSimilar {
		t.Errorf("reason = %q, want %q", recs[0].Reason, ReasonSimilar)
	}
	for _, r := range recs {
		if r.EventID == "e1" {
			t.Error("similar events must exclude the event itself")
		}
	}

	if recs := m.SimilarEvents("nonexistent", 2); len(recs) != 0 {
		t.Errorf("unknown event returned %d results, want 0", len(recs))
	}
}

func TestModel_Train_Idempotent(t *testing.T) {
	ratings := antiCorrelatedRatings()

	a := trainedModel(t, ratings, 2)
	b := trainedModel(t, ratings, 2)

	recsA := a.Recommend("u1", 2, false)
	recsB := b.Recommend("u1", 2, false)
	if len(recsA) != len(recsB) {
		t.Fatalf("lengths differ: %d vs %d", len(recsA), len(recsB))
	}
	for i := range recsA {
		if recsA[i].EventID != recsB[i].EventID || !almostEqual(recsA[i].Score, recsB[i].Score, 1e-12) {
			t.Errorf("rank %d differs: %+v vs %+v", i, recsA[i], recsB[i])
		}
	}
}

func TestModel_ExplainedVariance(t *testing.T) {
	// Full-rank factorization captures all variance.
	m := trainedModel(t, antiCorrelatedRatings(), 2)
	if !almostEqual(m.ExplainedVariance(), 1.0, 1e-9) {
		t.Errorf("full-rank explained variance = %f, want 1.0", m.ExplainedVariance())
	}

	reduced := trainedModel(t, antiCorrelatedRatings(), 1)
	ev := reduced.ExplainedVariance()
	if ev < 0 || ev > 1.0+1e-9 {
		t.Errorf("explained variance = %f outside [0,1]", ev)
	}
}

func TestModel_Evaluate(t *testing.T) {
	ratings := []Rating{
		{UserID: "u1", EventID: "e1", Rating: 5.0},
		{UserID: "u1", EventID: "e2", Rating: 3.0},
		{UserID: "u2", EventID: "e2", Rating: 4.0},
		{UserID: "u2", EventID: "e3", Rating: 5.0},
	}
	m := trainedModel(t, ratings, 2)

	t.Run("overlap contributes", func(t *testing.T) {
		heldOut := []Rating{{UserID: "u1", EventID: "e3", Rating: 2.0}}
		res := m.Evaluate(heldOut, 10)
		if res.EvaluatedUsers != 1 {
			t.Fatalf("evaluated users = %d, want 1", res.EvaluatedUsers)
		}
		if res.RMSE < 0 || math.IsNaN(res.RMSE) {
			t.Errorf("RMSE = %f, want non-negative", res.RMSE)
		}
		if res.MAE > res.RMSE+1e-12 {
			t.Errorf("MAE %f should not exceed RMSE %f for a single pair", res.MAE, res.RMSE)
		}
	})

	t.Run("no overlap yields zero users", func(t *testing.T) {
		heldOut := []Rating{{UserID: "u1", EventID: "e1", Rating: 5.0}}
		// e1 is already rated by u1 and excluded from top-k, so there is
		// no intersection.
		res := m.Evaluate(heldOut, 10)
		if res.EvaluatedUsers != 0 {
			t.Errorf("evaluated users = %d, want 0", res.EvaluatedUsers)
		}
	})
}
