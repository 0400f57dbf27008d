// Eventlens - Event Recommendation and Evaluation Engine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventlens/eventlens

package recommend

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/eventlens/eventlens/internal/recommend/storage"
)

func testEngine(t *testing.T, withStore bool) *Engine {
	t.Helper()
	var store *storage.Store
	if withStore {
		var err error
		store, err = storage.NewStore(filepath.Join(t.TempDir(), "model.gob.gz"))
		if err != nil {
			t.Fatalf("NewStore() error = %v", err)
		}
	}
	return NewEngine(zerolog.Nop(), store)
}

func trainingRecords() []InteractionRecord {
	return []InteractionRecord{
		{UserID: "u1", EventID: "e1", Rating: floatPtr(5.0)},
		{UserID: "u1", EventID: "e2", Rating: floatPtr(1.0)},
		{UserID: "u2", EventID: "e1", Rating: floatPtr(1.0)},
		{UserID: "u2", EventID: "e2", Rating: floatPtr(5.0)},
	}
}

func TestEngine_RecordInteraction(t *testing.T) {
	e := testEngine(t, false)

	t.Run("implicit rating filled in", func(t *testing.T) {
		ack, err := e.RecordInteraction(InteractionRecord{
			UserID: "u1", EventID: "e1", Type: InteractionBookmark,
		})
		if err != nil {
			t.Fatalf("RecordInteraction() error = %v", err)
		}
		if ack.Status != "success" {
			t.Errorf("status = %q, want success", ack.Status)
		}
		if ack.Interaction.Rating == nil || *ack.Interaction.Rating != 3.0 {
			t.Errorf("bookmark implicit rating = %v, want 3.0", ack.Interaction.Rating)
		}
		if ack.Interaction.Timestamp == nil {
			t.Error("timestamp should be stamped when absent")
		}
	})

	t.Run("explicit rating preserved", func(t *testing.T) {
		ack, err := e.RecordInteraction(InteractionRecord{
			UserID: "u1", EventID: "e2", Type: InteractionRating, Rating: floatPtr(4.5),
		})
		if err != nil {
			t.Fatalf("RecordInteraction() error = %v", err)
		}
		if *ack.Interaction.Rating != 4.5 {
			t.Errorf("rating = %f, want 4.5 unchanged", *ack.Interaction.Rating)
		}
	})

	t.Run("missing ids rejected", func(t *testing.T) {
		if _, err := e.RecordInteraction(InteractionRecord{EventID: "e1"}); err == nil {
			t.Error("expected error for missing user_id")
		}
		if _, err := e.RecordInteraction(InteractionRecord{UserID: "u1"}); err == nil {
			t.Error("expected error for missing event_id")
		}
	})

	if got := e.InteractionCount(); got != 2 {
		t.Errorf("interaction count = %d, want 2", got)
	}
}

func TestEngine_Train_Success(t *testing.T) {
	e := testEngine(t, false)

	res := e.Train(context.Background(), trainingRecords(), 2)
	if res.Status != "success" {
		t.Fatalf("Train() = %+v, want success", res)
	}
	if res.NUsers != 2 || res.NEvents != 2 || res.NFactor != 2 {
		t.Errorf("Train() counts = %+v", res)
	}

	stats := e.Stats()
	if stats.Status != "trained" {
		t.Errorf("stats status = %q, want trained", stats.Status)
	}

	recs := e.Recommend("u1", 2, false)
	if len(recs) != 2 || recs[0].EventID != "e1" {
		t.Errorf("recs = %v, want e1 first", recs)
	}
}

func TestEngine_Train_UsesInteractionLog(t *testing.T) {
	e := testEngine(t, false)
	for _, rec := range trainingRecords() {
		if _, err := e.RecordInteraction(rec); err != nil {
			t.Fatalf("RecordInteraction() error = %v", err)
		}
	}

	res := e.Train(context.Background(), nil, 2)
	if res.Status != "success" {
		t.Fatalf("Train() = %+v, want success from logged interactions", res)
	}
}

func TestEngine_Train_FailureKeepsPreviousModel(t *testing.T) {
	e := testEngine(t, false)

	if res := e.Train(context.Background(), trainingRecords(), 2); res.Status != "success" {
		t.Fatalf("initial Train() = %+v", res)
	}
	before := e.Recommend("u1", 2, false)

	tests := []struct {
		name     string
		records  []InteractionRecord
		nFactors int
	}{
		{"empty interactions", []InteractionRecord{}, 2},
		{"invalid record", []InteractionRecord{{UserID: "u9"}}, 2},
		{"too many factors", trainingRecords(), 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := e.Train(context.Background(), tt.records, tt.nFactors)
			if res.Status != "error" {
				t.Fatalf("Train() = %+v, want error", res)
			}
			if res.Message == "" {
				t.Error("error result should carry a message")
			}

			after := e.Recommend("u1", 2, false)
			if len(after) != len(before) {
				t.Fatalf("serving model changed after failed retrain")
			}
			for i := range after {
				if after[i] != before[i] {
					t.Errorf("recommendation %d changed after failed retrain", i)
				}
			}
		})
	}
}

func TestEngine_Stats_Untrained(t *testing.T) {
	e := testEngine(t, false)
	stats := e.Stats()
	if stats.Status != "not_trained" {
		t.Errorf("status = %q, want not_trained", stats.Status)
	}
	if recs := e.Recommend("u1", 5, false); len(recs) != 0 {
		t.Errorf("untrained engine returned %d recommendations", len(recs))
	}
}

func TestEngine_ArtifactRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.gob.gz")

	store, err := storage.NewStore(path)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	first := NewEngine(zerolog.Nop(), store)
	if res := first.Train(context.Background(), trainingRecords(), 2); res.Status != "success" {
		t.Fatalf("Train() = %+v", res)
	}
	wantRecs := first.Recommend("u1", 2, false)
	wantSimilar := first.SimilarEvents("e1", 1)

	// A fresh engine over the same store must serve identical output.
	second := NewEngine(zerolog.Nop(), store)
	if err := second.LoadArtifact(context.Background()); err != nil {
		t.Fatalf("LoadArtifact() error = %v", err)
	}

	gotRecs := second.Recommend("u1", 2, false)
	if len(gotRecs) != len(wantRecs) {
		t.Fatalf("restored recs length = %d, want %d", len(gotRecs), len(wantRecs))
	}
	for i := range gotRecs {
		if gotRecs[i] != wantRecs[i] {
			t.Errorf("restored rec %d = %+v, want %+v", i, gotRecs[i], wantRecs[i])
		}
	}

	gotSimilar := second.SimilarEvents("e1", 1)
	if len(gotSimilar) != len(wantSimilar) || gotSimilar[0] != wantSimilar[0] {
		t.Errorf("restored similar = %v, want %v", gotSimilar, wantSimilar)
	}

	stats := second.Stats()
	if stats.Status != "trained" || stats.NUsers != 2 {
		t.Errorf("restored stats = %+v", stats)
	}
}

func TestEngine_LoadArtifact_Missing(t *testing.T) {
	e := testEngine(t, true)
	if err := e.LoadArtifact(context.Background()); err != nil {
		t.Errorf("missing artifact should not error, got %v", err)
	}
	if e.Stats().Status != "not_trained" {
		t.Error("engine should start untrained without an artifact")
	}
}

func TestEngine_LastTrainedAt(t *testing.T) {
	e := testEngine(t, false)
	if !e.LastTrainedAt().IsZero() {
		t.Error("untrained engine should report zero time")
	}

	before := time.Now()
	if res := e.Train(context.Background(), trainingRecords(), 2); res.Status != "success" {
		t.Fatalf("Train() = %+v", res)
	}
	if ts := e.LastTrainedAt(); ts.Before(before) {
		t.Errorf("LastTrainedAt = %v, want >= %v", ts, before)
	}
}
