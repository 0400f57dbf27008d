// Eventlens - Event Recommendation and Evaluation Engine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventlens/eventlens

package recommend

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/eventlens/eventlens/internal/recommend/storage"
)

// Snapshot exports a trained model's full state for persistence.
func (m *Model) Snapshot() (*storage.ModelState, error) {
	if !m.trained {
		return nil, errors.New("cannot snapshot untrained model")
	}
	return &storage.ModelState{
		NFactors:          m.nFactors,
		SingularValues:    append([]float64(nil), m.singularValues...),
		UserFactors:       denseToRows(m.userFactors),
		EventFactors:      denseToRows(m.eventFactors),
		Matrix:            denseToRows(m.matrix),
		UserIDs:           append([]string(nil), m.userIDs...),
		EventIDs:          append([]string(nil), m.eventIDs...),
		ExplainedVariance: m.explainedVariance,
	}, nil
}

// RestoreModel rebuilds a trained model from persisted state. The restored
// model reproduces Recommend and SimilarEvents output exactly.
func RestoreModel(state *storage.ModelState) (*Model, error) {
	if state == nil {
		return nil, errors.New("nil model state")
	}
	if len(state.UserIDs) == 0 || len(state.EventIDs) == 0 {
		return nil, errors.New("model state has no users or events")
	}
	if state.NFactors <= 0 {
		return nil, fmt.Errorf("model state has invalid factor count %d", state.NFactors)
	}

	matrix, err := rowsToDense(state.Matrix, len(state.UserIDs), len(state.EventIDs))
	if err != nil {
		return nil, fmt.Errorf("restore matrix: %w", err)
	}
	userFactors, err := rowsToDense(state.UserFactors, len(state.UserIDs), state.NFactors)
	if err != nil {
		return nil, fmt.Errorf("restore user factors: %w", err)
	}
	eventFactors, err := rowsToDense(state.EventFactors, len(state.EventIDs), state.NFactors)
	if err != nil {
		return nil, fmt.Errorf("restore event factors: %w", err)
	}

	m := &Model{
		matrix:            matrix,
		userIDs:           append([]string(nil), state.UserIDs...),
		eventIDs:          append([]string(nil), state.EventIDs...),
		userIndex:         indexOf(state.UserIDs),
		eventIndex:        indexOf(state.EventIDs),
		nFactors:          state.NFactors,
		singularValues:    append([]float64(nil), state.SingularValues...),
		userFactors:       userFactors,
		eventFactors:      eventFactors,
		explainedVariance: state.ExplainedVariance,
		trained:           true,
	}
	return m, nil
}

func denseToRows(d *mat.Dense) [][]float64 {
	rows, cols := d.Dims()
	out := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		row := make([]float64, cols)
		mat.Row(row, i, d)
		out[i] = row
	}
	return out
}

func rowsToDense(rows [][]float64, wantRows, wantCols int) (*mat.Dense, error) {
	if len(rows) != wantRows {
		return nil, fmt.Errorf("expected %d rows, got %d", wantRows, len(rows))
	}
	d := mat.NewDense(wantRows, wantCols, nil)
	for i, row := range rows {
		if len(row) != wantCols {
			return nil, fmt.Errorf("row %d: expected %d columns, got %d", i, wantCols, len(row))
		}
		d.SetRow(i, row)
	}
	return d, nil
}
