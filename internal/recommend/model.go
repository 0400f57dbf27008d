// Eventlens - Event Recommendation and Evaluation Engine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventlens/eventlens

package recommend

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// ErrMatrixNotBuilt is returned by Train when no interaction matrix has
// been built yet.
var ErrMatrixNotBuilt = errors.New("must build matrix first")

// Model is the latent factor recommendation model.
//
// A Model moves one way from untrained to trained; retraining always goes
// through a fresh instance so that readers of a trained model never see
// mutation. All query methods on a trained model are read-only.
type Model struct {
	// matrix is the dense user × event rating table, 0 for no interaction.
	// Valid ratings are >= 0.5 so 0 is an unambiguous sentinel.
	matrix *mat.Dense

	// userIDs and eventIDs are the row/column labels in matrix order.
	userIDs  []string
	eventIDs []string

	// userIndex and eventIndex invert the label slices.
	userIndex  map[string]int
	eventIndex map[string]int

	nFactors          int
	singularValues    []float64
	userFactors       *mat.Dense // users × k, projected user coordinates (U·Σ)
	eventFactors      *mat.Dense // events × k, right singular vectors scaled by Σ
	explainedVariance float64
	trained           bool
}

// NewModel returns an untrained model.
func NewModel() *Model {
	return &Model{
		userIndex:  make(map[string]int),
		eventIndex: make(map[string]int),
	}
}

// IsTrained reports whether the model has been trained.
func (m *Model) IsTrained() bool {
	return m.trained
}

// NumUsers returns the number of users in the interaction matrix.
func (m *Model) NumUsers() int { return len(m.userIDs) }

// NumEvents returns the number of events in the interaction matrix.
func (m *Model) NumEvents() int { return len(m.eventIDs) }

// NumFactors returns the latent dimensionality of a trained model.
func (m *Model) NumFactors() int { return m.nFactors }

// ExplainedVariance returns the fraction of matrix variance captured by
// the retained singular components.
func (m *Model) ExplainedVariance() float64 { return m.explainedVariance }

// BuildMatrix pivots weighted ratings into a dense user × event table with
// 0 for missing entries, recording the id↔index bijections. Duplicate
// (user, event) observations are averaged. Row and column order is the
// lexicographic order of the ids, so the mapping is deterministic for a
// given rating set.
//
// Index mappings are invalidated by any out-of-band user/event addition
// until the next BuildMatrix call.
func (m *Model) BuildMatrix(ratings []Rating) error {
	if len(ratings) == 0 {
		return errors.New("cannot build matrix from empty interaction data")
	}

	userSet := make(map[string]struct{})
	eventSet := make(map[string]struct{})
	for i := range ratings {
		if ratings[i].UserID == "" || ratings[i].EventID == "" {
			return fmt.Errorf("malformed rating at index %d: empty user or event id", i)
		}
		userSet[ratings[i].UserID] = struct{}{}
		eventSet[ratings[i].EventID] = struct{}{}
	}

	m.userIDs = sortedKeys(userSet)
	m.eventIDs = sortedKeys(eventSet)
	m.userIndex = indexOf(m.userIDs)
	m.eventIndex = indexOf(m.eventIDs)

	rows, cols := len(m.userIDs), len(m.eventIDs)
	sums := mat.NewDense(rows, cols, nil)
	counts := mat.NewDense(rows, cols, nil)
	for i := range ratings {
		u := m.userIndex[ratings[i].UserID]
		e := m.eventIndex[ratings[i].EventID]
		sums.Set(u, e, sums.At(u, e)+ratings[i].Rating)
		counts.Set(u, e, counts.At(u, e)+1)
	}

	m.matrix = mat.NewDense(rows, cols, nil)
	for u := 0; u < rows; u++ {
		for e := 0; e < cols; e++ {
			if c := counts.At(u, e); c > 0 {
				m.matrix.Set(u, e, sums.At(u, e)/c)
			}
		}
	}

	// A rebuilt matrix invalidates any previous factorization.
	m.trained = false
	m.userFactors = nil
	m.eventFactors = nil
	m.singularValues = nil

	return nil
}

// Train factors the interaction matrix, keeping the top nFactors singular
// components. User factors are the projected user coordinates (U·Σ);
// event factors are the right singular vectors scaled by the singular
// values. The decomposition is deterministic for a given matrix and
// factor count.
//
// Train fails fast when nFactors exceeds min(nUsers, nEvents) rather than
// silently truncating, to avoid silent model degradation.
func (m *Model) Train(nFactors int) error {
	if m.matrix == nil {
		return ErrMatrixNotBuilt
	}
	if nFactors <= 0 {
		return fmt.Errorf("n_factors must be positive, got %d", nFactors)
	}
	rows, cols := m.matrix.Dims()
	if bound := min(rows, cols); nFactors > bound {
		return fmt.Errorf("n_factors %d exceeds matrix rank bound %d (%d users × %d events)",
			nFactors, bound, rows, cols)
	}

	var svd mat.SVD
	if ok := svd.Factorize(m.matrix, mat.SVDThin); !ok {
		return errors.New("singular value decomposition failed to converge")
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	sigma := svd.Values(nil)

	m.nFactors = nFactors
	m.singularValues = append([]float64(nil), sigma[:nFactors]...)

	m.userFactors = mat.NewDense(rows, nFactors, nil)
	for i := 0; i < rows; i++ {
		for f := 0; f < nFactors; f++ {
			m.userFactors.Set(i, f, u.At(i, f)*sigma[f])
		}
	}

	m.eventFactors = mat.NewDense(cols, nFactors, nil)
	for j := 0; j < cols; j++ {
		for f := 0; f < nFactors; f++ {
			m.eventFactors.Set(j, f, v.At(j, f)*sigma[f])
		}
	}

	m.explainedVariance = m.explainedVarianceRatio()
	m.trained = true
	return nil
}

// explainedVarianceRatio measures the per-component variance of the
// projected user coordinates against the total column variance of the
// interaction matrix.
func (m *Model) explainedVarianceRatio() float64 {
	rows, cols := m.matrix.Dims()
	if rows < 2 {
		// Variance of a single observation is zero by definition.
		return 0
	}

	var total float64
	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		mat.Col(col, j, m.matrix)
		total += populationVariance(col)
	}
	if total == 0 {
		return 0
	}

	var captured float64
	comp := make([]float64, rows)
	for f := 0; f < m.nFactors; f++ {
		mat.Col(comp, f, m.userFactors)
		captured += populationVariance(comp)
	}
	return captured / total
}

// Recommend returns the top n events for a user, ranked by cosine
// similarity between the user's latent vector and every event's latent
// vector. Users unseen at training time fall back to popularity ranking.
// An untrained model yields an empty list.
func (m *Model) Recommend(userID string, n int, excludeViewed bool) []Recommendation {
	if !m.trained || n <= 0 {
		return nil
	}

	uIdx, known := m.userIndex[userID]
	if !known {
		return m.popularEvents(n)
	}

	userVec := mat.Row(nil, uIdx, m.userFactors)

	recs := make([]Recommendation, 0, len(m.eventIDs))
	eventVec := make([]float64, m.nFactors)
	for e := range m.eventIDs {
		if excludeViewed && m.matrix.At(uIdx, e) > 0 {
			continue
		}
		mat.Row(eventVec, e, m.eventFactors)
		recs = append(recs, Recommendation{
			EventID: m.eventIDs[e],
			Score:   cosineSimilarity(userVec, eventVec),
			Reason:  ReasonCollaborative,
		})
	}

	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Score > recs[j].Score })
	if len(recs) > n {
		recs = recs[:n]
	}
	return recs
}

// popularEvents ranks events by mean historical rating across all users,
// ties broken by column order. This is the cold-start fallback.
func (m *Model) popularEvents(n int) []Recommendation {
	rows, cols := m.matrix.Dims()
	recs := make([]Recommendation, 0, cols)
	for e := 0; e < cols; e++ {
		var sum float64
		for u := 0; u < rows; u++ {
			sum += m.matrix.At(u, e)
		}
		recs = append(recs, Recommendation{
			EventID: m.eventIDs[e],
			Score:   sum / float64(rows),
			Reason:  ReasonPopular,
		})
	}

	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Score > recs[j].Score })
	if len(recs) > n {
		recs = recs[:n]
	}
	return recs
}

// SimilarEvents returns the n events most similar to the given event by
// cosine similarity of latent vectors, excluding the event itself.
// Unknown events and untrained models yield an empty list.
func (m *Model) SimilarEvents(eventID string, n int) []Recommendation {
	if !m.trained || n <= 0 {
		return nil
	}
	src, known := m.eventIndex[eventID]
	if !known {
		return nil
	}

	srcVec := mat.Row(nil, src, m.eventFactors)
	candVec := make([]float64, m.nFactors)

	recs := make([]Recommendation, 0, len(m.eventIDs)-1)
	for e := range m.eventIDs {
		if e == src {
			continue
		}
		mat.Row(candVec, e, m.eventFactors)
		recs = append(recs, Recommendation{
			EventID: m.eventIDs[e],
			Score:   cosineSimilarity(srcVec, candVec),
			Reason:  ReasonSimilar,
		})
	}

	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Score > recs[j].Score })
	if len(recs) > n {
		recs = recs[:n]
	}
	return recs
}

// Evaluate computes RMSE and MAE between predicted similarity scores and
// held-out ratings, restricted to held-out items that also appear in each
// user's top-k recommendations. Users with no overlap are excluded from
// the averages. See EvaluationResult for the documented limitation.
func (m *Model) Evaluate(heldOut []Rating, k int) EvaluationResult {
	byUser := make(map[string][]Rating)
	var userOrder []string
	for i := range heldOut {
		u := heldOut[i].UserID
		if _, seen := byUser[u]; !seen {
			userOrder = append(userOrder, u)
		}
		byUser[u] = append(byUser[u], heldOut[i])
	}

	var totalRMSE, totalMAE float64
	evaluated := 0

	for _, user := range userOrder {
		recs := m.Recommend(user, k, true)
		if len(recs) == 0 {
			continue
		}

		recScores := make(map[string]float64, len(recs))
		for i := range recs {
			recScores[recs[i].EventID] = recs[i].Score
		}

		var se, ae float64
		n := 0
		for _, r := range byUser[user] {
			score, ok := recScores[r.EventID]
			if !ok {
				continue
			}
			diff := score - r.Rating
			se += diff * diff
			ae += math.Abs(diff)
			n++
		}
		if n == 0 {
			continue
		}

		totalRMSE += math.Sqrt(se / float64(n))
		totalMAE += ae / float64(n)
		evaluated++
	}

	if evaluated == 0 {
		return EvaluationResult{}
	}
	return EvaluationResult{
		RMSE:           totalRMSE / float64(evaluated),
		MAE:            totalMAE / float64(evaluated),
		EvaluatedUsers: evaluated,
	}
}

// cosineSimilarity computes the cosine of the angle between two vectors,
// 0 when either vector has zero norm.
func cosineSimilarity(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// populationVariance is the biased (n-denominator) variance used by the
// explained variance ratio.
func populationVariance(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(len(xs))

	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return ss / float64(len(xs))
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func indexOf(ids []string) map[string]int {
	idx := make(map[string]int, len(ids))
	for i, id := range ids {
		idx[id] = i
	}
	return idx
}
