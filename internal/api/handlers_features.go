// Eventlens - Event Recommendation and Evaluation Engine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventlens/eventlens

package api

import (
	"net/http"

	"github.com/eventlens/eventlens/internal/comparison"
	"github.com/eventlens/eventlens/internal/features"
	"github.com/eventlens/eventlens/internal/models"
	"github.com/eventlens/eventlens/internal/validation"
)

type featureExtractRequest struct {
	Samples         []features.Sample `json:"samples" validate:"required,min=1"`
	IncludeTemporal bool              `json:"include_temporal"`
	IncludePrice    bool              `json:"include_price"`
	IncludeLocation bool              `json:"include_location"`
}

// buildFrame extracts the requested feature families into a frame.
// When no family is selected all of them are extracted.
func buildFrame(samples []features.Sample, temporal, price, location bool) (*features.Frame, error) {
	if !temporal && !price && !location {
		temporal, price, location = true, true, true
	}

	f := features.NewFrame(len(samples))
	if temporal {
		if err := features.ExtractTemporal(samples, f); err != nil {
			return nil, err
		}
	}
	if price {
		if err := features.ExtractPrice(samples, f); err != nil {
			return nil, err
		}
	}
	if location {
		if err := features.ExtractLocation(samples, f); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (s *Server) handleFeatureExtract(w http.ResponseWriter, r *http.Request) {
	var req featureExtractRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	f, err := buildFrame(req.Samples, req.IncludeTemporal, req.IncludePrice, req.IncludeLocation)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, err.Error(), nil)
		return
	}

	columns := f.Columns()
	values := make(map[string][]float64, len(columns))
	for _, name := range columns {
		values[name] = f.Column(name)
	}
	respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"columns": columns,
		"rows":    f.Len(),
		"values":  values,
	})
}

type ablationStudyRequest struct {
	Samples []features.Sample   `json:"samples" validate:"required,min=4"`
	Groups  map[string][]string `json:"groups"`
	Model   string              `json:"model" validate:"omitempty,oneof=mean knn linear"`
	K       int                 `json:"k" validate:"omitempty,min=1"`
	L2      float64             `json:"l2" validate:"omitempty,gte=0"`
	Seed    int64               `json:"seed"`
}

// defaultFeatureGroups maps the three extractor families to the columns
// they produce, for ablation when the caller does not name groups.
func defaultFeatureGroups(f *features.Frame) map[string][]string {
	prefixes := map[string][]string{
		"temporal": {
			"hour", "day_of_week", "is_weekend", "hour_sin", "hour_cos",
			"day_sin", "day_cos", "season", "days_since_created",
			"days_until_event", "is_last_minute",
		},
		"price": {
			"event_price", "price_vs_user_avg_ratio", "price_vs_user_avg_diff",
			"price_percentile_in_category", "discount_amount", "discount_percent",
			"is_discounted", "price_tier", "price_log",
		},
		"location": {
			"distance_km", "distance_tier", "is_local", "travel_minutes",
			"same_city", "same_region",
		},
	}
	groups := make(map[string][]string, len(prefixes))
	for name, cols := range prefixes {
		var present []string
		for _, col := range cols {
			if f.HasColumn(col) {
				present = append(present, col)
			}
		}
		if len(present) > 0 {
			groups[name] = present
		}
	}
	return groups
}

func (s *Server) regressorFactory(model string, k int, l2 float64) func() features.Regressor {
	switch model {
	case "mean":
		return func() features.Regressor { return comparison.NewMeanRegressor() }
	case "knn":
		if k == 0 {
			k = 5
		}
		return func() features.Regressor { return comparison.NewKNNRegressor(k) }
	default:
		return func() features.Regressor { return comparison.NewLeastSquaresRegressor(l2) }
	}
}

func (s *Server) handleAblationStudy(w http.ResponseWriter, r *http.Request) {
	var req ablationStudyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	f, err := buildFrame(req.Samples, false, false, false)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, err.Error(), nil)
		return
	}

	target := make([]float64, len(req.Samples))
	for i, sample := range req.Samples {
		target[i] = sample.Target
	}

	groups := req.Groups
	if len(groups) == 0 {
		groups = defaultFeatureGroups(f)
	}

	result, err := features.AblationStudy(f, target, groups, s.regressorFactory(req.Model, req.K, req.L2), req.Seed)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, err.Error(), nil)
		return
	}
	respondJSON(w, r, http.StatusOK, result)
}
