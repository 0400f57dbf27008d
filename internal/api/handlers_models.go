// Eventlens - Event Recommendation and Evaluation Engine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventlens/eventlens

package api

import (
	"net/http"

	"github.com/eventlens/eventlens/internal/comparison"
	"github.com/eventlens/eventlens/internal/models"
	"github.com/eventlens/eventlens/internal/validation"
)

// newComparator builds a comparator preloaded with the built-in
// regressor families and their default search grids.
func (s *Server) newComparator() *comparison.Comparator {
	c := comparison.NewComparator(s.logger)
	c.Register("mean", func(comparison.Params) comparison.Regressor {
		return comparison.NewMeanRegressor()
	}, nil)
	c.Register("knn", func(p comparison.Params) comparison.Regressor {
		k := int(p["k"])
		if k < 1 {
			k = 5
		}
		return comparison.NewKNNRegressor(k)
	}, []comparison.Params{{"k": 3}, {"k": 5}, {"k": 10}, {"k": 20}})
	c.Register("linear", func(p comparison.Params) comparison.Regressor {
		return comparison.NewLeastSquaresRegressor(p["l2"])
	}, []comparison.Params{{"l2": 0}, {"l2": 0.1}, {"l2": 1}, {"l2": 10}})
	return c
}

type benchmarkRequest struct {
	TrainX [][]float64 `json:"train_x" validate:"required,min=1"`
	TrainY []float64   `json:"train_y" validate:"required,min=1"`
	TestX  [][]float64 `json:"test_x" validate:"required,min=1"`
	TestY  []float64   `json:"test_y" validate:"required,min=1"`
}

func (s *Server) handleBenchmark(w http.ResponseWriter, r *http.Request) {
	var req benchmarkRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	result, err := s.newComparator().Benchmark(req.TrainX, req.TrainY, req.TestX, req.TestY)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, err.Error(), nil)
		return
	}
	respondJSON(w, r, http.StatusOK, result)
}

type hyperparameterSearchRequest struct {
	Model string               `json:"model" validate:"required,oneof=mean knn linear"`
	X     [][]float64          `json:"x" validate:"required,min=2"`
	Y     []float64            `json:"y" validate:"required,min=2"`
	Folds int                  `json:"folds" validate:"omitempty,min=2"`
	Grid  []map[string]float64 `json:"grid"`
}

func (s *Server) handleHyperparameterSearch(w http.ResponseWriter, r *http.Request) {
	var req hyperparameterSearchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	folds := req.Folds
	if folds == 0 {
		folds = 5
	}

	c := s.newComparator()
	if len(req.Grid) > 0 {
		grid := make([]comparison.Params, len(req.Grid))
		for i, p := range req.Grid {
			grid[i] = comparison.Params(p)
		}
		switch req.Model {
		case "knn":
			c.Register("knn", func(p comparison.Params) comparison.Regressor {
				k := int(p["k"])
				if k < 1 {
					k = 5
				}
				return comparison.NewKNNRegressor(k)
			}, grid)
		case "linear":
			c.Register("linear", func(p comparison.Params) comparison.Regressor {
				return comparison.NewLeastSquaresRegressor(p["l2"])
			}, grid)
		case "mean":
			c.Register("mean", func(comparison.Params) comparison.Regressor {
				return comparison.NewMeanRegressor()
			}, grid)
		}
	}

	result, err := c.HyperparameterSearch(req.Model, req.X, req.Y, folds)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, err.Error(), nil)
		return
	}
	respondJSON(w, r, http.StatusOK, result)
}

type ensembleRequest struct {
	Predictions map[string][]float64 `json:"predictions" validate:"required"`
	TestY       []float64            `json:"test_y" validate:"required,min=1"`
	Method      string               `json:"method" validate:"omitempty,oneof=average weighted"`
}

func (s *Server) handleEnsemble(w http.ResponseWriter, r *http.Request) {
	var req ensembleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	method := req.Method
	if method == "" {
		method = comparison.EnsembleAverage
	}
	result, err := comparison.Ensemble(req.Predictions, req.TestY, method)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, err.Error(), nil)
		return
	}
	respondJSON(w, r, http.StatusOK, result)
}

type significanceTestRequest struct {
	PredictionsA []float64 `json:"predictions_a" validate:"required,min=2"`
	PredictionsB []float64 `json:"predictions_b" validate:"required,min=2"`
	TestY        []float64 `json:"test_y" validate:"required,min=2"`
	TestType     string    `json:"test_type" validate:"omitempty,oneof=paired_ttest wilcoxon"`
}

func (s *Server) handleSignificanceTest(w http.ResponseWriter, r *http.Request) {
	var req significanceTestRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	testType := req.TestType
	if testType == "" {
		testType = comparison.TestPairedT
	}
	result, err := comparison.SignificanceTest(req.PredictionsA, req.PredictionsB, req.TestY, testType)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, err.Error(), nil)
		return
	}
	respondJSON(w, r, http.StatusOK, result)
}

type crossComparisonRequest struct {
	Collaborative []float64 `json:"collaborative" validate:"required,min=2"`
	Hybrid        []float64 `json:"hybrid" validate:"required,min=2"`
	Graph         []float64 `json:"graph" validate:"required,min=2"`
	TestY         []float64 `json:"test_y" validate:"required,min=2"`
	TestType      string    `json:"test_type" validate:"omitempty,oneof=paired_ttest wilcoxon"`
}

func (s *Server) handleCompareCFHybridGraph(w http.ResponseWriter, r *http.Request) {
	var req crossComparisonRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	testType := req.TestType
	if testType == "" {
		testType = comparison.TestPairedT
	}
	result, err := comparison.CompareCFHybridGraph(req.Collaborative, req.Hybrid, req.Graph, req.TestY, testType)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, err.Error(), nil)
		return
	}
	respondJSON(w, r, http.StatusOK, result)
}
