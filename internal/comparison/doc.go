// Eventlens - Event Recommendation and Evaluation Engine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventlens/eventlens

// Package comparison benchmarks competing rating predictors.
//
// A Comparator registers named model factories with optional parameter
// grids and supports timed benchmarking, k-fold cross-validated grid
// search, prediction ensembling and paired statistical significance
// testing. The bundled regressors (mean baseline, k-nearest-neighbor,
// regularized least squares) are deliberately simple stand-ins for the
// collaborative, hybrid and graph predictors being compared.
package comparison
