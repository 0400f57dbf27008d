// Eventlens - Event Recommendation and Evaluation Engine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventlens/eventlens

package models

import (
	"time"
)

// APIResponse is the envelope every HTTP endpoint returns.
//
// Status is "success" or "error". Data carries the payload on success;
// Error is populated only when Status is "error".
//
//	{
//	  "status": "success",
//	  "data": {"recommendations": [...]},
//	  "metadata": {"timestamp": "2026-08-29T12:00:00Z", "duration_ms": 4}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata is attached to every response for observability.
type Metadata struct {
	Timestamp  time.Time `json:"timestamp"`
	DurationMS int64     `json:"duration_ms,omitempty"`
	RequestID  string    `json:"request_id,omitempty"`
}

// APIError is the structured error shape shared by all endpoints.
//
// Common codes:
//   - VALIDATION_ERROR: invalid request parameters
//   - TRAINING_ERROR: model training failed, previous model still serves
//   - NOT_FOUND: unknown route or resource
//   - INTERNAL_ERROR: unexpected failure
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error codes used across the API layer.
const (
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeTraining   = "TRAINING_ERROR"
	ErrCodeNotFound   = "NOT_FOUND"
	ErrCodeInternal   = "INTERNAL_ERROR"
)
