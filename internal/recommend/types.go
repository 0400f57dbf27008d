// Eventlens - Event Recommendation and Evaluation Engine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventlens/eventlens

package recommend

import (
	"fmt"
	"time"
)

// InteractionType classifies user-event interactions.
type InteractionType string

const (
	// InteractionView indicates the user viewed an event page.
	InteractionView InteractionType = "view"
	// InteractionClick indicates the user clicked through to an event.
	InteractionClick InteractionType = "click"
	// InteractionBookmark indicates the user bookmarked an event.
	InteractionBookmark InteractionType = "bookmark"
	// InteractionBooking indicates the user booked an event.
	InteractionBooking InteractionType = "booking"
	// InteractionRating indicates an explicit rating was given.
	InteractionRating InteractionType = "rating"
	// InteractionPromotionClick indicates a click on a promotion.
	InteractionPromotionClick InteractionType = "promotion_click"
	// InteractionNotificationClick indicates a click on a notification.
	InteractionNotificationClick InteractionType = "notification_click"
)

// ImplicitRating maps an interaction type to its implicit rating value.
// Explicit ratings pass their value through; a rating-typed interaction
// without a value defaults to 5.0. Unrecognized types fall back to 1.0.
func (t InteractionType) ImplicitRating(explicit *float64) float64 {
	switch t {
	case InteractionView:
		return 1.0
	case InteractionClick:
		return 2.0
	case InteractionBookmark:
		return 3.0
	case InteractionBooking:
		return 4.0
	case InteractionRating:
		if explicit != nil {
			return *explicit
		}
		return 5.0
	default:
		return 1.0
	}
}

// NotificationAction describes how a user responded to a notification.
type NotificationAction string

const (
	// NotificationNone means no notification was involved.
	NotificationNone NotificationAction = "none"
	// NotificationSent means a notification was delivered but not acted on.
	NotificationSent NotificationAction = "sent"
	// NotificationOpen means the notification was opened.
	NotificationOpen NotificationAction = "open"
	// NotificationClick means the notification was clicked.
	NotificationClick NotificationAction = "click"
)

// Engaged reports whether the action counts as notification engagement.
func (a NotificationAction) Engaged() bool {
	return a == NotificationOpen || a == NotificationClick
}

// InteractionRecord is a single logged user-event interaction.
// Records are immutable once logged. The canonical numeric signal is
// Rating; all other fields are optional enrichment used by the weighting
// engine with documented defaults.
type InteractionRecord struct {
	// UserID identifies the interacting user. Required.
	UserID string `json:"user_id" validate:"required"`

	// EventID identifies the event. Required.
	EventID string `json:"event_id" validate:"required"`

	// Type classifies the interaction.
	Type InteractionType `json:"interaction_type,omitempty"`

	// Rating is the raw rating signal. Required for training; for implicit
	// interactions it carries the mapped implicit value.
	Rating *float64 `json:"rating,omitempty"`

	// Timestamp is when the interaction occurred. Absent means "now"
	// (recency weight 1).
	Timestamp *time.Time `json:"timestamp,omitempty"`

	// Channel is the surface the interaction came from (events_tab,
	// calendar, promotion, notification). Defaults to "generic".
	Channel string `json:"channel,omitempty"`

	// IsPromotionClick marks a response to a promotion.
	IsPromotionClick bool `json:"is_promotion_click,omitempty"`

	// CalendarSelected marks a calendar-date preference signal.
	CalendarSelected bool `json:"calendar_selected,omitempty"`

	// OrganizerTrustScore is the organizer trust score in [0,100].
	// Defaults to 70.
	OrganizerTrustScore *float64 `json:"organizer_trust_score,omitempty"`

	// RatingValue is the explicit rating, preferred over Rating when
	// computing rating bias.
	RatingValue *float64 `json:"rating_value,omitempty"`

	// NotificationAction is the notification response, if any.
	NotificationAction NotificationAction `json:"notification_action,omitempty"`

	// Metadata carries free-form enrichment ignored by the core pipeline.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Rating is one weighted training observation: the three columns the
// latent factor model trains on.
type Rating struct {
	UserID  string  `json:"user_id"`
	EventID string  `json:"event_id"`
	Rating  float64 `json:"rating"`
}

// Recommendation is a single ranked recommendation or similarity result.
type Recommendation struct {
	EventID string  `json:"event_id"`
	Score   float64 `json:"score"`
	Reason  string  `json:"reason"`
}

// Recommendation reasons. These are part of the API contract.
const (
	ReasonCollaborative = "Collaborative filtering recommendation"
	ReasonPopular       = "Popular events"
	ReasonSimilar       = "Similar content"
)

// TrainResult reports the outcome of a training call.
type TrainResult struct {
	Status  string `json:"status"`
	NUsers  int    `json:"n_users,omitempty"`
	NEvents int    `json:"n_events,omitempty"`
	NFactor int    `json:"n_factors,omitempty"`
	Message string `json:"message,omitempty"`
}

// ModelStats describes the currently served model.
type ModelStats struct {
	Status            string  `json:"status"`
	NUsers            int     `json:"n_users,omitempty"`
	NEvents           int     `json:"n_events,omitempty"`
	NFactors          int     `json:"n_factors,omitempty"`
	ExplainedVariance float64 `json:"explained_variance,omitempty"`
	Message           string  `json:"message,omitempty"`
}

// EvaluationResult is the offline proxy evaluation of a trained model.
//
// RMSE and MAE are computed only over the intersection of recommended and
// held-out items, which can be very few points for sparse held-out sets.
// This mirrors the intended offline-proxy semantics rather than a true
// ranking evaluation.
type EvaluationResult struct {
	RMSE           float64 `json:"rmse"`
	MAE            float64 `json:"mae"`
	EvaluatedUsers int     `json:"evaluated_users"`
}

// Acknowledgement echoes a recorded interaction with its computed rating.
type Acknowledgement struct {
	Status      string            `json:"status"`
	Message     string            `json:"message"`
	Interaction InteractionRecord `json:"interaction"`
}

// ValidationError reports malformed training input. The operation aborts
// and no state is mutated.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid interaction data: %s", e.Reason)
}

// newValidationError builds a ValidationError with a formatted reason.
func newValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}
