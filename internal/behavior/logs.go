// Eventlens - Event Recommendation and Evaluation Engine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventlens/eventlens

package behavior

import (
	"sort"
	"time"
)

// ClickRecord is one click-log entry.
type ClickRecord struct {
	UserID    string    `json:"user_id"`
	EventID   string    `json:"event_id"`
	Timestamp time.Time `json:"timestamp"`
}

// ClickSummary aggregates a click log.
type ClickSummary struct {
	TotalClicks        int         `json:"total_clicks"`
	UniqueUsers        int         `json:"unique_users"`
	UniqueEvents       int         `json:"unique_events"`
	AvgClicksPerUser   float64     `json:"avg_clicks_per_user"`
	AvgClicksPerEvent  float64     `json:"avg_clicks_per_event"`
	HourlyDistribution map[int]int `json:"hourly_distribution"`
}

// SummarizeClicks computes totals, unique counts, per-user/event
// averages and the hour-of-day distribution of a click log.
func SummarizeClicks(records []ClickRecord) ClickSummary {
	summary := ClickSummary{
		TotalClicks:        len(records),
		HourlyDistribution: make(map[int]int),
	}
	if len(records) == 0 {
		return summary
	}

	users := make(map[string]struct{})
	events := make(map[string]struct{})
	for i := range records {
		users[records[i].UserID] = struct{}{}
		events[records[i].EventID] = struct{}{}
		summary.HourlyDistribution[records[i].Timestamp.Hour()]++
	}

	summary.UniqueUsers = len(users)
	summary.UniqueEvents = len(events)
	summary.AvgClicksPerUser = float64(len(records)) / float64(len(users))
	summary.AvgClicksPerEvent = float64(len(records)) / float64(len(events))
	return summary
}

// BookingRecord is one booking-log entry.
type BookingRecord struct {
	UserID    string    `json:"user_id"`
	EventID   string    `json:"event_id"`
	Status    string    `json:"status"`
	Amount    float64   `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}

// BookingStatusConfirmed marks a completed booking; only confirmed
// bookings count toward revenue and conversion.
const BookingStatusConfirmed = "confirmed"

// EventBookings counts confirmed bookings for one event.
type EventBookings struct {
	EventID  string `json:"event_id"`
	Bookings int    `json:"bookings"`
}

// BookingSummary aggregates a booking log.
type BookingSummary struct {
	TotalBookings     int             `json:"total_bookings"`
	ConfirmedBookings int             `json:"confirmed_bookings"`
	Revenue           float64         `json:"revenue"`
	ConversionRate    float64         `json:"conversion_rate"`
	TopEvents         []EventBookings `json:"top_events"`
}

// SummarizeBookings computes booking totals, confirmed revenue, the
// confirmed conversion rate and the top events by confirmed bookings
// (at most topEvents entries, ties broken by event id).
func SummarizeBookings(records []BookingRecord, topEvents int) BookingSummary {
	summary := BookingSummary{TotalBookings: len(records)}
	if len(records) == 0 {
		return summary
	}

	perEvent := make(map[string]int)
	for i := range records {
		if records[i].Status != BookingStatusConfirmed {
			continue
		}
		summary.ConfirmedBookings++
		summary.Revenue += records[i].Amount
		perEvent[records[i].EventID]++
	}
	summary.ConversionRate = float64(summary.ConfirmedBookings) / float64(len(records))

	ranked := make([]EventBookings, 0, len(perEvent))
	for id, n := range perEvent {
		ranked = append(ranked, EventBookings{EventID: id, Bookings: n})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Bookings != ranked[j].Bookings {
			return ranked[i].Bookings > ranked[j].Bookings
		}
		return ranked[i].EventID < ranked[j].EventID
	})
	if topEvents > 0 && len(ranked) > topEvents {
		ranked = ranked[:topEvents]
	}
	summary.TopEvents = ranked
	return summary
}
