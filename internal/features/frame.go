// Eventlens - Event Recommendation and Evaluation Engine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventlens/eventlens

package features

import (
	"fmt"
	"time"
)

// Sample is one interaction+event observation with explicit optional
// fields. Absent optional fields carry their documented defaults at the
// point of extraction rather than being duck-typed downstream.
type Sample struct {
	UserID  string `json:"user_id"`
	EventID string `json:"event_id"`

	// Timestamp is when the interaction occurred.
	Timestamp *time.Time `json:"timestamp,omitempty"`

	// EventCreatedAt is when the event listing was created.
	EventCreatedAt *time.Time `json:"event_created_at,omitempty"`

	// EventStartsAt is the event's scheduled start.
	EventStartsAt *time.Time `json:"event_starts_at,omitempty"`

	// Price is the current ticket price.
	Price *float64 `json:"price,omitempty"`

	// OriginalPrice is the pre-discount price, when discounted.
	OriginalPrice *float64 `json:"original_price,omitempty"`

	// Category groups events for within-category price ranking.
	Category string `json:"category,omitempty"`

	// User and event coordinates for distance features.
	UserLat  *float64 `json:"user_lat,omitempty"`
	UserLon  *float64 `json:"user_lon,omitempty"`
	EventLat *float64 `json:"event_lat,omitempty"`
	EventLon *float64 `json:"event_lon,omitempty"`

	// Categorical location fields for same-place flags.
	UserCity    string `json:"user_city,omitempty"`
	EventCity   string `json:"event_city,omitempty"`
	UserRegion  string `json:"user_region,omitempty"`
	EventRegion string `json:"event_region,omitempty"`

	// Target is the label for supervised studies.
	Target float64 `json:"target"`
}

// Frame is an ordered-column numeric feature table. Extractors append
// columns; columns are never mutated in place.
type Frame struct {
	n     int
	names []string
	cols  map[string][]float64
}

// NewFrame creates a frame with capacity for n rows.
func NewFrame(n int) *Frame {
	return &Frame{
		n:    n,
		cols: make(map[string][]float64),
	}
}

// Len returns the row count.
func (f *Frame) Len() int { return f.n }

// Columns returns the column names in insertion order.
func (f *Frame) Columns() []string {
	return append([]string(nil), f.names...)
}

// HasColumn reports whether the named column exists.
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.cols[name]
	return ok
}

// Column returns the named column's values, or nil when absent.
func (f *Frame) Column(name string) []float64 {
	col, ok := f.cols[name]
	if !ok {
		return nil
	}
	return append([]float64(nil), col...)
}

// AddColumn appends a column. Replacing an existing column or adding a
// column of the wrong length is an error.
func (f *Frame) AddColumn(name string, values []float64) error {
	if len(values) != f.n {
		return fmt.Errorf("column %s has %d values, frame has %d rows", name, len(values), f.n)
	}
	if _, exists := f.cols[name]; exists {
		return fmt.Errorf("column %s already exists", name)
	}
	f.names = append(f.names, name)
	f.cols[name] = append([]float64(nil), values...)
	return nil
}

// Drop returns a copy of the frame without the named columns. Unknown
// names are ignored.
func (f *Frame) Drop(names ...string) *Frame {
	dropped := make(map[string]struct{}, len(names))
	for _, name := range names {
		dropped[name] = struct{}{}
	}

	out := NewFrame(f.n)
	for _, name := range f.names {
		if _, skip := dropped[name]; skip {
			continue
		}
		out.names = append(out.names, name)
		out.cols[name] = append([]float64(nil), f.cols[name]...)
	}
	return out
}

// Matrix returns the frame as a row-major table in column insertion
// order, one row per sample.
func (f *Frame) Matrix() [][]float64 {
	rows := make([][]float64, f.n)
	for i := range rows {
		row := make([]float64, len(f.names))
		for j, name := range f.names {
			row[j] = f.cols[name][i]
		}
		rows[i] = row
	}
	return rows
}
