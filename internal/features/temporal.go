// Eventlens - Event Recommendation and Evaluation Engine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventlens/eventlens

package features

import (
	"math"
	"time"
)

const lastMinuteDays = 7.0

// ExtractTemporal appends time-derived columns: hour, day-of-week,
// weekend flag, cyclical sin/cos encodings (periods 24 and 7), season
// code 0..3, days since the event was created, days until the event
// starts and a last-minute flag (≤7 days out). Samples without any
// timestamp make the whole family a no-op; lead-time columns are only
// added when the corresponding event dates are present somewhere.
func ExtractTemporal(samples []Sample, f *Frame) error {
	if !anyTimestamp(samples) {
		return nil
	}

	n := len(samples)
	hour := make([]float64, n)
	dayOfWeek := make([]float64, n)
	isWeekend := make([]float64, n)
	hourSin := make([]float64, n)
	hourCos := make([]float64, n)
	daySin := make([]float64, n)
	dayCos := make([]float64, n)
	season := make([]float64, n)

	for i := range samples {
		ts := samples[i].Timestamp
		if ts == nil {
			continue
		}
		h := float64(ts.Hour())
		d := float64(int(ts.Weekday()))

		hour[i] = h
		dayOfWeek[i] = d
		if wd := ts.Weekday(); wd == time.Saturday || wd == time.Sunday {
			isWeekend[i] = 1
		}
		hourSin[i] = math.Sin(2 * math.Pi * h / 24)
		hourCos[i] = math.Cos(2 * math.Pi * h / 24)
		daySin[i] = math.Sin(2 * math.Pi * d / 7)
		dayCos[i] = math.Cos(2 * math.Pi * d / 7)
		season[i] = float64((int(ts.Month())%12+3)/3 - 1)
	}

	cols := []struct {
		name   string
		values []float64
	}{
		{"hour", hour},
		{"day_of_week", dayOfWeek},
		{"is_weekend", isWeekend},
		{"hour_sin", hourSin},
		{"hour_cos", hourCos},
		{"day_sin", daySin},
		{"day_cos", dayCos},
		{"season", season},
	}
	for _, c := range cols {
		if err := f.AddColumn(c.name, c.values); err != nil {
			return err
		}
	}

	if anyField(samples, func(s *Sample) bool { return s.EventCreatedAt != nil }) {
		sinceCreated := make([]float64, n)
		for i := range samples {
			if samples[i].Timestamp != nil && samples[i].EventCreatedAt != nil {
				sinceCreated[i] = samples[i].Timestamp.Sub(*samples[i].EventCreatedAt).Hours() / 24
			}
		}
		if err := f.AddColumn("days_since_created", sinceCreated); err != nil {
			return err
		}
	}

	if anyField(samples, func(s *Sample) bool { return s.EventStartsAt != nil }) {
		untilEvent := make([]float64, n)
		lastMinute := make([]float64, n)
		for i := range samples {
			if samples[i].Timestamp == nil || samples[i].EventStartsAt == nil {
				continue
			}
			days := samples[i].EventStartsAt.Sub(*samples[i].Timestamp).Hours() / 24
			untilEvent[i] = days
			if days <= lastMinuteDays {
				lastMinute[i] = 1
			}
		}
		if err := f.AddColumn("days_until_event", untilEvent); err != nil {
			return err
		}
		if err := f.AddColumn("is_last_minute", lastMinute); err != nil {
			return err
		}
	}

	return nil
}

func anyTimestamp(samples []Sample) bool {
	return anyField(samples, func(s *Sample) bool { return s.Timestamp != nil })
}

func anyField(samples []Sample, pred func(*Sample) bool) bool {
	for i := range samples {
		if pred(&samples[i]) {
			return true
		}
	}
	return false
}
