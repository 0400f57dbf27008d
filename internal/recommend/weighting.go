// Eventlens - Event Recommendation and Evaluation Engine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventlens/eventlens

package recommend

import (
	"math"
	"time"
)

// Weighting constants. Each factor is bounded before combination and the
// combined product is clipped to [minCombinedWeight, maxCombinedWeight]
// before application, so effective ratings always land in
// [minEffectiveRating, maxEffectiveRating].
const (
	recencyHalfLifeDays = 30.0

	frequencyBase  = 0.9
	frequencyRange = 0.2

	promotionBoost = 1.15
	calendarBoost  = 1.10

	trustBase         = 0.9
	trustRange        = 0.3
	defaultTrustScore = 70.0

	ratingBiasStep = 0.05
	ratingBiasCap  = 2.0

	notificationBoost = 1.2

	minCombinedWeight = 0.5
	maxCombinedWeight = 2.0

	minEffectiveRating = 0.5
	maxEffectiveRating = 5.0
)

const defaultChannel = "generic"

// WeightInteractions converts raw interaction records into the three
// training columns, replacing the raw rating with a quality-adjusted
// effective rating. The reference time now anchors recency decay.
//
// Every record must carry UserID, EventID and Rating; a missing required
// field aborts with a ValidationError and nothing is produced.
func WeightInteractions(records []InteractionRecord, now time.Time) ([]Rating, error) {
	for i := range records {
		if records[i].UserID == "" {
			return nil, newValidationError("record %d missing required field user_id", i)
		}
		if records[i].EventID == "" {
			return nil, newValidationError("record %d missing required field event_id", i)
		}
		if records[i].Rating == nil {
			return nil, newValidationError("record %d missing required field rating", i)
		}
	}

	channelCounts, maxChannelCount := countUserChannels(records)
	userMeans := userMeanRatings(records)

	out := make([]Rating, 0, len(records))
	for i := range records {
		rec := &records[i]

		w := recencyWeight(rec.Timestamp, now)
		w *= frequencyWeight(channelCounts[userChannelKey(rec)], maxChannelCount)
		if rec.IsPromotionClick {
			w *= promotionBoost
		}
		if rec.CalendarSelected {
			w *= calendarBoost
		}
		w *= trustWeight(rec.OrganizerTrustScore)
		w *= ratingBiasWeight(sourceRating(rec), userMeans[rec.UserID])
		if rec.NotificationAction.Engaged() {
			w *= notificationBoost
		}

		w = clip(w, minCombinedWeight, maxCombinedWeight)

		out = append(out, Rating{
			UserID:  rec.UserID,
			EventID: rec.EventID,
			Rating:  clip(*rec.Rating*w, minEffectiveRating, maxEffectiveRating),
		})
	}

	return out, nil
}

// recencyWeight decays exponentially with a 30-day characteristic time.
// Records without a timestamp are treated as current (weight 1).
func recencyWeight(ts *time.Time, now time.Time) float64 {
	if ts == nil {
		return 1.0
	}
	days := now.Sub(*ts).Hours() / 24.0
	if days < 0 {
		days = 0
	}
	return math.Exp(-days / recencyHalfLifeDays)
}

// frequencyWeight rewards repeat engagement on a channel, bounded to
// [0.9, 1.1] relative to the most active user-channel pair.
func frequencyWeight(count, maxCount int) float64 {
	if maxCount <= 0 {
		return frequencyBase
	}
	return frequencyBase + frequencyRange*float64(count)/float64(maxCount)
}

// trustWeight maps organizer trust in [0,100] to [0.9, 1.2].
func trustWeight(score *float64) float64 {
	t := defaultTrustScore
	if score != nil {
		t = clip(*score, 0, 100)
	}
	return trustBase + trustRange*t/100.0
}

// ratingBiasWeight boosts records that deviate from the user's mean
// rating, capped at +10%.
func ratingBiasWeight(rating, userMean float64) float64 {
	return 1.0 + ratingBiasStep*clip(math.Abs(rating-userMean), 0, ratingBiasCap)
}

// sourceRating prefers the explicit rating value over the raw signal.
func sourceRating(rec *InteractionRecord) float64 {
	if rec.RatingValue != nil {
		return *rec.RatingValue
	}
	return *rec.Rating
}

type userChannel struct {
	user    string
	channel string
}

func userChannelKey(rec *InteractionRecord) userChannel {
	ch := rec.Channel
	if ch == "" {
		ch = defaultChannel
	}
	return userChannel{user: rec.UserID, channel: ch}
}

// countUserChannels tallies records per (user, channel) pair and returns
// the maximum count across all pairs.
func countUserChannels(records []InteractionRecord) (map[userChannel]int, int) {
	counts := make(map[userChannel]int)
	maxCount := 0
	for i := range records {
		key := userChannelKey(&records[i])
		counts[key]++
		if counts[key] > maxCount {
			maxCount = counts[key]
		}
	}
	return counts, maxCount
}

// userMeanRatings computes each user's mean source rating.
func userMeanRatings(records []InteractionRecord) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for i := range records {
		r := sourceRating(&records[i])
		sums[records[i].UserID] += r
		counts[records[i].UserID]++
	}
	means := make(map[string]float64, len(sums))
	for user, sum := range sums {
		means[user] = sum / float64(counts[user])
	}
	return means
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
