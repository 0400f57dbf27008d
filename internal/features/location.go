// Eventlens - Event Recommendation and Evaluation Engine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventlens/eventlens

package features

import "math"

const (
	earthRadiusKM = 6371.0

	localRadiusKM  = 25.0
	travelSpeedKMH = 40.0
)

// Distance tier breakpoints in kilometers; tiers are coded
// 0=very_near (<5), 1=near (<25), 2=medium (<100), 3=far.
var distanceTierEdges = []float64{5, 25, 100}

// ExtractLocation appends distance-derived columns when both user and
// event coordinates are present: haversine distance, tier code, local
// flag and estimated travel minutes at 40 km/h. Same-city and
// same-region flags are added independently whenever the categorical
// fields appear, so partially-located datasets still get them.
func ExtractLocation(samples []Sample, f *Frame) error {
	n := len(samples)

	if anyField(samples, hasCoordinates) {
		distance := make([]float64, n)
		tier := make([]float64, n)
		isLocal := make([]float64, n)
		travelMinutes := make([]float64, n)

		for i := range samples {
			if !hasCoordinates(&samples[i]) {
				continue
			}
			d := haversineKM(
				*samples[i].UserLat, *samples[i].UserLon,
				*samples[i].EventLat, *samples[i].EventLon,
			)
			distance[i] = d
			tier[i] = distanceTier(d)
			if d <= localRadiusKM {
				isLocal[i] = 1
			}
			travelMinutes[i] = d / travelSpeedKMH * 60
		}

		cols := []struct {
			name   string
			values []float64
		}{
			{"distance_km", distance},
			{"distance_tier", tier},
			{"is_local", isLocal},
			{"travel_minutes", travelMinutes},
		}
		for _, c := range cols {
			if err := f.AddColumn(c.name, c.values); err != nil {
				return err
			}
		}
	}

	if anyField(samples, func(s *Sample) bool { return s.UserCity != "" && s.EventCity != "" }) {
		sameCity := make([]float64, n)
		for i := range samples {
			if samples[i].UserCity != "" && samples[i].UserCity == samples[i].EventCity {
				sameCity[i] = 1
			}
		}
		if err := f.AddColumn("same_city", sameCity); err != nil {
			return err
		}
	}

	if anyField(samples, func(s *Sample) bool { return s.UserRegion != "" && s.EventRegion != "" }) {
		sameRegion := make([]float64, n)
		for i := range samples {
			if samples[i].UserRegion != "" && samples[i].UserRegion == samples[i].EventRegion {
				sameRegion[i] = 1
			}
		}
		if err := f.AddColumn("same_region", sameRegion); err != nil {
			return err
		}
	}

	return nil
}

func hasCoordinates(s *Sample) bool {
	return s.UserLat != nil && s.UserLon != nil && s.EventLat != nil && s.EventLon != nil
}

// haversineKM computes the great-circle distance between two points.
func haversineKM(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return 2 * earthRadiusKM * math.Asin(math.Sqrt(a))
}

func distanceTier(d float64) float64 {
	for tier, edge := range distanceTierEdges {
		if d < edge {
			return float64(tier)
		}
	}
	return float64(len(distanceTierEdges))
}
