// Eventlens - Event Recommendation and Evaluation Engine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventlens/eventlens

package evaluation

// BusinessKPIResult reports engagement and conversion outcomes for a
// recommendation list.
type BusinessKPIResult struct {
	CTR               float64 `json:"ctr"`
	ConversionRate    float64 `json:"conversion_rate"`
	ClickToConversion float64 `json:"click_to_conversion"`
}

// BusinessKPIs computes click-through, conversion and click-to-conversion
// rates for a recommendation list. interactions maps item to the observed
// interaction type ("click" or "view" count as engagement); conversions
// lists items that converted. All rates are 0 on empty denominators.
func BusinessKPIs(recommended []string, interactions map[string]string, conversions []string) BusinessKPIResult {
	if len(recommended) == 0 {
		return BusinessKPIResult{}
	}

	converted := make(map[string]struct{}, len(conversions))
	for _, id := range conversions {
		converted[id] = struct{}{}
	}

	engaged := 0
	conversionHits := 0
	for _, id := range recommended {
		switch interactions[id] {
		case "click", "view":
			engaged++
		}
		if _, ok := converted[id]; ok {
			conversionHits++
		}
	}

	result := BusinessKPIResult{
		CTR:            float64(engaged) / float64(len(recommended)),
		ConversionRate: float64(conversionHits) / float64(len(recommended)),
	}
	if engaged > 0 {
		result.ClickToConversion = float64(conversionHits) / float64(engaged)
	}
	return result
}
