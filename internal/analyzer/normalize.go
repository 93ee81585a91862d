package analyzer

import "agriloop-backend/internal/domain"

// Fallback returns the analysis recorded when the analyzer is unavailable or
// returns garbage. Matches the analyzer's own documented fallback contract.
func Fallback() domain.WasteAnalysis {
	return domain.WasteAnalysis{
		ResidueType:              "Unknown Biomass",
		SuggestedUses:            domain.StringList{"Composting", "Biomass Fuel"},
		TransportFeasibility:     "Medium",
		EnvironmentalImpactScore: 5,
		EstimatedPriceRange:      "₹800 - ₹1200",
		Confidence:               0.5,
		MoistureContent:          "Unknown",
		PurityScore:              50,
		CO2Saved:                 100,
	}
}

// Normalize resolves every optional field of an analysis to an explicit
// default, once, at the analyzer boundary. A nil or empty analysis becomes
// the full fallback record; a partial one keeps what it has.
func Normalize(a *domain.WasteAnalysis) domain.WasteAnalysis {
	fb := Fallback()
	if a == nil || a.ResidueType == "" {
		return fb
	}
	out := *a
	if len(out.SuggestedUses) == 0 {
		out.SuggestedUses = fb.SuggestedUses
	}
	if out.TransportFeasibility == "" {
		out.TransportFeasibility = fb.TransportFeasibility
	}
	if out.EnvironmentalImpactScore < 1 || out.EnvironmentalImpactScore > 10 {
		out.EnvironmentalImpactScore = fb.EnvironmentalImpactScore
	}
	if out.EstimatedPriceRange == "" {
		out.EstimatedPriceRange = fb.EstimatedPriceRange
	}
	if out.Confidence <= 0 || out.Confidence > 1 {
		out.Confidence = fb.Confidence
	}
	if out.MoistureContent == "" {
		out.MoistureContent = fb.MoistureContent
	}
	if out.PurityScore <= 0 || out.PurityScore > 100 {
		out.PurityScore = fb.PurityScore
	}
	if out.CO2Saved <= 0 {
		out.CO2Saved = fb.CO2Saved
	}
	return out
}
