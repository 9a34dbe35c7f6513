package thermal

// Component condition ratings, best to worst.
const (
	ConditionGood     = "good"
	ConditionFair     = "fair"
	ConditionPoor     = "poor"
	ConditionCritical = "critical"
)

// RateCondition classifies a U-value into a condition using per-type
// ascending thresholds. Component types without a dedicated threshold
// set use the generic thresholds; every real U-value maps to exactly
// one condition.
func RateCondition(componentType string, uValue float64) string {
	t, ok := conditionThresholdsByType[componentType]
	if !ok {
		t = genericConditionThresholds
	}
	switch {
	case uValue <= t.Good:
		return ConditionGood
	case uValue <= t.Fair:
		return ConditionFair
	case uValue <= t.Poor:
		return ConditionPoor
	default:
		return ConditionCritical
	}
}

// ClassifyEnergyLabel maps annual energy use per square meter to the
// A..G scale. Bands are half-open 50 kWh/m² intervals with G open-ended
// above 300. Negative inputs are a caller error and are treated as 0.
func ClassifyEnergyLabel(kwhPerM2 float64) string {
	if kwhPerM2 < 0 {
		kwhPerM2 = 0
	}
	for _, band := range energyLabelBands {
		if kwhPerM2 < band.UpperEx {
			return band.Label
		}
	}
	return worstEnergyLabel
}
