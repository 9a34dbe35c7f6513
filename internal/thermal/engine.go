package thermal

import (
	"math"

	"facadescan-backend/internal/detect"
)

// DefaultPixelToM2Ratio converts detected pixel areas to square meters
// when the caller supplies no calibration.
const DefaultPixelToM2Ratio = 0.001

const (
	// minComponentAreaM2 floors per-component areas so degenerate
	// detections cannot produce degenerate economics.
	minComponentAreaM2 = 0.5

	// Nominal floor area is estimated from envelope area; a building is
	// never assumed smaller than 50 m² of floor.
	floorAreaFactor       = 2.5
	minNominalFloorAreaM2 = 50.0

	// defaultConfidence substitutes for missing or unusable confidence
	// values on malformed detections.
	defaultConfidence = 0.5
)

// ComponentAnalysis is the thermal assessment of one detected component.
type ComponentAnalysis struct {
	ComponentType     string  `json:"componentType"`
	AreaM2            float64 `json:"areaM2"`
	UValue            float64 `json:"uValue"`
	HeatLossW         float64 `json:"heatLossW"`
	AnnualHeatLossKwh float64 `json:"annualHeatLossKwh"`
	Condition         string  `json:"condition"`
	HeatLossSharePct  float64 `json:"heatLossSharePct"`
}

// AggregateResult is the building-level thermal assessment.
type AggregateResult struct {
	Components             []ComponentAnalysis `json:"components"`
	OverallUValue          float64             `json:"overallUValue"`
	EnergyLabel            string              `json:"energyLabel"`
	TotalAnnualHeatLossKwh float64             `json:"totalAnnualHeatLossKwh"`
	AnnualEnergyCostEur    float64             `json:"annualEnergyCostEur"`
	Renovation             RenovationProposal  `json:"renovation"`
}

// AnalyzeComponents runs the full physics pass over a detection list:
// per-component U-value estimation, heat loss, condition rating,
// area-weighted aggregation, energy labelling, and the renovation
// proposal. An empty detection list is valid and yields a well-formed
// zero-valued result. Malformed detections are defaulted, never fatal.
func AnalyzeComponents(detections []detect.Detection, pixelToM2Ratio float64) AggregateResult {
	if pixelToM2Ratio <= 0 {
		pixelToM2Ratio = DefaultPixelToM2Ratio
	}

	components := make([]ComponentAnalysis, 0, len(detections))
	totalHeatLossKwh := 0.0
	totalAreaM2 := 0.0
	weightedUSum := 0.0

	for _, det := range detections {
		componentType, confidence, areaPixels := sanitizeDetection(det)

		areaM2 := areaPixels * pixelToM2Ratio
		if areaM2 < minComponentAreaM2 {
			areaM2 = minComponentAreaM2
		}
		areaM2 = round2(areaM2)

		uValue := EstimateFromDetection(componentType, confidence, nil)

		component := ComponentAnalysis{
			ComponentType:     componentType,
			AreaM2:            areaM2,
			UValue:            uValue,
			HeatLossW:         HeatLossInstantaneous(uValue, areaM2, 0),
			AnnualHeatLossKwh: HeatLossAnnual(uValue, areaM2),
			Condition:         RateCondition(componentType, uValue),
		}
		components = append(components, component)
		totalHeatLossKwh += component.AnnualHeatLossKwh
		totalAreaM2 += areaM2
		weightedUSum += uValue * areaM2
	}

	for i := range components {
		if totalHeatLossKwh > 0 {
			components[i].HeatLossSharePct = round1(components[i].AnnualHeatLossKwh / totalHeatLossKwh * 100)
		}
	}

	overallUValue := 0.0
	if totalAreaM2 > 0 {
		overallUValue = round3(weightedUSum / totalAreaM2)
	}

	kwhPerM2 := 0.0
	if totalAreaM2 > 0 {
		floorAreaM2 := totalAreaM2 * floorAreaFactor
		if floorAreaM2 < minNominalFloorAreaM2 {
			floorAreaM2 = minNominalFloorAreaM2
		}
		kwhPerM2 = totalHeatLossKwh / floorAreaM2
	}
	energyLabel := ClassifyEnergyLabel(kwhPerM2)

	annualCostEur := round2(totalHeatLossKwh * EnergyPriceEurPerKwh)

	return AggregateResult{
		Components:             components,
		OverallUValue:          overallUValue,
		EnergyLabel:            energyLabel,
		TotalAnnualHeatLossKwh: round2(totalHeatLossKwh),
		AnnualEnergyCostEur:    annualCostEur,
		Renovation:             ComputeProposal(components, energyLabel, annualCostEur),
	}
}

// sanitizeDetection defaults malformed detection fields instead of
// aborting: empty types become unknown, out-of-range confidences are
// clamped, negative or non-finite areas become zero.
func sanitizeDetection(det detect.Detection) (componentType string, confidence, areaPixels float64) {
	componentType = det.ComponentType
	if componentType == "" {
		componentType = detect.ClassUnknown
	}

	confidence = det.Confidence
	if math.IsNaN(confidence) {
		confidence = defaultConfidence
	} else if confidence < 0 {
		confidence = 0
	} else if confidence > 1 {
		confidence = 1
	}

	areaPixels = det.AreaPixels
	if areaPixels < 0 || math.IsNaN(areaPixels) || math.IsInf(areaPixels, 0) {
		areaPixels = 0
	}
	return componentType, confidence, areaPixels
}
