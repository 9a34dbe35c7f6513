package thermal

import (
	"bytes"
	"encoding/json"
	"math"
	"testing"

	"facadescan-backend/internal/detect"
)

func TestAnalyzeComponentsEmpty(t *testing.T) {
	result := AnalyzeComponents(nil, 0)

	if len(result.Components) != 0 {
		t.Fatalf("expected no components, got %d", len(result.Components))
	}
	if result.OverallUValue != 0 {
		t.Fatalf("expected zero overall U-value, got %v", result.OverallUValue)
	}
	if result.EnergyLabel != "A" {
		t.Fatalf("expected label A for an empty building, got %s", result.EnergyLabel)
	}
	if result.TotalAnnualHeatLossKwh != 0 || result.AnnualEnergyCostEur != 0 {
		t.Fatalf("expected zero totals, got %v kWh / %v EUR", result.TotalAnnualHeatLossKwh, result.AnnualEnergyCostEur)
	}
	if result.Renovation.EstimatedCostEur != 0 || len(result.Renovation.RecommendedActions) != 0 {
		t.Fatalf("expected an empty but well-formed proposal, got %+v", result.Renovation)
	}
}

func TestAnalyzeComponentsSingleFacade(t *testing.T) {
	detections := []detect.Detection{
		{ComponentType: detect.ClassFacade, Confidence: 0.9, AreaPixels: 500000},
	}
	result := AnalyzeComponents(detections, 0.001)

	if len(result.Components) != 1 {
		t.Fatalf("expected one component, got %d", len(result.Components))
	}
	c := result.Components[0]
	if c.AreaM2 != 500 {
		t.Fatalf("expected 500 m², got %v", c.AreaM2)
	}
	if c.UValue != 0.408 {
		t.Fatalf("expected U-value 0.408, got %v", c.UValue)
	}
	if c.HeatLossW != 4080 {
		t.Fatalf("expected 4080 W, got %v", c.HeatLossW)
	}
	if c.AnnualHeatLossKwh != 14688 {
		t.Fatalf("expected 14688 kWh, got %v", c.AnnualHeatLossKwh)
	}
	if c.Condition != ConditionFair {
		t.Fatalf("expected fair condition, got %s", c.Condition)
	}
	if c.HeatLossSharePct != 100 {
		t.Fatalf("expected 100%% share, got %v", c.HeatLossSharePct)
	}
	if result.OverallUValue != 0.408 {
		t.Fatalf("expected overall 0.408, got %v", result.OverallUValue)
	}
	// 14688 kWh over 1250 m² nominal floor area is 11.75 kWh/m².
	if result.EnergyLabel != "A" {
		t.Fatalf("expected label A, got %s", result.EnergyLabel)
	}
	if result.AnnualEnergyCostEur != 1468.8 {
		t.Fatalf("expected 1468.80 EUR, got %v", result.AnnualEnergyCostEur)
	}
}

func TestAnalyzeComponentsSharesSumToHundred(t *testing.T) {
	detections := []detect.Detection{
		{ComponentType: detect.ClassWindow, Confidence: 0.8, AreaPixels: 20000},
		{ComponentType: detect.ClassFacade, Confidence: 0.9, AreaPixels: 300000},
		{ComponentType: detect.ClassRoof, Confidence: 0.7, AreaPixels: 150000},
	}
	result := AnalyzeComponents(detections, 0.001)

	sum := 0.0
	for _, c := range result.Components {
		if c.HeatLossSharePct < 0 {
			t.Fatalf("negative share for %s", c.ComponentType)
		}
		sum += c.HeatLossSharePct
	}
	if math.Abs(sum-100) > 0.5 {
		t.Fatalf("expected shares near 100, got %v", sum)
	}
}

func TestAnalyzeComponentsMinimumArea(t *testing.T) {
	detections := []detect.Detection{
		{ComponentType: detect.ClassWindow, Confidence: 0.9, AreaPixels: 10},
	}
	result := AnalyzeComponents(detections, 0.001)

	if result.Components[0].AreaM2 != 0.5 {
		t.Fatalf("expected minimum area 0.5 m², got %v", result.Components[0].AreaM2)
	}
}

func TestAnalyzeComponentsSanitizesMalformedDetections(t *testing.T) {
	detections := []detect.Detection{
		{ComponentType: "", Confidence: math.NaN(), AreaPixels: -50},
		{ComponentType: detect.ClassWindow, Confidence: 2.0, AreaPixels: 10000},
	}
	result := AnalyzeComponents(detections, 0.001)

	if len(result.Components) != 2 {
		t.Fatalf("expected both detections analyzed, got %d", len(result.Components))
	}
	unknown := result.Components[0]
	if unknown.ComponentType != detect.ClassUnknown {
		t.Fatalf("expected empty type defaulted to unknown, got %s", unknown.ComponentType)
	}
	if unknown.AreaM2 != 0.5 {
		t.Fatalf("expected negative area floored to 0.5 m², got %v", unknown.AreaM2)
	}
	// NaN confidence defaults to 0.5: factor 1.1 on the facade 0.4 fallback.
	if unknown.UValue != 0.44 {
		t.Fatalf("expected 0.44, got %v", unknown.UValue)
	}

	window := result.Components[1]
	// Confidence above 1 clamps to 1: no uncertainty penalty.
	if window.UValue != 1.8 {
		t.Fatalf("expected 1.8, got %v", window.UValue)
	}
}

func TestAnalyzeComponentsInvalidRatioUsesDefault(t *testing.T) {
	detections := []detect.Detection{
		{ComponentType: detect.ClassFacade, Confidence: 1.0, AreaPixels: 500000},
	}
	withDefault := AnalyzeComponents(detections, 0)
	explicit := AnalyzeComponents(detections, DefaultPixelToM2Ratio)
	if withDefault.Components[0].AreaM2 != explicit.Components[0].AreaM2 {
		t.Fatalf("expected ratio <= 0 to fall back to the default")
	}
}

func TestAnalyzeComponentsDeterministic(t *testing.T) {
	detections := []detect.Detection{
		{ComponentType: detect.ClassWindow, Confidence: 0.8, AreaPixels: 20000},
		{ComponentType: detect.ClassFacade, Confidence: 0.9, AreaPixels: 300000},
	}

	first, err := json.Marshal(AnalyzeComponents(detections, 0.001))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	second, err := json.Marshal(AnalyzeComponents(detections, 0.001))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("expected identical serialized results for identical input")
	}
}
