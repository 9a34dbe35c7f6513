package thermal

import (
	"math"

	"facadescan-backend/internal/shared/telemetry"
)

// CalculateULayer computes the U-value of a single-layer component:
// R_layer = thickness / λ, U = 1 / (Rsi + R_layer + Rse).
// Unknown material keys fall back to DefaultMaterial and log a warning
// rather than failing the computation.
func CalculateULayer(materialKey string, thicknessM float64) float64 {
	conductivity, ok := thermalConductivity[materialKey]
	if !ok {
		telemetry.Warn("thermal.unknown_material", map[string]any{
			"material": materialKey,
			"fallback": DefaultMaterial,
		})
		conductivity = thermalConductivity[DefaultMaterial]
	}

	rLayer := thicknessM / conductivity
	rTotal := rsiInternal + rLayer + rseExternal
	return round3(1.0 / rTotal)
}

// EstimateByAge returns the reference U-value for a component type and
// construction year. Era buckets are right-open: a year below 1970 is
// pre_1970, below 1990 is 1970_1990, below 2010 is 1990_2010, anything
// else is post_2010. A nil year defaults to the 1990_2010 bucket, the
// typical existing building stock assumption.
func EstimateByAge(componentType string, year *int) float64 {
	bands, ok := standardUValues[componentType]
	if !ok {
		telemetry.Warn("thermal.unknown_component_type", map[string]any{
			"component_type": componentType,
			"fallback":       FallbackComponentType,
		})
		bands = standardUValues[FallbackComponentType]
	}

	if year == nil {
		return bands.From1990
	}
	switch {
	case *year < 1970:
		return bands.Pre1970
	case *year < 1990:
		return bands.From1970
	case *year < 2010:
		return bands.From1990
	default:
		return bands.Post2010
	}
}

// EstimateFromDetection estimates a U-value from a detection when the
// exact material is unknown. Lower detector confidence scales the
// age-based estimate up by at most 20%: epistemic uncertainty biases
// the result conservatively (worse), never better.
func EstimateFromDetection(componentType string, confidence float64, year *int) float64 {
	uValue := EstimateByAge(componentType, year)
	uncertaintyFactor := 1.0 + (1.0-confidence)*0.2
	return round3(uValue * uncertaintyFactor)
}

// HeatLossInstantaneous computes Q = U × A × ΔT in watts. A deltaT of
// zero or below selects the default indoor/outdoor difference of 20 K.
func HeatLossInstantaneous(uValue, areaM2, deltaT float64) float64 {
	if deltaT <= 0 {
		deltaT = defaultDeltaT
	}
	return round2(uValue * areaM2 * deltaT)
}

// HeatLossAnnual computes the annual heat loss in kWh using heating
// degree days: Q = U × A × HDD × 24 / 1000.
func HeatLossAnnual(uValue, areaM2 float64) float64 {
	return round2(uValue * areaM2 * HeatingDegreeDays * 24 / 1000)
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
