package thermal

import (
	"encoding/json"
	"fmt"
)

// noPaybackDisplayYears is the display cutoff rendered at the JSON
// boundary when an investment never pays back. It exists only for API
// compatibility and never participates in internal arithmetic.
const noPaybackDisplayYears = 999.0

// Payback is the payback horizon of a renovation investment. When
// Achievable is false the investment does not pay back within any
// horizon (annual savings are zero).
type Payback struct {
	Years      float64
	Achievable bool
}

// FinitePayback returns an achievable payback of the given years.
func FinitePayback(years float64) Payback {
	return Payback{Years: years, Achievable: true}
}

// NoPayback marks an investment that never recoups its cost.
func NoPayback() Payback {
	return Payback{}
}

// MarshalJSON renders the payback as a plain number, substituting the
// display cutoff for the no-payback case.
func (p Payback) MarshalJSON() ([]byte, error) {
	if !p.Achievable {
		return json.Marshal(noPaybackDisplayYears)
	}
	return json.Marshal(p.Years)
}

// UnmarshalJSON parses the boundary representation; values at or above
// the display cutoff decode as no-payback.
func (p *Payback) UnmarshalJSON(data []byte) error {
	var years float64
	if err := json.Unmarshal(data, &years); err != nil {
		return err
	}
	if years >= noPaybackDisplayYears {
		*p = NoPayback()
		return nil
	}
	*p = FinitePayback(years)
	return nil
}

// RenovationProposal is the cost/benefit outcome of upgrading every
// poor or critical component to current building code.
type RenovationProposal struct {
	ProjectedUValue      float64  `json:"projectedUValue"`
	ProjectedEnergyLabel string   `json:"projectedEnergyLabel"`
	EstimatedCostEur     float64  `json:"estimatedCostEur"`
	AnnualSavingsEur     float64  `json:"annualSavingsEur"`
	PaybackYears         Payback  `json:"paybackYears"`
	ROIPercentage        float64  `json:"roiPercentage"`
	RecommendedActions   []string `json:"recommendedActions"`
}

// upgradeTargetYear projects post-upgrade U-values as if the component
// were built to current code.
var upgradeTargetYear = 2020

// ComputeProposal builds a renovation proposal from rated components.
// Only poor and critical components are selected for upgrade; good and
// fair components keep their current annual heat loss in the
// projection, so the proposal never recommends downgrading a component
// that is already adequate. With no upgrade candidates the proposal is
// well-formed with zero cost and savings and no actions.
func ComputeProposal(components []ComponentAnalysis, currentLabel string, currentAnnualCostEur float64) RenovationProposal {
	_ = currentLabel

	totalCost := 0.0
	projectedHeatLossKwh := 0.0
	totalAreaM2 := 0.0
	actions := make([]string, 0, len(components))

	for _, c := range components {
		totalAreaM2 += c.AreaM2
		if c.Condition != ConditionPoor && c.Condition != ConditionCritical {
			projectedHeatLossKwh += c.AnnualHeatLossKwh
			continue
		}

		totalCost += upgradeCostPerM2(c.ComponentType) * c.AreaM2

		newU := EstimateByAge(c.ComponentType, &upgradeTargetYear)
		projectedHeatLossKwh += HeatLossAnnual(newU, c.AreaM2)

		actions = append(actions, fmt.Sprintf(
			"Upgrade %s (%.2f m²): U-value %.3f → %.3f W/m²·K",
			c.ComponentType, c.AreaM2, c.UValue, newU,
		))
	}

	projectedCostEur := projectedHeatLossKwh * EnergyPriceEurPerKwh
	annualSavingsEur := currentAnnualCostEur - projectedCostEur
	if annualSavingsEur < 0 {
		annualSavingsEur = 0
	}

	payback := NoPayback()
	if annualSavingsEur > 0 {
		payback = FinitePayback(round1(totalCost / annualSavingsEur))
	}

	roi := 0.0
	if totalCost > 0 {
		roi = round1(annualSavingsEur / totalCost * 100)
	}

	projectedUValue := 0.0
	if len(components) > 0 {
		denomArea := totalAreaM2
		if denomArea < 1 {
			denomArea = 1
		}
		projectedUValue = round3(projectedHeatLossKwh / denomArea / HeatingDegreeDays / 24 * 1000)
	}

	projectedKwhPerM2 := 0.0
	if totalAreaM2 > 0 {
		floorAreaM2 := totalAreaM2 * 2.5
		if floorAreaM2 < minNominalFloorAreaM2 {
			floorAreaM2 = minNominalFloorAreaM2
		}
		projectedKwhPerM2 = projectedHeatLossKwh / floorAreaM2
	}

	return RenovationProposal{
		ProjectedUValue:      projectedUValue,
		ProjectedEnergyLabel: ClassifyEnergyLabel(projectedKwhPerM2),
		EstimatedCostEur:     round2(totalCost),
		AnnualSavingsEur:     round2(annualSavingsEur),
		PaybackYears:         payback,
		ROIPercentage:        roi,
		RecommendedActions:   actions,
	}
}

func upgradeCostPerM2(componentType string) float64 {
	if entry, ok := upgradeCosts[componentType]; ok {
		return entry.CostPerM2
	}
	return defaultUpgradeCostPerM2
}
