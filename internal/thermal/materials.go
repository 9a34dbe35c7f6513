// Package thermal implements the thermal analysis engine: U-value
// estimation, heat-loss aggregation, condition and energy-label
// classification, and renovation economics. All functions are pure and
// safe for unrestricted concurrent use; the reference tables below are
// read-only and initialized once at process start.
//
// Calculations follow EN ISO 6946 (thermal resistance of building
// components) with European building-stock reference values.
package thermal

// Standard surface resistances (m²·K/W).
const (
	rsiInternal = 0.13
	rseExternal = 0.04
)

// Reference heating season parameters (Central Europe).
const (
	HeatingDegreeDays    = 3000.0
	EnergyPriceEurPerKwh = 0.10
	defaultDeltaT        = 20.0
)

// DefaultMaterial is substituted for unrecognized material keys.
// Robustness over precision: an unknown key degrades the estimate to a
// brick-equivalent wall instead of failing the analysis.
const DefaultMaterial = "brick"

// thermalConductivity maps material keys to λ values in W/m·K.
var thermalConductivity = map[string]float64{
	// Glass types
	"single_glass":       5.8,
	"double_glass":       2.8,
	"double_glass_low_e": 1.6,
	"triple_glass":       0.8,
	"triple_glass_low_e": 0.6,

	// Wall materials
	"brick":            0.84,
	"concrete":         1.75,
	"aerated_concrete": 0.16,
	"limestone":        1.50,
	"wood":             0.15,
	"steel":            50.0,

	// Insulation materials
	"eps_foam":     0.035,
	"xps_foam":     0.030,
	"mineral_wool": 0.040,
	"polyurethane": 0.025,
	"cellulose":    0.040,

	// Roofing
	"clay_tile":     1.00,
	"concrete_tile": 1.50,
	"metal_sheet":   50.0,
	"slate":         2.00,
}

// ageBandUValues holds reference U-values (W/m²·K) per construction era.
type ageBandUValues struct {
	Pre1970  float64
	From1970 float64
	From1990 float64
	Post2010 float64
}

// standardUValues is the European building stock reference table.
var standardUValues = map[string]ageBandUValues{
	"window": {Pre1970: 5.0, From1970: 3.0, From1990: 1.8, Post2010: 1.1},
	"facade": {Pre1970: 1.5, From1970: 0.8, From1990: 0.4, Post2010: 0.2},
	"roof":   {Pre1970: 1.2, From1970: 0.6, From1990: 0.3, Post2010: 0.15},
	"door":   {Pre1970: 3.5, From1970: 2.5, From1990: 1.8, Post2010: 1.3},
	"floor":  {Pre1970: 1.0, From1970: 0.6, From1990: 0.35, Post2010: 0.2},
}

// FallbackComponentType supplies age bands for unrecognized component
// types. Facade values are the most representative of opaque envelope
// area, which dominates unknown detections.
const FallbackComponentType = "facade"

// conditionThresholds are ascending U-value cut points: at or below
// Good rates good, at or below Fair rates fair, at or below Poor rates
// poor, above Poor rates critical.
type conditionThresholds struct {
	Good float64
	Fair float64
	Poor float64
}

var conditionThresholdsByType = map[string]conditionThresholds{
	"window": {Good: 1.3, Fair: 2.0, Poor: 3.0},
	"facade": {Good: 0.3, Fair: 0.5, Poor: 0.8},
	"roof":   {Good: 0.2, Fair: 0.35, Poor: 0.5},
	"door":   {Good: 1.8, Fair: 2.5, Poor: 3.5},
}

// genericConditionThresholds rate component types without a dedicated
// threshold set.
var genericConditionThresholds = conditionThresholds{Good: 0.5, Fair: 1.0, Poor: 2.0}

// energyLabelBands partition kWh/m²/year into labels A..F in half-open
// 50-wide bands; everything at or above the last bound is G.
var energyLabelBands = []struct {
	Label   string
	UpperEx float64
}{
	{"A", 50},
	{"B", 100},
	{"C", 150},
	{"D", 200},
	{"E", 250},
	{"F", 300},
}

const worstEnergyLabel = "G"

// upgradeCost is the renovation strategy and unit cost for one
// component type (EUR per m², typical European market).
type upgradeCost struct {
	Strategy  string
	CostPerM2 float64
}

var upgradeCosts = map[string]upgradeCost{
	"window": {Strategy: "replacement", CostPerM2: 350},
	"door":   {Strategy: "replacement", CostPerM2: 500},
	"facade": {Strategy: "insulation", CostPerM2: 120},
	"roof":   {Strategy: "insulation", CostPerM2: 100},
	"floor":  {Strategy: "insulation", CostPerM2: 80},
}

// defaultUpgradeCostPerM2 applies to component types missing from the
// cost table.
const defaultUpgradeCostPerM2 = 100.0
