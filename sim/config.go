package sim

import (
	"fmt"
	"math"
)

// Dist parameterizes a normal sampling distribution as a (mean, spread) pair.
// Samples are always clipped to the consuming field's valid domain after
// drawing; wide spreads are safe by construction.
type Dist struct {
	Mean   float64 `yaml:"mean" json:"mean"`
	Spread float64 `yaml:"spread" json:"spread"`
}

// DeploymentTarget is a cumulative unit-count checkpoint: from FromMonth
// onward the business aims to have Units deployed or in the deployment
// pipeline.
type DeploymentTarget struct {
	FromMonth int `yaml:"from_month" json:"from_month"`
	Units     int `yaml:"units" json:"units"`
}

// SuccessThresholds are the policy levels that define the monotonic outcome
// flags. They are configuration, not constants: the source business documents
// disagree on exact values, so callers can set their own.
type SuccessThresholds struct {
	// ProfitabilityMargin is the gross margin above which a month counts as
	// having reached profitability.
	ProfitabilityMargin float64 `yaml:"profitability_margin" json:"profitability_margin"`
	// MilestoneRevenue and MilestoneUnits must both be exceeded in the same
	// month for the growth milestone to trigger.
	MilestoneRevenue float64 `yaml:"milestone_revenue" json:"milestone_revenue"`
	MilestoneUnits   int     `yaml:"milestone_units" json:"milestone_units"`
}

// SimulationInputs are the controllable decisions of one simulated business.
// Read-only for the lifetime of a run; trials never mutate them.
type SimulationInputs struct {
	Architecture   ArchitectureOption `yaml:"architecture" json:"architecture"`
	InitialFunding float64            `yaml:"initial_funding" json:"initial_funding"`
	// InitialCashOffset is deducted from funding before month 1 (e.g. cloud
	// credit commitments paid upfront).
	InitialCashOffset float64 `yaml:"initial_cash_offset" json:"initial_cash_offset"`

	// InitialUnits are live at month 0 with their capital already charged.
	InitialUnits int `yaml:"initial_units" json:"initial_units"`
	// DeploymentTargets must be sorted by FromMonth with non-decreasing Units.
	DeploymentTargets []DeploymentTarget `yaml:"deployment_targets" json:"deployment_targets"`

	// Pricing is the monthly price per customer by segment. Missing segments
	// fall back to the base-case price.
	Pricing map[CustomerSegment]float64 `yaml:"pricing" json:"pricing"`

	InitialTeamSize   int     `yaml:"initial_team_size" json:"initial_team_size"`
	TeamGrowthFactor  float64 `yaml:"team_growth_factor" json:"team_growth_factor"`
	TeamGrowthCadence int     `yaml:"team_growth_cadence" json:"team_growth_cadence"` // months between growth steps

	SimulationMonths int `yaml:"simulation_months" json:"simulation_months"`
	NumSimulations   int `yaml:"num_simulations" json:"num_simulations"`

	Thresholds SuccessThresholds `yaml:"thresholds" json:"thresholds"`
}

// StochasticParameters define every uncertain quantity as a sampling
// distribution. Probability-valued samples are clipped to [0,1] and
// multiplier/delay samples to >= 0 after drawing.
type StochasticParameters struct {
	DetectionAccuracy Dist `yaml:"detection_accuracy" json:"detection_accuracy"`
	Uptime            Dist `yaml:"uptime" json:"uptime"`

	// Conversion and Churn are monthly per-segment probabilities.
	Conversion map[CustomerSegment]Dist `yaml:"conversion" json:"conversion"`
	Churn      map[CustomerSegment]Dist `yaml:"churn" json:"churn"`

	// CostVariation and SalaryVariation are spreads around a 1.0-mean
	// multiplier applied to infrastructure and personnel costs.
	CostVariation   float64 `yaml:"cost_variation" json:"cost_variation"`
	SalaryVariation float64 `yaml:"salary_variation" json:"salary_variation"`

	// DeploymentDelay is the months between scheduling a unit and the unit
	// going live, clipped to >= 0.
	DeploymentDelay Dist `yaml:"deployment_delay" json:"deployment_delay"`

	// CompetitiveErosionAnnual is the annual price erosion fraction applied
	// geometrically to revenue over elapsed months.
	CompetitiveErosionAnnual float64 `yaml:"competitive_erosion_annual" json:"competitive_erosion_annual"`
}

// DefaultInputs returns the documented base case: a cloud-only rollout with
// $10M funding, 3 initial units growing to 30 by month 18, over a 24-month
// horizon. Every call returns a fresh value; there is no shared state.
func DefaultInputs() SimulationInputs {
	pricing := make(map[CustomerSegment]float64, len(defaultPricing))
	for seg, price := range defaultPricing {
		pricing[seg] = price
	}
	return SimulationInputs{
		Architecture:      CloudOnly,
		InitialFunding:    10_000_000,
		InitialCashOffset: 250_000,
		InitialUnits:      3,
		DeploymentTargets: []DeploymentTarget{
			{FromMonth: 6, Units: 5},
			{FromMonth: 12, Units: 15},
			{FromMonth: 18, Units: 30},
		},
		Pricing:           pricing,
		InitialTeamSize:   5,
		TeamGrowthFactor:  1.5,
		TeamGrowthCadence: 6,
		SimulationMonths:  24,
		NumSimulations:    1000,
		Thresholds: SuccessThresholds{
			ProfitabilityMargin: 0.70,
			MilestoneRevenue:    2_500_000, // ~$30M annualized
			MilestoneUnits:      15,
		},
	}
}

// DefaultParameters returns the base-case uncertainty assumptions.
func DefaultParameters() StochasticParameters {
	return StochasticParameters{
		DetectionAccuracy: Dist{Mean: 0.97, Spread: 0.02},
		Uptime:            Dist{Mean: 0.995, Spread: 0.005},
		Conversion: map[CustomerSegment]Dist{
			SegmentPort:          {Mean: 0.25, Spread: 0.10},
			SegmentNaval:         {Mean: 0.15, Spread: 0.05},
			SegmentEnvironmental: {Mean: 0.30, Spread: 0.10},
			SegmentShipping:      {Mean: 0.20, Spread: 0.08},
			SegmentInsurance:     {Mean: 0.15, Spread: 0.08},
		},
		Churn: map[CustomerSegment]Dist{
			SegmentPort:          {Mean: 0.02, Spread: 0.01},
			SegmentNaval:         {Mean: 0.02, Spread: 0.01},
			SegmentEnvironmental: {Mean: 0.02, Spread: 0.01},
			SegmentShipping:      {Mean: 0.02, Spread: 0.01},
			SegmentInsurance:     {Mean: 0.02, Spread: 0.01},
		},
		CostVariation:            0.15,
		SalaryVariation:          0.20,
		DeploymentDelay:          Dist{Mean: 2.0, Spread: 0.5},
		CompetitiveErosionAnnual: 0.10,
	}
}

// Validate checks the inputs before any trial runs. The first offense is
// returned with an error naming the field; a nil return guarantees the engine
// cannot fail for configuration reasons mid-trial.
func (in *SimulationInputs) Validate() error {
	if !in.Architecture.Valid() {
		return fmt.Errorf("architecture: unknown option %q; valid: edge, regional, cloud", in.Architecture)
	}
	if err := validateFiniteNonNegative("initial_funding", in.InitialFunding); err != nil {
		return err
	}
	if err := validateFiniteNonNegative("initial_cash_offset", in.InitialCashOffset); err != nil {
		return err
	}
	if in.InitialUnits < 0 {
		return fmt.Errorf("initial_units must be non-negative, got %d", in.InitialUnits)
	}
	prevMonth, prevUnits := 0, in.InitialUnits
	for i, t := range in.DeploymentTargets {
		prefix := fmt.Sprintf("deployment_targets[%d]", i)
		if t.FromMonth < 1 {
			return fmt.Errorf("%s.from_month must be >= 1, got %d", prefix, t.FromMonth)
		}
		if i > 0 && t.FromMonth <= prevMonth {
			return fmt.Errorf("%s.from_month %d is not after previous checkpoint month %d", prefix, t.FromMonth, prevMonth)
		}
		if t.Units < prevUnits {
			return fmt.Errorf("%s.units %d is below previous target %d; targets must be non-decreasing", prefix, t.Units, prevUnits)
		}
		prevMonth, prevUnits = t.FromMonth, t.Units
	}
	for seg, price := range in.Pricing {
		if !seg.Valid() {
			return fmt.Errorf("pricing: unknown segment %q", seg)
		}
		if err := validateFiniteNonNegative(fmt.Sprintf("pricing.%s", seg), price); err != nil {
			return err
		}
	}
	if in.InitialTeamSize < 1 {
		return fmt.Errorf("initial_team_size must be >= 1, got %d", in.InitialTeamSize)
	}
	if math.IsNaN(in.TeamGrowthFactor) || in.TeamGrowthFactor < 1.0 {
		return fmt.Errorf("team_growth_factor must be >= 1.0, got %f", in.TeamGrowthFactor)
	}
	if in.TeamGrowthCadence < 1 {
		return fmt.Errorf("team_growth_cadence must be >= 1 month, got %d", in.TeamGrowthCadence)
	}
	if in.SimulationMonths < 1 {
		return fmt.Errorf("simulation_months must be >= 1, got %d", in.SimulationMonths)
	}
	if in.NumSimulations < 1 {
		return fmt.Errorf("num_simulations must be >= 1, got %d", in.NumSimulations)
	}
	th := in.Thresholds
	if th.ProfitabilityMargin <= 0 || th.ProfitabilityMargin >= 1 {
		return fmt.Errorf("thresholds.profitability_margin must be in (0,1), got %f", th.ProfitabilityMargin)
	}
	if err := validateFiniteNonNegative("thresholds.milestone_revenue", th.MilestoneRevenue); err != nil {
		return err
	}
	if th.MilestoneUnits < 0 {
		return fmt.Errorf("thresholds.milestone_units must be non-negative, got %d", th.MilestoneUnits)
	}
	return nil
}

// Validate checks the stochastic assumptions. Probability means must be valid
// probabilities up front; spreads only need to be finite and non-negative
// because samples are clipped after drawing.
func (p *StochasticParameters) Validate() error {
	if err := validateProbabilityDist("detection_accuracy", p.DetectionAccuracy); err != nil {
		return err
	}
	if err := validateProbabilityDist("uptime", p.Uptime); err != nil {
		return err
	}
	for seg := range p.Conversion {
		if !seg.Valid() {
			return fmt.Errorf("conversion: unknown segment %q", seg)
		}
	}
	for seg := range p.Churn {
		if !seg.Valid() {
			return fmt.Errorf("churn: unknown segment %q", seg)
		}
	}
	for _, seg := range Segments() {
		if d, ok := p.Conversion[seg]; ok {
			if err := validateProbabilityDist(fmt.Sprintf("conversion.%s", seg), d); err != nil {
				return err
			}
		}
		if d, ok := p.Churn[seg]; ok {
			if err := validateProbabilityDist(fmt.Sprintf("churn.%s", seg), d); err != nil {
				return err
			}
		}
	}
	if err := validateFiniteNonNegative("cost_variation", p.CostVariation); err != nil {
		return err
	}
	if err := validateFiniteNonNegative("salary_variation", p.SalaryVariation); err != nil {
		return err
	}
	if err := validateFiniteNonNegative("deployment_delay.mean", p.DeploymentDelay.Mean); err != nil {
		return err
	}
	if err := validateFiniteNonNegative("deployment_delay.spread", p.DeploymentDelay.Spread); err != nil {
		return err
	}
	if p.CompetitiveErosionAnnual < 0 || p.CompetitiveErosionAnnual >= 1 {
		return fmt.Errorf("competitive_erosion_annual must be in [0,1), got %f", p.CompetitiveErosionAnnual)
	}
	return nil
}

// conversionDist returns the conversion distribution for seg, falling back to
// the base case when the caller supplied no override.
func (p *StochasticParameters) conversionDist(seg CustomerSegment) Dist {
	if d, ok := p.Conversion[seg]; ok {
		return d
	}
	return DefaultParameters().Conversion[seg]
}

// churnDist returns the churn distribution for seg with base-case fallback.
func (p *StochasticParameters) churnDist(seg CustomerSegment) Dist {
	if d, ok := p.Churn[seg]; ok {
		return d
	}
	return DefaultParameters().Churn[seg]
}

// price returns the monthly price for seg with base-case fallback.
func (in *SimulationInputs) price(seg CustomerSegment) float64 {
	if v, ok := in.Pricing[seg]; ok {
		return v
	}
	return defaultPricing[seg]
}

func validateFiniteNonNegative(name string, val float64) error {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return fmt.Errorf("%s must be a finite number, got %f", name, val)
	}
	if val < 0 {
		return fmt.Errorf("%s must be non-negative, got %f", name, val)
	}
	return nil
}

func validateProbabilityDist(name string, d Dist) error {
	if math.IsNaN(d.Mean) || math.IsInf(d.Mean, 0) || d.Mean < 0 || d.Mean > 1 {
		return fmt.Errorf("%s.mean must be a probability in [0,1], got %f", name, d.Mean)
	}
	return validateFiniteNonNegative(name+".spread", d.Spread)
}
