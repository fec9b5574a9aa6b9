package sim

import (
	"fmt"
	"math"
	"sort"
)

// Percentiles summarizes one scalar metric across the trial population at
// each trial's last recorded month.
type Percentiles struct {
	P10 float64 `json:"p10"`
	P50 float64 `json:"p50"`
	P90 float64 `json:"p90"`
}

// SuccessRates are the outcome-flag fractions over the population. The three
// rates need not sum to 1: a single trial can set more than one flag (e.g.
// reach profitability early and still exhaust cash later).
type SuccessRates struct {
	ProfitabilityRate   float64 `json:"profitability_rate"`
	GrowthMilestoneRate float64 `json:"growth_milestone_rate"`
	CashExhaustionRate  float64 `json:"cash_exhaustion_rate"`

	// MeanMonthsToProfitability averages ProfitabilityMonth over the trials
	// that reached profitability; 0 when none did.
	MeanMonthsToProfitability float64 `json:"mean_months_to_profitability"`
}

// AggregateAnalysis reduces a trial population to decision-relevant
// statistics. Computed once from finished trajectories; read-only afterward.
type AggregateAnalysis struct {
	NumTrials    int                    `json:"num_trials"`
	Success      SuccessRates           `json:"success_metrics"`
	FinalMetrics map[string]Percentiles `json:"final_metrics"`

	// Representative holds the full trajectories whose final revenue is
	// nearest the population P10/P50/P90, in that order. Present only when
	// requested (visualization payloads are large).
	Representative []*Trajectory `json:"representative_trajectories,omitempty"`
}

// Final-metric keys of FinalMetrics.
const (
	MetricUnitsDeployed     = "units_deployed"
	MetricTotalCustomers    = "total_customers"
	MetricRevenueMonthly    = "revenue_monthly"
	MetricARR               = "arr"
	MetricCashRemaining     = "cash_remaining"
	MetricTeamSize          = "team_size"
	MetricGrossMargin       = "gross_margin"
	MetricDetectionAccuracy = "detection_accuracy"
	MetricUptime            = "uptime"
	MetricDetectionsPerDay  = "detections_per_day"
	MetricFacilities        = "facilities"
)

// finalMetricExtractors maps metric keys to their final-month accessor.
var finalMetricExtractors = map[string]func(*MonthRecord) float64{
	MetricUnitsDeployed:     func(r *MonthRecord) float64 { return float64(r.UnitsDeployed) },
	MetricTotalCustomers:    func(r *MonthRecord) float64 { return float64(r.TotalCustomers) },
	MetricRevenueMonthly:    func(r *MonthRecord) float64 { return r.Revenue },
	MetricARR:               func(r *MonthRecord) float64 { return r.ARR },
	MetricCashRemaining:     func(r *MonthRecord) float64 { return r.Cash },
	MetricTeamSize:          func(r *MonthRecord) float64 { return float64(r.TeamSize) },
	MetricGrossMargin:       func(r *MonthRecord) float64 { return r.GrossMargin },
	MetricDetectionAccuracy: func(r *MonthRecord) float64 { return r.DetectionAccuracy },
	MetricUptime:            func(r *MonthRecord) float64 { return r.Uptime },
	MetricDetectionsPerDay:  func(r *MonthRecord) float64 { return float64(r.DetectionsPerDay) },
	MetricFacilities:        func(r *MonthRecord) float64 { return float64(r.Facilities) },
}

// Analyze reduces the trial population to success rates and P10/P50/P90
// final-state percentiles. Early-terminated trials contribute their last
// recorded month, never padded values. withRepresentatives additionally
// selects the three full trajectories nearest the revenue percentiles.
func Analyze(trials []*Trajectory, withRepresentatives bool) (*AggregateAnalysis, error) {
	if len(trials) == 0 {
		return nil, fmt.Errorf("analyze: no trials to aggregate")
	}

	analysis := &AggregateAnalysis{
		NumTrials:    len(trials),
		FinalMetrics: make(map[string]Percentiles, len(finalMetricExtractors)),
	}

	profitable, milestones, exhausted := 0, 0, 0
	profitMonthSum := 0
	for _, t := range trials {
		if t.ProfitabilityReached {
			profitable++
			profitMonthSum += t.ProfitabilityMonth
		}
		if t.GrowthMilestoneReached {
			milestones++
		}
		if t.CashExhausted {
			exhausted++
		}
	}
	n := float64(len(trials))
	analysis.Success = SuccessRates{
		ProfitabilityRate:   float64(profitable) / n,
		GrowthMilestoneRate: float64(milestones) / n,
		CashExhaustionRate:  float64(exhausted) / n,
	}
	if profitable > 0 {
		analysis.Success.MeanMonthsToProfitability = float64(profitMonthSum) / float64(profitable)
	}

	for key, extract := range finalMetricExtractors {
		values := make([]float64, 0, len(trials))
		for _, t := range trials {
			if final := t.Final(); final != nil {
				values = append(values, extract(final))
			}
		}
		if len(values) == 0 {
			continue
		}
		sort.Float64s(values)
		analysis.FinalMetrics[key] = Percentiles{
			P10: Percentile(values, 10),
			P50: Percentile(values, 50),
			P90: Percentile(values, 90),
		}
	}

	if withRepresentatives {
		analysis.Representative = representativeTrajectories(trials, analysis.FinalMetrics[MetricRevenueMonthly])
	}
	return analysis, nil
}

// Percentile computes the p-th percentile of ascending-sorted data using
// linear interpolation between order statistics: rank = p/100*(n-1), with the
// result interpolated between the neighboring values. This method is fixed so
// results reproduce across implementations.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	rank := p / 100 * float64(n-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if upper >= n {
		return sorted[n-1]
	}
	if lower == upper {
		return sorted[lower]
	}
	return sorted[lower] + (sorted[upper]-sorted[lower])*(rank-float64(lower))
}

// representativeTrajectories picks, for each revenue percentile, the full
// trajectory whose final revenue is closest to it. The same trial may back
// more than one percentile in tiny populations.
func representativeTrajectories(trials []*Trajectory, revenue Percentiles) []*Trajectory {
	closest := func(target float64) *Trajectory {
		var best *Trajectory
		bestDist := math.Inf(1)
		for _, t := range trials {
			final := t.Final()
			if final == nil {
				continue
			}
			if d := math.Abs(final.Revenue - target); d < bestDist {
				best, bestDist = t, d
			}
		}
		return best
	}
	reps := make([]*Trajectory, 0, 3)
	for _, target := range []float64{revenue.P10, revenue.P50, revenue.P90} {
		if t := closest(target); t != nil {
			reps = append(reps, t)
		}
	}
	return reps
}
