package sim

import (
	"math"
	"math/rand"
)

// Fixed engine constants. These are operational estimates, not policy
// thresholds, so they are not exposed as configuration.
const (
	// salesRampMonths is the window over which sales effectiveness rises
	// linearly from 0 to 1, starting at month 1.
	salesRampMonths = 12

	// vesselPassagesPerUnitDay is the average number of detectable events a
	// single deployed unit observes per day.
	vesselPassagesPerUnitDay = 50

	salesBaseMonthly   = 50_000 // fixed sales/marketing floor
	salesPerTeamMember = 5_000  // sales/marketing spend per employee
	supportPerUnit     = 500    // support cost per deployed unit
	supportPerCustomer = 200    // support cost per active customer
)

// teamRole pairs a headcount fraction with an annual salary band. The
// remainder after truncating fractions is attributed to product engineering
// so the whole team is always paid.
type teamRole struct {
	name     string
	fraction float64
	salary   float64 // annual
}

var teamRoles = []teamRole{
	{"signal_processing_ml", 0.25, 200_000},
	{"data_engineering", 0.20, 170_000},
	{"cloud_devops", 0.20, 160_000},
	{"edge_hardware", 0.15, 150_000},
	{"product_engineering", 0.20, 165_000},
}

// pendingUnit is a scheduled deployment waiting out its sampled delay.
// Capital is fixed at scheduling time and charged in the completion month.
type pendingUnit struct {
	readyMonth int
	capital    float64
}

// trialState is the mutable record of one trial in progress. It is owned by
// exactly one goroutine and discarded once its Trajectory is frozen.
type trialState struct {
	inputs *SimulationInputs
	params *StochasticParameters
	costs  costModel
	rng    *rand.Rand

	cash      float64
	units     int
	pending   []pendingUnit
	customers map[CustomerSegment]int
	teamSize  int
	facility  bool

	traj *Trajectory
}

// newTrialState initializes a trial: starting cash is funding minus the
// upfront offset minus capital for the initial units, which are live at
// month 0.
func newTrialState(inputs *SimulationInputs, params *StochasticParameters, rng *rand.Rand) *trialState {
	st := &trialState{
		inputs:    inputs,
		params:    params,
		costs:     costModelFor(inputs.Architecture),
		rng:       rng,
		units:     inputs.InitialUnits,
		customers: make(map[CustomerSegment]int, len(Segments())),
		teamSize:  inputs.InitialTeamSize,
		traj:      &Trajectory{},
	}
	st.cash = inputs.InitialFunding - inputs.InitialCashOffset
	if inputs.InitialUnits > 0 {
		mult := sampleMultiplier(rng, params.CostVariation)
		st.cash -= st.costs.UnitCapital * mult * float64(inputs.InitialUnits)
	}
	for _, seg := range Segments() {
		st.customers[seg] = 0
	}
	return st
}

// run advances the trial month by month until the horizon is exhausted or
// cash goes negative, then returns the frozen trajectory.
func (st *trialState) run() *Trajectory {
	for month := 1; month <= st.inputs.SimulationMonths; month++ {
		if !st.step(month) {
			break
		}
	}
	return st.traj
}

// step executes the eleven transition stages for one month, in fixed order.
// Each stage's output feeds the next within the same month. Returns false
// when the trial terminates (cash exhausted).
func (st *trialState) step(month int) bool {
	// 1. Deployment: schedule toward the current checkpoint target, then
	// complete every pending unit whose delay has elapsed. Capital is charged
	// in the completion month.
	target := st.targetUnits(month)
	toSchedule := target - st.units - len(st.pending)
	for i := 0; i < toSchedule; i++ {
		delay := sampleNonNegative(st.rng, st.params.DeploymentDelay)
		mult := sampleMultiplier(st.rng, st.params.CostVariation)
		st.pending = append(st.pending, pendingUnit{
			readyMonth: month + int(delay),
			capital:    st.costs.UnitCapital * mult,
		})
	}
	capital := 0.0
	remaining := st.pending[:0]
	for _, p := range st.pending {
		if p.readyMonth <= month {
			st.units++
			capital += p.capital
		} else {
			remaining = append(remaining, p)
		}
	}
	st.pending = remaining

	// 2. Facility trigger: one-way transition, RegionalFacility only.
	if st.costs.FacilityThreshold > 0 && !st.facility && st.units >= st.costs.FacilityThreshold {
		st.facility = true
		capital += st.costs.FacilityCapital
	}

	// 3. Customer acquisition: binomial conversion over ramped leads.
	ramp := math.Min(1, float64(month-1)/salesRampMonths)
	for _, seg := range Segments() {
		leads := int(leadsPerUnit[seg] * float64(st.units) * ramp)
		conversion := sampleProbability(st.rng, st.params.conversionDist(seg))
		st.customers[seg] += binomial(st.rng, leads, conversion)
	}

	// 4. Churn: binomial over the existing base, so a segment can never go
	// below zero customers.
	for _, seg := range Segments() {
		churn := sampleProbability(st.rng, st.params.churnDist(seg))
		st.customers[seg] -= binomial(st.rng, st.customers[seg], churn)
	}

	// 5. Revenue with geometric competitive price erosion.
	erosion := math.Pow(1-st.params.CompetitiveErosionAnnual, float64(month-1)/12)
	revenue := 0.0
	totalCustomers := 0
	for _, seg := range Segments() {
		revenue += float64(st.customers[seg]) * st.inputs.price(seg) * erosion
		totalCustomers += st.customers[seg]
	}

	// 6. Costs.
	infra := st.costs.UnitRecurring*float64(st.units) + st.costs.CloudPerUnit*float64(st.units)
	if st.facility {
		infra += st.costs.FacilityRecurring
	}
	infra *= sampleMultiplier(st.rng, st.params.CostVariation)
	personnel := st.personnelCost()
	salesSupport := salesBaseMonthly + salesPerTeamMember*float64(st.teamSize) +
		supportPerUnit*float64(st.units) + supportPerCustomer*float64(totalCustomers)
	costs := CostBreakdown{
		Infrastructure: infra,
		Personnel:      personnel,
		SalesSupport:   salesSupport,
		Capital:        capital,
	}

	// 7. Cash update: the only place cash changes.
	st.cash += revenue - costs.Operating() - costs.Capital

	// 8. Technical metrics. Detections are deterministic given units and the
	// sampled accuracy.
	accuracy := sampleProbability(st.rng, st.params.DetectionAccuracy)
	uptime := sampleProbability(st.rng, st.params.Uptime)
	detections := int(float64(st.units) * vesselPassagesPerUnitDay * accuracy)

	// 9. Team growth on the configured cadence.
	if month%st.inputs.TeamGrowthCadence == 0 {
		st.teamSize = int(math.Round(float64(st.teamSize) * st.inputs.TeamGrowthFactor))
	}

	// 10. Outcome flags (monotonic).
	margin := -1.0
	if revenue > 0 {
		margin = (revenue - costs.Operating()) / revenue
	}
	if !st.traj.ProfitabilityReached && margin > st.inputs.Thresholds.ProfitabilityMargin {
		st.traj.ProfitabilityReached = true
		st.traj.ProfitabilityMonth = month
	}
	if !st.traj.GrowthMilestoneReached &&
		revenue > st.inputs.Thresholds.MilestoneRevenue &&
		st.units >= st.inputs.Thresholds.MilestoneUnits {
		st.traj.GrowthMilestoneReached = true
		st.traj.GrowthMilestoneMonth = month
	}

	// Record the month. Customer counts are copied so later months cannot
	// mutate earlier records.
	customers := make(map[CustomerSegment]int, len(st.customers))
	for seg, n := range st.customers {
		customers[seg] = n
	}
	st.traj.Months = append(st.traj.Months, MonthRecord{
		Month:              month,
		UnitsDeployed:      st.units,
		CustomersBySegment: customers,
		TotalCustomers:     totalCustomers,
		Revenue:            revenue,
		ARR:                revenue * 12,
		Costs:              costs,
		GrossMargin:        margin,
		Cash:               st.cash,
		TeamSize:           st.teamSize,
		DetectionAccuracy:  accuracy,
		DetectionsPerDay:   detections,
		Uptime:             uptime,
		Facilities:         st.facilityCount(),
	})

	// 11. Termination: negative cash freezes the trajectory at this month.
	if st.cash < 0 {
		st.traj.CashExhausted = true
		st.traj.CashExhaustedMonth = month
		return false
	}
	return true
}

// targetUnits returns the cumulative deployment target in effect at month.
func (st *trialState) targetUnits(month int) int {
	target := st.inputs.InitialUnits
	for _, t := range st.inputs.DeploymentTargets {
		if month >= t.FromMonth {
			target = t.Units
		}
	}
	return target
}

// personnelCost prices the team by role band with a sampled salary multiplier
// per role. Truncated headcount from the fractional split lands in product
// engineering.
func (st *trialState) personnelCost() float64 {
	assigned := 0
	cost := 0.0
	for i, role := range teamRoles {
		count := int(float64(st.teamSize) * role.fraction)
		if i == len(teamRoles)-1 {
			count = st.teamSize - assigned
		}
		assigned += count
		salary := role.salary * sampleMultiplier(st.rng, st.params.SalaryVariation)
		cost += salary / 12 * float64(count)
	}
	return cost
}

func (st *trialState) facilityCount() int {
	if st.facility {
		return 1
	}
	return 0
}
