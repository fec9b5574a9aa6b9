package sim

// CostBreakdown splits one month's operating spend plus any capital charged
// that month. All components are non-negative.
type CostBreakdown struct {
	Infrastructure float64 `json:"infrastructure"`
	Personnel      float64 `json:"personnel"`
	SalesSupport   float64 `json:"sales_support"`
	Capital        float64 `json:"capital"`
}

// Operating returns the recurring (non-capital) portion of the month's costs.
func (c CostBreakdown) Operating() float64 {
	return c.Infrastructure + c.Personnel + c.SalesSupport
}

// Total returns operating costs plus capital charges.
func (c CostBreakdown) Total() float64 {
	return c.Operating() + c.Capital
}

// MonthRecord is one month's snapshot of a trial's state, taken after all
// eleven transition steps have run. Plain data only; serializes to JSON with
// no engine-internal types.
type MonthRecord struct {
	Month int `json:"month"` // 1-based

	UnitsDeployed      int                     `json:"units_deployed"`
	CustomersBySegment map[CustomerSegment]int `json:"customers_by_segment"`
	TotalCustomers     int                     `json:"total_customers"`

	Revenue     float64       `json:"revenue"`
	ARR         float64       `json:"arr"` // revenue annualized
	Costs       CostBreakdown `json:"costs"`
	GrossMargin float64       `json:"gross_margin"` // -1 when revenue is zero
	Cash        float64       `json:"cash"`

	TeamSize int `json:"team_size"`

	DetectionAccuracy float64 `json:"detection_accuracy"`
	DetectionsPerDay  int     `json:"detections_per_day"`
	Uptime            float64 `json:"uptime"`

	Facilities int `json:"facilities"`
}

// Trajectory is the ordered per-month record produced by one trial, plus the
// trial's monotonic outcome flags. Created at trial start, appended to every
// simulated month, and frozen once the horizon ends or cash goes negative.
type Trajectory struct {
	Months []MonthRecord `json:"months"`

	// Outcome flags are monotonic: once set they are never reset, and the
	// companion month fields record the first month each flag became true
	// (0 = never).
	ProfitabilityReached   bool `json:"profitability_reached"`
	ProfitabilityMonth     int  `json:"profitability_month,omitempty"`
	GrowthMilestoneReached bool `json:"growth_milestone_reached"`
	GrowthMilestoneMonth   int  `json:"growth_milestone_month,omitempty"`
	CashExhausted          bool `json:"cash_exhausted"`
	CashExhaustedMonth     int  `json:"cash_exhausted_month,omitempty"`
}

// Final returns the last recorded month, or nil for an empty trajectory.
// For a trial that exhausted cash this is the terminating month's record.
func (t *Trajectory) Final() *MonthRecord {
	if len(t.Months) == 0 {
		return nil
	}
	return &t.Months[len(t.Months)-1]
}
