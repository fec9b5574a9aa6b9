package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/venture-sim/venture-sim/sim"
)

var (
	// Run-level flags
	seed        int64  // Seed for per-trial RNG derivation
	logLevel    string // Log verbosity level
	simulations int    // Number of independent trials
	months      int    // Simulation horizon in months
	workers     int    // Worker goroutines (0 = GOMAXPROCS)
	outPath     string // Optional JSON output path for the analysis
	withSamples bool   // Include representative trajectories in the analysis

	// Strategic decisions
	architecture string  // edge, regional or cloud
	funding      float64 // Upfront funding amount
	cashOffset   float64 // Upfront cash commitments (e.g. cloud credits)
	initialUnits int     // Units live at month 0

	// Deployment checkpoints (cumulative unit targets)
	unitsMonth6  int
	unitsMonth12 int
	unitsMonth18 int

	// Pricing per segment (monthly per customer)
	pricePort          float64
	priceNaval         float64
	priceEnvironmental float64
	priceShipping      float64
	priceInsurance     float64

	// Team strategy
	teamSize          int
	teamGrowth        float64
	teamGrowthCadence int

	// Outcome thresholds
	profitabilityMargin float64
	milestoneRevenue    float64
	milestoneUnits      int

	// Stochastic overrides (base case when left at defaults)
	accuracyMean      float64
	accuracySpread    float64
	uptimeMean        float64
	uptimeSpread      float64
	conversionPort    float64
	churnMean         float64
	costVariation     float64
	salaryVariation   float64
	deployDelayMean   float64
	deployDelaySpread float64
	erosionAnnual     float64

	// Preset scenario selection
	presetName string
	presetFile string
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "venture-sim",
	Short: "Monte Carlo simulator for infrastructure-rollout business outcomes",
}

// buildConfig assembles the engine configuration with precedence
// defaults < preset < explicitly-set flags. Flags left at their defaults do
// not clobber preset values.
func buildConfig(cmd *cobra.Command) (sim.SimulationInputs, sim.StochasticParameters, error) {
	inputs := sim.DefaultInputs()
	params := sim.DefaultParameters()

	if presetName != "" {
		preset, err := LoadPreset(presetFile, presetName)
		if err != nil {
			return inputs, params, err
		}
		logrus.Infof("Using preset scenario %q", presetName)
		preset.Apply(&inputs)
	}

	fl := cmd.Flags()
	if fl.Changed("architecture") {
		inputs.Architecture = sim.ArchitectureOption(architecture)
	}
	if fl.Changed("funding") {
		inputs.InitialFunding = funding
	}
	if fl.Changed("cash-offset") {
		inputs.InitialCashOffset = cashOffset
	}
	if fl.Changed("initial-units") {
		inputs.InitialUnits = initialUnits
	}
	// A changed checkpoint flag overrides only its own month; the other
	// checkpoints keep whatever the preset (or base case) set.
	setTarget := func(fromMonth, units int) {
		for i := range inputs.DeploymentTargets {
			if inputs.DeploymentTargets[i].FromMonth == fromMonth {
				inputs.DeploymentTargets[i].Units = units
				return
			}
		}
		inputs.DeploymentTargets = append(inputs.DeploymentTargets, sim.DeploymentTarget{FromMonth: fromMonth, Units: units})
		sort.Slice(inputs.DeploymentTargets, func(i, j int) bool {
			return inputs.DeploymentTargets[i].FromMonth < inputs.DeploymentTargets[j].FromMonth
		})
	}
	if fl.Changed("units-month-6") {
		setTarget(6, unitsMonth6)
	}
	if fl.Changed("units-month-12") {
		setTarget(12, unitsMonth12)
	}
	if fl.Changed("units-month-18") {
		setTarget(18, unitsMonth18)
	}
	for seg, flag := range map[sim.CustomerSegment]struct {
		name  string
		value *float64
	}{
		sim.SegmentPort:          {"price-port", &pricePort},
		sim.SegmentNaval:         {"price-naval", &priceNaval},
		sim.SegmentEnvironmental: {"price-environmental", &priceEnvironmental},
		sim.SegmentShipping:      {"price-shipping", &priceShipping},
		sim.SegmentInsurance:     {"price-insurance", &priceInsurance},
	} {
		if fl.Changed(flag.name) {
			inputs.Pricing[seg] = *flag.value
		}
	}
	if fl.Changed("team-size") {
		inputs.InitialTeamSize = teamSize
	}
	if fl.Changed("team-growth") {
		inputs.TeamGrowthFactor = teamGrowth
	}
	if fl.Changed("team-growth-cadence") {
		inputs.TeamGrowthCadence = teamGrowthCadence
	}
	if fl.Changed("months") {
		inputs.SimulationMonths = months
	}
	if fl.Changed("simulations") {
		inputs.NumSimulations = simulations
	}
	if fl.Changed("profitability-margin") {
		inputs.Thresholds.ProfitabilityMargin = profitabilityMargin
	}
	if fl.Changed("milestone-revenue") {
		inputs.Thresholds.MilestoneRevenue = milestoneRevenue
	}
	if fl.Changed("milestone-units") {
		inputs.Thresholds.MilestoneUnits = milestoneUnits
	}

	params.DetectionAccuracy = sim.Dist{Mean: accuracyMean, Spread: accuracySpread}
	params.Uptime = sim.Dist{Mean: uptimeMean, Spread: uptimeSpread}
	params.Conversion[sim.SegmentPort] = sim.Dist{Mean: conversionPort, Spread: params.Conversion[sim.SegmentPort].Spread}
	for seg, d := range params.Churn {
		params.Churn[seg] = sim.Dist{Mean: churnMean, Spread: d.Spread}
	}
	params.CostVariation = costVariation
	params.SalaryVariation = salaryVariation
	params.DeploymentDelay = sim.Dist{Mean: deployDelayMean, Spread: deployDelaySpread}
	params.CompetitiveErosionAnnual = erosionAnnual

	return inputs, params, nil
}

// runCmd executes the full Monte Carlo run using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the Monte Carlo simulation and print aggregate statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		setUpLogging()

		inputs, params, err := buildConfig(cmd)
		if err != nil {
			return err
		}
		mc, err := sim.NewMonteCarlo(inputs, params, seed)
		if err != nil {
			return err
		}

		logrus.Infof("Starting run: %d trials, %d-month horizon, architecture=%s, seed=%d",
			inputs.NumSimulations, inputs.SimulationMonths, inputs.Architecture, seed)
		startTime := time.Now()

		trials, err := mc.RunParallel(cmd.Context(), workers)
		if err != nil {
			return err
		}
		analysis, err := sim.Analyze(trials, withSamples)
		if err != nil {
			return err
		}

		printAnalysis(analysis, time.Since(startTime))

		if outPath != "" {
			if err := writeAnalysisJSON(outPath, analysis); err != nil {
				return err
			}
			logrus.Infof("Analysis written to %s", outPath)
		}
		logrus.Info("Simulation complete.")
		return nil
	},
}

// trialCmd runs a single trial and dumps its trajectory as JSON. Behaves
// identically to the same trial index inside a full run; meant for debugging
// and smoke tests.
var trialCmd = &cobra.Command{
	Use:   "trial",
	Short: "Run one trial and print its full trajectory as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		setUpLogging()

		inputs, params, err := buildConfig(cmd)
		if err != nil {
			return err
		}
		mc, err := sim.NewMonteCarlo(inputs, params, seed)
		if err != nil {
			return err
		}

		traj := mc.RunTrial(trialIndex)
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(traj)
	},
}

var trialIndex int

func setUpLogging() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// printAnalysis displays the aggregate statistics at the end of a run.
func printAnalysis(a *sim.AggregateAnalysis, elapsed time.Duration) {
	fmt.Println("=== Monte Carlo Analysis ===")
	fmt.Printf("Trials                  : %d (%.2fs)\n", a.NumTrials, elapsed.Seconds())
	fmt.Printf("Profitability rate      : %.1f%%\n", a.Success.ProfitabilityRate*100)
	fmt.Printf("Growth milestone rate   : %.1f%%\n", a.Success.GrowthMilestoneRate*100)
	fmt.Printf("Cash exhaustion rate    : %.1f%%\n", a.Success.CashExhaustionRate*100)
	if a.Success.MeanMonthsToProfitability > 0 {
		fmt.Printf("Mean months to profit   : %.1f\n", a.Success.MeanMonthsToProfitability)
	}
	for _, key := range []string{
		sim.MetricUnitsDeployed, sim.MetricTotalCustomers, sim.MetricRevenueMonthly,
		sim.MetricARR, sim.MetricCashRemaining, sim.MetricTeamSize,
	} {
		p := a.FinalMetrics[key]
		fmt.Printf("%-24s: P10=%.0f  P50=%.0f  P90=%.0f\n", key, p.P10, p.P50, p.P90)
	}
}

func writeAnalysisJSON(path string, a *sim.AggregateAnalysis) error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding analysis: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing analysis: %w", err)
	}
	return nil
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// addConfigFlags registers the shared configuration flags on a subcommand.
func addConfigFlags(cmd *cobra.Command) {
	f := cmd.Flags()

	f.Int64Var(&seed, "seed", 42, "Seed for per-trial random generation")
	f.StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
	f.IntVar(&simulations, "simulations", 1000, "Number of independent trials")
	f.IntVar(&months, "months", 24, "Simulation horizon in months")

	f.StringVar(&architecture, "architecture", "cloud", "Infrastructure architecture (edge, regional, cloud)")
	f.Float64Var(&funding, "funding", 10_000_000, "Upfront funding amount")
	f.Float64Var(&cashOffset, "cash-offset", 250_000, "Upfront cash commitments deducted before month 1")
	f.IntVar(&initialUnits, "initial-units", 3, "Units live at month 0")
	f.IntVar(&unitsMonth6, "units-month-6", 5, "Cumulative unit target from month 6")
	f.IntVar(&unitsMonth12, "units-month-12", 15, "Cumulative unit target from month 12")
	f.IntVar(&unitsMonth18, "units-month-18", 30, "Cumulative unit target from month 18")

	f.Float64Var(&pricePort, "price-port", 35_000, "Monthly price, port authority segment")
	f.Float64Var(&priceNaval, "price-naval", 500_000, "Monthly price, naval/government segment")
	f.Float64Var(&priceEnvironmental, "price-environmental", 10_000, "Monthly price, environmental segment")
	f.Float64Var(&priceShipping, "price-shipping", 10_000, "Monthly price, shipping segment")
	f.Float64Var(&priceInsurance, "price-insurance", 25_000, "Monthly price, insurance segment")

	f.IntVar(&teamSize, "team-size", 5, "Initial team size")
	f.Float64Var(&teamGrowth, "team-growth", 1.5, "Team growth multiplier per cadence")
	f.IntVar(&teamGrowthCadence, "team-growth-cadence", 6, "Months between team growth steps")

	f.Float64Var(&profitabilityMargin, "profitability-margin", 0.70, "Gross margin that marks profitability")
	f.Float64Var(&milestoneRevenue, "milestone-revenue", 2_500_000, "Monthly revenue component of the growth milestone")
	f.IntVar(&milestoneUnits, "milestone-units", 15, "Unit-count component of the growth milestone")

	f.Float64Var(&accuracyMean, "accuracy-mean", 0.97, "Detection accuracy mean")
	f.Float64Var(&accuracySpread, "accuracy-spread", 0.02, "Detection accuracy spread")
	f.Float64Var(&uptimeMean, "uptime-mean", 0.995, "System uptime mean")
	f.Float64Var(&uptimeSpread, "uptime-spread", 0.005, "System uptime spread")
	f.Float64Var(&conversionPort, "conversion-port-mean", 0.25, "Port segment conversion mean")
	f.Float64Var(&churnMean, "churn-mean", 0.02, "Monthly churn mean applied to every segment")
	f.Float64Var(&costVariation, "cost-variation", 0.15, "Spread of the infrastructure cost multiplier")
	f.Float64Var(&salaryVariation, "salary-variation", 0.20, "Spread of the salary multiplier")
	f.Float64Var(&deployDelayMean, "deploy-delay-mean", 2.0, "Deployment delay mean in months")
	f.Float64Var(&deployDelaySpread, "deploy-delay-spread", 0.5, "Deployment delay spread in months")
	f.Float64Var(&erosionAnnual, "erosion-annual", 0.10, "Annual competitive price erosion fraction")

	f.StringVar(&presetName, "preset", "", "Named preset scenario to start from")
	f.StringVar(&presetFile, "presets-file", "presets.yaml", "YAML file holding preset scenarios")
}

// init sets up CLI flags and subcommands
func init() {
	addConfigFlags(runCmd)
	runCmd.Flags().IntVar(&workers, "workers", 0, "Worker goroutines (0 = all CPUs)")
	runCmd.Flags().StringVar(&outPath, "out", "", "Write the analysis JSON to this path")
	runCmd.Flags().BoolVar(&withSamples, "samples", false, "Include representative trajectories in the analysis")

	addConfigFlags(trialCmd)
	trialCmd.Flags().IntVar(&trialIndex, "trial-index", 0, "Trial index to run")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(trialCmd)
	rootCmd.AddCommand(serveCmd)
}
