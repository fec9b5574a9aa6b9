package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/venture-sim/venture-sim/sim"
)

var serveAddr string

// SimulationRequest is the flat wire shape accepted by POST /simulate.
// Every field is optional and pointer-typed: nil falls back to the base case,
// so explicit zeros (e.g. initial_units: 0) stay expressible. The handler
// only translates to and from the engine's plain-structure contract; no
// engine-internal type crosses the wire.
type SimulationRequest struct {
	ArchitectureOption string   `json:"architecture_option,omitempty"`
	InitialFunding     *float64 `json:"initial_funding,omitempty"`
	InitialCashOffset  *float64 `json:"initial_cash_offset,omitempty"`

	InitialUnits *int `json:"initial_units,omitempty"`
	UnitsMonth6  *int `json:"target_units_month_6,omitempty"`
	UnitsMonth12 *int `json:"target_units_month_12,omitempty"`
	UnitsMonth18 *int `json:"target_units_month_18,omitempty"`

	Pricing map[string]float64 `json:"pricing,omitempty"`

	InitialTeamSize   *int     `json:"initial_team_size,omitempty"`
	TeamGrowthFactor  *float64 `json:"team_growth_factor,omitempty"`
	TeamGrowthCadence *int     `json:"team_growth_cadence,omitempty"`

	SimulationMonths *int  `json:"simulation_months,omitempty"`
	NumSimulations   *int  `json:"num_simulations,omitempty"`
	Seed             int64 `json:"seed,omitempty"`

	// Stochastic overrides, nil = base case.
	DetectionAccuracyMean *float64 `json:"detection_accuracy_mean,omitempty"`
	UptimeMean            *float64 `json:"uptime_mean,omitempty"`
	ConversionPortMean    *float64 `json:"conversion_rate_port_mean,omitempty"`
	ChurnMonthlyMean      *float64 `json:"churn_rate_monthly_mean,omitempty"`
	ErosionAnnual         *float64 `json:"competitive_erosion_annual,omitempty"`
}

// SimulationResponse is the reply shape of POST /simulate.
type SimulationResponse struct {
	Status             string                 `json:"status"`
	Analysis           *sim.AggregateAnalysis `json:"analysis"`
	SampleTrajectories []*sim.Trajectory      `json:"sample_trajectories"`
}

// toConfig translates the wire request into engine configuration.
func (r *SimulationRequest) toConfig() (sim.SimulationInputs, sim.StochasticParameters) {
	inputs := sim.DefaultInputs()
	params := sim.DefaultParameters()

	if r.ArchitectureOption != "" {
		inputs.Architecture = sim.ArchitectureOption(r.ArchitectureOption)
	}
	if r.InitialFunding != nil {
		inputs.InitialFunding = *r.InitialFunding
	}
	if r.InitialCashOffset != nil {
		inputs.InitialCashOffset = *r.InitialCashOffset
	}
	if r.InitialUnits != nil {
		inputs.InitialUnits = *r.InitialUnits
	}
	// Each checkpoint overrides independently; unspecified checkpoints keep
	// their base-case targets.
	if r.UnitsMonth6 != nil {
		inputs.DeploymentTargets[0].Units = *r.UnitsMonth6
	}
	if r.UnitsMonth12 != nil {
		inputs.DeploymentTargets[1].Units = *r.UnitsMonth12
	}
	if r.UnitsMonth18 != nil {
		inputs.DeploymentTargets[2].Units = *r.UnitsMonth18
	}
	for seg, price := range r.Pricing {
		inputs.Pricing[sim.CustomerSegment(seg)] = price
	}
	if r.InitialTeamSize != nil {
		inputs.InitialTeamSize = *r.InitialTeamSize
	}
	if r.TeamGrowthFactor != nil {
		inputs.TeamGrowthFactor = *r.TeamGrowthFactor
	}
	if r.TeamGrowthCadence != nil {
		inputs.TeamGrowthCadence = *r.TeamGrowthCadence
	}
	if r.SimulationMonths != nil {
		inputs.SimulationMonths = *r.SimulationMonths
	}
	if r.NumSimulations != nil {
		inputs.NumSimulations = *r.NumSimulations
	}

	if r.DetectionAccuracyMean != nil {
		params.DetectionAccuracy.Mean = *r.DetectionAccuracyMean
	}
	if r.UptimeMean != nil {
		params.Uptime.Mean = *r.UptimeMean
	}
	if r.ConversionPortMean != nil {
		d := params.Conversion[sim.SegmentPort]
		d.Mean = *r.ConversionPortMean
		params.Conversion[sim.SegmentPort] = d
	}
	if r.ChurnMonthlyMean != nil {
		for seg, d := range params.Churn {
			d.Mean = *r.ChurnMonthlyMean
			params.Churn[seg] = d
		}
	}
	if r.ErosionAnnual != nil {
		params.CompetitiveErosionAnnual = *r.ErosionAnnual
	}
	return inputs, params
}

// NewServeMux builds the HTTP routes. Split out from serveCmd so tests can
// drive the handlers through httptest without binding a port.
func NewServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/simulate", handleSimulate)
	return mux
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleSimulate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "POST required"})
		return
	}
	var req SimulationRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	inputs, params := req.toConfig()
	mc, err := sim.NewMonteCarlo(inputs, params, req.Seed)
	if err != nil {
		// Configuration errors surface synchronously, before any trial runs.
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	start := time.Now()
	trials, err := mc.RunParallel(r.Context(), 0)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	analysis, err := sim.Analyze(trials, true)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	logrus.Infof("Simulated %d trials in %.2fs", len(trials), time.Since(start).Seconds())

	resp := SimulationResponse{
		Status:             "ok",
		Analysis:           analysis,
		SampleTrajectories: analysis.Representative,
	}
	// The analysis already carries the representatives; drop the duplicate
	// to keep the payload lean.
	resp.Analysis.Representative = nil
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Errorf("encoding response: %v", err)
	}
}

// serveCmd exposes the simulator over HTTP. The handlers are thin external
// collaborators: they translate JSON to the engine's contract and back.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the simulator over HTTP (POST /simulate)",
	RunE: func(cmd *cobra.Command, args []string) error {
		setUpLogging()
		srv := &http.Server{
			Addr:              serveAddr,
			Handler:           NewServeMux(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		logrus.Infof("Listening on %s", serveAddr)
		return srv.ListenAndServe()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	serveCmd.Flags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")
}
