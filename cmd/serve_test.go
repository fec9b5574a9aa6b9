package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	sim "github.com/venture-sim/venture-sim/sim"
)

func intp(v int) *int { return &v }

func floatp(v float64) *float64 { return &v }

func TestHealthz(t *testing.T) {
	srv := httptest.NewServer(NewServeMux())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "ok", body["status"])
}

func TestSimulate_SmallRun(t *testing.T) {
	srv := httptest.NewServer(NewServeMux())
	defer srv.Close()

	req := SimulationRequest{
		ArchitectureOption: "regional",
		NumSimulations:     intp(10),
		SimulationMonths:   intp(6),
		Seed:               42,
	}
	payload, err := json.Marshal(req)
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+"/simulate", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body SimulationResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "ok", body.Status)
	require.NotNil(t, body.Analysis)
	require.Equal(t, 10, body.Analysis.NumTrials)
	require.Len(t, body.SampleTrajectories, 3)
	for _, traj := range body.SampleTrajectories {
		require.NotEmpty(t, traj.Months)
		require.LessOrEqual(t, len(traj.Months), 6)
	}

	revenue := body.Analysis.FinalMetrics["revenue_monthly"]
	require.LessOrEqual(t, revenue.P10, revenue.P50)
	require.LessOrEqual(t, revenue.P50, revenue.P90)
}

func TestSimulate_Deterministic(t *testing.T) {
	srv := httptest.NewServer(NewServeMux())
	defer srv.Close()

	call := func() SimulationResponse {
		payload, err := json.Marshal(SimulationRequest{NumSimulations: intp(5), SimulationMonths: intp(4), Seed: 7})
		require.NoError(t, err)
		resp, err := http.Post(srv.URL+"/simulate", "application/json", bytes.NewReader(payload))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var body SimulationResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		return body
	}

	require.Equal(t, call(), call())
}

func TestRequestToConfig_PartialTargets(t *testing.T) {
	// Overriding one checkpoint leaves the other two at the base case.
	req := SimulationRequest{UnitsMonth12: intp(20)}
	inputs, _ := req.toConfig()
	require.Equal(t, []sim.DeploymentTarget{
		{FromMonth: 6, Units: 5},
		{FromMonth: 12, Units: 20},
		{FromMonth: 18, Units: 30},
	}, inputs.DeploymentTargets)
	require.NoError(t, inputs.Validate())
}

func TestRequestToConfig_ExplicitZeros(t *testing.T) {
	req := SimulationRequest{InitialUnits: intp(0), InitialCashOffset: floatp(0)}
	inputs, _ := req.toConfig()
	require.Zero(t, inputs.InitialUnits)
	require.Zero(t, inputs.InitialCashOffset)
	require.NoError(t, inputs.Validate())
}

func TestSimulate_PartialTargetOverride(t *testing.T) {
	srv := httptest.NewServer(NewServeMux())
	defer srv.Close()

	payload := []byte(`{"target_units_month_12": 20, "num_simulations": 5, "simulation_months": 6}`)
	resp, err := http.Post(srv.URL+"/simulate", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body SimulationResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "ok", body.Status)
	require.Equal(t, 5, body.Analysis.NumTrials)
}

func TestSimulate_ConfigErrorIs400(t *testing.T) {
	srv := httptest.NewServer(NewServeMux())
	defer srv.Close()

	payload := []byte(`{"architecture_option": "mainframe", "num_simulations": 5}`)
	resp, err := http.Post(srv.URL+"/simulate", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Contains(t, body["error"], "architecture")
}

func TestSimulate_MalformedBodyIs400(t *testing.T) {
	srv := httptest.NewServer(NewServeMux())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/simulate", "application/json", bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSimulate_GetNotAllowed(t *testing.T) {
	srv := httptest.NewServer(NewServeMux())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/simulate")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
