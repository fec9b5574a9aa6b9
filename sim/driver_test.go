package sim

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

// Same seed + same configuration = bit-identical trial populations.
func TestRun_Deterministic_SameSeedSameOutput(t *testing.T) {
	inputs := DefaultInputs()
	inputs.NumSimulations = 25
	mc1 := mustMonteCarlo(t, inputs, DefaultParameters(), 42)
	mc2 := mustMonteCarlo(t, inputs, DefaultParameters(), 42)

	t1, err := mc1.Run(context.Background())
	require.NoError(t, err)
	t2, err := mc2.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, t1, t2)
}

func TestRun_DifferentSeedsDiffer(t *testing.T) {
	inputs := DefaultInputs()
	inputs.NumSimulations = 5
	mcA := mustMonteCarlo(t, inputs, DefaultParameters(), 1)
	mcB := mustMonteCarlo(t, inputs, DefaultParameters(), 2)

	a, err := mcA.Run(context.Background())
	require.NoError(t, err)
	b, err := mcB.Run(context.Background())
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

// A single trial invoked on its own is identical to the same index drawn
// from a full run.
func TestRunTrial_MatchesFullRun(t *testing.T) {
	inputs := DefaultInputs()
	inputs.NumSimulations = 10
	mc := mustMonteCarlo(t, inputs, DefaultParameters(), 99)

	full, err := mc.Run(context.Background())
	require.NoError(t, err)
	for _, idx := range []int{0, 3, 9} {
		require.Equal(t, full[idx], mc.RunTrial(idx), "trial %d", idx)
	}
}

// Worker count must not change the population: per-trial RNG derivation and
// index-addressed collection make parallel runs bit-identical to sequential.
func TestRunParallel_MatchesSequential(t *testing.T) {
	inputs := DefaultInputs()
	inputs.NumSimulations = 40
	mc := mustMonteCarlo(t, inputs, DefaultParameters(), 7)

	sequential, err := mc.Run(context.Background())
	require.NoError(t, err)
	for _, workers := range []int{2, 4, 16} {
		parallel, err := mc.RunParallel(context.Background(), workers)
		require.NoError(t, err)
		require.Equal(t, sequential, parallel, "workers=%d", workers)
	}
}

// Trials must not share randomness: distinct indices produce distinct draws.
func TestTrialsAreIndependent(t *testing.T) {
	mc := mustMonteCarlo(t, DefaultInputs(), DefaultParameters(), 5)
	a := mc.RunTrial(0)
	b := mc.RunTrial(1)
	require.NotEqual(t, a, b, "distinct trials produced identical trajectories")
}

func TestNewMonteCarlo_RejectsInvalidConfig(t *testing.T) {
	inputs := DefaultInputs()
	inputs.SimulationMonths = -3
	_, err := NewMonteCarlo(inputs, DefaultParameters(), 42)
	require.Error(t, err)
	require.Contains(t, err.Error(), "simulation_months")

	params := DefaultParameters()
	params.DetectionAccuracy.Mean = 2
	_, err = NewMonteCarlo(DefaultInputs(), params, 42)
	require.Error(t, err)
	require.Contains(t, err.Error(), "detection_accuracy")
}

func TestRun_CancelledContext(t *testing.T) {
	inputs := DefaultInputs()
	inputs.NumSimulations = 1000
	mc := mustMonteCarlo(t, inputs, DefaultParameters(), 42)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := mc.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)

	_, err = mc.RunParallel(ctx, 4)
	require.ErrorIs(t, err, context.Canceled)
}

// Law-of-large-numbers sanity check: success-rate estimates from a small and
// a large population agree within tolerance while individual trials differ.
func TestSuccessRateScaleInvariance(t *testing.T) {
	if testing.Short() {
		t.Skip("population comparison is slow")
	}
	rates := func(n int, seed int64) SuccessRates {
		inputs := DefaultInputs()
		inputs.NumSimulations = n
		mc := mustMonteCarlo(t, inputs, DefaultParameters(), seed)
		trials, err := mc.RunParallel(context.Background(), 0)
		require.NoError(t, err)
		analysis, err := Analyze(trials, false)
		require.NoError(t, err)
		return analysis.Success
	}

	small := rates(500, 1)
	large := rates(5000, 2)

	const tolerance = 0.12
	require.InDelta(t, large.ProfitabilityRate, small.ProfitabilityRate, tolerance)
	require.InDelta(t, large.GrowthMilestoneRate, small.GrowthMilestoneRate, tolerance)
	require.InDelta(t, large.CashExhaustionRate, small.CashExhaustionRate, tolerance)
	require.False(t, math.IsNaN(large.ProfitabilityRate))
}
