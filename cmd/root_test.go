package cmd

import (
	"testing"

	"github.com/stretchr/testify/require"

	sim "github.com/venture-sim/venture-sim/sim"
)

func TestBuildConfig_DefaultsMatchBaseCase(t *testing.T) {
	inputs, params, err := buildConfig(runCmd)
	require.NoError(t, err)
	require.Equal(t, sim.DefaultInputs(), inputs)
	require.Equal(t, sim.DefaultParameters(), params)
}

func TestBuildConfig_FlagBeatsPreset(t *testing.T) {
	path := writePresets(t, `
scenarios:
  funded-edge:
    architecture: edge
    initial_funding: 20000000
`)
	presetName = "funded-edge"
	presetFile = path
	defer func() {
		presetName = ""
		presetFile = "presets.yaml"
	}()

	// An explicitly set flag wins over the preset; untouched preset fields
	// survive.
	require.NoError(t, runCmd.Flags().Set("funding", "5000000"))

	inputs, _, err := buildConfig(runCmd)
	require.NoError(t, err)
	require.Equal(t, sim.EdgeCompute, inputs.Architecture)
	require.Equal(t, 5_000_000.0, inputs.InitialFunding)
}

func TestBuildConfig_FlagOverridesSinglePresetTarget(t *testing.T) {
	path := writePresets(t, `
scenarios:
  staged:
    deployment_targets:
      - from_month: 6
        units: 10
      - from_month: 12
        units: 20
      - from_month: 18
        units: 40
`)
	presetName = "staged"
	presetFile = path
	defer func() {
		presetName = ""
		presetFile = "presets.yaml"
	}()

	// Changing one checkpoint flag must not discard the preset's other two.
	require.NoError(t, runCmd.Flags().Set("units-month-12", "25"))

	inputs, _, err := buildConfig(runCmd)
	require.NoError(t, err)
	require.Equal(t, []sim.DeploymentTarget{
		{FromMonth: 6, Units: 10},
		{FromMonth: 12, Units: 25},
		{FromMonth: 18, Units: 40},
	}, inputs.DeploymentTargets)
}

func TestBuildConfig_UnknownPresetFails(t *testing.T) {
	presetName = "no-such-scenario"
	presetFile = writePresets(t, "scenarios:\n  base: {}\n")
	defer func() {
		presetName = ""
		presetFile = "presets.yaml"
	}()

	_, _, err := buildConfig(runCmd)
	require.Error(t, err)
}
