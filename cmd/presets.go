package cmd

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	sim "github.com/venture-sim/venture-sim/sim"
)

// PresetFile is the top-level structure of a presets YAML file: a map of
// named scenarios. A preset is just a pre-filled configuration fragment; it
// carries no state of its own.
type PresetFile struct {
	Scenarios map[string]Preset `yaml:"scenarios"`
}

// Preset overrides a subset of the base-case inputs. Nil fields leave the
// base case untouched.
type Preset struct {
	Architecture      *string                `yaml:"architecture,omitempty"`
	InitialFunding    *float64               `yaml:"initial_funding,omitempty"`
	InitialCashOffset *float64               `yaml:"initial_cash_offset,omitempty"`
	InitialUnits      *int                   `yaml:"initial_units,omitempty"`
	DeploymentTargets []sim.DeploymentTarget `yaml:"deployment_targets,omitempty"`
	Pricing           map[string]float64     `yaml:"pricing,omitempty"`
	InitialTeamSize   *int                   `yaml:"initial_team_size,omitempty"`
	TeamGrowthFactor  *float64               `yaml:"team_growth_factor,omitempty"`
	TeamGrowthCadence *int                   `yaml:"team_growth_cadence,omitempty"`
	SimulationMonths  *int                   `yaml:"simulation_months,omitempty"`
	NumSimulations    *int                   `yaml:"num_simulations,omitempty"`
	Thresholds        *sim.SuccessThresholds `yaml:"thresholds,omitempty"`
}

// LoadPreset reads the presets file and returns the named scenario.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadPreset(path, name string) (*Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading presets file: %w", err)
	}
	var file PresetFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("parsing presets file: %w", err)
	}
	preset, ok := file.Scenarios[name]
	if !ok {
		return nil, fmt.Errorf("preset %q not found in %s", name, path)
	}
	return &preset, nil
}

// Apply overlays the preset onto inputs. Validation happens later through
// sim.NewMonteCarlo, so a preset with bad values fails with the same
// field-naming errors as flag input.
func (p *Preset) Apply(inputs *sim.SimulationInputs) {
	if p.Architecture != nil {
		inputs.Architecture = sim.ArchitectureOption(*p.Architecture)
	}
	if p.InitialFunding != nil {
		inputs.InitialFunding = *p.InitialFunding
	}
	if p.InitialCashOffset != nil {
		inputs.InitialCashOffset = *p.InitialCashOffset
	}
	if p.InitialUnits != nil {
		inputs.InitialUnits = *p.InitialUnits
	}
	if len(p.DeploymentTargets) > 0 {
		inputs.DeploymentTargets = p.DeploymentTargets
	}
	for seg, price := range p.Pricing {
		inputs.Pricing[sim.CustomerSegment(seg)] = price
	}
	if p.InitialTeamSize != nil {
		inputs.InitialTeamSize = *p.InitialTeamSize
	}
	if p.TeamGrowthFactor != nil {
		inputs.TeamGrowthFactor = *p.TeamGrowthFactor
	}
	if p.TeamGrowthCadence != nil {
		inputs.TeamGrowthCadence = *p.TeamGrowthCadence
	}
	if p.SimulationMonths != nil {
		inputs.SimulationMonths = *p.SimulationMonths
	}
	if p.NumSimulations != nil {
		inputs.NumSimulations = *p.NumSimulations
	}
	if p.Thresholds != nil {
		inputs.Thresholds = *p.Thresholds
	}
}
