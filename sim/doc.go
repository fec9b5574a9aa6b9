// Package sim is the stochastic business-outcome engine: it models the
// month-by-month evolution of an infrastructure-deployment business under
// uncertainty, runs many independent randomized trials, and reduces the
// population to percentile statistics.
//
// # Reading Guide
//
// Start with these three files to understand the engine:
//   - config.go: SimulationInputs / StochasticParameters, defaults, validation
//   - engine.go: the monthly transition function (the eleven-stage state machine)
//   - driver.go: MonteCarlo, per-trial RNG derivation, sequential and parallel runs
//
// Supporting files:
//   - architecture.go / segment.go: the closed architecture and segment variants
//     with their cost and pricing constants
//   - sample.go: clipped normal and binomial draws over an explicit *rand.Rand
//   - trajectory.go: the per-month record a trial produces
//   - analysis.go: success rates, P10/P50/P90 aggregation, representative trajectories
//
// # Determinism
//
// Every random draw flows through the single *rand.Rand owned by one trial,
// derived from the run seed and the trial index (rng.go). Segment iteration is
// ordered, months advance strictly in sequence, and result collection is
// index-addressed, so a seed fully determines the trial population whether
// trials run sequentially or across workers.
//
// # Contract
//
// Callers hand in two plain value objects and get back either []*Trajectory
// or an AggregateAnalysis, both serializable to nested plain data. No engine
// type leaks randomness, goroutines, or I/O to the caller.
package sim
