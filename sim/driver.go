package sim

import (
	"context"
	"fmt"
	"runtime"
	"sync"
)

// MonteCarlo runs a population of independent trials over one configuration.
// Construction validates the configuration, so a built MonteCarlo can never
// fail for configuration reasons; trials themselves never fail at all.
type MonteCarlo struct {
	Inputs SimulationInputs
	Params StochasticParameters
	Key    RunKey
}

// NewMonteCarlo validates the configuration and binds it to a run seed.
// Validation errors name the offending field and are returned before any
// compute cost is incurred.
func NewMonteCarlo(inputs SimulationInputs, params StochasticParameters, seed int64) (*MonteCarlo, error) {
	if err := inputs.Validate(); err != nil {
		return nil, fmt.Errorf("invalid simulation inputs: %w", err)
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid stochastic parameters: %w", err)
	}
	return &MonteCarlo{Inputs: inputs, Params: params, Key: NewRunKey(seed)}, nil
}

// RunTrial executes the single trial at the given index and returns its
// frozen trajectory. A trial run this way is bit-identical to the same index
// drawn from a full Run, which makes it the debugging and smoke-test entry
// point.
func (mc *MonteCarlo) RunTrial(index int) *Trajectory {
	st := newTrialState(&mc.Inputs, &mc.Params, mc.Key.ForTrial(index))
	return st.run()
}

// Run executes NumSimulations trials sequentially. Cancellation is
// cooperative between trials: completed trajectories are never affected, and
// a cancelled run returns ctx.Err with no partial population.
func (mc *MonteCarlo) Run(ctx context.Context) ([]*Trajectory, error) {
	trials := make([]*Trajectory, mc.Inputs.NumSimulations)
	for i := range trials {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		trials[i] = mc.RunTrial(i)
	}
	return trials, nil
}

// RunParallel executes the trial population across a worker pool. Results are
// index-addressed and each trial derives its own RNG from the run key, so the
// population is bit-identical to a sequential Run regardless of workers.
// workers <= 0 uses GOMAXPROCS.
func (mc *MonteCarlo) RunParallel(ctx context.Context, workers int) ([]*Trajectory, error) {
	n := mc.Inputs.NumSimulations
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}
	if workers == 1 {
		return mc.Run(ctx)
	}

	trials := make([]*Trajectory, n)
	indices := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				trials[i] = mc.RunTrial(i)
			}
		}()
	}

	var cancelled error
feed:
	for i := 0; i < n; i++ {
		select {
		case indices <- i:
		case <-ctx.Done():
			cancelled = ctx.Err()
			break feed
		}
	}
	close(indices)
	wg.Wait()

	if cancelled != nil {
		return nil, cancelled
	}
	return trials, nil
}
