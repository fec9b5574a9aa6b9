package sim

import (
	"math"
	"math/rand"
)

// Sampling helpers. Every draw clips to its valid domain after sampling; the
// engine never rejects or retries a sample, so aggregate statistics stay
// stable even under deliberately out-of-range spreads.

// sampleProbability draws from Normal(d.Mean, d.Spread) clipped to [0,1].
func sampleProbability(rng *rand.Rand, d Dist) float64 {
	return clip(rng.NormFloat64()*d.Spread+d.Mean, 0, 1)
}

// sampleNonNegative draws from Normal(d.Mean, d.Spread) clipped to >= 0.
func sampleNonNegative(rng *rand.Rand, d Dist) float64 {
	v := rng.NormFloat64()*d.Spread + d.Mean
	if v < 0 {
		return 0
	}
	return v
}

// sampleMultiplier draws a cost/salary multiplier from Normal(1.0, spread)
// clipped to >= 0. The draw happens even for a zero spread so that the RNG
// sequence does not depend on which spreads are configured.
func sampleMultiplier(rng *rand.Rand, spread float64) float64 {
	v := rng.NormFloat64()*spread + 1.0
	if v < 0 {
		return 0
	}
	return v
}

// binomial draws the number of successes in n Bernoulli trials with
// probability p. n is clipped to >= 0 and p to [0,1].
func binomial(rng *rand.Rand, n int, p float64) int {
	if n <= 0 {
		return 0
	}
	p = clip(p, 0, 1)
	successes := 0
	for i := 0; i < n; i++ {
		if rng.Float64() < p {
			successes++
		}
	}
	return successes
}

func clip(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
