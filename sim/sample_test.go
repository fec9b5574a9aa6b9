package sim

import (
	"math/rand"
	"testing"
)

func TestSampleProbability_ClipsToUnitInterval(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	// Deliberately hostile spread: most draws land outside [0,1].
	d := Dist{Mean: 0.97, Spread: 0.5}
	for i := 0; i < 10_000; i++ {
		v := sampleProbability(rng, d)
		if v < 0 || v > 1 {
			t.Fatalf("draw %d: probability %f outside [0,1]", i, v)
		}
	}
}

func TestSampleNonNegative_NeverNegative(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	d := Dist{Mean: 0.5, Spread: 5.0}
	for i := 0; i < 10_000; i++ {
		if v := sampleNonNegative(rng, d); v < 0 {
			t.Fatalf("draw %d: got %f, want >= 0", i, v)
		}
	}
}

func TestSampleMultiplier_NeverNegative(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 10_000; i++ {
		if v := sampleMultiplier(rng, 2.0); v < 0 {
			t.Fatalf("draw %d: got %f, want >= 0", i, v)
		}
	}
}

func TestBinomial_Bounds(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	for i := 0; i < 1_000; i++ {
		n := rng.Intn(50)
		p := rng.Float64()*2 - 0.5 // includes values outside [0,1]
		got := binomial(rng, n, p)
		if got < 0 || got > n {
			t.Fatalf("binomial(%d, %f) = %d, want in [0,%d]", n, p, got, n)
		}
	}
}

func TestBinomial_DegenerateProbabilities(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	if got := binomial(rng, 100, 0); got != 0 {
		t.Errorf("binomial(100, 0) = %d, want 0", got)
	}
	if got := binomial(rng, 100, 1); got != 100 {
		t.Errorf("binomial(100, 1) = %d, want 100", got)
	}
	if got := binomial(rng, 0, 0.5); got != 0 {
		t.Errorf("binomial(0, 0.5) = %d, want 0", got)
	}
	if got := binomial(rng, -3, 0.5); got != 0 {
		t.Errorf("binomial(-3, 0.5) = %d, want 0", got)
	}
}
