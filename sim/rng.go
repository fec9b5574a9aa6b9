package sim

import (
	"fmt"
	"hash/fnv"
	"math/rand"
)

// === RunKey ===

// RunKey uniquely identifies a reproducible Monte Carlo run.
// Two runs with the same RunKey and identical configuration MUST produce
// bit-for-bit identical trial populations, regardless of worker count.
type RunKey int64

// NewRunKey creates a RunKey from a seed value.
func NewRunKey(seed int64) RunKey {
	return RunKey(seed)
}

// === TrialRNG derivation ===

// ForTrial returns a fresh deterministically-seeded RNG for the given trial
// index. The seed is the run seed XOR a hash of the trial label, so trials
// never share or leak draws even when executed concurrently.
//
// Thread-safety: the returned *rand.Rand is NOT thread-safe; it must be used
// by exactly one trial on one goroutine.
func (k RunKey) ForTrial(index int) *rand.Rand {
	derived := int64(k) ^ fnv1a64(fmt.Sprintf("trial_%d", index))
	return rand.New(rand.NewSource(derived))
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
