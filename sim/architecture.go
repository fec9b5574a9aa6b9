package sim

import "fmt"

// ArchitectureOption selects the infrastructure cost and facility model for a
// simulation. The set is closed: every cost switch in the engine is exhaustive
// over these three values, and Validate rejects anything else.
type ArchitectureOption string

const (
	// EdgeCompute places full processing hardware at every site: highest
	// upfront capital per unit, lowest recurring cost, no shared facility.
	EdgeCompute ArchitectureOption = "edge"

	// RegionalFacility uses lighter per-site hardware plus a shared regional
	// facility that is built once the deployed-unit count crosses a threshold.
	RegionalFacility ArchitectureOption = "regional"

	// CloudOnly streams everything to cloud processing: lowest upfront
	// capital, highest recurring unit cost, no facility ever built.
	CloudOnly ArchitectureOption = "cloud"
)

// ArchitectureOptions returns the valid options in a fixed order.
func ArchitectureOptions() []ArchitectureOption {
	return []ArchitectureOption{EdgeCompute, RegionalFacility, CloudOnly}
}

// Valid reports whether a is one of the three recognized options.
func (a ArchitectureOption) Valid() bool {
	switch a {
	case EdgeCompute, RegionalFacility, CloudOnly:
		return true
	}
	return false
}

// costModel holds the per-architecture cost constants used by the monthly
// transition. Money values are USD; recurring values are per month.
type costModel struct {
	UnitCapital       float64 // one-time charge when a unit finishes deploying
	UnitRecurring     float64 // on-site operating cost per deployed unit
	CloudPerUnit      float64 // cloud processing/storage cost per deployed unit
	FacilityThreshold int     // deployed units that trigger the facility build (0 = never)
	FacilityCapital   float64 // one-time facility build cost
	FacilityRecurring float64 // facility operating cost once built
}

// costModelFor returns the cost constants for the chosen architecture.
// Callers must have validated a; an unknown option panics because it can only
// be reached by bypassing Validate.
func costModelFor(a ArchitectureOption) costModel {
	switch a {
	case EdgeCompute:
		return costModel{
			UnitCapital:   500_000,
			UnitRecurring: 10_800, // $130k/yr on-site hardware and maintenance
			CloudPerUnit:  4_000,  // minimal cloud use (backups)
		}
	case RegionalFacility:
		return costModel{
			UnitCapital:       350_000,
			UnitRecurring:     2_500, // $30k/yr light edge hardware
			CloudPerUnit:      4_000,
			FacilityThreshold: 8,
			FacilityCapital:   2_000_000,
			FacilityRecurring: 16_700, // $200k/yr amortized across all units
		}
	case CloudOnly:
		return costModel{
			UnitCapital:   250_000,
			UnitRecurring: 2_500,
			CloudPerUnit:  15_000, // $180k/yr full cloud processing
		}
	}
	panic(fmt.Sprintf("costModelFor: unknown architecture %q", a))
}
