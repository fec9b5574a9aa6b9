package sim

// CustomerSegment identifies a customer category with its own pricing,
// conversion and churn behavior. The set is closed; Segments() fixes the
// iteration order so that trials draw randomness in a deterministic sequence.
type CustomerSegment string

const (
	SegmentPort          CustomerSegment = "port"
	SegmentNaval         CustomerSegment = "naval"
	SegmentEnvironmental CustomerSegment = "environmental"
	SegmentShipping      CustomerSegment = "shipping"
	SegmentInsurance     CustomerSegment = "insurance"
)

// Segments returns all customer segments in canonical order.
// Engine code must iterate segments through this slice, never through a map,
// so that identical seeds produce identical draw sequences.
func Segments() []CustomerSegment {
	return []CustomerSegment{
		SegmentPort,
		SegmentNaval,
		SegmentEnvironmental,
		SegmentShipping,
		SegmentInsurance,
	}
}

// Valid reports whether s is a recognized segment.
func (s CustomerSegment) Valid() bool {
	switch s {
	case SegmentPort, SegmentNaval, SegmentEnvironmental, SegmentShipping, SegmentInsurance:
		return true
	}
	return false
}

// leadsPerUnit is the number of sales leads one deployed unit surfaces per
// month in each segment, before the sales-effectiveness ramp is applied.
var leadsPerUnit = map[CustomerSegment]float64{
	SegmentPort:          4,
	SegmentNaval:         1,
	SegmentEnvironmental: 3,
	SegmentShipping:      2,
	SegmentInsurance:     2,
}

// defaultPricing is the base-case monthly price per customer by segment.
// Spans two orders of magnitude: environmental/shipping at $10k up to
// naval/government contracts at $500k.
var defaultPricing = map[CustomerSegment]float64{
	SegmentPort:          35_000,
	SegmentNaval:         500_000,
	SegmentEnvironmental: 10_000,
	SegmentShipping:      10_000,
	SegmentInsurance:     25_000,
}
