package carry

import "math"

// DaysPerYear is the compounding convention used by DailyRate.
const DaysPerYear = 365

// DailyRate converts an annual compounding rate to the equivalent daily rate.
func DailyRate(annual float64) (float64, error) {
	if math.IsNaN(annual) || math.IsInf(annual, 0) || annual <= -1 {
		return 0, newError(ErrInvalidRate, "daily rate", "annual rate %v must be greater than -1", annual)
	}
	return math.Pow(1+annual, 1.0/DaysPerYear) - 1, nil
}

// SimpleReturn is the undiscounted carry earned on principal over one rate period.
func SimpleReturn(highRate, lowRate, principal float64) float64 {
	return (highRate - lowRate) * principal
}

// Dispersion returns the population standard deviation of {a, b}.
func Dispersion(a, b float64) float64 {
	return math.Abs(a-b) / 2
}

// Estimate pairs a simple return with its dispersion risk proxy.
type Estimate struct {
	HighRate float64
	LowRate  float64
	Return   float64
	Risk     float64
}

// LegacyEstimates zips two rate lists into simple return/risk estimates.
// The shorter list bounds the result.
func LegacyEstimates(highRates, lowRates []float64, principal float64) []Estimate {
	n := min(len(highRates), len(lowRates))
	out := make([]Estimate, 0, n)
	for i := 0; i < n; i++ {
		high, low := highRates[i], lowRates[i]
		out = append(out, Estimate{
			HighRate: high,
			LowRate:  low,
			Return:   SimpleReturn(high, low, principal),
			Risk:     Dispersion(high, low),
		})
	}
	return out
}
