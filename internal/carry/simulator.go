package carry

import "math"

// minExchangeRate is the magnitude below which the random walk is treated as collapsed.
const minExchangeRate = 1e-12

// Path holds the cumulative return and risk series of one simulation.
// Both slices have length days+1 and start at 0.
type Path struct {
	Returns []float64
	Risks   []float64
}

// FinalReturn is the last cumulative return.
func (p Path) FinalReturn() float64 {
	if len(p.Returns) == 0 {
		return 0
	}
	return p.Returns[len(p.Returns)-1]
}

// FinalRisk is the last cumulative risk.
func (p Path) FinalRisk() float64 {
	if len(p.Risks) == 0 {
		return 0
	}
	return p.Risks[len(p.Risks)-1]
}

// Simulate walks the exchange rate multiplicatively for days steps, accruing
// the daily carry (converted at the current rate) and the absolute shock on
// principal.
func Simulate(pair CurrencyPair, principal float64, days int, volatility float64, src RandomSource) (Path, error) {
	const op = "simulate"
	switch {
	case days < 0:
		return Path{}, newError(ErrInvalidArgument, op, "days %d must not be negative", days)
	case math.IsNaN(principal) || math.IsInf(principal, 0):
		return Path{}, newError(ErrInvalidArgument, op, "principal %v must be finite", principal)
	case math.IsNaN(volatility) || volatility < 0:
		return Path{}, newError(ErrInvalidArgument, op, "volatility %v must not be negative", volatility)
	case src == nil:
		return Path{}, newError(ErrInvalidArgument, op, "random source is required")
	}

	dailyHigh, err := DailyRate(pair.HighRate)
	if err != nil {
		return Path{}, err
	}
	dailyLow, err := DailyRate(pair.LowRate)
	if err != nil {
		return Path{}, err
	}
	carry := (dailyHigh - dailyLow) * principal

	path := Path{
		Returns: make([]float64, days+1),
		Risks:   make([]float64, days+1),
	}

	exchangeRate := 1.0
	for t := 1; t <= days; t++ {
		delta := volatility * src.NormFloat64()
		exchangeRate *= 1 + delta
		if math.IsNaN(exchangeRate) || math.IsInf(exchangeRate, 0) || math.Abs(exchangeRate) < minExchangeRate {
			return Path{}, newError(ErrDegenerateSimulation, op,
				"%s exchange rate reached %v on day %d", pair.Label(), exchangeRate, t)
		}

		path.Returns[t] = path.Returns[t-1] + carry/exchangeRate
		path.Risks[t] = path.Risks[t-1] + math.Abs(delta*principal)
	}

	return path, nil
}
