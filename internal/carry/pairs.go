package carry

import (
	"math"
	"sort"
	"strings"
)

// Rate is one currency's annual interest rate.
type Rate struct {
	Currency string
	Annual   float64
}

// RateTable is an ordered, immutable set of currency rates with unique codes.
// Enumeration order is the order the rates were presented in.
type RateTable struct {
	rates []Rate
}

// NewRateTable validates and normalises the given rates.
func NewRateTable(rates ...Rate) (RateTable, error) {
	seen := make(map[string]struct{}, len(rates))
	out := make([]Rate, 0, len(rates))
	for _, r := range rates {
		code := strings.ToUpper(strings.TrimSpace(r.Currency))
		if code == "" {
			return RateTable{}, newError(ErrInvalidArgument, "rate table", "empty currency code")
		}
		if math.IsNaN(r.Annual) || math.IsInf(r.Annual, 0) {
			return RateTable{}, newError(ErrInvalidArgument, "rate table", "rate for %s is not finite", code)
		}
		if _, dup := seen[code]; dup {
			return RateTable{}, newError(ErrInvalidArgument, "rate table", "duplicate currency %s", code)
		}
		seen[code] = struct{}{}
		out = append(out, Rate{Currency: code, Annual: r.Annual})
	}
	return RateTable{rates: out}, nil
}

// RateTableFromMap builds a table enumerated in lexicographic currency order.
func RateTableFromMap(m map[string]float64) (RateTable, error) {
	codes := make([]string, 0, len(m))
	for code := range m {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	rates := make([]Rate, 0, len(codes))
	for _, code := range codes {
		rates = append(rates, Rate{Currency: code, Annual: m[code]})
	}
	return NewRateTable(rates...)
}

// Len reports the number of currencies.
func (t RateTable) Len() int {
	return len(t.rates)
}

// Rates returns a copy of the table in enumeration order.
func (t RateTable) Rates() []Rate {
	out := make([]Rate, len(t.rates))
	copy(out, t.rates)
	return out
}

// Lookup returns the annual rate for a currency code.
func (t RateTable) Lookup(currency string) (float64, bool) {
	code := strings.ToUpper(currency)
	for _, r := range t.rates {
		if r.Currency == code {
			return r.Annual, true
		}
	}
	return 0, false
}

// CurrencyPair is an unordered currency pair oriented so HighRate >= LowRate.
type CurrencyPair struct {
	High         string
	Low          string
	HighRate     float64
	LowRate      float64
	Differential float64
}

// Label renders the pair as "HIGH/LOW".
func (p CurrencyPair) Label() string {
	return p.High + "/" + p.Low
}

func newPair(a, b Rate) CurrencyPair {
	high, low := a, b
	if b.Annual > a.Annual {
		high, low = b, a
	}
	return CurrencyPair{
		High:         high.Currency,
		Low:          low.Currency,
		HighRate:     high.Annual,
		LowRate:      low.Annual,
		Differential: high.Annual - low.Annual,
	}
}

// RankPairs enumerates every unordered pair once and sorts them by
// differential, largest first. On equal rates the earlier-enumerated
// currency is the high leg; equal differentials keep enumeration order.
func RankPairs(table RateTable) []CurrencyPair {
	n := len(table.rates)
	if n < 2 {
		return []CurrencyPair{}
	}

	pairs := make([]CurrencyPair, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pairs = append(pairs, newPair(table.rates[i], table.rates[j]))
		}
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].Differential > pairs[j].Differential
	})
	return pairs
}
