package carry

import (
	"math/rand/v2"
	"sync"
)

// RandomSource yields independent standard-normal draws.
type RandomSource interface {
	NormFloat64() float64
}

// GaussianSource is a seeded PRNG-backed RandomSource. Safe for concurrent use.
type GaussianSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGaussianSource builds a reproducible source from seed.
func NewGaussianSource(seed uint64) *GaussianSource {
	return &GaussianSource{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NormFloat64 implements RandomSource.
func (g *GaussianSource) NormFloat64() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.NormFloat64()
}

// ScriptedSource replays a fixed sequence of draws, cycling when exhausted.
// An empty script always yields 0.
type ScriptedSource struct {
	draws []float64
	next  int
}

// NewScriptedSource copies draws into a new scripted source.
func NewScriptedSource(draws ...float64) *ScriptedSource {
	d := make([]float64, len(draws))
	copy(d, draws)
	return &ScriptedSource{draws: d}
}

// NormFloat64 implements RandomSource.
func (s *ScriptedSource) NormFloat64() float64 {
	if len(s.draws) == 0 {
		return 0
	}
	v := s.draws[s.next%len(s.draws)]
	s.next++
	return v
}

// ZeroSource always draws 0, which pins the exchange rate at 1.
type ZeroSource struct{}

// NormFloat64 implements RandomSource.
func (ZeroSource) NormFloat64() float64 { return 0 }

// SourceFactory hands out an independent source per ranked pair.
type SourceFactory func(index int, pair CurrencyPair) RandomSource

// SeededSources derives one Gaussian source per pair index from a base seed,
// so a whole analysis is reproducible from that seed.
func SeededSources(seed uint64) SourceFactory {
	return func(index int, _ CurrencyPair) RandomSource {
		return NewGaussianSource(seed + uint64(index)*0x2545f4914f6cdd1d)
	}
}

var (
	_ RandomSource = (*GaussianSource)(nil)
	_ RandomSource = (*ScriptedSource)(nil)
	_ RandomSource = ZeroSource{}
)
