package sim

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Sampler draws the stochastic quantities used by crews.
type Sampler interface {
	// OffsiteMinutes draws a travel/offsite duration in minutes.
	OffsiteMinutes() float64
	// Vent draws a vented emission rate.
	Vent() float64
	// QuantError draws a quantification error with mean 0 and std-dev sd.
	QuantError(sd float64) float64
}

// EmpiricalSampler draws uniformly from empirical sample sets and samples
// quantification error from a normal distribution.
type EmpiricalSampler struct {
	rng     *rand.Rand
	offsite []float64
	vents   []float64
}

// NewEmpiricalSampler returns a sampler backed by rng. Empty sample sets
// yield zero.
func NewEmpiricalSampler(rng *rand.Rand, offsite, vents []float64) *EmpiricalSampler {
	return &EmpiricalSampler{rng: rng, offsite: offsite, vents: vents}
}

// NewSeededSampler builds a sampler on a PCG source seeded with seed.
func NewSeededSampler(seed uint64, offsite, vents []float64) *EmpiricalSampler {
	return NewEmpiricalSampler(NewRand(seed), offsite, vents)
}

// NewRand returns a PCG generator for seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func (s *EmpiricalSampler) pick(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return values[s.rng.IntN(len(values))]
}

// OffsiteMinutes implements Sampler.
func (s *EmpiricalSampler) OffsiteMinutes() float64 { return s.pick(s.offsite) }

// Vent implements Sampler.
func (s *EmpiricalSampler) Vent() float64 { return s.pick(s.vents) }

// QuantError implements Sampler.
func (s *EmpiricalSampler) QuantError(sd float64) float64 {
	if sd <= 0 {
		return 0
	}
	n := distuv.Normal{Mu: 0, Sigma: sd, Src: s.rng}
	return n.Rand()
}
