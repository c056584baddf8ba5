package source

import (
	"math"
	"math/cmplx"
	"math/rand/v2"
)

// Generator is a deterministic synthetic Source: a constant-frequency
// carrier with optional additive complex Gaussian noise, for tests and
// hardware-free demos.
type Generator struct {
	sampRate  float64
	freqNorm  float64 // cycles/sample
	amplitude float64
	noiseStd  float64
	rng       *rand.Rand

	phase float64 // cycles, 0..1
}

// NewGenerator returns a Generator producing a carrier at freqHz against
// sampRate, with the given amplitude and additive-noise standard
// deviation (0 disables noise). seed makes the noise sequence
// reproducible across runs.
func NewGenerator(sampRate, freqHz, amplitude, noiseStd float64, seed uint64) *Generator {
	return &Generator{
		sampRate:  sampRate,
		freqNorm:  freqHz / sampRate,
		amplitude: amplitude,
		noiseStd:  noiseStd,
		rng:       rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (g *Generator) SampleRate() float64 { return g.sampRate }

func (g *Generator) Read(buf []complex128) (int, error) {
	for i := range buf {
		s := g.amplitude * cmplx.Exp(complex(0, 2*math.Pi*g.phase))
		g.phase += g.freqNorm
		g.phase -= math.Floor(g.phase)

		if g.noiseStd > 0 {
			s += complex(g.rng.NormFloat64()*g.noiseStd, g.rng.NormFloat64()*g.noiseStd)
		}
		buf[i] = s
	}
	return len(buf), nil
}

func (g *Generator) Close() error { return nil }
