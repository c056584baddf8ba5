// Package dsp defines the external-collaborator interfaces the inspector
// pipeline depends on (the channel-detector, NCO, AGC and Costas-loop
// libraries), plus one concrete implementation of each so the pipeline
// builds and runs end to end without a real sigutils-equivalent
// dependency.
package dsp

import (
	"math"
	"math/cmplx"
)

// DetectorMode selects the baud-estimation strategy a ChannelDetector uses.
type DetectorMode int

const (
	Autocorrelation DetectorMode = iota
	NonlinearDiff
)

// DetectorParams mirrors the collaborator's construction parameters: mode,
// sample rate, window size, smoothing factor alpha, and the channel's
// bandwidth/center frequency.
type DetectorParams struct {
	Mode       DetectorMode
	SampRate   float64
	WindowSize int
	Alpha      float64
	BW         float64
	FC         float64
}

// ChannelDetector is fed every sample of the channel and maintains a
// windowed/de-spiked version of the stream (LastWindowSample) plus a
// running baud-rate estimate.
type ChannelDetector interface {
	Feed(x complex128) error
	LastWindowSample() complex128
	Baud() float64
}

// NCO is a numerically controlled oscillator: Read returns
// exp(i*2*pi*f*n) and advances n by one sample.
type NCO interface {
	SetFreq(normalized float64)
	Read() complex128
}

// AGCParams mirrors the collaborator's construction parameters: all of
// these are in samples.
type AGCParams struct {
	FastRiseT     float64
	FastFallT     float64
	SlowRiseT     float64
	SlowFallT     float64
	HangMax       float64
	DelayLineSize float64
	MagHistSize   float64
}

// AGC normalizes the amplitude of a complex baseband stream.
type AGC interface {
	Feed(x complex128) complex128
}

// CostasKind selects the phase-ambiguity order of a Costas loop.
type CostasKind int

const (
	BPSK CostasKind = iota
	QPSK
)

// CostasLoop is a carrier-recovery PLL for suppressed-carrier PSK.
type CostasLoop interface {
	Feed(x complex128)
	Y() complex128
}

// simpleNCO is a free-running digital oscillator.
type simpleNCO struct {
	phase float64 // cycles, 0..1
	freq  float64 // normalized cycles/sample
}

// NewNCO returns an NCO starting at the given initial phase (radians).
func NewNCO(initialPhaseRad float64) NCO {
	return &simpleNCO{phase: initialPhaseRad / (2 * math.Pi)}
}

func (n *simpleNCO) SetFreq(normalized float64) { n.freq = normalized }

func (n *simpleNCO) Read() complex128 {
	out := cmplx.Exp(complex(0, 2*math.Pi*n.phase))
	n.phase += n.freq
	n.phase -= math.Floor(n.phase)
	return out
}
