// Package inspector implements the per-channel DSP pipeline: channel shift
// to baseband, AGC normalization, optional Costas carrier recovery, and a
// symbol-time sampler, plus the parameter/state discipline that governs it.
package inspector

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/kc9xyz/suscan-inspector/internal/channel"
	"github.com/kc9xyz/suscan-inspector/internal/dsp"
)

// Spike durations measured in symbol times.
const (
	fastRiseFrac   = 3.9062e-1
	fastFallFrac   = 2 * fastRiseFrac
	slowRiseFrac   = 10 * fastRiseFrac
	slowFallFrac   = 10 * fastFallFrac
	hangMaxFrac    = 0.19531
	delayLineFrac  = 0.39072
	magHistoryFrac = 0.39072

	// Costas arm filter roll-off factor. Accepted by the collaborator's
	// arm low-pass design in the source this is grounded on; this
	// implementation's CostasLoop has no arm filter of its own (the
	// detector/AGC smoothing ahead of it stands in for one) and does not
	// take beta.
	costasBeta = 0.35

	costasOrder = 3
)

// Inspector is a long-lived per-channel demodulation pipeline instance.
type Inspector struct {
	sampRate float64
	channel  channel.Descriptor

	facDet dsp.ChannelDetector
	nlnDet dsp.ChannelDetector

	// lo and the symbol-sampler bookkeeping below are touched only from
	// inside FeedBulk, so only one goroutine (the owning worker task)
	// ever calls FeedBulk on a given Inspector.
	lo dsp.NCO

	agc     dsp.AGC
	costas2 dsp.CostasLoop
	costas4 dsp.CostasLoop

	symPhase      float64
	symLastSample complex128
	symSamplerOut complex128
	symNewSample  bool

	// mu guards the fields below: ApplyParams (the analyzer goroutine)
	// writes them, and the top of each FeedBulk prelude (the worker
	// goroutine) reads a snapshot under the same lock.
	mu        sync.Mutex
	params    Params
	symPeriod float64
	loFreq    float64
	carrier   complex128

	state atomic.Int32
}

// New constructs an Inspector for the given effective sample rate and RF
// channel, in state Created. fs must be positive and ch.BW must be
// positive.
func New(fs float64, ch channel.Descriptor) (*Inspector, error) {
	if fs <= 0 {
		return nil, fmt.Errorf("inspector: sample rate must be positive, got %v", fs)
	}
	if ch.BW <= 0 {
		return nil, fmt.Errorf("inspector: channel bandwidth must be positive, got %v", ch.BW)
	}

	insp := &Inspector{
		sampRate: fs,
		channel:  ch,
		carrier:  1,
	}
	insp.state.Store(int32(Created))

	detParams := dsp.DetectorParams{
		SampRate:   fs,
		WindowSize: 4096,
		Alpha:      1e-4,
		BW:         ch.BW,
		FC:         ch.FC,
	}

	detParams.Mode = dsp.Autocorrelation
	insp.facDet = dsp.NewChannelDetector(detParams)

	detParams.Mode = dsp.NonlinearDiff
	insp.nlnDet = dsp.NewChannelDetector(detParams)

	insp.lo = dsp.NewNCO(0)

	sampPerSym := fs / ch.BW
	agcParams := dsp.AGCParams{
		FastRiseT:     sampPerSym * fastRiseFrac,
		FastFallT:     sampPerSym * fastFallFrac,
		SlowRiseT:     sampPerSym * slowRiseFrac,
		SlowFallT:     sampPerSym * slowFallFrac,
		HangMax:       sampPerSym * hangMaxFrac,
		DelayLineSize: sampPerSym * delayLineFrac,
		MagHistSize:   sampPerSym * magHistoryFrac,
	}
	insp.agc = dsp.NewAGC(agcParams)

	armCutoff := channel.Abs2Norm(fs, ch.BW)
	loopBW := 1e-2 * armCutoff

	insp.costas2 = dsp.NewCostasLoop(dsp.BPSK, 0, armCutoff, costasOrder, loopBW)
	insp.costas4 = dsp.NewCostasLoop(dsp.QPSK, 0, armCutoff, costasOrder, loopBW)

	return insp, nil
}

// State returns the inspector's current lifecycle state.
func (insp *Inspector) State() State { return State(insp.state.Load()) }

// SetState transitions the inspector to a new lifecycle state. Callers are
// responsible for respecting the single-writer-per-transition discipline
// (the analyzer writes Halting, the worker writes Halted).
func (insp *Inspector) SetState(s State) { insp.state.Store(int32(s)) }

// Params returns a copy of the inspector's current parameters.
func (insp *Inspector) Params() Params {
	insp.mu.Lock()
	defer insp.mu.Unlock()
	return insp.params
}

// InspectorID returns the client-chosen tag from the current parameters.
func (insp *Inspector) InspectorID() string {
	insp.mu.Lock()
	defer insp.mu.Unlock()
	return insp.params.InspectorID
}

// BaudEstimates returns the two independent baud estimates reported in a
// GET_INFO response.
func (insp *Inspector) BaudEstimates() (fac, nln float64) {
	return insp.facDet.Baud(), insp.nlnDet.Baud()
}

// ApplyParams installs new parameters from a PARAMS request: it retunes
// the symbol-period sampler and the carrier NCO/phase. AGC and
// Costas loop state are never reset here — carrier control is a running
// servo, and baud changes only retune the sampler.
func (insp *Inspector) ApplyParams(p Params) error {
	if !p.FcCtrl.Valid() {
		return fmt.Errorf("inspector: invalid fc_ctrl %v", p.FcCtrl)
	}

	var symPeriod float64
	if p.Baud > 0 {
		symPeriod = 1 / channel.Abs2NormBaud(insp.sampRate, p.Baud)
	}

	loFreq := channel.Abs2Norm(insp.sampRate, p.FcOff)
	carrier := complex(math.Cos(p.FcPhi), math.Sin(p.FcPhi))

	insp.mu.Lock()
	insp.params = p
	insp.symPeriod = symPeriod
	insp.loFreq = loFreq
	insp.carrier = carrier
	insp.mu.Unlock()

	return nil
}

// SymNewSample reports whether the most recent FeedBulk call produced a
// symbol sample.
func (insp *Inspector) SymNewSample() bool { return insp.symNewSample }

// SymSamplerOutput returns the symbol sample produced by the most recent
// firing of the sampler.
func (insp *Inspector) SymSamplerOutput() complex128 { return insp.symSamplerOut }
