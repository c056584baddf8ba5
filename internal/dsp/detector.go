package dsp

import "math/cmplx"

// channelDetector is a concrete ChannelDetector. It keeps an
// exponentially-smoothed ("windowed") copy of the stream as
// LastWindowSample, and estimates baud by timing threshold crossings of a
// feature derived from the incoming samples: the real part of the lag-1
// autocorrelation for Mode==Autocorrelation, or the sample-to-sample magnitude
// difference for Mode==NonlinearDiff. Both feed the same crossing-interval
// estimator; only the feature differs, so the pair covers signal classes
// where one feature alone would fail.
type channelDetector struct {
	params DetectorParams

	windowed complex128 // last_window_sample
	prev     complex128
	havePrev bool

	feature     float64 // smoothed feature used for threshold crossings
	aboveThresh bool
	sampleIdx   uint64
	lastCross   uint64
	haveCross   bool

	baud float64
}

// NewChannelDetector returns a concrete autocorrelation- or
// nonlinear-difference-based baud detector.
func NewChannelDetector(p DetectorParams) ChannelDetector {
	return &channelDetector{params: p}
}

func (d *channelDetector) Feed(x complex128) error {
	// Exponential smoothing de-spikes the raw stream; alpha close to 0
	// yields a slowly-varying windowed sample.
	alpha := d.params.Alpha
	if alpha <= 0 || alpha > 1 {
		alpha = 1e-2
	}
	d.windowed = complex(alpha, 0)*x + complex(1-alpha, 0)*d.windowed

	var f float64
	switch d.params.Mode {
	case NonlinearDiff:
		if d.havePrev {
			f = cmplx.Abs(x - d.prev)
		}
	default: // Autocorrelation
		if d.havePrev {
			// Real part of the lag-1 autocorrelation, a standard symbol-clock
			// feature: it peaks near the true symbol rate for bandlimited
			// PSK/FSK streams.
			f = real(x*cmplx.Conj(d.prev))
		}
	}
	d.prev = x
	d.havePrev = true

	// Smooth the feature and detect crossings of a single zero threshold
	// (no hysteresis) to time symbol transitions.
	d.feature = 0.1*f + 0.9*d.feature
	thresh := 0.0
	above := d.feature > thresh
	if above != d.aboveThresh {
		if d.haveCross {
			interval := d.sampleIdx - d.lastCross
			if interval > 0 && d.params.SampRate > 0 {
				instBaud := d.params.SampRate / float64(interval)
				if d.baud == 0 {
					d.baud = instBaud
				} else {
					d.baud = 0.95*d.baud + 0.05*instBaud
				}
			}
		}
		d.lastCross = d.sampleIdx
		d.haveCross = true
		d.aboveThresh = above
	}

	d.sampleIdx++
	return nil
}

func (d *channelDetector) LastWindowSample() complex128 { return d.windowed }

func (d *channelDetector) Baud() float64 { return d.baud }
