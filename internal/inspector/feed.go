package inspector

import "math"

const sqrt2 = 1.41421356237309504880

// FeedBulk is the per-sample pipeline: each sample is fed to both baud
// detectors, mixed to baseband with the NCO/phase, AGC-normalized,
// optionally passed through a Costas loop, and checked against the symbol
// sampler. The loop stops at the first symbol firing (or when x is
// exhausted) so callers can batch exactly one sample per firing and keep
// tight back-pressure on the sample consumer.
//
// FeedBulk returns the number of samples actually consumed (0..len(x)) and
// a non-nil error if the channel detectors signal a feed failure, such
// that the caller can force-halt the inspector.
func (insp *Inspector) FeedBulk(x []complex128) (int, error) {
	insp.mu.Lock()
	params := insp.params
	symPeriod := insp.symPeriod
	loFreq := insp.loFreq
	carrier := insp.carrier
	insp.mu.Unlock()

	insp.lo.SetFreq(loFreq)

	targetPhase := params.SymPhase * symPeriod
	insp.symNewSample = false

	i := 0
	for ; i < len(x) && !insp.symNewSample; i++ {
		if err := insp.facDet.Feed(x[i]); err != nil {
			return i, err
		}
		if err := insp.nlnDet.Feed(x[i]); err != nil {
			return i, err
		}

		d := insp.facDet.LastWindowSample()

		d *= cmplxConj(insp.lo.Read()) * carrier
		d = complex(2*sqrt2, 0) * insp.agc.Feed(d)

		var sample complex128
		switch params.FcCtrl {
		case Manual:
			sample = d
		case Costas2:
			insp.costas2.Feed(d)
			sample = insp.costas2.Y()
		case Costas4:
			insp.costas4.Feed(d)
			sample = insp.costas4.Y()
		default:
			// ApplyParams already rejects invalid FcCtrl, so this is
			// unreachable in practice; fail loudly rather than feed an
			// uninitialized sample downstream.
			return i, errInvalidFcCtrl(params.FcCtrl)
		}

		if symPeriod >= 1 {
			insp.symPhase++
			if insp.symPhase >= symPeriod {
				insp.symPhase -= symPeriod
			}

			insp.symNewSample = math.Floor(insp.symPhase-targetPhase) == 0

			if insp.symNewSample {
				alpha := insp.symPhase - math.Floor(insp.symPhase)
				insp.symSamplerOut = complex(0.5, 0) * (complex(1-alpha, 0)*insp.symLastSample + complex(alpha, 0)*sample)
			}
		}

		insp.symLastSample = sample
	}

	return i, nil
}

func cmplxConj(c complex128) complex128 { return complex(real(c), -imag(c)) }
