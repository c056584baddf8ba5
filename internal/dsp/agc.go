package dsp

import "math/cmplx"

// agc is a concrete feedback AGC: it tracks signal magnitude with
// asymmetric rise/fall time constants (fast vs slow, with a hang interval
// before the slow loop takes over) and scales the sample to drive the
// tracked magnitude towards unity.
type agc struct {
	params AGCParams

	level    float64
	hangLeft float64
}

// NewAGC returns a concrete automatic-gain-control collaborator.
func NewAGC(p AGCParams) AGC {
	return &agc{params: p, level: 1}
}

func (a *agc) Feed(x complex128) complex128 {
	mag := cmplx.Abs(x)
	if mag == 0 {
		return 0
	}

	rising := mag > a.level
	var tau float64
	switch {
	case rising && a.hangLeft > 0:
		tau = a.params.FastRiseT
	case rising:
		tau = a.params.SlowRiseT
	case a.hangLeft > 0:
		tau = a.params.FastFallT
	default:
		tau = a.params.SlowFallT
	}
	if tau <= 0 {
		tau = 1
	}

	k := 1 / tau
	a.level += k * (mag - a.level)
	if a.level <= 0 {
		a.level = mag
	}

	if rising {
		a.hangLeft = a.params.HangMax
	} else if a.hangLeft > 0 {
		a.hangLeft--
	}

	gain := 1 / a.level
	return complex(real(x)*gain, imag(x)*gain)
}
