package dsp

import "math"

// costasLoop is a concrete decision-directed Costas loop: it de-rotates the
// input by an internally tracked phase/frequency estimate, derives a phase
// error from the de-rotated sample (BPSK: real*imag; QPSK: the
// sign(I)*Q - sign(Q)*I four-fold detector), and steers an internal NCO
// with a standard proportional-integral loop filter sized from the loop
// bandwidth.
type costasLoop struct {
	kind CostasKind
	arm  CostasKind // never set or read; kept for symmetry with init signature
	freq float64    // normalized
	phi  float64    // radians

	alpha float64 // proportional gain
	beta  float64 // integral gain

	y complex128
}

// NewCostasLoop returns a concrete Costas loop. order and armBWNormalized
// are accepted for interface fidelity with the collaborator signature; the
// arm low-pass they'd configure is folded into the caller's AGC/detector
// smoothing in this implementation.
func NewCostasLoop(kind CostasKind, initFreq, armBWNormalized float64, order int, loopBWNormalized float64) CostasLoop {
	// Standard second-order PLL gain mapping from normalized loop
	// bandwidth, damping factor 1/sqrt(2).
	const damping = 0.70710678
	theta := loopBWNormalized / (damping + 1/(4*damping))
	d := 1 + 2*damping*theta + theta*theta
	alpha := (4 * damping * theta) / d
	beta := (4 * theta * theta) / d

	return &costasLoop{
		kind:  kind,
		freq:  initFreq,
		alpha: alpha,
		beta:  beta,
	}
}

func (c *costasLoop) Feed(x complex128) {
	rot := complex(math.Cos(-c.phi), math.Sin(-c.phi))
	d := x * rot
	c.y = d

	var err float64
	i, q := real(d), imag(d)
	switch c.kind {
	case QPSK:
		err = sign(i)*q - sign(q)*i
	default: // BPSK
		err = i * q
	}

	c.freq += c.beta * err
	c.phi += c.freq + c.alpha*err
	c.phi = math.Mod(c.phi, 2*math.Pi)
}

func (c *costasLoop) Y() complex128 { return c.y }

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
