// Package channel describes the RF channel a client nominates when opening
// an inspector, and the normalized-frequency conventions used throughout
// the DSP pipeline.
package channel

// Descriptor is the RF channel handed to OPEN and to the inspector
// constructor: a frequency range, bandwidth, nominal center frequency and
// noise floor estimate. Bandwidth and center frequency are in Hz.
type Descriptor struct {
	FLo        float64
	FHi        float64
	BW         float64
	FC         float64
	NoiseFloor float64
}

// Abs2Norm converts an absolute frequency in Hz to the normalized
// frequency convention used by the NCO and Costas loop: normalized =
// absolute_hz / sample_rate_hz.
func Abs2Norm(sampRate, hz float64) float64 {
	return hz / sampRate
}

// Abs2NormBaud converts a baud rate in symbols/second to the same
// normalized-frequency convention.
func Abs2NormBaud(sampRate, baud float64) float64 {
	return baud / sampRate
}
