// Package source provides sample-stream producers for the analyzer's
// Consumer collaborators: a deterministic synthetic generator for tests
// and hardware-free demos, and a PortAudio-backed adapter (build-tag
// gated) for local development against a real sound device.
package source

// Source produces a live complex baseband sample stream at a fixed
// effective sample rate.
type Source interface {
	// SampleRate returns the effective sample rate in Hz.
	SampleRate() float64
	// Read blocks until at least one sample is available and returns as
	// many as are ready, up to len(buf) samples copied into buf.
	Read(buf []complex128) (n int, err error)
	// Close releases any underlying device or generator resources.
	Close() error
}
