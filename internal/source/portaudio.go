//go:build portaudio

package source

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// PortAudioSource reads a mono input device and presents it as a complex
// baseband stream with I = sample, Q = 0, for local development against
// real hardware without a real SDR front end.
type PortAudioSource struct {
	sampRate float64
	stream   *portaudio.Stream
	mono     []float32
}

// OpenPortAudio opens the default input device at sampRate with the given
// frames-per-buffer, and initializes the PortAudio library.
func OpenPortAudio(sampRate float64, framesPerBuffer int) (*PortAudioSource, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("source: portaudio init: %w", err)
	}

	s := &PortAudioSource{
		sampRate: sampRate,
		mono:     make([]float32, framesPerBuffer),
	}

	stream, err := portaudio.OpenDefaultStream(1, 0, sampRate, framesPerBuffer, s.mono)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("source: open default stream: %w", err)
	}
	s.stream = stream

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("source: start stream: %w", err)
	}

	return s, nil
}

func (s *PortAudioSource) SampleRate() float64 { return s.sampRate }

func (s *PortAudioSource) Read(buf []complex128) (int, error) {
	n := len(buf)
	if n > len(s.mono) {
		n = len(s.mono)
	}
	if err := s.stream.Read(); err != nil {
		return 0, fmt.Errorf("source: read stream: %w", err)
	}
	for i := 0; i < n; i++ {
		buf[i] = complex(float64(s.mono[i]), 0)
	}
	return n, nil
}

func (s *PortAudioSource) Close() error {
	if err := s.stream.Stop(); err != nil {
		return fmt.Errorf("source: stop stream: %w", err)
	}
	if err := s.stream.Close(); err != nil {
		return fmt.Errorf("source: close stream: %w", err)
	}
	return portaudio.Terminate()
}
