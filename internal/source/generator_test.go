package source

import (
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerator_ProducesUnitAmplitudeCarrierWithoutNoise(t *testing.T) {
	g := NewGenerator(1000, 100, 1.0, 0, 1)
	buf := make([]complex128, 10)
	n, err := g.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 10, n)
	for _, s := range buf {
		require.InDelta(t, 1.0, cmplx.Abs(s), 1e-9)
	}
}

func TestGenerator_DeterministicWithSameSeed(t *testing.T) {
	a := NewGenerator(1000, 100, 1.0, 0.1, 42)
	b := NewGenerator(1000, 100, 1.0, 0.1, 42)

	bufA := make([]complex128, 20)
	bufB := make([]complex128, 20)
	_, err := a.Read(bufA)
	require.NoError(t, err)
	_, err = b.Read(bufB)
	require.NoError(t, err)
	require.Equal(t, bufA, bufB)
}
