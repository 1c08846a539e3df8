package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResampleTo16kIdentity(t *testing.T) {
	samples := []float32{0.1, 0.2, 0.3, -0.1}

	out, err := ResampleTo16k(samples, 16000)

	require.NoError(t, err)
	assert.Equal(t, samples, out)
}

func TestResampleTo16kChangesLengthProportionally(t *testing.T) {
	samples := make([]float32, 48000) // 1s @ 48kHz
	for i := range samples {
		samples[i] = 0.2
	}

	out, err := ResampleTo16k(samples, 48000)

	require.NoError(t, err)
	// ~1s of audio at 16kHz, padded-frame rounding gives it some slack.
	assert.InDelta(t, 16000, len(out), 2000)
}

func TestResampleTo16kUpsamplePreservesRoughDuration(t *testing.T) {
	samples := make([]float32, 8000) // 1s @ 8kHz
	for i := range samples {
		samples[i] = 0.2
	}

	out, err := ResampleTo16k(samples, 8000)

	require.NoError(t, err)
	assert.InDelta(t, 16000, len(out), 2000)
}
