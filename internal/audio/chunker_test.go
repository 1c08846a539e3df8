package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmartChunkSingleChunkWhenShort(t *testing.T) {
	samples := make([]float32, 5*chunkerSampleRate) // 5s, under max

	chunks := SmartChunk(samples, DefaultChunkConfig())

	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, 1, chunks[0].TotalChunks)
	assert.Equal(t, int64(5000), chunks[0].EndMS)
}

func TestSmartChunkSplitsLongAudioAtSilence(t *testing.T) {
	cfg := DefaultChunkConfig()
	total := 20 * chunkerSampleRate // 20s, over max (14s)

	samples := make([]float32, total)
	for i := range samples {
		samples[i] = 0.5
	}
	// Silence patch inside the first chunk's allowed cut window (8s..14s).
	cutCenter := 10 * chunkerSampleRate
	window := cfg.VAD.windowSamples(chunkerSampleRate)
	for i := cutCenter - window; i < cutCenter+window; i++ {
		samples[i] = 0
	}

	chunks := SmartChunk(samples, cfg)

	require.GreaterOrEqual(t, len(chunks), 2)
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
		assert.Equal(t, len(chunks), c.TotalChunks)
		assert.LessOrEqual(t, c.EndMS-c.StartMS, int64(14000))
	}
	// Chunks are contiguous and ordered.
	for i := 1; i < len(chunks); i++ {
		assert.LessOrEqual(t, chunks[i-1].EndMS, chunks[i].StartMS+1)
	}
}

func TestSmartChunkTailChunkWhenRemainderFitsMax(t *testing.T) {
	cfg := DefaultChunkConfig()
	total := 16 * chunkerSampleRate // just over max, under 2*max

	samples := make([]float32, total)
	for i := range samples {
		samples[i] = 0.3
	}

	chunks := SmartChunk(samples, cfg)

	require.NotEmpty(t, chunks)
	last := chunks[len(chunks)-1]
	assert.Equal(t, int64(16000), last.EndMS)
}
