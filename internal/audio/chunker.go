package audio

// Chunk is a contiguous slice of 16 kHz mono samples plus its position in
// the overall stream.
type Chunk struct {
	Samples     []float32
	StartMS     int64
	EndMS       int64
	Index       int
	TotalChunks int
}

// ChunkConfig bounds the smart, VAD-based chunker.
type ChunkConfig struct {
	MinSeconds      float64
	TargetSeconds   float64
	MaxSeconds      float64
	OverlapSeconds  float64
	VAD             VADConfig
}

// DefaultChunkConfig holds the smart-chunker's default tuning.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		MinSeconds:     8,
		TargetSeconds:  10,
		MaxSeconds:     14,
		OverlapSeconds: 0.5,
		VAD:            DefaultVADConfig(),
	}
}

const chunkerSampleRate = 16000

// SmartChunk splits samples (assumed 16 kHz mono) into chunks of at most
// MaxSeconds, preferring to cut at silence boundaries found by the VAD.
func SmartChunk(samples []float32, cfg ChunkConfig) []Chunk {
	total := len(samples)
	maxSamples := int(cfg.MaxSeconds * chunkerSampleRate)
	minSamples := int(cfg.MinSeconds * chunkerSampleRate)
	overlapSamples := int(cfg.OverlapSeconds * chunkerSampleRate)

	if total <= maxSamples {
		return []Chunk{newChunk(samples, 0, total, 0, 1)}
	}

	var raw [][2]int // [start, end) pairs, pre-indexing
	start := 0
	for start < total {
		if total-start <= maxSamples {
			raw = append(raw, [2]int{start, total})
			break
		}

		searchStart := start + minSamples
		searchEnd := start + maxSamples
		if searchEnd > total {
			searchEnd = total
		}

		cut, _, silent := FindBestCutPoint(samples, searchStart, searchEnd, chunkerSampleRate, cfg.VAD)

		var end int
		if silent {
			end = cut
		} else {
			end = cut + overlapSamples
			if end > total {
				end = total
			}
		}
		raw = append(raw, [2]int{start, end})
		start = cut
	}

	chunks := make([]Chunk, len(raw))
	for i, r := range raw {
		chunks[i] = newChunk(samples, r[0], r[1], i, len(raw))
	}
	return chunks
}

func newChunk(samples []float32, start, end, index, total int) Chunk {
	s := make([]float32, end-start)
	copy(s, samples[start:end])
	return Chunk{
		Samples:     s,
		StartMS:     int64(start) * 1000 / chunkerSampleRate,
		EndMS:       int64(end) * 1000 / chunkerSampleRate,
		Index:       index,
		TotalChunks: total,
	}
}
