package audio

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/halvorsen/scriptor/internal/apperr"
)

// LoadWAV reads a WAV (RIFF) file and returns mono float32 samples in
// [-1, 1] plus the file's native sample rate. Integer PCM is normalized by
// 2^(bits-1); float PCM is taken as-is. Multi-channel files are averaged to
// mono.
func LoadWAV(path string) ([]float32, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, apperr.NewUnsupportedAudioFormat("cannot open audio file", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, apperr.NewUnsupportedAudioFormat("not a valid WAV file", nil)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, apperr.NewUnsupportedAudioFormat("failed to decode WAV data", err)
	}

	rate := buf.Format.SampleRate
	channels := buf.Format.NumChannels
	if channels < 1 {
		channels = 1
	}

	var mono []float32
	if dec.WavAudioFormat == 3 {
		// IEEE float samples are stored pre-scaled in buf.Data as integers
		// reinterpreted by go-audio's buffer; fall back to its float view.
		fbuf := buf.AsFloatBuffer()
		mono = averageChannelsFloat(fbuf.Data, channels)
	} else {
		bits := dec.BitDepth
		if bits == 0 {
			bits = 16
		}
		maxVal := float32(int64(1) << (bits - 1))
		mono = averageChannelsInt(buf.Data, channels, maxVal)
	}

	return mono, rate, nil
}

func averageChannelsInt(data []int, channels int, maxVal float32) []float32 {
	if channels <= 1 {
		out := make([]float32, len(data))
		for i, v := range data {
			out[i] = float32(v) / maxVal
		}
		return out
	}
	frames := len(data) / channels
	out := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float32
		for c := 0; c < channels; c++ {
			sum += float32(data[i*channels+c]) / maxVal
		}
		out[i] = sum / float32(channels)
	}
	return out
}

func averageChannelsFloat(data []float64, channels int) []float32 {
	if channels <= 1 {
		out := make([]float32, len(data))
		for i, v := range data {
			out[i] = float32(v)
		}
		return out
	}
	frames := len(data) / channels
	out := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += data[i*channels+c]
		}
		out[i] = float32(sum / float64(channels))
	}
	return out
}

// WriteWAV16 writes mono float32 samples as 16-bit PCM WAV at the given
// sample rate, used for the sidecar backend's temporary-file handoff.
func WriteWAV16(path string, samples []float32, rate int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create wav file: %w", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, rate, 16, 1, 1)

	ints := make([]int, len(samples))
	for i, s := range samples {
		v := s * 32767.0
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		ints[i] = int(math.Round(float64(v)))
	}

	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: rate},
		Data:           ints,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("write wav samples: %w", err)
	}
	return enc.Close()
}

// LoadAudioFile dispatches on file extension; WAV is the only supported
// container.
func LoadAudioFile(path string) ([]float32, int, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".wav":
		return LoadWAV(path)
	default:
		return nil, 0, apperr.NewUnsupportedAudioFormat(fmt.Sprintf("unsupported audio format %q", ext), nil)
	}
}
