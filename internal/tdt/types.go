// Package tdt implements the Token-and-Duration-Transducer decoding core:
// the fixed-shape tensor stage contracts, greedy and beam decode loops, and
// the hallucination filter applied to chunked output. It is backend
// agnostic — internal/backend supplies concrete Stages backed by ONNX
// Runtime sessions.
package tdt

import "fmt"

// Fixed shapes and contract constants from the model's external interface.
const (
	MaxRawSamples   = 240000
	MelBins         = 128
	MelFrames       = 1501
	EncoderDim      = 1024
	EncoderMaxSteps = 188
	DecoderHidden   = 640
	LSTMLayers      = 2

	VocabSize       = 8193
	BlankID         = 8192
	DurationClasses = 5

	// Language priming token ids, injected before the main decode loop.
	primeTokenFrench  = 71
	primeTokenEnglish = 64
)

// Language selects priming behavior for the decoder.
type Language int

const (
	LanguageAuto Language = iota
	LanguageFrench
	LanguageEnglish
)

func (l Language) primeToken() (int, bool) {
	switch l {
	case LanguageFrench:
		return primeTokenFrench, true
	case LanguageEnglish:
		return primeTokenEnglish, true
	default:
		return 0, false
	}
}

// DecodingConfig controls beam width, logit temperature, and blank penalty.
type DecodingConfig struct {
	BeamWidth    int
	Temperature  float32
	BlankPenalty float32
}

// DefaultDecodingConfig is greedy decoding, no temperature scaling, and a
// blank penalty of 6.
func DefaultDecodingConfig() DecodingConfig {
	return DecodingConfig{BeamWidth: 1, Temperature: 1.0, BlankPenalty: 6.0}
}

// MelOutput is the fixed-shape (MelBins x MelFrames) mel spectrogram buffer
// plus the count of frames actually derived from audio.
type MelOutput struct {
	Data        []float32 // feature-major: idx = mel*MelFrames + frame
	ValidFrames int
}

// EncoderOutput is the fixed-shape (EncoderDim x EncoderMaxSteps) encoded
// buffer plus the count of valid time steps.
type EncoderOutput struct {
	Data           []float32 // feature-major: idx = dim*EncoderMaxSteps + t
	ValidTimeSteps int
}

// Frame returns the EncoderDim-length feature vector at time step t. It
// errors for t >= ValidTimeSteps: content beyond the valid region is
// undefined and must never be read.
func (e EncoderOutput) Frame(t int) ([]float32, error) {
	if t < 0 || t >= e.ValidTimeSteps {
		return nil, fmt.Errorf("tdt: encoder frame %d out of valid range [0,%d)", t, e.ValidTimeSteps)
	}
	out := make([]float32, EncoderDim)
	for d := 0; d < EncoderDim; d++ {
		out[d] = e.Data[d*EncoderMaxSteps+t]
	}
	return out, nil
}

// LSTMState is the decoder's recurrent state, carried as a value so beam
// search can clone it per hypothesis without aliasing.
type LSTMState struct {
	H []float32 // LSTMLayers * DecoderHidden
	C []float32 // LSTMLayers * DecoderHidden
}

// ZeroLSTMState returns the initial all-zero state.
func ZeroLSTMState() LSTMState {
	return LSTMState{
		H: make([]float32, LSTMLayers*DecoderHidden),
		C: make([]float32, LSTMLayers*DecoderHidden),
	}
}

// Clone returns a deep, independent copy of the state.
func (s LSTMState) Clone() LSTMState {
	h := make([]float32, len(s.H))
	c := make([]float32, len(s.C))
	copy(h, s.H)
	copy(c, s.C)
	return LSTMState{H: h, C: c}
}
