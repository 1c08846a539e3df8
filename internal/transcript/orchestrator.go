package transcript

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/halvorsen/scriptor/internal/apperr"
	"github.com/halvorsen/scriptor/internal/audio"
	"github.com/halvorsen/scriptor/internal/logger"
	"github.com/halvorsen/scriptor/internal/tdt"
)

// Engine is the subset of backend.DynamicEngine the orchestrator needs,
// kept narrow here so tests can stub it without pulling in the backend
// package's ONNX dependency.
type Engine interface {
	IsLoaded() bool
	RunInference(samples []float32, language tdt.Language, cfg tdt.DecodingConfig) (string, error)
}

// Orchestrator runs the chunked-inference pipeline and builds
// Transcription records, falling back to a mock record whenever the
// engine has no model loaded or inference fails outright.
type Orchestrator struct {
	engine Engine
	log    *logger.Logger
}

// New builds an Orchestrator over engine.
func New(engine Engine, log *logger.Logger) *Orchestrator {
	return &Orchestrator{engine: engine, log: log}
}

// Transcribe runs duration computation, chunked inference, hallucination
// filtering, and concatenation, returning the resulting Transcription.
// It never fails the caller: an unloaded engine or an inference error
// both produce a mock, zero-confidence record.
func (o *Orchestrator) Transcribe(samples []float32, sourceType SourceType, sourceName string, language tdt.Language, cfg tdt.DecodingConfig) (Transcription, error) {
	durationMS := audio.DurationMS(samples, 16000)
	now := time.Now().UTC()

	if len(samples) == 0 {
		return emptyTranscription(sourceType, sourceName, now), nil
	}

	if !o.engine.IsLoaded() {
		o.log.Warn("transcript: engine not loaded, returning mock transcription")
		return mockTranscription(sourceType, sourceName, durationMS, now), nil
	}

	text, err := o.runChunked(samples, language, cfg)
	if err != nil {
		o.log.Error("transcript: inference failed: %v", err)
		return mockTranscription(sourceType, sourceName, durationMS, now), nil
	}

	return Transcription{
		ID:          uuid.NewString(),
		CreatedAt:   now,
		UpdatedAt:   now,
		SourceType:  sourceType,
		SourceName:  sourceName,
		DurationMS:  durationMS,
		LanguageTag: "fr",
		Segments: []Segment{
			{StartMS: 0, EndMS: durationMS, Text: text, Confidence: 0.95},
		},
		RawText:  text,
		IsEdited: false,
	}, nil
}

// runChunked splits samples into VAD-aware chunks, transcribes each,
// filters hallucinated leading text on multi-chunk outputs, and
// concatenates survivors with a single space.
func (o *Orchestrator) runChunked(samples []float32, language tdt.Language, cfg tdt.DecodingConfig) (string, error) {
	chunks := audio.SmartChunk(samples, audio.DefaultChunkConfig())
	multiChunk := len(chunks) > 1

	var parts []string
	for _, c := range chunks {
		text, err := o.engine.RunInference(c.Samples, language, cfg)
		if err != nil {
			o.log.Warn("transcript: chunk %d/%d failed: %v", c.Index+1, c.TotalChunks, err)
			continue
		}

		text = strings.TrimSpace(text)
		if multiChunk {
			text = tdt.FilterHallucination(text)
		}
		if text == "" {
			continue
		}
		parts = append(parts, text)
	}

	if len(parts) == 0 {
		return "", apperr.NewTranscriptionFailed("all chunks failed", nil)
	}
	return strings.Join(parts, " "), nil
}

// emptyTranscription is the boundary-case result for zero input samples: a
// zero-duration record with no segments and empty raw text, never routed
// through the engine or the mock-fallback placeholder.
func emptyTranscription(sourceType SourceType, sourceName string, now time.Time) Transcription {
	return Transcription{
		ID:          uuid.NewString(),
		CreatedAt:   now,
		UpdatedAt:   now,
		SourceType:  sourceType,
		SourceName:  sourceName,
		DurationMS:  0,
		LanguageTag: "fr",
		RawText:     "",
		IsEdited:    false,
	}
}

func mockTranscription(sourceType SourceType, sourceName string, durationMS int64, now time.Time) Transcription {
	const placeholder = "[transcription unavailable]"
	return Transcription{
		ID:          uuid.NewString(),
		CreatedAt:   now,
		UpdatedAt:   now,
		SourceType:  sourceType,
		SourceName:  sourceName,
		DurationMS:  durationMS,
		LanguageTag: "fr",
		Segments: []Segment{
			{StartMS: 0, EndMS: durationMS, Text: placeholder, Confidence: 0},
		},
		RawText:  placeholder,
		IsEdited: false,
	}
}
