package backend

import (
	"path/filepath"

	"github.com/halvorsen/scriptor/internal/apperr"
	"github.com/halvorsen/scriptor/internal/tdt"
	"github.com/halvorsen/scriptor/internal/vocab"
	ort "github.com/yalue/onnxruntime_go"
)

// GraphBEngine is the ONNX Runtime-flavored backend: mel and encoder are
// still separate graphs, but decoder and joint ship combined as one
// decoder_joint graph. Sessions are stateless between calls, so unlike
// GraphAEngine this backend keeps its handles open across transcriptions
// instead of rebuilding them each time.
type GraphBEngine struct {
	modelDir string
	loaded   bool
	vocab    *vocab.Vocabulary

	mel          *onnxMelStage
	encoder      *onnxEncoderStage
	decoderJoint *fusedDecoderJointStage
}

// NewGraphBEngine constructs an unloaded GraphBEngine.
func NewGraphBEngine() *GraphBEngine {
	return &GraphBEngine{}
}

func (e *GraphBEngine) Name() string   { return "onnxruntime" }
func (e *GraphBEngine) IsLoaded() bool { return e.loaded }

// LoadModel opens the three persistent sessions named by the
// ONNX-Runtime-flavored model directory contract, preferring the int8
// encoder and falling back to the full-precision one.
func (e *GraphBEngine) LoadModel(modelDir string) error {
	e.closeSessions()

	melPath := filepath.Join(modelDir, "nemo128.onnx")
	encPath := resolveEncoderPath(modelDir)
	djPath := filepath.Join(modelDir, "decoder_joint-model.onnx")

	mel, err := newOnnxMelStage(melPath)
	if err != nil {
		return apperr.NewModelLoadFailed(melPath, err)
	}
	enc, err := newOnnxEncoderStage(encPath)
	if err != nil {
		mel.Close()
		return apperr.NewModelLoadFailed(encPath, err)
	}
	dj, err := newFusedDecoderJointStage(djPath)
	if err != nil {
		mel.Close()
		enc.Close()
		return apperr.NewModelLoadFailed(djPath, err)
	}

	v, err := loadVocab(modelDir)
	if err != nil {
		mel.Close()
		enc.Close()
		dj.Close()
		return apperr.NewVocabularyError(modelDir, err)
	}

	e.modelDir = modelDir
	e.mel, e.encoder, e.decoderJoint = mel, enc, dj
	e.vocab = v
	e.loaded = true
	return nil
}

func resolveEncoderPath(modelDir string) string {
	int8 := filepath.Join(modelDir, "encoder-model.int8.onnx")
	if _, _, err := ort.GetInputOutputInfo(int8); err == nil {
		return int8
	}
	return filepath.Join(modelDir, "encoder-model.onnx")
}

func (e *GraphBEngine) closeSessions() {
	if e.mel != nil {
		e.mel.Close()
	}
	if e.encoder != nil {
		e.encoder.Close()
	}
	if e.decoderJoint != nil {
		e.decoderJoint.Close()
	}
	e.mel, e.encoder, e.decoderJoint = nil, nil, nil
	e.loaded = false
}

// RunInference reuses the open sessions (no reset discipline needed
// here — this runtime's calls are stateless between invocations).
func (e *GraphBEngine) RunInference(samples []float32, language tdt.Language, cfg tdt.DecodingConfig) (string, error) {
	if !e.loaded {
		return "", apperr.NewInvalidState("onnxruntime engine has no model loaded")
	}

	stages := tdt.Stages{Mel: e.mel, Encoder: e.encoder, DecoderJoint: e.decoderJoint, RequiresReset: false}
	pipeline := tdt.Pipeline{Stages: stages, Vocab: e.vocab}

	text, err := pipeline.Transcribe(samples, language, cfg)
	if err != nil {
		return "", apperr.NewTranscriptionFailed("onnxruntime inference failed", err)
	}
	return text, nil
}
