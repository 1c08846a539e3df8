package backend

import (
	"path/filepath"

	"github.com/halvorsen/scriptor/internal/apperr"
	"github.com/halvorsen/scriptor/internal/tdt"
	"github.com/halvorsen/scriptor/internal/vocab"
	ort "github.com/yalue/onnxruntime_go"
)

// GraphAEngine is the OpenVINO-flavored backend: four separate graphs
// (mel, encoder, decoder, joint) addressed by name, with the mandatory
// reset-handles discipline — every transcription tears down and rebuilds
// all four session handles, since this is the runtime observed to
// accumulate residual state across calls on a reused handle.
//
// No Go OpenVINO binding exists in the available ecosystem, so this
// backend runs its four graphs through onnxruntime_go exactly like
// GraphBEngine does; what distinguishes it is the model-directory layout
// (four separate files, one .onnx per spec's OpenVINO graph name) and
// the per-call reset discipline below.
type GraphAEngine struct {
	modelDir string
	loaded   bool
	vocab    *vocab.Vocabulary

	melPath     string
	encoderPath string
	decoderPath string
	jointPath   string
}

// NewGraphAEngine constructs an unloaded GraphAEngine.
func NewGraphAEngine() *GraphAEngine {
	return &GraphAEngine{}
}

func (e *GraphAEngine) Name() string   { return "openvino" }
func (e *GraphAEngine) IsLoaded() bool { return e.loaded }

// LoadModel resolves the four graph files under modelDir and the
// vocabulary, verifying each graph is readable before accepting the load.
func (e *GraphAEngine) LoadModel(modelDir string) error {
	mel := filepath.Join(modelDir, "parakeet_melspectogram.onnx")
	enc := filepath.Join(modelDir, "parakeet_encoder.onnx")
	dec := filepath.Join(modelDir, "parakeet_decoder.onnx")
	joint := filepath.Join(modelDir, "parakeet_joint.onnx")

	for _, p := range []string{mel, enc, dec, joint} {
		if _, _, err := ort.GetInputOutputInfo(p); err != nil {
			return apperr.NewModelLoadFailed(p, err)
		}
	}

	v, err := loadVocab(modelDir)
	if err != nil {
		return apperr.NewVocabularyError(modelDir, err)
	}

	e.modelDir = modelDir
	e.melPath, e.encoderPath, e.decoderPath, e.jointPath = mel, enc, dec, joint
	e.vocab = v
	e.loaded = true
	return nil
}

// RunInference builds a fresh Stages handle (the mandatory reset) and
// transcribes one pass of samples.
func (e *GraphAEngine) RunInference(samples []float32, language tdt.Language, cfg tdt.DecodingConfig) (string, error) {
	if !e.loaded {
		return "", apperr.NewInvalidState("graph A engine has no model loaded")
	}

	mel, err := newOnnxMelStage(e.melPath)
	if err != nil {
		return "", apperr.NewModelLoadFailed(e.melPath, err)
	}
	defer mel.Close()

	enc, err := newOnnxEncoderStage(e.encoderPath)
	if err != nil {
		return "", apperr.NewModelLoadFailed(e.encoderPath, err)
	}
	defer enc.Close()

	dj, err := newSplitDecoderJointStage(e.decoderPath, e.jointPath)
	if err != nil {
		return "", apperr.NewModelLoadFailed(e.decoderPath, err)
	}
	defer dj.Close()

	stages := tdt.Stages{Mel: mel, Encoder: enc, DecoderJoint: dj, RequiresReset: true}
	pipeline := tdt.Pipeline{Stages: stages, Vocab: e.vocab}

	text, err := pipeline.Transcribe(samples, language, cfg)
	if err != nil {
		return "", apperr.NewTranscriptionFailed("graph A inference failed", err)
	}
	return text, nil
}
