// Package backend implements the three pluggable inference backends
// (OpenVINO-flavored and ONNX-Runtime-flavored graph execution, plus a
// CoreML sidecar process) behind a single Engine contract, and the dynamic,
// runtime-switchable handle that holds the active one.
package backend

import "github.com/halvorsen/scriptor/internal/tdt"

// Engine is the uniform inference contract every backend implements.
type Engine interface {
	Name() string
	IsLoaded() bool
	LoadModel(modelDir string) error
	RunInference(samples []float32, language tdt.Language, cfg tdt.DecodingConfig) (string, error)
}
