package backend

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/halvorsen/scriptor/internal/apperr"
	"github.com/halvorsen/scriptor/internal/audio"
	"github.com/halvorsen/scriptor/internal/tdt"
)

// sidecarResult mirrors the single JSON object the external transcription
// binary prints as its last stdout line.
type sidecarResult struct {
	Text             string  `json:"text"`
	Confidence       float64 `json:"confidence"`
	ProcessingTimeMS int64   `json:"processing_time_ms"`
	Error            string  `json:"error"`
}

// SidecarEngine runs transcription out-of-process via an external CoreML
// binary. Neither this type nor its caller in cmd/scriptor checks the host
// OS; it runs wherever the configured binary runs. It has no tensor
// pipeline of its own: every call writes a temp WAV, shells out, and
// parses one JSON result line.
type SidecarEngine struct {
	binaryPath string
	modelDir   string
	loaded     bool
}

// NewSidecarEngine constructs a SidecarEngine that will invoke binaryPath.
func NewSidecarEngine(binaryPath string) *SidecarEngine {
	return &SidecarEngine{binaryPath: binaryPath}
}

func (e *SidecarEngine) Name() string   { return "coreml-sidecar" }
func (e *SidecarEngine) IsLoaded() bool { return e.loaded }

// LoadModel checks that the sidecar binary exists and records modelDir;
// the binary resolves its own model files on each invocation via --models.
func (e *SidecarEngine) LoadModel(modelDir string) error {
	if _, err := os.Stat(e.binaryPath); err != nil {
		return apperr.NewModelNotFound("sidecar binary not found: " + e.binaryPath)
	}
	e.modelDir = modelDir
	e.loaded = true
	return nil
}

// RunInference writes samples to a temp WAV, invokes the sidecar binary,
// and parses its last stdout line as a sidecarResult. The temp file is
// always removed, success or failure. language and cfg are accepted for
// interface parity but are not forwarded: the sidecar binary makes its
// own decoding decisions.
func (e *SidecarEngine) RunInference(samples []float32, _ tdt.Language, _ tdt.DecodingConfig) (string, error) {
	if !e.loaded {
		return "", apperr.NewInvalidState("sidecar engine has no model loaded")
	}

	wavPath := filepath.Join(os.TempDir(), "scriptor-sidecar-"+uuid.NewString()+".wav")
	if err := audio.WriteWAV16(wavPath, samples, 16000); err != nil {
		return "", apperr.NewTranscriptionFailed("failed to write sidecar input", err)
	}
	defer os.Remove(wavPath)

	cmd := exec.Command(e.binaryPath, wavPath, "--models", e.modelDir)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	runErr := cmd.Run()

	result, parseErr := parseSidecarResult(stdout.Bytes())
	if parseErr != nil {
		return "", apperr.NewTranscriptionFailed("sidecar produced no parseable result", parseErr)
	}
	if result.Error != "" {
		return "", apperr.NewTranscriptionFailed("sidecar reported error: "+result.Error, runErr)
	}
	if runErr != nil {
		return "", apperr.NewTranscriptionFailed("sidecar exited non-zero", runErr)
	}

	return result.Text, nil
}

func parseSidecarResult(stdout []byte) (sidecarResult, error) {
	lines := strings.Split(strings.TrimRight(string(stdout), "\n"), "\n")
	last := lines[len(lines)-1]

	var result sidecarResult
	if err := json.Unmarshal([]byte(last), &result); err != nil {
		return sidecarResult{}, err
	}
	return result, nil
}
