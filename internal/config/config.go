// Package config resolves process-wide configuration from a .env file (if
// present) and the process environment, the way this corpus's voice-agent
// binaries do it (load dotenv, read os.Getenv with a default per field).
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds scriptor's process-wide settings.
type Config struct {
	ModelDir      string
	Backend       string // "openvino" | "onnxruntime" | "coreml-sidecar"
	LogLevel      string // "off" | "normal" | "verbose"
	CaptureDevice string // "" = system default

	BeamWidth     int
	Temperature   float64
	BlankPenalty  float64
}

// Load reads a .env file if one exists (ignored if absent) and then
// resolves every field from the environment, falling back to defaults.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		ModelDir:      getEnv("SCRIPTOR_MODEL_DIR", "./models"),
		Backend:       getEnv("SCRIPTOR_BACKEND", "onnxruntime"),
		LogLevel:      getEnv("SCRIPTOR_LOG_LEVEL", "normal"),
		CaptureDevice: getEnv("SCRIPTOR_CAPTURE_DEVICE", ""),
		BeamWidth:     getEnvInt("SCRIPTOR_BEAM_WIDTH", 1),
		Temperature:   getEnvFloat("SCRIPTOR_TEMPERATURE", 1.0),
		BlankPenalty:  getEnvFloat("SCRIPTOR_BLANK_PENALTY", 6.0),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}
