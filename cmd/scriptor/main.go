// Scriptor is an offline speech-to-text engine driven by a Token-and-
// Duration-Transducer model. It records from a capture device or reads a
// WAV file, then transcribes through one of three pluggable backends.
//
// Usage:
//
//	scriptor devices
//	scriptor record [-device=NAME] [-backend=onnxruntime|openvino|coreml-sidecar] [-language=auto|fr|en]
//	scriptor file <path> [-backend=...] [-language=...]
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/gordonklaus/portaudio"

	"github.com/halvorsen/scriptor/internal/apperr"
	"github.com/halvorsen/scriptor/internal/audio"
	"github.com/halvorsen/scriptor/internal/backend"
	"github.com/halvorsen/scriptor/internal/config"
	"github.com/halvorsen/scriptor/internal/logger"
	"github.com/halvorsen/scriptor/internal/tdt"
	"github.com/halvorsen/scriptor/internal/transcript"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg := config.Load()
	log := logger.NewDualSink(logger.ParseLevel(cfg.LogLevel))
	defer log.Close()
	log.Info("scriptor: log file at %s", log.FilePath())

	switch os.Args[1] {
	case "devices":
		runDevices()
	case "record":
		runRecord(os.Args[2:], cfg, log)
	case "file":
		runFile(os.Args[2:], cfg, log)
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: scriptor <devices|record|file> [flags]")
}

func runDevices() {
	if err := portaudio.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "error initializing audio: %v\n", err)
		os.Exit(1)
	}
	defer portaudio.Terminate()

	names, err := audio.ListDevices()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error listing devices: %v\n", err)
		os.Exit(1)
	}
	for _, name := range names {
		fmt.Println(name)
	}
}

func runRecord(args []string, cfg config.Config, log *logger.Logger) {
	fs := flag.NewFlagSet("record", flag.ExitOnError)
	device := fs.String("device", cfg.CaptureDevice, "capture device name (empty = system default)")
	backendName := fs.String("backend", cfg.Backend, "inference backend: onnxruntime, openvino, or coreml-sidecar")
	language := fs.String("language", "auto", "priming language: auto, fr, or en")
	fs.Parse(args)

	worker := audio.NewWorker(log)
	go func() {
		if err := worker.Run(); err != nil {
			log.Error("capture worker: %v", err)
		}
	}()
	defer worker.Shutdown()

	if err := worker.Start(*device); err != nil {
		fmt.Fprintf(os.Stderr, "error starting capture: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Recording... press Enter to stop.")
	bufio.NewReader(os.Stdin).ReadString('\n')

	samples, err := worker.Stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error stopping capture: %v\n", err)
		os.Exit(1)
	}

	resampled, err := audio.ResampleTo16k(samples, worker.SampleRate())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error resampling: %v\n", err)
		os.Exit(1)
	}
	normalized, _ := audio.Normalize(resampled)

	engine := buildEngine(*backendName, cfg, log)
	orch := transcript.New(engine, log)
	result, err := orch.Transcribe(normalized, transcript.SourceDictation, "", parseLanguage(*language), decodingConfig(cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error transcribing: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(result.RawText)
}

func runFile(args []string, cfg config.Config, log *logger.Logger) {
	fs := flag.NewFlagSet("file", flag.ExitOnError)
	backendName := fs.String("backend", cfg.Backend, "inference backend: onnxruntime, openvino, or coreml-sidecar")
	language := fs.String("language", "auto", "priming language: auto, fr, or en")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: scriptor file <path> [flags]")
		os.Exit(1)
	}
	path := fs.Arg(0)

	samples, rate, err := audio.LoadAudioFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading %s: %v\n", path, err)
		os.Exit(1)
	}
	resampled, err := audio.ResampleTo16k(samples, rate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error resampling: %v\n", err)
		os.Exit(1)
	}
	normalized, _ := audio.Normalize(resampled)

	engine := buildEngine(*backendName, cfg, log)
	orch := transcript.New(engine, log)
	result, err := orch.Transcribe(normalized, transcript.SourceFile, path, parseLanguage(*language), decodingConfig(cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error transcribing: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(result.RawText)
}

func buildEngine(backendName string, cfg config.Config, log *logger.Logger) *backend.DynamicEngine {
	var initial backend.Engine
	switch backendName {
	case "openvino":
		initial = backend.NewGraphAEngine()
	case "coreml-sidecar":
		initial = backend.NewSidecarEngine(os.Getenv("SCRIPTOR_SIDECAR_BIN"))
	case "onnxruntime":
		fallthrough
	default:
		initial = backend.NewGraphBEngine()
	}

	dyn := backend.NewDynamicEngine(initial)
	if err := initial.LoadModel(cfg.ModelDir); err != nil {
		if apperr.Is(err, apperr.ModelNotFound) || apperr.Is(err, apperr.ModelLoadFailed) || apperr.Is(err, apperr.VocabularyError) {
			log.Warn("scriptor: model load failed, engine will run in mock mode: %v", err)
		} else {
			log.Error("scriptor: unexpected error loading model: %v", err)
		}
	}
	return dyn
}

func decodingConfig(cfg config.Config) tdt.DecodingConfig {
	return tdt.DecodingConfig{
		BeamWidth:    cfg.BeamWidth,
		Temperature:  float32(cfg.Temperature),
		BlankPenalty: float32(cfg.BlankPenalty),
	}
}

func parseLanguage(s string) tdt.Language {
	switch s {
	case "fr", "french", "French":
		return tdt.LanguageFrench
	case "en", "english", "English":
		return tdt.LanguageEnglish
	default:
		return tdt.LanguageAuto
	}
}
