// Package audio implements the capture worker, conditioner, VAD, and
// chunker that together turn a live device or a WAV file into 16 kHz mono
// samples ready for the TDT pipeline.
package audio

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gordonklaus/portaudio"

	"github.com/halvorsen/scriptor/internal/apperr"
	"github.com/halvorsen/scriptor/internal/logger"
)

const settleDelay = 50 * time.Millisecond

// Worker owns a single audio input device for the lifetime of the process.
// portaudio.Initialize is called once (in Run) and never re-entered across
// start/stop cycles: repeated Initialize/Terminate pairs are known to wedge
// platform audio HALs.
type Worker struct {
	log *logger.Logger

	cmdCh chan any
	done  chan struct{}

	generation atomic.Int64
	recording  atomic.Bool
	paused     atomic.Bool

	mu         sync.Mutex
	buffer     []float32
	level      float32
	sampleRate int
	stream     *portaudio.Stream
	runErr     error
}

// NewWorker creates a capture worker. Call Run in its own goroutine before
// issuing any command.
func NewWorker(log *logger.Logger) *Worker {
	return &Worker{
		log:   log,
		cmdCh: make(chan any),
		done:  make(chan struct{}),
	}
}

type startCmd struct {
	device string
	reply  chan error
}

type stopCmd struct {
	reply chan stopResult
}

type stopResult struct {
	samples []float32
	err     error
}

type pauseCmd struct{ reply chan error }
type resumeCmd struct{ reply chan error }
type shutdownCmd struct{ reply chan struct{} }

// Run initializes PortAudio and processes commands until Shutdown is
// called. It must run on its own goroutine for the life of the process.
func (w *Worker) Run() error {
	defer close(w.done)

	if err := portaudio.Initialize(); err != nil {
		err = apperr.NewAudioDeviceError("portaudio init failed", err)
		w.setRunErr(err)
		return err
	}
	defer portaudio.Terminate()

	for raw := range w.cmdCh {
		switch cmd := raw.(type) {
		case startCmd:
			cmd.reply <- w.doStart(cmd.device)
		case stopCmd:
			samples, err := w.doStop()
			cmd.reply <- stopResult{samples: samples, err: err}
		case pauseCmd:
			cmd.reply <- w.doPause()
		case resumeCmd:
			cmd.reply <- w.doResume()
		case shutdownCmd:
			w.doShutdown()
			cmd.reply <- struct{}{}
			return nil
		}
	}
	return nil
}

// send delivers cmd to Run's command loop, or returns AudioWorkerUnavailable
// if Run has already exited (init failure, or after Shutdown) — this is
// what keeps a dead worker from hanging the caller forever, since cmdCh is
// unbuffered and nothing will ever receive from it again once done is closed.
func (w *Worker) send(cmd any) error {
	select {
	case w.cmdCh <- cmd:
		return nil
	case <-w.done:
		return apperr.NewAudioWorkerUnavailable("capture worker is not running", w.runError())
	}
}

func (w *Worker) setRunErr(err error) {
	w.mu.Lock()
	w.runErr = err
	w.mu.Unlock()
}

func (w *Worker) runError() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.runErr
}

// Start begins recording from the named device, or the system default if
// deviceName is empty. It blocks until the worker has acknowledged.
func (w *Worker) Start(deviceName string) error {
	reply := make(chan error, 1)
	if err := w.send(startCmd{device: deviceName, reply: reply}); err != nil {
		return err
	}
	return <-reply
}

// Stop ends recording and returns the complete buffered sample sequence.
func (w *Worker) Stop() ([]float32, error) {
	reply := make(chan stopResult, 1)
	if err := w.send(stopCmd{reply: reply}); err != nil {
		return nil, err
	}
	res := <-reply
	return res.samples, res.err
}

func (w *Worker) Pause() error {
	reply := make(chan error, 1)
	if err := w.send(pauseCmd{reply: reply}); err != nil {
		return err
	}
	return <-reply
}

func (w *Worker) Resume() error {
	reply := make(chan error, 1)
	if err := w.send(resumeCmd{reply: reply}); err != nil {
		return err
	}
	return <-reply
}

// Shutdown terminates the worker from any state. It is a no-op if the
// worker is already dead.
func (w *Worker) Shutdown() {
	reply := make(chan struct{}, 1)
	if err := w.send(shutdownCmd{reply: reply}); err != nil {
		return
	}
	<-reply
}

func (w *Worker) IsRecording() bool { return w.recording.Load() }

func (w *Worker) AudioLevel() float32 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.level
}

func (w *Worker) SampleRate() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sampleRate
}

// ListDevices returns the names of available input devices.
func ListDevices() ([]string, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, apperr.NewAudioDeviceError("failed to enumerate devices", err)
	}
	var names []string
	for _, d := range devices {
		if d.MaxInputChannels > 0 {
			names = append(names, d.Name)
		}
	}
	return names, nil
}

func (w *Worker) doStart(deviceName string) error {
	gen := w.generation.Add(1)

	if w.stream != nil {
		w.recording.Store(false)
		_ = w.stream.Stop()
		_ = w.stream.Close()
		w.stream = nil
		time.Sleep(settleDelay)
	}

	w.mu.Lock()
	w.buffer = w.buffer[:0]
	w.mu.Unlock()

	dev, err := resolveDevice(deviceName)
	if err != nil {
		return apperr.NewAudioDeviceError("failed to resolve input device", err)
	}

	sampleRate := dev.DefaultSampleRate
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   dev,
			Channels: 1,
			Latency:  dev.DefaultLowInputLatency,
		},
		SampleRate:      sampleRate,
		FramesPerBuffer: portaudio.FramesPerBufferUnspecified,
	}

	callback := w.makeCallback(gen)
	stream, err := portaudio.OpenStream(params, callback)
	if err != nil {
		return apperr.NewAudioDeviceError("failed to open input stream", err)
	}

	if err := stream.Start(); err != nil {
		return apperr.NewAudioDeviceError("failed to start input stream", err)
	}

	w.mu.Lock()
	w.stream = stream
	w.sampleRate = int(sampleRate)
	w.mu.Unlock()

	w.paused.Store(false)
	w.recording.Store(true)
	return nil
}

// makeCallback returns the device callback for generation gen. It captures
// nothing mutable except through the worker's guarded fields and atomics,
// per the generation-counter cross-thread invalidation scheme.
func (w *Worker) makeCallback(gen int64) func([]float32) {
	return func(in []float32) {
		if w.generation.Load() != gen {
			return
		}
		if !w.recording.Load() || w.paused.Load() {
			return
		}

		rms := RMS(in)
		level := float32(math.Min(1, math.Sqrt(float64(rms)*10)))

		w.mu.Lock()
		w.level = level
		w.buffer = append(w.buffer, in...)
		w.mu.Unlock()
	}
}

func (w *Worker) doStop() ([]float32, error) {
	if !w.recording.Load() {
		return nil, apperr.NewInvalidState("stop called while not recording")
	}

	w.recording.Store(false)
	if w.stream != nil {
		_ = w.stream.Stop()
		_ = w.stream.Close()
		w.stream = nil
	}
	time.Sleep(settleDelay)

	w.mu.Lock()
	out := w.buffer
	w.buffer = nil
	w.mu.Unlock()
	return out, nil
}

func (w *Worker) doPause() error {
	if w.stream == nil {
		return apperr.NewInvalidState("pause called while not recording")
	}
	w.paused.Store(true)
	return nil
}

func (w *Worker) doResume() error {
	if w.stream == nil {
		return apperr.NewInvalidState("resume called while not recording")
	}
	w.paused.Store(false)
	return nil
}

func (w *Worker) doShutdown() {
	if w.stream != nil {
		w.recording.Store(false)
		_ = w.stream.Stop()
		_ = w.stream.Close()
		w.stream = nil
	}
}

func resolveDevice(name string) (*portaudio.DeviceInfo, error) {
	if name == "" {
		return portaudio.DefaultInputDevice()
	}
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	for _, d := range devices {
		if d.Name == name && d.MaxInputChannels > 0 {
			return d, nil
		}
	}
	return nil, apperr.NewAudioDeviceError("device not found: "+name, nil)
}
