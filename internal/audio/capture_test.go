package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/halvorsen/scriptor/internal/apperr"
	"github.com/halvorsen/scriptor/internal/logger"
)

func newTestWorker() *Worker {
	return NewWorker(logger.New(logger.LevelOff, nil))
}

func TestCallbackDropsStaleGeneration(t *testing.T) {
	w := newTestWorker()
	w.generation.Store(2)
	w.recording.Store(true)

	cb := w.makeCallback(1) // captured an older generation
	cb([]float32{0.5, 0.5, 0.5})

	assert.Empty(t, w.buffer, "stale-generation callback must not touch the buffer")
}

func TestCallbackAppendsOnCurrentGeneration(t *testing.T) {
	w := newTestWorker()
	w.generation.Store(1)
	w.recording.Store(true)

	cb := w.makeCallback(1)
	cb([]float32{0.1, 0.2, 0.3})
	cb([]float32{0.4})

	assert.Equal(t, []float32{0.1, 0.2, 0.3, 0.4}, w.buffer)
}

func TestCallbackIgnoredWhilePaused(t *testing.T) {
	w := newTestWorker()
	w.generation.Store(1)
	w.recording.Store(true)
	w.paused.Store(true)

	cb := w.makeCallback(1)
	cb([]float32{1, 1, 1})

	assert.Empty(t, w.buffer)
}

func TestCallbackIgnoredWhenNotRecording(t *testing.T) {
	w := newTestWorker()
	w.generation.Store(1)

	cb := w.makeCallback(1)
	cb([]float32{1, 1, 1})

	assert.Empty(t, w.buffer)
}

func TestDoStopRejectsWhenNotRecording(t *testing.T) {
	w := newTestWorker()

	_, err := w.doStop()

	requireErrKind(t, err, apperr.InvalidState)
}

func TestDoStopClearsBufferAndFlag(t *testing.T) {
	w := newTestWorker()
	w.recording.Store(true)
	w.buffer = []float32{1, 2, 3}

	out, err := w.doStop()

	assert.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, out)
	assert.False(t, w.recording.Load())
	assert.Empty(t, w.buffer)
}

func TestDoPauseResumeRequireStream(t *testing.T) {
	w := newTestWorker()

	requireErrKind(t, w.doPause(), apperr.InvalidState)
	requireErrKind(t, w.doResume(), apperr.InvalidState)
}

func TestStartReturnsWorkerUnavailableWhenRunHasExited(t *testing.T) {
	w := newTestWorker()
	close(w.done)

	err := w.Start("default")

	requireErrKind(t, err, apperr.AudioWorkerUnavailable)
}

func TestStopReturnsWorkerUnavailableWhenRunHasExited(t *testing.T) {
	w := newTestWorker()
	close(w.done)

	_, err := w.Stop()

	requireErrKind(t, err, apperr.AudioWorkerUnavailable)
}

func TestShutdownIsNoopWhenRunHasAlreadyExited(t *testing.T) {
	w := newTestWorker()
	close(w.done)

	w.Shutdown() // must return promptly, not hang
}

func TestSendDeliversCommandWhileRunIsAlive(t *testing.T) {
	w := newTestWorker()
	go func() {
		cmd := <-w.cmdCh
		cmd.(pauseCmd).reply <- nil
	}()

	reply := make(chan error, 1)
	assert.NoError(t, w.send(pauseCmd{reply: reply}))
	<-reply
}

func requireErrKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error of kind %s, got nil", kind)
	}
	if !apperr.Is(err, kind) {
		t.Fatalf("expected error of kind %s, got %v", kind, err)
	}
}
