package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mockmate/interview-runtime/internal/entity"
	"go.uber.org/zap"
)

// RecorderState is the video capture lifecycle.
type RecorderState string

const (
	RecorderIdle      RecorderState = "IDLE"
	RecorderRecording RecorderState = "RECORDING"
	RecorderStopping  RecorderState = "STOPPING"
)

// VideoCapture buffers audio chunks from the acquired stream while
// recording and packages them, together with a still frame, into an
// AnswerPayload.
type VideoCapture struct {
	mu      sync.Mutex
	state   RecorderState
	chunks  [][]byte
	stop    context.CancelFunc
	pumpAck chan struct{}

	manager *Manager
	logger  *zap.Logger
}

func NewVideoCapture(manager *Manager, logger *zap.Logger) *VideoCapture {
	return &VideoCapture{
		state:   RecorderIdle,
		manager: manager,
		logger:  logger,
	}
}

// State returns the current recorder state.
func (vc *VideoCapture) State() RecorderState {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	return vc.state
}

// Recording reports whether chunk buffering is in progress.
func (vc *VideoCapture) Recording() bool {
	return vc.State() == RecorderRecording
}

// BeginRecording starts buffering audio chunks from the acquired
// stream. Fails with entity.ErrNoStream when the device manager holds
// no stream.
func (vc *VideoCapture) BeginRecording(ctx context.Context) error {
	if !vc.manager.Acquired() {
		return entity.ErrNoStream
	}

	vc.mu.Lock()
	if vc.state != RecorderIdle {
		vc.mu.Unlock()
		return fmt.Errorf("%w: state %s", entity.ErrRecorderBusy, vc.state)
	}

	pumpCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	vc.state = RecorderRecording
	vc.chunks = nil
	vc.stop = cancel
	vc.pumpAck = make(chan struct{})
	ack := vc.pumpAck
	vc.mu.Unlock()

	go vc.pump(pumpCtx, ack)

	vc.logger.Info("recording started")
	return nil
}

// pump buffers chunks incrementally as the stream produces them. The
// ack channel is the recorder's stop acknowledgment: it closes only
// after the last chunk has been appended.
func (vc *VideoCapture) pump(ctx context.Context, ack chan struct{}) {
	defer close(ack)

	for {
		chunk, err := vc.manager.ReadChunk(ctx)
		if err != nil {
			if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
				vc.logger.Warn("audio chunk read failed", zap.Error(err))
			}
			return
		}

		vc.mu.Lock()
		if vc.state == RecorderRecording || vc.state == RecorderStopping {
			vc.chunks = append(vc.chunks, chunk)
		}
		vc.mu.Unlock()
	}
}

// StopAndPackage finalizes the recording into an AnswerPayload. It
// waits for the pump's stop acknowledgment before assembling the clip;
// packaging earlier would truncate it. On snapshot failure the state
// reverts to Idle and the buffered chunks are dropped so the caller can
// retry or skip.
func (vc *VideoCapture) StopAndPackage(ctx context.Context) (*entity.AnswerPayload, error) {
	vc.mu.Lock()
	if vc.state != RecorderRecording {
		vc.mu.Unlock()
		return nil, entity.ErrNotRecording
	}
	vc.state = RecorderStopping
	stop := vc.stop
	ack := vc.pumpAck
	vc.mu.Unlock()

	stop()
	select {
	case <-ack:
	case <-ctx.Done():
		vc.reset()
		return nil, fmt.Errorf("%w: recorder stop not acknowledged: %v", entity.ErrCapture, ctx.Err())
	}

	frame, err := vc.manager.SnapshotFrame(ctx)
	if err != nil {
		vc.reset()
		return nil, err
	}

	vc.mu.Lock()
	audio := assembleClip(vc.chunks)
	vc.chunks = nil
	vc.state = RecorderIdle
	vc.stop = nil
	vc.pumpAck = nil
	vc.mu.Unlock()

	if len(audio) == 0 {
		return nil, fmt.Errorf("%w: recorder produced no audio", entity.ErrCapture)
	}

	payload := &entity.AnswerPayload{
		Image:       frame,
		Audio:       audio,
		AudioFormat: DetectAudioFormat(audio),
	}

	vc.logger.Info("recording packaged",
		zap.Int("audio_bytes", len(audio)),
		zap.Int("image_bytes", len(frame)),
		zap.String("audio_format", payload.AudioFormat),
	)
	return payload, nil
}

// Discard silently stops and drops an in-flight recording. Used when
// the user toggles to text mode mid-recording: no partial submission
// may survive the switch. Safe to call when idle.
func (vc *VideoCapture) Discard() {
	vc.mu.Lock()
	if vc.state == RecorderIdle {
		vc.mu.Unlock()
		return
	}
	stop := vc.stop
	ack := vc.pumpAck
	vc.mu.Unlock()

	if stop != nil {
		stop()
	}
	if ack != nil {
		<-ack
	}
	vc.reset()
	vc.logger.Info("recording discarded")
}

func (vc *VideoCapture) reset() {
	vc.mu.Lock()
	vc.state = RecorderIdle
	vc.chunks = nil
	vc.stop = nil
	vc.pumpAck = nil
	vc.mu.Unlock()
}

// assembleClip concatenates buffered chunks into a single clip.
func assembleClip(chunks [][]byte) []byte {
	var size int
	for _, c := range chunks {
		size += len(c)
	}
	clip := make([]byte, 0, size)
	for _, c := range chunks {
		clip = append(clip, c...)
	}
	return clip
}
