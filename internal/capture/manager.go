package capture

import (
	"context"
	"fmt"
	"sync"

	"github.com/mockmate/interview-runtime/internal/entity"
	"go.uber.org/zap"
)

// Manager owns the lifecycle of the camera/microphone stream. The
// state machine holds only this capability reference, never the raw
// stream.
type Manager struct {
	mu     sync.Mutex
	device Device
	stream Stream
	logger *zap.Logger
}

func NewManager(device Device, logger *zap.Logger) *Manager {
	return &Manager{
		device: device,
		logger: logger,
	}
}

// Acquire requests combined audio+video access. Idempotent: if a
// stream is already held it is kept. Denial or device error maps to
// entity.ErrDeviceUnavailable and the caller falls back to text mode.
func (m *Manager) Acquire(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stream != nil {
		return nil
	}

	stream, err := m.device.Open(ctx)
	if err != nil {
		m.logger.Warn("media device acquisition failed", zap.Error(err))
		return fmt.Errorf("%w: %v", entity.ErrDeviceUnavailable, err)
	}

	m.stream = stream
	m.logger.Info("media stream acquired")
	return nil
}

// Acquired reports whether a live stream is currently held.
func (m *Manager) Acquired() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stream != nil
}

// SnapshotFrame captures the current video frame as a still image.
func (m *Manager) SnapshotFrame(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	stream := m.stream
	m.mu.Unlock()

	if stream == nil {
		return nil, entity.ErrNoStream
	}

	frame, err := stream.Frame(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrCapture, err)
	}
	if len(frame) == 0 {
		return nil, fmt.Errorf("%w: stream produced no frame", entity.ErrCapture)
	}
	return frame, nil
}

// ReadChunk blocks until the next audio chunk from the held stream.
func (m *Manager) ReadChunk(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	stream := m.stream
	m.mu.Unlock()

	if stream == nil {
		return nil, entity.ErrNoStream
	}
	return stream.Chunk(ctx)
}

// Release stops all tracks. Idempotent; safe when no stream is held.
func (m *Manager) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stream == nil {
		return
	}

	if err := m.stream.Close(); err != nil {
		m.logger.Warn("failed to close media stream", zap.Error(err))
	}
	m.stream = nil
	m.logger.Info("media stream released")
}
