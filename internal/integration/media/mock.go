package media

import (
	"bytes"
	"context"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"sync"
	"time"

	"github.com/mockmate/interview-runtime/internal/capture"
	"go.uber.org/zap"
)

const (
	mockSampleRate = 16000
	mockChunkMs    = 50
)

// MockDevice produces a synthetic stream: a static JPEG frame and
// silent PCM WAV audio paced in real time.
type MockDevice struct {
	frame  []byte
	logger *zap.Logger
}

func NewMockDevice(logger *zap.Logger) *MockDevice {
	return &MockDevice{
		frame:  encodeMockFrame(),
		logger: logger,
	}
}

func (d *MockDevice) Open(ctx context.Context) (capture.Stream, error) {
	d.logger.Info("[MOCK] media stream opened")
	return &mockStream{device: d}, nil
}

type mockStream struct {
	mu     sync.Mutex
	device *MockDevice
	sent   int
	closed bool
}

func (s *mockStream) Frame(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, context.Canceled
	}
	return s.device.frame, nil
}

func (s *mockStream) Chunk(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(mockChunkMs * time.Millisecond):
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, context.Canceled
	}

	samples := mockSampleRate * mockChunkMs / 1000
	pcm := make([]byte, samples*2)

	// The first chunk carries the WAV header so concatenated chunks
	// form one sniffable clip.
	if s.sent == 0 {
		s.sent++
		return append(wavHeader(), pcm...), nil
	}
	s.sent++
	return pcm, nil
}

func (s *mockStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.device.logger.Info("[MOCK] media stream closed")
	return nil
}

func encodeMockFrame() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 8), G: uint8(y * 8), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		return nil
	}
	return buf.Bytes()
}

// wavHeader builds a 16 kHz mono 16-bit PCM header with streaming
// (unknown) data length.
func wavHeader() []byte {
	buf := &bytes.Buffer{}
	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, uint32(0xFFFFFFFF))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(buf, binary.LittleEndian, uint16(1)) // mono
	binary.Write(buf, binary.LittleEndian, uint32(mockSampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(mockSampleRate*2))
	binary.Write(buf, binary.LittleEndian, uint16(2))
	binary.Write(buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, uint32(0xFFFFFFFF))
	return buf.Bytes()
}
