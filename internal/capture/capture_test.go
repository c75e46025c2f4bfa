package capture

import (
	"context"
	"errors"
	"sync/atomic"
)

// fakeStream feeds scripted frames and chunks to the capture layer.
type fakeStream struct {
	frame    []byte
	frameErr error
	chunks   chan []byte
	closed   atomic.Int32
}

func newFakeStream(frame []byte) *fakeStream {
	return &fakeStream{
		frame:  frame,
		chunks: make(chan []byte),
	}
}

func (s *fakeStream) Frame(ctx context.Context) ([]byte, error) {
	if s.frameErr != nil {
		return nil, s.frameErr
	}
	return s.frame, nil
}

func (s *fakeStream) Chunk(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case chunk := <-s.chunks:
		return chunk, nil
	}
}

func (s *fakeStream) Close() error {
	s.closed.Add(1)
	return nil
}

type fakeDevice struct {
	stream  *fakeStream
	openErr error
	opens   atomic.Int32
}

func (d *fakeDevice) Open(ctx context.Context) (Stream, error) {
	d.opens.Add(1)
	if d.openErr != nil {
		return nil, d.openErr
	}
	return d.stream, nil
}

var errDenied = errors.New("permission denied")
