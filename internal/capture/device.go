package capture

import "context"

// Device is the platform media API: it can open one combined
// audio+video stream. Opening may prompt for permission on the user's
// side, so it can fail with a denial the caller must treat as
// entity.ErrDeviceUnavailable.
type Device interface {
	Open(ctx context.Context) (Stream, error)
}

// Stream is a live audio+video stream handle. It is exclusively owned
// by the Manager and never aliased.
type Stream interface {
	// Frame returns the current video frame as an encoded still image.
	Frame(ctx context.Context) ([]byte, error)
	// Chunk blocks until the next buffered audio chunk is available.
	Chunk(ctx context.Context) ([]byte, error)
	// Close stops all tracks. Idempotent.
	Close() error
}
