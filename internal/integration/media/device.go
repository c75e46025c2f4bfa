package media

import (
	"context"
	"fmt"
	"net/http"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/mockmate/interview-runtime/internal/capture"
	"github.com/mockmate/interview-runtime/internal/config"
	"github.com/mockmate/interview-runtime/internal/integration/common"
	pkghttp "github.com/mockmate/interview-runtime/pkg/http"
	"go.uber.org/zap"
)

// Device reaches the media-gateway daemon that fronts the platform
// camera/microphone APIs. Opening a stream triggers the permission
// prompt on the user's side, so Open can fail with a denial.
type Device struct {
	config    config.MediaConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewDevice(
	cfg config.MediaConnectorConfig,
	logger *zap.Logger,
) *Device {
	return &Device{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

type openStreamResponse struct {
	StreamID string `json:"stream_id"`
}

type frameResponse struct {
	Frame []byte `json:"frame"`
}

type chunkResponse struct {
	Chunk []byte `json:"chunk"`
}

// Open requests combined audio+video access and returns the stream
// handle.
func (d *Device) Open(ctx context.Context) (capture.Stream, error) {
	var resp openStreamResponse
	err := d.connector.DoRequest(ctx, http.MethodPost, d.config.OpenEndpoint, struct{}{}, &resp)
	if err != nil {
		return nil, fmt.Errorf("open media stream: %w", err)
	}
	if resp.StreamID == "" {
		return nil, fmt.Errorf("open media stream: empty stream id")
	}

	ctxzap.Info(ctx, "media stream opened", zap.String("stream_id", resp.StreamID))

	return &gatewayStream{
		id:     resp.StreamID,
		device: d,
	}, nil
}

type gatewayStream struct {
	id     string
	device *Device
}

func (s *gatewayStream) Frame(ctx context.Context) ([]byte, error) {
	var resp frameResponse
	endpoint := fmt.Sprintf(s.device.config.FrameEndpoint, s.id)
	if err := s.device.connector.DoRequest(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch frame: %w", err)
	}
	return resp.Frame, nil
}

// Chunk long-polls the gateway for the next buffered audio chunk.
func (s *gatewayStream) Chunk(ctx context.Context) ([]byte, error) {
	var resp chunkResponse
	endpoint := fmt.Sprintf(s.device.config.ChunkEndpoint, s.id)
	if err := s.device.connector.DoRequest(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch chunk: %w", err)
	}
	return resp.Chunk, nil
}

func (s *gatewayStream) Close() error {
	endpoint := fmt.Sprintf(s.device.config.CloseEndpoint, s.id)
	err := s.device.connector.DoRequest(context.Background(), http.MethodDelete, endpoint, nil, nil)
	if err != nil {
		return fmt.Errorf("close media stream: %w", err)
	}
	return nil
}
