package results

import (
	"context"
	"sync"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/mockmate/interview-runtime/internal/entity"
	"go.uber.org/zap"
)

// MockConnector keeps saved results in memory.
type MockConnector struct {
	mu     sync.Mutex
	saved  []*entity.SaveResultRequest
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{logger: logger}
}

func (m *MockConnector) SaveResult(ctx context.Context, req *entity.SaveResultRequest) error {
	m.mu.Lock()
	m.saved = append(m.saved, req)
	count := len(m.saved)
	m.mu.Unlock()

	ctxzap.Info(ctx, "[MOCK] result saved",
		zap.String("interview_id", req.InterviewID),
		zap.Bool("finished", req.Finished),
		zap.Int("stored_total", count),
	)
	return nil
}

// Saved returns a copy of everything stored so far.
func (m *MockConnector) Saved() []*entity.SaveResultRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*entity.SaveResultRequest, len(m.saved))
	copy(out, m.saved)
	return out
}
