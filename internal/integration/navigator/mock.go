package navigator

import (
	"context"
	"sync"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector records navigation requests instead of sending them.
type MockConnector struct {
	mu       sync.Mutex
	requests []string
	logger   *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{logger: logger}
}

func (m *MockConnector) RequestReportView(ctx context.Context, interviewID, sessionID string) {
	m.mu.Lock()
	m.requests = append(m.requests, interviewID+"/"+sessionID)
	m.mu.Unlock()

	ctxzap.Info(ctx, "[MOCK] report view navigation requested",
		zap.String("interview_id", interviewID),
		zap.String("session_id", sessionID),
	)
}

// Requests returns the recorded navigation targets.
func (m *MockConnector) Requests() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.requests))
	copy(out, m.requests)
	return out
}
