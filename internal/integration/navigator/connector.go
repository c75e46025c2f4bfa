package navigator

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/mockmate/interview-runtime/internal/config"
	"github.com/mockmate/interview-runtime/internal/integration/common"
	pkghttp "github.com/mockmate/interview-runtime/pkg/http"
	"go.uber.org/zap"
)

// Connector asks the external router to move the user to the report
// view. Fire-and-forget: failures are logged and never propagated to
// the state machine.
type Connector struct {
	config    config.NavigatorConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.NavigatorConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

type navigateRequest struct {
	Target      string `json:"target"`
	InterviewID string `json:"interview_id"`
	SessionID   string `json:"session_id"`
	Timestamp   string `json:"timestamp"`
}

// RequestReportView requests navigation to the report view for the
// finished interview.
func (c *Connector) RequestReportView(ctx context.Context, interviewID, sessionID string) {
	req := &navigateRequest{
		Target:      fmt.Sprintf("%s?interview_id=%s&session_id=%s", c.config.ReportPath, interviewID, sessionID),
		InterviewID: interviewID,
		SessionID:   sessionID,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}

	err := c.connector.DoRequest(ctx, http.MethodPost, c.config.NavigateEndpoint, req, nil)
	if err != nil {
		ctxzap.Error(ctx, "failed to request report view navigation",
			zap.String("interview_id", interviewID),
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		return
	}

	ctxzap.Info(ctx, "report view navigation requested",
		zap.String("interview_id", interviewID),
		zap.String("session_id", sessionID),
	)
}
