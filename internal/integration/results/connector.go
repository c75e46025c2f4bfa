package results

import (
	"context"
	"fmt"
	"net/http"

	"github.com/avast/retry-go/v4"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/mockmate/interview-runtime/internal/config"
	"github.com/mockmate/interview-runtime/internal/entity"
	"github.com/mockmate/interview-runtime/internal/integration/common"
	pkghttp "github.com/mockmate/interview-runtime/pkg/http"
	"go.uber.org/zap"
)

// Connector persists evaluation results through the result store
// collaborator.
type Connector struct {
	config    config.ResultsConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.ResultsConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

// SaveResult stores one scored answer. Invoked only after a successful
// evaluation.
func (c *Connector) SaveResult(ctx context.Context, req *entity.SaveResultRequest) error {
	ctxzap.Info(ctx, "saving result via result store",
		zap.String("interview_id", req.InterviewID),
		zap.String("session_id", req.SessionID),
		zap.Bool("finished", req.Finished),
	)

	err := retry.Do(func() error {
		return c.connector.DoRequest(ctx, http.MethodPost, c.config.SaveEndpoint, req, nil)
	}, c.config.Retry.ToRetryOptions()...)
	if err != nil {
		return fmt.Errorf("save result: %w", err)
	}

	ctxzap.Info(ctx, "result saved")
	return nil
}
