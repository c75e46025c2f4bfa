package evaluator

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/avast/retry-go/v4"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/mockmate/interview-runtime/internal/config"
	"github.com/mockmate/interview-runtime/internal/entity"
	"github.com/mockmate/interview-runtime/internal/integration/common"
	pkghttp "github.com/mockmate/interview-runtime/pkg/http"
	"go.uber.org/zap"
)

// Connector talks to the interview evaluation service.
type Connector struct {
	config    config.EvaluatorConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.EvaluatorConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

// StartInterview bootstraps a new interview session for the domain and
// level. Any failure here is fatal to the session.
func (c *Connector) StartInterview(ctx context.Context, domain, level string) (*entity.StartInterviewResponse, error) {
	ctxzap.Info(ctx, "starting interview via evaluation service",
		zap.String("domain", domain),
		zap.String("level", level),
	)

	req := &entity.StartInterviewRequest{Domain: domain, Level: level}

	var resp entity.StartInterviewResponse
	err := retry.Do(func() error {
		return c.connector.DoRequest(ctx, http.MethodPost, c.config.StartEndpoint, req, &resp)
	}, c.config.Retry.ToRetryOptions()...)
	if err != nil {
		return nil, fmt.Errorf("start interview: %w", err)
	}

	if resp.SessionID == "" || len(resp.Questions) == 0 {
		return nil, fmt.Errorf("start interview: invalid response: empty session or question set")
	}

	ctxzap.Info(ctx, "interview started",
		zap.String("session_id", resp.SessionID),
		zap.Int("total_questions", resp.TotalQuestions),
	)
	return &resp, nil
}

// EvaluateAnswer submits one answer payload for scoring.
func (c *Connector) EvaluateAnswer(ctx context.Context, req *entity.EvaluateAnswerRequest) (*entity.EvaluationResult, error) {
	ctxzap.Info(ctx, "evaluating answer via evaluation service",
		zap.String("session_id", req.SessionID),
		zap.Int("question_index", req.QuestionIndex),
		zap.Int("transcript_length", len(req.Payload.Transcript)),
		zap.Int("image_bytes", len(req.Payload.Image)),
		zap.Int("audio_bytes", len(req.Payload.Audio)),
	)

	prepareBody := func(writer *multipart.Writer) error {
		if err := writer.WriteField("session_id", req.SessionID); err != nil {
			return fmt.Errorf("write session_id field: %w", err)
		}
		if err := writer.WriteField("index", strconv.Itoa(req.QuestionIndex)); err != nil {
			return fmt.Errorf("write index field: %w", err)
		}
		if err := writer.WriteField("answer_text", req.Payload.Transcript); err != nil {
			return fmt.Errorf("write answer_text field: %w", err)
		}
		if err := writer.WriteField("tab_switches", strconv.Itoa(req.TabSwitches)); err != nil {
			return fmt.Errorf("write tab_switches field: %w", err)
		}

		imagePart, err := writer.CreateFormFile("image", "frame.jpg")
		if err != nil {
			return fmt.Errorf("create image part: %w", err)
		}
		if _, err := imagePart.Write(req.Payload.Image); err != nil {
			return fmt.Errorf("write image content: %w", err)
		}

		format := req.Payload.AudioFormat
		if format == "" {
			format = "webm"
		}
		audioPart, err := writer.CreateFormFile("audio", "answer."+format)
		if err != nil {
			return fmt.Errorf("create audio part: %w", err)
		}
		if _, err := audioPart.Write(req.Payload.Audio); err != nil {
			return fmt.Errorf("write audio content: %w", err)
		}

		return nil
	}

	var resp entity.EvaluationResult
	err := retry.Do(func() error {
		return c.connector.DoMultipartRequest(ctx, http.MethodPost, c.config.EvaluateEndpoint, prepareBody, &resp)
	}, c.config.Retry.ToRetryOptions()...)
	if err != nil {
		return nil, fmt.Errorf("evaluate answer: %w", err)
	}

	if resp.CurrentScore == nil {
		return nil, fmt.Errorf("evaluate answer: invalid response: missing current_score")
	}

	ctxzap.Info(ctx, "answer evaluated",
		zap.Float64("overall_percentage", resp.CurrentScore.OverallPercentage),
		zap.Bool("finished", resp.Finished),
	)
	return &resp, nil
}

// GetDomains fetches the catalog of available interview domains.
func (c *Connector) GetDomains(ctx context.Context) (*entity.DomainsResponse, error) {
	var resp entity.DomainsResponse
	err := c.connector.DoRequest(ctx, http.MethodGet, c.config.DomainsEndpoint, nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("get domains: %w", err)
	}
	return &resp, nil
}
