package submission

import (
	"context"
	"fmt"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/mockmate/interview-runtime/internal/entity"
	"go.uber.org/zap"
)

// EvaluatorConnector scores one submitted answer.
type EvaluatorConnector interface {
	EvaluateAnswer(ctx context.Context, req *entity.EvaluateAnswerRequest) (*entity.EvaluationResult, error)
}

// ResultsConnector persists a scored answer.
type ResultsConnector interface {
	SaveResult(ctx context.Context, req *entity.SaveResultRequest) error
}

// Pipeline packages an answer with its session identifiers, invokes the
// evaluation collaborator and forwards the score to the result store.
// The two calls are sequential; persistence is attempted only after a
// successful evaluation, and failure of either is reported as one
// entity.ErrSubmissionFailed. Partial success (evaluation ok, save
// failed) counts as full failure, so a retry may re-evaluate the same
// answer.
type Pipeline struct {
	evaluator EvaluatorConnector
	results   ResultsConnector
	logger    *zap.Logger
}

func NewPipeline(evaluator EvaluatorConnector, results ResultsConnector, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		evaluator: evaluator,
		results:   results,
		logger:    logger,
	}
}

// Submit runs the evaluate-then-persist sequence for one question.
func (p *Pipeline) Submit(ctx context.Context, session *entity.Session, questionIndex int, payload *entity.AnswerPayload, tabSwitches int) (*entity.EvaluationResult, error) {
	if payload == nil {
		return nil, fmt.Errorf("%w: nil payload", entity.ErrSubmissionFailed)
	}

	// A video payload must carry both media parts; reject before
	// dispatch rather than ship a truncated answer.
	if (len(payload.Image) > 0) != (len(payload.Audio) > 0) {
		return nil, fmt.Errorf("%w: incomplete media payload (image=%d bytes, audio=%d bytes)",
			entity.ErrSubmissionFailed, len(payload.Image), len(payload.Audio))
	}

	result, err := p.evaluator.EvaluateAnswer(ctx, &entity.EvaluateAnswerRequest{
		SessionID:     session.SessionID,
		QuestionIndex: questionIndex,
		Payload:       payload,
		TabSwitches:   tabSwitches,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrSubmissionFailed, err)
	}

	saveReq := &entity.SaveResultRequest{
		InterviewID:  session.InterviewID,
		SessionID:    session.SessionID,
		CurrentScore: result.CurrentScore,
		Finished:     result.Finished,
		FinalResult:  result.FinalResult,
		TabSwitches:  tabSwitches,
	}
	if err := p.results.SaveResult(ctx, saveReq); err != nil {
		ctxzap.Warn(ctx, "evaluation succeeded but persistence failed, reporting submission failure",
			zap.String("session_id", session.SessionID),
			zap.Int("question_index", questionIndex),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", entity.ErrSubmissionFailed, err)
	}

	return result, nil
}
