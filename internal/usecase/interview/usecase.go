package interview

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/mockmate/interview-runtime/internal/capture"
	"github.com/mockmate/interview-runtime/internal/entity"
	"github.com/mockmate/interview-runtime/internal/runtime"
	"go.uber.org/zap"
)

// InterviewUsecase bootstraps sessions and routes user actions to the
// owning machine.
type InterviewUsecase struct {
	evaluator  EvaluatorConnector
	registry   *runtime.Registry
	device     capture.Device
	submitter  runtime.Submitter
	navigator  runtime.Navigator
	runtimeCfg runtime.Config
	logger     *zap.Logger
}

// NewUsecase creates the interview use case.
func NewUsecase(
	evaluator EvaluatorConnector,
	registry *runtime.Registry,
	device capture.Device,
	submitter runtime.Submitter,
	navigator runtime.Navigator,
	runtimeCfg runtime.Config,
	logger *zap.Logger,
) *InterviewUsecase {
	return &InterviewUsecase{
		evaluator:  evaluator,
		registry:   registry,
		device:     device,
		submitter:  submitter,
		navigator:  navigator,
		runtimeCfg: runtimeCfg,
		logger:     logger,
	}
}

// StartSession bootstraps a session via the evaluation collaborator
// and starts its state machine. No session runs without a valid
// bootstrap.
func (uc *InterviewUsecase) StartSession(ctx context.Context, req *entity.StartSessionRequest) (entity.StateSnapshot, error) {
	level := req.Level
	if level == "" {
		level = "all"
	}

	resp, err := uc.evaluator.StartInterview(ctx, req.Domain, level)
	if err != nil {
		return entity.StateSnapshot{}, fmt.Errorf("%w: %v", entity.ErrInitializationFailed, err)
	}

	session := &entity.Session{
		SessionID:      resp.SessionID,
		InterviewID:    uuid.New().String(),
		Domain:         resp.Domain,
		Level:          resp.Level,
		Questions:      resp.Questions,
		TotalQuestions: resp.TotalQuestions,
	}
	if session.TotalQuestions == 0 {
		session.TotalQuestions = len(session.Questions)
	}

	manager := capture.NewManager(uc.device, uc.logger.With(zap.String("session_id", session.SessionID)))
	machine := runtime.NewMachine(uc.runtimeCfg, session, manager, uc.submitter, uc.navigator, uc.logger)

	if err := uc.registry.Add(machine); err != nil {
		return entity.StateSnapshot{}, fmt.Errorf("register session: %w", err)
	}

	machine.Start(ctx)

	ctxzap.Info(ctx, "interview session started",
		zap.String("session_id", session.SessionID),
		zap.String("interview_id", session.InterviewID),
		zap.Int("total_questions", session.TotalQuestions),
	)
	return machine.Snapshot(), nil
}

// GetState returns the runtime snapshot for a session.
func (uc *InterviewUsecase) GetState(ctx context.Context, sessionID string) (entity.StateSnapshot, error) {
	machine, err := uc.registry.Get(sessionID)
	if err != nil {
		return entity.StateSnapshot{}, err
	}
	return machine.Snapshot(), nil
}

// SetMode toggles the capture variant for a session.
func (uc *InterviewUsecase) SetMode(ctx context.Context, sessionID string, mode entity.CaptureMode) (entity.StateSnapshot, error) {
	machine, err := uc.registry.Get(sessionID)
	if err != nil {
		return entity.StateSnapshot{}, err
	}
	if err := machine.SetMode(mode); err != nil {
		return machine.Snapshot(), err
	}
	return machine.Snapshot(), nil
}

// SetText updates the transcript buffer for a session.
func (uc *InterviewUsecase) SetText(ctx context.Context, sessionID, text string) (entity.StateSnapshot, error) {
	machine, err := uc.registry.Get(sessionID)
	if err != nil {
		return entity.StateSnapshot{}, err
	}
	if err := machine.SetText(text); err != nil {
		return machine.Snapshot(), err
	}
	return machine.Snapshot(), nil
}

// StartRecording begins buffering the video answer.
func (uc *InterviewUsecase) StartRecording(ctx context.Context, sessionID string) (entity.StateSnapshot, error) {
	machine, err := uc.registry.Get(sessionID)
	if err != nil {
		return entity.StateSnapshot{}, err
	}
	if err := machine.StartRecording(); err != nil {
		return machine.Snapshot(), err
	}
	return machine.Snapshot(), nil
}

// Submit performs the manual submit action.
func (uc *InterviewUsecase) Submit(ctx context.Context, sessionID string) (entity.StateSnapshot, error) {
	machine, err := uc.registry.Get(sessionID)
	if err != nil {
		return entity.StateSnapshot{}, err
	}
	if err := machine.Submit(); err != nil {
		return machine.Snapshot(), err
	}
	return machine.Snapshot(), nil
}

// NextQuestion acknowledges feedback and advances.
func (uc *InterviewUsecase) NextQuestion(ctx context.Context, sessionID string) (entity.StateSnapshot, error) {
	machine, err := uc.registry.Get(sessionID)
	if err != nil {
		return entity.StateSnapshot{}, err
	}
	if err := machine.NextQuestion(); err != nil {
		return machine.Snapshot(), err
	}
	return machine.Snapshot(), nil
}

// ReportVisibility records a page visibility transition.
func (uc *InterviewUsecase) ReportVisibility(ctx context.Context, sessionID string, hidden bool) error {
	machine, err := uc.registry.Get(sessionID)
	if err != nil {
		return err
	}
	return machine.ReportVisibility(hidden)
}

// AbandonSession tears a session down on explicit page abandonment.
func (uc *InterviewUsecase) AbandonSession(ctx context.Context, sessionID string) error {
	return uc.registry.Remove(sessionID)
}

// GetDomains proxies the evaluation collaborator's domain catalog.
func (uc *InterviewUsecase) GetDomains(ctx context.Context) (*entity.DomainsResponse, error) {
	return uc.evaluator.GetDomains(ctx)
}
