package session

import (
	"context"

	"github.com/mockmate/interview-runtime/internal/entity"
)

type InterviewUsecase interface {
	StartSession(ctx context.Context, req *entity.StartSessionRequest) (entity.StateSnapshot, error)
	GetState(ctx context.Context, sessionID string) (entity.StateSnapshot, error)
	SetMode(ctx context.Context, sessionID string, mode entity.CaptureMode) (entity.StateSnapshot, error)
	SetText(ctx context.Context, sessionID, text string) (entity.StateSnapshot, error)
	StartRecording(ctx context.Context, sessionID string) (entity.StateSnapshot, error)
	Submit(ctx context.Context, sessionID string) (entity.StateSnapshot, error)
	NextQuestion(ctx context.Context, sessionID string) (entity.StateSnapshot, error)
	ReportVisibility(ctx context.Context, sessionID string, hidden bool) error
	AbandonSession(ctx context.Context, sessionID string) error
	GetDomains(ctx context.Context) (*entity.DomainsResponse, error)
}
