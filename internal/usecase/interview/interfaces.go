package interview

import (
	"context"

	"github.com/mockmate/interview-runtime/internal/entity"
)

// EvaluatorConnector is the bootstrap/catalog surface of the
// evaluation collaborator. Answer scoring goes through the submission
// pipeline instead.
type EvaluatorConnector interface {
	StartInterview(ctx context.Context, domain, level string) (*entity.StartInterviewResponse, error)
	GetDomains(ctx context.Context) (*entity.DomainsResponse, error)
}
