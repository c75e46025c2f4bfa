package evaluator

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/mockmate/interview-runtime/internal/entity"
	"go.uber.org/zap"
)

// MockConnector is a self-contained evaluation service used when mocks
// are enabled.
type MockConnector struct {
	mu       sync.Mutex
	sessions map[string]int // session_id -> total questions
	logger   *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		sessions: make(map[string]int),
		logger:   logger,
	}
}

var mockQuestions = []entity.Question{
	{Prompt: "Tell me about yourself and your background.", Category: "background", Difficulty: "easy", Weight: 1.0},
	{Prompt: "Explain the difference between a process and a thread.", Category: "technical", Difficulty: "medium", Weight: 1.0},
	{Prompt: "Describe a project you are proud of and the tradeoffs you made.", Category: "project", Difficulty: "hard", Weight: 1.5},
}

func (m *MockConnector) StartInterview(ctx context.Context, domain, level string) (*entity.StartInterviewResponse, error) {
	sessionID := uuid.New().String()

	m.mu.Lock()
	m.sessions[sessionID] = len(mockQuestions)
	m.mu.Unlock()

	ctxzap.Info(ctx, "[MOCK] interview started",
		zap.String("session_id", sessionID),
		zap.String("domain", domain),
		zap.String("level", level),
	)

	return &entity.StartInterviewResponse{
		SessionID:      sessionID,
		Domain:         domain,
		Level:          level,
		TotalQuestions: len(mockQuestions),
		Questions:      mockQuestions,
	}, nil
}

func (m *MockConnector) EvaluateAnswer(ctx context.Context, req *entity.EvaluateAnswerRequest) (*entity.EvaluationResult, error) {
	m.mu.Lock()
	total, ok := m.sessions[req.SessionID]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("[MOCK] unknown session: %s", req.SessionID)
	}
	if req.QuestionIndex < 0 || req.QuestionIndex >= total {
		return nil, fmt.Errorf("[MOCK] invalid question index: %d", req.QuestionIndex)
	}

	ctxzap.Info(ctx, "[MOCK] evaluating answer",
		zap.String("session_id", req.SessionID),
		zap.Int("question_index", req.QuestionIndex),
	)

	question := mockQuestions[req.QuestionIndex%len(mockQuestions)]
	score := &entity.CurrentScore{
		Question:          question.Prompt,
		QuestionIndex:     req.QuestionIndex,
		Category:          question.Category,
		Difficulty:        question.Difficulty,
		Weight:            question.Weight,
		Transcript:        req.Payload.Transcript,
		OverallMarks:      7.2,
		OverallPercentage: 72.0,
		Emotion:           "neutral",
		Sentiment:         "positive",
		Feedback:          "Clear structure. Expand on concrete examples and quantify the impact of your work.",
		Breakdown: map[string]float64{
			"relevance":          75.0,
			"clarity":            70.0,
			"confidence":         68.0,
			"technical_accuracy": 74.0,
		},
		SkillScores: map[string]float64{
			"technical":       74.0,
			"communication":   71.0,
			"problem_solving": 69.0,
			"confidence":      68.0,
		},
	}

	finished := req.QuestionIndex >= total-1
	result := &entity.EvaluationResult{
		Finished:     finished,
		CurrentScore: score,
	}

	if finished {
		result.FinalResult = &entity.FinalResult{
			TotalMarks:      7.2 * float64(total),
			AverageScore:    7.2,
			Percentage:      72.0,
			TotalQuestions:  total,
			MaxPossible:     total * 10,
			SkillAverages:   score.SkillScores,
			Strengths:       []string{"technical", "communication"},
			Weaknesses:      []string{},
			DominantEmotion: "neutral",
			Grade:           "B+",
		}
	} else {
		result.Progress = &entity.Progress{
			Current:    req.QuestionIndex + 1,
			Total:      total,
			Percentage: float64(req.QuestionIndex+1) / float64(total) * 100,
		}
	}

	return result, nil
}

func (m *MockConnector) GetDomains(ctx context.Context) (*entity.DomainsResponse, error) {
	return &entity.DomainsResponse{
		Domains: []entity.DomainInfo{
			{Key: "backend", Name: "Backend", TotalQuestions: len(mockQuestions), Rounds: []string{"round_1_background", "round_2_domain", "round_3_project"}},
			{Key: "frontend", Name: "Frontend", TotalQuestions: len(mockQuestions), Rounds: []string{"round_1_background", "round_2_domain", "round_3_project"}},
		},
	}, nil
}
