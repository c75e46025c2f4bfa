package evaluator

import (
	"context"
	"testing"

	"github.com/mockmate/interview-runtime/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMockConnectorInterviewRoundTrip(t *testing.T) {
	m := NewMockConnector(zap.NewNop())
	ctx := context.Background()

	resp, err := m.StartInterview(ctx, "backend", "all")
	require.NoError(t, err)
	require.NotEmpty(t, resp.SessionID)
	require.Equal(t, resp.TotalQuestions, len(resp.Questions))

	for i := 0; i < resp.TotalQuestions; i++ {
		result, err := m.EvaluateAnswer(ctx, &entity.EvaluateAnswerRequest{
			SessionID:     resp.SessionID,
			QuestionIndex: i,
			Payload:       &entity.AnswerPayload{Transcript: "answer"},
		})
		require.NoError(t, err)
		require.NotNil(t, result.CurrentScore)
		assert.Equal(t, i, result.CurrentScore.QuestionIndex)

		if i == resp.TotalQuestions-1 {
			assert.True(t, result.Finished)
			require.NotNil(t, result.FinalResult)
			assert.NotEmpty(t, result.FinalResult.Grade)
		} else {
			assert.False(t, result.Finished)
			require.NotNil(t, result.Progress)
			assert.Equal(t, i+1, result.Progress.Current)
		}
	}
}

func TestMockConnectorUnknownSession(t *testing.T) {
	m := NewMockConnector(zap.NewNop())

	_, err := m.EvaluateAnswer(context.Background(), &entity.EvaluateAnswerRequest{
		SessionID: "nope",
		Payload:   &entity.AnswerPayload{Transcript: "answer"},
	})
	assert.Error(t, err)
}

func TestMockConnectorGetDomains(t *testing.T) {
	m := NewMockConnector(zap.NewNop())

	resp, err := m.GetDomains(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Domains)
}
