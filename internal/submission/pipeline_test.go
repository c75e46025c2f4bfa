package submission

import (
	"context"
	"errors"
	"testing"

	"github.com/mockmate/interview-runtime/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeEvaluator struct {
	req    *entity.EvaluateAnswerRequest
	result *entity.EvaluationResult
	err    error
}

func (f *fakeEvaluator) EvaluateAnswer(ctx context.Context, req *entity.EvaluateAnswerRequest) (*entity.EvaluationResult, error) {
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeResults struct {
	req *entity.SaveResultRequest
	err error
}

func (f *fakeResults) SaveResult(ctx context.Context, req *entity.SaveResultRequest) error {
	f.req = req
	return f.err
}

func testSession() *entity.Session {
	return &entity.Session{
		SessionID:      "sess-1",
		InterviewID:    "int-1",
		Domain:         "python",
		TotalQuestions: 3,
	}
}

func TestPipelineSubmit(t *testing.T) {
	evaluator := &fakeEvaluator{
		result: &entity.EvaluationResult{
			Finished:     true,
			CurrentScore: &entity.CurrentScore{OverallPercentage: 80},
			FinalResult:  &entity.FinalResult{Grade: "A"},
		},
	}
	results := &fakeResults{}
	p := NewPipeline(evaluator, results, zap.NewNop())

	payload := &entity.AnswerPayload{Transcript: "an answer"}
	result, err := p.Submit(context.Background(), testSession(), 2, payload, 4)
	require.NoError(t, err)
	require.NotNil(t, result)

	require.NotNil(t, evaluator.req)
	assert.Equal(t, "sess-1", evaluator.req.SessionID)
	assert.Equal(t, 2, evaluator.req.QuestionIndex)
	assert.Equal(t, 4, evaluator.req.TabSwitches)
	assert.Same(t, payload, evaluator.req.Payload)

	require.NotNil(t, results.req)
	assert.Equal(t, "int-1", results.req.InterviewID)
	assert.Equal(t, "sess-1", results.req.SessionID)
	assert.True(t, results.req.Finished)
	assert.Equal(t, "A", results.req.FinalResult.Grade)
	assert.Equal(t, 4, results.req.TabSwitches)
}

func TestPipelineNilPayload(t *testing.T) {
	p := NewPipeline(&fakeEvaluator{}, &fakeResults{}, zap.NewNop())

	_, err := p.Submit(context.Background(), testSession(), 0, nil, 0)
	assert.ErrorIs(t, err, entity.ErrSubmissionFailed)
}

func TestPipelineIncompleteMediaPayload(t *testing.T) {
	evaluator := &fakeEvaluator{}
	p := NewPipeline(evaluator, &fakeResults{}, zap.NewNop())

	payload := &entity.AnswerPayload{Image: []byte("jpeg")}
	_, err := p.Submit(context.Background(), testSession(), 0, payload, 0)
	assert.ErrorIs(t, err, entity.ErrSubmissionFailed)
	assert.Nil(t, evaluator.req, "incomplete payloads are rejected before dispatch")
}

func TestPipelineEvaluationFailure(t *testing.T) {
	evaluator := &fakeEvaluator{err: errors.New("upstream down")}
	results := &fakeResults{}
	p := NewPipeline(evaluator, results, zap.NewNop())

	_, err := p.Submit(context.Background(), testSession(), 0, &entity.AnswerPayload{Transcript: "x"}, 0)
	assert.ErrorIs(t, err, entity.ErrSubmissionFailed)
	assert.Nil(t, results.req, "persistence is not attempted after a failed evaluation")
}

func TestPipelinePersistenceFailureIsSubmissionFailure(t *testing.T) {
	evaluator := &fakeEvaluator{
		result: &entity.EvaluationResult{CurrentScore: &entity.CurrentScore{}},
	}
	results := &fakeResults{err: errors.New("store down")}
	p := NewPipeline(evaluator, results, zap.NewNop())

	_, err := p.Submit(context.Background(), testSession(), 0, &entity.AnswerPayload{Transcript: "x"}, 0)
	assert.ErrorIs(t, err, entity.ErrSubmissionFailed)
}
