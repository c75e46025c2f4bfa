package runtime

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mockmate/interview-runtime/internal/capture"
	"github.com/mockmate/interview-runtime/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubStream struct {
	frame  []byte
	chunks chan []byte
	closed atomic.Int32
}

func newStubStream() *stubStream {
	// Unbuffered: a send returns only once the recorder pump has the
	// chunk, which keeps the tests deterministic.
	return &stubStream{
		frame:  []byte("jpeg-frame"),
		chunks: make(chan []byte),
	}
}

func (s *stubStream) Frame(ctx context.Context) ([]byte, error) { return s.frame, nil }

func (s *stubStream) Chunk(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case chunk := <-s.chunks:
		return chunk, nil
	}
}

func (s *stubStream) Close() error {
	s.closed.Add(1)
	return nil
}

type stubDevice struct {
	stream  *stubStream
	openErr error
}

func (d *stubDevice) Open(ctx context.Context) (capture.Stream, error) {
	if d.openErr != nil {
		return nil, d.openErr
	}
	return d.stream, nil
}

type submitCall struct {
	index       int
	payload     *entity.AnswerPayload
	tabSwitches int
}

type stubSubmitter struct {
	mu    sync.Mutex
	calls []submitCall
	fn    func(call submitCall) (*entity.EvaluationResult, error)
}

func (s *stubSubmitter) Submit(ctx context.Context, session *entity.Session, questionIndex int, payload *entity.AnswerPayload, tabSwitches int) (*entity.EvaluationResult, error) {
	call := submitCall{index: questionIndex, payload: payload, tabSwitches: tabSwitches}
	s.mu.Lock()
	s.calls = append(s.calls, call)
	fn := s.fn
	s.mu.Unlock()

	if fn != nil {
		return fn(call)
	}
	return &entity.EvaluationResult{
		CurrentScore: &entity.CurrentScore{QuestionIndex: questionIndex, OverallPercentage: 72},
	}, nil
}

func (s *stubSubmitter) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *stubSubmitter) call(i int) submitCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[i]
}

type stubNavigator struct {
	mu       sync.Mutex
	requests []string
}

func (n *stubNavigator) RequestReportView(ctx context.Context, interviewID, sessionID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.requests = append(n.requests, interviewID+"/"+sessionID)
}

func (n *stubNavigator) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.requests)
}

func testCfg() Config {
	return Config{
		// Long enough that no test hits the timeout unintentionally.
		QuestionTime:          10 * time.Second,
		FeedbackRedirectDelay: 60 * time.Millisecond,
		ClockResolution:       10 * time.Millisecond,
	}
}

func testQuestions(n int) []entity.Question {
	qs := make([]entity.Question, n)
	for i := range qs {
		qs[i] = entity.Question{Prompt: "question", Category: "core", Difficulty: "easy", Weight: 1}
	}
	return qs
}

type fixture struct {
	machine   *Machine
	stream    *stubStream
	submitter *stubSubmitter
	navigator *stubNavigator
}

func newFixture(t *testing.T, cfg Config, device capture.Device, totalQuestions int) *fixture {
	t.Helper()

	f := &fixture{
		submitter: &stubSubmitter{},
		navigator: &stubNavigator{},
	}
	if sd, ok := device.(*stubDevice); ok {
		f.stream = sd.stream
	}

	session := &entity.Session{
		SessionID:      "sess-1",
		InterviewID:    "int-1",
		Domain:         "python",
		Level:          "all",
		Questions:      testQuestions(totalQuestions),
		TotalQuestions: totalQuestions,
	}

	manager := capture.NewManager(device, zap.NewNop())
	f.machine = NewMachine(cfg, session, manager, f.submitter, f.navigator, zap.NewNop())
	t.Cleanup(f.machine.Teardown)
	return f
}

func waitPhase(t *testing.T, m *Machine, phase entity.RuntimePhase) {
	t.Helper()
	require.Eventually(t, func() bool {
		return m.Snapshot().Phase == phase
	}, 2*time.Second, 2*time.Millisecond, "waiting for phase %s, still %s", phase, m.Snapshot().Phase)
}

func waitSnapshot(t *testing.T, m *Machine, cond func(entity.StateSnapshot) bool) {
	t.Helper()
	require.Eventually(t, func() bool {
		return cond(m.Snapshot())
	}, 2*time.Second, 2*time.Millisecond)
}

func TestMachineStartBeginsFirstQuestion(t *testing.T) {
	f := newFixture(t, testCfg(), &stubDevice{stream: newStubStream()}, 3)
	f.machine.Start(context.Background())

	snap := f.machine.Snapshot()
	assert.Equal(t, entity.PhaseAwaitingAnswer, snap.Phase)
	assert.Equal(t, entity.CaptureModeVideo, snap.Mode)
	assert.Equal(t, 0, snap.QuestionIndex)
	assert.Equal(t, 3, snap.TotalQuestions)
	assert.NotNil(t, snap.Question)
	assert.Positive(t, snap.RemainingSeconds)
}

func TestMachineDeviceDenialFallsBackToText(t *testing.T) {
	f := newFixture(t, testCfg(), &stubDevice{openErr: errors.New("denied")}, 3)
	f.machine.Start(context.Background())

	snap := f.machine.Snapshot()
	assert.Equal(t, entity.PhaseAwaitingAnswer, snap.Phase)
	assert.Equal(t, entity.CaptureModeText, snap.Mode)
	assert.Equal(t, noteDeviceFallback, snap.Notification)
}

func TestMachineTextSubmitCycle(t *testing.T) {
	f := newFixture(t, testCfg(), &stubDevice{openErr: errors.New("denied")}, 3)
	f.machine.Start(context.Background())

	require.NoError(t, f.machine.SetText("my answer"))
	require.NoError(t, f.machine.Submit())

	waitPhase(t, f.machine, entity.PhaseShowingFeedback)
	snap := f.machine.Snapshot()
	require.NotNil(t, snap.Feedback)
	assert.Equal(t, float64(72), snap.Feedback.OverallPercentage)

	require.Equal(t, 1, f.submitter.callCount())
	call := f.submitter.call(0)
	assert.Equal(t, 0, call.index)
	assert.Equal(t, "my answer", call.payload.Transcript)

	require.NoError(t, f.machine.NextQuestion())
	waitSnapshot(t, f.machine, func(s entity.StateSnapshot) bool {
		return s.Phase == entity.PhaseAwaitingAnswer && s.QuestionIndex == 1
	})
	assert.Nil(t, f.machine.Snapshot().Feedback, "feedback is held only until the next question begins")
}

func TestMachineEmptyManualTextSubmit(t *testing.T) {
	f := newFixture(t, testCfg(), &stubDevice{openErr: errors.New("denied")}, 3)
	f.machine.Start(context.Background())

	err := f.machine.Submit()
	assert.ErrorIs(t, err, entity.ErrEmptyInput)

	waitSnapshot(t, f.machine, func(s entity.StateSnapshot) bool {
		return s.Notification == noteEmptyInput
	})
	assert.Equal(t, entity.PhaseAwaitingAnswer, f.machine.Snapshot().Phase)
	assert.Zero(t, f.submitter.callCount())
}

func TestMachineTimeoutWithEmptyTextSkipsQuestion(t *testing.T) {
	cfg := testCfg()
	cfg.QuestionTime = 40 * time.Millisecond
	f := newFixture(t, cfg, &stubDevice{openErr: errors.New("denied")}, 3)
	f.machine.Start(context.Background())

	waitSnapshot(t, f.machine, func(s entity.StateSnapshot) bool {
		return s.QuestionIndex == 1 && s.Phase == entity.PhaseAwaitingAnswer
	})
	assert.Equal(t, noteNoAnswer, f.machine.Snapshot().Notification)
	assert.Zero(t, f.submitter.callCount(), "skipped questions never reach the evaluator")
}

func TestMachineTimeoutWithDraftSubmitsIt(t *testing.T) {
	cfg := testCfg()
	cfg.QuestionTime = 60 * time.Millisecond
	f := newFixture(t, cfg, &stubDevice{openErr: errors.New("denied")}, 3)
	f.machine.Start(context.Background())

	require.NoError(t, f.machine.SetText("typed but never submitted"))

	waitPhase(t, f.machine, entity.PhaseShowingFeedback)
	require.Equal(t, 1, f.submitter.callCount())
	assert.Equal(t, "typed but never submitted", f.submitter.call(0).payload.Transcript)
}

func TestMachineVideoTimeoutWithoutRecordingSkips(t *testing.T) {
	cfg := testCfg()
	cfg.QuestionTime = 40 * time.Millisecond
	f := newFixture(t, cfg, &stubDevice{stream: newStubStream()}, 3)
	f.machine.Start(context.Background())

	waitSnapshot(t, f.machine, func(s entity.StateSnapshot) bool {
		return s.QuestionIndex == 1 && s.Phase == entity.PhaseAwaitingAnswer
	})
	assert.Zero(t, f.submitter.callCount())
}

func TestMachineVideoManualSubmitWithoutRecording(t *testing.T) {
	f := newFixture(t, testCfg(), &stubDevice{stream: newStubStream()}, 3)
	f.machine.Start(context.Background())

	err := f.machine.Submit()
	assert.ErrorIs(t, err, entity.ErrNotRecording)

	waitSnapshot(t, f.machine, func(s entity.StateSnapshot) bool {
		return s.Notification == noteNotRecording
	})
	assert.Equal(t, entity.PhaseAwaitingAnswer, f.machine.Snapshot().Phase)
}

func TestMachineVideoRecordAndSubmit(t *testing.T) {
	f := newFixture(t, testCfg(), &stubDevice{stream: newStubStream()}, 3)
	f.machine.Start(context.Background())

	require.NoError(t, f.machine.StartRecording())
	waitSnapshot(t, f.machine, func(s entity.StateSnapshot) bool { return s.Recording })

	f.stream.chunks <- []byte("OggS")
	f.stream.chunks <- []byte("-audio")

	require.NoError(t, f.machine.Submit())
	waitPhase(t, f.machine, entity.PhaseShowingFeedback)

	require.Equal(t, 1, f.submitter.callCount())
	payload := f.submitter.call(0).payload
	require.NotNil(t, payload)
	assert.True(t, payload.HasMedia())
	assert.Equal(t, []byte("jpeg-frame"), payload.Image)
	assert.Equal(t, "ogg", payload.AudioFormat)
}

func TestMachineVideoTimeoutStopsAndSubmitsOnce(t *testing.T) {
	cfg := testCfg()
	cfg.QuestionTime = 60 * time.Millisecond
	f := newFixture(t, cfg, &stubDevice{stream: newStubStream()}, 3)
	f.machine.Start(context.Background())

	require.NoError(t, f.machine.StartRecording())
	f.stream.chunks <- []byte("audio")

	waitPhase(t, f.machine, entity.PhaseShowingFeedback)

	assert.Equal(t, 1, f.submitter.callCount())
	assert.False(t, f.machine.Snapshot().Recording)
}

func TestMachineSubmitDuringSubmittingIsIgnored(t *testing.T) {
	release := make(chan struct{})
	f := newFixture(t, testCfg(), &stubDevice{openErr: errors.New("denied")}, 3)
	f.submitter.fn = func(call submitCall) (*entity.EvaluationResult, error) {
		<-release
		return &entity.EvaluationResult{CurrentScore: &entity.CurrentScore{}}, nil
	}
	f.machine.Start(context.Background())

	require.NoError(t, f.machine.SetText("answer"))
	require.NoError(t, f.machine.Submit())
	waitPhase(t, f.machine, entity.PhaseSubmitting)

	// Ignored, not queued.
	require.NoError(t, f.machine.Submit())
	require.NoError(t, f.machine.Submit())

	close(release)
	waitPhase(t, f.machine, entity.PhaseShowingFeedback)
	assert.Equal(t, 1, f.submitter.callCount())
}

func TestMachineSubmitFailureReturnsToQuestion(t *testing.T) {
	f := newFixture(t, testCfg(), &stubDevice{openErr: errors.New("denied")}, 3)
	f.submitter.fn = func(call submitCall) (*entity.EvaluationResult, error) {
		return nil, entity.ErrSubmissionFailed
	}
	f.machine.Start(context.Background())

	require.NoError(t, f.machine.SetText("answer"))
	require.NoError(t, f.machine.Submit())

	waitSnapshot(t, f.machine, func(s entity.StateSnapshot) bool {
		return s.Phase == entity.PhaseAwaitingAnswer && s.Notification == noteSubmitFailed
	})

	// The answer and the remaining time survive the failure.
	assert.Positive(t, f.machine.Snapshot().RemainingSeconds)

	f.submitter.fn = nil
	require.NoError(t, f.machine.Submit())
	waitPhase(t, f.machine, entity.PhaseShowingFeedback)
	assert.Equal(t, 2, f.submitter.callCount())
}

func TestMachineModeToggleDiscardsRecording(t *testing.T) {
	f := newFixture(t, testCfg(), &stubDevice{stream: newStubStream()}, 3)
	f.machine.Start(context.Background())

	require.NoError(t, f.machine.StartRecording())
	f.stream.chunks <- []byte("audio")

	require.NoError(t, f.machine.SetMode(entity.CaptureModeText))
	waitSnapshot(t, f.machine, func(s entity.StateSnapshot) bool {
		return s.Mode == entity.CaptureModeText && !s.Recording
	})
	assert.Zero(t, f.submitter.callCount(), "no partial submission survives the switch")

	require.NoError(t, f.machine.SetMode(entity.CaptureModeVideo))
	waitSnapshot(t, f.machine, func(s entity.StateSnapshot) bool {
		return s.Mode == entity.CaptureModeVideo
	})
}

func TestMachineModeToggleDeviceDenialKeepsTextMode(t *testing.T) {
	device := &stubDevice{openErr: errors.New("denied")}
	f := newFixture(t, testCfg(), device, 3)
	f.machine.Start(context.Background())
	require.Equal(t, entity.CaptureModeText, f.machine.Snapshot().Mode)

	err := f.machine.SetMode(entity.CaptureModeVideo)
	assert.Error(t, err)
	waitSnapshot(t, f.machine, func(s entity.StateSnapshot) bool {
		return s.Mode == entity.CaptureModeText && s.Notification == noteDeviceFallback
	})
}

func TestMachineTabSwitchesAccumulateAndForward(t *testing.T) {
	f := newFixture(t, testCfg(), &stubDevice{openErr: errors.New("denied")}, 3)
	f.machine.Start(context.Background())

	require.NoError(t, f.machine.ReportVisibility(true))
	require.NoError(t, f.machine.ReportVisibility(false))
	require.NoError(t, f.machine.ReportVisibility(true))

	waitSnapshot(t, f.machine, func(s entity.StateSnapshot) bool {
		return s.TabSwitches == 2
	})

	require.NoError(t, f.machine.SetText("answer"))
	require.NoError(t, f.machine.Submit())
	waitPhase(t, f.machine, entity.PhaseShowingFeedback)

	assert.Equal(t, 2, f.submitter.call(0).tabSwitches)
}

func TestMachineFinishedRedirectsAfterDelay(t *testing.T) {
	f := newFixture(t, testCfg(), &stubDevice{openErr: errors.New("denied")}, 1)
	f.submitter.fn = func(call submitCall) (*entity.EvaluationResult, error) {
		return &entity.EvaluationResult{
			Finished:     true,
			CurrentScore: &entity.CurrentScore{},
			FinalResult:  &entity.FinalResult{Grade: "B+"},
		}, nil
	}
	f.machine.Start(context.Background())

	require.NoError(t, f.machine.SetText("final answer"))
	require.NoError(t, f.machine.Submit())

	waitPhase(t, f.machine, entity.PhaseShowingFeedback)
	require.NotNil(t, f.machine.Snapshot().FinalResult)

	// Advancing past the final feedback is not allowed; the redirect
	// timer owns the exit.
	assert.ErrorIs(t, f.machine.NextQuestion(), entity.ErrInvalidAction)

	waitPhase(t, f.machine, entity.PhaseCompleted)
	waitSnapshot(t, f.machine, func(entity.StateSnapshot) bool { return f.navigator.count() == 1 })
	assert.Equal(t, []string{"int-1/sess-1"}, f.navigator.requests)
}

func TestMachineLastQuestionTimeoutUnansweredCompletes(t *testing.T) {
	cfg := testCfg()
	cfg.QuestionTime = 40 * time.Millisecond
	stream := newStubStream()
	f := newFixture(t, cfg, &stubDevice{stream: stream}, 1)
	f.machine.Start(context.Background())

	waitPhase(t, f.machine, entity.PhaseCompleted)
	waitSnapshot(t, f.machine, func(entity.StateSnapshot) bool { return f.navigator.count() == 1 })
	assert.Zero(t, f.submitter.callCount())

	require.Eventually(t, func() bool { return stream.closed.Load() > 0 }, time.Second, 2*time.Millisecond,
		"completion releases the media stream")
}

func TestMachineActionsAfterTeardown(t *testing.T) {
	f := newFixture(t, testCfg(), &stubDevice{openErr: errors.New("denied")}, 3)
	f.machine.Start(context.Background())
	f.machine.Teardown()

	assert.ErrorIs(t, f.machine.Submit(), entity.ErrSessionCompleted)
	assert.ErrorIs(t, f.machine.SetText("late"), entity.ErrSessionCompleted)
	assert.ErrorIs(t, f.machine.ReportVisibility(true), entity.ErrSessionCompleted)
}

func TestMachineNextQuestionOutsideFeedback(t *testing.T) {
	f := newFixture(t, testCfg(), &stubDevice{openErr: errors.New("denied")}, 3)
	f.machine.Start(context.Background())

	assert.ErrorIs(t, f.machine.NextQuestion(), entity.ErrInvalidAction)
}
