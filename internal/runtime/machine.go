package runtime

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/mockmate/interview-runtime/internal/capture"
	"github.com/mockmate/interview-runtime/internal/clock"
	"github.com/mockmate/interview-runtime/internal/entity"
	"github.com/mockmate/interview-runtime/internal/proctor"
	"go.uber.org/zap"
)

// Submitter runs the evaluate-then-persist sequence for one answer.
type Submitter interface {
	Submit(ctx context.Context, session *entity.Session, questionIndex int, payload *entity.AnswerPayload, tabSwitches int) (*entity.EvaluationResult, error)
}

// Navigator requests navigation to the report view. Fire-and-forget.
type Navigator interface {
	RequestReportView(ctx context.Context, interviewID, sessionID string)
}

// Config holds the per-session runtime knobs.
type Config struct {
	// QuestionTime is the per-question answer budget.
	QuestionTime time.Duration
	// FeedbackRedirectDelay is how long final feedback stays visible
	// before the report-view navigation fires.
	FeedbackRedirectDelay time.Duration
	// ClockResolution is the countdown tick interval. Zero means one
	// second; tests shrink it.
	ClockResolution time.Duration
}

func (c Config) resolution() time.Duration {
	if c.ClockResolution <= 0 {
		return time.Second
	}
	return c.ClockResolution
}

func (c Config) questionTicks() int {
	ticks := int(c.QuestionTime / c.resolution())
	if ticks < 1 {
		ticks = 1
	}
	return ticks
}

const (
	noteDeviceFallback = "camera or microphone unavailable, switched to text mode"
	noteNoAnswer       = "no answer provided, moving to the next question"
	noteEmptyInput     = "enter an answer before submitting"
	noteNotRecording   = "start a recording before submitting"
	noteCaptureFailed  = "could not capture your answer, please try again"
	noteSubmitFailed   = "submission failed, please try again"
	noteTabSwitch      = "tab switch detected, this is recorded"
)

// runtimeState is the mutable core of the machine. Owned exclusively
// by the dispatch goroutine once the loop starts.
type runtimeState struct {
	phase            entity.RuntimePhase
	mode             entity.CaptureMode
	index            int
	loading          bool
	feedbackVisible  bool
	remaining        int
	pendingRemaining int
	notification     string
	feedback         *entity.CurrentScore
	finalResult      *entity.FinalResult
	progress         *entity.Progress
	finished         bool
}

// Machine is the session state machine: it owns question progression,
// capture-mode switching, timer-driven auto-submission, proctoring
// accumulation and the submit/feedback/advance cycle for one session.
type Machine struct {
	cfg     Config
	session *entity.Session

	manager   *capture.Manager
	video     *capture.VideoCapture
	text      *capture.TextCapture
	monitor   *proctor.Monitor
	countdown *clock.Countdown
	submitter Submitter
	navigator Navigator
	logger    *zap.Logger

	events chan event
	done   chan struct{}
	once   sync.Once

	timerMu       sync.Mutex
	redirectTimer *time.Timer

	// st is touched only by Start (before the loop exists) and the
	// dispatch goroutine afterwards.
	st runtimeState

	snapMu sync.RWMutex
	snap   entity.StateSnapshot
}

// NewMachine builds a machine for one bootstrapped session. Call Start
// to begin the first question.
func NewMachine(
	cfg Config,
	session *entity.Session,
	manager *capture.Manager,
	submitter Submitter,
	navigator Navigator,
	logger *zap.Logger,
) *Machine {
	logger = logger.With(
		zap.String("session_id", session.SessionID),
		zap.String("interview_id", session.InterviewID),
	)

	m := &Machine{
		cfg:       cfg,
		session:   session,
		manager:   manager,
		video:     capture.NewVideoCapture(manager, logger),
		text:      capture.NewTextCapture(),
		monitor:   proctor.NewMonitor(logger, nil),
		submitter: submitter,
		navigator: navigator,
		logger:    logger,
		events:    make(chan event, 128),
		done:      make(chan struct{}),
	}

	m.countdown = clock.New(cfg.resolution(),
		func(remaining int) { m.post(tickEvent{remaining: remaining}) },
		func() { m.post(expiredEvent{}) },
	)

	m.st = runtimeState{
		phase: entity.PhaseInitializing,
		mode:  entity.CaptureModeVideo,
	}
	return m
}

// Session returns the immutable session this machine runs.
func (m *Machine) Session() *entity.Session {
	return m.session
}

// Start attempts device acquisition (falling back to text mode on
// denial), begins the first question's countdown and starts the
// dispatch loop.
func (m *Machine) Start(ctx context.Context) {
	if err := m.manager.Acquire(ctx); err != nil {
		m.logger.Warn("device acquisition failed, falling back to text mode", zap.Error(err))
		m.st.mode = entity.CaptureModeText
		m.st.notification = noteDeviceFallback
	}

	m.st.phase = entity.PhaseAwaitingAnswer
	m.st.remaining = m.cfg.questionTicks()
	m.publishSnapshot()

	go m.loop()
	m.countdown.Start(m.cfg.QuestionTime)

	m.logger.Info("session started",
		zap.String("mode", string(m.st.mode)),
		zap.Int("total_questions", m.session.TotalQuestions),
	)
}

// Snapshot returns the latest published runtime state.
func (m *Machine) Snapshot() entity.StateSnapshot {
	m.snapMu.RLock()
	defer m.snapMu.RUnlock()
	return m.snap
}

// SetMode toggles the active capture variant.
func (m *Machine) SetMode(mode entity.CaptureMode) error {
	return m.command(commandEvent{action: actionSetMode, mode: mode})
}

// SetText updates the transcript buffer.
func (m *Machine) SetText(text string) error {
	return m.command(commandEvent{action: actionSetText, text: text})
}

// StartRecording begins buffering the video answer.
func (m *Machine) StartRecording() error {
	return m.command(commandEvent{action: actionStartRecording})
}

// Submit is the manual submit action. A no-op while a submission is in
// flight or feedback is showing.
func (m *Machine) Submit() error {
	return m.command(commandEvent{action: actionSubmit})
}

// NextQuestion acknowledges feedback and advances to the next question.
func (m *Machine) NextQuestion() error {
	return m.command(commandEvent{action: actionNextQuestion})
}

// ReportVisibility feeds one page visibility transition to the
// proctoring monitor.
func (m *Machine) ReportVisibility(hidden bool) error {
	if !m.post(visibilityEvent{hidden: hidden}) {
		return entity.ErrSessionCompleted
	}
	return nil
}

// Teardown releases every resource the machine owns: countdown,
// redirect timer, media stream, proctoring subscription and the
// dispatch loop. Idempotent.
func (m *Machine) Teardown() {
	m.once.Do(func() {
		close(m.done)
		m.countdown.Stop()
		m.stopRedirectTimer()
		m.video.Discard()
		m.manager.Release()
		m.monitor.Close()
		m.logger.Info("session torn down")
	})
}

func (m *Machine) post(ev event) bool {
	select {
	case <-m.done:
		return false
	case m.events <- ev:
		return true
	}
}

func (m *Machine) command(ev commandEvent) error {
	ev.reply = make(chan error, 1)
	if !m.post(ev) {
		return entity.ErrSessionCompleted
	}
	select {
	case <-m.done:
		return entity.ErrSessionCompleted
	case err := <-ev.reply:
		return err
	}
}

func (m *Machine) loop() {
	for {
		select {
		case <-m.done:
			return
		case ev := <-m.events:
			m.dispatch(ev)
			m.publishSnapshot()
		}
	}
}

// dispatch is the single transition function: every external input
// flows through here on one goroutine.
func (m *Machine) dispatch(ev event) {
	switch ev := ev.(type) {
	case tickEvent:
		if m.st.phase == entity.PhaseAwaitingAnswer {
			m.st.remaining = ev.remaining
		}

	case expiredEvent:
		if m.st.phase != entity.PhaseAwaitingAnswer {
			// Late expiry from a countdown superseded by submission.
			return
		}
		m.st.remaining = 0
		m.beginSubmission(entity.TriggerTimeout)

	case visibilityEvent:
		if m.st.phase == entity.PhaseCompleted {
			return
		}
		before := m.monitor.Switches()
		m.monitor.ReportVisibility(ev.hidden)
		if m.monitor.Switches() > before {
			m.st.notification = noteTabSwitch
		}

	case commandEvent:
		err := m.handleCommand(ev)
		if ev.reply != nil {
			ev.reply <- err
		}

	case submitOutcomeEvent:
		m.handleSubmitOutcome(ev)

	case redirectEvent:
		m.handleRedirect()
	}
}

func (m *Machine) handleCommand(ev commandEvent) error {
	switch ev.action {
	case actionSetMode:
		return m.toggleMode(ev.mode)

	case actionSetText:
		if m.st.phase != entity.PhaseAwaitingAnswer {
			return entity.ErrInvalidAction
		}
		m.text.SetText(ev.text)
		return nil

	case actionStartRecording:
		if m.st.phase != entity.PhaseAwaitingAnswer || m.st.mode != entity.CaptureModeVideo {
			return entity.ErrInvalidAction
		}
		if err := m.video.BeginRecording(context.Background()); err != nil {
			return err
		}
		return nil

	case actionSubmit:
		switch m.st.phase {
		case entity.PhaseSubmitting, entity.PhaseShowingFeedback:
			// Ignored, not queued.
			m.logger.Debug("manual submit ignored", zap.String("phase", string(m.st.phase)))
			return nil
		case entity.PhaseAwaitingAnswer:
			return m.beginSubmission(entity.TriggerManual)
		default:
			return entity.ErrInvalidAction
		}

	case actionNextQuestion:
		return m.advanceAfterFeedback()
	}
	return entity.ErrInvalidAction
}

func (m *Machine) toggleMode(mode entity.CaptureMode) error {
	if m.st.phase != entity.PhaseAwaitingAnswer {
		return entity.ErrInvalidAction
	}
	if mode == m.st.mode {
		return nil
	}

	switch mode {
	case entity.CaptureModeText:
		// An in-flight recording is silently stopped and discarded:
		// no partial submission may survive the switch.
		m.video.Discard()
		m.st.mode = entity.CaptureModeText

	case entity.CaptureModeVideo:
		if err := m.manager.Acquire(context.Background()); err != nil {
			m.st.notification = noteDeviceFallback
			return err
		}
		m.st.mode = entity.CaptureModeVideo
	}

	m.logger.Info("capture mode switched", zap.String("mode", string(mode)))
	return nil
}

// beginSubmission drives the manual-submit and timeout paths into the
// single packaging/submission flow. The countdown is stopped before
// any asynchronous work so a late expiry cannot double-fire.
func (m *Machine) beginSubmission(trigger entity.SubmitTrigger) error {
	m.countdown.Stop()
	m.st.pendingRemaining = m.st.remaining

	switch m.st.mode {
	case entity.CaptureModeText:
		payload, err := m.text.Package(trigger)
		if err != nil {
			// Empty manual submit: user-correctable, nothing sent,
			// elapsed time is not refunded.
			m.st.notification = noteEmptyInput
			m.resumeClock()
			return err
		}
		if payload == nil {
			// EmptyAnswer on timeout: skip without contacting the
			// evaluator.
			m.skipQuestion()
			return nil
		}
		m.enterSubmitting()
		m.startSubmitWorker(payload)
		return nil

	case entity.CaptureModeVideo:
		if !m.video.Recording() {
			if trigger == entity.TriggerTimeout {
				// Time ran out before recording began: nothing was
				// captured, the question is skipped.
				m.skipQuestion()
				return nil
			}
			m.st.notification = noteNotRecording
			m.resumeClock()
			return entity.ErrNotRecording
		}
		m.enterSubmitting()
		m.startVideoSubmitWorker()
		return nil
	}

	return entity.ErrInvalidAction
}

func (m *Machine) enterSubmitting() {
	m.st.phase = entity.PhaseSubmitting
	m.st.loading = true
	m.st.notification = ""
}

// startSubmitWorker submits an already packaged payload off the
// dispatch goroutine and posts the outcome back as an event.
func (m *Machine) startSubmitWorker(payload *entity.AnswerPayload) {
	index := m.st.index
	tabSwitches := m.monitor.Switches()

	go func() {
		ctx := m.workerContext()
		result, err := m.submitter.Submit(ctx, m.session, index, payload, tabSwitches)
		m.post(submitOutcomeEvent{questionIndex: index, result: result, err: err})
	}()
}

// startVideoSubmitWorker finalizes the recording (waiting for the
// recorder's stop acknowledgment) and then submits. Exactly one
// stop-and-submit runs per trigger; the phase guard prevents a second.
func (m *Machine) startVideoSubmitWorker() {
	index := m.st.index
	tabSwitches := m.monitor.Switches()

	go func() {
		ctx := m.workerContext()
		payload, err := m.video.StopAndPackage(ctx)
		if err != nil {
			m.post(submitOutcomeEvent{questionIndex: index, err: err})
			return
		}
		result, err := m.submitter.Submit(ctx, m.session, index, payload, tabSwitches)
		m.post(submitOutcomeEvent{questionIndex: index, result: result, err: err})
	}()
}

func (m *Machine) handleSubmitOutcome(ev submitOutcomeEvent) {
	if m.st.phase != entity.PhaseSubmitting || ev.questionIndex != m.st.index {
		m.logger.Warn("discarding stale submission outcome",
			zap.Int("outcome_index", ev.questionIndex),
			zap.Int("current_index", m.st.index),
			zap.String("phase", string(m.st.phase)),
		)
		return
	}

	m.st.loading = false

	if ev.err != nil {
		m.logger.Warn("submission failed, returning to question", zap.Error(ev.err))
		if errors.Is(ev.err, entity.ErrCapture) || errors.Is(ev.err, entity.ErrNoStream) || errors.Is(ev.err, entity.ErrNotRecording) {
			m.st.notification = noteCaptureFailed
		} else {
			m.st.notification = noteSubmitFailed
		}
		m.st.phase = entity.PhaseAwaitingAnswer
		// Elapsed time is not refunded.
		m.resumeClock()
		return
	}

	m.st.phase = entity.PhaseShowingFeedback
	m.st.feedbackVisible = true
	m.st.feedback = ev.result.CurrentScore
	m.st.finalResult = ev.result.FinalResult
	m.st.progress = ev.result.Progress
	m.st.notification = ""
	m.text.Reset()

	if ev.result.Finished {
		m.st.finished = true
		m.scheduleRedirect()
		m.logger.Info("final feedback showing, redirect scheduled",
			zap.Duration("delay", m.cfg.FeedbackRedirectDelay))
	}
}

// skipQuestion advances past an unanswered question without contacting
// the evaluator.
func (m *Machine) skipQuestion() {
	m.logger.Info("question skipped with no answer", zap.Int("question_index", m.st.index))
	m.text.Reset()
	m.st.notification = noteNoAnswer
	m.st.loading = false
	m.st.feedbackVisible = false
	m.st.feedback = nil

	if m.st.index+1 >= m.session.TotalQuestions {
		// Last question expired unanswered: nothing left to show,
		// finish the session.
		m.complete()
		return
	}

	m.st.index++
	m.st.phase = entity.PhaseAwaitingAnswer
	m.st.remaining = m.cfg.questionTicks()
	m.countdown.Start(m.cfg.QuestionTime)
}

func (m *Machine) advanceAfterFeedback() error {
	if m.st.phase != entity.PhaseShowingFeedback || m.st.finished {
		return entity.ErrInvalidAction
	}

	m.st.feedback = nil
	m.st.feedbackVisible = false
	m.st.notification = ""
	m.st.index++
	m.st.phase = entity.PhaseAwaitingAnswer
	m.st.remaining = m.cfg.questionTicks()
	m.countdown.Start(m.cfg.QuestionTime)

	m.logger.Info("advanced to next question", zap.Int("question_index", m.st.index))
	return nil
}

func (m *Machine) handleRedirect() {
	if m.st.phase != entity.PhaseShowingFeedback || !m.st.finished {
		return
	}
	m.complete()
}

// complete is the terminal transition: resources released, navigation
// requested, no further events processed beyond snapshots.
func (m *Machine) complete() {
	m.st.phase = entity.PhaseCompleted
	m.countdown.Stop()
	m.manager.Release()
	m.monitor.Close()

	interviewID := m.session.InterviewID
	sessionID := m.session.SessionID
	ctx := m.workerContext()
	go m.navigator.RequestReportView(ctx, interviewID, sessionID)

	m.logger.Info("session completed")
}

func (m *Machine) resumeClock() {
	remaining := m.st.pendingRemaining
	if remaining < 1 {
		remaining = 1
	}
	m.st.remaining = remaining
	m.countdown.Start(time.Duration(remaining) * m.cfg.resolution())
}

func (m *Machine) scheduleRedirect() {
	m.timerMu.Lock()
	defer m.timerMu.Unlock()
	if m.redirectTimer != nil {
		return
	}
	m.redirectTimer = time.AfterFunc(m.cfg.FeedbackRedirectDelay, func() {
		m.post(redirectEvent{})
	})
}

func (m *Machine) stopRedirectTimer() {
	m.timerMu.Lock()
	defer m.timerMu.Unlock()
	if m.redirectTimer != nil {
		m.redirectTimer.Stop()
		m.redirectTimer = nil
	}
}

func (m *Machine) workerContext() context.Context {
	return ctxzap.ToContext(context.Background(), m.logger)
}

func (m *Machine) publishSnapshot() {
	snap := entity.StateSnapshot{
		SessionID:        m.session.SessionID,
		InterviewID:      m.session.InterviewID,
		Phase:            m.st.phase,
		Mode:             m.st.mode,
		QuestionIndex:    m.st.index,
		TotalQuestions:   m.session.TotalQuestions,
		Recording:        m.video.Recording(),
		Loading:          m.st.loading,
		FeedbackVisible:  m.st.feedbackVisible,
		RemainingSeconds: m.st.remaining,
		TabSwitches:      m.monitor.Switches(),
		Notification:     m.st.notification,
		Feedback:         m.st.feedback,
		FinalResult:      m.st.finalResult,
		Progress:         m.st.progress,
	}
	if q, err := m.session.QuestionAt(m.st.index); err == nil {
		snap.Question = q
	}

	m.snapMu.Lock()
	m.snap = snap
	m.snapMu.Unlock()
}
