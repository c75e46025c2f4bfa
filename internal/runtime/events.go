package runtime

import "github.com/mockmate/interview-runtime/internal/entity"

// The machine consumes a closed set of tagged events on a single
// dispatch goroutine. External inputs (clock, user actions, network
// outcomes, redirect timer) all arrive through this set; nothing else
// mutates runtime state.
type event interface {
	isEvent()
}

// tickEvent is one countdown decrement.
type tickEvent struct {
	remaining int
}

// expiredEvent is the countdown reaching zero: auto-submit.
type expiredEvent struct{}

// visibilityEvent is a page visibility transition.
type visibilityEvent struct {
	hidden bool
}

// submitOutcomeEvent is the submission worker reporting back.
type submitOutcomeEvent struct {
	questionIndex int
	result        *entity.EvaluationResult
	err           error
}

// redirectEvent fires after the feedback display interval of a
// finished session.
type redirectEvent struct{}

// commandEvent is a user action executed on the dispatch goroutine.
// The reply channel carries the synchronous outcome to the caller.
type commandEvent struct {
	action commandAction
	mode   entity.CaptureMode
	text   string
	reply  chan error
}

type commandAction int

const (
	actionSetMode commandAction = iota
	actionSetText
	actionStartRecording
	actionSubmit
	actionNextQuestion
)

func (tickEvent) isEvent()          {}
func (expiredEvent) isEvent()       {}
func (visibilityEvent) isEvent()    {}
func (submitOutcomeEvent) isEvent() {}
func (redirectEvent) isEvent()      {}
func (commandEvent) isEvent()       {}
