package capture

import (
	"strings"
	"sync"

	"github.com/mockmate/interview-runtime/internal/entity"
)

// TextCapture holds the in-progress transcript buffer for text mode.
type TextCapture struct {
	mu  sync.Mutex
	buf string
}

func NewTextCapture() *TextCapture {
	return &TextCapture{}
}

// SetText replaces the transcript buffer.
func (tc *TextCapture) SetText(value string) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.buf = value
}

// Text returns the current buffer.
func (tc *TextCapture) Text() string {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return tc.buf
}

// Reset clears the buffer for the next question.
func (tc *TextCapture) Reset() {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.buf = ""
}

// Package builds the payload from the buffer. An empty buffer on a
// timeout-triggered submission yields a nil payload and no error: the
// designated EmptyAnswer signal that lets the state machine advance
// without contacting the evaluator. An empty buffer on a manual submit
// is a user-correctable error and nothing is sent.
func (tc *TextCapture) Package(trigger entity.SubmitTrigger) (*entity.AnswerPayload, error) {
	tc.mu.Lock()
	transcript := strings.TrimSpace(tc.buf)
	tc.mu.Unlock()

	if transcript == "" {
		if trigger == entity.TriggerTimeout {
			return nil, nil
		}
		return nil, entity.ErrEmptyInput
	}

	return &entity.AnswerPayload{Transcript: transcript}, nil
}
