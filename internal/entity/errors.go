package entity

import "errors"

// Domain errors
var (
	// Bootstrap errors
	ErrInitializationFailed = errors.New("interview initialization failed")

	// Capture device errors
	ErrDeviceUnavailable = errors.New("capture device unavailable")
	ErrNoStream          = errors.New("no active media stream")
	ErrCapture           = errors.New("frame capture failed")
	ErrRecorderBusy      = errors.New("recorder is not idle")
	ErrNotRecording      = errors.New("recorder is not recording")

	// Answer errors
	ErrEmptyInput = errors.New("answer text is empty")

	// Submission errors
	ErrSubmissionFailed = errors.New("answer submission failed")

	// Session errors
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionCompleted = errors.New("session is already completed")
	ErrQuestionNotFound = errors.New("question not found")
	ErrInvalidAction    = errors.New("action is not valid in the current phase")

	// Validation errors
	ErrMissingField     = errors.New("required field is missing")
	ErrInvalidParameter = errors.New("invalid parameter")
)
