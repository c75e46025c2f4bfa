package entity

import "fmt"

// CaptureMode selects which answer capture variant is active for the
// current question.
type CaptureMode string

const (
	CaptureModeVideo CaptureMode = "video"
	CaptureModeText  CaptureMode = "text"
)

func (m *CaptureMode) Validate() error {
	switch *m {
	case CaptureModeVideo, CaptureModeText:
		return nil
	default:
		return fmt.Errorf("unknown capture mode: %s", *m)
	}
}

// RuntimePhase is the state-machine phase of one interview session.
type RuntimePhase string

const (
	PhaseInitializing    RuntimePhase = "INITIALIZING"
	PhaseAwaitingAnswer  RuntimePhase = "AWAITING_ANSWER"
	PhaseSubmitting      RuntimePhase = "SUBMITTING"
	PhaseShowingFeedback RuntimePhase = "SHOWING_FEEDBACK"
	PhaseCompleted       RuntimePhase = "COMPLETED"
)

// SubmitTrigger tells the capture variant what forced the submission.
// Timeout-triggered text submissions with an empty transcript become a
// silent skip instead of an error.
type SubmitTrigger string

const (
	TriggerManual  SubmitTrigger = "manual"
	TriggerTimeout SubmitTrigger = "timeout"
)

// Session identifies one interview attempt. Created once via the
// evaluation collaborator at bootstrap, immutable afterwards.
type Session struct {
	SessionID      string     `json:"session_id"`
	InterviewID    string     `json:"interview_id"`
	Domain         string     `json:"domain"`
	Level          string     `json:"level"`
	Questions      []Question `json:"questions"`
	TotalQuestions int        `json:"total_questions"`
}

// QuestionAt returns the question at the given index.
func (s *Session) QuestionAt(index int) (*Question, error) {
	if index < 0 || index >= len(s.Questions) {
		return nil, fmt.Errorf("%w: index %d of %d", ErrQuestionNotFound, index, len(s.Questions))
	}
	return &s.Questions[index], nil
}

// Question is a single interview prompt. Read-only, indexed by position.
type Question struct {
	Prompt     string  `json:"q"`
	Category   string  `json:"category"`
	Difficulty string  `json:"difficulty"`
	Weight     float64 `json:"weight"`
}

// AnswerPayload is the normalized unit submitted per question: a
// transcript (possibly empty) plus optional still image and audio clip.
// For video answers both image and audio must be present.
type AnswerPayload struct {
	Transcript string
	Image      []byte
	Audio      []byte
	// AudioFormat is the sniffed container format of Audio ("wav",
	// "webm", ...). Used to name the uploaded file.
	AudioFormat string
}

// HasMedia reports whether the payload carries both image and audio.
func (p *AnswerPayload) HasMedia() bool {
	return p != nil && len(p.Image) > 0 && len(p.Audio) > 0
}
