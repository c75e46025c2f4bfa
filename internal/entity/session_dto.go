package entity

// StartSessionRequest creates a new interview session.
type StartSessionRequest struct {
	Domain string `json:"domain"`
	Level  string `json:"level"`
}

// SetModeRequest toggles the active capture variant.
type SetModeRequest struct {
	Mode CaptureMode `json:"mode"`
}

// SetTextRequest updates the in-progress transcript buffer.
type SetTextRequest struct {
	Text string `json:"text"`
}

// VisibilityRequest reports a page visibility transition.
type VisibilityRequest struct {
	Hidden bool `json:"hidden"`
}

// StateSnapshot is the read-only view of one session's runtime state
// returned by the control API.
type StateSnapshot struct {
	SessionID        string        `json:"session_id"`
	InterviewID      string        `json:"interview_id"`
	Phase            RuntimePhase  `json:"phase"`
	Mode             CaptureMode   `json:"mode"`
	QuestionIndex    int           `json:"question_index"`
	TotalQuestions   int           `json:"total_questions"`
	Question         *Question     `json:"question,omitempty"`
	Recording        bool          `json:"recording"`
	Loading          bool          `json:"loading"`
	FeedbackVisible  bool          `json:"feedback_visible"`
	RemainingSeconds int           `json:"remaining_seconds"`
	TabSwitches      int           `json:"tab_switches"`
	Notification     string        `json:"notification,omitempty"`
	Feedback         *CurrentScore `json:"feedback,omitempty"`
	FinalResult      *FinalResult  `json:"final_result,omitempty"`
	Progress         *Progress     `json:"progress,omitempty"`
}
