package entity

// StartInterviewRequest is the bootstrap request to the evaluation
// collaborator.
type StartInterviewRequest struct {
	Domain string `json:"domain"`
	Level  string `json:"level"`
}

// StartInterviewResponse is the evaluation collaborator's bootstrap
// response carrying the session and its question set.
type StartInterviewResponse struct {
	SessionID      string     `json:"session_id"`
	Domain         string     `json:"domain"`
	Level          string     `json:"level"`
	TotalQuestions int        `json:"total_questions"`
	Questions      []Question `json:"questions"`
}

// EvaluateAnswerRequest describes one multipart evaluation call.
type EvaluateAnswerRequest struct {
	SessionID     string
	QuestionIndex int
	Payload       *AnswerPayload
	TabSwitches   int
}

// CurrentScore is the per-question evaluation result. Held only until
// the next question begins.
type CurrentScore struct {
	Question          string             `json:"question"`
	QuestionIndex     int                `json:"question_index"`
	Category          string             `json:"category"`
	Difficulty        string             `json:"difficulty"`
	Weight            float64            `json:"weight"`
	Transcript        string             `json:"transcript"`
	OverallMarks      float64            `json:"overall_marks"`
	OverallPercentage float64            `json:"overall_percentage"`
	Emotion           string             `json:"emotion"`
	Sentiment         string             `json:"sentiment"`
	Feedback          string             `json:"feedback"`
	Breakdown         map[string]float64 `json:"breakdown"`
	SkillScores       map[string]float64 `json:"skill_scores"`
}

// FinalResult is the whole-session summary returned with the last
// evaluation response.
type FinalResult struct {
	TotalMarks      float64            `json:"total_marks"`
	AverageScore    float64            `json:"average_score"`
	Percentage      float64            `json:"percentage"`
	TotalQuestions  int                `json:"total_questions"`
	MaxPossible     int                `json:"max_possible"`
	SkillAverages   map[string]float64 `json:"skill_averages"`
	Strengths       []string           `json:"strengths"`
	Weaknesses      []string           `json:"weaknesses"`
	DominantEmotion string             `json:"dominant_emotion"`
	Grade           string             `json:"grade"`
}

// Progress reports how far the session has advanced.
type Progress struct {
	Current    int     `json:"current"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// EvaluationResult is the evaluation collaborator's response to one
// submitted answer.
type EvaluationResult struct {
	Finished     bool          `json:"finished"`
	CurrentScore *CurrentScore `json:"current_score"`
	FinalResult  *FinalResult  `json:"final_result,omitempty"`
	Progress     *Progress     `json:"progress,omitempty"`
}

// SaveResultRequest is forwarded to the persistence collaborator after
// a successful evaluation.
type SaveResultRequest struct {
	InterviewID  string        `json:"interview_id"`
	SessionID    string        `json:"session_id"`
	CurrentScore *CurrentScore `json:"current_score"`
	Finished     bool          `json:"finished"`
	FinalResult  *FinalResult  `json:"final_result,omitempty"`
	TabSwitches  int           `json:"tab_switches"`
}

// DomainInfo describes one available interview domain.
type DomainInfo struct {
	Key            string   `json:"key"`
	Name           string   `json:"name"`
	TotalQuestions int      `json:"total_questions"`
	Rounds         []string `json:"rounds"`
}

// DomainsResponse is the evaluation collaborator's domain catalog.
type DomainsResponse struct {
	Domains []DomainInfo `json:"domains"`
}
