package validator

import (
	"fmt"
	"unicode/utf8"

	"github.com/mockmate/interview-runtime/internal/entity"
)

const maxTranscriptLength = 20000

var knownLevels = map[string]struct{}{
	"all":    {},
	"easy":   {},
	"medium": {},
	"hard":   {},
}

// Validator validates control API requests.
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// ValidateStartSession validates StartSessionRequest
func (v *Validator) ValidateStartSession(req *entity.StartSessionRequest) error {
	if req.Domain == "" {
		return fmt.Errorf("%w: domain", entity.ErrMissingField)
	}

	if req.Level != "" {
		if _, ok := knownLevels[req.Level]; !ok {
			return fmt.Errorf("%w: level '%s' (expected all, easy, medium or hard)", entity.ErrInvalidParameter, req.Level)
		}
	}

	return nil
}

// ValidateSetMode validates a capture mode toggle
func (v *Validator) ValidateSetMode(req *entity.SetModeRequest) error {
	if req.Mode == "" {
		return fmt.Errorf("%w: mode", entity.ErrMissingField)
	}
	return req.Mode.Validate()
}

// ValidateSetText validates a transcript buffer update
func (v *Validator) ValidateSetText(req *entity.SetTextRequest) error {
	if utf8.RuneCountInString(req.Text) > maxTranscriptLength {
		return fmt.Errorf("%w: text exceeds %d characters", entity.ErrInvalidParameter, maxTranscriptLength)
	}
	return nil
}
