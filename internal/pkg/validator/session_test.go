package validator

import (
	"strings"
	"testing"

	"github.com/mockmate/interview-runtime/internal/entity"
	"github.com/stretchr/testify/assert"
)

func TestValidateStartSession(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name    string
		req     *entity.StartSessionRequest
		wantErr error
	}{
		{"valid with level", &entity.StartSessionRequest{Domain: "python", Level: "easy"}, nil},
		{"valid without level", &entity.StartSessionRequest{Domain: "java"}, nil},
		{"missing domain", &entity.StartSessionRequest{Level: "easy"}, entity.ErrMissingField},
		{"unknown level", &entity.StartSessionRequest{Domain: "python", Level: "expert"}, entity.ErrInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateStartSession(tt.req)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateSetMode(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.ValidateSetMode(&entity.SetModeRequest{Mode: entity.CaptureModeVideo}))
	assert.NoError(t, v.ValidateSetMode(&entity.SetModeRequest{Mode: entity.CaptureModeText}))
	assert.ErrorIs(t, v.ValidateSetMode(&entity.SetModeRequest{}), entity.ErrMissingField)
	assert.Error(t, v.ValidateSetMode(&entity.SetModeRequest{Mode: "audio"}))
}

func TestValidateSetText(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.ValidateSetText(&entity.SetTextRequest{Text: "an answer"}))
	assert.NoError(t, v.ValidateSetText(&entity.SetTextRequest{Text: ""}))

	long := strings.Repeat("a", maxTranscriptLength+1)
	assert.ErrorIs(t, v.ValidateSetText(&entity.SetTextRequest{Text: long}), entity.ErrInvalidParameter)
}
