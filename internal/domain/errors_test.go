package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrNoQuotes(t *testing.T) {
	require.ErrorIs(t, ErrNoQuotes, ErrNotFound)
	assert.False(t, IsUnavailable(ErrNoQuotes))
	assert.False(t, IsValidation(ErrNoQuotes))
	assert.Equal(t, "not found: no quotes found", ErrNoQuotes.Error())
}

func TestValidationError_Message(t *testing.T) {
	assert.Equal(t,
		"validation failed for category: must be one of the supported categories",
		NewValidationErrorWithValue("category", "must be one of the supported categories", "sports").Error())
	assert.Equal(t, "validation failed: empty request", NewValidationError("", "empty request").Error())
}

func TestValidationError_KeepsValue(t *testing.T) {
	err := fmt.Errorf("choosing category: %w", NewValidationErrorWithValue("category", "unknown", "sports"))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "category", verr.Field)
	assert.Equal(t, "sports", verr.Value)
	assert.NotContains(t, verr.Error(), "sports")
}

func TestUnavailableError_Message(t *testing.T) {
	assert.Equal(t, `service "api-ninjas" unavailable: unexpected HTTP 502`,
		NewUnavailableError("api-ninjas", "unexpected HTTP 502").Error())
	assert.Equal(t, `service "api-ninjas" unavailable`, NewUnavailableError("api-ninjas", "").Error())
}

func TestErrorKinds(t *testing.T) {
	kinds := map[string]func(error) bool{
		"not found":   IsNotFound,
		"validation":  IsValidation,
		"unavailable": IsUnavailable,
	}

	tests := []struct {
		name string
		err  error
		kind string
	}{
		{"empty result", ErrNoQuotes, "not found"},
		{"wrapped empty result", fmt.Errorf("fetching life: %w", ErrNoQuotes), "not found"},
		{"bad category", NewValidationError("category", "unknown"), "validation"},
		{"upstream down", NewUnavailableError("api-ninjas", "circuit open"), "unavailable"},
		{"wrapped upstream down", fmt.Errorf("get: %w", NewUnavailableError("api-ninjas", "")), "unavailable"},
		{"plain error", errors.New("boom"), ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for kind, is := range kinds {
				assert.Equal(t, kind == tt.kind, is(tt.err), kind)
			}
		})
	}
}
