package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsInnerCode(t *testing.T) {
	inner := ValidationError("owner is required")
	wrapped := Wrap(inner, "promote failed")

	assert.Equal(t, CodeValidationError, GetCode(wrapped))
	assert.True(t, IsValidation(wrapped))
	assert.Equal(t, "promote failed: owner is required", wrapped.Error())
}

func TestWrapPlainErrorIsInternal(t *testing.T) {
	wrapped := Wrap(stderrors.New("boom"), "store write")
	assert.Equal(t, CodeInternalError, GetCode(wrapped))
	assert.Nil(t, Wrap(nil, "ignored"))
}

func TestCodeChecksWalkChain(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := fmt.Errorf("finalize: %w", ExternalServiceError("announcement", cause))

	assert.True(t, IsExternal(err))
	assert.False(t, IsValidation(err))
	assert.ErrorIs(t, err, cause)
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name  string
		err   *AppError
		code  string
		check func(error) bool
	}{
		{"validation", Validationf("rice_reach %d out of range", 11), CodeValidationError, IsValidation},
		{"duplicate", DuplicateEscalation("e1"), CodeDuplicateEscalation, IsDuplicateEscalation},
		{"not found", New(CodeNotFound, "initiative x not found"), CodeNotFound, IsNotFound},
		{"external", ExternalServiceError("store", stderrors.New("down")), CodeExternalService, IsExternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.True(t, tt.check(tt.err))
			assert.True(t, IsAppError(tt.err))
		})
	}
}
