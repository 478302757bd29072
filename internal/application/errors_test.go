package application

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_Error(t *testing.T) {
	t.Parallel()

	var err *ValidationError
	assert.Equal(t, "", err.Error())

	empty := &ValidationError{}
	assert.Equal(t, "validation failed", empty.Error())

	withFields := &ValidationError{FieldErrors: map[string]string{"name": "name is required", "icon": "icon is invalid"}}
	assert.Equal(t, "validation failed: icon: icon is invalid; name: name is required", withFields.Error())
}

func TestValidationError_HasErrors(t *testing.T) {
	t.Parallel()

	assert.False(t, (&ValidationError{}).HasErrors())
	assert.True(t, (&ValidationError{FieldErrors: map[string]string{"field": "bad"}}).HasErrors())
	assert.NoError(t, (&ValidationError{}).orNil())
}

func TestValidationError_AddAndMerge(t *testing.T) {
	t.Parallel()

	base := &ValidationError{}
	base.add("first", "value")
	assert.Equal(t, "value", base.FieldErrors["first"])

	base.merge(&ValidationError{FieldErrors: map[string]string{"second": "another"}})
	assert.Equal(t, "another", base.FieldErrors["second"])

	base.merge(nil)
	assert.Len(t, base.FieldErrors, 2)
}

func TestValidationError_UnwrapsCause(t *testing.T) {
	t.Parallel()

	vErr := fieldError("id", "id is required")
	vErr.cause = ErrMalformedEvent

	wrapped := fmt.Errorf("ingest: %w", vErr)
	assert.True(t, errors.Is(wrapped, ErrMalformedEvent))
	assert.Equal(t, "malformed_event", ErrorKind(wrapped))
}

func TestErrorKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{ErrNotFound, "not_found"},
		{fmt.Errorf("wrap: %w", ErrSessionActive), "session_active"},
		{ErrNoActiveSession, "no_active_session"},
		{ErrSessionCompleted, "session_completed"},
		{ErrInvalidTransition, "invalid_transition"},
		{ErrReadOnlyTemplate, "read_only_template"},
		{fieldError("name", "name is required"), "validation"},
		{errors.New("boom"), "unexpected"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ErrorKind(tt.err))
	}
}
