package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError_CollectsFirstReason(t *testing.T) {
	v := &ValidationError{}
	v.Add("email", "is required")
	v.Add("email", "must be valid")
	v.Add("password", "too short")

	require.False(t, v.Empty())
	assert.Equal(t, "is required", v.Fields["email"])
	assert.Equal(t, "validation error: email: is required; password: too short", v.Error())
}

func TestValidationError_OrNil(t *testing.T) {
	var v *ValidationError
	assert.True(t, v.Empty())
	assert.NoError(t, (&ValidationError{}).OrNil())

	err := NewValidationError("username", "is required").OrNil()
	require.Error(t, err)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, map[string]string{"username": "is required"}, ve.Fields)
}
