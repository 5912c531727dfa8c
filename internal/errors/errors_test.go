package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFoundError_Creation(t *testing.T) {
	message := "order not found"
	err := NewNotFoundError(message)

	assert.NotNil(t, err)
	assert.Equal(t, message, err.Message)
	assert.Equal(t, message, err.Error())
}

func TestNotFoundError_IsNotFoundError(t *testing.T) {
	err := NewNotFoundError("test not found")

	notFoundErr, ok := IsNotFoundError(err)
	assert.True(t, ok)
	assert.NotNil(t, notFoundErr)
	assert.Equal(t, "test not found", notFoundErr.Message)
}

func TestNotFoundError_IsNotFoundError_WithOtherError(t *testing.T) {
	err := errors.New("some other error")

	notFoundErr, ok := IsNotFoundError(err)
	assert.False(t, ok)
	assert.Nil(t, notFoundErr)
}

func TestValidationError_Creation(t *testing.T) {
	message := "validation failed"
	details := []ValidationDetail{
		{Field: "needed_date", Message: "invalid date format"},
		{Field: "cn", Message: "required field"},
	}

	err := NewValidationError(message, details...)

	assert.NotNil(t, err)
	assert.Equal(t, message, err.Message)
	assert.Equal(t, message, err.Error())
	assert.Len(t, err.Details, 2)
}

func TestValidationError_IsValidationError(t *testing.T) {
	err := NewValidationError("bad input")

	ve, ok := IsValidationError(err)
	assert.True(t, ok)
	assert.NotNil(t, ve)

	ve, ok = IsValidationError(errors.New("other"))
	assert.False(t, ok)
	assert.Nil(t, ve)
}

func TestIOError_Creation(t *testing.T) {
	cause := errors.New("no such file or directory")
	err := NewIOError("backup source missing", cause)

	assert.NotNil(t, err)
	assert.Equal(t, "backup source missing", err.Message)
	assert.Contains(t, err.Error(), "backup source missing")
	assert.Contains(t, err.Error(), "no such file")
	assert.True(t, errors.Is(err, cause))
}

func TestIOError_NilCause(t *testing.T) {
	err := NewIOError("file missing", nil)

	assert.Equal(t, "file missing", err.Error())
	assert.Nil(t, err.Unwrap())
}

func TestIOError_IsIOError(t *testing.T) {
	err := NewIOError("write failed", nil)

	ioe, ok := IsIOError(err)
	assert.True(t, ok)
	assert.NotNil(t, ioe)

	ioe, ok = IsIOError(errors.New("other"))
	assert.False(t, ok)
	assert.Nil(t, ioe)
}

func TestInternalError_Creation(t *testing.T) {
	cause := errors.New("database error")
	err := NewInternalError("failed to query database", cause)

	assert.NotNil(t, err)
	assert.Equal(t, "failed to query database", err.Message)
	assert.Equal(t, cause, err.Cause)
	assert.Contains(t, err.Error(), "failed to query database")
	assert.Contains(t, err.Error(), "database error")
}

func TestInternalError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := NewInternalError("wrapper", cause)

	assert.Equal(t, cause, err.Unwrap())
	assert.True(t, errors.Is(err, cause))
}
