package errors

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusCode(t *testing.T) {
	assert.Equal(t, StatusBadRequest, HTTPStatusCode(NewInvalidRequestError("bad", nil)))
	assert.Equal(t, StatusInternalServerError, HTTPStatusCode(NewDatabaseError("db", nil)))
	assert.Equal(t, StatusInternalServerError, HTTPStatusCode(NewNotificationError("notify", nil)))
	assert.Equal(t, StatusServiceUnavailable, HTTPStatusCode(NewUnavailableError("down", nil)))
	assert.Equal(t, StatusInternalServerError, HTTPStatusCode(fmt.Errorf("plain")))
	assert.Equal(t, StatusInternalServerError, HTTPStatusCode(nil))
}

func TestDetails(t *testing.T) {
	cause := fmt.Errorf("connection refused")

	assert.Equal(t, "connection refused", Details(NewDatabaseError("unable to save", cause)))
	assert.Equal(t, "", Details(NewDatabaseError("unable to save", nil)))
	assert.Equal(t, "boom", Details(fmt.Errorf("boom")))
	assert.Equal(t, "", Details(nil))

	wrapped := fmt.Errorf("outer: %w", NewDatabaseError("unable to save", cause))
	assert.Equal(t, "connection refused", Details(wrapped))
}

func TestGetHumanReadableMessage_DoesNotLeakCause(t *testing.T) {
	err := NewDatabaseError("unable to save", fmt.Errorf("pq: password authentication failed"))
	assert.Equal(t, "unable to save", GetHumanReadableMessage(err))
	assert.Equal(t, "An unexpected error occurred", GetHumanReadableMessage(fmt.Errorf("secret")))
}

type signup struct {
	Email string `json:"email" validate:"required,email"`
}

func TestFormatValidationErrors_UsesJSONFieldNames(t *testing.T) {
	err := validator.New().Struct(&signup{Email: "nope"})

	out := FormatValidationErrors(err, &signup{})
	if assert.Len(t, out, 1) {
		assert.Equal(t, "email", out[0].Field)
		assert.Equal(t, "Invalid email", out[0].Message)
	}
}

func TestFormatValidationErrors_TypeMismatch(t *testing.T) {
	var s signup
	err := json.Unmarshal([]byte(`{"email": 42}`), &s)

	out := FormatValidationErrors(err, &s)
	if assert.Len(t, out, 1) {
		assert.Equal(t, "email", out[0].Field)
		assert.Contains(t, out[0].Message, "Invalid type")
	}
}
