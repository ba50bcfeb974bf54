package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewNetworkUnreachableError(t *testing.T) {
	cause := stderrors.New("dial tcp: connection refused")
	err := NewNetworkUnreachableError(cause)

	assert.Equal(t, ErrCodeNetworkUnreachable, err.Code)
	assert.Equal(t, MsgServerUnavailable, err.Message)
	assert.Contains(t, err.Details, "connection refused")
	assert.True(t, err.Retryable)
	assert.False(t, err.Timestamp.IsZero())
}

func TestNewServerRejectedError(t *testing.T) {
	err := NewServerRejectedError("Credenciais inválidas", 400)

	assert.Equal(t, ErrCodeServerRejected, err.Code)
	assert.Equal(t, "Credenciais inválidas", err.Message)
	assert.False(t, err.Retryable)
}

func TestStandardError_Error(t *testing.T) {
	err := NewValidationFailedError("email", "Por favor, insira um email válido")
	assert.Equal(t, "StandardError[VALIDATION_FAILED]: Por favor, insira um email válido", err.Error())
}

func TestIsNetworkUnreachable(t *testing.T) {
	assert.True(t, IsNetworkUnreachable(NewNetworkUnreachableError(stderrors.New("timeout"))))
	assert.False(t, IsNetworkUnreachable(NewServerRejectedError("nope", 400)))
	assert.False(t, IsNetworkUnreachable(stderrors.New("plain error")))
	assert.False(t, IsNetworkUnreachable(nil))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(NewSessionStoreError(stderrors.New("redis down"))))
	assert.True(t, IsRetryable(NewCacheUnavailableError(stderrors.New("redis down"))))
	assert.False(t, IsRetryable(NewAccessDeniedError("role: client")))
	assert.False(t, IsRetryable(stderrors.New("plain error")))
}

// Messages from structured errors pass through; anything else collapses into
// the generic unavailable message shown to the user.
func TestUserMessage(t *testing.T) {
	assert.Equal(t, "Credenciais inválidas", UserMessage(NewServerRejectedError("Credenciais inválidas", 400)))
	assert.Equal(t, MsgServerUnavailable, UserMessage(stderrors.New("dial tcp: refused")))
	assert.Equal(t, MsgServerUnavailable, UserMessage(NewNetworkUnreachableError(stderrors.New("timeout"))))
}

func TestNewReviewTransitionError(t *testing.T) {
	err := NewReviewTransitionError("viewing", "enable_edit_prompt")

	assert.Equal(t, ErrCodeReviewTransition, err.Code)
	assert.Contains(t, err.Details, "from: viewing")
	assert.Contains(t, err.Details, "to: enable_edit_prompt")
	assert.False(t, err.Retryable)
}

func TestGetErrorCategory(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		category string
	}{
		{ErrCodeNetworkUnreachable, "TRANSPORT"},
		{ErrCodeAuthentication, "AUTH/SESSION"},
		{ErrCodeAccessDenied, "AUTH/SESSION"},
		{ErrCodeSessionExpired, "AUTH/SESSION"},
		{ErrCodeValidationFailed, "VALIDATION"},
		{ErrCodeCacheUnavailable, "CACHE"},
		{ErrCodeNotificationSendFailed, "NOTIFICATION"},
		{ErrCodeReviewTransition, "WORKFLOW"},
		{ErrCodeServerRejected, "OTHER"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.category, GetErrorCategory(tt.code), string(tt.code))
	}
}
