package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainErrorKeepsWrappedDomainError(t *testing.T) {
	base := NewNotFound("bug", map[string]any{"ticket_id": "B-9"})
	wrapped := fmt.Errorf("lookup: %w", base)

	got := ToDomainError(wrapped)
	require.NotNil(t, got)
	assert.Equal(t, CodeNotFound, got.Code)
	assert.Equal(t, http.StatusNotFound, got.HTTPStatus)
	assert.Equal(t, "B-9", got.Details["ticket_id"])
}

func TestToDomainErrorMapsUnknownToInternal(t *testing.T) {
	got := ToDomainError(errors.New("boom"))
	require.NotNil(t, got)
	assert.Equal(t, CodeInternal, got.Code)
	assert.Equal(t, http.StatusInternalServerError, got.HTTPStatus)
	assert.Nil(t, ToDomainError(nil))
}

func TestPersistenceErrorUnwrapsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewPersistenceError("reopen", cause)

	assert.True(t, HasCode(err, CodePersistence))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestHasCode(t *testing.T) {
	assert.True(t, HasCode(NewValidationError("bad", nil), CodeValidation))
	assert.True(t, HasCode(NewSanitizationError("bad", nil), CodeSanitization))
	assert.False(t, HasCode(NewValidationError("bad", nil), CodeNotFound))
	assert.False(t, HasCode(errors.New("plain"), CodeValidation))
}
