package errors

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", Clone(ErrValidation, "bad theme"))

	got := FromError(wrapped)
	assert.Equal(t, ErrValidation.Code, got.Code)
	assert.Equal(t, "bad theme", got.Message)
	assert.Equal(t, http.StatusBadRequest, got.Status)
}

func TestFromErrorWrapsUnknownAsInternal(t *testing.T) {
	got := FromError(sql.ErrConnDone)
	assert.Equal(t, ErrInternal.Code, got.Code)
	assert.ErrorIs(t, got, sql.ErrConnDone)
	assert.Nil(t, FromError(nil))
}

func TestIsMatchesByCode(t *testing.T) {
	assert.True(t, errors.Is(Clone(ErrCacheMiss, "key gone"), ErrCacheMiss))
	assert.False(t, errors.Is(ErrNotFound, ErrCacheMiss))
}
