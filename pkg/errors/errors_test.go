package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorWrapsUnknown(t *testing.T) {
	err := FromError(errors.New("boom"))
	assert.Equal(t, ErrInternal.Code, err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.EqualError(t, err, "internal server error: boom")
}

func TestIsMatchesByCode(t *testing.T) {
	wrapped := Wrap(errors.New("raw"), ErrCorruptCollection.Code, ErrCorruptCollection.Status, "tasks unreadable")
	assert.True(t, Is(wrapped, ErrCorruptCollection))
	assert.True(t, Is(Clone(ErrNotFound, "task not found"), ErrNotFound))
	assert.False(t, Is(wrapped, ErrNotFound))
	assert.False(t, Is(nil, ErrNotFound))
}
