package errors

import (
	"database/sql"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedError(t *testing.T) {
	err := Clone(ErrNotFound, "plan not found")
	got := FromError(err)
	assert.Equal(t, "NOT_FOUND", got.Code)
	assert.Equal(t, "plan not found", got.Message)
	assert.Equal(t, "resource not found", ErrNotFound.Message)
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	got := FromError(sql.ErrConnDone)
	assert.Equal(t, http.StatusInternalServerError, got.Status)
	assert.True(t, errors.Is(got, sql.ErrConnDone))
}

func TestWrapMessage(t *testing.T) {
	err := Wrap(errors.New("boom"), ErrInternal.Code, ErrInternal.Status, "failed to load catalog")
	assert.Equal(t, "failed to load catalog: boom", err.Error())
	assert.Nil(t, FromError(nil))
}
