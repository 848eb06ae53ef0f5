package store_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/listenupapp/readinglist-server/internal/store"
)

func TestError(t *testing.T) {
	cause := errors.New("disk full")
	err := &store.Error{Code: http.StatusInsufficientStorage, Message: "write failed", Err: cause}

	assert.Equal(t, "write failed: disk full", err.Error())
	assert.Equal(t, http.StatusInsufficientStorage, err.HTTPCode())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "resource not found", store.ErrNotFound.Error())
}
