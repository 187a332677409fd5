package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyStatus(t *testing.T) {
	assert.Equal(t, ErrValidation, ClassifyStatus(400))
	assert.Equal(t, ErrValidation, ClassifyStatus(422))
	assert.Equal(t, ErrUnauthorized, ClassifyStatus(401))
	assert.Equal(t, ErrForbidden, ClassifyStatus(403))
	assert.Equal(t, ErrNotFound, ClassifyStatus(404))
	assert.Equal(t, ErrUnavailable, ClassifyStatus(429))
	assert.Equal(t, ErrUnavailable, ClassifyStatus(500))
	assert.Equal(t, ErrUnavailable, ClassifyStatus(503))
	assert.Nil(t, ClassifyStatus(200))
	assert.Nil(t, ClassifyStatus(418))
}

func TestAPIError(t *testing.T) {
	err := error(&APIError{Status: 403, Message: "Access denied"})

	assert.True(t, errors.Is(err, ErrForbidden))
	assert.False(t, errors.Is(err, ErrUnauthorized))
	assert.Equal(t, "api error: status 403: Access denied", err.Error())
	assert.Equal(t, "api error: status 500", (&APIError{Status: 500}).Error())
}
