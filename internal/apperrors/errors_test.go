package apperrors

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestWrappedSentinelsMatch(t *testing.T) {
	err := errors.Wrap(NotFound("issue abc"), "cast vote")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrInvalidInput))
}

func TestUpstream(t *testing.T) {
	assert.NoError(t, Upstream(nil, "ignored"))

	cause := errors.New("connection refused")
	err := Upstream(cause, "mongo find issue")
	assert.True(t, errors.Is(err, ErrUpstream))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "mongo find issue: connection refused", err.Error())
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "title is required", Message(Invalid("title is required")))
	assert.Equal(t, "issue abc", Message(NotFound("issue abc")))
	assert.Equal(t, "boom", Message(errors.New("boom")))
}
