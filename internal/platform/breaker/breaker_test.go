package breaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew_OpensAfterFailureRatio(t *testing.T) {
	cb := New[string]("test-open", Settings{MinRequests: 3, FailureRatio: 0.5, OpenTimeout: time.Minute})
	boom := errors.New("boom")

	for i := 0; i < 3; i++ {
		_, err := cb.Execute(func() (string, error) { return "", boom })
		assert.ErrorIs(t, err, boom)
	}

	_, err := cb.Execute(func() (string, error) { return "unreachable", nil })
	assert.True(t, IsOpen(err))
}

func TestNew_CancellationIsNotAFailure(t *testing.T) {
	cb := New[int]("test-cancel", Settings{MinRequests: 1, FailureRatio: 0.1})

	for i := 0; i < 5; i++ {
		_, _ = cb.Execute(func() (int, error) { return 0, context.Canceled })
	}

	v, err := cb.Execute(func() (int, error) { return 7, nil })
	assert.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestIsOpen(t *testing.T) {
	assert.False(t, IsOpen(nil))
	assert.False(t, IsOpen(errors.New("other")))
}
