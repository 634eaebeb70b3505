package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	t.Run("happy path - direct app error", func(t *testing.T) {
		err := NotFound("user not found")
		assert.Equal(t, CodeNotFound, CodeOf(err))
	})

	t.Run("happy path - wrapped app error keeps its code", func(t *testing.T) {
		err := fmt.Errorf("loading profile: %w", Forbidden("not a participant"))
		assert.Equal(t, CodePermissionDenied, CodeOf(err))
		assert.True(t, HasCode(err, CodePermissionDenied))
	})

	t.Run("happy path - plain errors map to unknown", func(t *testing.T) {
		assert.Equal(t, CodeUnknown, CodeOf(stderrors.New("boom")))
	})
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(CodeInternal, "storage failure", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "storage failure")
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, CodeInternal, CodeOf(err))
}
