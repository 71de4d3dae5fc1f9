package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapKeepsCauseAsDetail(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(KindPersistenceFailure, "Failed to save application", cause)

	assert.Equal(t, "Failed to save application: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindPersistenceFailure, KindOf(err))
}

func TestKindOfFollowsWrappedChain(t *testing.T) {
	inner := AccessDenied("admins only")
	outer := fmt.Errorf("listing applications: %w", inner)

	assert.True(t, Is(outer, KindAccessDenied))
	assert.False(t, Is(outer, KindNotFound))

	appErr, ok := As(outer)
	require.True(t, ok)
	assert.Equal(t, "admins only", appErr.Message)
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(errors.New("boom")))
	assert.False(t, Is(nil, KindValidation))
}
