package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(CodeFAQSaveFailed, "failed to persist corpus", cause)

	require.ErrorIs(t, err, cause)
	require.Equal(t, "failed to persist corpus: disk full", err.Error())
	require.True(t, IsCode(err, CodeFAQSaveFailed))
	require.False(t, IsCode(err, CodeInvalidInput))
}

func TestCodeOfWrappedChain(t *testing.T) {
	err := fmt.Errorf("handler: %w", Wrap(CodeInvalidInput, "question cannot be empty", nil))
	require.Equal(t, CodeInvalidInput, CodeOf(err))
	require.Equal(t, "", CodeOf(errors.New("plain")))
	require.False(t, IsCode(errors.New("plain"), ""))
}
