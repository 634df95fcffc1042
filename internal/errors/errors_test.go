package errors

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	err := New("run not found").WithOperation("GetRun").WithComponent("storage")

	assert.Equal(t, "run not found: operation=GetRun, component=storage", err.Error())
	assert.NotEmpty(t, err.StackTrace())
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, "ignored"))

	err := Wrap(io.ErrUnexpectedEOF, "decoding run request")
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "decoding run request")
	assert.True(t, Is(err, io.ErrUnexpectedEOF))

	var target *Error
	assert.True(t, As(err, &target))
	assert.Equal(t, io.ErrUnexpectedEOF, Unwrap(err))
}

func TestWrapf(t *testing.T) {
	err := Wrapf(io.EOF, "reading run %q", "abc")
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), `reading run "abc"`)
	assert.True(t, Is(err, io.EOF))
}
