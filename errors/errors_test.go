package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	tts := map[string]struct {
		err     error
		code    int
		message string
	}{
		"plain": {
			err:     New("boom"),
			code:    DefaultCode,
			message: "boom",
		},
		"not found": {
			err:     New("paper 1234.5678 not found", NotFound()),
			code:    http.StatusNotFound,
			message: "paper 1234.5678 not found",
		},
		"with cause": {
			err:     New("could not reach arxiv", BadGateway(), WithCause(fmt.Errorf("dial tcp: timeout"))),
			code:    http.StatusBadGateway,
			message: "could not reach arxiv",
		},
	}

	for name, tt := range tts {
		appErr, ok := tt.err.(Error)
		assert.True(t, ok, name)
		assert.Equal(t, tt.code, appErr.Code(), name)
		assert.Equal(t, tt.message, appErr.Message(), name)
	}
}

func TestWithCause(t *testing.T) {
	cause := fmt.Errorf("file does not exist")
	err := New("upload missing", NotFound(), WithCause(cause))

	appErr := err.(Error)
	assert.Equal(t, "upload missing: file does not exist", err.Error())
	assert.EqualError(t, appErr.Cause(), "file does not exist")
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, CodeOf(New("gone", NotFound())))
	assert.Equal(t, DefaultCode, CodeOf(fmt.Errorf("plain")))
}
