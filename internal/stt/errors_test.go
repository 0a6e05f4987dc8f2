package stt

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	assert.Nil(t, Classify(nil))
	assert.Equal(t, ErrNoSpeech, Classify(ErrNoSpeech))
	assert.Equal(t, ErrNoSpeech, Classify(fmt.Errorf("transcribe: %w", ErrNoSpeech)))
	assert.Equal(t, ErrNetwork, Classify(context.DeadlineExceeded))
	assert.Equal(t, ErrPermissionDenied, Classify(errors.New("NotAllowedError: permission denied by user")))
	assert.Equal(t, ErrDeviceUnavailable, Classify(errors.New("requested device not found")))
	assert.Equal(t, ErrNetwork, Classify(errors.New("connection refused")))
	assert.Equal(t, ErrRecognition, Classify(errors.New("something else entirely")))
}

func TestUserMessagesDistinct(t *testing.T) {
	seen := map[string]error{}
	for _, err := range []error{ErrNoSpeech, ErrDeviceUnavailable, ErrPermissionDenied, ErrNetwork, ErrRecognition} {
		msg := UserMessage(err)
		assert.NotEmpty(t, msg)
		if prev, dup := seen[msg]; dup {
			t.Errorf("message %q shared by %v and %v", msg, prev, err)
		}
		seen[msg] = err
	}
}

func TestTransient(t *testing.T) {
	assert.True(t, Transient(ErrNoSpeech))
	assert.True(t, Transient(ErrNetwork))
	assert.True(t, Transient(ErrRecognition))
	assert.False(t, Transient(ErrPermissionDenied))
	assert.False(t, Transient(ErrDeviceUnavailable))
}
