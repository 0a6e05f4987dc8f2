package stt

import (
	"context"
	"errors"
	"net"
	"strings"
)

// Recognition error taxonomy. Every provider or recognizer failure maps
// to exactly one of these; none is fatal to the orchestration loop.
var (
	ErrNoSpeech          = errors.New("no speech detected")
	ErrDeviceUnavailable = errors.New("audio device unavailable")
	ErrPermissionDenied  = errors.New("microphone permission denied")
	ErrNetwork           = errors.New("recognition network error")
	ErrRecognition       = errors.New("recognition failed")
)

// Classify maps an arbitrary error to the taxonomy.
func Classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNoSpeech),
		errors.Is(err, ErrDeviceUnavailable),
		errors.Is(err, ErrPermissionDenied),
		errors.Is(err, ErrNetwork):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return ErrNetwork
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return ErrNetwork
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "permission"):
		return ErrPermissionDenied
	case strings.Contains(msg, "device"), strings.Contains(msg, "microphone"):
		return ErrDeviceUnavailable
	case strings.Contains(msg, "connection"), strings.Contains(msg, "timeout"):
		return ErrNetwork
	}
	return ErrRecognition
}

// UserMessage returns the user-facing message for a classified error.
func UserMessage(err error) string {
	switch Classify(err) {
	case nil:
		return ""
	case ErrNoSpeech:
		return "I didn't catch that, Commander. Please try again."
	case ErrDeviceUnavailable:
		return "No microphone detected, Commander. Check your audio device."
	case ErrPermissionDenied:
		return "Microphone access is blocked, Commander. Grant permission and try again."
	case ErrNetwork:
		return "Speech recognition is unreachable right now, Commander."
	default:
		return "Something went wrong with speech recognition, Commander."
	}
}

// Transient reports whether wake listening should be retried
// automatically after the error.
func Transient(err error) bool {
	switch Classify(err) {
	case ErrNoSpeech, ErrNetwork, ErrRecognition:
		return true
	default:
		return false
	}
}
