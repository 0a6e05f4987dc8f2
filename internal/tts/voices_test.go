package tts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	preferred = []string{"onyx", "male", "man", "david", "mark", "george", "james", "richard"}
	avoided   = []string{"female", "woman", "zira", "hazel", "susan", "samantha"}
)

func TestSelectVoicePreferredOrder(t *testing.T) {
	voices := []Voice{
		{ID: "nova", Name: "Nova"},
		{ID: "david", Name: "Microsoft David"},
		{ID: "onyx", Name: "Onyx"},
	}
	// "onyx" outranks "david" regardless of list position.
	assert.Equal(t, "onyx", SelectVoice(voices, preferred, avoided))
}

func TestSelectVoiceSkipsAvoided(t *testing.T) {
	voices := []Voice{
		{ID: "zira", Name: "Microsoft Zira Male"}, // "male" substring, but avoided by name
		{ID: "mark", Name: "Microsoft Mark"},
	}
	assert.Equal(t, "mark", SelectVoice(voices, preferred, avoided))
}

func TestSelectVoiceFallbackNonAvoided(t *testing.T) {
	voices := []Voice{
		{ID: "samantha", Name: "Samantha"},
		{ID: "alloy", Name: "Alloy"},
	}
	// Nothing preferred matches; first non-avoided voice wins.
	assert.Equal(t, "alloy", SelectVoice(voices, preferred, avoided))
}

func TestSelectVoiceLastResort(t *testing.T) {
	voices := []Voice{
		{ID: "zira", Name: "Microsoft Zira"},
	}
	// Everything is avoided; better any voice than none.
	assert.Equal(t, "zira", SelectVoice(voices, preferred, avoided))
}

func TestSelectVoiceEmpty(t *testing.T) {
	assert.Equal(t, "", SelectVoice(nil, preferred, avoided))
}
