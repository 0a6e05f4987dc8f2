package stt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPhrases = []string{
	"hey orion",
	"talk to me orion",
	"daddy's home orion",
	"orion",
}

func TestWakeMatcherBarePhrase(t *testing.T) {
	m := NewWakeMatcher(testPhrases)

	match := m.Match("hey orion")
	require.NotNil(t, match)
	assert.Equal(t, "hey orion", match.Phrase)
	assert.Equal(t, "", match.Command)
}

func TestWakeMatcherInlineCommand(t *testing.T) {
	m := NewWakeMatcher(testPhrases)

	match := m.Match("Hey Orion, set a timer for 10 seconds.")
	require.NotNil(t, match)
	assert.Equal(t, "hey orion", match.Phrase)
	assert.Equal(t, "set a timer for 10 seconds", match.Command)
}

func TestWakeMatcherLongerPhraseWins(t *testing.T) {
	// "hey orion" also contains "orion"; list order decides.
	m := NewWakeMatcher(testPhrases)

	match := m.Match("talk to me orion what time is it")
	require.NotNil(t, match)
	assert.Equal(t, "talk to me orion", match.Phrase)
	assert.Equal(t, "what time is it", match.Command)
}

func TestWakeMatcherContainment(t *testing.T) {
	m := NewWakeMatcher(testPhrases)

	// Phrase buried mid-transcript still matches.
	match := m.Match("um hey orion what's the date")
	require.NotNil(t, match)
	assert.Equal(t, "hey orion", match.Phrase)
	assert.Equal(t, "what's the date", match.Command)
}

func TestWakeMatcherNoMatch(t *testing.T) {
	m := NewWakeMatcher(testPhrases)

	assert.Nil(t, m.Match("set a timer for 5 minutes"))
	assert.Nil(t, m.Match(""))
	assert.Nil(t, m.Match("thank you."))
}

func TestWakeMatcherSetPhrases(t *testing.T) {
	m := NewWakeMatcher(testPhrases)
	m.SetPhrases([]string{"  Computer ", ""})

	assert.Equal(t, []string{"computer"}, m.Phrases())
	assert.Nil(t, m.Match("hey orion"))
	require.NotNil(t, m.Match("computer lights on"))
}

func TestNormalizeTranscript(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Hello There!  ", "hello there"},
		{"Set a timer for 5 minutes.", "set a timer for 5 minutes"},
		{"Thank you.", ""},
		{"you", ""},
		{"[MUSIC]", ""},
		{"...", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeTranscript(tt.in), "input %q", tt.in)
	}
}
