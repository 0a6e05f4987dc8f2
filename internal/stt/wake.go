package stt

import (
	"strings"
	"sync"
)

// WakeMatch is the result of testing a transcript against the configured
// wake phrases.
type WakeMatch struct {
	Phrase  string // the phrase that matched
	Command string // text after the phrase, trimmed; "" for a bare wake
}

// WakeMatcher tests final transcripts for wake phrase containment.
// Phrases are checked in their configured order; the first match wins,
// so longer phrases belong earlier in the list.
type WakeMatcher struct {
	mu      sync.RWMutex
	phrases []string
}

// NewWakeMatcher creates a matcher over the given ordered phrase list.
func NewWakeMatcher(phrases []string) *WakeMatcher {
	m := &WakeMatcher{}
	m.SetPhrases(phrases)
	return m
}

// SetPhrases replaces the phrase list. Used by config hot reload.
func (m *WakeMatcher) SetPhrases(phrases []string) {
	normalized := make([]string, 0, len(phrases))
	for _, p := range phrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			normalized = append(normalized, p)
		}
	}

	m.mu.Lock()
	m.phrases = normalized
	m.mu.Unlock()
}

// Phrases returns a copy of the configured phrase list.
func (m *WakeMatcher) Phrases() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.phrases...)
}

// Match tests a final transcript. Returns nil when no phrase is
// contained in it.
func (m *WakeMatcher) Match(transcript string) *WakeMatch {
	text := NormalizeTranscript(transcript)
	if text == "" {
		return nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, phrase := range m.phrases {
		idx := strings.Index(text, phrase)
		if idx < 0 {
			continue
		}
		return &WakeMatch{
			Phrase:  phrase,
			Command: strings.TrimLeft(text[idx+len(phrase):], ",.;:! "),
		}
	}
	return nil
}
