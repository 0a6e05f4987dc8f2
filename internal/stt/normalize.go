package stt

import (
	"strings"
)

// noiseArtifacts are transcripts Whisper is known to hallucinate on
// silence or background noise. They are discarded before matching.
var noiseArtifacts = map[string]struct{}{
	"you":                    {},
	"thank you":              {},
	"thanks for watching":    {},
	"subscribe":              {},
	"bye":                    {},
	".":                      {},
	"silence":                {},
	"[inaudible]":            {},
	"[music]":                {},
	"(speaking in japanese)": {},
}

// NormalizeTranscript lower-cases, trims, and strips trailing punctuation
// from a transcript. Known noise-only transcripts normalize to "".
func NormalizeTranscript(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = strings.Trim(s, ".!?,;: ")
	if s == "" {
		return ""
	}
	if _, noisy := noiseArtifacts[s]; noisy {
		return ""
	}
	return s
}
