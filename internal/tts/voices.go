package tts

import (
	"strings"
)

// SelectVoice picks a voice from the available set by best-effort
// preference: each preferred substring is tried in order against
// lower-cased voice names and ids, first hit wins. Voices matching an
// avoid substring are skipped during preference search but still count
// for the final first-available fallback. Returns "" when no voices
// exist at all; the caller treats that as a silent no-op.
func SelectVoice(voices []Voice, preferred, avoid []string) string {
	if len(voices) == 0 {
		return ""
	}

	avoided := func(v Voice) bool {
		name := strings.ToLower(v.Name + " " + v.ID)
		for _, a := range avoid {
			if a != "" && strings.Contains(name, strings.ToLower(a)) {
				return true
			}
		}
		return false
	}

	for _, want := range preferred {
		want = strings.ToLower(want)
		if want == "" {
			continue
		}
		for _, v := range voices {
			if avoided(v) {
				continue
			}
			name := strings.ToLower(v.Name + " " + v.ID)
			if strings.Contains(name, want) {
				return v.ID
			}
		}
	}

	// Secondary preference: any non-avoided voice.
	for _, v := range voices {
		if !avoided(v) {
			return v.ID
		}
	}

	// Fall back to the first available voice.
	return voices[0].ID
}
