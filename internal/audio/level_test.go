package audio

import (
	"encoding/binary"
	"testing"
)

// pcm16 packs int16 samples little-endian.
func pcm16(samples ...int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

func TestPeakToPeak16Bit(t *testing.T) {
	// Rail-to-rail square wave reads ~1.0.
	full := peakToPeak(pcm16(-32768, 32767, -32768, 32767), 16)
	if full < 0.99 || full > 1.0 {
		t.Errorf("full-scale level = %v, want ~1.0", full)
	}

	// Half-scale swing.
	half := peakToPeak(pcm16(-16384, 16384), 16)
	if half < 0.49 || half > 0.51 {
		t.Errorf("half-scale level = %v, want ~0.5", half)
	}

	// DC offset without any swing is silence, not loudness.
	dc := peakToPeak(pcm16(8000, 8000, 8000, 8000), 16)
	if dc != 0 {
		t.Errorf("constant-offset level = %v, want 0", dc)
	}

	if got := peakToPeak(nil, 16); got != 0 {
		t.Errorf("empty chunk level = %v, want 0", got)
	}
}

func TestPeakToPeak8Bit(t *testing.T) {
	got := peakToPeak([]byte{0, 255, 0, 255}, 8)
	if got < 0.99 || got > 1.0 {
		t.Errorf("8-bit full-scale level = %v, want ~1.0", got)
	}
}

func TestLevelMeterSmoothing(t *testing.T) {
	m := NewLevelMeter(3)

	loud := pcm16(-16384, 16384)
	silence := pcm16(0, 0)

	m.Process(loud, 16)
	m.Process(loud, 16)
	m.Process(loud, 16)
	peak := m.Level()
	if peak < 0.45 {
		t.Fatalf("steady level = %v, want ~0.5", peak)
	}

	// One silent chunk only drops the average by a third.
	after := m.Process(silence, 16)
	if after >= peak || after < peak/2 {
		t.Errorf("smoothed level after one silent chunk = %v (was %v)", after, peak)
	}
}

func TestLevelMeterReset(t *testing.T) {
	m := NewLevelMeter(3)
	m.Process(pcm16(-16384, 16384), 16)
	m.Reset()
	if m.Level() != 0 {
		t.Errorf("level after reset = %v, want 0", m.Level())
	}
}
