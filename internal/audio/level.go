package audio

import (
	"math"
	"sync"
)

// LevelMeter computes the peak-to-peak amplitude of incoming PCM chunks,
// normalized to [0,1] against the maximum representable deviation. A
// small smoothing window keeps the waveform display from flickering.
type LevelMeter struct {
	mu      sync.RWMutex
	history []float64
	index   int
	level   float64
}

// NewLevelMeter creates a meter with the given smoothing window size.
func NewLevelMeter(smoothingFrames int) *LevelMeter {
	if smoothingFrames <= 0 {
		smoothingFrames = 3
	}
	return &LevelMeter{
		history: make([]float64, smoothingFrames),
	}
}

// Process computes the chunk's peak-to-peak level, folds it into the
// smoothing window, and returns the smoothed level in [0,1].
func (m *LevelMeter) Process(audioData []byte, bitDepth int) float64 {
	raw := peakToPeak(audioData, bitDepth)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.history[m.index] = raw
	m.index = (m.index + 1) % len(m.history)

	var sum float64
	for _, v := range m.history {
		sum += v
	}
	m.level = clamp01(sum / float64(len(m.history)))
	return m.level
}

// Level returns the most recent smoothed level.
func (m *LevelMeter) Level() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.level
}

// Reset clears the smoothing window.
func (m *LevelMeter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.level = 0
	m.index = 0
	for i := range m.history {
		m.history[i] = 0
	}
}

// peakToPeak measures the waveform's deviation from its center line:
// (max - min) / full scale, so a rail-to-rail signal reads 1.0 and
// silence reads 0.
func peakToPeak(audioData []byte, bitDepth int) float64 {
	if len(audioData) == 0 {
		return 0
	}

	switch bitDepth {
	case 16:
		min, max := math.MaxFloat64, -math.MaxFloat64
		for i := 0; i+1 < len(audioData); i += 2 {
			sample := float64(int16(audioData[i]) | int16(audioData[i+1])<<8)
			if sample < min {
				min = sample
			}
			if sample > max {
				max = sample
			}
		}
		if max < min {
			return 0
		}
		return (max - min) / 65536.0
	case 32:
		min, max := math.MaxFloat64, -math.MaxFloat64
		for i := 0; i+3 < len(audioData); i += 4 {
			bits := uint32(audioData[i]) | uint32(audioData[i+1])<<8 | uint32(audioData[i+2])<<16 | uint32(audioData[i+3])<<24
			sample := float64(math.Float32frombits(bits))
			if sample < min {
				min = sample
			}
			if sample > max {
				max = sample
			}
		}
		if max < min {
			return 0
		}
		return (max - min) / 2.0
	default:
		// 8-bit unsigned PCM
		min, max := math.MaxFloat64, -math.MaxFloat64
		for _, b := range audioData {
			sample := float64(b)
			if sample < min {
				min = sample
			}
			if sample > max {
				max = sample
			}
		}
		if max < min {
			return 0
		}
		return (max - min) / 256.0
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
