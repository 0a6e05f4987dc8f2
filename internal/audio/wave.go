package audio

import (
	"math"
	"sync"
	"time"
)

const (
	waveBaseAmplitude  = 4.0  // visual units at zero loudness
	waveLoudnessRange  = 18.0 // additional units scaled by loudness
	waveSecondaryScale = 0.22 // secondary modulation relative to primary
	wavePhaseStep      = 0.35 // radians advanced per frame
)

// Frame is one drawable waveform frame: vertical offsets for evenly
// spaced points across the canvas width.
type Frame struct {
	Active bool      `json:"active"`
	Points []float64 `json:"points"`
}

// Wave generates waveform display frames. In idle mode it emits a single
// flat-line frame; in active mode it runs a loop capped at the configured
// frame rate, emitting a sine whose amplitude follows the latest loudness
// sample, with a low-amplitude secondary modulation and advancing phase.
type Wave struct {
	mu       sync.Mutex
	points   int
	interval time.Duration
	phase    float64
	loudness float64
	active   bool
	stopCh   chan struct{}
	onFrame  func(Frame)
}

// NewWave creates a generator emitting frames of the given point count at
// frameRate frames per second.
func NewWave(points, frameRate int, onFrame func(Frame)) *Wave {
	if points <= 0 {
		points = 128
	}
	if frameRate <= 0 {
		frameRate = 30
	}
	return &Wave{
		points:   points,
		interval: time.Second / time.Duration(frameRate),
		onFrame:  onFrame,
	}
}

// SetLoudness updates the amplitude input. Values are clamped to [0,1].
func (w *Wave) SetLoudness(level float64) {
	w.mu.Lock()
	w.loudness = clamp01(level)
	w.mu.Unlock()
}

// SetActive switches drawing modes. Activating starts the frame loop;
// deactivating stops it and immediately emits the idle frame so no stale
// active frame is left visible. Both directions are idempotent.
func (w *Wave) SetActive(active bool) {
	w.mu.Lock()
	if active == w.active {
		w.mu.Unlock()
		return
	}
	w.active = active
	if active {
		w.stopCh = make(chan struct{})
		go w.run(w.stopCh)
		w.mu.Unlock()
		return
	}
	close(w.stopCh)
	w.stopCh = nil
	w.phase = 0
	w.mu.Unlock()

	w.emit(w.idleFrame())
}

// Active reports whether the frame loop is running.
func (w *Wave) Active() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.active
}

func (w *Wave) run(stop chan struct{}) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !w.Active() {
				return
			}
			w.emit(w.activeFrame())
		}
	}
}

func (w *Wave) activeFrame() Frame {
	w.mu.Lock()
	w.phase += wavePhaseStep
	phase := w.phase
	loudness := w.loudness
	points := w.points
	w.mu.Unlock()

	amplitude := waveBaseAmplitude + waveLoudnessRange*loudness
	frame := Frame{Active: true, Points: make([]float64, points)}
	for i := range frame.Points {
		x := float64(i) / float64(points-1) * 4 * math.Pi
		primary := amplitude * math.Sin(x+phase)
		secondary := amplitude * waveSecondaryScale * math.Sin(2.7*x - phase*0.6)
		frame.Points[i] = primary + secondary
	}
	return frame
}

func (w *Wave) idleFrame() Frame {
	return Frame{Active: false, Points: make([]float64, w.points)}
}

func (w *Wave) emit(f Frame) {
	if w.onFrame != nil {
		w.onFrame(f)
	}
}
