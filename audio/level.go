package audio

import (
	"math"
	"sync"
	"sync/atomic"
	"time"
)

const (
	DefaultLevelWindow   = 30
	DefaultLevelInterval = 33 * time.Millisecond
)

// LevelMeter holds the latest chunk RMS and a rolling window of polled
// readings for display. Update is called from the audio callback and never
// blocks; Poll and Recent may run on any goroutine.
type LevelMeter struct {
	current atomic.Uint32 // float32 bits

	mu     sync.Mutex
	window []float32
	next   int
	filled int
}

func NewLevelMeter(size int) *LevelMeter {
	if size <= 0 {
		size = DefaultLevelWindow
	}
	return &LevelMeter{window: make([]float32, size)}
}

func (m *LevelMeter) Update(rms float32) {
	m.current.Store(math.Float32bits(rms))
}

func (m *LevelMeter) Current() float32 {
	return math.Float32frombits(m.current.Load())
}

// Poll pushes the current level into the window, evicting the oldest.
func (m *LevelMeter) Poll() {
	level := m.Current()
	m.mu.Lock()
	m.window[m.next] = level
	m.next = (m.next + 1) % len(m.window)
	if m.filled < len(m.window) {
		m.filled++
	}
	m.mu.Unlock()
}

// Recent returns the window oldest first. The result always has the window
// length; slots not yet polled read as zero at the front.
func (m *LevelMeter) Recent() []float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	size := len(m.window)
	out := make([]float32, size)
	start := size - m.filled
	for i := 0; i < m.filled; i++ {
		idx := (m.next - m.filled + i + size) % size
		out[start+i] = m.window[idx]
	}
	return out
}

func (m *LevelMeter) Reset() {
	m.current.Store(0)
	m.mu.Lock()
	clear(m.window)
	m.next = 0
	m.filled = 0
	m.mu.Unlock()
}

// Run polls at the given interval until stop is closed.
func (m *LevelMeter) Run(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			m.Poll()
		}
	}
}
