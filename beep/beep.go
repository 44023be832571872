package beep

import (
	"math"
	"sync"
	"sync/atomic"
)

type Cue int

const (
	Start Cue = iota
	Stop
	Cancel
	Error
)

var disabled atomic.Bool

func Disable() { disabled.Store(true) }

const sampleRate = 44100

type tone struct {
	freq     float64
	duration float64 // seconds per beep
	volume   float64
	decay    float64
	repeat   int // beeps; a 50ms gap separates them
}

var tones = map[Cue]tone{
	Start:  {freq: 1200, duration: 0.2, volume: 0.5, decay: 60, repeat: 1},
	Stop:   {freq: 900, duration: 0.2, volume: 0.5, decay: 40, repeat: 1},
	Cancel: {freq: 600, duration: 0.12, volume: 0.45, decay: 40, repeat: 1},
	Error:  {freq: 350, duration: 0.08, volume: 0.6, decay: 30, repeat: 2},
}

var (
	cacheMu sync.Mutex
	cache   = map[Cue][]int16{}
)

// samples renders the mono 16-bit waveform for c.
func samples(c Cue) []int16 {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	if s, ok := cache[c]; ok {
		return s
	}
	t, ok := tones[c]
	if !ok {
		return nil
	}
	n := int(sampleRate * t.duration)
	one := make([]int16, n)
	for i := range one {
		x := float64(i) / sampleRate
		one[i] = int16(math.Sin(2*math.Pi*t.freq*x) * 32767 * t.volume * math.Exp(-x*t.decay))
	}
	gap := make([]int16, int(sampleRate*0.05))
	var out []int16
	for i := 0; i < t.repeat; i++ {
		if i > 0 {
			out = append(out, gap...)
		}
		out = append(out, one...)
	}
	cache[c] = out
	return out
}

// Play starts the cue and returns without waiting for it to finish.
func Play(c Cue) {
	if disabled.Load() {
		return
	}
	s := samples(c)
	if len(s) == 0 {
		return
	}
	play(s)
}
