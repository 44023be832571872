package session

import "time"

const (
	SilenceTick         = 100 * time.Millisecond
	silenceWarnEvery    = 8 * time.Second
	silenceAutoCloseDur = 30 * time.Second
	speechMinRatio      = 0.10
	speechClearRatio    = 0.25 // hysteresis: clearing needs more speech than warning
)

// DefaultSpeechThreshold is the RMS above which a tick counts as speech.
const DefaultSpeechThreshold = 0.01

type SilenceEvent int

const (
	SilenceNone      SilenceEvent = iota
	SilenceWarn                   // no voice in the last 8s
	SilenceWarnClear              // speech resumed after a warning
	SilenceRepeat                 // still silent, every 8s
	SilenceAutoClose              // 30s of silence, stop the recording
)

func (e SilenceEvent) String() string {
	switch e {
	case SilenceWarn:
		return "warn"
	case SilenceWarnClear:
		return "warn_clear"
	case SilenceRepeat:
		return "repeat"
	case SilenceAutoClose:
		return "auto_close"
	}
	return "none"
}

// SilenceMonitor consumes one speech/no-speech sample per SilenceTick.
// Repeat and auto-close only fire when autoStop reports true, so a
// hold-to-talk recording is never closed from under the user.
type SilenceMonitor struct {
	warnAt   int
	windowSz int
	autoStop func() bool

	ticks       int
	window      []bool
	speechCount int
	warned      bool
	lastBeep    int
}

func NewSilenceMonitor(autoStop func() bool) *SilenceMonitor {
	windowSz := int(silenceAutoCloseDur / SilenceTick)
	return &SilenceMonitor{
		warnAt:   int(silenceWarnEvery / SilenceTick),
		windowSz: windowSz,
		autoStop: autoStop,
		window:   make([]bool, windowSz),
	}
}

// ratio is the speech fraction over the most recent n ticks.
func (m *SilenceMonitor) ratio(n int) float64 {
	n = min(n, m.ticks)
	if n == 0 {
		return 1.0
	}
	count := 0
	for i := 0; i < n; i++ {
		if m.window[(m.ticks-1-i+m.windowSz)%m.windowSz] {
			count++
		}
	}
	return float64(count) / float64(n)
}

func (m *SilenceMonitor) Tick(speech bool) SilenceEvent {
	idx := m.ticks % m.windowSz
	if m.ticks >= m.windowSz && m.window[idx] {
		m.speechCount--
	}
	m.window[idx] = speech
	if speech {
		m.speechCount++
	}
	m.ticks++

	r := m.ratio(m.warnAt)
	switch {
	case m.ticks >= m.warnAt && r < speechMinRatio && !m.warned:
		m.warned = true
		m.lastBeep = m.ticks
		return SilenceWarn
	case m.warned && r >= speechClearRatio:
		m.warned = false
		return SilenceWarnClear
	}

	if !m.autoStop() {
		return SilenceNone
	}
	// auto-close wins over repeat
	if m.ticks >= m.windowSz && float64(m.speechCount)/float64(m.windowSz) < speechMinRatio {
		return SilenceAutoClose
	}
	if m.warned && m.ticks-m.lastBeep >= m.warnAt {
		m.lastBeep = m.ticks
		return SilenceRepeat
	}
	return SilenceNone
}
