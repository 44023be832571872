package hotkey

import (
	"sync/atomic"
	"time"
)

type Mode string

const (
	ModePTT    Mode = "ptt"
	ModeToggle Mode = "toggle"
)

// Hybrid maps tap-to-toggle and hold-to-talk onto the same key. Every
// press starts a recording; a release after longPress stops it, a shorter
// tap leaves it running until the next press is released.
type Hybrid struct {
	hk      Hotkey
	startCh chan struct{}
	stopCh  chan struct{}
	toggle  atomic.Bool
}

func NewHybrid(hk Hotkey, longPress time.Duration) *Hybrid {
	h := &Hybrid{
		hk:      hk,
		startCh: make(chan struct{}, 1),
		stopCh:  make(chan struct{}, 1),
	}
	go h.run(longPress)
	return h
}

func (h *Hybrid) Start() <-chan struct{} { return h.startCh }

// StopChan is signalled when recording should end, in either mode.
func (h *Hybrid) StopChan() <-chan struct{} { return h.stopCh }

func (h *Hybrid) Cancel() <-chan struct{} { return h.hk.Cancel() }

// IsToggle reports whether the current recording was started by a tap.
func (h *Hybrid) IsToggle() bool { return h.toggle.Load() }

func (h *Hybrid) Mode() Mode {
	if h.IsToggle() {
		return ModeToggle
	}
	return ModePTT
}

func (h *Hybrid) run(longPress time.Duration) {
	for {
		<-h.hk.Keydown()
		h.toggle.Store(false)
		send(h.startCh)

		timer := time.NewTimer(longPress)
		select {
		case <-timer.C:
			<-h.hk.Keyup()
			send(h.stopCh)
			continue
		case <-h.hk.Keyup():
			timer.Stop()
			h.toggle.Store(true)
		}

		<-h.hk.Keydown()
		<-h.hk.Keyup()
		send(h.stopCh)
	}
}
