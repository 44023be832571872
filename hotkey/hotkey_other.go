//go:build !linux

package hotkey

import (
	"sync"

	"golang.design/x/hotkey"
)

// xHotkey registers Ctrl+Shift+Space permanently and Escape only while
// cancel is enabled, since a registered Escape is swallowed system-wide.
type xHotkey struct {
	hk      *hotkey.Hotkey
	esc     *hotkey.Hotkey
	keydown chan struct{}
	keyup   chan struct{}
	cancel  chan struct{}

	mu      sync.Mutex
	escOn   bool
	escStop chan struct{}
}

func New() Hotkey {
	return &xHotkey{
		hk:      hotkey.New([]hotkey.Modifier{hotkey.ModCtrl, hotkey.ModShift}, hotkey.KeySpace),
		esc:     hotkey.New(nil, hotkey.KeyEscape),
		keydown: make(chan struct{}, 1),
		keyup:   make(chan struct{}, 1),
		cancel:  make(chan struct{}, 1),
	}
}

func (h *xHotkey) Register() error {
	if err := h.hk.Register(); err != nil {
		return err
	}
	go func() {
		for range h.hk.Keydown() {
			send(h.keydown)
		}
	}()
	go func() {
		for range h.hk.Keyup() {
			send(h.keyup)
		}
	}()
	return nil
}

func (h *xHotkey) Unregister() {
	h.SetCancelEnabled(false)
	h.hk.Unregister()
}

func (h *xHotkey) Keydown() <-chan struct{} {
	return h.keydown
}

func (h *xHotkey) Keyup() <-chan struct{} {
	return h.keyup
}

func (h *xHotkey) Cancel() <-chan struct{} {
	return h.cancel
}

func (h *xHotkey) SetCancelEnabled(on bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if on == h.escOn {
		return
	}
	if !on {
		close(h.escStop)
		h.esc.Unregister()
		h.escOn = false
		return
	}
	if err := h.esc.Register(); err != nil {
		return
	}
	h.escOn = true
	h.escStop = make(chan struct{})
	go func(stop <-chan struct{}) {
		for {
			select {
			case <-stop:
				return
			case <-h.esc.Keydown():
				send(h.cancel)
			}
		}
	}(h.escStop)
}

func Diagnose() (string, error) {
	return "hotkey support available (Ctrl+Shift+Space, Esc cancels)", nil
}
