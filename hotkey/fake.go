package hotkey

import "sync/atomic"

type FakeHotkey struct {
	keydown chan struct{}
	keyup   chan struct{}
	cancel  chan struct{}
	enabled atomic.Bool
}

func NewFake() *FakeHotkey {
	return &FakeHotkey{
		keydown: make(chan struct{}, 1),
		keyup:   make(chan struct{}, 1),
		cancel:  make(chan struct{}, 1),
	}
}

func (f *FakeHotkey) Register() error          { return nil }
func (f *FakeHotkey) Unregister()              {}
func (f *FakeHotkey) Keydown() <-chan struct{} { return f.keydown }
func (f *FakeHotkey) Keyup() <-chan struct{}   { return f.keyup }
func (f *FakeHotkey) Cancel() <-chan struct{}  { return f.cancel }
func (f *FakeHotkey) SetCancelEnabled(on bool) { f.enabled.Store(on) }
func (f *FakeHotkey) CancelEnabled() bool      { return f.enabled.Load() }

func (f *FakeHotkey) SimKeydown() { f.keydown <- struct{}{} }
func (f *FakeHotkey) SimKeyup()   { f.keyup <- struct{}{} }

// SimCancel presses Escape; it is dropped unless cancel is enabled, the
// same as the real key sources.
func (f *FakeHotkey) SimCancel() {
	if f.enabled.Load() {
		f.cancel <- struct{}{}
	}
}
