package hotkey

// Hotkey is the global dictation shortcut plus an Escape key used to
// cancel a recording. Cancel events are only delivered while enabled.
type Hotkey interface {
	Register() error
	Unregister()
	Keydown() <-chan struct{}
	Keyup() <-chan struct{}
	Cancel() <-chan struct{}
	SetCancelEnabled(on bool)
}

func send(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
