package hotkey

// Toggle turns key releases into toggle signals: the first release starts
// a recording, the next one stops it.
type Toggle struct {
	hk       Hotkey
	toggleCh chan struct{}
}

func NewToggle(hk Hotkey) *Toggle {
	t := &Toggle{hk: hk, toggleCh: make(chan struct{}, 1)}
	go t.run()
	return t
}

func (t *Toggle) run() {
	for {
		<-t.hk.Keydown()
		<-t.hk.Keyup()
		send(t.toggleCh)
	}
}

func (t *Toggle) Toggle() <-chan struct{} { return t.toggleCh }

func (t *Toggle) Cancel() <-chan struct{} { return t.hk.Cancel() }
