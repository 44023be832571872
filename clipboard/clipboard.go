package clipboard

// FormatText is the only format the system board can read and write.
const FormatText = "text/plain;charset=utf-8"

type Item struct {
	Format string
	Data   []byte
}

// Snapshot is the clipboard contents captured before an injection, plus
// the change count observed at that moment.
type Snapshot struct {
	Items []Item
	Count uint64
}

func (s Snapshot) Text() string {
	for _, it := range s.Items {
		if it.Format == FormatText {
			return string(it.Data)
		}
	}
	return ""
}

// Board is a clipboard with a change counter that increments on every
// replacement of its contents, whoever made it.
type Board interface {
	Snapshot() (Snapshot, error)
	WriteText(text string) error
	Restore(s Snapshot) error
	ChangeCount() uint64
}

// Paster injects a paste keystroke into the focused application.
type Paster interface {
	Paste() error
}

type keystroke struct{}

func (keystroke) Paste() error { return Paste() }

// Keystroke is the platform paste shortcut as a Paster.
var Keystroke Paster = keystroke{}
