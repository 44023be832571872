package clipboard

import "github.com/micmonay/keybd_event"

const pasteShortcut = "Cmd+V"

func setPasteModifier(kb *keybd_event.KeyBonding) {
	kb.HasSuper(true)
}
