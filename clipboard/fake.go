package clipboard

import (
	"sync"
)

// FakeBoard is an in-memory multi-format clipboard with an exact change
// counter.
type FakeBoard struct {
	SnapshotErr error
	WriteErr    error

	mu       sync.Mutex
	items    []Item
	count    uint64
	restores int
}

func NewFakeBoard(items ...Item) *FakeBoard {
	return &FakeBoard{items: cloneItems(items)}
}

// Set replaces the contents the way another application would.
func (b *FakeBoard) Set(items ...Item) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = cloneItems(items)
	b.count++
}

func (b *FakeBoard) Items() []Item {
	b.mu.Lock()
	defer b.mu.Unlock()
	return cloneItems(b.items)
}

func (b *FakeBoard) Restores() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.restores
}

func (b *FakeBoard) Snapshot() (Snapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.SnapshotErr != nil {
		return Snapshot{}, b.SnapshotErr
	}
	return Snapshot{Items: cloneItems(b.items), Count: b.count}, nil
}

func (b *FakeBoard) WriteText(text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.WriteErr != nil {
		return b.WriteErr
	}
	b.items = []Item{{Format: FormatText, Data: []byte(text)}}
	b.count++
	return nil
}

func (b *FakeBoard) Restore(s Snapshot) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = cloneItems(s.Items)
	b.count++
	b.restores++
	return nil
}

func (b *FakeBoard) ChangeCount() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

func cloneItems(items []Item) []Item {
	if items == nil {
		return nil
	}
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = Item{Format: it.Format, Data: append([]byte(nil), it.Data...)}
	}
	return out
}

// FakePaster counts pastes. Hook, when set, runs on every paste.
type FakePaster struct {
	Err  error
	Hook func()

	mu     sync.Mutex
	pastes int
}

func (p *FakePaster) Paste() error {
	p.mu.Lock()
	p.pastes++
	hook := p.Hook
	p.mu.Unlock()
	if hook != nil {
		hook()
	}
	return p.Err
}

func (p *FakePaster) Pastes() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pastes
}

// FakeDeliverer records delivered texts without touching any clipboard.
type FakeDeliverer struct {
	mu    sync.Mutex
	texts []string
}

func (d *FakeDeliverer) Deliver(text string) {
	d.mu.Lock()
	d.texts = append(d.texts, text)
	d.mu.Unlock()
}

func (d *FakeDeliverer) Texts() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.texts...)
}
