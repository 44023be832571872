package clipboard

import (
	"sync"

	cb "github.com/atotto/clipboard"
	"github.com/cespare/xxhash/v2"
)

// System is the OS clipboard. The OS gives no portable change counter, so
// one is kept here: each write through the board counts once, and every
// observation whose content fingerprint differs from the last one counts
// as a foreign write. An unreadable clipboard (an image copied by another
// app, say) also counts as a foreign write.
type System struct {
	read  func() (string, error)
	write func(string) error

	mu    sync.Mutex
	count uint64
	last  uint64
	seen  bool
}

func NewSystem() *System {
	return &System{read: cb.ReadAll, write: cb.WriteAll}
}

func (s *System) observe() (string, error) {
	text, err := s.read()
	if err != nil {
		s.count++
		s.seen = false
		s.last = 0
		return "", err
	}
	fp := xxhash.Sum64String(text)
	if s.seen && fp != s.last {
		s.count++
	}
	s.last = fp
	s.seen = true
	return text, nil
}

func (s *System) store(text string) error {
	if err := s.write(text); err != nil {
		return err
	}
	s.count++
	s.last = xxhash.Sum64String(text)
	s.seen = true
	return nil
}

func (s *System) Snapshot() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text, err := s.observe()
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{Count: s.count}
	if text != "" {
		snap.Items = []Item{{Format: FormatText, Data: []byte(text)}}
	}
	return snap, nil
}

func (s *System) WriteText(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store(text)
}

func (s *System) Restore(snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store(snap.Text())
}

func (s *System) ChangeCount() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observe()
	return s.count
}

// Read returns the current clipboard text.
func Read() (string, error) {
	return cb.ReadAll()
}
