package clipboard

import (
	"sync"
	"time"

	"dictate/log"
	"dictate/metrics"
)

const DefaultRestoreDelay = 150 * time.Millisecond

// Delivery puts text on the clipboard, pastes it into the focused app and
// later puts the previous contents back, unless something else wrote to
// the clipboard in the meantime.
type Delivery struct {
	Board  Board
	Paster Paster
	Delay  time.Duration

	wg sync.WaitGroup
}

func NewDelivery(board Board, paster Paster, delay time.Duration) *Delivery {
	if delay <= 0 {
		delay = DefaultRestoreDelay
	}
	return &Delivery{Board: board, Paster: paster, Delay: delay}
}

// Deliver returns once the paste keystroke has been sent. Failures are
// logged and never reported to the caller.
func (d *Delivery) Deliver(text string) {
	snap, snapErr := d.Board.Snapshot()
	if snapErr != nil {
		log.Warnf("clipboard snapshot: %v", snapErr)
	}

	if err := d.Board.WriteText(text); err != nil {
		log.Warnf("clipboard write: %v", err)
		return
	}
	if err := d.Paster.Paste(); err != nil {
		log.Warnf("paste keystroke: %v", err)
	}

	if snapErr != nil {
		return
	}

	d.wg.Add(1)
	time.AfterFunc(d.Delay, func() {
		defer d.wg.Done()
		d.restore(snap)
	})
}

func (d *Delivery) restore(snap Snapshot) {
	if got := d.Board.ChangeCount(); got != snap.Count+1 {
		log.Infof("clipboard changed by another writer (count %d, expected %d), not restoring", got, snap.Count+1)
		metrics.RecordRestore(metrics.RestoreSkipped)
		return
	}
	if err := d.Board.Restore(snap); err != nil {
		log.Warnf("clipboard restore: %v", err)
		metrics.RecordRestore(metrics.RestoreFailed)
		return
	}
	metrics.RecordRestore(metrics.RestoreRestored)
}

// Wait blocks until every scheduled restore has run.
func (d *Delivery) Wait() {
	d.wg.Wait()
}
