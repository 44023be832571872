package main

import (
	"context"

	"dictate/beep"
	"dictate/hotkey"
	"dictate/session"
)

// driveToggle forwards key-release toggles and Escape to the controller.
func driveToggle(ctx context.Context, t *hotkey.Toggle, ctl *session.Controller) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.Toggle():
			ctl.Toggle()
		case <-t.Cancel():
			ctl.Cancel()
		}
	}
}

// driveHybrid maps hybrid presses onto guarded start/stop so a press that
// arrives while a recording is already running never stops it early.
func driveHybrid(ctx context.Context, h *hotkey.Hybrid, ctl *session.Controller) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-h.Start():
			ctl.Start()
		case <-h.StopChan():
			ctl.Stop()
		case <-h.Cancel():
			ctl.Cancel()
		}
	}
}

// drivePushToTalk records while the key is held. Edges are consumed in
// order, a release is only looked at after its press.
func drivePushToTalk(ctx context.Context, hk hotkey.Hotkey, ctl *session.Controller) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-hk.Cancel():
			ctl.Cancel()
			continue
		case <-hk.Keydown():
		}
		ctl.Start()

	held:
		for {
			select {
			case <-ctx.Done():
				return
			case <-hk.Cancel():
				ctl.Cancel()
			case <-hk.Keyup():
				ctl.Stop()
				break held
			}
		}
	}
}

// cues plays a beep on each phase change. Observers run on the controller
// loop, so prev needs no lock.
type cues struct {
	prev   session.Phase
	warned bool
}

func newCues() *cues { return &cues{prev: session.Idle} }

func (c *cues) StatusChanged(s session.Status) {
	if s.SilenceWarning && !c.warned {
		beep.Play(beep.Error)
	}
	c.warned = s.SilenceWarning

	if s.Phase == c.prev {
		return
	}
	c.prev = s.Phase
	switch s.Phase {
	case session.Recording:
		beep.Play(beep.Start)
	case session.Transcribing:
		beep.Play(beep.Stop)
	case session.Cancelled:
		beep.Play(beep.Cancel)
	case session.Error, session.PermissionBlocked:
		beep.Play(beep.Error)
	}
}

// cancelGate arms the Escape binding only while a recording is running,
// so Escape keeps working normally in other applications.
func cancelGate(hk hotkey.Hotkey) session.Observer {
	return session.ObserverFunc(func(s session.Status) {
		hk.SetCancelEnabled(s.Phase == session.Recording)
	})
}
