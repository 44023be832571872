package main

import (
	"bytes"
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"dictate/audio"
	"dictate/clipboard"
	"dictate/config"
	"dictate/history"
	"dictate/hotkey"
	"dictate/model"
	"dictate/permission"
	"dictate/session"
	"dictate/transcriber"
)

type rig struct {
	p      *pipeline
	hk     *hotkey.FakeHotkey
	board  *clipboard.FakeBoard
	paster *clipboard.FakePaster
	store  *history.Store
	out    *bytes.Buffer
	done   chan struct{}
	cancel context.CancelFunc
}

func tone(d time.Duration) []float32 {
	n := int(d.Seconds() * audio.TargetRate)
	s := make([]float32, n)
	for i := range s {
		s[i] = float32(0.3 * math.Sin(2*math.Pi*440*float64(i)/audio.TargetRate))
	}
	return s
}

func newRig(t *testing.T, transcript string) *rig {
	t.Helper()
	cfg, err := config.LoadFromEnv()
	if err != nil {
		t.Fatal(err)
	}
	cfg.RestoreDelay = 10 * time.Millisecond
	cfg.CancelDisplay = 20 * time.Millisecond

	store, err := history.OpenInMemory()
	if err != nil {
		t.Fatal(err)
	}
	r := &rig{
		hk:     hotkey.NewFake(),
		board:  clipboard.NewFakeBoard(clipboard.Item{Format: clipboard.FormatText, Data: []byte("before")}),
		paster: &clipboard.FakePaster{},
		store:  store,
		out:    &bytes.Buffer{},
		done:   make(chan struct{}, 1),
	}
	r.p = newPipeline(pipelineConfig{
		cfg:     cfg,
		audio:   audio.NewFakeContextFromSamples(tone(time.Second), audio.TargetRate),
		models:  model.Static{Path: "m.bin", Available: true},
		loader:  transcriber.NewFakeLoader(transcript).Load,
		board:   r.board,
		paster:  r.paster,
		perms:   &permission.Fake{Mic: true, Accessibility: true},
		history: store,
	})
	r.p.ctl.Subscribe(cancelGate(r.hk))
	r.p.ctl.Subscribe(newStatusPrinter(r.out, r.done))

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	go drivePushToTalk(ctx, r.hk, r.p.ctl)
	go r.p.ctl.Run(ctx)
	return r
}

// stop shuts the pipeline down; afterwards r.out is safe to read.
func (r *rig) stop() {
	r.cancel()
	r.p.ctl.Wait()
	r.p.delivery.Wait()
}

func (r *rig) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.done:
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out, last status %+v", r.p.ctl.Status())
	}
}

func (r *rig) waitPhase(t *testing.T, p session.Phase) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for r.p.ctl.Status().Phase != p {
		if time.Now().After(deadline) {
			t.Fatalf("phase never reached %v", p)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestPushToTalkDeliversTranscript(t *testing.T) {
	r := newRig(t, " hello world ")
	defer r.store.Close()

	r.hk.SimKeydown()
	r.hk.SimKeyup()
	r.wait(t)
	r.stop()

	if n := r.paster.Pastes(); n != 1 {
		t.Errorf("pastes = %d, want 1", n)
	}
	items := r.board.Items()
	if len(items) != 1 || string(items[0].Data) != "before" {
		t.Errorf("clipboard not restored: %+v", items)
	}
	records, err := r.store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].Text != "hello world" {
		t.Errorf("history = %+v", records)
	}
	if r.p.delivered() != 1 {
		t.Errorf("delivered = %d", r.p.delivered())
	}
	out := r.out.String()
	for _, want := range []string{"[recording] Recording...", "[transcribing] Transcribing...", "[idle] Pasted: hello world"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestEscapeCancelsHeldRecording(t *testing.T) {
	r := newRig(t, "never")
	defer r.store.Close()

	r.hk.SimCancel() // not recording, gate closed
	r.hk.SimKeydown()
	r.waitPhase(t, session.Recording)
	if !r.hk.CancelEnabled() {
		t.Fatal("cancel not armed while recording")
	}
	r.hk.SimCancel()
	r.wait(t)
	r.hk.SimKeyup()
	r.stop()

	if r.hk.CancelEnabled() {
		t.Error("cancel still armed after recording")
	}
	if n := r.paster.Pastes(); n != 0 {
		t.Errorf("pastes = %d after cancel", n)
	}
	if records, _ := r.store.List(); len(records) != 0 {
		t.Errorf("history = %+v after cancel", records)
	}
	if !strings.Contains(r.out.String(), "[cancelled] Recording cancelled") {
		t.Errorf("no cancel line:\n%s", r.out.String())
	}
}

func TestStatusPrinterSignalsIdle(t *testing.T) {
	var out bytes.Buffer
	done := make(chan struct{}, 1)
	p := newStatusPrinter(&out, done)

	p.StatusChanged(session.Status{Phase: session.Recording, Message: session.MsgRecording})
	p.StatusChanged(session.Status{Phase: session.Recording, Message: session.MsgRecording})
	select {
	case <-done:
		t.Fatal("done before idle")
	default:
	}

	p.StatusChanged(session.Status{Phase: session.Idle, Message: session.MsgNoAudio})
	<-done

	// refused start stays idle but still completes a WAIT
	p.StatusChanged(session.Status{Phase: session.Idle, Message: session.MsgModelNotReady})
	<-done

	want := "[recording] Recording...\n[idle] No audio captured\n[idle] Model not downloaded yet\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}
