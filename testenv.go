package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"dictate/audio"
	"dictate/beep"
	"dictate/clipboard"
	"dictate/config"
	"dictate/history"
	"dictate/hotkey"
	"dictate/log"
	"dictate/model"
	"dictate/permission"
	"dictate/session"
	"dictate/transcriber"
)

// fakeTranscriptEnv replaces whisper with a fixed transcript in test mode.
const fakeTranscriptEnv = "DICTATE_FAKE_TRANSCRIPT"

// runTestMode drives the real controller from stdin with a WAV-backed
// capture and a fake hotkey held down between KEYDOWN and KEYUP.
func runTestMode(wavPath string, cfg *config.Config) int {
	beep.Disable()
	defer log.Close()

	fakeCtx, err := audio.NewFakeContext(wavPath, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading WAV: %v\n", err)
		return 1
	}

	var loader transcriber.Loader
	var models session.Models
	if text, ok := os.LookupEnv(fakeTranscriptEnv); ok {
		loader = transcriber.NewFakeLoader(text).Load
		models = model.Static{Path: "fake-model.bin", Available: true}
	} else {
		loader = transcriber.NewWhisperLoader(whisperConfig(cfg))
		models = newModels(cfg)
	}

	if err := clipboard.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: paste init failed: %v\n", err)
	}

	store, err := history.OpenInMemory()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	p := newPipeline(pipelineConfig{
		cfg:     cfg,
		audio:   fakeCtx,
		models:  models,
		loader:  loader,
		board:   clipboard.NewSystem(),
		perms:   &permission.Fake{Mic: true, Accessibility: true},
		history: store,
	})
	defer p.close()

	log.SessionStart(p.modelPath(), "test", "fake")

	hk := hotkey.NewFake()
	done := make(chan struct{}, 1)
	p.ctl.Subscribe(cancelGate(hk))
	p.ctl.Subscribe(newStatusPrinter(os.Stdout, done))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go drivePushToTalk(ctx, hk, p.ctl)
	go func() {
		runScript(os.Stdin, hk, fakeCtx, done)
		cancel()
	}()

	p.ctl.Run(ctx)
	p.ctl.Wait()
	log.SessionEnd(p.delivered())
	return 0
}

// runScript executes stdin commands until QUIT or EOF.
func runScript(r io.Reader, hk *hotkey.FakeHotkey, fakeCtx *audio.FakeContext, done <-chan struct{}) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		cmd := strings.TrimSpace(scanner.Text())
		switch cmd {
		case "KEYDOWN":
			hk.SimKeydown()
		case "KEYUP":
			hk.SimKeyup()
		case "ESC":
			hk.SimCancel()
		case "WAIT":
			<-done
		case "WAIT_AUDIO_DONE":
			c := <-fakeCtx.Opened()
			<-c.AudioDone()
		case "QUIT":
			return
		default:
			if ms, ok := strings.CutPrefix(cmd, "SLEEP "); ok {
				if n, err := strconv.Atoi(ms); err == nil {
					time.Sleep(time.Duration(n) * time.Millisecond)
				}
			}
		}
	}
}

// statusPrinter writes each new status line and signals done whenever a
// session settles back to Idle.
type statusPrinter struct {
	out  io.Writer
	done chan<- struct{}
	last session.Status
}

func newStatusPrinter(out io.Writer, done chan<- struct{}) *statusPrinter {
	return &statusPrinter{out: out, done: done, last: session.Status{Phase: session.Idle, Message: session.MsgReady}}
}

func (p *statusPrinter) StatusChanged(s session.Status) {
	if s.Phase != session.Idle && s.Phase == p.last.Phase && s.Message == p.last.Message {
		return
	}
	fmt.Fprintf(p.out, "[%s] %s\n", s.Phase, s.Message)
	// Idle to Idle with a new message is a refused start, e.g. no model
	if s.Phase == session.Idle {
		select {
		case p.done <- struct{}{}:
		default:
		}
	}
	p.last = s
}
