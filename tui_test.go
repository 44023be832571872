package main

import (
	"strings"
	"testing"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"

	"dictate/session"
)

func TestRenderMeter(t *testing.T) {
	if got := renderMeter(nil, 30); utf8.RuneCountInString(got) != 30 || strings.TrimSpace(got) != "" {
		t.Errorf("empty meter = %q", got)
	}

	got := []rune(renderMeter([]float32{0, 0.1, 1}, 5))
	if len(got) != 5 {
		t.Fatalf("len = %d", len(got))
	}
	if got[0] != ' ' || got[1] != ' ' || got[2] != ' ' {
		t.Errorf("front not padded: %q", string(got))
	}
	if got[4] != '█' {
		t.Errorf("loud level = %q, want full block", got[4])
	}
	if got[3] == ' ' || got[3] == '█' {
		t.Errorf("mid level = %q", got[3])
	}

	// only the newest width levels are shown
	long := make([]float32, 40)
	long[39] = 1
	if r := []rune(renderMeter(long, 30)); len(r) != 30 || r[29] != '█' {
		t.Errorf("long meter = %q", string(r))
	}
}

func TestTUICountsDeliveries(t *testing.T) {
	var m tea.Model = tuiModel{status: session.Status{Phase: session.Idle}}
	steps := []session.Status{
		{Phase: session.Recording, Message: session.MsgRecording},
		{Phase: session.Transcribing, Message: session.MsgTranscribing},
		{Phase: session.Idle, Message: "Pasted: hi", LastText: "hi"},
		{Phase: session.Recording, Message: session.MsgRecording},
		{Phase: session.Transcribing, Message: session.MsgTranscribing},
		{Phase: session.Idle, Message: session.MsgNoSpeech, LastText: "hi"},
	}
	for _, s := range steps {
		m, _ = m.Update(StatusMsg{Status: s})
	}
	tm := m.(tuiModel)
	if tm.delivered != 1 {
		t.Errorf("delivered = %d, want 1", tm.delivered)
	}
	view := tm.View()
	for _, want := range []string{"IDLE", "No speech detected", "Last transcription (#1)", "hi"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestTUIDeviceSelectOnlyWhenIdle(t *testing.T) {
	req := make(chan struct{}, 1)
	m := tuiModel{selectDevice: req, status: session.Status{Phase: session.Recording, IsRecording: true}}
	key := tea.KeyMsg{Type: tea.KeyCtrlG}

	m.Update(key)
	select {
	case <-req:
		t.Fatal("picker requested while recording")
	default:
	}

	m.status = session.Status{Phase: session.Idle}
	m.Update(key)
	select {
	case <-req:
	default:
		t.Fatal("picker not requested when idle")
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("the quick brown fox jumps", 10)
	for _, l := range lines {
		if len(l) > 10 {
			t.Errorf("line %q longer than 10", l)
		}
	}
	if strings.Join(lines, " ") != "the quick brown fox jumps" {
		t.Errorf("wrap lost words: %q", lines)
	}
	if got := wrapText("", 10); len(got) != 1 || got[0] != "" {
		t.Errorf("empty = %q", got)
	}
}
