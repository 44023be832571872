package audio

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func constant(n int, v float32) []float32 {
	s := make([]float32, n)
	for i := range s {
		s[i] = v
	}
	return s
}

func TestEngineStopWithoutStart(t *testing.T) {
	e := NewEngine(NewFakeContextFromSamples(constant(100, 0.1), TargetRate), EngineConfig{})
	if got := e.Stop(); len(got) != 0 {
		t.Errorf("Stop() = %d samples, want 0", len(got))
	}
	if e.Recording() {
		t.Error("Recording() = true after idle Stop")
	}
}

func TestEngineCapturesAndConverts(t *testing.T) {
	ctx := NewFakeContextFromSamples(constant(4800, 0.5), 48000)
	e := NewEngine(ctx, EngineConfig{})

	if err := e.Start(); err != nil {
		t.Fatal(err)
	}
	if !e.Recording() {
		t.Fatal("Recording() = false after Start")
	}
	got := e.Stop()
	if len(got) < 1599 || len(got) > 1601 {
		t.Fatalf("got %d samples, want ~1600", len(got))
	}
	for i, s := range got {
		if !near(s, 0.5) {
			t.Fatalf("sample %d = %f, want 0.5", i, s)
		}
	}
	if again := e.Stop(); len(again) != 0 {
		t.Errorf("second Stop() = %d samples, want 0", len(again))
	}
}

func TestEngineRestartStartsClean(t *testing.T) {
	e := NewEngine(NewFakeContextFromSamples(constant(1000, 0.2), TargetRate), EngineConfig{})
	for i := 0; i < 2; i++ {
		if err := e.Start(); err != nil {
			t.Fatal(err)
		}
		if got := e.Stop(); len(got) != 1000 {
			t.Fatalf("round %d: got %d samples, want 1000", i, len(got))
		}
	}
}

func TestEngineStartErrors(t *testing.T) {
	openErr := errors.New("device busy")
	tests := []struct {
		name string
		ctx  *FakeContext
		want error
	}{
		{"zero rate", NewFakeContextFromPCM(nil, Format{SampleRate: 0, Channels: 1}), ErrNoInputDevice},
		{"bad encoding", NewFakeContextFromPCM(nil, Format{SampleRate: 48000, Channels: 1, Encoding: Encoding(5)}), ErrConverterUnavailable},
		{"open failure", &FakeContext{OpenErr: openErr}, openErr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(tt.ctx, EngineConfig{})
			if err := e.Start(); !errors.Is(err, tt.want) {
				t.Fatalf("Start() = %v, want %v", err, tt.want)
			}
			if e.Recording() {
				t.Error("Recording() = true after failed Start")
			}
		})
	}
}

func TestEngineLevels(t *testing.T) {
	e := NewEngine(NewFakeContextFromSamples(constant(2048, 0.4), TargetRate), EngineConfig{
		LevelInterval: 2 * time.Millisecond,
		LevelWindow:   8,
	})
	if err := e.Start(); err != nil {
		t.Fatal(err)
	}
	time.Sleep(40 * time.Millisecond)
	levels := e.RecentLevels()
	e.Stop()

	if len(levels) != 8 {
		t.Fatalf("len = %d, want 8", len(levels))
	}
	if !near(levels[len(levels)-1], 0.4) {
		t.Errorf("latest level = %f, want 0.4", levels[len(levels)-1])
	}
	if !near(e.Level(), 0.4) {
		t.Errorf("Level() = %f, want 0.4", e.Level())
	}
}

func TestFakeContextFromWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	if err := WriteWAV(path, constant(3200, 0.25), 32000); err != nil {
		t.Fatal(err)
	}
	ctx, err := NewFakeContext(path, false)
	if err != nil {
		t.Fatal(err)
	}
	ctx.Silence = false

	e := NewEngine(ctx, EngineConfig{})
	if err := e.Start(); err != nil {
		t.Fatal(err)
	}
	got := e.Stop()
	if len(got) != 1600 {
		t.Fatalf("got %d samples, want 1600", len(got))
	}
	if got[800] < 0.24 || got[800] > 0.26 {
		t.Errorf("sample = %f, want ~0.25", got[800])
	}
}
