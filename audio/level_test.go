package audio

import (
	"sync"
	"testing"
	"time"
)

func TestLevelMeterWindowEvictsOldest(t *testing.T) {
	m := NewLevelMeter(3)
	for _, v := range []float32{0.1, 0.2, 0.3, 0.4, 0.5} {
		m.Update(v)
		m.Poll()
	}
	got := m.Recent()
	want := []float32{0.3, 0.4, 0.5}
	for i := range want {
		if !near(got[i], want[i]) {
			t.Fatalf("Recent() = %v, want %v", got, want)
		}
	}
}

func TestLevelMeterPartialWindowPadsFront(t *testing.T) {
	m := NewLevelMeter(4)
	m.Update(0.7)
	m.Poll()
	got := m.Recent()
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}
	if got[0] != 0 || got[1] != 0 || got[2] != 0 || !near(got[3], 0.7) {
		t.Errorf("Recent() = %v, want [0 0 0 0.7]", got)
	}
}

func TestLevelMeterDefaultSize(t *testing.T) {
	if got := len(NewLevelMeter(0).Recent()); got != DefaultLevelWindow {
		t.Errorf("len = %d, want %d", got, DefaultLevelWindow)
	}
}

func TestLevelMeterReset(t *testing.T) {
	m := NewLevelMeter(2)
	m.Update(0.9)
	m.Poll()
	m.Reset()
	if m.Current() != 0 {
		t.Errorf("Current() = %f after reset", m.Current())
	}
	for _, v := range m.Recent() {
		if v != 0 {
			t.Fatalf("Recent() = %v after reset", m.Recent())
		}
	}
}

func TestLevelMeterRunPolls(t *testing.T) {
	m := NewLevelMeter(5)
	m.Update(0.3)
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		m.Run(2*time.Millisecond, stop)
	}()
	time.Sleep(50 * time.Millisecond)
	close(stop)
	wg.Wait()

	for i, v := range m.Recent() {
		if !near(v, 0.3) {
			t.Fatalf("slot %d = %f, want 0.3", i, v)
		}
	}
}

func TestSampleBufferTakeResets(t *testing.T) {
	var b SampleBuffer
	b.Append([]float32{1, 2})
	b.Append(nil)
	b.Append([]float32{3})
	if b.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", b.Len())
	}
	got := b.Take()
	if len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Errorf("Take() = %v", got)
	}
	if b.Len() != 0 || len(b.Take()) != 0 {
		t.Error("buffer not empty after Take")
	}
}

func TestSampleBufferAppendCopies(t *testing.T) {
	var b SampleBuffer
	chunk := []float32{1, 2}
	b.Append(chunk)
	chunk[0] = 9
	if got := b.Take(); got[0] != 1 {
		t.Errorf("buffer aliased caller chunk: %v", got)
	}
}
