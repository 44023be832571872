package encoder

import (
	"bytes"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mewkiz/flac"
)

func sine(n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(0.5 * math.Sin(2*math.Pi*440*float64(i)/SampleRate))
	}
	return out
}

func decodeAll(t *testing.T, data []byte) []int32 {
	t.Helper()
	stream, err := flac.New(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("flac.New: %v", err)
	}
	defer stream.Close()

	if stream.Info.SampleRate != SampleRate || stream.Info.NChannels != Channels {
		t.Errorf("stream info = %d Hz, %d ch", stream.Info.SampleRate, stream.Info.NChannels)
	}
	var out []int32
	for {
		f, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("ParseNext: %v", err)
		}
		out = append(out, f.Subframes[0].Samples...)
	}
	return out
}

func TestEncodeFloat32RoundTrip(t *testing.T) {
	in := sine(BlockSize*2 + 100)
	data, err := EncodeFloat32(in)
	if err != nil {
		t.Fatal(err)
	}
	if string(data[:4]) != "fLaC" {
		t.Fatal("output does not start with FLAC magic")
	}

	got := decodeAll(t, data)
	if len(got) != len(in) {
		t.Fatalf("decoded %d samples, want %d", len(got), len(in))
	}
	for i := range in {
		want := int32(math.Round(float64(in[i]) * 32767))
		if d := got[i] - want; d < -1 || d > 1 {
			t.Fatalf("sample %d = %d, want %d", i, got[i], want)
		}
	}
}

func TestFlacEncoderEmpty(t *testing.T) {
	enc, err := NewFlac()
	if err != nil {
		t.Fatalf("NewFlac: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close on empty encoder: %v", err)
	}
	if enc.TotalFrames() != 0 {
		t.Errorf("TotalFrames = %d, want 0", enc.TotalFrames())
	}
	if len(enc.Bytes()) == 0 {
		t.Error("expected non-empty FLAC output (at least header)")
	}
}

func TestFlacEncoderPartialBlock(t *testing.T) {
	enc, err := NewFlac()
	if err != nil {
		t.Fatalf("NewFlac: %v", err)
	}

	partial := make([]int16, BlockSize/4)
	for i := range partial {
		partial[i] = int16(i % 1000)
	}

	if err := enc.EncodeBlock(partial); err != nil {
		t.Fatalf("EncodeBlock partial: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if enc.TotalFrames() != uint64(len(partial)) {
		t.Errorf("TotalFrames = %d, want %d", enc.TotalFrames(), len(partial))
	}
}

func TestArchiveWritesFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "archive")
	a := NewArchive(dir)
	a.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }

	if err := a.Archive(sine(1600)); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || !strings.HasPrefix(entries[0].Name(), "rec-20250102-030405") {
		t.Fatalf("archive entries = %v", entries)
	}
	data, _ := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	if n := len(decodeAll(t, data)); n != 1600 {
		t.Errorf("archived %d samples, want 1600", n)
	}
}
