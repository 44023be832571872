package audio

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

func s16(samples ...int16) []byte {
	b := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(b[i*2:], uint16(s))
	}
	return b
}

func f32(samples ...float32) []byte {
	b := make([]byte, len(samples)*4)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(s))
	}
	return b
}

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-5
}

func TestNewConverterErrors(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		want   error
	}{
		{"zero rate", Format{SampleRate: 0, Channels: 1}, ErrNoInputDevice},
		{"zero channels", Format{SampleRate: 48000, Channels: 0}, ErrConverterUnavailable},
		{"unknown encoding", Format{SampleRate: 48000, Channels: 1, Encoding: Encoding(9)}, ErrConverterUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewConverter(tt.format)
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestConvertPassthroughS16(t *testing.T) {
	c, err := NewConverter(Format{SampleRate: TargetRate, Channels: 1, Encoding: EncodingS16})
	if err != nil {
		t.Fatal(err)
	}
	got := c.Convert(nil, s16(16384, -16384, 0))
	want := []float32{0.5, -0.5, 0}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if !near(got[i], want[i]) {
			t.Errorf("sample %d = %f, want %f", i, got[i], want[i])
		}
	}
}

func TestConvertDownmixStereo(t *testing.T) {
	c, err := NewConverter(Format{SampleRate: TargetRate, Channels: 2, Encoding: EncodingF32})
	if err != nil {
		t.Fatal(err)
	}
	got := c.Convert(nil, f32(1, 0, -1, 0, 0.5, 0.5))
	want := []float32{0.5, -0.5, 0.5}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if !near(got[i], want[i]) {
			t.Errorf("frame %d = %f, want %f", i, got[i], want[i])
		}
	}
}

func TestConvertDownsampleLength(t *testing.T) {
	c, err := NewConverter(Format{SampleRate: 48000, Channels: 1, Encoding: EncodingF32})
	if err != nil {
		t.Fatal(err)
	}
	in := make([]float32, 48000)
	for i := range in {
		in[i] = 0.25
	}
	got := c.Convert(nil, f32(in...))
	if len(got) != TargetRate {
		t.Fatalf("len = %d, want %d", len(got), TargetRate)
	}
	for i, s := range got {
		if !near(s, 0.25) {
			t.Fatalf("sample %d = %f, want 0.25", i, s)
		}
	}
}

func TestConvertChunkedMatchesWhole(t *testing.T) {
	format := Format{SampleRate: 44100, Channels: 1, Encoding: EncodingF32}
	in := make([]float32, 5000)
	for i := range in {
		in[i] = float32(math.Sin(float64(i) / 20))
	}

	whole, _ := NewConverter(format)
	want := whole.Convert(nil, f32(in...))

	chunked, _ := NewConverter(format)
	var got []float32
	for _, size := range []int{1, 7, 512, 1000, 3480} {
		got = chunked.Convert(got, f32(in[:size]...))
		in = in[size:]
	}

	if len(got) != len(want) {
		t.Fatalf("chunked len = %d, whole len = %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(float64(got[i]-want[i])) > 1e-4 {
			t.Fatalf("sample %d: chunked %f, whole %f", i, got[i], want[i])
		}
	}
}

func TestRMS(t *testing.T) {
	if got := RMS(nil); got != 0 {
		t.Errorf("RMS(nil) = %f, want 0", got)
	}
	if got := RMS([]float32{0.5, -0.5, 0.5, -0.5}); !near(got, 0.5) {
		t.Errorf("RMS = %f, want 0.5", got)
	}
	if got := RMS([]float32{3, 4}); !near(got, float32(math.Sqrt(12.5))) {
		t.Errorf("RMS = %f, want %f", got, math.Sqrt(12.5))
	}
}
