package audio

import (
	"encoding/binary"
	"math"
)

// Converter turns native capture chunks into TargetRate mono float32.
// It keeps the resampler phase and the previous chunk's last sample so
// consecutive chunks interpolate as one continuous signal. Not safe for
// concurrent use; a capture callback owns it.
type Converter struct {
	format Format
	step   float64 // input frames consumed per output frame
	pos    float64 // next output position, 0 = prev when primed
	prev   float32
	primed bool
	mono   []float32
}

func NewConverter(f Format) (*Converter, error) {
	if f.SampleRate == 0 {
		return nil, ErrNoInputDevice
	}
	if f.Channels == 0 {
		return nil, ErrConverterUnavailable
	}
	switch f.Encoding {
	case EncodingS16, EncodingF32:
	default:
		return nil, ErrConverterUnavailable
	}
	return &Converter{
		format: f,
		step:   float64(f.SampleRate) / TargetRate,
	}, nil
}

// Convert appends the converted chunk to dst and returns it.
func (c *Converter) Convert(dst []float32, data []byte) []float32 {
	c.mono = c.downmix(c.mono[:0], data)
	if c.format.SampleRate == TargetRate {
		return append(dst, c.mono...)
	}
	return c.resample(dst, c.mono)
}

func (c *Converter) downmix(dst []float32, data []byte) []float32 {
	channels := int(c.format.Channels)
	frameSize := c.format.BytesPerFrame()
	frames := len(data) / frameSize
	for i := 0; i < frames; i++ {
		frame := data[i*frameSize:]
		var sum float32
		for ch := 0; ch < channels; ch++ {
			sum += c.sample(frame, ch)
		}
		dst = append(dst, sum/float32(channels))
	}
	return dst
}

func (c *Converter) sample(frame []byte, ch int) float32 {
	if c.format.Encoding == EncodingF32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(frame[ch*4:]))
	}
	return float32(int16(binary.LittleEndian.Uint16(frame[ch*2:]))) / 32768
}

func (c *Converter) resample(dst, mono []float32) []float32 {
	offset := 0
	if c.primed {
		offset = 1
	}
	n := len(mono) + offset
	if n == 0 {
		return dst
	}
	at := func(i int) float32 {
		if i < offset {
			return c.prev
		}
		return mono[i-offset]
	}

	last := float64(n - 1)
	for c.pos <= last {
		i0 := int(c.pos)
		s0 := at(i0)
		s1 := s0
		if i0+1 < n {
			s1 = at(i0 + 1)
		}
		frac := float32(c.pos - float64(i0))
		dst = append(dst, s0+(s1-s0)*frac)
		c.pos += c.step
	}

	c.prev = at(n - 1)
	c.pos -= last
	c.primed = true
	return dst
}

// Reset drops the carried resampler state.
func (c *Converter) Reset() {
	c.pos = 0
	c.prev = 0
	c.primed = false
}

// RMS is the root mean square of the chunk, 0 for an empty chunk.
func RMS(samples []float32) float32 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return float32(math.Sqrt(sum / float64(len(samples))))
}
