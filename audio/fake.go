package audio

import (
	"encoding/binary"
	"errors"
	"math"
	"sync"
	"time"
)

const fakeFrameSize = 1024

// FakeContext replays fixed PCM through every capture it opens.
type FakeContext struct {
	pcm    []byte
	format Format

	// Realtime paces chunks at the format's rate instead of delivering
	// everything during Start.
	Realtime bool
	// Silence keeps feeding zero chunks once the PCM is exhausted.
	Silence bool
	// OpenErr is returned by NewCapture when set.
	OpenErr error

	opened chan *FakeCapture
}

// NewFakeContext loads a WAV file and replays it as float32 mono at the
// file's rate, followed by silence.
func NewFakeContext(wavPath string, realtime bool) (*FakeContext, error) {
	samples, rate, err := DecodeWAV(wavPath)
	if err != nil {
		return nil, err
	}
	if rate == 0 {
		return nil, errors.New("wav has no sample rate")
	}
	ctx := NewFakeContextFromSamples(samples, rate)
	ctx.Realtime = realtime
	ctx.Silence = true
	return ctx, nil
}

// NewFakeContextFromSamples replays samples once as mono float32 at rate.
func NewFakeContextFromSamples(samples []float32, rate uint32) *FakeContext {
	pcm := make([]byte, len(samples)*4)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(pcm[i*4:], math.Float32bits(s))
	}
	return NewFakeContextFromPCM(pcm, Format{SampleRate: rate, Channels: 1, Encoding: EncodingF32})
}

// NewFakeContextFromPCM replays raw interleaved PCM in the given format.
func NewFakeContextFromPCM(pcm []byte, format Format) *FakeContext {
	return &FakeContext{pcm: pcm, format: format, opened: make(chan *FakeCapture, 1)}
}

// Opened yields the most recently opened capture that has not been
// received yet.
func (f *FakeContext) Opened() <-chan *FakeCapture { return f.opened }

func (f *FakeContext) Devices() ([]DeviceInfo, error) {
	return []DeviceInfo{{ID: "fake", Name: "fake"}}, nil
}

func (f *FakeContext) Close() {}

func (f *FakeContext) NewCapture(_ *DeviceInfo) (CaptureDevice, error) {
	if f.OpenErr != nil {
		return nil, f.OpenErr
	}
	c := &FakeCapture{
		pcm:       f.pcm,
		format:    f.format,
		realtime:  f.Realtime,
		silence:   f.Silence,
		audioDone: make(chan struct{}),
	}
	if f.opened != nil {
		select {
		case <-f.opened:
		default:
		}
		f.opened <- c
	}
	return c, nil
}

type FakeCapture struct {
	pcm      []byte
	format   Format
	realtime bool
	silence  bool

	mu        sync.Mutex
	cb        DataCallback
	audioDone chan struct{}
	stopCh    chan struct{}
	feedDone  chan struct{}
}

// AudioDone is closed once the whole PCM payload has been delivered.
func (f *FakeCapture) AudioDone() <-chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.audioDone
}

func (f *FakeCapture) Format() Format { return f.format }

func (f *FakeCapture) SetCallback(cb DataCallback) {
	f.mu.Lock()
	f.cb = cb
	f.mu.Unlock()
}

func (f *FakeCapture) ClearCallback() {
	f.mu.Lock()
	f.cb = nil
	f.mu.Unlock()
}

func (f *FakeCapture) DeviceName() string { return "fake" }

func (f *FakeCapture) callback() DataCallback {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cb
}

func (f *FakeCapture) markDone() {
	f.mu.Lock()
	select {
	case <-f.audioDone:
	default:
		close(f.audioDone)
	}
	f.mu.Unlock()
}

func (f *FakeCapture) feedChunk(cb DataCallback, pos, chunkBytes int) int {
	end := min(pos+chunkBytes, len(f.pcm))
	chunk := make([]byte, end-pos)
	copy(chunk, f.pcm[pos:end])
	cb(chunk, uint32(len(chunk)/f.format.BytesPerFrame()))
	return end
}

func (f *FakeCapture) Start() error {
	if f.format.BytesPerFrame() == 0 {
		return ErrNoInputDevice
	}
	f.stopCh = make(chan struct{})
	f.feedDone = make(chan struct{})

	chunkBytes := fakeFrameSize * f.format.BytesPerFrame()
	interval := time.Millisecond
	if f.realtime && f.format.SampleRate > 0 {
		interval = time.Duration(fakeFrameSize) * time.Second / time.Duration(f.format.SampleRate)
	}

	pos := 0
	if !f.realtime {
		if cb := f.callback(); cb != nil {
			for pos < len(f.pcm) {
				pos = f.feedChunk(cb, pos, chunkBytes)
			}
		}
		f.markDone()
	}

	go func() {
		defer close(f.feedDone)
		silence := make([]byte, chunkBytes)
		for {
			select {
			case <-f.stopCh:
				return
			case <-time.After(interval):
			}

			cb := f.callback()
			if cb == nil {
				continue
			}
			if pos < len(f.pcm) {
				pos = f.feedChunk(cb, pos, chunkBytes)
				continue
			}
			f.markDone()
			if f.silence {
				cb(silence, fakeFrameSize)
			}
		}
	}()

	return nil
}

func (f *FakeCapture) Stop() {
	if f.stopCh == nil {
		return
	}
	select {
	case <-f.stopCh:
	default:
		close(f.stopCh)
	}
	<-f.feedDone
}

func (f *FakeCapture) Close() {}
