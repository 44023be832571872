package audio

import (
	"fmt"
	"sync"
	"time"
)

type EngineConfig struct {
	Device        *DeviceInfo
	LevelInterval time.Duration
	LevelWindow   int
}

// Engine records from one capture device at a time, converting every chunk
// to TargetRate mono float32 and feeding the level meter.
type Engine struct {
	ctx      Context
	interval time.Duration
	meter    *LevelMeter
	buf      SampleBuffer

	mu       sync.Mutex
	device   *DeviceInfo
	capture  CaptureDevice
	pollStop chan struct{}
	pollDone chan struct{}
}

func NewEngine(ctx Context, cfg EngineConfig) *Engine {
	interval := cfg.LevelInterval
	if interval <= 0 {
		interval = DefaultLevelInterval
	}
	return &Engine{
		ctx:      ctx,
		interval: interval,
		meter:    NewLevelMeter(cfg.LevelWindow),
		device:   cfg.Device,
	}
}

// SetDevice selects the input used by the next Start. nil means system default.
func (e *Engine) SetDevice(d *DeviceInfo) {
	e.mu.Lock()
	e.device = d
	e.mu.Unlock()
}

func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.capture != nil {
		return nil
	}

	capture, err := e.ctx.NewCapture(e.device)
	if err != nil {
		return fmt.Errorf("open capture: %w", err)
	}
	conv, err := NewConverter(capture.Format())
	if err != nil {
		capture.Close()
		return err
	}

	e.buf.Take()
	e.meter.Reset()

	var scratch []float32
	capture.SetCallback(func(data []byte, _ uint32) {
		scratch = conv.Convert(scratch[:0], data)
		e.meter.Update(RMS(scratch))
		e.buf.Append(scratch)
	})

	if err := capture.Start(); err != nil {
		capture.ClearCallback()
		capture.Close()
		return fmt.Errorf("start capture: %w", err)
	}

	e.capture = capture
	e.pollStop = make(chan struct{})
	e.pollDone = make(chan struct{})
	go func(stop, done chan struct{}) {
		defer close(done)
		e.meter.Run(e.interval, stop)
	}(e.pollStop, e.pollDone)
	return nil
}

// Stop tears the stream down and hands back everything recorded since Start.
// Without an active recording it returns nil and does nothing.
func (e *Engine) Stop() []float32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.capture == nil {
		return nil
	}

	e.capture.ClearCallback()
	e.capture.Stop()
	e.capture.Close()
	e.capture = nil

	close(e.pollStop)
	<-e.pollDone

	return e.buf.Take()
}

func (e *Engine) Recording() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.capture != nil
}

func (e *Engine) RecentLevels() []float32 { return e.meter.Recent() }

func (e *Engine) Level() float32 { return e.meter.Current() }

func (e *Engine) DeviceName() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.capture != nil {
		return e.capture.DeviceName()
	}
	if e.device != nil {
		return e.device.Name
	}
	return "system default"
}
