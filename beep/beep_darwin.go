//go:build darwin

package beep

import (
	"encoding/binary"
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"
)

var (
	malgoCtx *malgo.AllocatedContext
	device   *malgo.Device
	initOnce sync.Once

	// read from the realtime callback
	current atomic.Pointer[[]byte]
	pos     atomic.Uint32
	playMu  sync.Mutex
)

func initDevice() error {
	config := malgo.DefaultDeviceConfig(malgo.Playback)
	config.Playback.Format = malgo.FormatS16
	config.Playback.Channels = 1
	config.SampleRate = sampleRate

	var err error
	device, err = malgo.InitDevice(malgoCtx.Context, config, malgo.DeviceCallbacks{Data: fill})
	return err
}

func initSound() {
	var err error
	malgoCtx, err = malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return
	}
	if err := initDevice(); err != nil {
		malgoCtx.Uninit()
		malgoCtx = nil
	}
}

func fill(out, _ []byte, frameCount uint32) {
	want := frameCount * 2
	clear(out[:want])
	buf := current.Load()
	if buf == nil {
		return
	}
	p := pos.Load()
	n := min(want, uint32(len(*buf))-p)
	if n == 0 {
		current.Store(nil)
		return
	}
	copy(out[:n], (*buf)[p:p+n])
	pos.Store(p + n)
}

func play(samples []int16) {
	initOnce.Do(initSound)
	if malgoCtx == nil {
		return
	}
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}

	playMu.Lock()
	defer playMu.Unlock()
	if device == nil {
		return
	}
	device.Stop()
	pos.Store(0)
	current.Store(&buf)
	if err := device.Start(); err != nil {
		// device goes stale across sleep/wake; rebuild once
		device.Uninit()
		if err := initDevice(); err != nil {
			current.Store(nil)
			return
		}
		if err := device.Start(); err != nil {
			current.Store(nil)
		}
	}
}
