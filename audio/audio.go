package audio

import (
	"errors"
	"strings"
)

// TargetRate is the canonical sample rate handed to inference.
const TargetRate = 16000

var (
	ErrNoInputDevice        = errors.New("no audio input device found")
	ErrConverterUnavailable = errors.New("failed to create audio format converter")
)

var btKeywords = []string{
	"airpods", "beats", "bose", "wh-1000", "wf-1000",
	"sony wh-", "sony wf-",
	"jabra", "galaxy buds", "pixel buds", "powerbeats",
	"jbl ", "sennheiser momentum", "plantronics",
	"tozo", "anker soundcore", "skullcandy",
	"bluetooth", " bt ", " bt)", " bt]",
}

func IsBluetooth(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range btKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

type Encoding int

const (
	EncodingS16 Encoding = iota // little-endian signed 16-bit
	EncodingF32                 // little-endian IEEE float
)

func (e Encoding) String() string {
	switch e {
	case EncodingS16:
		return "s16"
	case EncodingF32:
		return "f32"
	}
	return "unknown"
}

// Format describes interleaved PCM as delivered by a capture device.
type Format struct {
	SampleRate uint32
	Channels   uint32
	Encoding   Encoding
}

func (f Format) BytesPerFrame() int {
	size := 2
	if f.Encoding == EncodingF32 {
		size = 4
	}
	return size * int(f.Channels)
}

type DataCallback func(data []byte, frameCount uint32)

type DeviceInfo struct {
	ID   string // opaque platform-specific identifier
	Name string
}

type Context interface {
	Devices() ([]DeviceInfo, error)
	NewCapture(device *DeviceInfo) (CaptureDevice, error)
	Close()
}

type CaptureDevice interface {
	Start() error
	Stop()
	Close()
	Format() Format
	DeviceName() string
	SetCallback(cb DataCallback)
	ClearCallback()
}
