//go:build linux

package clipboard

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"
)

// linux/uinput.h
const (
	uiSetEvbit  = 0x40045564
	uiSetKeybit = 0x40045565
	uiDevCreate = 0x5501
)

// linux/input-event-codes.h
const (
	evSyn = 0x00
	evKey = 0x01

	keyLeftCtrl = 29
	keyV        = 47

	busUSB = 0x03
)

const deviceName = "dictate-paste"

type inputEvent struct {
	Time  syscall.Timeval
	Type  uint16
	Code  uint16
	Value int32
}

type inputID struct {
	Bustype uint16
	Vendor  uint16
	Product uint16
	Version uint16
}

type uinputUserDev struct {
	Name         [80]byte
	ID           inputID
	FfEffectsMax uint32
	Absmax       [64]int32
	Absmin       [64]int32
	Absfuzz      [64]int32
	Absflat      [64]int32
}

var (
	dev     *os.File
	devOnce sync.Once
	devErr  error
)

func uinputPath() (string, error) {
	for _, p := range []string{"/dev/uinput", "/dev/input/uinput"} {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", errors.New("uinput device not found, try: sudo modprobe uinput")
}

func ioctl(f *os.File, req, arg uintptr) error {
	if _, _, errno := syscall.Syscall(syscall.SYS_IOCTL, f.Fd(), req, arg); errno != 0 {
		return errno
	}
	return nil
}

func createDevice() (*os.File, error) {
	path, err := uinputPath()
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|syscall.O_NONBLOCK, os.ModeDevice)
	if err != nil {
		return nil, err
	}
	setup := func() error {
		if err := ioctl(f, uiSetEvbit, evKey); err != nil {
			return err
		}
		if err := ioctl(f, uiSetEvbit, evSyn); err != nil {
			return err
		}
		// A full key range makes udev classify the device as a keyboard.
		for k := uintptr(0); k < 256; k++ {
			if err := ioctl(f, uiSetKeybit, k); err != nil {
				return err
			}
		}
		var d uinputUserDev
		copy(d.Name[:], deviceName)
		d.ID = inputID{Bustype: busUSB, Vendor: 0x1234, Product: 0x5679, Version: 1}
		if err := binary.Write(f, binary.LittleEndian, &d); err != nil {
			return err
		}
		return ioctl(f, uiDevCreate, 0)
	}
	if err := setup(); err != nil {
		f.Close()
		return nil, err
	}
	// compositor needs a moment to pick up the new device
	time.Sleep(200 * time.Millisecond)
	return f, nil
}

// Init creates the virtual keyboard used for paste injection. Failure
// usually means the user lacks write access to /dev/uinput.
func Init() error {
	devOnce.Do(func() {
		dev, devErr = createDevice()
	})
	return devErr
}

func emit(typ, code uint16, value int32) error {
	if err := binary.Write(dev, binary.LittleEndian, &inputEvent{Type: typ, Code: code, Value: value}); err != nil {
		return err
	}
	return binary.Write(dev, binary.LittleEndian, &inputEvent{Type: evSyn})
}

// Paste sends Ctrl+V: modifier down, key down, key up, modifier up.
func Paste() error {
	if err := Init(); err != nil {
		return err
	}
	steps := []struct {
		code  uint16
		value int32
	}{
		{keyLeftCtrl, 1},
		{keyV, 1},
		{keyV, 0},
		{keyLeftCtrl, 0},
	}
	for i, s := range steps {
		if err := emit(evKey, s.code, s.value); err != nil {
			return err
		}
		if i < len(steps)-1 {
			time.Sleep(5 * time.Millisecond)
		}
	}
	return nil
}

func findEventNode() (string, error) {
	entries, err := os.ReadDir("/sys/class/input")
	if err != nil {
		return "", fmt.Errorf("cannot scan input devices: %w", err)
	}
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), "event") {
			continue
		}
		data, err := os.ReadFile(filepath.Join("/sys/class/input", e.Name(), "device", "name"))
		if err != nil {
			continue
		}
		if strings.TrimSpace(string(data)) == deviceName {
			return filepath.Join("/dev/input", e.Name()), nil
		}
	}
	return "", fmt.Errorf("%s evdev device not found", deviceName)
}

// Verify sends one Ctrl+V and reads it back from the kernel input layer.
func Verify() (string, error) {
	if err := Init(); err != nil {
		return "", fmt.Errorf("uinput init: %w", err)
	}
	node, err := findEventNode()
	if err != nil {
		return "", err
	}
	f, err := os.Open(node)
	if err != nil {
		return "", fmt.Errorf("cannot open %s: %w", node, err)
	}
	defer f.Close()

	if err := Paste(); err != nil {
		return "", fmt.Errorf("paste send: %w", err)
	}

	type seen struct {
		ctrl, v bool
		err     error
	}
	ch := make(chan seen, 1)
	go func() {
		var s seen
		buf := make([]byte, 24*32)
		n, err := f.Read(buf)
		if err != nil {
			s.err = err
			ch <- s
			return
		}
		for i := 0; i+24 <= n; i += 24 {
			if binary.LittleEndian.Uint16(buf[i+16:]) != evKey {
				continue
			}
			switch binary.LittleEndian.Uint16(buf[i+18:]) {
			case keyLeftCtrl:
				s.ctrl = true
			case keyV:
				s.v = true
			}
		}
		ch <- s
	}()

	select {
	case s := <-ch:
		if s.err != nil {
			return "", fmt.Errorf("reading events: %w", s.err)
		}
		if !s.ctrl || !s.v {
			return "", fmt.Errorf("missing events (ctrl=%v, v=%v)", s.ctrl, s.v)
		}
		return "Ctrl+V keystroke verified via " + node, nil
	case <-time.After(500 * time.Millisecond):
		return "", errors.New("timed out waiting for keystroke events")
	}
}
