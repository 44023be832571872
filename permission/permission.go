package permission

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"

	"dictate/log"
)

var (
	ErrMicrophoneDenied    = errors.New("microphone permission required")
	ErrAccessibilityDenied = errors.New("accessibility permission required for pasting text")
)

type Provider interface {
	MicrophoneAuthorized() bool
	AccessibilityAuthorized() bool
	RequestMicrophone()
	PromptAccessibility()
}

// System derives permission state from whether the OS lets us open the
// resources: an audio context that lists at least one capture device, and
// a paste injector that initialises.
type System struct {
	// CaptureDevices returns the number of capture devices visible.
	CaptureDevices func() (int, error)
	// PasteInit prepares keystroke injection.
	PasteInit func() error

	Out io.Writer

	micOnce sync.Once
	axOnce  sync.Once
}

func (s *System) MicrophoneAuthorized() bool {
	n, err := s.CaptureDevices()
	if err != nil {
		log.Warnf("microphone check: %v", err)
		return false
	}
	return n > 0
}

func (s *System) AccessibilityAuthorized() bool {
	if err := s.PasteInit(); err != nil {
		log.Warnf("accessibility check: %v", err)
		return false
	}
	return true
}

func (s *System) RequestMicrophone() {
	s.micOnce.Do(func() {
		s.prompt(ErrMicrophoneDenied, microphoneHint())
	})
}

func (s *System) PromptAccessibility() {
	s.axOnce.Do(func() {
		s.prompt(ErrAccessibilityDenied, accessibilityHint())
	})
}

func (s *System) prompt(err error, hint string) {
	log.Warnf("%v: %s", err, hint)
	out := s.Out
	if out == nil {
		out = os.Stderr
	}
	fmt.Fprintf(out, "%v\n  %s\n", err, hint)
}

func microphoneHint() string {
	switch runtime.GOOS {
	case "darwin":
		return "grant access in System Settings > Privacy & Security > Microphone"
	case "linux":
		return "check that PulseAudio or PipeWire is running and a source is available"
	default:
		return "allow microphone access for desktop apps in the system privacy settings"
	}
}

func accessibilityHint() string {
	switch runtime.GOOS {
	case "darwin":
		return "grant access in System Settings > Privacy & Security > Accessibility"
	case "linux":
		return "allow write access to /dev/uinput (sudo modprobe uinput; add a udev rule for the input group)"
	default:
		return "paste injection could not be initialised"
	}
}
