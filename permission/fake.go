package permission

import "sync"

// Fake reports fixed permission state. A microphone request grants the
// microphone when GrantOnRequest is set.
type Fake struct {
	mu             sync.Mutex
	Mic            bool
	Accessibility  bool
	GrantOnRequest bool

	MicRequests int
	AxPrompts   int
}

func (f *Fake) MicrophoneAuthorized() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Mic
}

func (f *Fake) AccessibilityAuthorized() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Accessibility
}

func (f *Fake) RequestMicrophone() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.MicRequests++
	if f.GrantOnRequest {
		f.Mic = true
	}
}

func (f *Fake) PromptAccessibility() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.AxPrompts++
}

func (f *Fake) Counts() (mic, ax int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.MicRequests, f.AxPrompts
}

func (f *Fake) Set(mic, accessibility bool) {
	f.mu.Lock()
	f.Mic, f.Accessibility = mic, accessibility
	f.mu.Unlock()
}
