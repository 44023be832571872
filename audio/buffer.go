package audio

import "sync"

// SampleBuffer accumulates converted samples from the capture callback.
type SampleBuffer struct {
	mu      sync.Mutex
	samples []float32
}

func (b *SampleBuffer) Append(chunk []float32) {
	if len(chunk) == 0 {
		return
	}
	b.mu.Lock()
	b.samples = append(b.samples, chunk...)
	b.mu.Unlock()
}

// Take returns everything accumulated so far and leaves the buffer empty.
func (b *SampleBuffer) Take() []float32 {
	b.mu.Lock()
	s := b.samples
	b.samples = nil
	b.mu.Unlock()
	return s
}

func (b *SampleBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.samples)
}
