package transcriber

import (
	"sync"
)

// FakeModel returns scripted segments. Err, when set, fails every call.
type FakeModel struct {
	Segments []Segment
	Err      error

	mu     sync.Mutex
	calls  int
	closed bool
	last   []float32
}

func (m *FakeModel) Transcribe(samples []float32) ([]Segment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.last = samples
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Segments, nil
}

func (m *FakeModel) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

func (m *FakeModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *FakeModel) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *FakeModel) LastSamples() []float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

// FakeLoader hands out one FakeModel per load and records the order of
// load and close events.
type FakeLoader struct {
	// Text becomes the single segment of every model the loader creates.
	Text      string
	LoadErr   error
	DecodeErr error

	mu     sync.Mutex
	loads  []string
	models []*FakeModel
	events []string
}

func NewFakeLoader(text string) *FakeLoader {
	return &FakeLoader{Text: text}
}

func (l *FakeLoader) Load(path string) (Model, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loads = append(l.loads, path)
	l.events = append(l.events, "load "+path)
	if l.LoadErr != nil {
		return nil, l.LoadErr
	}
	m := &FakeModel{Err: l.DecodeErr}
	if l.Text != "" {
		m.Segments = []Segment{{Text: l.Text}}
	}
	l.models = append(l.models, m)
	return &trackedModel{FakeModel: m, loader: l, path: path}, nil
}

func (l *FakeLoader) Loads() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.loads...)
}

func (l *FakeLoader) Models() []*FakeModel {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*FakeModel(nil), l.models...)
}

func (l *FakeLoader) Events() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

type trackedModel struct {
	*FakeModel
	loader *FakeLoader
	path   string
}

func (t *trackedModel) Close() error {
	t.loader.mu.Lock()
	t.loader.events = append(t.loader.events, "close "+t.path)
	t.loader.mu.Unlock()
	return t.FakeModel.Close()
}
