package transcriber

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"dictate/log"
	"dictate/metrics"
)

const SampleRate = 16000

var (
	ErrModelLoad = errors.New("model load failed")
	ErrDecode    = errors.New("decode failed")
)

type Segment struct {
	Text  string
	Start time.Duration
	End   time.Duration
}

// Model is a loaded speech model. Transcribe runs one greedy pass over
// 16 kHz mono samples and returns segments in emission order.
type Model interface {
	Transcribe(samples []float32) ([]Segment, error)
	Close() error
}

type Loader func(path string) (Model, error)

type Result struct {
	Text           string
	Segments       []Segment
	AudioSeconds   float64
	LoadDuration   time.Duration
	DecodeDuration time.Duration
	Reused         bool
}

// Engine keeps at most one model resident. A request for a different path
// closes the current model before the new one is loaded.
type Engine struct {
	load Loader

	mu       sync.Mutex
	model    Model
	resident string
}

func NewEngine(load Loader) *Engine {
	return &Engine{load: load}
}

func (e *Engine) Transcribe(ctx context.Context, samples []float32, modelPath string) (Result, error) {
	res := Result{AudioSeconds: float64(len(samples)) / SampleRate}
	if len(samples) == 0 {
		return res, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return res, err
	}

	start := time.Now()
	model, reused, err := e.acquire(modelPath)
	if err != nil {
		return res, err
	}
	res.Reused = reused
	res.LoadDuration = time.Since(start)

	if err := ctx.Err(); err != nil {
		return res, err
	}

	start = time.Now()
	segments, err := model.Transcribe(samples)
	res.DecodeDuration = time.Since(start)
	if err != nil {
		return res, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	var b strings.Builder
	for _, s := range segments {
		b.WriteString(s.Text)
	}
	res.Segments = segments
	res.Text = b.String()
	return res, nil
}

func (e *Engine) acquire(path string) (Model, bool, error) {
	if e.model != nil && e.resident == path {
		return e.model, true, nil
	}
	e.release()

	log.Infof("model_load: %s", path)
	metrics.RecordModelLoad()
	m, err := e.load(path)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrModelLoad, err)
	}
	e.model = m
	e.resident = path
	return m, false, nil
}

func (e *Engine) release() {
	if e.model == nil {
		return
	}
	if err := e.model.Close(); err != nil {
		log.Warnf("model close %s: %v", e.resident, err)
	}
	e.model = nil
	e.resident = ""
}

// Resident reports the path of the loaded model, "" when none is loaded.
func (e *Engine) Resident() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.resident
}

func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.release()
}
