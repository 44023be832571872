package session

import (
	"context"
	"runtime"
	"sync"
	"time"

	"dictate/filter"
	"dictate/history"
	"dictate/log"
	"dictate/metrics"
	"dictate/permission"
	"dictate/transcriber"
)

type Recorder interface {
	Start() error
	Stop() []float32
	RecentLevels() []float32
	Level() float32
}

type Transcriber interface {
	Transcribe(ctx context.Context, samples []float32, modelPath string) (transcriber.Result, error)
}

type Deliverer interface {
	Deliver(text string)
}

type History interface {
	Append(text string) (history.Record, error)
}

type Models interface {
	Location() (string, bool)
	Ready() bool
}

// Archiver keeps a copy of every non-empty recording.
type Archiver interface {
	Archive(samples []float32) error
}

type Deps struct {
	Recorder    Recorder
	Transcriber Transcriber
	Deliverer   Deliverer
	Permissions permission.Provider
	Models      Models

	// optional
	History  History
	Archiver Archiver
	Filter   func(string) string
}

type Options struct {
	PermissionTimeout time.Duration
	CancelDisplay     time.Duration
	LevelInterval     time.Duration

	// SilenceAutoStop ends a recording after 30s without speech, unless
	// IsToggle reports a hold-to-talk recording.
	SilenceAutoStop bool
	IsToggle        func() bool
	SpeechThreshold float32
	SilenceTick     time.Duration
}

func (o Options) withDefaults() Options {
	if o.PermissionTimeout <= 0 {
		o.PermissionTimeout = 3 * time.Second
	}
	if o.CancelDisplay <= 0 {
		o.CancelDisplay = 800 * time.Millisecond
	}
	if o.LevelInterval <= 0 {
		o.LevelInterval = 33 * time.Millisecond
	}
	if o.SpeechThreshold <= 0 {
		o.SpeechThreshold = DefaultSpeechThreshold
	}
	if o.SilenceTick <= 0 {
		o.SilenceTick = SilenceTick
	}
	return o
}

// Controller owns the recording lifecycle. Every state transition happens
// on the Run goroutine; Toggle, Cancel, worker results and timers all
// reach it through channels, so signals are handled strictly one at a
// time.
type Controller struct {
	deps Deps
	opts Options

	signals chan signal
	events  chan func()
	done    chan struct{}
	workers sync.WaitGroup

	mu        sync.Mutex
	status    Status
	observers []Observer

	// Run goroutine only
	phase       Phase
	gen         uint64
	lastText    string
	warning     bool
	recStart    time.Time
	levelTick   *time.Ticker
	silenceTick *time.Ticker
	silence     *SilenceMonitor
}

func New(deps Deps, opts Options) *Controller {
	if deps.Filter == nil {
		deps.Filter = filter.Clean
	}
	c := &Controller{
		deps:    deps,
		opts:    opts.withDefaults(),
		signals: make(chan signal, 8),
		events:  make(chan func(), 8),
		done:    make(chan struct{}),
	}
	c.status = Status{Message: MsgReady, Phase: Idle}
	return c
}

// Subscribe registers o for every subsequent status change.
func (c *Controller) Subscribe(o Observer) {
	c.mu.Lock()
	c.observers = append(c.observers, o)
	c.mu.Unlock()
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.status
	s.RecentLevels = append([]float32(nil), s.RecentLevels...)
	return s
}

// signals share one queue so they are handled in the order they were sent
type signal int

const (
	sigToggle signal = iota
	sigCancel
	sigStart
	sigStop
)

func (c *Controller) send(s signal) {
	select {
	case c.signals <- s:
	case <-c.done:
	}
}

// Toggle starts a recording when idle and stops it when recording. It is
// ignored while a transcription is running.
func (c *Controller) Toggle() { c.send(sigToggle) }

// Cancel discards the current recording. No-op outside Recording.
func (c *Controller) Cancel() { c.send(sigCancel) }

// Start behaves like Toggle but never stops a recording.
func (c *Controller) Start() { c.send(sigStart) }

// Stop behaves like Toggle but never starts a recording.
func (c *Controller) Stop() { c.send(sigStop) }

// Wait blocks until Run has returned and any in-flight transcription has
// finished.
func (c *Controller) Wait() {
	<-c.done
	c.workers.Wait()
}

func (c *Controller) post(f func()) {
	select {
	case c.events <- f:
	case <-c.done:
	}
}

// after runs f on the loop once d has elapsed, unless another transition
// has happened in between.
func (c *Controller) after(d time.Duration, f func()) {
	gen := c.gen
	time.AfterFunc(d, func() {
		c.post(func() {
			if c.gen == gen {
				f()
			}
		})
	})
}

func tickC(t *time.Ticker) <-chan time.Time {
	if t == nil {
		return nil
	}
	return t.C
}

func (c *Controller) Run(ctx context.Context) error {
	defer close(c.done)
	for {
		select {
		case <-ctx.Done():
			c.shutdown()
			return ctx.Err()
		case sig := <-c.signals:
			c.onSignal(ctx, sig)
		case f := <-c.events:
			f()
		case <-tickC(c.levelTick):
			c.publish(c.phase, c.currentMessage())
		case <-tickC(c.silenceTick):
			c.onSilenceTick(ctx)
		}
	}
}

func (c *Controller) shutdown() {
	if c.phase == Recording {
		c.stopTickers()
		c.deps.Recorder.Stop()
		log.Info("recording discarded on shutdown")
	}
	if c.phase == Transcribing {
		log.Warn("shutdown during transcription, result will be dropped")
	}
}

func (c *Controller) onSignal(ctx context.Context, sig signal) {
	switch sig {
	case sigToggle:
		c.onToggle(ctx)
	case sigStart:
		if c.phase != Recording && c.phase != Transcribing {
			c.startRecording()
		}
	case sigStop:
		if c.phase == Recording {
			c.stopAndTranscribe(ctx)
		}
	case sigCancel:
		c.onCancel()
	}
}

func (c *Controller) onToggle(ctx context.Context) {
	switch c.phase {
	case Recording:
		c.stopAndTranscribe(ctx)
	case Transcribing:
		log.Info("toggle ignored while transcribing")
	default:
		c.startRecording()
	}
}

func (c *Controller) startRecording() {
	c.gen++

	if !c.deps.Models.Ready() {
		c.publish(Idle, MsgModelNotReady)
		return
	}
	if !c.deps.Permissions.MicrophoneAuthorized() {
		c.deps.Permissions.RequestMicrophone()
		c.block(MsgMicPermission)
		return
	}
	if !c.deps.Permissions.AccessibilityAuthorized() {
		c.deps.Permissions.PromptAccessibility()
		c.block(MsgAccessibility)
		return
	}

	if err := c.deps.Recorder.Start(); err != nil {
		log.Errorf("capture start: %v", err)
		metrics.RecordOutcome(metrics.OutcomeError)
		c.fail(micErrorMessage(err))
		return
	}

	c.recStart = time.Now()
	c.warning = false
	c.levelTick = time.NewTicker(c.opts.LevelInterval)
	c.silence = NewSilenceMonitor(c.autoStop)
	c.silenceTick = time.NewTicker(c.opts.SilenceTick)
	log.Info("recording_start")
	c.publish(Recording, MsgRecording)
}

func (c *Controller) autoStop() bool {
	if !c.opts.SilenceAutoStop {
		return false
	}
	return c.opts.IsToggle == nil || c.opts.IsToggle()
}

// block shows a permission problem and drops back to Idle after the
// permission timeout if nothing else happened meanwhile.
func (c *Controller) block(msg string) {
	c.publish(PermissionBlocked, msg)
	c.after(c.opts.PermissionTimeout, func() {
		if c.phase == PermissionBlocked {
			c.publish(Idle, msg)
		}
	})
}

// fail publishes Error with reason, then Idle. The reason stays visible.
func (c *Controller) fail(reason string) {
	c.publish(Error, reason)
	c.publish(Idle, reason)
}

func (c *Controller) stopTickers() {
	if c.levelTick != nil {
		c.levelTick.Stop()
		c.levelTick = nil
	}
	if c.silenceTick != nil {
		c.silenceTick.Stop()
		c.silenceTick = nil
	}
	c.silence = nil
	c.warning = false
}

func (c *Controller) onCancel() {
	if c.phase != Recording {
		return
	}
	c.gen++
	c.stopTickers()
	samples := c.deps.Recorder.Stop()
	log.Infof("recording_cancelled (%d samples discarded)", len(samples))
	metrics.RecordOutcome(metrics.OutcomeCancelled)

	c.publish(Cancelled, MsgCancelled)
	c.after(c.opts.CancelDisplay, func() {
		if c.phase == Cancelled {
			c.publish(Idle, MsgReady)
		}
	})
}

func (c *Controller) onSilenceTick(ctx context.Context) {
	if c.silence == nil {
		return
	}
	ev := c.silence.Tick(c.deps.Recorder.Level() > c.opts.SpeechThreshold)
	switch ev {
	case SilenceWarn, SilenceRepeat:
		log.Infof("silence_%s", ev)
		c.warning = true
		c.publish(c.phase, MsgRecording)
	case SilenceWarnClear:
		c.warning = false
		c.publish(c.phase, MsgRecording)
	case SilenceAutoClose:
		log.Info("silence_auto_close")
		c.stopAndTranscribe(ctx)
	}
}

func (c *Controller) stopAndTranscribe(ctx context.Context) {
	c.gen++
	c.stopTickers()
	samples := c.deps.Recorder.Stop()
	audioS := float64(len(samples)) / transcriber.SampleRate
	log.Infof("recording_stop (%.1fs captured, %v wall)", audioS, time.Since(c.recStart).Round(time.Millisecond))

	if len(samples) == 0 {
		metrics.RecordOutcome(metrics.OutcomeNoAudio)
		c.publish(Idle, MsgNoAudio)
		return
	}
	path, ok := c.deps.Models.Location()
	if !ok || !c.deps.Models.Ready() {
		metrics.RecordOutcome(metrics.OutcomeError)
		c.fail(MsgModelUnavailable)
		return
	}
	metrics.RecordRecording(audioS)

	c.publish(Transcribing, MsgTranscribing)

	c.workers.Add(1)
	go func() {
		defer c.workers.Done()
		if c.deps.Archiver != nil {
			if err := c.deps.Archiver.Archive(samples); err != nil {
				log.Warnf("archive recording: %v", err)
			}
		}
		res, err := c.deps.Transcriber.Transcribe(ctx, samples, path)
		var text string
		if err == nil {
			text = c.deps.Filter(res.Text)
		}
		c.post(func() { c.finish(path, res, text, err) })
	}()
}

func (c *Controller) finish(path string, res transcriber.Result, text string, err error) {
	if err != nil {
		log.Errorf("transcription: %v", err)
		metrics.RecordOutcome(metrics.OutcomeError)
		c.fail(transcriptionErrorMessage(err))
		return
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	log.Inference(log.InferenceMetrics{
		Model:         path,
		AudioS:        res.AudioSeconds,
		LoadMs:        float64(res.LoadDuration.Microseconds()) / 1000,
		DecodeMs:      float64(res.DecodeDuration.Microseconds()) / 1000,
		Segments:      len(res.Segments),
		Chars:         len(text),
		ModelReused:   res.Reused,
		MemoryAllocMB: float64(mem.Alloc) / 1024 / 1024,
	})
	metrics.RecordInference(res.DecodeDuration)

	if text == "" {
		log.Debugf("filtered out raw transcript %q", res.Text)
		metrics.RecordOutcome(metrics.OutcomeEmpty)
		c.publish(Idle, MsgNoSpeech)
		return
	}

	c.deps.Deliverer.Deliver(text)
	if c.deps.History != nil {
		if _, err := c.deps.History.Append(text); err != nil {
			log.Warnf("history append: %v", err)
		}
	}
	log.TranscriptionText(text)
	metrics.RecordOutcome(metrics.OutcomePasted)

	c.lastText = text
	c.publish(Idle, pastedMessage(text))
}

func (c *Controller) currentMessage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status.Message
}

func (c *Controller) publish(p Phase, msg string) {
	if p != c.phase {
		log.Phase(c.phase.String(), p.String())
	}
	c.phase = p

	s := Status{
		Message:        msg,
		Phase:          p,
		IsRecording:    p == Recording,
		IsTranscribing: p == Transcribing,
		LastText:       c.lastText,
		SilenceWarning: c.warning,
	}
	if p == Recording {
		s.RecentLevels = c.deps.Recorder.RecentLevels()
	}

	c.mu.Lock()
	c.status = s
	observers := append([]Observer(nil), c.observers...)
	c.mu.Unlock()

	for _, o := range observers {
		o.StatusChanged(s)
	}
}
