//go:build whisper_cpp

package transcriber

import (
	"fmt"
	"io"

	whisperpkg "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"dictate/log"
)

type whisperModel struct {
	model    whisperpkg.Model
	threads  uint
	language string
}

// NewWhisperLoader loads ggml models through whisper.cpp. Contexts use the
// binding's default greedy sampling.
func NewWhisperLoader(cfg WhisperConfig) Loader {
	cfg = cfg.withDefaults()
	return func(path string) (Model, error) {
		m, err := whisperpkg.New(path)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		log.Infof("whisper: model loaded (%s, threads=%d)", path, cfg.Threads)
		return &whisperModel{model: m, threads: cfg.Threads, language: cfg.Language}, nil
	}
}

func (w *whisperModel) Transcribe(samples []float32) ([]Segment, error) {
	ctx, err := w.model.NewContext()
	if err != nil {
		return nil, fmt.Errorf("create context: %w", err)
	}
	ctx.SetThreads(w.threads)
	ctx.SetTranslate(false)
	if err := ctx.SetLanguage(w.language); err != nil {
		return nil, fmt.Errorf("set language %q: %w", w.language, err)
	}

	if err := ctx.Process(samples, nil, nil, nil); err != nil {
		return nil, fmt.Errorf("process audio: %w", err)
	}

	var segments []Segment
	for {
		seg, err := ctx.NextSegment()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("next segment: %w", err)
		}
		segments = append(segments, Segment{Text: seg.Text, Start: seg.Start, End: seg.End})
	}
	return segments, nil
}

func (w *whisperModel) Close() error {
	return w.model.Close()
}
