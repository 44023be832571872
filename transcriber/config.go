package transcriber

import "runtime"

type WhisperConfig struct {
	Threads  uint
	Language string
}

func (c WhisperConfig) withDefaults() WhisperConfig {
	if c.Threads == 0 {
		c.Threads = uint(min(runtime.NumCPU(), 8))
	}
	if c.Language == "" {
		c.Language = "en"
	}
	return c
}
