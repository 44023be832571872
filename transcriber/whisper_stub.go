//go:build !whisper_cpp

package transcriber

import "errors"

var errNoBackend = errors.New("built without whisper_cpp (rebuild with -tags whisper_cpp)")

// NewWhisperLoader returns a loader that always fails; the binary was built
// without the whisper.cpp bindings.
func NewWhisperLoader(cfg WhisperConfig) Loader {
	return func(string) (Model, error) {
		return nil, errNoBackend
	}
}
