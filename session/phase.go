package session

import "fmt"

type Phase int

const (
	Idle Phase = iota
	Recording
	Transcribing
	Cancelled
	PermissionBlocked
	Error
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Recording:
		return "recording"
	case Transcribing:
		return "transcribing"
	case Cancelled:
		return "cancelled"
	case PermissionBlocked:
		return "permission_blocked"
	case Error:
		return "error"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Status is the read-only projection published to observers.
type Status struct {
	Message        string
	Phase          Phase
	IsRecording    bool
	IsTranscribing bool
	RecentLevels   []float32
	LastText       string
	SilenceWarning bool
}

// Observer receives every published status on the controller goroutine.
// Implementations must not block.
type Observer interface {
	StatusChanged(Status)
}

type ObserverFunc func(Status)

func (f ObserverFunc) StatusChanged(s Status) { f(s) }

const (
	MsgReady            = "Ready"
	MsgRecording        = "Recording..."
	MsgModelNotReady    = "Model not downloaded yet"
	MsgModelUnavailable = "Model not available"
	MsgMicPermission    = "Microphone permission required"
	MsgAccessibility    = "Accessibility permission required for pasting text"
	MsgCancelled        = "Recording cancelled"
	MsgNoAudio          = "No audio captured"
	MsgTranscribing     = "Transcribing..."
	MsgNoSpeech         = "No speech detected"
	previewRunes        = 50
)

func pastedMessage(text string) string {
	r := []rune(text)
	if len(r) > previewRunes {
		return "Pasted: " + string(r[:previewRunes]) + "..."
	}
	return "Pasted: " + text
}

func micErrorMessage(err error) string {
	return "Mic error: " + err.Error()
}

func transcriptionErrorMessage(err error) string {
	return "Transcription error: " + err.Error()
}
