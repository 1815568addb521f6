// Package realtime defines the options shared by bidirectional voice session
// clients. A session streams caller audio up and receives synthesized audio
// and transcription back over a single connection.
package realtime

import "github.com/aispirelabs/acharya-core/core/audio"

type SessionOptions struct {
	SystemInstruction  string
	ResponseModalities []string

	SetupCompleteCallback func()
	AudioCallback         func(pcm []byte)
	TurnCallback          func(role string, text string, final bool)
	TurnCompleteCallback  func()
	InterruptedCallback   func()
	GoAwayCallback        func()
	CloseCallback         func(err error)

	EncodingInfo audio.EncodingInfo
}

type SessionOption func(*SessionOptions)

func WithSystemInstruction(instruction string) SessionOption {
	return func(o *SessionOptions) {
		o.SystemInstruction = instruction
	}
}

func WithResponseModalities(modalities ...string) SessionOption {
	return func(o *SessionOptions) {
		o.ResponseModalities = modalities
	}
}

func WithSetupCompleteCallback(callback func()) SessionOption {
	return func(o *SessionOptions) {
		o.SetupCompleteCallback = callback
	}
}

// WithAudioCallback registers a callback for synthesized audio chunks. Chunks
// arrive decoded, in the order the endpoint produced them.
func WithAudioCallback(callback func(pcm []byte)) SessionOption {
	return func(o *SessionOptions) {
		o.AudioCallback = callback
	}
}

// WithTurnCallback registers a callback for transcription updates. Role is
// "user" or "assistant"; final marks the last update of a turn.
func WithTurnCallback(callback func(role string, text string, final bool)) SessionOption {
	return func(o *SessionOptions) {
		o.TurnCallback = callback
	}
}

func WithTurnCompleteCallback(callback func()) SessionOption {
	return func(o *SessionOptions) {
		o.TurnCompleteCallback = callback
	}
}

// WithInterruptedCallback registers a callback invoked when the endpoint
// abandons an in-flight response because the caller started speaking.
func WithInterruptedCallback(callback func()) SessionOption {
	return func(o *SessionOptions) {
		o.InterruptedCallback = callback
	}
}

func WithGoAwayCallback(callback func()) SessionOption {
	return func(o *SessionOptions) {
		o.GoAwayCallback = callback
	}
}

// WithCloseCallback registers a callback invoked exactly once when the
// connection ends. err is nil for a clean close.
func WithCloseCallback(callback func(err error)) SessionOption {
	return func(o *SessionOptions) {
		o.CloseCallback = callback
	}
}

func WithEncodingInfo(encodingInfo audio.EncodingInfo) SessionOption {
	return func(o *SessionOptions) {
		o.EncodingInfo = encodingInfo
	}
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

const (
	ModalityAudio = "AUDIO"
	ModalityText  = "TEXT"
)
