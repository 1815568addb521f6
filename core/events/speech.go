package events

const (
	// KindSpeechStarted identifies the start of speech activity.
	KindSpeechStarted Kind = "speech.started"
	// KindSpeechEnded identifies the end of speech activity.
	KindSpeechEnded Kind = "speech.ended"
)

// SpeechStarted marks speech activity beginning on either side of the call.
type SpeechStarted struct{ Base }

// NewSpeechStarted creates a speech started event.
func NewSpeechStarted() SpeechStarted {
	return SpeechStarted{Base: NewBase(KindSpeechStarted)}
}

// SpeechEnded marks speech activity ending.
type SpeechEnded struct{ Base }

// NewSpeechEnded creates a speech ended event.
func NewSpeechEnded() SpeechEnded {
	return SpeechEnded{Base: NewBase(KindSpeechEnded)}
}
