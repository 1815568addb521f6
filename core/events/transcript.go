package events

const (
	// KindTranscriptTurnFinal identifies a finalized transcript turn.
	KindTranscriptTurnFinal Kind = "transcript.turn_final"
	// KindTranscriptInterim identifies mutable interim utterance text.
	KindTranscriptInterim Kind = "transcript.interim"
)

// TranscriptTurnFinal carries a finalized turn appended to the transcript.
type TranscriptTurnFinal struct {
	Base
	Role string
	Text string
}

// NewTranscriptTurnFinal creates a finalized turn event.
func NewTranscriptTurnFinal(role, text string) TranscriptTurnFinal {
	return TranscriptTurnFinal{Base: NewBase(KindTranscriptTurnFinal), Role: role, Text: text}
}

// TranscriptInterim carries the mutable interim text of the in-flight
// utterance.
type TranscriptInterim struct {
	Base
	Role string
	Text string
}

// NewTranscriptInterim creates an interim transcript event.
func NewTranscriptInterim(role, text string) TranscriptInterim {
	return TranscriptInterim{Base: NewBase(KindTranscriptInterim), Role: role, Text: text}
}
