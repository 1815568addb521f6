package agent

import "github.com/aispirelabs/acharya-core/core/events"

// Callbacks maps session events onto plain callbacks for consumers that do
// not want to type-switch on the events package themselves. Unset callbacks
// are skipped.
type Callbacks struct {
	OnCallStarted func()
	OnCallEnded   func(reason string)
	OnCallFailed  func(err error)

	OnTranscript        func(role string, text string)
	OnInterimTranscript func(role string, text string)

	OnSpeechStart func()
	OnSpeechEnd   func()

	OnQuestionProgress func(asked int, total int)

	OnFeedbackSubmitted  func(feedbackID string)
	OnFeedbackFailed     func(err error, retry func() error)
	OnGenerationComplete func(interviewID string)
}

// WithCallbacks installs a callback-bundle event handler. Mutually exclusive
// with WithEventHandler; whichever is applied last wins.
func WithCallbacks(callbacks Callbacks) SessionOption {
	return func(s *Session) {
		s.eventHandler = callbacks.handle
	}
}

func (c Callbacks) handle(event events.Event) {
	switch event := event.(type) {
	case events.CallStarted:
		if c.OnCallStarted != nil {
			c.OnCallStarted()
		}
	case events.CallEnded:
		if c.OnCallEnded != nil {
			c.OnCallEnded(event.Reason)
		}
	case events.CallFailed:
		if c.OnCallFailed != nil {
			c.OnCallFailed(event.Err)
		}
	case events.TranscriptTurnFinal:
		if c.OnTranscript != nil {
			c.OnTranscript(event.Role, event.Text)
		}
	case events.TranscriptInterim:
		if c.OnInterimTranscript != nil {
			c.OnInterimTranscript(event.Role, event.Text)
		}
	case events.SpeechStarted:
		if c.OnSpeechStart != nil {
			c.OnSpeechStart()
		}
	case events.SpeechEnded:
		if c.OnSpeechEnd != nil {
			c.OnSpeechEnd()
		}
	case events.QuestionAdvanced:
		if c.OnQuestionProgress != nil {
			c.OnQuestionProgress(event.Index, event.Total)
		}
	case events.FeedbackSubmitted:
		if c.OnFeedbackSubmitted != nil {
			c.OnFeedbackSubmitted(event.FeedbackID)
		}
	case events.FeedbackFailed:
		if c.OnFeedbackFailed != nil {
			c.OnFeedbackFailed(event.Err, event.Retry)
		}
	case events.GenerationCompleted:
		if c.OnGenerationComplete != nil {
			c.OnGenerationComplete(event.InterviewID)
		}
	}
}
