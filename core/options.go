package agent

import (
	"context"
	"time"

	"github.com/aispirelabs/acharya-core/api"
	"github.com/aispirelabs/acharya-core/core/audio"
	"github.com/aispirelabs/acharya-core/core/events"
	"github.com/aispirelabs/acharya-core/core/realtime"
	"github.com/aispirelabs/acharya-core/core/speechtotext"
)

type SessionOption func(*Session)

// AudioDevice is the full-duplex audio surface a session drives: a capture
// side that yields raw sample frames and a playback side that queues
// synthesized audio strictly in order.
type AudioDevice interface {
	StartCapture(ctx context.Context, onSamples func(samples []float32)) error
	StopCapture() error

	Enqueue(buf []byte) error
	ClearBuffer()
	IsSpeaking() bool
	SetDrainedCallback(callback func())

	CaptureEncodingInfo() audio.EncodingInfo
	PlaybackEncodingInfo() audio.EncodingInfo
}

func WithAudioDevice(device AudioDevice) SessionOption {
	return func(s *Session) {
		s.device = device
	}
}

// RealtimeSession is a connected bidirectional voice endpoint.
type RealtimeSession interface {
	Connect(ctx context.Context, opts ...realtime.SessionOption) error
	SendAudio(pcm []byte) error
	Close() error
}

func WithRealtimeClient(client RealtimeSession) SessionOption {
	return func(s *Session) {
		s.realtime = client
	}
}

// Transcriber is an optional user-side speech-to-text stream. When set, the
// session feeds it the same audio it sends upstream and uses its speech
// events to keep the inactivity clock honest even when the realtime endpoint
// is slow to transcribe.
type Transcriber interface {
	Transcribe(ctx context.Context, opts ...speechtotext.TranscriptionOption) error
	SendAudio(audio []byte) error
	StopStream() error
}

func WithTranscriber(client Transcriber) SessionOption {
	return func(s *Session) {
		s.transcriber = client
	}
}

// FeedbackCreator submits a finished interview transcript for scoring.
type FeedbackCreator interface {
	CreateFeedback(ctx context.Context, interviewID string, transcript []api.TranscriptMessage) (*api.Feedback, error)
}

func WithFeedbackClient(client FeedbackCreator) SessionOption {
	return func(s *Session) {
		s.feedback = client
	}
}

// InterviewCreator persists the interview a generate-mode conversation
// produced.
type InterviewCreator interface {
	CreateInterview(ctx context.Context, params api.CreateInterviewParams) (*api.Interview, error)
}

func WithInterviewCreator(client InterviewCreator) SessionOption {
	return func(s *Session) {
		s.generator = client
	}
}

func WithInterview(interview *api.Interview) SessionOption {
	return func(s *Session) {
		s.interview = interview
	}
}

func WithMode(mode SessionMode) SessionOption {
	return func(s *Session) {
		s.mode = mode
	}
}

// WithMatcher overrides how assistant turns are matched against planned
// questions.
func WithMatcher(matcher Matcher) SessionOption {
	return func(s *Session) {
		s.matcher = matcher
	}
}

// WithEventHandler registers the callback all session events flow through.
// Events are delivered sequentially from the session's own goroutines; the
// handler must not block.
func WithEventHandler(handler func(event events.Event)) SessionOption {
	return func(s *Session) {
		s.eventHandler = handler
	}
}

func WithInactivityTimeout(timeout time.Duration) SessionOption {
	return func(s *Session) {
		s.inactivityTimeout = timeout
	}
}

func WithCheckInterval(interval time.Duration) SessionOption {
	return func(s *Session) {
		s.checkInterval = interval
	}
}

// WithGraceDelay sets the pause between the candidate's answer to the final
// question and the automatic end of the call.
func WithGraceDelay(delay time.Duration) SessionOption {
	return func(s *Session) {
		s.graceDelay = delay
	}
}

// WithClosingMarkers sets the connection-error substrings treated as a
// deliberate remote hangup rather than a failure. Matching is
// case-insensitive.
func WithClosingMarkers(markers ...string) SessionOption {
	return func(s *Session) {
		s.closingMarkers = markers
	}
}

func WithTargetSampleRate(rate int) SessionOption {
	return func(s *Session) {
		s.targetSampleRate = rate
	}
}
