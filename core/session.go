// Package agent runs mock-interview voice calls. A Session connects a local
// audio device to a realtime voice endpoint, tracks the conversation and the
// interviewer's progress through the planned questions, and closes the call
// out with feedback submission.
package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/aispirelabs/acharya-core/api"
	"github.com/aispirelabs/acharya-core/core/audio"
	"github.com/aispirelabs/acharya-core/core/events"
	"github.com/aispirelabs/acharya-core/core/realtime"
	"github.com/aispirelabs/acharya-core/core/speechtotext"
)

type State string

const (
	StateIdle       State = "idle"
	StateConnecting State = "connecting"
	StateActive     State = "active"
	StateFinished   State = "finished"
	StateError      State = "error"
)

const (
	defaultInactivityTimeout = 10 * time.Second
	defaultCheckInterval     = 5 * time.Second
	defaultGraceDelay        = 15 * time.Second
)

type Session struct {
	ID string

	mode      SessionMode
	interview *api.Interview

	device      AudioDevice
	realtime    RealtimeSession
	transcriber Transcriber
	feedback    FeedbackCreator
	generator   InterviewCreator
	matcher     Matcher

	transcript *Transcript
	tracker    *QuestionTracker
	pipeline   *audioPipeline

	state   State
	stateMu sync.Mutex

	inactivityTimeout time.Duration
	checkInterval     time.Duration
	graceDelay        time.Duration
	closingMarkers    []string
	targetSampleRate  int

	activityMu   sync.Mutex
	lastActivity time.Time

	graceMu    sync.Mutex
	graceArmed bool
	graceTimer *time.Timer

	eventHandler func(event events.Event)

	cancel context.CancelFunc

	endMu sync.Mutex
	ended bool
}

func NewSession(opts ...SessionOption) (*Session, error) {
	s := &Session{
		ID:                uuid.NewString(),
		mode:              ModeInterview,
		state:             StateIdle,
		transcript:        &Transcript{},
		inactivityTimeout: defaultInactivityTimeout,
		checkInterval:     defaultCheckInterval,
		graceDelay:        defaultGraceDelay,
		closingMarkers:    []string{"meeting has ended"},
		targetSampleRate:  audio.TargetSampleRate,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.device == nil {
		return nil, fmt.Errorf("audio device is required")
	}
	if s.realtime == nil {
		return nil, fmt.Errorf("realtime client is required")
	}
	if s.mode == ModeInterview && s.interview == nil {
		return nil, ErrNoInterview
	}

	if s.mode == ModeInterview {
		s.tracker = NewQuestionTracker(s.interview.Questions, s.matcher)
	}
	s.pipeline = newAudioPipeline(s.device, s.realtime, s.transcriber, s.targetSampleRate)

	return s, nil
}

// Start connects the call. It returns once the connection attempt resolves;
// the call itself runs on the session's goroutines until Disconnect or a
// remote close. Valid from Idle and, for a fresh retry with a clean
// transcript, from Finished or Error.
func (s *Session) Start(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "session start")
	defer span.End()

	s.stateMu.Lock()
	switch s.state {
	case StateIdle, StateFinished, StateError:
	default:
		s.stateMu.Unlock()
		return ErrSessionAlreadyStarted
	}
	restarting := s.state != StateIdle
	s.state = StateConnecting
	s.stateMu.Unlock()

	if restarting {
		s.resetForRestart()
	}

	// A Disconnect before the first Start must not consume the teardown.
	s.endMu.Lock()
	s.ended = false
	s.endMu.Unlock()

	s.emit(events.NewCallConnecting())

	sessionCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel

	s.device.SetDrainedCallback(func() {
		s.emit(events.NewSpeechEnded())
	})

	err := s.realtime.Connect(ctx,
		realtime.WithSystemInstruction(s.systemInstruction()),
		realtime.WithResponseModalities(realtime.ModalityAudio),
		realtime.WithEncodingInfo(audio.EncodingInfo{
			SampleRate: s.targetSampleRate,
			Format:     audio.EncodingLinear16,
		}),
		realtime.WithSetupCompleteCallback(func() { s.handleConnected(sessionCtx) }),
		realtime.WithAudioCallback(s.handleAudio),
		realtime.WithTurnCallback(s.handleTurn),
		realtime.WithInterruptedCallback(s.handleInterrupted),
		realtime.WithGoAwayCallback(func() {
			logger.Warn("Realtime endpoint announced connection teardown")
		}),
		realtime.WithCloseCallback(s.handleClosed),
	)
	if err != nil {
		cancel()
		err = fmt.Errorf("failed to connect realtime session: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		s.stateMu.Lock()
		s.state = StateError
		s.stateMu.Unlock()
		s.emit(events.NewCallFailed(err))
		return err
	}

	return nil
}

// Disconnect ends the call at the user's request. Safe to call multiple
// times and from event handlers.
func (s *Session) Disconnect() {
	s.end("user", nil)
}

func (s *Session) State() State {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.state
}

func (s *Session) Mode() SessionMode { return s.mode }

// Transcript returns a copy of the finalized turns so far.
func (s *Session) Transcript() []Turn {
	return s.transcript.Snapshot()
}

// Progress reports how many planned questions have been asked. Total is
// zero in generate mode.
func (s *Session) Progress() (asked int, total int) {
	if s.tracker == nil {
		return 0, 0
	}
	return s.tracker.Index(), s.tracker.Total()
}

func (s *Session) IsSpeaking() bool {
	return s.device.IsSpeaking()
}

func (s *Session) systemInstruction() string {
	if s.mode == ModeGenerate {
		return GeneratorPrompt()
	}
	return InterviewerPrompt(s.interview.Questions)
}

func (s *Session) handleConnected(ctx context.Context) {
	s.stateMu.Lock()
	if s.state != StateConnecting {
		s.stateMu.Unlock()
		return
	}
	s.state = StateActive
	s.stateMu.Unlock()

	s.touchActivity()
	s.emit(events.NewCallStarted())

	if err := s.pipeline.Start(ctx); err != nil {
		err = fmt.Errorf("failed to start audio pipeline: %w", err)
		span := trace.SpanFromContext(ctx)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.end("", err)
		return
	}

	if s.transcriber != nil {
		err := s.transcriber.Transcribe(ctx,
			speechtotext.WithEncodingInfo(audio.EncodingInfo{
				SampleRate: s.targetSampleRate,
				Format:     audio.EncodingLinear16,
			}),
			speechtotext.WithSpeechStartedCallback(s.touchActivity),
			speechtotext.WithTranscriptCallback(func(transcript string) {
				s.handleTurn(RoleUser, transcript, true)
			}),
		)
		if err != nil {
			logger.Error("Failed to start user-side transcription", "error", err)
		}
	}

	go s.monitorInactivity(ctx)
}

func (s *Session) handleAudio(pcm []byte) {
	if !s.pipeline.IsSpeaking() {
		s.touchActivity()
		s.emit(events.NewSpeechStarted())
	}
	if err := s.pipeline.Play(pcm); err != nil {
		logger.Error("Failed to queue received audio", "error", err)
	}
}

func (s *Session) handleTurn(role string, text string, final bool) {
	if !final {
		s.emit(events.NewTranscriptInterim(role, text))
		return
	}

	s.touchActivity()
	s.transcript.Append(role, text)
	s.emit(events.NewTranscriptTurnFinal(role, text))

	if s.tracker == nil {
		return
	}

	if role == RoleAssistant && s.tracker.ObserveAssistantTurn(text) {
		s.emit(events.NewQuestionAdvanced(s.tracker.Index(), s.tracker.Total()))
		if s.tracker.Completed() {
			s.emit(events.NewQuestionsCompleted(s.tracker.Total()))
		}
	}

	// The call winds down once the candidate has answered the final
	// question; the grace delay leaves room for goodbyes.
	if role == RoleUser && s.tracker.Completed() {
		s.armGraceTimer()
	}
}

func (s *Session) armGraceTimer() {
	s.graceMu.Lock()
	defer s.graceMu.Unlock()

	if s.graceArmed {
		return
	}
	s.graceArmed = true
	s.graceTimer = time.AfterFunc(s.graceDelay, func() {
		s.end("completed", nil)
	})
}

func (s *Session) handleInterrupted() {
	wasSpeaking := s.pipeline.IsSpeaking()
	s.pipeline.Interrupt()
	if wasSpeaking {
		s.emit(events.NewSpeechEnded())
	}
}

func (s *Session) handleClosed(err error) {
	if err == nil || s.isClosingMarker(err) {
		s.end("remote", nil)
		return
	}
	s.end("", err)
}

// isClosingMarker reports whether a connection error is actually the remote
// side hanging up on purpose.
func (s *Session) isClosingMarker(err error) bool {
	message := strings.ToLower(err.Error())
	for _, marker := range s.closingMarkers {
		if strings.Contains(message, strings.ToLower(marker)) {
			return true
		}
	}
	return false
}

func (s *Session) monitorInactivity(ctx context.Context) {
	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.activityMu.Lock()
			idle := time.Since(s.lastActivity)
			s.activityMu.Unlock()

			if idle > s.inactivityTimeout {
				logger.Info("Ending call after inactivity", "idle", idle)
				s.end("inactivity", nil)
				return
			}
		}
	}
}

func (s *Session) touchActivity() {
	s.activityMu.Lock()
	s.lastActivity = time.Now()
	s.activityMu.Unlock()
}

// resetForRestart clears the previous call's conversation state so a
// restarted session begins with a clean transcript and untouched progress.
func (s *Session) resetForRestart() {
	s.transcript = &Transcript{}
	if s.mode == ModeInterview {
		s.tracker = NewQuestionTracker(s.interview.Questions, s.matcher)
	}

	s.graceMu.Lock()
	if s.graceTimer != nil {
		s.graceTimer.Stop()
		s.graceTimer = nil
	}
	s.graceArmed = false
	s.graceMu.Unlock()
}

// end runs the single shared teardown path. Every way a call can finish,
// deliberate or not, funnels through here exactly once.
func (s *Session) end(reason string, failure error) {
	s.endMu.Lock()
	if s.ended {
		s.endMu.Unlock()
		return
	}
	s.ended = true
	s.endMu.Unlock()

	s.graceMu.Lock()
	if s.graceTimer != nil {
		s.graceTimer.Stop()
	}
	s.graceMu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	if err := s.pipeline.Stop(); err != nil {
		logger.Error("Failed to stop audio pipeline", "error", err)
	}
	if s.transcriber != nil {
		if err := s.transcriber.StopStream(); err != nil {
			logger.Error("Failed to stop transcription stream", "error", err)
		}
	}
	if err := s.realtime.Close(); err != nil {
		logger.Error("Failed to close realtime session", "error", err)
	}

	s.stateMu.Lock()
	prior := s.state
	if prior == StateConnecting || prior == StateActive {
		if failure != nil {
			s.state = StateError
		} else {
			s.state = StateFinished
		}
	}
	s.stateMu.Unlock()

	if prior != StateConnecting && prior != StateActive {
		return
	}

	if failure != nil {
		s.emit(events.NewCallFailed(failure))
	} else {
		s.emit(events.NewCallEnded(reason))
	}

	// Feedback is worth attempting even after a failed call, as long as the
	// conversation produced something to assess. Runs off the caller's
	// goroutine so Disconnect never blocks on the network; a later restart
	// works on a fresh transcript and cannot disturb the snapshot.
	switch s.mode {
	case ModeInterview:
		if snapshot := s.transcript.Snapshot(); len(snapshot) > 0 {
			go s.submitFeedback(snapshot)
		}
	case ModeGenerate:
		if failure == nil {
			go s.finishGeneration(s.transcript.Snapshot())
		}
	}
}

func (s *Session) submitFeedback(snapshot []Turn) {
	if s.feedback == nil || s.interview == nil {
		return
	}

	messages := make([]api.TranscriptMessage, 0, len(snapshot))
	for _, turn := range snapshot {
		messages = append(messages, api.TranscriptMessage{Role: turn.Role, Content: turn.Text})
	}

	attempt := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		feedback, err := s.feedback.CreateFeedback(ctx, s.interview.ID, messages)
		if err != nil {
			return err
		}
		s.emit(events.NewFeedbackSubmitted(feedback.ID, s.interview.ID))
		return nil
	}

	if err := attempt(); err != nil {
		logger.Error("Failed to submit feedback", "error", err)
		s.emit(events.NewFeedbackFailed(err, attempt))
	}
}

// finishGeneration persists the interview the generator assistant produced.
// The assistant's final message carries the structured payload; if no turn
// parses, the completion event is still emitted with no interview ID.
func (s *Session) finishGeneration(snapshot []Turn) {
	generated := latestGeneratedInterview(snapshot)
	if generated == nil || s.generator == nil {
		s.emit(events.NewGenerationCompleted(""))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	interview, err := s.generator.CreateInterview(ctx, api.CreateInterviewParams{
		Role:      generated.Role,
		Type:      generated.Type,
		Level:     generated.Level,
		Questions: generated.Questions,
		Techstack: generated.Techstack,
	})
	if err != nil {
		logger.Error("Failed to persist generated interview", "error", err)
		s.emit(events.NewGenerationCompleted(""))
		return
	}
	s.emit(events.NewGenerationCompleted(interview.ID))
}

// latestGeneratedInterview scans assistant turns newest-first for a parsable
// structured payload.
func latestGeneratedInterview(snapshot []Turn) *GeneratedInterview {
	for i := len(snapshot) - 1; i >= 0; i-- {
		if snapshot[i].Role != RoleAssistant {
			continue
		}
		generated, err := ParseGeneratedInterview(snapshot[i].Text)
		if err != nil {
			continue
		}
		return generated
	}
	return nil
}

func (s *Session) emit(event events.Event) {
	if s.eventHandler != nil {
		s.eventHandler(event)
	}
}
