package agent

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aispirelabs/acharya-core/api"
	"github.com/aispirelabs/acharya-core/core/audio"
	"github.com/aispirelabs/acharya-core/core/events"
	"github.com/aispirelabs/acharya-core/core/realtime"
	"github.com/aispirelabs/acharya-core/core/speechtotext"
)

type fakeDevice struct {
	mu        sync.Mutex
	onSamples func(samples []float32)
	queued    [][]byte
	speaking  bool
	onDrained func()
	stopped   bool
}

func (d *fakeDevice) StartCapture(_ context.Context, onSamples func(samples []float32)) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onSamples = onSamples
	return nil
}

func (d *fakeDevice) StopCapture() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	return nil
}

func (d *fakeDevice) Enqueue(buf []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.queued = append(d.queued, buf)
	d.speaking = true
	return nil
}

func (d *fakeDevice) ClearBuffer() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.queued = nil
	d.speaking = false
}

func (d *fakeDevice) IsSpeaking() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.speaking
}

func (d *fakeDevice) SetDrainedCallback(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onDrained = callback
}

func (d *fakeDevice) CaptureEncodingInfo() audio.EncodingInfo {
	return audio.EncodingInfo{SampleRate: 48000, Format: audio.EncodingLinear16}
}

func (d *fakeDevice) PlaybackEncodingInfo() audio.EncodingInfo {
	return audio.EncodingInfo{SampleRate: 24000, Format: audio.EncodingLinear16}
}

type fakeRealtime struct {
	mu         sync.Mutex
	options    realtime.SessionOptions
	sent       [][]byte
	closeCalls int
	connectErr error
}

func (r *fakeRealtime) Connect(_ context.Context, opts ...realtime.SessionOption) error {
	if r.connectErr != nil {
		return r.connectErr
	}

	options := realtime.SessionOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	r.mu.Lock()
	r.options = options
	r.mu.Unlock()
	return nil
}

func (r *fakeRealtime) SendAudio(pcm []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, pcm)
	return nil
}

func (r *fakeRealtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closeCalls++
	return nil
}

func (r *fakeRealtime) callbacks() realtime.SessionOptions {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.options
}

type fakeTranscriber struct {
	mu      sync.Mutex
	options speechtotext.TranscriptionOptions
	sent    [][]byte
	started bool
	stopped bool
}

func (f *fakeTranscriber) Transcribe(_ context.Context, opts ...speechtotext.TranscriptionOption) error {
	options := speechtotext.TranscriptionOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.options = options
	f.started = true
	return nil
}

func (f *fakeTranscriber) SendAudio(audio []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, audio)
	return nil
}

func (f *fakeTranscriber) StopStream() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
	return nil
}

type fakeFeedback struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeFeedback) CreateFeedback(_ context.Context, interviewID string, _ []api.TranscriptMessage) (*api.Feedback, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &api.Feedback{ID: "fb-1", InterviewID: interviewID}, nil
}

func (f *fakeFeedback) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeInterviewCreator struct {
	mu     sync.Mutex
	params []api.CreateInterviewParams
	err    error
}

func (f *fakeInterviewCreator) CreateInterview(_ context.Context, params api.CreateInterviewParams) (*api.Interview, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.params = append(f.params, params)
	if f.err != nil {
		return nil, f.err
	}
	return &api.Interview{ID: "iv-9", Role: params.Role}, nil
}

type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) record(event events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *eventRecorder) kinds() []events.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]events.Kind, 0, len(r.events))
	for _, event := range r.events {
		kinds = append(kinds, event.Kind())
	}
	return kinds
}

func (r *eventRecorder) count(kind events.Kind) int {
	count := 0
	for _, recorded := range r.kinds() {
		if recorded == kind {
			count++
		}
	}
	return count
}

func (r *eventRecorder) find(kind events.Kind) events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, event := range r.events {
		if event.Kind() == kind {
			return event
		}
	}
	return nil
}

func waitFor(t *testing.T, condition func() bool, message string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", message)
}

func newTestSession(t *testing.T, opts ...SessionOption) (*Session, *fakeDevice, *fakeRealtime, *eventRecorder) {
	t.Helper()

	device := &fakeDevice{}
	rt := &fakeRealtime{}
	recorder := &eventRecorder{}

	base := []SessionOption{
		WithAudioDevice(device),
		WithRealtimeClient(rt),
		WithInterview(&api.Interview{
			ID:        "iv-1",
			Role:      "Backend Engineer",
			Questions: []string{"Tell me about yourself", "Describe a hard bug you fixed"},
		}),
		WithEventHandler(recorder.record),
	}

	session, err := NewSession(append(base, opts...)...)
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	return session, device, rt, recorder
}

func startActive(t *testing.T, session *Session, rt *fakeRealtime) {
	t.Helper()
	if err := session.Start(context.Background()); err != nil {
		t.Fatalf("failed to start session: %v", err)
	}
	rt.callbacks().SetupCompleteCallback()
	if got := session.State(); got != StateActive {
		t.Fatalf("expected active state, got %s", got)
	}
}

func TestNewSessionRequiresInterviewInInterviewMode(t *testing.T) {
	_, err := NewSession(
		WithAudioDevice(&fakeDevice{}),
		WithRealtimeClient(&fakeRealtime{}),
	)
	if !errors.Is(err, ErrNoInterview) {
		t.Fatalf("expected ErrNoInterview, got %v", err)
	}
}

func TestStartTransitionsThroughConnectingToActive(t *testing.T) {
	session, _, rt, recorder := newTestSession(t)

	if err := session.Start(context.Background()); err != nil {
		t.Fatalf("failed to start session: %v", err)
	}
	if got := session.State(); got != StateConnecting {
		t.Fatalf("expected connecting state, got %s", got)
	}

	rt.callbacks().SetupCompleteCallback()

	if got := session.State(); got != StateActive {
		t.Fatalf("expected active state, got %s", got)
	}
	kinds := recorder.kinds()
	if len(kinds) < 2 || kinds[0] != events.KindCallConnecting || kinds[1] != events.KindCallStarted {
		t.Fatalf("unexpected event order: %v", kinds)
	}

	if err := session.Start(context.Background()); !errors.Is(err, ErrSessionAlreadyStarted) {
		t.Fatalf("expected ErrSessionAlreadyStarted, got %v", err)
	}
}

func TestStartFailsWhenConnectFails(t *testing.T) {
	session, _, rt, recorder := newTestSession(t)
	rt.connectErr = errors.New("dial failed")

	if err := session.Start(context.Background()); err == nil {
		t.Fatalf("expected start to fail")
	}
	if got := session.State(); got != StateError {
		t.Fatalf("expected error state, got %s", got)
	}
	if recorder.count(events.KindCallFailed) != 1 {
		t.Fatalf("expected a call-failed event, got %v", recorder.kinds())
	}
}

func TestCapturedAudioIsDownsampledAndForwarded(t *testing.T) {
	session, device, rt, _ := newTestSession(t)
	startActive(t, session, rt)

	// 48kHz capture frame of 6 samples downsamples 3:1 to 2 samples (4 bytes).
	device.onSamples([]float32{0.1, 0.1, 0.1, 0.2, 0.2, 0.2})

	rt.mu.Lock()
	defer rt.mu.Unlock()
	if len(rt.sent) != 1 {
		t.Fatalf("expected one forwarded chunk, got %d", len(rt.sent))
	}
	if len(rt.sent[0]) != 4 {
		t.Fatalf("expected 2 PCM16 samples (4 bytes), got %d bytes", len(rt.sent[0]))
	}
}

func TestReceivedAudioIsQueuedWithSpeechEvents(t *testing.T) {
	session, device, rt, recorder := newTestSession(t)
	startActive(t, session, rt)

	rt.callbacks().AudioCallback([]byte{1, 2})
	rt.callbacks().AudioCallback([]byte{3, 4})

	if recorder.count(events.KindSpeechStarted) != 1 {
		t.Fatalf("expected a single speech-started event, got %v", recorder.kinds())
	}
	if !session.IsSpeaking() {
		t.Fatalf("expected session speaking while audio queued")
	}

	device.mu.Lock()
	queued := len(device.queued)
	onDrained := device.onDrained
	device.queued = nil
	device.speaking = false
	device.mu.Unlock()
	if queued != 2 {
		t.Fatalf("expected both chunks queued in order, got %d", queued)
	}

	onDrained()
	if recorder.count(events.KindSpeechEnded) != 1 {
		t.Fatalf("expected a speech-ended event after drain, got %v", recorder.kinds())
	}
}

func TestInterruptionClearsPlayback(t *testing.T) {
	session, device, rt, recorder := newTestSession(t)
	startActive(t, session, rt)

	rt.callbacks().AudioCallback([]byte{1, 2})
	rt.callbacks().InterruptedCallback()

	if session.IsSpeaking() {
		t.Fatalf("expected playback cleared after interruption")
	}
	device.mu.Lock()
	queued := len(device.queued)
	device.mu.Unlock()
	if queued != 0 {
		t.Fatalf("expected queue cleared, got %d buffered chunks", queued)
	}
	if recorder.count(events.KindSpeechEnded) != 1 {
		t.Fatalf("expected speech-ended on interruption, got %v", recorder.kinds())
	}
}

func TestFinalTurnsRecordTranscriptAndProgress(t *testing.T) {
	session, _, rt, recorder := newTestSession(t)
	startActive(t, session, rt)

	callbacks := rt.callbacks()
	callbacks.TurnCallback(RoleAssistant, "Tell me about yourself?", true)
	callbacks.TurnCallback(RoleUser, "I am a backend engineer.", true)

	turns := session.Transcript()
	if len(turns) != 2 {
		t.Fatalf("expected 2 transcript turns, got %d", len(turns))
	}

	asked, total := session.Progress()
	if asked != 1 || total != 2 {
		t.Fatalf("expected progress 1/2, got %d/%d", asked, total)
	}

	advanced, ok := recorder.find(events.KindQuestionAdvanced).(events.QuestionAdvanced)
	if !ok {
		t.Fatalf("expected a question-advanced event, got %v", recorder.kinds())
	}
	if advanced.Index != 1 || advanced.Total != 2 {
		t.Fatalf("unexpected question-advanced payload: %+v", advanced)
	}
	if recorder.count(events.KindQuestionsCompleted) != 0 {
		t.Fatalf("expected no completion event yet, got %v", recorder.kinds())
	}
}

func TestInterimTurnsDoNotTouchTranscript(t *testing.T) {
	session, _, rt, recorder := newTestSession(t)
	startActive(t, session, rt)

	rt.callbacks().TurnCallback(RoleUser, "I am a back", false)

	if len(session.Transcript()) != 0 {
		t.Fatalf("expected no transcript turns from interim updates")
	}
	if recorder.count(events.KindTranscriptInterim) != 1 {
		t.Fatalf("expected an interim event, got %v", recorder.kinds())
	}
}

func TestGraceDelayEndsCallAfterLastAnswer(t *testing.T) {
	session, _, rt, recorder := newTestSession(t, WithGraceDelay(20*time.Millisecond))
	startActive(t, session, rt)

	callbacks := rt.callbacks()
	callbacks.TurnCallback(RoleAssistant, "Tell me about yourself?", true)
	callbacks.TurnCallback(RoleUser, "Sure.", true)
	callbacks.TurnCallback(RoleAssistant, "Describe a hard bug you fixed?", true)
	if recorder.count(events.KindQuestionsCompleted) != 1 {
		t.Fatalf("expected completion event, got %v", recorder.kinds())
	}

	callbacks.TurnCallback(RoleUser, "It was a race condition.", true)
	// A second user turn inside the grace window must not rearm the timer.
	callbacks.TurnCallback(RoleUser, "Anything else?", true)

	waitFor(t, func() bool { return session.State() == StateFinished }, "grace delay to end the call")

	ended, ok := recorder.find(events.KindCallEnded).(events.CallEnded)
	if !ok {
		t.Fatalf("expected a call-ended event, got %v", recorder.kinds())
	}
	if ended.Reason != "completed" {
		t.Fatalf("expected reason completed, got %q", ended.Reason)
	}
	if recorder.count(events.KindCallEnded) != 1 {
		t.Fatalf("expected exactly one call-ended event, got %v", recorder.kinds())
	}
}

func TestInactivityEndsCall(t *testing.T) {
	session, _, rt, recorder := newTestSession(t,
		WithInactivityTimeout(30*time.Millisecond),
		WithCheckInterval(10*time.Millisecond),
	)
	startActive(t, session, rt)

	waitFor(t, func() bool { return session.State() == StateFinished }, "inactivity to end the call")

	ended, ok := recorder.find(events.KindCallEnded).(events.CallEnded)
	if !ok {
		t.Fatalf("expected a call-ended event, got %v", recorder.kinds())
	}
	if ended.Reason != "inactivity" {
		t.Fatalf("expected reason inactivity, got %q", ended.Reason)
	}
}

func TestDisconnectIsIdempotentAndSubmitsFeedback(t *testing.T) {
	feedback := &fakeFeedback{}
	session, device, rt, recorder := newTestSession(t, WithFeedbackClient(feedback))
	startActive(t, session, rt)

	rt.callbacks().TurnCallback(RoleAssistant, "Tell me about yourself?", true)

	session.Disconnect()
	session.Disconnect()

	if got := session.State(); got != StateFinished {
		t.Fatalf("expected finished state, got %s", got)
	}
	if recorder.count(events.KindCallEnded) != 1 {
		t.Fatalf("expected one call-ended event, got %v", recorder.kinds())
	}
	waitFor(t, func() bool { return recorder.find(events.KindFeedbackSubmitted) != nil }, "feedback submission")
	if feedback.callCount() != 1 {
		t.Fatalf("expected one feedback submission, got %d", feedback.callCount())
	}
	submitted, ok := recorder.find(events.KindFeedbackSubmitted).(events.FeedbackSubmitted)
	if !ok {
		t.Fatalf("expected feedback-submitted event, got %v", recorder.kinds())
	}
	if submitted.InterviewID != "iv-1" || submitted.FeedbackID != "fb-1" {
		t.Fatalf("unexpected feedback event: %+v", submitted)
	}

	if !device.stopped {
		t.Fatalf("expected capture stopped on disconnect")
	}
	if rt.closeCalls != 1 {
		t.Fatalf("expected realtime closed once, got %d", rt.closeCalls)
	}
}

func TestFeedbackFailureEmitsRetry(t *testing.T) {
	feedback := &fakeFeedback{err: errors.New("backend down")}
	session, _, rt, recorder := newTestSession(t, WithFeedbackClient(feedback))
	startActive(t, session, rt)

	rt.callbacks().TurnCallback(RoleAssistant, "Tell me about yourself?", true)

	session.Disconnect()

	waitFor(t, func() bool { return recorder.find(events.KindFeedbackFailed) != nil }, "feedback failure")
	failed, ok := recorder.find(events.KindFeedbackFailed).(events.FeedbackFailed)
	if !ok {
		t.Fatalf("expected feedback-failed event, got %v", recorder.kinds())
	}
	if failed.Retry == nil {
		t.Fatalf("expected a retry closure")
	}

	feedback.mu.Lock()
	feedback.err = nil
	feedback.mu.Unlock()

	if err := failed.Retry(); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if recorder.count(events.KindFeedbackSubmitted) != 1 {
		t.Fatalf("expected feedback-submitted after retry, got %v", recorder.kinds())
	}
}

func TestClosingMarkerErrorEndsCallNormally(t *testing.T) {
	session, _, rt, recorder := newTestSession(t)
	startActive(t, session, rt)

	rt.callbacks().CloseCallback(errors.New("websocket: close 1011 Meeting has ended"))

	if got := session.State(); got != StateFinished {
		t.Fatalf("expected finished state, got %s", got)
	}
	ended, ok := recorder.find(events.KindCallEnded).(events.CallEnded)
	if !ok {
		t.Fatalf("expected call-ended event, got %v", recorder.kinds())
	}
	if ended.Reason != "remote" {
		t.Fatalf("expected reason remote, got %q", ended.Reason)
	}
	if recorder.count(events.KindCallFailed) != 0 {
		t.Fatalf("expected no failure event, got %v", recorder.kinds())
	}
}

func TestUnexpectedCloseErrorFailsCallAndStillSubmitsFeedback(t *testing.T) {
	feedback := &fakeFeedback{}
	session, _, rt, recorder := newTestSession(t, WithFeedbackClient(feedback))
	startActive(t, session, rt)

	rt.callbacks().TurnCallback(RoleAssistant, "Tell me about yourself?", true)
	rt.callbacks().TurnCallback(RoleUser, "I build backend services.", true)
	rt.callbacks().CloseCallback(errors.New("connection reset by peer"))

	if got := session.State(); got != StateError {
		t.Fatalf("expected error state, got %s", got)
	}
	if recorder.count(events.KindCallFailed) != 1 {
		t.Fatalf("expected a call-failed event, got %v", recorder.kinds())
	}
	if recorder.count(events.KindCallEnded) != 0 {
		t.Fatalf("expected no call-ended event on failure, got %v", recorder.kinds())
	}

	// The conversation happened even though the connection died; the
	// candidate still gets assessed on it.
	waitFor(t, func() bool { return recorder.find(events.KindFeedbackSubmitted) != nil }, "feedback submission after failure")
	if feedback.callCount() != 1 {
		t.Fatalf("expected one feedback submission, got %d", feedback.callCount())
	}
}

func TestFailedCallWithEmptyTranscriptSkipsFeedback(t *testing.T) {
	feedback := &fakeFeedback{}
	session, _, rt, recorder := newTestSession(t, WithFeedbackClient(feedback))
	startActive(t, session, rt)

	rt.callbacks().CloseCallback(errors.New("connection reset by peer"))

	if got := session.State(); got != StateError {
		t.Fatalf("expected error state, got %s", got)
	}

	// Nothing was said, so there is nothing to assess.
	time.Sleep(20 * time.Millisecond)
	if feedback.callCount() != 0 {
		t.Fatalf("expected no feedback without a transcript, got %d calls", feedback.callCount())
	}
	if recorder.count(events.KindFeedbackSubmitted) != 0 {
		t.Fatalf("expected no feedback event, got %v", recorder.kinds())
	}
}

func TestRestartFromFinishedBeginsFreshCall(t *testing.T) {
	session, _, rt, recorder := newTestSession(t)
	startActive(t, session, rt)

	rt.callbacks().TurnCallback(RoleAssistant, "Tell me about yourself?", true)
	session.Disconnect()
	if got := session.State(); got != StateFinished {
		t.Fatalf("expected finished state, got %s", got)
	}

	startActive(t, session, rt)

	if turns := session.Transcript(); len(turns) != 0 {
		t.Fatalf("expected a clean transcript after restart, got %d turns", len(turns))
	}
	if asked, _ := session.Progress(); asked != 0 {
		t.Fatalf("expected question progress reset, got %d", asked)
	}
	if recorder.count(events.KindCallConnecting) != 2 {
		t.Fatalf("expected two connecting events across the restarts, got %v", recorder.kinds())
	}

	session.Disconnect()
	if recorder.count(events.KindCallEnded) != 2 {
		t.Fatalf("expected the restarted call to end on its own, got %v", recorder.kinds())
	}
}

func TestRestartFromErrorBeginsFreshCall(t *testing.T) {
	session, _, rt, recorder := newTestSession(t)
	startActive(t, session, rt)

	rt.callbacks().CloseCallback(errors.New("connection reset by peer"))
	if got := session.State(); got != StateError {
		t.Fatalf("expected error state, got %s", got)
	}

	startActive(t, session, rt)

	session.Disconnect()
	if got := session.State(); got != StateFinished {
		t.Fatalf("expected finished state after retry, got %s", got)
	}
	if recorder.count(events.KindCallEnded) != 1 {
		t.Fatalf("expected the retried call to end normally, got %v", recorder.kinds())
	}
}

func TestTranscriberReceivesCapturedAudioAndStops(t *testing.T) {
	transcriber := &fakeTranscriber{}
	session, device, rt, _ := newTestSession(t, WithTranscriber(transcriber))
	startActive(t, session, rt)

	transcriber.mu.Lock()
	started := transcriber.started
	transcriber.mu.Unlock()
	if !started {
		t.Fatalf("expected transcription stream opened on call start")
	}

	device.onSamples([]float32{0.1, 0.1, 0.1, 0.2, 0.2, 0.2})

	transcriber.mu.Lock()
	sent := len(transcriber.sent)
	transcriber.mu.Unlock()
	if sent != 1 {
		t.Fatalf("expected captured audio mirrored to transcriber, got %d chunks", sent)
	}

	session.Disconnect()

	transcriber.mu.Lock()
	defer transcriber.mu.Unlock()
	if !transcriber.stopped {
		t.Fatalf("expected transcription stream stopped on disconnect")
	}
}

func TestTranscriberFinalsAppendUserTurns(t *testing.T) {
	transcriber := &fakeTranscriber{}
	session, _, rt, recorder := newTestSession(t,
		WithTranscriber(transcriber),
		WithGraceDelay(20*time.Millisecond),
	)
	startActive(t, session, rt)

	callbacks := rt.callbacks()
	callbacks.TurnCallback(RoleAssistant, "Tell me about yourself?", true)
	callbacks.TurnCallback(RoleAssistant, "Describe a hard bug you fixed?", true)

	transcriber.mu.Lock()
	onTranscript := transcriber.options.TranscriptCallback
	transcriber.mu.Unlock()
	if onTranscript == nil {
		t.Fatalf("expected a transcript callback wired to the stream")
	}

	// A final from the user-side stream is a real user turn, not just an
	// activity ping.
	onTranscript("It was a race condition.")

	turns := session.Transcript()
	if len(turns) != 3 {
		t.Fatalf("expected 3 transcript turns, got %d", len(turns))
	}
	last, ok := session.transcript.Last()
	if !ok || last.Role != RoleUser || last.Text != "It was a race condition." {
		t.Fatalf("unexpected last turn: %+v", last)
	}
	if recorder.count(events.KindTranscriptTurnFinal) != 3 {
		t.Fatalf("expected 3 final-turn events, got %v", recorder.kinds())
	}

	// The user answering the final question over the side stream still
	// winds the call down.
	waitFor(t, func() bool { return session.State() == StateFinished }, "grace delay after the side-stream answer")
}

func TestGenerateModeSkipsFeedback(t *testing.T) {
	feedback := &fakeFeedback{}
	device := &fakeDevice{}
	rt := &fakeRealtime{}
	recorder := &eventRecorder{}

	session, err := NewSession(
		WithAudioDevice(device),
		WithRealtimeClient(rt),
		WithMode(ModeGenerate),
		WithFeedbackClient(feedback),
		WithEventHandler(recorder.record),
	)
	if err != nil {
		t.Fatalf("failed to create generate-mode session: %v", err)
	}
	startActive(t, session, rt)

	if _, total := session.Progress(); total != 0 {
		t.Fatalf("expected no tracked questions in generate mode, got %d", total)
	}

	session.Disconnect()

	waitFor(t, func() bool { return recorder.count(events.KindGenerationCompleted) == 1 }, "generation-completed event")
	if feedback.callCount() != 0 {
		t.Fatalf("expected no feedback submission in generate mode, got %d", feedback.callCount())
	}
}

func TestGenerateModePersistsStructuredInterview(t *testing.T) {
	creator := &fakeInterviewCreator{}
	device := &fakeDevice{}
	rt := &fakeRealtime{}
	recorder := &eventRecorder{}

	session, err := NewSession(
		WithAudioDevice(device),
		WithRealtimeClient(rt),
		WithMode(ModeGenerate),
		WithInterviewCreator(creator),
		WithEventHandler(recorder.record),
	)
	if err != nil {
		t.Fatalf("failed to create generate-mode session: %v", err)
	}
	startActive(t, session, rt)

	callbacks := rt.callbacks()
	callbacks.TurnCallback(RoleUser, "A backend role, two questions please.", true)
	callbacks.TurnCallback(RoleAssistant, "Here is your interview: "+
		`{"role":"Backend Engineer","level":"Senior","type":"Technical","amount":2,`+
		`"techstack":["Go","Postgres"],"questions":["Tell me about yourself","Describe a hard bug you fixed"]}`, true)

	session.Disconnect()

	waitFor(t, func() bool { return recorder.find(events.KindGenerationCompleted) != nil }, "generation-completed event")

	creator.mu.Lock()
	params := append([]api.CreateInterviewParams(nil), creator.params...)
	creator.mu.Unlock()
	if len(params) != 1 {
		t.Fatalf("expected one persisted interview, got %d", len(params))
	}
	if params[0].Role != "Backend Engineer" || len(params[0].Questions) != 2 {
		t.Fatalf("unexpected interview params: %+v", params[0])
	}

	completed, ok := recorder.find(events.KindGenerationCompleted).(events.GenerationCompleted)
	if !ok {
		t.Fatalf("expected generation-completed event, got %v", recorder.kinds())
	}
	if completed.InterviewID != "iv-9" {
		t.Fatalf("expected persisted interview id, got %q", completed.InterviewID)
	}
}
