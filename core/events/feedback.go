package events

const (
	// KindFeedbackSubmitted identifies accepted feedback submission.
	KindFeedbackSubmitted Kind = "feedback.submitted"
	// KindFeedbackFailed identifies failed feedback submission.
	KindFeedbackFailed Kind = "feedback.failed"
	// KindGenerationCompleted identifies a finished generate-mode session.
	KindGenerationCompleted Kind = "feedback.generation_completed"
)

// FeedbackSubmitted carries the identifier of the stored feedback record.
type FeedbackSubmitted struct {
	Base
	FeedbackID  string
	InterviewID string
}

// NewFeedbackSubmitted creates a feedback submitted event.
func NewFeedbackSubmitted(feedbackID, interviewID string) FeedbackSubmitted {
	return FeedbackSubmitted{Base: NewBase(KindFeedbackSubmitted), FeedbackID: feedbackID, InterviewID: interviewID}
}

// FeedbackFailed carries the submission error and a retry handle. Retry only
// re-runs the HTTP submission; the session's audio and connection resources
// are already torn down and are never touched.
type FeedbackFailed struct {
	Base
	Err   error
	Retry func() error
}

// NewFeedbackFailed creates a feedback failed event.
func NewFeedbackFailed(err error, retry func() error) FeedbackFailed {
	return FeedbackFailed{Base: NewBase(KindFeedbackFailed), Err: err, Retry: retry}
}

// GenerationCompleted marks the end of a generate-mode session. InterviewID
// is empty when no structured payload could be parsed or persisted.
type GenerationCompleted struct {
	Base
	InterviewID string
}

// NewGenerationCompleted creates a generation completed event.
func NewGenerationCompleted(interviewID string) GenerationCompleted {
	return GenerationCompleted{Base: NewBase(KindGenerationCompleted), InterviewID: interviewID}
}
