package agent

import "testing"

func TestPrefixMatcherRequiresQuestionMark(t *testing.T) {
	matcher := PrefixMatcher{}
	question := "Tell me about a project you are proud of"

	if matcher.Matches("Tell me about a project you are proud of.", question) {
		t.Fatalf("expected utterance without question mark to not match")
	}
	if !matcher.Matches("So, tell me about a project you are proud of?", question) {
		t.Fatalf("expected question utterance to match")
	}
}

func TestPrefixMatcherIgnoresPunctuationAndCase(t *testing.T) {
	matcher := PrefixMatcher{}

	if !matcher.Matches(
		"Great! TELL me, about: a project; you are proud of?",
		"tell me about a project you are proud of",
	) {
		t.Fatalf("expected normalized match despite punctuation and case")
	}
}

func TestPrefixMatcherComparesOnlyTheOpening(t *testing.T) {
	matcher := PrefixMatcher{}
	question := "What is your experience with distributed systems and how have you applied it in production"

	// Delivery diverges after the opening clause; the prefix still matches.
	if !matcher.Matches("What is your experience with distributed systems, roughly?", question) {
		t.Fatalf("expected prefix match on reworded question")
	}
}

func TestQuestionTrackerAdvancesMonotonically(t *testing.T) {
	tracker := NewQuestionTracker([]string{
		"What drew you to this role",
		"Describe a hard bug you fixed",
	}, nil)

	if tracker.ObserveAssistantTurn("Describe a hard bug you fixed?") {
		t.Fatalf("expected out-of-order question to not advance the tracker")
	}
	if !tracker.ObserveAssistantTurn("What drew you to this role?") {
		t.Fatalf("expected first question to advance the tracker")
	}
	if got := tracker.Index(); got != 1 {
		t.Fatalf("expected index 1, got %d", got)
	}
	if tracker.Completed() {
		t.Fatalf("expected tracker incomplete after one of two questions")
	}

	if !tracker.ObserveAssistantTurn("Now, describe a hard bug you fixed?") {
		t.Fatalf("expected second question to advance the tracker")
	}
	if !tracker.Completed() {
		t.Fatalf("expected tracker complete after both questions")
	}

	if tracker.ObserveAssistantTurn("What drew you to this role?") {
		t.Fatalf("expected completed tracker to never advance again")
	}
	if got := tracker.Index(); got != 2 {
		t.Fatalf("expected index capped at 2, got %d", got)
	}
}

func TestQuestionTrackerAdvancesAtMostOncePerTurn(t *testing.T) {
	tracker := NewQuestionTracker([]string{
		"What drew you to this role",
		"Describe a hard bug you fixed",
	}, nil)

	combined := "What drew you to this role? And also, describe a hard bug you fixed?"
	if !tracker.ObserveAssistantTurn(combined) {
		t.Fatalf("expected combined turn to advance the tracker")
	}
	if got := tracker.Index(); got != 1 {
		t.Fatalf("expected a single advance per turn, got index %d", got)
	}
}

func TestQuestionTrackerEmptyListNeverCompletes(t *testing.T) {
	tracker := NewQuestionTracker(nil, nil)

	if tracker.Completed() {
		t.Fatalf("expected tracker without questions to never report completion")
	}
	if tracker.ObserveAssistantTurn("Anything to add?") {
		t.Fatalf("expected tracker without questions to never advance")
	}
}

type containsMatcher struct{}

func (containsMatcher) Matches(utterance string, question string) bool {
	return utterance == question
}

func TestQuestionTrackerUsesInjectedMatcher(t *testing.T) {
	tracker := NewQuestionTracker([]string{"exact"}, containsMatcher{})

	if tracker.ObserveAssistantTurn("exact?") {
		t.Fatalf("expected injected matcher to reject non-exact utterance")
	}
	if !tracker.ObserveAssistantTurn("exact") {
		t.Fatalf("expected injected matcher to accept exact utterance")
	}
}
