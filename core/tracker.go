package agent

import (
	"regexp"
	"strings"
	"sync"
)

// Matcher decides whether an assistant utterance is the tracked question
// being asked.
type Matcher interface {
	Matches(utterance string, question string) bool
}

// PrefixMatcher matches an utterance against the opening of a question.
// Spoken delivery rarely reproduces a question verbatim past the first
// clause, so only a normalized prefix is compared.
type PrefixMatcher struct {
	// PrefixLength is the number of normalized characters compared.
	// Zero means the default of 30.
	PrefixLength int
}

var nonWordPattern = regexp.MustCompile(`[^\w\s]`)

func normalizeUtterance(text string) string {
	return nonWordPattern.ReplaceAllString(strings.ToLower(text), "")
}

func (m PrefixMatcher) Matches(utterance string, question string) bool {
	if !strings.Contains(utterance, "?") {
		return false
	}

	prefixLength := m.PrefixLength
	if prefixLength <= 0 {
		prefixLength = 30
	}

	normalizedQuestion := normalizeUtterance(question)
	if len(normalizedQuestion) == 0 {
		return false
	}
	if prefixLength > len(normalizedQuestion) {
		prefixLength = len(normalizedQuestion)
	}

	return strings.Contains(normalizeUtterance(utterance), normalizedQuestion[:prefixLength])
}

// QuestionTracker follows the interviewer's progress through the planned
// question list. The index only moves forward, one question at a time.
type QuestionTracker struct {
	mu        sync.Mutex
	questions []string
	index     int
	matcher   Matcher
}

func NewQuestionTracker(questions []string, matcher Matcher) *QuestionTracker {
	if matcher == nil {
		matcher = PrefixMatcher{}
	}
	return &QuestionTracker{questions: questions, matcher: matcher}
}

// ObserveAssistantTurn checks one finalized assistant turn against the next
// expected question. At most one advance happens per turn, even if the turn
// contains several questions.
func (t *QuestionTracker) ObserveAssistantTurn(text string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.index >= len(t.questions) {
		return false
	}
	if !t.matcher.Matches(text, t.questions[t.index]) {
		return false
	}

	t.index++
	return true
}

func (t *QuestionTracker) Index() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.index
}

func (t *QuestionTracker) Total() int {
	return len(t.questions)
}

// Completed reports whether every planned question has been asked.
func (t *QuestionTracker) Completed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.questions) > 0 && t.index >= len(t.questions)
}
