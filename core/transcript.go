package agent

import (
	"sync"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one finalized utterance in the conversation.
type Turn struct {
	ID   string
	Role string
	Text string
}

// Transcript is the append-only record of finalized turns. Turns are stored
// in the order they were finalized, never reordered or rewritten.
type Transcript struct {
	mu    sync.RWMutex
	turns []Turn
}

func (t *Transcript) Append(role string, text string) Turn {
	turn := Turn{ID: uuid.NewString(), Role: role, Text: text}

	t.mu.Lock()
	t.turns = append(t.turns, turn)
	t.mu.Unlock()

	return turn
}

func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.turns)
}

// Last returns the most recent turn, or false when the transcript is empty.
func (t *Transcript) Last() (Turn, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if len(t.turns) == 0 {
		return Turn{}, false
	}
	return t.turns[len(t.turns)-1], true
}

// Snapshot returns a deep copy of the turns, safe to hand to callers that
// outlive the session.
func (t *Transcript) Snapshot() []Turn {
	t.mu.RLock()
	defer t.mu.RUnlock()

	snapshot := make([]Turn, 0, len(t.turns))
	if err := copier.Copy(&snapshot, &t.turns); err != nil {
		snapshot = append(snapshot, t.turns...)
	}
	return snapshot
}
