package events

const (
	// KindQuestionAdvanced identifies progress through the prepared list.
	KindQuestionAdvanced Kind = "question.advanced"
	// KindQuestionsCompleted identifies exhaustion of the prepared list.
	KindQuestionsCompleted Kind = "question.completed"
)

// QuestionAdvanced marks an assistant utterance matching the next prepared
// question.
type QuestionAdvanced struct {
	Base
	Index int
	Total int
}

// NewQuestionAdvanced creates a question advanced event.
func NewQuestionAdvanced(index, total int) QuestionAdvanced {
	return QuestionAdvanced{Base: NewBase(KindQuestionAdvanced), Index: index, Total: total}
}

// QuestionsCompleted marks every prepared question having been asked.
type QuestionsCompleted struct {
	Base
	Total int
}

// NewQuestionsCompleted creates a questions completed event.
func NewQuestionsCompleted(total int) QuestionsCompleted {
	return QuestionsCompleted{Base: NewBase(KindQuestionsCompleted), Total: total}
}
