// Package events defines the typed session event contract.
//
// Event kinds are grouped by receiver-facing namespaces:
//
//   - call.*
//   - transcript.*
//   - speech.*
//   - question.*
//   - feedback.*
//
// call events
//
//   - CallConnecting (call.connecting): session left Idle and is acquiring
//     the microphone and the realtime stream.
//   - CallStarted (call.started): realtime stream confirmed open; audio is
//     flowing.
//   - CallEnded (call.ended): session reached Finished, normally or via the
//     inactivity/grace paths.
//   - CallFailed (call.failed): session reached Error; carries the fatal
//     error.
//
// transcript events
//
//   - TranscriptTurnFinal (transcript.turn_final): a finalized turn was
//     appended to the transcript, in arrival order.
//   - TranscriptInterim (transcript.interim): mutable interim text for the
//     in-flight utterance; may be replaced by later interims.
//
// speech events
//
//   - SpeechStarted (speech.started): assistant playback or user speech
//     activity began.
//   - SpeechEnded (speech.ended): speech activity ended and the playback
//     queue drained.
//
// question events
//
//   - QuestionAdvanced (question.advanced): an assistant utterance matched
//     the next prepared question.
//   - QuestionsCompleted (question.completed): every prepared question has
//     been asked.
//
// feedback events
//
//   - FeedbackSubmitted (feedback.submitted): the transcript was accepted by
//     the feedback endpoint; carries the feedback id for navigation.
//   - FeedbackFailed (feedback.failed): submission failed after the session
//     ended; carries a retry handle that does not touch session resources.
//   - GenerationCompleted (feedback.generation_completed): a generate-mode
//     session finished; carries the id of the persisted interview when the
//     conversation produced one. No feedback call is made.
package events
