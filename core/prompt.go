package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
)

// SessionMode selects what the voice session is for.
type SessionMode string

const (
	// ModeInterview conducts a prepared interview and submits feedback when
	// the call ends.
	ModeInterview SessionMode = "interview"
	// ModeGenerate collects interview parameters conversationally; no
	// feedback is produced.
	ModeGenerate SessionMode = "generate"
)

const interviewerPromptTemplate = `You are a professional job interviewer conducting a real-time voice interview with a candidate. Your goal is to assess their qualifications, motivation, and fit for the role.

Interview guidelines:
Follow the structured question flow:
%s

Engage naturally and react appropriately:
Listen actively to responses and acknowledge them before moving forward.
Ask brief follow-up questions if a response is vague or requires more detail.
Keep the conversation flowing smoothly while maintaining control.

Be professional, yet warm and welcoming:
Use official yet friendly language.
Keep responses concise and to the point (like in a real voice interview).
Avoid robotic phrasing, sound natural and conversational.

Conclude the interview properly:
Thank the candidate for their time.
Inform them that the company will reach out soon with feedback.
End the conversation on a polite and positive note.

Remember this is a voice conversation. Keep all responses short and natural.`

const generatorPromptTemplate = `You are a friendly assistant helping a user prepare a mock job interview. Collect, one at a time and conversationally, the role they are interviewing for, the experience level, whether the interview should lean technical or behavioural, the tech stack involved, and how many questions they would like. Confirm the collected details back to the user, then let them know their interview is being prepared and say goodbye.

After confirming the details, send one final message containing only a JSON object matching this schema, with the requested amount of questions filled in, and nothing else:
%s

Remember this is a voice conversation. Apart from the final JSON message, keep all responses short and natural.`

// InterviewerPrompt renders the system instruction for an interview call.
func InterviewerPrompt(questions []string) string {
	formatted := make([]string, 0, len(questions))
	for _, question := range questions {
		formatted = append(formatted, "- "+question)
	}
	return fmt.Sprintf(interviewerPromptTemplate, strings.Join(formatted, "\n"))
}

// GeneratorPrompt renders the system instruction for a generate-mode call,
// including the schema the assistant's final structured message must match.
func GeneratorPrompt() string {
	schema, err := json.Marshal(GeneratedInterviewSchema())
	if err != nil {
		// The schema is reflected from a fixed struct; marshalling it
		// cannot fail at runtime.
		panic(fmt.Sprintf("failed to marshal generated interview schema: %v", err))
	}
	return fmt.Sprintf(generatorPromptTemplate, schema)
}

// GeneratedInterview is the structured result a generate-mode conversation
// produces.
type GeneratedInterview struct {
	Role      string   `json:"role"`
	Level     string   `json:"level"`
	Type      string   `json:"type"`
	Amount    int      `json:"amount"`
	Techstack []string `json:"techstack"`
	Questions []string `json:"questions"`
}

// GeneratedInterviewSchema reflects the schema used to request structured
// interview generation from the backend.
func GeneratedInterviewSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{DoNotReference: true}
	return reflector.Reflect(GeneratedInterview{})
}

// ParseGeneratedInterview extracts the structured payload from an assistant
// message. The assistant may wrap the JSON object in surrounding prose or
// markdown fences.
func ParseGeneratedInterview(text string) (*GeneratedInterview, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in message")
	}

	var generated GeneratedInterview
	if err := json.Unmarshal([]byte(text[start:end+1]), &generated); err != nil {
		return nil, fmt.Errorf("failed to parse generated interview: %w", err)
	}
	if generated.Role == "" {
		return nil, fmt.Errorf("generated interview is missing a role")
	}
	return &generated, nil
}
