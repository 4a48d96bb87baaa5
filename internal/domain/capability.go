package domain

import "context"

// Conversation roles, mapped by the LLM client onto its wire format.
const (
	RoleModel = "model"
	RoleUser  = "user"
)

// Message is one role-tagged entry in an assembled conversation.
type Message struct {
	Role    string
	Content string
}

// Judgment is the structured verdict the grading capability must return for
// one answered turn. The Gemini client enforces the shape and score range
// itself and reports violations as malformed.
type Judgment struct {
	Score  float64 `json:"score"`
	Remark string  `json:"remark"`
}

// Completer produces the next utterance for an assembled conversation.
type Completer interface {
	Complete(ctx context.Context, system string, history []Message) (string, error)
}

// Judge compares a candidate answer against an ideal answer and returns a
// schema-constrained judgment.
type Judge interface {
	JudgeAnswer(ctx context.Context, question, idealAnswer, candidateAnswer string) (*Judgment, error)
}

// DocumentExtractor converts an uploaded document into plain text.
type DocumentExtractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// AudioTranscriber converts a recorded answer into plain text.
type AudioTranscriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
}
