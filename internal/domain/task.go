package domain

import (
	"context"
	"encoding/json"
	"fmt"
)

// Action tags routed by the task dispatcher.
const (
	ActionDocUpload          = "doc_upload"
	ActionProcessQuestion    = "process_question"
	ActionNextQuestion       = "next_question"
	ActionPerformanceMeasure = "performance_measure"
)

// TaskMessage is the envelope carried on the task queue. Payload is decoded
// a second time into the action-specific type once the action tag is known.
type TaskMessage struct {
	CorrelationID string          `json:"correlationId" validate:"required"`
	SessionID     string          `json:"session_id" validate:"required"`
	ActionType    string          `json:"action_type" validate:"required"`
	UserID        int64           `json:"user_id" validate:"required,gt=0"`
	Timestamp     string          `json:"timestamp"`
	Status        string          `json:"status"`
	Payload       json.RawMessage `json:"payload"`
}

// DocUploadPayload accompanies ActionDocUpload.
type DocUploadPayload struct {
	FilePath string `json:"file_path" validate:"required"`
	FileType string `json:"file_type" validate:"required,oneof=jd resume"`
}

// QuestionPayload accompanies ActionProcessQuestion, ActionNextQuestion and
// ActionPerformanceMeasure. QuestionID is 0 when the action targets the
// whole interview. Upstream producers send ids as either numbers or strings.
type QuestionPayload struct {
	InterviewID FlexInt `json:"interview_id" validate:"required"`
	QuestionID  FlexInt `json:"question_id"`
}

// FlexInt decodes a JSON number or a numeric string.
type FlexInt int64

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		var n int64
		if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
			return fmt.Errorf("invalid numeric string %q: %w", s, err)
		}
		*f = FlexInt(n)
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexInt(n)
	return nil
}

func (f FlexInt) Int64() int64 { return int64(f) }
func (f FlexInt) Int() int     { return int(f) }

// Publisher enqueues follow-up task messages on the transport.
type Publisher interface {
	Publish(ctx context.Context, message *TaskMessage) error
}
