package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"go-interview-worker/internal/domain"
	"go-interview-worker/pkg/apperror"
)

// judgmentSchema constrains the grading response to the structured contract.
// A response Gemini cannot fit into this shape fails the call instead of
// producing free text that would need substring extraction.
var judgmentSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"score": {
			Type:        genai.TypeNumber,
			Description: "How well the candidate answer matches the ideal answer, 0 to 10.",
		},
		"remark": {
			Type:        genai.TypeString,
			Description: "One or two sentences explaining the score.",
		},
	},
	Required: []string{"score", "remark"},
}

const judgePrompt = `You are grading one interview answer.

Question:
%s

Ideal answer:
%s

Candidate answer:
%s

Compare the candidate answer against the ideal answer and score it from 0
(no relevant content) to 10 (fully covers the ideal answer).`

// JudgeAnswer asks Gemini to compare a candidate answer against the ideal
// answer and returns the structured judgment. Schema violations come back as
// apperror.Malformed so the caller can degrade to a default score.
func (c *Client) JudgeAnswer(ctx context.Context, question, idealAnswer, candidateAnswer string) (*domain.Judgment, error) {
	if c == nil || c.client == nil {
		return nil, errors.New("gemini client is not initialized")
	}

	prompt := fmt.Sprintf(judgePrompt, question, idealAnswer, candidateAnswer)

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   judgmentSchema,
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.modelName, genai.Text(prompt), config)
	if err != nil {
		return nil, fmt.Errorf("generate judgment: %w", err)
	}

	raw, err := collectText(resp)
	if err != nil {
		return nil, apperror.Malformed("empty judgment response", err)
	}

	var judgment domain.Judgment
	decoder := json.NewDecoder(strings.NewReader(raw))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&judgment); err != nil {
		return nil, apperror.Malformed("judgment did not match expected schema", err)
	}
	if judgment.Score < 0 || judgment.Score > 10 {
		return nil, apperror.Malformed(fmt.Sprintf("judgment score %.2f out of range", judgment.Score), nil)
	}

	return &judgment, nil
}
