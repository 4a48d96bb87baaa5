package gemini

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

const extractPrompt = `Extract ALL text content from this PDF document. Return ONLY the raw
extracted text without any additional comments, formatting, or explanations.
Return the text exactly as it appears in the document.`

// ExtractDocument pulls plain text out of a PDF by sending it inline to
// Gemini. Used as the fallback when local extraction finds no text layer
// (scanned documents).
func (c *Client) ExtractDocument(ctx context.Context, data []byte) (string, error) {
	if c == nil || c.client == nil {
		return "", errors.New("gemini client is not initialized")
	}

	contents := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{Text: extractPrompt},
			{InlineData: &genai.Blob{
				MIMEType: "application/pdf",
				Data:     data,
			}},
		},
	}}

	temperature := float32(0.1)
	config := &genai.GenerateContentConfig{Temperature: &temperature}

	resp, err := c.client.Models.GenerateContent(ctx, c.modelName, contents, config)
	if err != nil {
		return "", fmt.Errorf("extract document text: %w", err)
	}

	return collectText(resp)
}
