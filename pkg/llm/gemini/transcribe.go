package gemini

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"google.golang.org/genai"
)

const transcribePrompt = `Transcribe the spoken content of this recording to plain text.
Return ONLY the transcript, without speaker labels, timestamps or commentary.
If the recording contains no intelligible speech, return an empty response.`

// Transcribe converts a recorded answer into plain text by sending the audio
// inline to Gemini.
func (c *Client) Transcribe(ctx context.Context, path string) (string, error) {
	if c == nil || c.client == nil {
		return "", errors.New("gemini client is not initialized")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read audio file: %w", err)
	}

	contents := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{Text: transcribePrompt},
			{InlineData: &genai.Blob{
				MIMEType: audioMIMEType(path),
				Data:     data,
			}},
		},
	}}

	resp, err := c.client.Models.GenerateContent(ctx, c.modelName, contents, nil)
	if err != nil {
		return "", fmt.Errorf("transcribe audio: %w", err)
	}

	text, err := collectText(resp)
	if err != nil {
		// No speech in the recording is not a capability failure.
		return "", nil
	}
	return text, nil
}

func audioMIMEType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return "audio/wav"
	case ".mp3":
		return "audio/mp3"
	case ".ogg":
		return "audio/ogg"
	case ".m4a", ".aac":
		return "audio/aac"
	default:
		// Browser recordings arrive as webm.
		return "audio/webm"
	}
}
