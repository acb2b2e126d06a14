// Package airating asks an AI model to rate a study note. It performs a
// single outbound call with retries disabled; every failure mode (transport,
// empty response, unparseable output) surfaces as an upstream error that the
// caller reports verbatim to the end user.
package airating

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"learn2learn/pkg/apperr"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const systemPrompt = `You are a study coach reviewing a learner's note.
Rate how useful the note is for later review on a scale from 0 to 10 and give
short, concrete feedback. If the note cannot be rated, use null as the rating.
Respond with only a JSON object: {"rating": <number 0-10 or null>, "feedback": "<text>"}`

// Rating is the model's verdict. Rating is null when the model declines to
// put a number on the note.
type Rating struct {
	Rating   *float64 `json:"rating"`
	Feedback string   `json:"feedback"`
}

type Client struct {
	api   openai.Client
	model string
}

// New builds a rating client. Extra options (base URL overrides in tests) are
// appended after the defaults.
func New(apiKey, model string, opts ...option.RequestOption) *Client {
	reqOpts := append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}, opts...)
	return &Client{
		api:   openai.NewClient(reqOpts...),
		model: model,
	}
}

// Rate submits the note and parses the model's JSON verdict.
func (c *Client) Rate(ctx context.Context, title, content string) (*Rating, error) {
	completion, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(fmt.Sprintf("Title: %s\n\n%s", title, content)),
		},
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.Upstream, "rating service is unavailable", err)
	}
	if len(completion.Choices) == 0 {
		return nil, apperr.New(apperr.Upstream, "rating service returned an empty response")
	}

	text := strings.TrimSpace(completion.Choices[0].Message.Content)
	// Some models wrap JSON in a markdown fence regardless of instructions.
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var rating Rating
	if err := json.Unmarshal([]byte(text), &rating); err != nil {
		return nil, apperr.Wrap(apperr.Upstream, "rating service returned a malformed response", err)
	}
	if rating.Rating != nil && (*rating.Rating < 0 || *rating.Rating > 10) {
		return nil, apperr.New(apperr.Upstream, "rating service returned a malformed response")
	}
	return &rating, nil
}
