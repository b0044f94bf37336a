package content

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/goccy/go-json"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/urben88/MindFlex/internal/difficulty"
	"github.com/urben88/MindFlex/internal/model"
)

// DefaultModel is the chat model used when none is configured.
const DefaultModel = string(openai.ChatModelGPT4oMini)

const jsonOnly = "Reply with a single JSON object and nothing else."

// chatService sends one system+user exchange and returns the reply text.
type chatService interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

type openaiChat struct {
	client openai.Client
	model  string
}

func (c *openaiChat) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

// OpenAI generates content with the OpenAI chat completions API.
type OpenAI struct {
	chat chatService
}

// NewOpenAI builds a provider for apiKey. An empty key yields ErrUnavailable.
func NewOpenAI(apiKey, model string) (*OpenAI, error) {
	if apiKey == "" {
		return nil, ErrUnavailable
	}
	if model == "" {
		model = DefaultModel
	}
	return &OpenAI{chat: &openaiChat{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}}, nil
}

func (o *OpenAI) ExerciseContent(ctx context.Context, ex Exercise) (ExerciseContent, error) {
	system := "You write short guided memory-training exercises. " + jsonOnly +
		` Fields: "instruction" (string), "steps" (array of strings), "items" (array of strings), "example" (string), "mechanic" (one of "timer", "input", "flip", "audio_list").`
	user := fmt.Sprintf("Create structured content for a %q exercise (%s). Goal: %s", ex.Type, ex.Title, ex.Benefits)
	reply, err := o.chat.Complete(ctx, system, user)
	if err != nil {
		return ExerciseContent{}, fmt.Errorf("failed to generate exercise %s: %w", ex.ID, err)
	}
	var c ExerciseContent
	if err := decodeReply(reply, &c); err != nil {
		return ExerciseContent{}, fmt.Errorf("failed to decode exercise %s: %w", ex.ID, err)
	}
	return c, nil
}

func (o *OpenAI) Story(ctx context.Context, tier model.Tier, p difficulty.StoryParams) (model.Story, error) {
	system := "You write short stories for listening-comprehension practice. " + jsonOnly +
		` Fields: "text" (string), "question" (string), "options" (array of exactly 4 strings), "correctIndex" (integer index into options).`
	question := "a literal question about a stated fact"
	if p.Complexity == difficulty.ComplexityInference {
		question = "a question that needs an inference from the story"
	}
	user := fmt.Sprintf("Write a story of about %d words at %s difficulty, followed by %s.", p.StoryLengthWords, tier, question)
	reply, err := o.chat.Complete(ctx, system, user)
	if err != nil {
		return model.Story{}, fmt.Errorf("failed to generate story: %w", err)
	}
	var s model.Story
	if err := decodeReply(reply, &s); err != nil {
		return model.Story{}, fmt.Errorf("failed to decode story: %w", err)
	}
	return s, nil
}

func (o *OpenAI) Feedback(ctx context.Context, activity string, score int, accuracy float64) (string, error) {
	system := "You are a friendly brain-training coach. Answer with one or two short sentences."
	user := fmt.Sprintf("The player finished %s with score %d and accuracy %d%%. Give brief advice.",
		activity, score, int(math.Round(accuracy*100)))
	reply, err := o.chat.Complete(ctx, system, user)
	if err != nil {
		return "", fmt.Errorf("failed to generate feedback: %w", err)
	}
	return strings.TrimSpace(reply), nil
}

// decodeReply parses a JSON reply, tolerating a markdown code fence.
func decodeReply(reply string, v any) error {
	s := strings.TrimSpace(reply)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return json.Unmarshal([]byte(s), v)
}
