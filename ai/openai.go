package ai

import (
	"context"
	"fmt"
	"strings"

	"botwerk-server/models"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/sirupsen/logrus"
)

const DefaultModel = "gpt-4o-mini"

// OpenAIResponder answers through the OpenAI chat completions API, with the bot's
// configuration rendered into the system prompt.
type OpenAIResponder struct {
	client openai.Client
	apiKey string
	model  string
}

func NewOpenAIResponder(apiKey, model string, opts ...option.RequestOption) *OpenAIResponder {
	if model == "" {
		model = DefaultModel
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &OpenAIResponder{
		client: openai.NewClient(opts...),
		apiKey: apiKey,
		model:  model,
	}
}

func (r *OpenAIResponder) IsConfigured() bool {
	return r.apiKey != ""
}

func (r *OpenAIResponder) Model() string {
	return r.model
}

func (r *OpenAIResponder) Reply(ctx context.Context, userMessage string, bot models.BotConfig, history []models.ChatTurn) (string, error) {
	if !r.IsConfigured() {
		return "", fmt.Errorf("openai api key not set")
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(r.model),
		Messages: r.messages(userMessage, bot, history),
	}

	completion, err := r.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("no response from openai")
	}

	logrus.WithFields(logrus.Fields{
		"bot":           bot.Name,
		"model":         r.model,
		"history":       len(history),
		"input_tokens":  completion.Usage.PromptTokens,
		"output_tokens": completion.Usage.CompletionTokens,
	}).Debug("[OPENAI] Chat completed")

	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}

func (r *OpenAIResponder) messages(userMessage string, bot models.BotConfig, history []models.ChatTurn) []openai.ChatCompletionMessageParamUnion {
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(SystemPrompt(bot)),
	}
	for _, t := range history {
		if t.Role == models.RoleAssistant {
			messages = append(messages, openai.AssistantMessage(t.Content))
		} else {
			messages = append(messages, openai.UserMessage(t.Content))
		}
	}
	return append(messages, openai.UserMessage(userMessage))
}
