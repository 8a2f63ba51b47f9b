package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go"
	contractx "github.com/tanpawarit/vapi-caller/agent/contract"
	promptx "github.com/tanpawarit/vapi-caller/agent/prompt"
)

var ErrEmptyCompletion = errors.New("model returned no content")

// LLM asks a chat model to pull order fields out of a transcript as JSON.
type LLM struct {
	client       *openaisdk.Client
	model        string
	systemPrompt string
}

func NewLLM(client *openaisdk.Client, model string, knownNames []string) (*LLM, error) {
	if client == nil {
		return nil, errors.New("llm client is required")
	}
	model = strings.TrimSpace(model)
	if model == "" {
		return nil, fmt.Errorf("%w: extractor model is required", contractx.ErrValidation)
	}
	if len(knownNames) == 0 {
		knownNames = DefaultKnownNames
	}
	return &LLM{
		client:       client,
		model:        model,
		systemPrompt: promptx.LoadPromptSet().OrderExtraction(knownNames),
	}, nil
}

type llmOrderOutput struct {
	Total      *string  `json:"total"`
	PickupTime *string  `json:"pickup_time"`
	Name       *string  `json:"name"`
	Items      []string `json:"items"`
}

func (l *LLM) Extract(ctx context.Context, transcript string) (contractx.OrderSummary, error) {
	resp, err := l.client.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model: openaisdk.ChatModel(l.model),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.SystemMessage(l.systemPrompt),
			openaisdk.UserMessage(transcript),
		},
		Temperature: openaisdk.Float(0),
	})
	if err != nil {
		return contractx.OrderSummary{}, fmt.Errorf("order extraction completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return contractx.OrderSummary{}, ErrEmptyCompletion
	}

	content := stripCodeFence(resp.Choices[0].Message.Content)
	if content == "" {
		return contractx.OrderSummary{}, ErrEmptyCompletion
	}

	var out llmOrderOutput
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return contractx.OrderSummary{}, fmt.Errorf("decode order extraction: %w", err)
	}

	summary := contractx.NewOrderSummary()
	summary.Total = nonEmpty(out.Total)
	summary.PickupTime = nonEmpty(out.PickupTime)
	summary.Name = nonEmpty(out.Name)
	for _, item := range out.Items {
		if item = strings.TrimSpace(item); item != "" {
			summary.Items = append(summary.Items, item)
		}
	}
	return summary, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
