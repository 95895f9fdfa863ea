package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/smart-mall/concierge/internal/domain"
	"github.com/smart-mall/concierge/internal/domain/chat"
	"github.com/smart-mall/concierge/internal/metrics"
)

// ChatClient is the tool-calling and vision LLM transport over the
// OpenAI-compatible API.
type ChatClient struct {
	client      *openai.Client
	model       string
	visionModel string
	logger      *zap.Logger
}

// ChatConfig holds the chat provider settings.
type ChatConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	VisionModel string
	Logger      *zap.Logger
}

// NewChatClient creates an OpenAI-compatible chat provider.
func NewChatClient(cfg *ChatConfig) *ChatClient {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &ChatClient{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		visionModel: cfg.VisionModel,
		logger:      cfg.Logger,
	}
}

// ChatWithTools runs one completion round with tool schemas attached.
func (c *ChatClient) ChatWithTools(
	ctx context.Context, messages []chat.Message, tools []chat.ToolSchema, temperature float32,
) (chat.Result, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    toOpenAIMessages(messages),
		Temperature: temperature,
	}
	if len(tools) > 0 {
		req.Tools = toOpenAITools(tools)
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		return chat.Result{}, parseAPIError("chat", err)
	}
	if len(resp.Choices) == 0 {
		return chat.Result{}, fmt.Errorf("empty chat response: %w", domain.ErrProvider)
	}

	metrics.AgentLLMDuration.WithLabelValues(resp.Model).Observe(duration.Seconds())

	choice := resp.Choices[0]
	result := chat.Result{
		Content:      choice.Message.Content,
		Model:        resp.Model,
		TokensUsed:   resp.Usage.TotalTokens,
		FinishReason: string(choice.FinishReason),
	}

	for _, tc := range choice.Message.ToolCalls {
		result.ToolCalls = append(result.ToolCalls, chat.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: []byte(tc.Function.Arguments),
		})
	}

	return result, nil
}

// ChatWithVision runs a single-image analysis completion. No tools; the
// description feeds the tool loop afterwards.
func (c *ChatClient) ChatWithVision(
	ctx context.Context, prompt, imageURL string, temperature float32,
) (chat.Result, error) {
	model := c.visionModel
	if model == "" {
		model = c.model
	}

	req := openai.ChatCompletionRequest{
		Model:       model,
		Temperature: temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: prompt},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: imageURL},
					},
				},
			},
		},
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		return chat.Result{}, parseAPIError("vision", err)
	}
	if len(resp.Choices) == 0 {
		return chat.Result{}, fmt.Errorf("empty vision response: %w", domain.ErrProvider)
	}

	metrics.AgentLLMDuration.WithLabelValues(resp.Model).Observe(duration.Seconds())

	return chat.Result{
		Content:      resp.Choices[0].Message.Content,
		Model:        resp.Model,
		TokensUsed:   resp.Usage.TotalTokens,
		FinishReason: string(resp.Choices[0].FinishReason),
	}, nil
}

func toOpenAIMessages(messages []chat.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		msg := openai.ChatCompletionMessage{
			Role:       string(m.Role),
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
		}
		for _, tc := range m.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Name,
					Arguments: string(tc.Arguments),
				},
			})
		}
		out = append(out, msg)
	}
	return out
}

func toOpenAITools(tools []chat.ToolSchema) []openai.Tool {
	out := make([]openai.Tool, 0, len(tools))
	for _, t := range tools {
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}
	return out
}
