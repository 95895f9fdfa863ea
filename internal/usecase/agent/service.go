// Package agent implements the tool-calling concierge orchestrator: a
// bounded reasoning loop over the LLM, the safety screen, tool tiering
// with confirmation gates, and the confirm/deny follow-up call.
package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/smart-mall/concierge/internal/domain"
	"github.com/smart-mall/concierge/internal/domain/chat"
	"github.com/smart-mall/concierge/internal/metrics"
)

// DefaultMaxRounds caps the reasoning loop per turn.
const DefaultMaxRounds = 10

// Default sampling temperatures; the vision pass runs colder so the
// image description stays factual.
const (
	DefaultTemperature       = 0.3
	DefaultVisionTemperature = 0.2
)

// exhaustedMessage is the user-visible answer when the round cap is hit.
const exhaustedMessage = "处理时间过长，请重新描述您的需求"

// cancelledMessage answers a denied confirmation.
const cancelledMessage = "好的，已取消该操作。"

// OutcomeType tags the caller-facing turn result.
type OutcomeType string

const (
	// OutcomeText is a final text answer.
	OutcomeText OutcomeType = "text"
	// OutcomeConfirm is a simple pending confirmation.
	OutcomeConfirm OutcomeType = "confirm"
	// OutcomeHardConfirm is a hard confirmation for critical actions.
	OutcomeHardConfirm OutcomeType = "confirmation_required"
	// OutcomeError is a user-safe turn failure.
	OutcomeError OutcomeType = "error"
)

// ToolResult records one executed tool call within a turn.
type ToolResult struct {
	Function string         `json:"function"`
	Args     map[string]any `json:"args"`
	Result   map[string]any `json:"result"`
}

// Outcome is the caller-facing result of one turn or confirm call.
type Outcome struct {
	Type        OutcomeType    `json:"type"`
	Content     string         `json:"content,omitempty"`
	Action      string         `json:"action,omitempty"`
	Args        map[string]any `json:"args,omitempty"`
	Message     string         `json:"message,omitempty"`
	Blocked     bool           `json:"blocked,omitempty"`
	ToolResults []ToolResult   `json:"tool_results,omitempty"`
	Model       string         `json:"model,omitempty"`
	TokensUsed  int            `json:"tokens_used,omitempty"`
}

// Service drives the concierge turn state machine. Safe for concurrent
// use; each turn keeps its own message list.
type Service struct {
	llm         llm
	exec        *executor
	maxRounds   int
	temperature float32
	visionTemp  float32
	logger      *zap.Logger
}

// NewService creates the agent orchestrator.
func NewService(l llm, r retriever, c commerceStore, logger *zap.Logger) *Service {
	return &Service{
		llm:         l,
		exec:        &executor{retriever: r, commerce: c},
		maxRounds:   DefaultMaxRounds,
		temperature: DefaultTemperature,
		visionTemp:  DefaultVisionTemperature,
		logger:      logger,
	}
}

// WithLimits overrides the round cap and sampling temperature.
func (s *Service) WithLimits(maxRounds int, temperature float32) *Service {
	if maxRounds > 0 {
		s.maxRounds = maxRounds
	}
	if temperature > 0 {
		s.temperature = temperature
	}
	return s
}

// Process runs one user turn. Blocked input short-circuits to the fixed
// refusal without any LLM call; an image input runs the vision pass
// first and then enters the tool loop with the image tools visible.
func (s *Service) Process(ctx context.Context, sessionID, userInput, imageURL string) (Outcome, error) {
	if InputBlocked(userInput) {
		s.logger.Warn("blocked unsafe input", zap.String("session", sessionID))
		metrics.AgentTurnsTotal.WithLabelValues("blocked").Inc()
		return Outcome{Type: OutcomeText, Content: SafeResponse, Blocked: true}, nil
	}

	hasImage := imageURL != ""
	userMessage := userInput
	var visionTokens int

	if hasImage {
		vision, err := s.llm.ChatWithVision(ctx, visionPrompt(userInput), imageURL, s.visionTemp)
		if err != nil {
			return s.providerFailure(err, nil)
		}
		visionTokens = vision.TokensUsed
		userMessage = visionUserMessage(userInput, vision.Content)
		s.logger.Debug("vision analysis done", zap.Int("tokens", vision.TokensUsed))
	}

	messages := []chat.Message{
		chat.SystemMessage(systemPrompt),
		chat.UserMessage(userMessage),
	}
	tools := ToolsForContext(hasImage)

	outcome, err := s.reason(ctx, sessionID, messages, tools)
	outcome.TokensUsed += visionTokens
	return outcome, err
}

// reason is the bounded LLM↔tool loop.
func (s *Service) reason(
	ctx context.Context, sessionID string,
	messages []chat.Message, tools []chat.ToolSchema,
) (Outcome, error) {
	var (
		results []ToolResult
		tokens  int
		model   string
	)

	for round := 1; round <= s.maxRounds; round++ {
		res, err := s.llm.ChatWithTools(ctx, messages, tools, s.temperature)
		if err != nil {
			return s.providerFailure(err, results)
		}
		tokens += res.TokensUsed
		model = res.Model

		if !res.HasToolCalls() {
			metrics.AgentTurnsTotal.WithLabelValues("text").Inc()
			metrics.AgentRounds.Observe(float64(round))
			return Outcome{
				Type:        OutcomeText,
				Content:     res.Content,
				ToolResults: results,
				Model:       model,
				TokensUsed:  tokens,
			}, nil
		}

		for _, call := range res.ToolCalls {
			args, err := decodeArgs(call.Arguments)
			if err != nil {
				s.logger.Warn("unparsable tool arguments",
					zap.String("tool", call.Name), zap.Error(err))
				metrics.AgentTurnsTotal.WithLabelValues("error").Inc()
				return Outcome{
						Type:        OutcomeError,
						Message:     defaultProviderMessage,
						ToolResults: results,
						TokensUsed:  tokens,
					}, fmt.Errorf("tool call %s arguments: %w", call.Name, domain.ErrProvider)
			}

			s.logger.Info("tool call",
				zap.String("session", sessionID),
				zap.String("tool", call.Name),
				zap.Int("round", round))

			// Unknown names fall through as safe; the executor answers
			// them with a failure payload the model can recover from.
			tier, _ := TierOf(call.Name)

			if tier == TierCritical {
				metrics.AgentTurnsTotal.WithLabelValues("confirm").Inc()
				metrics.AgentRounds.Observe(float64(round))
				return Outcome{
					Type:        OutcomeHardConfirm,
					Action:      call.Name,
					Args:        args,
					Message:     hardConfirmMessage(call.Name),
					ToolResults: results,
					TokensUsed:  tokens,
				}, nil
			}
			if tier == TierConfirm {
				metrics.AgentTurnsTotal.WithLabelValues("confirm").Inc()
				metrics.AgentRounds.Observe(float64(round))
				return Outcome{
					Type:        OutcomeConfirm,
					Action:      call.Name,
					Args:        args,
					Message:     confirmMessage(call.Name),
					ToolResults: results,
					TokensUsed:  tokens,
				}, nil
			}

			payload := s.runTool(ctx, sessionID, call.Name, args)
			results = append(results, ToolResult{Function: call.Name, Args: args, Result: payload})

			messages = append(messages,
				chat.AssistantToolCalls([]chat.ToolCall{call}),
				chat.ToolMessage(call.ID, encodePayload(payload)),
			)
		}
	}

	metrics.AgentTurnsTotal.WithLabelValues("exhausted").Inc()
	metrics.AgentRounds.Observe(float64(s.maxRounds))
	return Outcome{
		Type:        OutcomeError,
		Message:     exhaustedMessage,
		ToolResults: results,
		TokensUsed:  tokens,
	}, domain.ErrLoopExhausted
}

// Confirm resolves a pending action. A confirmed call executes the
// single tool and returns a Done-shaped result without re-entering the
// reasoning loop; a denial discards it.
func (s *Service) Confirm(ctx context.Context, sessionID, action string, args map[string]any, confirmed bool) (Outcome, error) {
	if !confirmed {
		s.logger.Info("action denied",
			zap.String("session", sessionID), zap.String("action", action))
		return Outcome{Type: OutcomeText, Content: cancelledMessage}, nil
	}

	if _, ok := TierOf(action); !ok {
		return Outcome{
			Type:    OutcomeError,
			Message: defaultProviderMessage,
		}, fmt.Errorf("%s: %w", action, domain.ErrUnknownTool)
	}

	payload := s.runTool(ctx, sessionID, action, args)
	result := ToolResult{Function: action, Args: args, Result: payload}

	content, _ := payload["message"].(string)
	if content == "" {
		content = "操作已完成"
	}

	metrics.AgentTurnsTotal.WithLabelValues("text").Inc()
	return Outcome{
		Type:        OutcomeText,
		Content:     content,
		ToolResults: []ToolResult{result},
	}, nil
}

// runTool executes one tool and folds failures into the payload so the
// model (or the confirm caller) sees them as context, not an abort.
func (s *Service) runTool(ctx context.Context, sessionID, name string, args map[string]any) map[string]any {
	payload, err := s.exec.execute(ctx, sessionID, name, args)
	if err != nil {
		s.logger.Warn("tool execution failed",
			zap.String("tool", name), zap.Error(err))
		metrics.AgentToolCallsTotal.WithLabelValues(name, "error").Inc()
		message, _ := classifyProviderError(err)
		return map[string]any{"success": false, "error": message}
	}
	metrics.AgentToolCallsTotal.WithLabelValues(name, "ok").Inc()
	return payload
}

func (s *Service) providerFailure(err error, results []ToolResult) (Outcome, error) {
	message, retryable := classifyProviderError(err)
	s.logger.Error("llm call failed", zap.Error(err), zap.Bool("retryable", retryable))
	metrics.AgentTurnsTotal.WithLabelValues("error").Inc()
	return Outcome{
		Type:        OutcomeError,
		Message:     message,
		ToolResults: results,
	}, fmt.Errorf("llm: %w", err)
}

func decodeArgs(raw json.RawMessage) (map[string]any, error) {
	if len(raw) == 0 {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

func encodePayload(payload map[string]any) string {
	b, err := json.Marshal(payload)
	if err != nil {
		return `{"success":false}`
	}
	return string(b)
}
