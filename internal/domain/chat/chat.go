// Package chat defines the provider-neutral conversation types exchanged
// between the agent orchestrator and the LLM transport.
package chat

import "encoding/json"

// Role tags a conversation message.
type Role string

const (
	// RoleSystem is the system prompt role.
	RoleSystem Role = "system"
	// RoleUser is the end-user role.
	RoleUser Role = "user"
	// RoleAssistant is the model role.
	RoleAssistant Role = "assistant"
	// RoleTool is the tool-result role.
	RoleTool Role = "tool"
)

// Message is a single role-tagged conversation entry. Assistant messages
// may carry tool calls; tool messages carry the ToolCallID they answer.
type Message struct {
	Role       Role
	Content    string
	ToolCallID string
	ToolCalls  []ToolCall
}

// ToolCall is a structured function invocation requested by the model.
// Arguments is the raw JSON payload as returned by the provider; decoding
// (and decode failures) are the orchestrator's concern.
type ToolCall struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

// ToolSchema declares a callable tool to the model.
type ToolSchema struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// Result is one LLM round: either free text or a list of tool calls,
// plus token-usage metadata.
type Result struct {
	Content      string
	ToolCalls    []ToolCall
	Model        string
	TokensUsed   int
	FinishReason string
}

// HasToolCalls reports whether the model requested any tool invocations.
func (r Result) HasToolCalls() bool { return len(r.ToolCalls) > 0 }

// SystemMessage builds a system-role message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage builds a user-role message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantToolCalls builds the assistant message echoing the model's tool calls.
func AssistantToolCalls(calls []ToolCall) Message {
	return Message{Role: RoleAssistant, ToolCalls: calls}
}

// ToolMessage builds a tool-role message answering the given call.
func ToolMessage(callID, content string) Message {
	return Message{Role: RoleTool, Content: content, ToolCallID: callID}
}
