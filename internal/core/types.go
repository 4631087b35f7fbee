package core

import "encoding/json"

const (
	TuskName          = "TuskChat"
	TuskUserAgent     = "TuskChat-Client/0.1"
	TuskRepositoryURL = "https://github.com/sandevgo/tuskchat"
	TaskVersion       = "0.1.0"
)

// FallbackMessage is shown in place of a reply whenever an exchange fails.
const FallbackMessage = "I apologize, but I'm having trouble connecting right now. Please try again in a moment."

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

func (r Role) String() string {
	return string(r)
}

// DisplayName returns the label shown next to a message.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	case RoleSystem:
		return "System"
	default:
		return string(r)
	}
}

type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

type Function struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters"` // JSON Schema
}

type Tool struct {
	Type     string   `json:"type"`
	Function Function `json:"function"`
}

type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ChatRequest is the body posted to the responder.
type ChatRequest struct {
	Message string    `json:"message"`
	History []Message `json:"history"`
}

// ChatResponse is the responder reply. Response is a pointer so a success
// without a reply can be told apart from an empty reply.
type ChatResponse struct {
	Success  bool    `json:"success"`
	Response *string `json:"response,omitempty"`
	Error    string  `json:"error,omitempty"`
}
