package core

import "context"

type AIProvider interface {
	Chat(ctx context.Context, history []Message, tools []Tool) (Message, error)
}

// ToolProvider lists the tools offered to the model and runs the calls it
// makes. args is the raw JSON arguments object.
type ToolProvider interface {
	GetTools(ctx context.Context) ([]Tool, error)
	CallTool(ctx context.Context, name string, args string) (string, error)
}

// Exchanger sends a user message with its history to a responder and always
// returns displayable text, substituting FallbackMessage on failure.
type Exchanger interface {
	Exchange(ctx context.Context, message string, history []Message) string
}
