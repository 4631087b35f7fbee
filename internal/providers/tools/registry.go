package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	mcpproto "github.com/mark3labs/mcp-go/mcp"
	"github.com/sandevgo/tuskchat/internal/core"
	"github.com/sandevgo/tuskchat/pkg/log"
)

// Handler runs one tool call. It has the shape of an MCP server tool handler
// so tools can later be served over MCP unchanged.
type Handler func(ctx context.Context, req mcpproto.CallToolRequest) (*mcpproto.CallToolResult, error)

// Registry holds in-process tools and implements core.ToolProvider.
type Registry struct {
	mu       sync.RWMutex
	defs     []core.Tool
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register adds tool. Registering a name twice replaces the handler and the
// definition.
func (r *Registry) Register(tool mcpproto.Tool, handler Handler) error {
	schema, err := json.Marshal(tool.InputSchema)
	if err != nil {
		return fmt.Errorf("failed to marshal schema of %s: %w", tool.Name, err)
	}

	def := core.Tool{
		Type: "function",
		Function: core.Function{
			Name:        tool.Name,
			Description: tool.Description,
			Parameters:  schema,
		},
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.handlers[tool.Name]; ok {
		for i := range r.defs {
			if r.defs[i].Function.Name == tool.Name {
				r.defs[i] = def
			}
		}
	} else {
		r.defs = append(r.defs, def)
	}
	r.handlers[tool.Name] = handler
	return nil
}

func (r *Registry) GetTools(_ context.Context) ([]core.Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]core.Tool, len(r.defs))
	copy(out, r.defs)
	return out, nil
}

func (r *Registry) CallTool(ctx context.Context, name string, args string) (string, error) {
	log.FromCtx(ctx).Info().Str("tool", name).Str("args", args).Msg("executing tool")

	r.mu.RLock()
	handler, ok := r.handlers[name]
	r.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("tool not found: %s", name)
	}

	argsMap := map[string]any{}
	if strings.TrimSpace(args) != "" {
		if err := json.Unmarshal([]byte(args), &argsMap); err != nil {
			return "", fmt.Errorf("invalid json arguments: %w", err)
		}
	}

	req := mcpproto.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = argsMap

	res, err := handler(ctx, req)
	if err != nil {
		return "", err
	}

	output := resultText(res)
	if res.IsError {
		return "", fmt.Errorf("tool execution failed: %s", output)
	}
	return output, nil
}

func resultText(res *mcpproto.CallToolResult) string {
	var parts []string
	for _, content := range res.Content {
		if text, ok := mcpproto.AsTextContent(content); ok {
			parts = append(parts, text.Text)
		}
	}
	return strings.Join(parts, "\n")
}
