package llm

import (
	"context"
	"fmt"

	"github.com/sandevgo/tuskchat/internal/core"
)

// Echo answers without a model. It repeats the latest user message and is
// meant for local runs and demos.
type Echo struct{}

func NewEcho() *Echo {
	return &Echo{}
}

func (Echo) Chat(_ context.Context, history []core.Message, _ []core.Tool) (core.Message, error) {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == core.RoleUser {
			return core.Message{
				Role:    core.RoleAssistant,
				Content: fmt.Sprintf("You said: **%s**\n---\nMessages so far: %d", history[i].Content, countUser(history)),
			}, nil
		}
	}
	return core.Message{}, fmt.Errorf("no user message in history")
}

func countUser(history []core.Message) int {
	n := 0
	for _, m := range history {
		if m.Role == core.RoleUser {
			n++
		}
	}
	return n
}
