package responder

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/sandevgo/tuskchat/internal/core"
	"github.com/sandevgo/tuskchat/pkg/log"
)

const (
	// maxToolRounds bounds how many times the model may call tools before it
	// has to answer.
	maxToolRounds  = 5
	maxToolResult  = 16000
	toolResultTail = 4000
)

var ErrTooManyToolRounds = errors.New("model kept calling tools")

// runTools executes every call in reply and returns the tool messages to
// append after it. A failing tool is reported to the model, not to the user.
func (r *Responder) runTools(ctx context.Context, calls []core.ToolCall) []core.Message {
	logger := log.FromCtx(ctx)

	results := make([]core.Message, 0, len(calls))
	for _, tc := range calls {
		logger.Debug().Str("tool", tc.Function.Name).Str("args", tc.Function.Arguments).Msg("calling tool")

		res, err := r.tools.CallTool(ctx, tc.Function.Name, tc.Function.Arguments)
		if err != nil {
			logger.Warn().Err(err).Str("tool", tc.Function.Name).Msg("tool call failed")
			res = fmt.Sprintf("Error executing tool: %v", err)
		}

		results = append(results, core.Message{
			Role:       core.RoleTool,
			Content:    truncateResult(res),
			ToolCallID: tc.ID,
		})
	}
	return results
}

func truncateResult(input string) string {
	if len(input) <= maxToolResult {
		return input
	}

	headEnd := maxToolResult - toolResultTail
	for headEnd > 0 && !utf8.RuneStart(input[headEnd]) {
		headEnd--
	}
	tailStart := len(input) - toolResultTail
	for tailStart < len(input) && !utf8.RuneStart(input[tailStart]) {
		tailStart++
	}

	return fmt.Sprintf("%s\n\n... [TRUNCATED %d bytes] ...\n\n%s", input[:headEnd], tailStart-headEnd, input[tailStart:])
}
