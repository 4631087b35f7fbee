package cli

import (
	"bytes"
	"testing"

	"github.com/sandevgo/tuskchat/internal/core"
	"github.com/sandevgo/tuskchat/internal/service/transcript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminalSurface(t *testing.T) {
	var (
		out      bytes.Buffer
		refreshs int
		prompts  []string
	)
	s := &terminalSurface{
		out:       &out,
		width:     func() int { return 60 },
		refresh:   func() { refreshs++ },
		setPrompt: func(p string) { prompts = append(prompts, p) },
	}

	require.NoError(t, s.Append(transcript.Unit{
		Role:      core.RoleAssistant,
		Timestamp: "2:05 PM",
		Elements: []transcript.Element{
			&transcript.ParagraphElement{Runs: []transcript.Run{{Text: "Hello"}}},
		},
	}))
	s.ScrollToEnd()
	s.SetPending(true)
	s.SetPending(false)

	assert.Contains(t, out.String(), "Hello")
	assert.Contains(t, out.String(), "2:05 PM")
	assert.Equal(t, 1, refreshs)
	assert.Equal(t, []string{promptPending, promptReady}, prompts)
}

func TestTerminalSurface_OptionalHooks(t *testing.T) {
	var out bytes.Buffer
	s := &terminalSurface{out: &out, width: func() int { return 0 }}

	assert.NotPanics(t, func() {
		s.ScrollToEnd()
		s.SetPending(true)
	})
}
