package installer

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// ProviderStep allows selection of the AI provider
type ProviderStep struct {
	choices []string
	cursor  int
}

func NewProviderStep() Step {
	return &ProviderStep{
		choices: []string{"OpenAI", "Anthropic", "OpenRouter", "Ollama", "Custom", "Echo"},
	}
}

func (s *ProviderStep) Init() tea.Cmd {
	return nil
}

func (s *ProviderStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		if key.String() == "enter" {
			state.Responder.Provider = strings.ToLower(s.choices[s.cursor])
			return nil, nil
		}
		s.cursor = moveCursor(key.String(), s.cursor, len(s.choices))
	}
	return s, nil
}

func (s *ProviderStep) View(state *InstallState) string {
	return renderChoices("Select the AI provider that answers chat messages:", s.choices, s.cursor)
}
