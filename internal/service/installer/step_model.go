package installer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

var defaultModels = map[string]string{
	"openai":     "gpt-4",
	"anthropic":  "claude-3-5-haiku-latest",
	"openrouter": "openai/gpt-4o-mini",
	"ollama":     "llama3.2",
	"custom":     "default",
}

// ModelStep asks for the model name, suggesting the provider's default.
type ModelStep struct {
	input    textinput.Model
	provider string
}

func NewModelStep() Step {
	return &ModelStep{}
}

func (s *ModelStep) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, advance)
}

func (s *ModelStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if s.provider == "" {
		def, ok := defaultModels[state.Responder.Provider]
		if !ok {
			return nil, nil
		}
		s.provider = state.Responder.Provider
		s.input = textinput.New()
		s.input.Focus()
		s.input.Width = 40
		s.input.Placeholder = def
		return s, textinput.Blink
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)

	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		val := strings.TrimSpace(s.input.Value())
		if val == "" {
			val = s.input.Placeholder
		}
		state.Responder.Model = val
		return nil, nil
	}
	return s, cmd
}

func (s *ModelStep) View(state *InstallState) string {
	if s.provider == "" {
		return "Loading...\n"
	}
	return fmt.Sprintf("Enter the %s model name:\n\n%s\n\n(press enter to accept the suggestion)\n",
		s.provider, s.input.View())
}
