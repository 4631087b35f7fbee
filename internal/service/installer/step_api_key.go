package installer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// APIKeyStep collects the provider's API key. Ollama and custom endpoints
// may run without one; echo needs none.
type APIKeyStep struct {
	input      textinput.Model
	provider   string
	title      string
	isOptional bool
}

func NewAPIKeyStep() Step {
	return &APIKeyStep{}
}

func (s *APIKeyStep) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, advance)
}

func (s *APIKeyStep) initProvider(state *InstallState) bool {
	s.provider = state.Responder.Provider
	s.isOptional = false

	switch s.provider {
	case "anthropic":
		s.title = "Anthropic API Key"
	case "openai":
		s.title = "OpenAI API Key"
	case "openrouter":
		s.title = "OpenRouter API Key"
	case "ollama":
		s.title = "Ollama API Key"
		s.isOptional = true
	case "custom":
		s.title = "API Key for the custom endpoint"
		s.isOptional = true
	default:
		return false
	}

	s.input = textinput.New()
	s.input.Focus()
	s.input.CharLimit = 255
	s.input.Width = 40
	s.input.EchoMode = textinput.EchoPassword
	s.input.EchoCharacter = '•'

	switch s.provider {
	case "anthropic":
		s.input.Placeholder = "sk-ant-..."
	case "openai":
		s.input.Placeholder = "sk-..."
	case "openrouter":
		s.input.Placeholder = "sk-or-v1-..."
	default:
		s.input.Placeholder = "Optional - press Enter to skip"
		s.input.EchoMode = textinput.EchoNormal
	}
	return true
}

func (s *APIKeyStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if s.provider == "" {
		if !s.initProvider(state) {
			return nil, nil
		}
		return s, textinput.Blink
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)

	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		val := strings.TrimSpace(s.input.Value())
		if val == "" && !s.isOptional {
			return s, cmd
		}
		setAPIKey(state, s.provider, val)
		return nil, nil
	}
	return s, cmd
}

func setAPIKey(state *InstallState, provider, key string) {
	switch provider {
	case "anthropic":
		state.Responder.AnthropicAPIKey = key
	case "openai":
		state.Responder.OpenAIAPIKey = key
	case "openrouter":
		state.Responder.OpenRouterAPIKey = key
	case "ollama":
		state.Responder.OllamaAPIKey = key
	case "custom":
		state.Responder.CustomOpenAIAPIKey = key
	}
}

func (s *APIKeyStep) View(state *InstallState) string {
	if s.provider == "" {
		return "Loading...\n"
	}

	optionalHint := ""
	if s.isOptional {
		optionalHint = " (optional - press Enter to skip)"
	}

	return fmt.Sprintf("Enter your %s%s:\n\n%s\n\n(press enter to confirm)\n",
		s.title, optionalHint, s.input.View())
}
