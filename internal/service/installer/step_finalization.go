package installer

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandevgo/tuskchat/internal/config"
)

// FinalizationStep fills in the generation settings the wizard does not ask for.
type FinalizationStep struct{}

func NewFinalizationStep() Step {
	return &FinalizationStep{}
}

func (s *FinalizationStep) Init() tea.Cmd {
	return advance
}

func (s *FinalizationStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	Finalize(state)
	return nil, nil
}

func (s *FinalizationStep) View(state *InstallState) string {
	return "Finalizing configuration...\n"
}

// Finalize sets defaults for every responder setting left empty.
func Finalize(state *InstallState) {
	r := &state.Responder
	if r.Provider == "" {
		r.Provider = "echo"
	}
	if r.Model == "" {
		if def, ok := defaultModels[r.Provider]; ok {
			r.Model = def
		} else {
			r.Model = r.Provider
		}
	}
	if r.Temperature == 0 {
		r.Temperature = 0.7
	}
	if r.MaxTokens == 0 {
		r.MaxTokens = 500
	}
	if r.MaxRetries == 0 {
		r.MaxRetries = 2
	}
	if r.Provider != "ollama" {
		r.OllamaBaseURL = ""
	}
	if !state.EnableTelegram {
		state.Telegram = config.TelegramConfig{}
	}
}
