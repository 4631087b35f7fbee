package installer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandevgo/tuskchat/internal/service/responder"
	"github.com/sandevgo/tuskchat/pkg/env"
)

var ErrEnvExists = errors.New(".env file already exists")

// RenderEnv builds the .env content for state.
func RenderEnv(state *InstallState) (string, error) {
	var b strings.Builder

	responderEnv, err := env.MarshalEnv(&state.Responder)
	if err != nil {
		return "", fmt.Errorf("failed to marshal responder config: %w", err)
	}
	b.WriteString(responderEnv)

	if state.EnableTelegram {
		b.WriteString("ENABLE_TELEGRAM=true\n")
		telegramEnv, err := env.MarshalEnv(&state.Telegram)
		if err != nil {
			return "", fmt.Errorf("failed to marshal telegram config: %w", err)
		}
		b.WriteString(telegramEnv)
	}
	return b.String(), nil
}

// SaveEnv writes <runtime>/.env. An existing file is kept unless state.Force is set.
func SaveEnv(state *InstallState) (string, error) {
	if err := os.MkdirAll(state.RuntimePath, 0755); err != nil {
		return "", fmt.Errorf("failed to create runtime directory: %w", err)
	}

	envPath := filepath.Join(state.RuntimePath, ".env")
	if _, err := os.Stat(envPath); err == nil && !state.Force {
		return "", fmt.Errorf("%w at %s", ErrEnvExists, envPath)
	}

	content, err := RenderEnv(state)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(envPath, []byte(content), 0600); err != nil {
		return "", err
	}
	return envPath, nil
}

// InitializeFiles writes the default SYSTEM.md unless one exists.
func InitializeFiles(state *InstallState) error {
	if err := os.MkdirAll(state.RuntimePath, 0755); err != nil {
		return fmt.Errorf("failed to create runtime directory: %w", err)
	}

	path := filepath.Join(state.RuntimePath, "SYSTEM.md")
	if _, err := os.Stat(path); err == nil && !state.Force {
		return nil
	}

	if err := os.WriteFile(path, []byte(responder.DefaultSystemPrompt+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// SaveEnvStep writes the collected configuration to .env file
type SaveEnvStep struct {
	err   error
	saved bool
}

func NewSaveEnvStep() Step {
	return &SaveEnvStep{}
}

func (s *SaveEnvStep) Init() tea.Cmd {
	return advance
}

func (s *SaveEnvStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if s.saved {
		return nil, nil
	}
	if s.err != nil {
		return s, nil
	}

	if _, err := SaveEnv(state); err != nil {
		s.err = err
		return s, nil
	}

	s.saved = true
	return nil, nil
}

func (s *SaveEnvStep) View(state *InstallState) string {
	if s.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", s.err)) + "\n\n(press ctrl+c to quit)\n"
	}
	if s.saved {
		return "Configuration saved successfully!\n"
	}
	return "Saving configuration...\n"
}

// InitializeFilesStep writes the runtime files next to .env
type InitializeFilesStep struct {
	err  error
	done bool
}

func NewInitializeFilesStep() Step {
	return &InitializeFilesStep{}
}

func (s *InitializeFilesStep) Init() tea.Cmd {
	return advance
}

func (s *InitializeFilesStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if s.done {
		return nil, nil
	}
	if s.err != nil {
		return s, nil
	}

	if err := InitializeFiles(state); err != nil {
		s.err = err
		return s, nil
	}

	s.done = true
	return nil, nil
}

func (s *InitializeFilesStep) View(state *InstallState) string {
	if s.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", s.err)) + "\n\n(press ctrl+c to quit)\n"
	}
	if s.done {
		return "Runtime files initialized successfully!\n"
	}
	return "Initializing runtime files...\n"
}
