package installer

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/sandevgo/tuskchat/internal/service/responder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// drive feeds msgs to the wizard model, running returned nextMsg commands
// the way the program loop would.
func drive(t *testing.T, m model, msgs ...tea.Msg) model {
	t.Helper()
	queue := append([]tea.Msg{nextMsg{}}, msgs...)
	for len(queue) > 0 {
		msg := queue[0]
		queue = queue[1:]

		next, cmd := m.Update(msg)
		m = next.(model)
		queue = append(collectNext(cmd), queue...)
	}
	return m
}

func collectNext(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	switch msg := cmd().(type) {
	case nextMsg:
		return []tea.Msg{msg}
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			if c == nil {
				continue
			}
			if _, ok := c().(nextMsg); ok {
				out = append(out, nextMsg{})
			}
		}
		return out
	}
	return nil
}

func typeText(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestWizard_OpenAIWebOnly(t *testing.T) {
	dir := t.TempDir()
	state := NewInstallState(dir, false)
	m := newModel(state, getSteps())

	m = drive(t, m,
		key("enter"),        // OpenAI
		typeText("sk-test"), // API key
		key("enter"),
		key("enter"), // default model
		key("enter"), // web only
	)

	assert.Equal(t, len(m.steps), m.currentStep)
	assert.Equal(t, "openai", state.Responder.Provider)
	assert.Equal(t, "sk-test", state.Responder.OpenAIAPIKey)
	assert.Equal(t, "gpt-4", state.Responder.Model)
	assert.False(t, state.EnableTelegram)

	vars, err := godotenv.Read(filepath.Join(dir, ".env"))
	require.NoError(t, err)
	assert.Equal(t, "openai", vars["LLM_PROVIDER"])
	assert.Equal(t, "sk-test", vars["OPENAI_API_KEY"])
	assert.Equal(t, "0.7", vars["LLM_TEMPERATURE"])
	assert.Equal(t, "500", vars["LLM_MAX_TOKENS"])
	assert.NotContains(t, vars, "TELEGRAM_TOKEN")

	data, err := os.ReadFile(filepath.Join(dir, "SYSTEM.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "[IMAGE:url]")
}

func TestWizard_EchoWithTelegram(t *testing.T) {
	dir := t.TempDir()
	state := NewInstallState(dir, false)
	m := newModel(state, getSteps())

	echo := []tea.Msg{key("down"), key("down"), key("down"), key("down"), key("down"), key("enter")}
	m = drive(t, m, append(echo,
		key("down"), key("enter"), // also Telegram
		typeText("123:ABC"), key("enter"),
		typeText("42"), key("enter"),
	)...)

	assert.Equal(t, len(m.steps), m.currentStep)
	assert.Equal(t, "echo", state.Responder.Provider)
	assert.True(t, state.EnableTelegram)

	vars, err := godotenv.Read(filepath.Join(dir, ".env"))
	require.NoError(t, err)
	assert.Equal(t, "true", vars["ENABLE_TELEGRAM"])
	assert.Equal(t, "123:ABC", vars["TELEGRAM_TOKEN"])
	assert.Equal(t, "42", vars["TELEGRAM_OWNER_ID"])
}

func TestWizard_CtrlCQuits(t *testing.T) {
	m := newModel(NewInstallState(t.TempDir(), false), getSteps())

	next, cmd := m.Update(key("ctrl+c"))
	assert.True(t, next.(model).quitting)
	assert.NotNil(t, cmd)
	assert.Equal(t, "Setup cancelled.\n", next.(model).View())
}

func TestTelegramOwnerStep_RejectsNonNumeric(t *testing.T) {
	state := NewInstallState(t.TempDir(), false)
	state.EnableTelegram = true

	step := NewTelegramOwnerStep()
	step, _ = step.Update(typeText("abc"), state, 80, 24)
	next, _ := step.Update(key("enter"), state, 80, 24)

	require.NotNil(t, next)
	assert.Contains(t, next.View(state), "Not a numeric user ID")
}

func TestSaveEnv_KeepsExistingFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("LLM_PROVIDER=openai\n"), 0600))

	state := NewInstallState(dir, false)
	state.Responder.Provider = "echo"
	Finalize(state)

	_, err := SaveEnv(state)
	assert.ErrorIs(t, err, ErrEnvExists)

	state.Force = true
	path, err := SaveEnv(state)
	require.NoError(t, err)
	assert.Equal(t, envPath, path)

	vars, err := godotenv.Read(envPath)
	require.NoError(t, err)
	assert.Equal(t, "echo", vars["LLM_PROVIDER"])
}

func TestInitializeFiles_DoesNotOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "SYSTEM.md")
	require.NoError(t, os.WriteFile(path, []byte("custom"), 0644))

	require.NoError(t, InitializeFiles(NewInstallState(dir, false)))
	data, _ := os.ReadFile(path)
	assert.Equal(t, "custom", string(data))

	require.NoError(t, InitializeFiles(NewInstallState(dir, true)))
	data, _ = os.ReadFile(path)
	assert.Equal(t, responder.DefaultSystemPrompt+"\n", string(data))
}

func TestFinalize_Defaults(t *testing.T) {
	state := NewInstallState("", false)
	state.Telegram.Token = "leftover"
	state.Responder.OllamaBaseURL = "http://localhost:11434"

	Finalize(state)

	assert.Equal(t, "echo", state.Responder.Provider)
	assert.Equal(t, "echo", state.Responder.Model)
	assert.Equal(t, 0.7, state.Responder.Temperature)
	assert.Equal(t, 500, state.Responder.MaxTokens)
	assert.Equal(t, 2, state.Responder.MaxRetries)
	assert.Empty(t, state.Responder.OllamaBaseURL)
	assert.Empty(t, state.Telegram.Token)
}
