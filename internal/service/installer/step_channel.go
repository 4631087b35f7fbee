package installer

import (
	tea "github.com/charmbracelet/bubbletea"
)

// ChannelStep selects where the chat is served besides the web page and
// the terminal.
type ChannelStep struct {
	choices []string
	cursor  int
}

func NewChannelStep() Step {
	return &ChannelStep{
		choices: []string{"Web and terminal only", "Also Telegram"},
	}
}

func (s *ChannelStep) Init() tea.Cmd {
	return nil
}

func (s *ChannelStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		if key.String() == "enter" {
			state.EnableTelegram = s.cursor == 1
			return nil, nil
		}
		s.cursor = moveCursor(key.String(), s.cursor, len(s.choices))
	}
	return s, nil
}

func (s *ChannelStep) View(state *InstallState) string {
	return renderChoices("Select your chat channels:", s.choices, s.cursor)
}
