package responder

import (
	"os"
	"strings"

	"github.com/sandevgo/tuskchat/internal/core"
)

// DefaultSystemPrompt teaches the model the markup the chat surfaces render.
const DefaultSystemPrompt = `You are a friendly assistant answering in a chat window.

Format replies with this markup only:
- [IMAGE:url] shows an image. Images are always displayed above the text of the reply.
- A line containing only --- draws a horizontal separator.
- **text** makes text bold.

Do not use any other Markdown or HTML. Keep replies short and ask one follow-up
question when more details are needed.

When the get_car_inventory and search_cars tools are available, use them to
look up rental cars instead of guessing. Mention the daily price of every car
you recommend, show at most three cars at once, and show a car's picture by
writing [IMAGE:] followed by the image_url value from its data.`

// SystemPrompt reads the operator's prompt from path and falls back to
// DefaultSystemPrompt when the file is missing or blank.
type SystemPrompt struct {
	path string
}

func NewSystemPrompt(path string) *SystemPrompt {
	return &SystemPrompt{path: path}
}

func (p *SystemPrompt) Build() []core.Message {
	return []core.Message{{Role: core.RoleSystem, Content: loadPrompt(p.path)}}
}

func loadPrompt(path string) string {
	if path != "" {
		if data, err := os.ReadFile(path); err == nil && strings.TrimSpace(string(data)) != "" {
			return string(data)
		}
	}
	return DefaultSystemPrompt
}
