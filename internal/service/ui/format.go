package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sandevgo/tuskchat/internal/core"
	"github.com/sandevgo/tuskchat/internal/service/transcript"
)

const defaultWidth = 80

// FormatUnit lays out one visual unit for a terminal of the given width:
// a role header with the timestamp, then the elements in order.
func FormatUnit(unit transcript.Unit, width int) string {
	if width <= 0 {
		width = defaultWidth
	}

	roleStyle := AssistantStyle
	if unit.Role == core.RoleUser {
		roleStyle = UserStyle
	}

	var b strings.Builder
	b.WriteString(roleStyle.Render(unit.Role.DisplayName()))
	if unit.Timestamp != "" {
		b.WriteString(" ")
		b.WriteString(DescStyle.Render(unit.Timestamp))
	}

	body := lipgloss.NewStyle().Width(width).PaddingLeft(2)
	for _, el := range unit.Elements {
		b.WriteString("\n")
		switch e := el.(type) {
		case *transcript.ImageElement:
			b.WriteString(body.Render(ImageStyle.Render("[image] " + e.URL)))
		case *transcript.RuleElement:
			b.WriteString(body.Render(RuleStyle.Render(strings.Repeat("─", max(width-2, 1)))))
		case *transcript.ParagraphElement:
			b.WriteString(body.Render(formatRuns(e.Runs)))
		}
	}
	return b.String()
}

func formatRuns(runs []transcript.Run) string {
	var b strings.Builder
	for _, r := range runs {
		if r.Emphasized {
			b.WriteString(EmphasisStyle.Render(r.Text))
			continue
		}
		b.WriteString(r.Text)
	}
	return b.String()
}
