package web

import (
	"fmt"
	"html"
	"html/template"
	"strings"
	"sync"

	"github.com/sandevgo/tuskchat/internal/service/transcript"
	"github.com/sandevgo/tuskchat/pkg/conv"
)

const imageAlt = "image"

// htmlSurface keeps one browser session's transcript as sanitized HTML
// fragments. Pages are rendered from a snapshot.
type htmlSurface struct {
	mu      sync.Mutex
	entries []template.HTML
	latest  int
	pending bool
}

type surfaceView struct {
	Entries []template.HTML
	Latest  int
	Pending bool
}

func newHTMLSurface() *htmlSurface {
	return &htmlSurface{latest: -1}
}

func (s *htmlSurface) Append(unit transcript.Unit) error {
	fragment := renderUnit(unit)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, fragment)
	return nil
}

// ScrollToEnd marks the newest entry as the page's scroll target.
func (s *htmlSurface) ScrollToEnd() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = len(s.entries) - 1
}

func (s *htmlSurface) SetPending(pending bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = pending
}

func (s *htmlSurface) view() surfaceView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return surfaceView{
		Entries: append([]template.HTML(nil), s.entries...),
		Latest:  s.latest,
		Pending: s.pending,
	}
}

func (s *htmlSurface) joined() string {
	v := s.view()
	parts := make([]string, len(v.Entries))
	for i, e := range v.Entries {
		parts[i] = string(e)
	}
	return strings.Join(parts, "\n")
}

func renderUnit(unit transcript.Unit) template.HTML {
	root := conv.NewRoot()
	for _, el := range unit.Elements {
		switch e := el.(type) {
		case *transcript.ImageElement:
			conv.AppendImage(root, e.URL, imageAlt)
		case *transcript.RuleElement:
			conv.AppendRule(root)
		case *transcript.ParagraphElement:
			spans := make([]conv.Span, len(e.Runs))
			for i, r := range e.Runs {
				spans[i] = conv.Span{Text: r.Text, Emphasized: r.Emphasized}
			}
			conv.AppendParagraph(root, spans)
		}
	}

	fragment := fmt.Sprintf(
		`<div class="message %s"><div class="content">%s</div><span class="timestamp">%s</span></div>`,
		html.EscapeString(unit.Role.String()),
		conv.RenderHTML(root),
		html.EscapeString(unit.Timestamp),
	)
	return template.HTML(conv.SanitizeWeb([]byte(fragment)))
}
