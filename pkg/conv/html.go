package conv

import (
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/html"
	"github.com/microcosm-cc/bluemonday"
)

// Raw HTML nodes are never emitted and smartypants is off, so text comes out
// exactly as written, only escaped.
var (
	htmlFlags = html.SkipHTML
	webPolicy = bluemonday.NewPolicy()
	tgPolicy  = bluemonday.NewPolicy()
)

func init() {
	webPolicy.AllowElements("div", "p", "strong", "hr", "span")
	webPolicy.AllowAttrs("class").OnElements("div", "span", "img")
	webPolicy.AllowAttrs("id").OnElements("div")
	webPolicy.AllowAttrs("src", "alt").OnElements("img")
	webPolicy.AllowURLSchemes("http", "https")
	webPolicy.AllowRelativeURLs(true)

	// Allowed tags https://core.telegram.org/bots/api#html-style
	tgPolicy.AllowElements("b", "strong")
}

// NewRoot returns an empty container to collect nodes into.
func NewRoot() *ast.Document {
	return &ast.Document{}
}

// AppendImage adds an <img> with the given alt text.
func AppendImage(parent ast.Node, url, alt string) {
	img := &ast.Image{Destination: []byte(url)}
	if alt != "" {
		ast.AppendChild(img, newText(alt))
	}
	ast.AppendChild(parent, img)
}

// AppendRule adds an <hr>.
func AppendRule(parent ast.Node) {
	ast.AppendChild(parent, &ast.HorizontalRule{})
}

// AppendParagraph adds a <p> made of plain and <strong> runs.
func AppendParagraph(parent ast.Node, spans []Span) {
	p := &ast.Paragraph{}
	for _, s := range spans {
		if s.Emphasized {
			strong := &ast.Strong{}
			ast.AppendChild(strong, newText(s.Text))
			ast.AppendChild(p, strong)
			continue
		}
		ast.AppendChild(p, newText(s.Text))
	}
	ast.AppendChild(parent, p)
}

func newText(s string) *ast.Text {
	return &ast.Text{Leaf: ast.Leaf{Literal: []byte(s)}}
}

// RenderHTML renders nodes to escaped HTML without sanitizing.
func RenderHTML(root ast.Node) []byte {
	renderer := html.NewRenderer(html.RendererOptions{Flags: htmlFlags})
	return markdown.Render(root, renderer)
}

// SanitizeWeb restricts a fragment to the transcript page vocabulary.
func SanitizeWeb(fragment []byte) string {
	return string(webPolicy.SanitizeBytes(fragment))
}

// SanitizeTelegram restricts a fragment to what Telegram HTML mode accepts.
func SanitizeTelegram(fragment []byte) string {
	return string(tgPolicy.SanitizeBytes(fragment))
}

// TelegramHTML renders paragraph spans for a Telegram message.
func TelegramHTML(spans []Span) string {
	root := NewRoot()
	AppendParagraph(root, spans)
	return SanitizeTelegram(RenderHTML(root))
}
