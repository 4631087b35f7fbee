package conv

import "strings"

type BlockKind int

const (
	KindImage BlockKind = iota + 1
	KindSeparator
	KindParagraph
)

func (k BlockKind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindSeparator:
		return "separator"
	case KindParagraph:
		return "paragraph"
	default:
		return "unknown"
	}
}

// Block is one structural unit of a parsed message.
type Block interface {
	Kind() BlockKind
}

// Image references a picture by URL. The URL is taken verbatim from the
// message and is not validated.
type Image struct {
	URL string
}

func (Image) Kind() BlockKind { return KindImage }

// Separator is a horizontal rule.
type Separator struct{}

func (Separator) Kind() BlockKind { return KindSeparator }

type Span struct {
	Text       string
	Emphasized bool
}

type Paragraph struct {
	Spans []Span
}

func (Paragraph) Kind() BlockKind { return KindParagraph }

// Text returns the visible text of the paragraph without markup.
func (p Paragraph) Text() string {
	var sb strings.Builder
	for _, s := range p.Spans {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// Document is the parsed form of one message. All Image blocks come before
// any text-derived block.
type Document struct {
	Blocks []Block
}

func (d Document) Images() []Image {
	var images []Image
	for _, b := range d.Blocks {
		if img, ok := b.(Image); ok {
			images = append(images, img)
		}
	}
	return images
}

// Text joins the visible text of all paragraphs with newlines.
func (d Document) Text() string {
	var lines []string
	for _, b := range d.Blocks {
		if p, ok := b.(Paragraph); ok {
			lines = append(lines, p.Text())
		}
	}
	return strings.Join(lines, "\n")
}
