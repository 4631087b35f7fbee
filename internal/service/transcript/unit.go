package transcript

import (
	"time"

	"github.com/sandevgo/tuskchat/internal/core"
)

// Element is one visual piece of a Unit: *ImageElement, *RuleElement or
// *ParagraphElement.
type Element interface {
	element()
}

type ImageElement struct {
	URL string
}

type RuleElement struct{}

type Run struct {
	Text       string
	Emphasized bool
}

type ParagraphElement struct {
	Runs []Run
}

func (*ImageElement) element()     {}
func (*RuleElement) element()      {}
func (*ParagraphElement) element() {}

// Unit is the visual representation of one message as appended to a surface.
type Unit struct {
	Role       core.Role
	Elements   []Element
	Timestamp  string
	RenderedAt time.Time
}

// Surface is a display target for units. Implementations own their
// visible log; the renderer only appends to it.
type Surface interface {
	Append(unit Unit) error
	ScrollToEnd()
}

// PendingSurface is implemented by surfaces that can show a
// "reply pending" indicator.
type PendingSurface interface {
	SetPending(pending bool)
}
