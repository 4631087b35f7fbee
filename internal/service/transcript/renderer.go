package transcript

import (
	"context"
	"time"

	"github.com/sandevgo/tuskchat/internal/core"
	"github.com/sandevgo/tuskchat/pkg/conv"
	"github.com/sandevgo/tuskchat/pkg/log"
)

const DefaultTimestampLayout = "3:04 PM"

type Option func(*Renderer)

func WithScrollDelay(d time.Duration) Option {
	return func(r *Renderer) {
		r.scrollDelay = d
	}
}

func WithTimestampLayout(layout string) Option {
	return func(r *Renderer) {
		if layout != "" {
			r.layout = layout
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Renderer) {
		r.now = now
	}
}

// Renderer turns parsed documents into units on a surface.
type Renderer struct {
	surface     Surface
	scroller    *Scroller
	scrollDelay time.Duration
	layout      string
	now         func() time.Time
}

func NewRenderer(surface Surface, opts ...Option) *Renderer {
	r := &Renderer{
		surface:     surface,
		scrollDelay: DefaultScrollDelay,
		layout:      DefaultTimestampLayout,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.scroller = NewScroller(r.scrollDelay, surface.ScrollToEnd)
	return r
}

// Render builds a unit for doc, appends it to the surface and schedules a
// scroll to it. It never fails: surface errors are logged and block kinds it
// does not know are skipped. doc is not modified.
func (r *Renderer) Render(ctx context.Context, doc conv.Document, role core.Role) Unit {
	logger := log.FromCtx(ctx)

	unit := Unit{
		Role:     role,
		Elements: make([]Element, 0, len(doc.Blocks)),
	}

	for _, block := range doc.Blocks {
		switch b := block.(type) {
		case conv.Image:
			unit.Elements = append(unit.Elements, &ImageElement{URL: b.URL})
		case conv.Separator:
			unit.Elements = append(unit.Elements, &RuleElement{})
		case conv.Paragraph:
			runs := make([]Run, 0, len(b.Spans))
			for _, s := range b.Spans {
				runs = append(runs, Run{Text: s.Text, Emphasized: s.Emphasized})
			}
			unit.Elements = append(unit.Elements, &ParagraphElement{Runs: runs})
		default:
			logger.Debug().Str("kind", block.Kind().String()).Msgf("skipping unsupported block %T", block)
		}
	}

	unit.RenderedAt = r.now()
	unit.Timestamp = unit.RenderedAt.Format(r.layout)

	if err := r.surface.Append(unit); err != nil {
		logger.Error().Err(err).Str("role", role.String()).Msg("failed to append unit to surface")
		return unit
	}
	r.scroller.Schedule()

	return unit
}

// SetPending toggles the surface's pending indicator when it has one.
func (r *Renderer) SetPending(pending bool) {
	if ps, ok := r.surface.(PendingSurface); ok {
		ps.SetPending(pending)
	}
}
