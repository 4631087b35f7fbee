package telegram

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/sandevgo/tuskchat/internal/core"
	"github.com/sandevgo/tuskchat/internal/service/transcript"
	"github.com/sandevgo/tuskchat/pkg/conv"
	"github.com/sandevgo/tuskchat/pkg/log"
	tele "gopkg.in/telebot.v3"
)

const (
	maxTelegramMsgLen = 4000 // Safety margin below 4096
	ruleText          = "──────────"
	maxEntityLen      = 10 // longest entity the sanitizer emits, e.g. &#x1F600;
)

// sender is the part of *tele.Bot the chat surface needs.
type sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	Notify(to tele.Recipient, action tele.ChatAction, threadID ...int) error
}

// chatSurface shows units in one Telegram chat. The user's own messages are
// already in the chat, so only assistant units are sent.
type chatSurface struct {
	ctx  context.Context
	mu   sync.Mutex
	bot  sender
	chat tele.Recipient
}

func newChatSurface(ctx context.Context, bot sender, chat tele.Recipient) *chatSurface {
	return &chatSurface{ctx: ctx, bot: bot, chat: chat}
}

func (s *chatSurface) Append(unit transcript.Unit) error {
	if unit.Role == core.RoleUser {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	logger := log.FromCtx(s.ctx)
	var (
		errs  []error
		lines []string
	)
	for _, el := range unit.Elements {
		switch e := el.(type) {
		case *transcript.ImageElement:
			if e.URL == "" {
				continue
			}
			photo := &tele.Photo{File: tele.FromURL(e.URL)}
			if _, err := s.bot.Send(s.chat, photo); err != nil {
				logger.Error().Err(err).Str("url", e.URL).Msg("failed to send telegram photo")
				errs = append(errs, err)
			}
		case *transcript.RuleElement:
			lines = append(lines, ruleText)
		case *transcript.ParagraphElement:
			lines = append(lines, conv.TelegramHTML(toSpans(e.Runs)))
		}
	}

	text := strings.TrimSpace(strings.Join(lines, "\n"))
	if text == "" {
		return errors.Join(errs...)
	}

	for i, chunk := range splitHTML(text, maxTelegramMsgLen) {
		if _, err := s.bot.Send(s.chat, chunk, tele.ModeHTML); err != nil {
			logger.Error().Err(err).Int("chunk", i).Int("len", len(chunk)).Msg("failed to send telegram chunk")
			errs = append(errs, err)
			break
		}
	}
	return errors.Join(errs...)
}

// ScrollToEnd is a no-op: Telegram clients follow new messages themselves.
func (s *chatSurface) ScrollToEnd() {}

func (s *chatSurface) SetPending(pending bool) {
	if !pending {
		return
	}
	if err := s.bot.Notify(s.chat, tele.Typing); err != nil {
		log.FromCtx(s.ctx).Debug().Err(err).Msg("failed to send typing action")
	}
}

func toSpans(runs []transcript.Run) []conv.Span {
	spans := make([]conv.Span, len(runs))
	for i, r := range runs {
		spans[i] = conv.Span{Text: r.Text, Emphasized: r.Emphasized}
	}
	return spans
}

// splitHTML splits Telegram HTML into chunks of at most maxLen bytes. Cuts
// prefer line breaks and never fall inside a tag, an entity or a rune. Tags
// still open at a cut are closed and reopened in the next chunk.
func splitHTML(text string, maxLen int) []string {
	if len(text) <= maxLen {
		return []string{text}
	}

	atoms := htmlAtoms(text)

	var (
		chunks []string
		open   []string
	)
	for i := 0; i < len(atoms); {
		var b strings.Builder
		b.WriteString(openTags(open))
		prefixLen := b.Len()

		stack := slices.Clone(open)
		var (
			breakAt    = -1
			breakLen   int
			breakStack []string
		)

		j := i
		for ; j < len(atoms); j++ {
			next := applyTag(stack, atoms[j])
			if j > i && b.Len()+len(atoms[j])+len(closeTags(next)) > maxLen {
				break
			}
			b.WriteString(atoms[j])
			stack = next
			if atoms[j] == "\n" {
				breakAt, breakLen, breakStack = j+1, b.Len(), slices.Clone(stack)
			}
		}

		body := b.String()
		if j < len(atoms) && breakAt > i && breakLen > maxLen/3 {
			j, body, stack = breakAt, body[:breakLen], breakStack
		} else if j < len(atoms) {
			// Do not end a chunk on an empty element.
			for j-1 > i && isOpenTag(atoms[j-1]) {
				j--
				body = body[:len(body)-len(atoms[j])]
				stack = stack[:len(stack)-1]
			}
		}

		if strings.TrimSpace(body[prefixLen:]) != "" {
			chunks = append(chunks, strings.TrimRightFunc(body, unicode.IsSpace)+closeTags(stack))
		}

		for j < len(atoms) && strings.TrimSpace(atoms[j]) == "" {
			j++
		}
		i, open = j, stack
	}
	return chunks
}

// htmlAtoms splits text into pieces that must stay whole: tags, entities and
// single runes.
func htmlAtoms(text string) []string {
	var atoms []string
	for len(text) > 0 {
		n := 0
		switch text[0] {
		case '<':
			if end := strings.IndexByte(text, '>'); end > 0 {
				n = end + 1
			}
		case '&':
			if end := strings.IndexByte(text, ';'); end > 0 && end <= maxEntityLen && !strings.ContainsAny(text[1:end], " \n<&") {
				n = end + 1
			}
		}
		if n == 0 {
			_, n = utf8.DecodeRuneInString(text)
		}
		atoms = append(atoms, text[:n])
		text = text[n:]
	}
	return atoms
}

// applyTag returns the open tag stack after atom.
func applyTag(stack []string, atom string) []string {
	if len(atom) < 3 || atom[0] != '<' || atom[len(atom)-1] != '>' {
		return stack
	}
	inner := atom[1 : len(atom)-1]
	if name, ok := strings.CutPrefix(inner, "/"); ok {
		name = tagName(name)
		if n := len(stack); n > 0 && stack[n-1] == name {
			return slices.Clone(stack[:n-1])
		}
		return stack
	}
	if strings.HasSuffix(inner, "/") {
		return stack
	}
	return append(slices.Clone(stack), tagName(inner))
}

func isOpenTag(atom string) bool {
	return len(atom) > 2 && atom[0] == '<' && atom[1] != '/' && !strings.HasSuffix(atom, "/>")
}

func tagName(inner string) string {
	if i := strings.IndexFunc(inner, unicode.IsSpace); i >= 0 {
		inner = inner[:i]
	}
	return strings.ToLower(inner)
}

func openTags(stack []string) string {
	var b strings.Builder
	for _, name := range stack {
		b.WriteString("<" + name + ">")
	}
	return b.String()
}

func closeTags(stack []string) string {
	var b strings.Builder
	for i := len(stack) - 1; i >= 0; i-- {
		b.WriteString("</" + stack[i] + ">")
	}
	return b.String()
}
