package web

import (
	"embed"
	"errors"
	"html/template"
	"io"
	"net/http"
	"strings"

	"github.com/inbucket/html2text"
	"github.com/sandevgo/tuskchat/internal/core"
	"github.com/sandevgo/tuskchat/internal/service/chat"
	"github.com/sandevgo/tuskchat/pkg/log"
)

//go:embed templates/index.html
var templatesFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

type pageData struct {
	Title       string
	ScrollDelay int64
	surfaceView
}

// handleIndex renders the caller's conversation. Visitors who have not sent
// anything yet get an empty page and no session.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := pageData{
		Title:       core.TuskName,
		ScrollDelay: s.scrollDelayMillis(),
		surfaceView: surfaceView{Latest: -1},
	}
	if sess, ok := s.sessions.lookup(r); ok {
		data.surfaceView = sess.surface.view()
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(w, data); err != nil {
		log.FromCtx(r.Context()).Error().Err(err).Msg("failed to render page")
	}
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := s.sessions.get(w, r, s.deps.Exchanger, s.opts)

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestSize)
	message := r.PostFormValue("message")

	err := sess.chat.Submit(ctx, message)
	switch {
	case err == nil, errors.Is(err, chat.ErrEmptyMessage):
		http.Redirect(w, r, "/#latest", http.StatusSeeOther)
	case errors.Is(err, chat.ErrBusy):
		http.Error(w, "a reply is still pending", http.StatusConflict)
	default:
		log.FromCtx(ctx).Error().Err(err).Msg("submit failed")
		http.Error(w, "failed to send message", http.StatusInternalServerError)
	}
}

func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	var joined string
	if sess, ok := s.sessions.lookup(r); ok {
		joined = sess.surface.joined()
	}

	text, err := html2text.FromReader(strings.NewReader(joined), html2text.Options{
		OmitLinks: true,
	})
	if err != nil {
		log.FromCtx(r.Context()).Error().Err(err).Msg("failed to convert transcript")
		http.Error(w, "failed to convert transcript", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, text)
}

func (s *Server) scrollDelayMillis() int64 {
	return s.scrollDelay.Milliseconds()
}
