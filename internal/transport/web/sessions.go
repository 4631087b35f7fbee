package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sandevgo/tuskchat/internal/core"
	"github.com/sandevgo/tuskchat/internal/service/chat"
	"github.com/sandevgo/tuskchat/internal/service/transcript"
)

const (
	sessionCookie  = "tuskchat_session"
	sessionIdleTTL = 30 * time.Minute
	maxSessions    = 1000
)

type webSession struct {
	chat     *chat.Session
	surface  *htmlSurface
	lastSeen time.Time
}

// sessionStore maps browser cookies to conversations. A conversation is
// dropped once it has been idle for ttl, and the least recently used one
// makes room when max is reached.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*webSession
	ttl      time.Duration
	max      int
	now      func() time.Time
}

func newSessionStore(ttl time.Duration, max int) *sessionStore {
	return &sessionStore{
		sessions: make(map[uuid.UUID]*webSession),
		ttl:      ttl,
		max:      max,
		now:      time.Now,
	}
}

// lookup returns the caller's live session without creating one.
func (st *sessionStore) lookup(r *http.Request) (*webSession, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.find(r)
}

// get returns the caller's session, creating one (and setting the cookie)
// when the request carries none, an unknown one or an expired one.
func (st *sessionStore) get(w http.ResponseWriter, r *http.Request, ex core.Exchanger, opts []transcript.Option) *webSession {
	st.mu.Lock()
	defer st.mu.Unlock()

	if s, ok := st.find(r); ok {
		return s
	}

	st.evict()

	id := uuid.New()
	surface := newHTMLSurface()
	s := &webSession{
		chat:     chat.NewSurfaceSession(surface, ex, opts...),
		surface:  surface,
		lastSeen: st.now(),
	}
	st.sessions[id] = s

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id.String(),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return s
}

func (st *sessionStore) find(r *http.Request) (*webSession, bool) {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil, false
	}
	id, err := uuid.Parse(c.Value)
	if err != nil {
		return nil, false
	}
	s, ok := st.sessions[id]
	if !ok {
		return nil, false
	}

	now := st.now()
	if st.expired(s, now) {
		delete(st.sessions, id)
		return nil, false
	}
	s.lastSeen = now
	return s, true
}

func (st *sessionStore) expired(s *webSession, now time.Time) bool {
	return st.ttl > 0 && now.Sub(s.lastSeen) > st.ttl
}

// evict drops expired sessions, then the least recently used ones until
// there is room for one more.
func (st *sessionStore) evict() {
	now := st.now()
	for id, s := range st.sessions {
		if st.expired(s, now) {
			delete(st.sessions, id)
		}
	}

	for st.max > 0 && len(st.sessions) >= st.max {
		var (
			oldestID uuid.UUID
			oldest   *webSession
		)
		for id, s := range st.sessions {
			if oldest == nil || s.lastSeen.Before(oldest.lastSeen) {
				oldestID, oldest = id, s
			}
		}
		delete(st.sessions, oldestID)
	}
}

func (st *sessionStore) len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}
