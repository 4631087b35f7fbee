package history

import (
	"sync"

	"github.com/sandevgo/tuskchat/internal/core"
)

// Store is the append-only conversation log of one session. Insertion order
// is the conversation order and is preserved in every snapshot.
type Store struct {
	mu       sync.RWMutex
	messages []core.Message
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Append(role core.Role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, core.Message{Role: role, Content: content})
}

// Snapshot returns a copy of the log, safe to serialize or hold on to.
func (s *Store) Snapshot() []core.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}
