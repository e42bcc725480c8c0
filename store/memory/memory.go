// Package memory keeps conversations in a process-local map.
package memory

import (
	"context"
	"sync"

	"github.com/nikolajIvanov/langchain-crash-course/message"
	"github.com/nikolajIvanov/langchain-crash-course/store"
)

// Store is a ConversationStore backed by a map. It is safe for concurrent
// use.
type Store struct {
	mu       sync.RWMutex
	sessions map[string][]message.Turn
}

var _ store.ConversationStore = (*Store)(nil)

func New() *Store {
	return &Store{sessions: make(map[string][]message.Turn)}
}

func (s *Store) Load(_ context.Context, sessionID string) ([]message.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns := s.sessions[sessionID]
	out := make([]message.Turn, len(turns))
	for i, t := range turns {
		out[i] = t.Clone()
	}
	return out, nil
}

func (s *Store) Append(_ context.Context, sessionID string, turn message.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sessionID] = append(s.sessions[sessionID], turn.Clone())
	return nil
}

func (s *Store) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
	return nil
}

// Sessions returns the ids of all non-empty sessions.
func (s *Store) Sessions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids
}

func (s *Store) Close() error {
	return nil
}
