package store

import (
	"context"

	"github.com/nikolajIvanov/langchain-crash-course/log"
	"github.com/nikolajIvanov/langchain-crash-course/message"
)

// Session binds a ConversationStore to one session id. It hydrates the log
// at the start of a run and mirrors every appended turn afterwards.
//
// The first store failure switches the session to in-memory operation for
// the rest of its life. The failure is kept as a warning instead of being
// returned, so the conversation itself continues.
type Session struct {
	store    ConversationStore
	id       string
	logger   log.Logger
	degraded bool
	warnings []error
}

// NewSession returns a session for id. A nil store gives a purely
// in-memory session.
func NewSession(store ConversationStore, id string, logger log.Logger) *Session {
	return &Session{
		store:  store,
		id:     id,
		logger: log.OrDefault(logger),
	}
}

func (s *Session) ID() string {
	return s.id
}

// Hydrate returns the stored history of the session. An empty session is
// seeded with seed, and the seed is persisted. If loading fails the seed is
// returned and the session degrades.
func (s *Session) Hydrate(ctx context.Context, seed ...message.Turn) *message.Log {
	if s.store == nil || s.degraded {
		return message.NewLog(seed...)
	}

	turns, err := s.store.Load(ctx, s.id)
	if err != nil {
		s.degrade(&PersistenceError{Op: "load", SessionID: s.id, Err: err})
		return message.NewLog(seed...)
	}
	if len(turns) > 0 {
		s.logger.Debug("session %s: loaded %d turns", s.id, len(turns))
		return message.NewLog(turns...)
	}

	s.logger.Debug("session %s: no history, seeding %d turns", s.id, len(seed))
	s.Record(ctx, seed...)
	return message.NewLog(seed...)
}

// Record mirrors turns to the store in order. After a failure nothing more
// is written.
func (s *Session) Record(ctx context.Context, turns ...message.Turn) {
	if s.store == nil {
		return
	}
	for _, t := range turns {
		if s.degraded {
			return
		}
		if err := s.store.Append(ctx, s.id, t); err != nil {
			s.degrade(&PersistenceError{Op: "append", SessionID: s.id, Err: err})
		}
	}
}

// Clear removes the stored history. It is a no-op for a degraded session.
func (s *Session) Clear(ctx context.Context) error {
	if s.store == nil || s.degraded {
		return nil
	}
	if err := s.store.Clear(ctx, s.id); err != nil {
		return &PersistenceError{Op: "clear", SessionID: s.id, Err: err}
	}
	return nil
}

// Degraded reports whether the session fell back to memory only.
func (s *Session) Degraded() bool {
	return s.degraded
}

// Warnings returns the persistence failures seen so far.
func (s *Session) Warnings() []error {
	return append([]error(nil), s.warnings...)
}

func (s *Session) degrade(err error) {
	s.degraded = true
	s.warnings = append(s.warnings, err)
	s.logger.Warn("%v; continuing in memory only", err)
}
