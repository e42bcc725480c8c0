package store

import (
	"context"
	"fmt"

	"github.com/nikolajIvanov/langchain-crash-course/message"
)

// ConversationStore persists the turns of chat sessions.
type ConversationStore interface {
	// Load returns the turns of a session in order. An unknown session
	// yields no turns and no error.
	Load(ctx context.Context, sessionID string) ([]message.Turn, error)

	// Append adds one turn to the end of a session.
	Append(ctx context.Context, sessionID string, turn message.Turn) error

	// Clear removes every turn of a session.
	Clear(ctx context.Context, sessionID string) error

	Close() error
}

// PersistenceError reports a failed store operation for a session.
type PersistenceError struct {
	Op        string
	SessionID string
	Err       error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("store %s for session %s: %v", e.Op, e.SessionID, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
