package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikolajIvanov/langchain-crash-course/log"
	"github.com/nikolajIvanov/langchain-crash-course/message"
)

type fakeStore struct {
	turns     map[string][]message.Turn
	loadErr   error
	appendErr error
	failAfter int
	appends   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{turns: map[string][]message.Turn{}, failAfter: -1}
}

func (f *fakeStore) Load(_ context.Context, id string) ([]message.Turn, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.turns[id], nil
}

func (f *fakeStore) Append(_ context.Context, id string, t message.Turn) error {
	if f.appendErr != nil && f.appends >= f.failAfter {
		return f.appendErr
	}
	f.appends++
	f.turns[id] = append(f.turns[id], t)
	return nil
}

func (f *fakeStore) Clear(_ context.Context, id string) error {
	delete(f.turns, id)
	return nil
}

func (f *fakeStore) Close() error { return nil }

var seed = message.System("You are a helpful assistant.")

func TestSession_HydrateEmptySeedsAndPersists(t *testing.T) {
	fs := newFakeStore()
	s := NewSession(fs, "s1", log.Discard{})

	l := s.Hydrate(context.Background(), seed)
	assert.Equal(t, []message.Turn{seed}, l.View())
	assert.Equal(t, []message.Turn{seed}, fs.turns["s1"])
	assert.False(t, s.Degraded())
	assert.Empty(t, s.Warnings())
}

func TestSession_HydrateExistingIgnoresSeed(t *testing.T) {
	fs := newFakeStore()
	fs.turns["s1"] = []message.Turn{seed, message.User("hi"), message.Assistant("hello")}
	s := NewSession(fs, "s1", log.Discard{})

	l := s.Hydrate(context.Background(), message.System("other"))
	assert.Equal(t, 3, l.Len())
	assert.Len(t, fs.turns["s1"], 3)
}

func TestSession_LoadFailureFallsBackToMemory(t *testing.T) {
	fs := newFakeStore()
	fs.loadErr = errors.New("unavailable")
	s := NewSession(fs, "s1", log.Discard{})

	l := s.Hydrate(context.Background(), seed)
	assert.Equal(t, []message.Turn{seed}, l.View())
	assert.True(t, s.Degraded())

	warnings := s.Warnings()
	require.Len(t, warnings, 1)
	var perr *PersistenceError
	require.True(t, errors.As(warnings[0], &perr))
	assert.Equal(t, "load", perr.Op)
	assert.Equal(t, "s1", perr.SessionID)
	assert.ErrorIs(t, warnings[0], fs.loadErr)

	s.Record(context.Background(), message.User("not written"))
	assert.Empty(t, fs.turns["s1"])
	assert.NoError(t, s.Clear(context.Background()))
}

func TestSession_AppendFailureStopsMirroring(t *testing.T) {
	fs := newFakeStore()
	fs.appendErr = errors.New("disk full")
	fs.failAfter = 1
	s := NewSession(fs, "s1", log.Discard{})

	s.Record(context.Background(), message.User("a"), message.User("b"), message.User("c"))

	assert.Equal(t, []message.Turn{message.User("a")}, fs.turns["s1"])
	assert.True(t, s.Degraded())
	require.Len(t, s.Warnings(), 1)
	assert.Contains(t, s.Warnings()[0].Error(), "store append for session s1: disk full")
}

func TestSession_NilStore(t *testing.T) {
	s := NewSession(nil, "s1", nil)
	l := s.Hydrate(context.Background(), seed)
	assert.Equal(t, 1, l.Len())
	s.Record(context.Background(), message.User("x"))
	assert.False(t, s.Degraded())
	assert.NoError(t, s.Clear(context.Background()))
	assert.Equal(t, "s1", s.ID())
}
