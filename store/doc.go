// Package store persists chat sessions so a conversation survives restarts.
//
// ConversationStore is implemented by one subpackage per backend:
//   - memory: process-local map, for tests and one-off runs
//   - file: one JSON-lines file per session
//   - redis: a Redis list per session
//   - postgres: a table of JSONB turns
//   - sqlite: the same table in a local SQLite file
//
// Session wraps a store for one session id:
//
//	sess := store.NewSession(redisStore, "user-42", logger)
//	history := sess.Hydrate(ctx, message.System("You are a helpful assistant."))
//	...
//	sess.Record(ctx, newTurns...)
//
// Store failures never abort a conversation. The session degrades to
// memory-only operation and reports the failure through Warnings.
package store
