// Package message defines conversation turns and the append-only Log the
// agent loops operate on.
//
// A Log is never rewritten: Append copies turns in and View copies them
// out, so a turn cannot change once it is part of the conversation. The
// helpers in llms.go translate turns to and from langchaingo's
// llms.MessageContent so any llms.Model can serve as the generator.
package message
