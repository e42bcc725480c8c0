package message

// Log is an append-only conversation. It is owned by a single run and is
// not safe for concurrent use.
type Log struct {
	turns []Turn
}

// NewLog returns a log seeded with the given turns.
func NewLog(seed ...Turn) *Log {
	l := &Log{}
	l.Append(seed...)
	return l
}

// Append adds turns to the end of the log in the given order. The log keeps
// its own copies, so later changes to the arguments do not leak in.
func (l *Log) Append(turns ...Turn) {
	for _, t := range turns {
		l.turns = append(l.turns, t.Clone())
	}
}

// View returns a copy of every turn in conversation order.
func (l *Log) View() []Turn {
	out := make([]Turn, len(l.turns))
	for i, t := range l.turns {
		out[i] = t.Clone()
	}
	return out
}

func (l *Log) Len() int {
	return len(l.turns)
}

// Last returns the most recent turn.
func (l *Log) Last() (Turn, bool) {
	if len(l.turns) == 0 {
		return Turn{}, false
	}
	return l.turns[len(l.turns)-1].Clone(), true
}

// LastAssistant returns the most recent assistant turn.
func (l *Log) LastAssistant() (Turn, bool) {
	return LastAssistant(l.turns)
}

// Count returns the number of turns with the given role.
func (l *Log) Count(role Role) int {
	return Count(l.turns, role)
}

// Count returns the number of turns in turns with the given role.
func Count(turns []Turn, role Role) int {
	n := 0
	for _, t := range turns {
		if t.Role == role {
			n++
		}
	}
	return n
}

// LastAssistant scans turns backwards for the newest assistant turn.
func LastAssistant(turns []Turn) (Turn, bool) {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == RoleAssistant {
			return turns[i].Clone(), true
		}
	}
	return Turn{}, false
}

// DropUnanswered returns turns without the assistant turns whose tool calls
// are not all answered by the tool turns right after them. Those partial
// answers and tool turns that answer no preceding call are dropped too.
// The result can be sent to a provider that rejects dangling calls.
func DropUnanswered(turns []Turn) []Turn {
	out := make([]Turn, 0, len(turns))
	for i := 0; i < len(turns); {
		t := turns[i]
		switch {
		case t.Role == RoleTool:
			i++
			continue
		case t.Role != RoleAssistant || !t.HasToolCalls():
			out = append(out, t.Clone())
			i++
			continue
		}

		answered := make(map[string]bool, len(t.ToolCalls))
		j := i + 1
		for ; j < len(turns) && turns[j].Role == RoleTool; j++ {
			answered[turns[j].ToolCallID] = true
		}
		complete := true
		for _, call := range t.ToolCalls {
			if !answered[call.ID] {
				complete = false
				break
			}
		}
		if complete {
			for _, kept := range turns[i:j] {
				out = append(out, kept.Clone())
			}
		}
		i = j
	}
	return out
}
