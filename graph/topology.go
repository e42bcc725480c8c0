package graph

import (
	"fmt"

	"github.com/nikolajIvanov/langchain-crash-course/message"
)

// State is a node of a loop topology.
type State string

const (
	StateGenerate     State = "generate"
	StateReflect      State = "reflect"
	StateRespond      State = "respond"
	StateExecuteTools State = "execute_tools"
	StateRevise       State = "revise"
	// StateDone is terminal. No step is bound to it.
	StateDone State = "done"
)

// Edge is a possible transition, used for validation and drawing.
type Edge struct {
	From  State
	To    State
	Label string // condition under which the edge is taken, empty if always
}

// Topology decides transitions from the contents of the log alone. Start
// and Next must be pure: the same turns always give the same state, so a
// run can be inspected or resumed from any prefix of its log.
type Topology interface {
	Name() string
	// Entry is the state a fresh run begins in.
	Entry() State
	// Start is the first state for a run over turns. It is StateDone when
	// turns already satisfy the termination condition.
	Start(turns []message.Turn) State
	// Next is the state after from has appended its turns.
	Next(from State, turns []message.Turn) State
	Edges() []Edge
	// MaxSteps is the most steps a run starting from turns can take when
	// every step appends at least one turn.
	MaxSteps(turns []message.Turn) int
}

const (
	DefaultMaxTurns       = 6
	DefaultMaxToolResults = 2
	DefaultMaxToolRounds  = 10
)

// ReflectionLoop alternates generation and critique until the log holds
// more than MaxTurns turns:
//
//	generate -> (turns > MaxTurns ? done : reflect) -> generate -> ...
type ReflectionLoop struct {
	MaxTurns int
}

func (r ReflectionLoop) max() int {
	if r.MaxTurns <= 0 {
		return DefaultMaxTurns
	}
	return r.MaxTurns
}

func (r ReflectionLoop) Name() string { return "reflection" }

func (r ReflectionLoop) Entry() State { return StateGenerate }

func (r ReflectionLoop) Start(turns []message.Turn) State {
	if r.exceeded(turns) {
		return StateDone
	}
	return StateGenerate
}

func (r ReflectionLoop) Next(from State, turns []message.Turn) State {
	switch from {
	case StateGenerate:
		if r.exceeded(turns) {
			return StateDone
		}
		return StateReflect
	case StateReflect:
		return StateGenerate
	default:
		return StateDone
	}
}

func (r ReflectionLoop) exceeded(turns []message.Turn) bool {
	return len(turns) > r.max()
}

// MaxSteps allows one step per turn until a generation passes MaxTurns.
// Only generations end the loop, so a reflection landing exactly on
// MaxTurns costs one extra step.
func (r ReflectionLoop) MaxSteps(turns []message.Turn) int {
	return max(r.max()-len(turns)+2, 1)
}

func (r ReflectionLoop) Edges() []Edge {
	n := r.max()
	return []Edge{
		{From: StateGenerate, To: StateReflect, Label: fmt.Sprintf("turns <= %d", n)},
		{From: StateGenerate, To: StateDone, Label: fmt.Sprintf("turns > %d", n)},
		{From: StateReflect, To: StateGenerate},
	}
}

// ReflexionLoop answers with a structured response, researches it with
// tools and revises until more than MaxToolResults tool results exist:
//
//	respond -> execute_tools -> revise -> (tool results > MaxToolResults ? done : execute_tools)
//
// It also stops when the latest answer requests no tools, since there is
// nothing left to execute.
type ReflexionLoop struct {
	MaxToolResults int
}

func (r ReflexionLoop) max() int {
	if r.MaxToolResults <= 0 {
		return DefaultMaxToolResults
	}
	return r.MaxToolResults
}

func (r ReflexionLoop) Name() string { return "reflexion" }

func (r ReflexionLoop) Entry() State { return StateRespond }

func (r ReflexionLoop) Start(turns []message.Turn) State {
	if r.exceeded(turns) {
		return StateDone
	}
	return StateRespond
}

func (r ReflexionLoop) Next(from State, turns []message.Turn) State {
	switch from {
	case StateRespond:
		if !requestsTools(turns) {
			return StateDone
		}
		return StateExecuteTools
	case StateExecuteTools:
		return StateRevise
	case StateRevise:
		if r.exceeded(turns) || !requestsTools(turns) {
			return StateDone
		}
		return StateExecuteTools
	default:
		return StateDone
	}
}

func (r ReflexionLoop) exceeded(turns []message.Turn) bool {
	return message.Count(turns, message.RoleTool) > r.max()
}

// MaxSteps allows the responder plus one execute and revise pair per tool
// result still needed to pass MaxToolResults.
func (r ReflexionLoop) MaxSteps(turns []message.Turn) int {
	rounds := max(r.max()-message.Count(turns, message.RoleTool)+1, 0)
	return 2*rounds + 1
}

func (r ReflexionLoop) Edges() []Edge {
	n := r.max()
	return []Edge{
		{From: StateRespond, To: StateExecuteTools, Label: "tool calls"},
		{From: StateRespond, To: StateDone, Label: "no tool calls"},
		{From: StateExecuteTools, To: StateRevise},
		{From: StateRevise, To: StateExecuteTools, Label: fmt.Sprintf("tool results <= %d", n)},
		{From: StateRevise, To: StateDone, Label: fmt.Sprintf("tool results > %d", n)},
	}
}

// ReactLoop lets the model call tools until it answers in plain text:
//
//	generate -> (tool calls ? execute_tools : done)
//	execute_tools -> (rounds >= MaxToolRounds ? done : generate)
//
// Rounds are counted since the latest user turn, so the bound applies per
// question in a long chat.
type ReactLoop struct {
	MaxToolRounds int
}

func (r ReactLoop) max() int {
	if r.MaxToolRounds <= 0 {
		return DefaultMaxToolRounds
	}
	return r.MaxToolRounds
}

func (r ReactLoop) Name() string { return "react" }

func (r ReactLoop) Entry() State { return StateGenerate }

func (r ReactLoop) Start(turns []message.Turn) State {
	if len(turns) == 0 {
		return StateGenerate
	}
	last := turns[len(turns)-1]
	switch {
	case last.Role == message.RoleAssistant && last.HasToolCalls():
		return StateExecuteTools
	case last.Role == message.RoleTool:
		return r.Next(StateExecuteTools, turns)
	case last.Role == message.RoleAssistant:
		return StateDone
	default:
		return StateGenerate
	}
}

func (r ReactLoop) Next(from State, turns []message.Turn) State {
	switch from {
	case StateGenerate:
		if requestsTools(turns) {
			return StateExecuteTools
		}
		return StateDone
	case StateExecuteTools:
		if toolRounds(turns) >= r.max() {
			return StateDone
		}
		return StateGenerate
	default:
		return StateDone
	}
}

// MaxSteps allows MaxToolRounds generate and execute pairs, the final
// answer and one pending execution.
func (r ReactLoop) MaxSteps([]message.Turn) int {
	return 2*r.max() + 2
}

func (r ReactLoop) Edges() []Edge {
	return []Edge{
		{From: StateGenerate, To: StateExecuteTools, Label: "tool calls"},
		{From: StateGenerate, To: StateDone, Label: "answer"},
		{From: StateExecuteTools, To: StateGenerate, Label: fmt.Sprintf("rounds < %d", r.max())},
		{From: StateExecuteTools, To: StateDone, Label: fmt.Sprintf("rounds >= %d", r.max())},
	}
}

// requestsTools reports whether the newest assistant turn asks for tools.
func requestsTools(turns []message.Turn) bool {
	last, ok := message.LastAssistant(turns)
	return ok && last.HasToolCalls()
}

// toolRounds counts assistant turns with tool calls after the latest user
// turn.
func toolRounds(turns []message.Turn) int {
	n := 0
	for i := len(turns) - 1; i >= 0; i-- {
		t := turns[i]
		if t.Role == message.RoleUser {
			break
		}
		if t.Role == message.RoleAssistant && t.HasToolCalls() {
			n++
		}
	}
	return n
}
