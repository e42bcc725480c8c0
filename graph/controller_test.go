package graph

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikolajIvanov/langchain-crash-course/log"
	"github.com/nikolajIvanov/langchain-crash-course/message"
)

// appendStep returns a step that appends a turn built from the log length.
func appendStep(calls *int, build func(n int) message.Turn) Step {
	return StepFunc(func(_ context.Context, turns []message.Turn) ([]message.Turn, error) {
		*calls++
		return []message.Turn{build(len(turns))}, nil
	})
}

func reflectionController(t *testing.T, maxTurns int, gen, ref *int, opts ...Option) *Controller {
	t.Helper()
	opts = append([]Option{WithLogger(log.Discard{})}, opts...)
	c, err := NewController(ReflectionLoop{MaxTurns: maxTurns}, map[State]Step{
		StateGenerate: appendStep(gen, func(n int) message.Turn { return message.Assistant(fmt.Sprintf("draft at %d", n)) }),
		StateReflect:  appendStep(ref, func(n int) message.Turn { return message.User(fmt.Sprintf("critique at %d", n)) }),
	}, opts...)
	require.NoError(t, err)
	return c
}

func TestReflectionLoop_EndToEnd(t *testing.T) {
	var gen, ref int
	var lengths []int
	c := reflectionController(t, 6, &gen, &ref, WithListener(ListenerFunc(func(_ context.Context, e Event) {
		if e.Kind == EventStepEnd {
			lengths = append(lengths, len(e.Appended))
		}
	})))

	l := message.NewLog(
		message.System("You are an expert researcher"),
		message.User("Explain X"),
	)
	res, err := c.Run(context.Background(), l)
	require.NoError(t, err)

	assert.Equal(t, []State{
		StateGenerate, StateReflect, StateGenerate, StateReflect, StateGenerate, StateDone,
	}, res.Transitions)
	assert.Equal(t, 7, l.Len())
	assert.Equal(t, 3, gen)
	assert.Equal(t, 2, ref)
	assert.Equal(t, 5, res.Steps)
	assert.Equal(t, []int{1, 1, 1, 1, 1}, lengths)

	view := l.View()
	assert.Equal(t, message.RoleAssistant, view[2].Role)
	assert.Equal(t, message.RoleUser, view[3].Role, "critiques are user turns")
	assert.Equal(t, "draft at 6", view[6].Content, "six turns is not more than six, so one more generation runs")

	final, ok := res.FinalAssistant()
	require.True(t, ok)
	assert.Equal(t, "draft at 6", final.Content)
}

func TestReflectionLoop_ThresholdIsStrict(t *testing.T) {
	loop := ReflectionLoop{MaxTurns: 6}
	six := make([]message.Turn, 6)
	seven := make([]message.Turn, 7)

	assert.Equal(t, StateReflect, loop.Next(StateGenerate, six))
	assert.Equal(t, StateDone, loop.Next(StateGenerate, seven))
	assert.Equal(t, StateGenerate, loop.Start(six))
	assert.Equal(t, StateDone, loop.Start(seven))
}

func TestReflectionLoop_ReflectCount(t *testing.T) {
	for initial := 0; initial <= 6; initial++ {
		t.Run(fmt.Sprintf("initial=%d", initial), func(t *testing.T) {
			var gen, ref int
			c := reflectionController(t, 6, &gen, &ref)

			seed := make([]message.Turn, initial)
			for i := range seed {
				seed[i] = message.User("seed")
			}
			res, err := c.Run(context.Background(), message.NewLog(seed...))
			require.NoError(t, err)

			want := int(math.Ceil(float64(6-initial) / 2))
			assert.Equal(t, want, ref)
			assert.Equal(t, want+1, gen)

			// Strict alternation starting with generate.
			for i, s := range res.Transitions[:len(res.Transitions)-1] {
				if i%2 == 0 {
					assert.Equal(t, StateGenerate, s)
				} else {
					assert.Equal(t, StateReflect, s)
				}
			}
			assert.Equal(t, StateDone, res.Transitions[len(res.Transitions)-1])
		})
	}
}

func TestReflectionLoop_ImmediateTermination(t *testing.T) {
	var gen, ref int
	c := reflectionController(t, 6, &gen, &ref)

	seed := make([]message.Turn, 7)
	for i := range seed {
		seed[i] = message.User("x")
	}
	l := message.NewLog(seed...)
	res, err := c.Run(context.Background(), l)
	require.NoError(t, err)

	assert.Equal(t, 0, gen+ref)
	assert.Equal(t, 0, res.Steps)
	assert.Equal(t, []State{StateDone}, res.Transitions)
	assert.Equal(t, 7, l.Len())
}

// researchSteps fakes the reflexion collaborators. Every answer requests
// callsPerAnswer tools and the executor answers every call.
func researchSteps(callsPerAnswer int, rounds *int) map[State]Step {
	answer := StepFunc(func(_ context.Context, turns []message.Turn) ([]message.Turn, error) {
		calls := make([]message.ToolCall, callsPerAnswer)
		for i := range calls {
			calls[i] = message.ToolCall{ID: fmt.Sprintf("call-%d-%d", len(turns), i), Name: "AnswerQuestion", Arguments: `{"answer":"a"}`}
		}
		return []message.Turn{message.Assistant("", calls...)}, nil
	})
	execute := StepFunc(func(_ context.Context, turns []message.Turn) ([]message.Turn, error) {
		*rounds++
		last, _ := message.LastAssistant(turns)
		var out []message.Turn
		for _, tc := range last.ToolCalls {
			out = append(out, message.ToolResult(tc.ID, tc.Name, "result"))
		}
		return out, nil
	})
	return map[State]Step{
		StateRespond:      answer,
		StateExecuteTools: execute,
		StateRevise:       answer,
	}
}

func TestReflexionLoop_Bounded(t *testing.T) {
	for maxResults := 1; maxResults <= 4; maxResults++ {
		for calls := 1; calls <= 3; calls++ {
			t.Run(fmt.Sprintf("max=%d/calls=%d", maxResults, calls), func(t *testing.T) {
				var rounds int
				c, err := NewController(ReflexionLoop{MaxToolResults: maxResults}, researchSteps(calls, &rounds), WithLogger(log.Discard{}))
				require.NoError(t, err)

				l := message.NewLog(message.User("question"))
				res, err := c.Run(context.Background(), l)
				require.NoError(t, err)

				assert.LessOrEqual(t, rounds, maxResults+1)
				assert.Greater(t, l.Count(message.RoleTool), maxResults)
				assert.Equal(t, StateDone, res.Transitions[len(res.Transitions)-1])
				assert.Equal(t, StateRespond, res.Transitions[0])
				assert.Equal(t, StateRevise, res.Transitions[len(res.Transitions)-2])
			})
		}
	}
}

func TestReflexionLoop_DefaultThreshold(t *testing.T) {
	var rounds int
	c, err := NewController(ReflexionLoop{}, researchSteps(1, &rounds), WithLogger(log.Discard{}))
	require.NoError(t, err)

	res, err := c.Run(context.Background(), message.NewLog(message.User("q")))
	require.NoError(t, err)

	assert.Equal(t, 3, rounds)
	assert.Equal(t, []State{
		StateRespond,
		StateExecuteTools, StateRevise,
		StateExecuteTools, StateRevise,
		StateExecuteTools, StateRevise,
		StateDone,
	}, res.Transitions)
}

func TestReflexionLoop_StopsWithoutToolCalls(t *testing.T) {
	loop := ReflexionLoop{MaxToolResults: 2}
	turns := []message.Turn{
		message.User("q"),
		message.Assistant("", message.ToolCall{ID: "1", Name: "AnswerQuestion"}),
		message.ToolResult("1", "AnswerQuestion", "r"),
		message.Assistant("final"),
	}
	assert.Equal(t, StateDone, loop.Next(StateRevise, turns))
	assert.Equal(t, StateDone, loop.Next(StateRespond, turns))
	assert.Equal(t, StateRevise, loop.Next(StateExecuteTools, turns))
}

func TestReflexionLoop_ImmediateTermination(t *testing.T) {
	var rounds int
	c, err := NewController(ReflexionLoop{MaxToolResults: 2}, researchSteps(1, &rounds), WithLogger(log.Discard{}))
	require.NoError(t, err)

	l := message.NewLog(
		message.User("q"),
		message.ToolResult("1", "x", "a"),
		message.ToolResult("2", "x", "b"),
		message.ToolResult("3", "x", "c"),
	)
	res, err := c.Run(context.Background(), l)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Steps)
	assert.Equal(t, 0, rounds)
	assert.Equal(t, 4, l.Len())
}

func TestTopologies_DecisionsArePure(t *testing.T) {
	turns := []message.Turn{
		message.System("s"),
		message.User("q"),
		message.Assistant("", message.ToolCall{ID: "1", Name: "t"}),
		message.ToolResult("1", "t", "r"),
		message.Assistant("", message.ToolCall{ID: "2", Name: "t"}),
	}
	topologies := []Topology{ReflectionLoop{}, ReflexionLoop{}, ReactLoop{}}
	states := []State{StateGenerate, StateReflect, StateRespond, StateExecuteTools, StateRevise, StateDone}

	for _, topo := range topologies {
		for prefix := 0; prefix <= len(turns); prefix++ {
			view := append([]message.Turn(nil), turns[:prefix]...)
			first := topo.Start(view)
			assert.Equal(t, first, topo.Start(view), "%s start", topo.Name())
			for _, s := range states {
				assert.Equal(t, topo.Next(s, view), topo.Next(s, view), "%s next from %s", topo.Name(), s)
			}
		}
	}
}

func TestReactLoop(t *testing.T) {
	loop := ReactLoop{MaxToolRounds: 2}
	call := func(id string) message.Turn {
		return message.Assistant("", message.ToolCall{ID: id, Name: "get_system_time"})
	}

	assert.Equal(t, StateGenerate, loop.Start(nil))
	assert.Equal(t, StateGenerate, loop.Start([]message.Turn{message.User("q")}))
	assert.Equal(t, StateExecuteTools, loop.Start([]message.Turn{message.User("q"), call("1")}))
	assert.Equal(t, StateDone, loop.Start([]message.Turn{message.User("q"), message.Assistant("a")}))

	oneRound := []message.Turn{message.User("q"), call("1"), message.ToolResult("1", "t", "r")}
	assert.Equal(t, StateGenerate, loop.Start(oneRound))
	assert.Equal(t, StateGenerate, loop.Next(StateExecuteTools, oneRound))

	twoRounds := append(append([]message.Turn(nil), oneRound...), call("2"), message.ToolResult("2", "t", "r"))
	assert.Equal(t, StateDone, loop.Next(StateExecuteTools, twoRounds))

	// A new question resets the round count.
	next := append(append([]message.Turn(nil), twoRounds...), message.Assistant("answer"), message.User("again"), call("3"))
	assert.Equal(t, StateExecuteTools, loop.Next(StateGenerate, next))
	assert.Equal(t, 1, toolRounds(next))

	assert.Equal(t, StateDone, loop.Next(StateGenerate, []message.Turn{message.User("q"), message.Assistant("a")}))
}

func TestController_StepErrorKeepsPartialLog(t *testing.T) {
	cause := errors.New("rate limited")
	var gen int
	c, err := NewController(ReflectionLoop{}, map[State]Step{
		StateGenerate: appendStep(&gen, func(int) message.Turn { return message.Assistant("draft") }),
		StateReflect: StepFunc(func(context.Context, []message.Turn) ([]message.Turn, error) {
			return []message.Turn{message.User("ignored")}, cause
		}),
	}, WithLogger(log.Discard{}))
	require.NoError(t, err)

	l := message.NewLog(message.User("q"))
	res, err := c.Run(context.Background(), l)
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)

	var stepErr *StepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, StateReflect, stepErr.State)

	require.NotNil(t, res)
	assert.Equal(t, 2, l.Len(), "turns of a failed step are not appended")
	assert.Same(t, l, res.Log)
	assert.Equal(t, []State{StateGenerate, StateReflect}, res.Transitions)
}

func TestController_CancellationBetweenSteps(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var stepCtxErr error

	c, err := NewController(ReflectionLoop{}, map[State]Step{
		StateGenerate: StepFunc(func(stepCtx context.Context, _ []message.Turn) ([]message.Turn, error) {
			cancel()
			stepCtxErr = stepCtx.Err()
			return []message.Turn{message.Assistant("finished anyway")}, nil
		}),
		StateReflect: StepFunc(func(context.Context, []message.Turn) ([]message.Turn, error) {
			t.Fatal("reflect must not run after cancellation")
			return nil, nil
		}),
	}, WithLogger(log.Discard{}))
	require.NoError(t, err)

	l := message.NewLog(message.User("q"))
	res, err := c.Run(ctx, l)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoError(t, stepCtxErr, "an in-flight step is not cancelled")
	assert.Equal(t, 2, l.Len())
	assert.Equal(t, 1, res.Steps)
}

func TestController_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var gen, ref int
	c := reflectionController(t, 6, &gen, &ref)
	_, err := c.Run(ctx, message.NewLog(message.User("q")))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, gen)
}

func TestController_StepTimeout(t *testing.T) {
	c, err := NewController(ReflectionLoop{}, map[State]Step{
		StateGenerate: StepFunc(func(ctx context.Context, _ []message.Turn) ([]message.Turn, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}),
		StateReflect: StepFunc(func(context.Context, []message.Turn) ([]message.Turn, error) { return nil, nil }),
	}, WithStepTimeout(10*time.Millisecond), WithLogger(log.Discard{}))
	require.NoError(t, err)

	_, err = c.Run(context.Background(), message.NewLog())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestController_StepLimit(t *testing.T) {
	loop := StepFunc(func(_ context.Context, turns []message.Turn) ([]message.Turn, error) {
		return []message.Turn{message.Assistant("", message.ToolCall{ID: fmt.Sprint(len(turns)), Name: "t"})}, nil
	})
	execute := StepFunc(func(_ context.Context, turns []message.Turn) ([]message.Turn, error) {
		last, _ := message.LastAssistant(turns)
		return []message.Turn{message.ToolResult(last.ToolCalls[0].ID, "t", "r")}, nil
	})

	c, err := NewController(ReactLoop{MaxToolRounds: 100}, map[State]Step{
		StateGenerate:     loop,
		StateExecuteTools: execute,
	}, WithMaxSteps(5), WithLogger(log.Discard{}))
	require.NoError(t, err)

	res, err := c.Run(context.Background(), message.NewLog(message.User("q")))
	assert.ErrorIs(t, err, ErrStepLimit)
	assert.Equal(t, 5, res.Steps)
}

func TestController_StepLimitFollowsThresholds(t *testing.T) {
	var gen, ref int
	c := reflectionController(t, 30, &gen, &ref)

	l := message.NewLog(message.System("s"), message.User("Write a long post"))
	res, err := c.Run(context.Background(), l)
	require.NoError(t, err)

	assert.Greater(t, res.Steps, DefaultMaxSteps)
	assert.Equal(t, 29, res.Steps)
	assert.Equal(t, 31, l.Len())
	assert.Equal(t, StateDone, res.Transitions[len(res.Transitions)-1])

	l = message.NewLog(message.User("Write a long post"))
	res, err = c.Run(context.Background(), l)
	require.NoError(t, err)
	assert.Equal(t, 31, res.Steps)
	assert.Equal(t, 32, l.Len())

	var rounds int
	rc, err := NewController(ReflexionLoop{MaxToolResults: 12}, researchSteps(1, &rounds), WithLogger(log.Discard{}))
	require.NoError(t, err)
	res, err = rc.Run(context.Background(), message.NewLog(message.User("q")))
	require.NoError(t, err)
	assert.Equal(t, 27, res.Steps)
	assert.Equal(t, 13, rounds)
}

func TestController_ExplicitStepLimitWins(t *testing.T) {
	var gen, ref int
	c := reflectionController(t, 30, &gen, &ref, WithMaxSteps(10))

	res, err := c.Run(context.Background(), message.NewLog(message.User("q")))
	assert.ErrorIs(t, err, ErrStepLimit)
	assert.Equal(t, 10, res.Steps)
}

func TestTopologies_MaxSteps(t *testing.T) {
	q := []message.Turn{message.User("q")}
	assert.Equal(t, 7, ReflectionLoop{}.MaxSteps(q))
	assert.Equal(t, 1, ReflectionLoop{MaxTurns: 2}.MaxSteps(make([]message.Turn, 5)))
	assert.Equal(t, 7, ReflexionLoop{}.MaxSteps(q))
	assert.Equal(t, 1, ReflexionLoop{}.MaxSteps([]message.Turn{
		message.ToolResult("1", "x", "a"),
		message.ToolResult("2", "x", "b"),
		message.ToolResult("3", "x", "c"),
	}))
	assert.Equal(t, 22, ReactLoop{}.MaxSteps(q))
}

func TestController_InvalidTurn(t *testing.T) {
	c, err := NewController(ReflectionLoop{}, map[State]Step{
		StateGenerate: StepFunc(func(context.Context, []message.Turn) ([]message.Turn, error) {
			return []message.Turn{{Role: "robot", Content: "beep"}}, nil
		}),
		StateReflect: StepFunc(func(context.Context, []message.Turn) ([]message.Turn, error) { return nil, nil }),
	}, WithLogger(log.Discard{}))
	require.NoError(t, err)

	l := message.NewLog()
	_, err = c.Run(context.Background(), l)
	assert.ErrorIs(t, err, ErrInvalidTurn)
	assert.Equal(t, 0, l.Len())
}

func TestNewController_Validation(t *testing.T) {
	_, err := NewController(nil, nil)
	assert.Error(t, err)

	_, err = NewController(ReflectionLoop{}, map[State]Step{
		StateGenerate: StepFunc(func(context.Context, []message.Turn) ([]message.Turn, error) { return nil, nil }),
	})
	assert.ErrorIs(t, err, ErrNoStep)
	assert.Contains(t, err.Error(), "reflect")
}

type recordingMirror struct {
	turns    []message.Turn
	warnings []error
}

func (m *recordingMirror) Record(_ context.Context, turns ...message.Turn) {
	m.turns = append(m.turns, turns...)
}

func (m *recordingMirror) Warnings() []error { return m.warnings }

func TestController_Mirror(t *testing.T) {
	var gen, ref int
	c := reflectionController(t, 4, &gen, &ref)

	mirror := &recordingMirror{warnings: []error{errors.New("store down")}}
	l := message.NewLog(message.User("q"))
	res, err := c.Run(context.Background(), l, WithMirror(mirror))
	require.NoError(t, err)

	assert.Equal(t, l.View()[1:], mirror.turns)
	assert.Equal(t, mirror.warnings, res.Warnings)
}

func TestController_ListenerEvents(t *testing.T) {
	var events []EventKind
	var gen, ref int
	c := reflectionController(t, 2, &gen, &ref, WithListener(ListenerFunc(func(_ context.Context, e Event) {
		events = append(events, e.Kind)
	})))

	_, err := c.Run(context.Background(), message.NewLog(message.User("q")))
	require.NoError(t, err)
	assert.Equal(t, []EventKind{
		EventStepStart, EventStepEnd, // generate -> 2 turns
		EventStepStart, EventStepEnd, // reflect -> 3 turns
		EventStepStart, EventStepEnd, // generate -> 4 turns
		EventDone,
	}, events)
}

func TestController_NilLog(t *testing.T) {
	var gen, ref int
	c := reflectionController(t, 6, &gen, &ref)
	res, err := c.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 7, res.Log.Len())
}
