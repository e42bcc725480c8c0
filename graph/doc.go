// Package graph implements the bounded agent loops as explicit state
// machines.
//
// A Topology is a pure transition function over the turns of a
// message.Log. Three are provided:
//
//   - ReflectionLoop: generate, then critique, until the log holds more
//     than MaxTurns turns.
//   - ReflexionLoop: respond with a structured answer, execute its tool
//     calls, revise, until more than MaxToolResults tool results exist.
//   - ReactLoop: let the model call tools until it answers in plain text.
//
// A Controller binds a Step to every state and runs the loop:
//
//	ctrl, err := graph.NewController(graph.ReflectionLoop{MaxTurns: 6},
//		map[graph.State]graph.Step{
//			graph.StateGenerate: generator,
//			graph.StateReflect:  reflector,
//		},
//		graph.WithStepTimeout(time.Minute),
//	)
//	res, err := ctrl.Run(ctx, message.NewLog(
//		message.System("You are an expert researcher"),
//		message.User("Explain X"),
//	))
//
// Termination is decided from the log, never from a counter, so a run
// whose initial log already meets the stop condition ends without running
// any step. A failing step ends the run with a *StepError, and the Result
// still carries the log as far as it got.
package graph
