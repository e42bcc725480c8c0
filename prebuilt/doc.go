// Package prebuilt provides the agents of the crash course, each a set of
// steps bound to one of the graph topologies.
//
// # Reflection agent
//
// A generator writes a draft and a reflector critiques it. The critique is
// appended as a user turn and the generator answers with a revision. The
// loop ends when the log holds more than MaxTurns turns.
//
//	agent, err := prebuilt.CreateReflectionAgent(prebuilt.ReflectionAgentConfig{
//		Model:    llm,
//		MaxTurns: 6,
//	})
//	post, res, err := prebuilt.Reflect(ctx, agent, "Write a post about Go generics")
//
// # Reflexion agent
//
// A responder answers through the AnswerQuestion function, listing search
// queries. The queries run against a Searcher, and a revisor rewrites the
// answer with citations through ReviseAnswer.
//
//	agent, err := prebuilt.CreateReflexionAgent(prebuilt.ReflexionAgentConfig{
//		Model:    llm,
//		Searcher: tool.NewTavilySearch(),
//	})
//	answer, res, err := prebuilt.Research(ctx, agent, question)
//
// # ReAct and chat agents
//
// CreateReactAgent lets the model call tools until it answers in text.
// ChatAgent keeps a conversation over it and mirrors the history into a
// store.ConversationStore.
//
// # Chains
//
// ChatStep and Parallel are langchaingo chains.Chain values, so they compose
// with chains.SequentialChain and chains.Transform. NewMovieReviewChain runs
// a summary, then a plot and a character analysis side by side.
//
//	chain, err := prebuilt.NewMovieReviewChain(prebuilt.ChainConfig{Model: llm})
//	review, err := chains.Run(ctx, chain, "Inception")
//
// Every model-backed step fails with a *GenerationError whose Kind tells
// rate limits and timeouts apart from malformed responses.
package prebuilt
