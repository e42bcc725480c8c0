// LangChain Crash Course - conversational agent loops in Go
//
// This module runs three agent loops over an append-only conversation log:
// a reflection loop that drafts and critiques a post, a reflexion loop that
// answers a research question with web search and cited revisions, and a
// ReAct style chat assistant whose history is persisted in a store.
//
// # Quick Start
//
//	package main
//
//	import (
//		"context"
//		"fmt"
//
//		"github.com/nikolajIvanov/langchain-crash-course/llms/openai"
//		"github.com/nikolajIvanov/langchain-crash-course/prebuilt"
//	)
//
//	func main() {
//		llm, err := openai.New()
//		if err != nil {
//			panic(err)
//		}
//
//		agent, _ := prebuilt.CreateReflectionAgent(prebuilt.ReflectionAgentConfig{
//			Model: llm,
//		})
//
//		post, _, err := prebuilt.Reflect(context.Background(), agent,
//			"Write a tweet about getting started with Go")
//		if err != nil {
//			panic(err)
//		}
//		fmt.Println(post)
//	}
//
// # Key Features
//
//   - Loop controller: fixed topologies with step timeouts, a step limit and listeners
//   - Structured research answers with forced function calls and web search
//   - Tool calling with a registry that rejects unknown tools before running any
//   - Chat history stored in memory, files, Redis, Postgres or SQLite
//   - Document ingestion and retrieval backed by langchaingo vector store interfaces
//   - Mermaid rendering of every loop
//
// # Package Structure
//
// message/
// Turns, roles and the append-only Log shared by every loop.
//
// graph/
// The Controller that drives a Topology (ReflectionLoop, ReflexionLoop,
// ReactLoop) by running the Step bound to each state.
//
//	ctrl, _ := graph.NewController(graph.ReflectionLoop{MaxTurns: 6}, map[graph.State]graph.Step{
//		graph.StateGenerate: generator,
//		graph.StateReflect:  reflector,
//	})
//	res, err := ctrl.Run(ctx, message.NewLog(message.User("Write a post about Go")))
//
// prebuilt/
// Ready-to-use agents built from the controller: CreateReflectionAgent,
// CreateReflexionAgent, CreateReactAgent and the stateful ChatAgent, plus
// langchaingo chains that run prompt, model and parser in sequence or in
// parallel branches.
//
// tool/
// The Tool contract, the Registry, web search (Tavily, Brave, DuckDuckGo),
// a web page fetcher, the system clock and langchaingo tool adapters.
//
// store/
// ConversationStore backends and the Session that mirrors a log into one.
//
// rag/
// Text ingestion, vector stores and question answering over documents.
//
// llms/openai
// An llms.Model and embedder over the go-openai client that maps provider
// failures to langchaingo error codes.
//
// config/ and log/
// YAML configuration and the logger used across packages.
//
// cmd/crashcourse
// The command line: reflect, reflexion, chat, chain, ingest, ask and graph.
package crashcourse
