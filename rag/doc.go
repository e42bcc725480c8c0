// Package rag answers questions from a local document collection.
//
// Documents are split with a langchaingo text splitter, embedded and kept
// in a VectorStore. LangChainStore wraps a VectorStore so the langchaingo
// retriever and chain APIs work on top of it:
//
//	vs := rag.NewLangChainStore(store.NewInMemoryVectorStore(), embedder)
//	n, err := rag.Ingest(ctx, file, "dracula.txt", nil, vs)
//	answer, err := rag.Ask(ctx, llm, vectorstores.ToRetriever(vs, 3), "Where is Dracula's castle?")
//
// NewRetrievalTool exposes the same retriever to a ReAct agent.
package rag
