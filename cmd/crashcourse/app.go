package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/kataras/golog"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/vectorstores"

	"github.com/nikolajIvanov/langchain-crash-course/config"
	"github.com/nikolajIvanov/langchain-crash-course/llms/openai"
	"github.com/nikolajIvanov/langchain-crash-course/log"
	"github.com/nikolajIvanov/langchain-crash-course/prebuilt"
	"github.com/nikolajIvanov/langchain-crash-course/rag"
	ragstore "github.com/nikolajIvanov/langchain-crash-course/rag/store"
	"github.com/nikolajIvanov/langchain-crash-course/store"
	"github.com/nikolajIvanov/langchain-crash-course/store/file"
	"github.com/nikolajIvanov/langchain-crash-course/store/memory"
	"github.com/nikolajIvanov/langchain-crash-course/store/postgres"
	"github.com/nikolajIvanov/langchain-crash-course/store/redis"
	"github.com/nikolajIvanov/langchain-crash-course/store/sqlite"
	"github.com/nikolajIvanov/langchain-crash-course/tool"
)

// app builds the components of a command from the configuration.
type app struct {
	cfg     *config.Config
	logger  log.Logger
	closers []func() error
}

func newApp() (*app, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	logger, err := newLogger(cfg.Log)
	if err != nil {
		return nil, err
	}
	log.SetDefault(logger)
	return &app{cfg: cfg, logger: logger}, nil
}

func newLogger(cfg config.LogConfig) (log.Logger, error) {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if cfg.Backend == "std" {
		return log.NewStdLogger(level), nil
	}
	return log.NewGolog(golog.New(), level), nil
}

// Close releases the stores opened by the app in reverse order.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *app) model() (*openai.LLM, error) {
	opts := []openai.Option{
		openai.WithModel(a.cfg.Model.Name),
		openai.WithEmbeddingModel(a.cfg.Model.EmbeddingModel),
	}
	if a.cfg.Model.APIKey != "" {
		opts = append(opts, openai.WithToken(a.cfg.Model.APIKey))
	}
	if a.cfg.Model.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(a.cfg.Model.BaseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create model client: %w", err)
	}
	return llm, nil
}

func (a *app) callOptions() []llms.CallOption {
	if a.cfg.Model.Temperature > 0 {
		return []llms.CallOption{llms.WithTemperature(a.cfg.Model.Temperature)}
	}
	return nil
}

func (a *app) runConfig() prebuilt.RunConfig {
	rc := prebuilt.RunConfig{
		StepTimeout: a.cfg.Run.StepTimeout,
		MaxSteps:    a.cfg.Run.MaxSteps,
		Logger:      a.logger,
	}
	if trace {
		rc.Listeners = append(rc.Listeners, traceListener(os.Stderr))
	}
	return rc
}

func (a *app) conversationStore(ctx context.Context) (store.ConversationStore, error) {
	var (
		s   store.ConversationStore
		err error
	)
	sc := a.cfg.Store
	switch sc.Backend {
	case "memory":
		s = memory.New()
	case "file":
		s, err = file.New(sc.Dir)
	case "redis":
		rs := redis.New(redis.Options{
			Addr:     sc.Redis.Addr,
			Password: sc.Redis.Password,
			DB:       sc.Redis.DB,
			Prefix:   sc.Redis.Prefix,
			TTL:      sc.Redis.TTL,
		})
		if err = rs.Ping(ctx); err != nil {
			rs.Close()
		}
		s = rs
	case "postgres":
		s, err = postgres.New(ctx, postgres.Options{ConnString: sc.Postgres.ConnString, TableName: sc.Postgres.Table})
	case "sqlite":
		s, err = sqlite.New(sqlite.Options{Path: sc.SQLite.Path})
	default:
		err = fmt.Errorf("unknown store backend %q", sc.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", sc.Backend, err)
	}
	a.closers = append(a.closers, s.Close)
	a.logger.Debug("using %s conversation store", sc.Backend)
	return s, nil
}

func (a *app) searcher() (tool.Searcher, error) {
	sc := a.cfg.Search
	switch sc.Provider {
	case "tavily":
		return tool.NewTavilySearch(sc.TavilyAPIKey, tool.WithTavilyMaxResults(sc.MaxResults))
	case "brave":
		return tool.NewBraveSearch(sc.BraveAPIKey, tool.WithBraveCount(sc.MaxResults))
	case "duckduckgo":
		return tool.DuckDuckGoSearcher(sc.MaxResults)
	}
	return nil, fmt.Errorf("unknown search provider %q", sc.Provider)
}

func (a *app) webSearchTool() (tool.Tool, error) {
	sc := a.cfg.Search
	switch sc.Provider {
	case "tavily":
		return tool.NewTavilySearch(sc.TavilyAPIKey, tool.WithTavilyMaxResults(sc.MaxResults))
	case "brave":
		return tool.NewBraveSearch(sc.BraveAPIKey, tool.WithBraveCount(sc.MaxResults))
	case "duckduckgo":
		return tool.DuckDuckGo(sc.MaxResults)
	}
	return nil, fmt.Errorf("unknown search provider %q", sc.Provider)
}

// documents opens the local index behind ingest, ask and the
// search_documents tool.
func (a *app) documents(embedder embeddings.EmbedderClient) (*rag.LangChainStore, error) {
	vs, err := ragstore.NewSQLiteVectorStore(ragstore.SQLiteOptions{Path: a.cfg.RAG.Path})
	if err != nil {
		return nil, fmt.Errorf("failed to open document index: %w", err)
	}
	a.closers = append(a.closers, vs.Close)

	emb, err := embeddings.NewEmbedder(embedder)
	if err != nil {
		return nil, err
	}
	return rag.NewLangChainStore(vs, emb), nil
}

func (a *app) retriever(docs vectorstores.VectorStore, k int) vectorstores.Retriever {
	if k <= 0 {
		k = a.cfg.RAG.K
	}
	var opts []vectorstores.Option
	if a.cfg.RAG.MinScore > 0 {
		opts = append(opts, vectorstores.WithScoreThreshold(float32(a.cfg.RAG.MinScore)))
	}
	return vectorstores.ToRetriever(docs, k, opts...)
}

// tools resolves the names listed under react.tools.
func (a *app) tools(llm *openai.LLM) ([]tool.Tool, error) {
	var out []tool.Tool
	for _, name := range a.cfg.React.Tools {
		switch name {
		case "get_system_time":
			out = append(out, tool.NewSystemTime(time.Now))
		case "calculator":
			out = append(out, tool.Calculator())
		case "web_search":
			t, err := a.webSearchTool()
			if err != nil {
				return nil, err
			}
			out = append(out, t)
		case "fetch_web_page":
			out = append(out, tool.NewWebPage(&http.Client{Timeout: 30 * time.Second}))
		case "search_documents":
			docs, err := a.documents(llm)
			if err != nil {
				return nil, err
			}
			out = append(out, rag.NewRetrievalTool(a.retriever(docs, 0)))
		default:
			return nil, fmt.Errorf("unknown tool %q", name)
		}
	}
	return out, nil
}
