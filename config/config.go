// Package config loads the crashcourse settings from YAML and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root of the YAML file.
type Config struct {
	Model      ModelConfig      `yaml:"model"`
	Run        RunConfig        `yaml:"run"`
	Reflection ReflectionConfig `yaml:"reflection"`
	Reflexion  ReflexionConfig  `yaml:"reflexion"`
	React      ReactConfig      `yaml:"react"`
	Log        LogConfig        `yaml:"log"`
	Store      StoreConfig      `yaml:"store"`
	Search     SearchConfig     `yaml:"search"`
	RAG        RAGConfig        `yaml:"rag"`
}

type ModelConfig struct {
	Name           string  `yaml:"name"`
	EmbeddingModel string  `yaml:"embedding_model"`
	BaseURL        string  `yaml:"base_url"`
	APIKey         string  `yaml:"api_key"`
	Temperature    float64 `yaml:"temperature"`
}

type RunConfig struct {
	StepTimeout time.Duration `yaml:"step_timeout"`
	// MaxSteps overrides the step limit derived from the loop thresholds.
	// Zero keeps the derived limit.
	MaxSteps int `yaml:"max_steps"`
}

type ReflectionConfig struct {
	MaxTurns int `yaml:"max_turns"`
}

type ReflexionConfig struct {
	MaxToolResults int `yaml:"max_tool_results"`
}

type ReactConfig struct {
	MaxToolRounds int `yaml:"max_tool_rounds"`
	// Tools names the tools offered to the chat agent: get_system_time,
	// calculator, web_search, fetch_web_page, search_documents.
	Tools []string `yaml:"tools"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	// Backend is "golog" or "std".
	Backend string `yaml:"backend"`
}

type StoreConfig struct {
	// Backend is one of memory, file, redis, postgres, sqlite.
	Backend  string         `yaml:"backend"`
	Dir      string         `yaml:"dir"`
	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
}

type PostgresConfig struct {
	ConnString string `yaml:"conn_string"`
	Table      string `yaml:"table"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type SearchConfig struct {
	// Provider is one of tavily, brave, duckduckgo.
	Provider     string `yaml:"provider"`
	MaxResults   int    `yaml:"max_results"`
	TavilyAPIKey string `yaml:"tavily_api_key"`
	BraveAPIKey  string `yaml:"brave_api_key"`
}

type RAGConfig struct {
	Path         string  `yaml:"path"`
	K            int     `yaml:"k"`
	MinScore     float64 `yaml:"min_score"`
	ChunkSize    int     `yaml:"chunk_size"`
	ChunkOverlap int     `yaml:"chunk_overlap"`
}

// Default returns the settings used when no file is given.
func Default() *Config {
	return &Config{
		Model: ModelConfig{
			Name:           "gpt-4o-mini",
			EmbeddingModel: "text-embedding-3-small",
		},
		Run:        RunConfig{StepTimeout: 2 * time.Minute},
		Reflection: ReflectionConfig{MaxTurns: 6},
		Reflexion:  ReflexionConfig{MaxToolResults: 2},
		React: ReactConfig{
			MaxToolRounds: 10,
			Tools:         []string{"get_system_time", "web_search"},
		},
		Log:   LogConfig{Level: "info", Backend: "golog"},
		Store: StoreConfig{Backend: "memory", Dir: "sessions", SQLite: SQLiteConfig{Path: "crashcourse.db"}},
		Search: SearchConfig{
			Provider:   "tavily",
			MaxResults: 5,
		},
		RAG: RAGConfig{
			Path:         "vectors.db",
			K:            3,
			ChunkSize:    1000,
			ChunkOverlap: 50,
		},
	}
}

// Load reads path over the defaults and applies the environment. An empty
// path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides settings from environment variables looked up with
// lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	set("OPENAI_API_KEY", &c.Model.APIKey)
	set("OPENAI_BASE_URL", &c.Model.BaseURL)
	set("CRASHCOURSE_MODEL", &c.Model.Name)
	set("CRASHCOURSE_STORE", &c.Store.Backend)
	set("CRASHCOURSE_LOG_LEVEL", &c.Log.Level)
	set("TAVILY_API_KEY", &c.Search.TavilyAPIKey)
	set("BRAVE_API_KEY", &c.Search.BraveAPIKey)
	set("REDIS_ADDR", &c.Store.Redis.Addr)
	set("DATABASE_URL", &c.Store.Postgres.ConnString)
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Model.Name) == "" {
		errs = append(errs, errors.New("model.name is required"))
	}
	if c.Run.StepTimeout < 0 {
		errs = append(errs, errors.New("run.step_timeout must not be negative"))
	}
	if c.Run.MaxSteps < 0 {
		errs = append(errs, errors.New("run.max_steps must not be negative"))
	}
	if c.Reflection.MaxTurns < 0 || c.Reflexion.MaxToolResults < 0 || c.React.MaxToolRounds < 0 {
		errs = append(errs, errors.New("loop thresholds must not be negative"))
	}

	switch c.Log.Backend {
	case "golog", "std":
	default:
		errs = append(errs, fmt.Errorf("log.backend %q is not golog or std", c.Log.Backend))
	}

	switch c.Store.Backend {
	case "memory":
	case "file":
		if c.Store.Dir == "" {
			errs = append(errs, errors.New("store.dir is required for the file backend"))
		}
	case "redis":
		if c.Store.Redis.Addr == "" {
			errs = append(errs, errors.New("store.redis.addr is required for the redis backend"))
		}
	case "postgres":
		if c.Store.Postgres.ConnString == "" {
			errs = append(errs, errors.New("store.postgres.conn_string is required for the postgres backend"))
		}
	case "sqlite":
		if c.Store.SQLite.Path == "" {
			errs = append(errs, errors.New("store.sqlite.path is required for the sqlite backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store.backend %q", c.Store.Backend))
	}

	switch c.Search.Provider {
	case "tavily", "brave", "duckduckgo":
	default:
		errs = append(errs, fmt.Errorf("unknown search.provider %q", c.Search.Provider))
	}

	if c.RAG.K <= 0 {
		errs = append(errs, errors.New("rag.k must be positive"))
	}
	if c.RAG.ChunkSize <= 0 || c.RAG.ChunkOverlap < 0 || c.RAG.ChunkOverlap >= c.RAG.ChunkSize {
		errs = append(errs, errors.New("rag.chunk_overlap must be smaller than a positive rag.chunk_size"))
	}
	return errors.Join(errs...)
}
