package prebuilt

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/nikolajIvanov/langchain-crash-course/graph"
	"github.com/nikolajIvanov/langchain-crash-course/log"
	"github.com/nikolajIvanov/langchain-crash-course/message"
	"github.com/nikolajIvanov/langchain-crash-course/store"
)

// ChatAgentConfig configures a multi-turn chat over a react agent.
type ChatAgentConfig struct {
	ReactAgentConfig

	// Store persists the history. Nil keeps it in memory.
	Store store.ConversationStore

	// SessionID selects the stored history. Empty means a fresh uuid.
	SessionID string

	// Greeting is the system turn a new session starts with. Default
	// DefaultChatPrompt.
	Greeting string
}

// ChatAgent holds one conversation. The history is loaded from the store on
// the first message and every new turn is written back as it is appended.
type ChatAgent struct {
	agent    *graph.Controller
	session  *store.Session
	greeting string

	logger log.Logger

	mu  sync.Mutex
	log *message.Log
}

// NewChatAgent creates a ChatAgent.
func NewChatAgent(cfg ChatAgentConfig) (*ChatAgent, error) {
	agent, err := CreateReactAgent(cfg.ReactAgentConfig)
	if err != nil {
		return nil, err
	}
	id := cfg.SessionID
	if id == "" {
		id = uuid.New().String()
	}
	greeting := cfg.Greeting
	if greeting == "" {
		greeting = DefaultChatPrompt
	}
	return &ChatAgent{
		agent:    agent,
		session:  store.NewSession(cfg.Store, id, cfg.Logger),
		greeting: greeting,
		logger:   log.OrDefault(cfg.Logger),
	}, nil
}

// SessionID returns the id the history is stored under.
func (c *ChatAgent) SessionID() string {
	return c.session.ID()
}

// Chat sends input as a user turn and returns the final answer. Turns
// produced before a failure stay in the history, except that tool calls left
// unanswered by a failed run are dropped before the next request.
func (c *ChatAgent) Chat(ctx context.Context, input string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	l := c.history(ctx)
	if turns := l.View(); len(turns) > 0 {
		if kept := message.DropUnanswered(turns); len(kept) != len(turns) {
			c.logger.Warn("session %s: dropping %d turns with unanswered tool calls", c.session.ID(), len(turns)-len(kept))
			l = message.NewLog(kept...)
			c.log = l
		}
	}
	user := message.User(input)
	l.Append(user)
	c.session.Record(context.WithoutCancel(ctx), user)

	res, err := c.agent.Run(ctx, l, graph.WithMirror(c.session))
	if err != nil {
		return "", err
	}
	final, ok := res.FinalAssistant()
	if !ok {
		return "", fmt.Errorf("%w: no assistant turn", ErrMalformedResponse)
	}
	return final.Content, nil
}

// History returns a copy of the conversation so far.
func (c *ChatAgent) History(ctx context.Context) []message.Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history(ctx).View()
}

// Warnings returns the persistence failures of the session.
func (c *ChatAgent) Warnings() []error {
	return c.session.Warnings()
}

// Reset drops the stored history and starts over with the greeting.
func (c *ChatAgent) Reset(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.session.Clear(ctx); err != nil {
		return err
	}
	c.log = nil
	return nil
}

func (c *ChatAgent) history(ctx context.Context) *message.Log {
	if c.log == nil {
		c.log = c.session.Hydrate(ctx, message.System(c.greeting))
	}
	return c.log
}
