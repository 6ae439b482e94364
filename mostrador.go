// Package mostrador is a conversational intake assistant for in-store IT
// incidents. It authenticates the employee, classifies the request, walks
// through detail collection and a knowledge-base solution, and either closes
// the incident or escalates it with a tracking code. Conversations suspend
// whenever user input is needed and resume from persisted state, so a session
// survives process restarts and multi-replica deployments.
package mostrador

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/unanue/mostrador/internal/kb"
	"github.com/unanue/mostrador/internal/nodes"
	"github.com/unanue/mostrador/internal/runtime"
	"github.com/unanue/mostrador/pkg/adapters/memory"
	"github.com/unanue/mostrador/pkg/domain"
	"github.com/unanue/mostrador/pkg/ports"
	"github.com/unanue/mostrador/pkg/session"
)

// Assistant ties the conversation engine, the node set and session
// persistence together behind a single Handle call per external turn.
type Assistant struct {
	engine   *runtime.Engine
	sessions *session.Manager
	logger   *slog.Logger
}

type config struct {
	store       ports.StateStore
	locker      ports.DistributedLocker
	identity    ports.IdentityStore
	incidents   ports.IncidentStore
	solutions   ports.KnowledgeBase
	catalog     nodes.Catalog
	model       ports.LanguageModel
	budgets     nodes.Budgets
	logger      *slog.Logger
	engineOpts  []runtime.EngineOption
	sessionOpts []session.Option
}

// Option configures the Assistant.
type Option func(*config)

// WithStateStore sets the session persistence backend.
func WithStateStore(store ports.StateStore) Option {
	return func(c *config) { c.store = store }
}

// WithDistributedLocker enables cross-replica session locking.
func WithDistributedLocker(locker ports.DistributedLocker) Option {
	return func(c *config) { c.locker = locker }
}

// WithIdentityStore sets the employee directory.
func WithIdentityStore(identity ports.IdentityStore) Option {
	return func(c *config) { c.identity = identity }
}

// WithIncidentStore sets the incident ticketing backend.
func WithIncidentStore(incidents ports.IncidentStore) Option {
	return func(c *config) { c.incidents = incidents }
}

// WithKnowledgeBase sets both the solution book and the classification
// catalog from a loaded knowledge base.
func WithKnowledgeBase(base *kb.KB) Option {
	return func(c *config) {
		c.solutions = base
		c.catalog = base
	}
}

// WithLanguageModel enables model-assisted classification. Without it the
// assistant classifies by catalog keywords only.
func WithLanguageModel(model ports.LanguageModel) Option {
	return func(c *config) { c.model = model }
}

// WithBudgets overrides the per-step retry budgets.
func WithBudgets(budgets nodes.Budgets) Option {
	return func(c *config) { c.budgets = budgets }
}

// WithLogger sets the logger shared by the engine and the nodes.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithEngineOptions forwards options to the underlying engine.
func WithEngineOptions(opts ...runtime.EngineOption) Option {
	return func(c *config) { c.engineOpts = append(c.engineOpts, opts...) }
}

// New builds an Assistant. Defaults are fully in-memory: the embedded
// knowledge base, a demo employee directory and an in-process incident book,
// so New() with no options yields a working assistant for tests and the
// interactive chat.
func New(opts ...Option) (*Assistant, error) {
	cfg := &config{
		budgets: nodes.DefaultBudgets(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.store == nil {
		cfg.store = memory.NewStore()
	}
	if cfg.solutions == nil || cfg.catalog == nil {
		base := kb.Default()
		if cfg.solutions == nil {
			cfg.solutions = base
		}
		if cfg.catalog == nil {
			cfg.catalog = base
		}
	}
	if cfg.identity == nil {
		cfg.identity = memory.DemoDirectory()
	}
	if cfg.incidents == nil {
		cfg.incidents = memory.NewIncidentBook("ER")
	}

	caps := nodes.Capabilities{
		Identity:  cfg.identity,
		Incidents: cfg.incidents,
		Solutions: cfg.solutions,
		Catalog:   cfg.catalog,
		Model:     cfg.model,
		Logger:    cfg.logger,
	}

	engineOpts := append([]runtime.EngineOption{runtime.WithLogger(cfg.logger)}, cfg.engineOpts...)
	engine, err := runtime.NewEngine(nodes.All(caps, cfg.budgets), engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build engine: %w", err)
	}

	sessionOpts := append([]session.Option{session.WithLogger(cfg.logger)}, cfg.sessionOpts...)
	if cfg.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(cfg.locker))
	}

	return &Assistant{
		engine:   engine,
		sessions: session.NewManager(cfg.store, sessionOpts...),
		logger:   cfg.logger,
	}, nil
}

// Turn is the outcome of one external turn.
type Turn struct {
	// Replies are the assistant messages produced by this turn, in order.
	Replies []string
	// Finished reports that the session terminated (resolved or escalated).
	Finished bool
	// Step is the step the conversation is parked at after the turn.
	Step domain.Step
}

// Handle delivers one user message to a session and returns the assistant's
// replies. Unknown session ids start a fresh conversation; an empty text on a
// fresh session produces the welcome message. The whole turn runs under the
// session lock.
func (a *Assistant) Handle(ctx context.Context, sessionID, text string) (*Turn, error) {
	return a.handle(ctx, sessionID, "", text)
}

// HandleMessage is Handle with a caller-chosen message id, enabling idempotent
// redelivery: a message id already processed replays the recorded replies
// without executing any node.
func (a *Assistant) HandleMessage(ctx context.Context, sessionID, messageID, text string) (*Turn, error) {
	return a.handle(ctx, sessionID, messageID, text)
}

func (a *Assistant) handle(ctx context.Context, sessionID, messageID, text string) (*Turn, error) {
	if messageID == "" {
		messageID = uuid.NewString()
	}
	var turn *Turn
	err := a.sessions.WithLock(ctx, sessionID, func(ctx context.Context) error {
		store := a.sessions.Store()

		st, err := store.Load(ctx, sessionID)
		if err != nil {
			if !errors.Is(err, domain.ErrSessionNotFound) {
				return fmt.Errorf("failed to load session %s: %w", sessionID, err)
			}
			st = domain.NewState(sessionID)
		}

		msg := domain.Message{ID: messageID, Role: domain.RoleUser, Content: text}
		next, replies, outcome, err := a.engine.Resume(ctx, st, msg)
		if err != nil {
			return err
		}

		if err := store.Save(ctx, sessionID, next); err != nil {
			return fmt.Errorf("failed to persist session %s: %w", sessionID, err)
		}

		turn = &Turn{
			Finished: outcome == runtime.OutcomeTerminated,
			Step:     next.CurrentStep,
		}
		for _, r := range replies {
			turn.Replies = append(turn.Replies, r.Content)
		}
		return nil
	})
	return turn, err
}

// State returns a copy of a session's state.
func (a *Assistant) State(ctx context.Context, sessionID string) (*domain.State, error) {
	return a.sessions.Load(ctx, sessionID)
}

// Sessions lists the known session ids.
func (a *Assistant) Sessions(ctx context.Context) ([]string, error) {
	return a.sessions.List(ctx)
}

// Forget deletes a session.
func (a *Assistant) Forget(ctx context.Context, sessionID string) error {
	return a.sessions.Delete(ctx, sessionID)
}

// Steps returns the steps wired into the engine, in table order.
func (a *Assistant) Steps() []domain.Step {
	return a.engine.Steps()
}
