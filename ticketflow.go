package ticketflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/ticketflow/internal/logging"
	"github.com/aretw0/ticketflow/pkg/adapters/memory"
	"github.com/aretw0/ticketflow/pkg/automaton"
	"github.com/aretw0/ticketflow/pkg/booking"
	"github.com/aretw0/ticketflow/pkg/catalog"
	"github.com/aretw0/ticketflow/pkg/domain"
	"github.com/aretw0/ticketflow/pkg/ports"
	"github.com/aretw0/ticketflow/pkg/session"
)

// Engine is the high-level entry point of the ticketflow library.
// It binds the booking transition table, the trail catalog and a session manager.
type Engine struct {
	table   *automaton.Table
	catalog *catalog.Catalog
	legend  map[domain.Symbol]string
	store   ports.SnapshotStore
	locker  ports.DistributedLocker
	hooks   domain.LifecycleHooks
	logger  *slog.Logger

	sessions *session.Manager
}

var _ ports.Engine = (*Engine)(nil)

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks. Multiple calls are merged.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithStore sets where session snapshots are kept (default: in memory).
func WithStore(store ports.SnapshotStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithLocker enables distributed locking of sessions.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = locker
	}
}

// WithCatalog replaces the built-in example trails.
func WithCatalog(c *catalog.Catalog) Option {
	return func(e *Engine) {
		e.catalog = c
	}
}

// WithTable replaces the booking workflow with another automaton.
// The legend is cleared; symbols are then displayed as-is.
func WithTable(table *automaton.Table) Option {
	return func(e *Engine) {
		e.table = table
		e.legend = nil
	}
}

// New initializes a new Engine.
// It fails when the transition table is invalid or when a catalog trail
// disagrees with the table.
func New(opts ...Option) (*Engine, error) {
	eng := &Engine{legend: booking.Legend()}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.table == nil {
		table, err := booking.NewTable()
		if err != nil {
			return nil, fmt.Errorf("failed to build booking table: %w", err)
		}
		eng.table = table
	}
	if eng.catalog == nil {
		eng.catalog = catalog.New(booking.Trails()...)
	}
	if err := eng.catalog.Verify(eng.table); err != nil {
		return nil, fmt.Errorf("inconsistent trail catalog: %w", err)
	}

	if eng.store == nil {
		eng.store = memory.NewStore()
	}
	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	eng.logger = eng.logger.With("component", "ticketflow")

	sessionOpts := []session.Option{
		session.WithLogger(eng.logger),
		session.WithLifecycleHooks(eng.hooks),
	}
	if eng.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(eng.locker))
	}
	eng.sessions = session.NewManager(eng.table, eng.store, sessionOpts...)

	eng.logger.Debug("Engine ready",
		"states", len(eng.table.States()),
		"symbols", len(eng.table.Alphabet()),
		"trails", eng.catalog.Len(),
	)
	return eng, nil
}

// Step consumes one symbol in the session.
// Surrounding whitespace is trimmed; an empty result yields domain.ErrNoSymbol
// without touching the automaton. Anything else, however malformed, is a
// symbol: outside the alphabet it moves the session to the error state.
// The echoed symbol is the printable form.
func (e *Engine) Step(ctx context.Context, sessionID, symbol string) (*domain.StepResult, error) {
	trimmed := strings.TrimSpace(symbol)
	if trimmed == "" {
		return nil, domain.ErrNoSymbol
	}
	res, err := e.sessions.Step(ctx, sessionID, domain.Symbol(trimmed))
	if err != nil {
		return nil, err
	}
	res.Symbol = res.Symbol.Printable()
	return res, nil
}

// Run resets the session and consumes every token of sequence.
// Each element may itself hold several whitespace-separated symbols.
func (e *Engine) Run(ctx context.Context, sessionID string, sequence []string) (*domain.RunResult, error) {
	var tokens []string
	for _, part := range sequence {
		tokens = append(tokens, strings.Fields(part)...)
	}
	return e.sessions.Run(ctx, sessionID, domain.Symbols(tokens))
}

// Reset returns the session to the start state.
func (e *Engine) Reset(ctx context.Context, sessionID string) (*domain.RunResult, error) {
	return e.sessions.Reset(ctx, sessionID)
}

// Watch registers fn for every committed change of any session, in commit
// order per session. The returned function unregisters it.
func (e *Engine) Watch(fn domain.ChangeFunc) func() {
	return e.sessions.Watch(fn)
}

// Snapshot returns the session position without changing it.
func (e *Engine) Snapshot(ctx context.Context, sessionID string) (*domain.Snapshot, error) {
	return e.sessions.Snapshot(ctx, sessionID)
}

// LoadSession returns the stored snapshot of a session.
// Unknown sessions yield domain.ErrSessionNotFound.
func (e *Engine) LoadSession(ctx context.Context, sessionID string) (*domain.Snapshot, error) {
	return e.sessions.Load(ctx, sessionID)
}

// Sessions returns the stored session IDs.
func (e *Engine) Sessions(ctx context.Context) ([]string, error) {
	return e.sessions.List(ctx)
}

// DeleteSession forgets a session.
func (e *Engine) DeleteSession(ctx context.Context, sessionID string) error {
	return e.sessions.Delete(ctx, sessionID)
}

// PickRandomTrail returns an example trail from the catalog.
func (e *Engine) PickRandomTrail() domain.Trail {
	return e.catalog.PickRandom()
}

// Catalog returns the example trails.
func (e *Engine) Catalog() *catalog.Catalog { return e.catalog }

// Table returns the shared transition table.
func (e *Engine) Table() *automaton.Table { return e.table }

// Alphabet returns the input symbols, sorted.
func (e *Engine) Alphabet() []domain.Symbol { return e.table.Alphabet() }

// States returns the states in display order.
func (e *Engine) States() []domain.State { return e.table.States() }

// Start returns the initial state.
func (e *Engine) Start() domain.State { return e.table.Start() }

// Legend returns the display text of every symbol.
func (e *Engine) Legend() map[domain.Symbol]string {
	out := make(map[domain.Symbol]string, len(e.legend))
	for k, v := range e.legend {
		out[k] = v
	}
	return out
}

// Describe returns the static description of the automaton.
func (e *Engine) Describe() domain.Description {
	return domain.Description{
		States:   e.table.States(),
		Alphabet: e.table.Alphabet(),
		Start:    e.table.Start(),
		Accept:   e.table.Accepting(),
		Sinks:    e.table.Sinks(),
		Error:    e.table.ErrorState(),
		Legend:   e.Legend(),
	}
}
