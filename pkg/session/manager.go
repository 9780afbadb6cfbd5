package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/ticketflow/internal/logging"
	"github.com/aretw0/ticketflow/pkg/automaton"
	"github.com/aretw0/ticketflow/pkg/domain"
	"github.com/aretw0/ticketflow/pkg/ports"
)

// DefaultLockTTL bounds how long a crashed replica can hold a distributed lock.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates per-session automata, ensuring safe concurrent operations.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	table *automaton.Table
	store ports.SnapshotStore

	mu    sync.Mutex            // guards locks
	locks map[string]*lockEntry // active locks by session

	locker  ports.DistributedLocker
	lockTTL time.Duration
	hooks   domain.LifecycleHooks
	logger  *slog.Logger

	watchMu   sync.RWMutex
	watchers  map[int]domain.ChangeFunc
	nextWatch int
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithLifecycleHooks registers callbacks fired after each successful operation.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Manager) {
		m.hooks = m.hooks.Merge(hooks)
	}
}

// NewManager creates a Manager running table for every session kept in store.
func NewManager(table *automaton.Table, store ports.SnapshotStore, opts ...Option) *Manager {
	m := &Manager{
		table:   table,
		store:   store,
		locks:    make(map[string]*lockEntry),
		lockTTL:  DefaultLockTTL,
		logger:   logging.NewNop(),
		watchers: make(map[int]domain.ChangeFunc),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST lock entry.mu, and call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// WithLock executes fn while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			// The caller's context may already be cancelled; the lock must still go.
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// restore rebuilds the session automaton. Missing sessions start fresh; so do
// snapshots the table can no longer explain, e.g. after a workflow change.
func (m *Manager) restore(ctx context.Context, sessionID string) (*automaton.Automaton, error) {
	a := automaton.New(m.table)

	snap, err := m.store.Load(ctx, sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return a, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}
	if err := a.Restore(snap); err != nil {
		m.logger.Warn("Discarding inconsistent session snapshot",
			"session_id", sessionID,
			"err", err,
		)
		a.Reset()
	}
	return a, nil
}

// Watch registers fn for every committed change of any session.
// The returned function unregisters it.
func (m *Manager) Watch(fn domain.ChangeFunc) func() {
	m.watchMu.Lock()
	defer m.watchMu.Unlock()

	id := m.nextWatch
	m.nextWatch++
	m.watchers[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			m.watchMu.Lock()
			defer m.watchMu.Unlock()
			delete(m.watchers, id)
		})
	}
}

func (m *Manager) notify(ctx context.Context, ev *domain.ChangeEvent) {
	m.watchMu.RLock()
	defer m.watchMu.RUnlock()
	for _, fn := range m.watchers {
		fn(ctx, ev)
	}
}

// mutate runs fn on the session automaton, persists the outcome and tells the
// watchers, all under the session lock.
func (m *Manager) mutate(ctx context.Context, sessionID string, t domain.EventType, fn func(*automaton.Automaton)) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		a, err := m.restore(ctx, sessionID)
		if err != nil {
			return err
		}
		before := a.Snapshot(sessionID)
		fn(a)
		after := a.Snapshot(sessionID)
		if err := m.store.Save(ctx, sessionID, after); err != nil {
			return fmt.Errorf("failed to save session %s: %w", sessionID, err)
		}
		m.notify(ctx, &domain.ChangeEvent{
			EventBase: m.event(t, sessionID),
			Before:    before,
			After:     after,
		})
		return nil
	})
}

// Step consumes one symbol in the session.
func (m *Manager) Step(ctx context.Context, sessionID string, symbol domain.Symbol) (*domain.StepResult, error) {
	var res domain.StepResult
	err := m.mutate(ctx, sessionID, domain.EventStep, func(a *automaton.Automaton) {
		res = a.Step(symbol)
	})
	if err != nil {
		return nil, err
	}

	m.logger.Debug("Step", "session_id", sessionID, "symbol", symbol.Printable(), "from", res.Previous, "to", res.Current)
	if m.hooks.OnStep != nil {
		m.hooks.OnStep(ctx, &domain.StepEvent{
			EventBase: m.event(domain.EventStep, sessionID),
			Symbol:    symbol,
			From:      res.Previous,
			To:        res.Current,
			Accepted:  res.Accepted,
		})
	}
	return &res, nil
}

// Run resets the session and consumes seq.
func (m *Manager) Run(ctx context.Context, sessionID string, seq []domain.Symbol) (*domain.RunResult, error) {
	var res domain.RunResult
	err := m.mutate(ctx, sessionID, domain.EventRun, func(a *automaton.Automaton) {
		res = a.Run(seq)
	})
	if err != nil {
		return nil, err
	}

	m.logger.Debug("Run", "session_id", sessionID, "length", len(seq), "final", res.Current, "accepted", res.Accepted)
	if m.hooks.OnRun != nil {
		m.hooks.OnRun(ctx, &domain.RunEvent{
			EventBase: m.event(domain.EventRun, sessionID),
			Length:    len(seq),
			Final:     res.Current,
			Accepted:  res.Accepted,
		})
	}
	return &res, nil
}

// Reset returns the session to the start state.
func (m *Manager) Reset(ctx context.Context, sessionID string) (*domain.RunResult, error) {
	var res domain.RunResult
	err := m.mutate(ctx, sessionID, domain.EventReset, func(a *automaton.Automaton) {
		res = a.Reset()
	})
	if err != nil {
		return nil, err
	}

	m.logger.Debug("Reset", "session_id", sessionID)
	if m.hooks.OnReset != nil {
		m.hooks.OnReset(ctx, &domain.RunEvent{
			EventBase: m.event(domain.EventReset, sessionID),
			Final:     res.Current,
			Accepted:  res.Accepted,
		})
	}
	return &res, nil
}

func (m *Manager) event(t domain.EventType, sessionID string) domain.EventBase {
	return domain.EventBase{Timestamp: time.Now(), Type: t, SessionID: sessionID}
}

// Load retrieves an existing session snapshot.
// Returns domain.ErrSessionNotFound for unknown sessions.
func (m *Manager) Load(ctx context.Context, sessionID string) (*domain.Snapshot, error) {
	var snap *domain.Snapshot
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		snap, err = m.store.Load(ctx, sessionID)
		return err
	})
	return snap, err
}

// Snapshot returns the session position, or a fresh start position for
// unknown sessions. Nothing is persisted.
func (m *Manager) Snapshot(ctx context.Context, sessionID string) (*domain.Snapshot, error) {
	var snap *domain.Snapshot
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		a, err := m.restore(ctx, sessionID)
		if err != nil {
			return err
		}
		snap = a.Snapshot(sessionID)
		return nil
	})
	return snap, err
}

// Delete removes the session from the store.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying snapshot store.
func (m *Manager) Store() ports.SnapshotStore {
	return m.store
}

// Table returns the shared transition table.
func (m *Manager) Table() *automaton.Table {
	return m.table
}
