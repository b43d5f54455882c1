package cart

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/industriassp/storefront/internal/repository"
)

const (
	defaultIdleTTL       = 30 * time.Minute
	defaultSweepInterval = 5 * time.Minute
)

// Session bundles the per-session cart state: the item container and the
// overlay visibility coordinator.
type Session struct {
	Cart    *Container
	Overlay *Overlay

	lastAccess time.Time
}

// Manager owns one Session per active session ID. Sessions are created and
// hydrated lazily on first access and evicted after an idle period; the
// persisted copy in the store outlives the in-memory one.
type Manager struct {
	store   repository.CartStore
	logger  *slog.Logger
	idleTTL time.Duration

	mu       sync.Mutex
	sessions map[string]*Session

	stop chan struct{}
	done chan struct{}
}

// NewManager creates a session manager backed by the given store. Call Close
// to stop the idle sweeper.
func NewManager(store repository.CartStore, logger *slog.Logger) *Manager {
	if store == nil {
		panic("cart: NewManager called without a store")
	}
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		store:    store,
		logger:   logger,
		idleTTL:  defaultIdleTTL,
		sessions: make(map[string]*Session),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go m.sweepLoop(defaultSweepInterval)
	return m
}

// Session returns the state for a session ID, creating and hydrating it on
// first access.
func (m *Manager) Session(ctx context.Context, sessionID string) *Session {
	m.mu.Lock()
	s, ok := m.sessions[sessionID]
	if !ok {
		s = &Session{
			Cart:    NewContainer(sessionID, m.store, m.logger),
			Overlay: NewOverlay(nil),
		}
		m.sessions[sessionID] = s
	}
	s.lastAccess = time.Now()
	m.mu.Unlock()

	if !ok {
		s.Cart.Hydrate(ctx)
	}
	return s
}

// ActiveSessions reports the number of sessions currently held in memory.
func (m *Manager) ActiveSessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Close stops the idle sweeper.
func (m *Manager) Close() {
	close(m.stop)
	<-m.done
}

func (m *Manager) sweepLoop(interval time.Duration) {
	defer close(m.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.sweep(time.Now())
		case <-m.stop:
			return
		}
	}
}

// sweep drops sessions idle for longer than the TTL. Their persisted carts
// remain in the store and will rehydrate on the next access.
func (m *Manager) sweep(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		if now.Sub(s.lastAccess) > m.idleTTL {
			delete(m.sessions, id)
			m.logger.Debug("evicted idle cart session", "session_id", id)
		}
	}
}
