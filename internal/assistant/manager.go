package assistant

import (
	"context"
	"sync"

	pkgerrors "github.com/Ayuoyi/AsiliConnect/pkg/errors"
	"github.com/Ayuoyi/AsiliConnect/pkg/metrics"
	"github.com/google/uuid"
)

// Manager owns the live sessions. Reinitializing after a terminal error or
// an exhausted budget means removing the session and creating a new one.
type Manager struct {
	cfg       Config
	completer Completer
	metrics   *metrics.AssistantMetrics

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager wires the session dependencies.
func NewManager(cfg Config, completer Completer, m *metrics.AssistantMetrics) (*Manager, error) {
	if completer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "completion provider required")
	}
	return &Manager{
		cfg:       cfg.withDefaults(),
		completer: completer,
		metrics:   m,
		sessions:  make(map[string]*Session),
	}, nil
}

// Create starts a session with its greeting, probes the completion
// service, and registers the settled session.
func (m *Manager) Create(ctx context.Context) *Session {
	session := newSession(uuid.NewString(), m.cfg, m.completer, m.metrics)
	session.init(ctx)

	m.mu.Lock()
	m.sessions[session.id] = session
	m.mu.Unlock()

	return session
}

// Get returns the live session for id.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	return session, ok
}

// Remove tears the session down. In-flight completion results for a
// removed session are discarded.
func (m *Manager) Remove(id string) bool {
	m.mu.Lock()
	session, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		session.close()
	}
	return ok
}
