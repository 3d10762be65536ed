// Package assistant implements the bounded conversational session: a
// status-gated state machine with a hard per-session request budget and a
// retry-escalation counter that can permanently park the session in an
// error state. Failures from the completion service never escape this
// package; they surface as assistant-role messages.
package assistant

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Ayuoyi/AsiliConnect/pkg/ai"
	"github.com/Ayuoyi/AsiliConnect/pkg/metrics"
)

// Status is the session's gate for outbound requests.
type Status string

const (
	StatusInitializing Status = "initializing"
	StatusReady        Status = "ready"
	StatusError        Status = "error"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Fixed user-facing copy. The three failure messages preserve the
// auth/quota/generic distinction surfaced by the completion boundary.
const (
	greetingText     = "Hello! Welcome to AsiliConnect. How can I help you today?"
	notReadyText     = "API is not ready. Please wait or refresh the page."
	probeFailedText  = "Failed to initialize API connection. Please check your API key."
	authErrorText    = "API key error. Please check your configuration."
	quotaErrorText   = "API quota exceeded. Please try again later."
	genericErrorText = "An error occurred. Please try again."

	// LimitNotice is the terminal budget message shown once the session's
	// request ceiling is reached.
	LimitNotice = "Daily message limit reached. Please come back tomorrow."
)

// Message is one conversation turn.
type Message struct {
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Snapshot is the externally visible session state.
type Snapshot struct {
	ID            string    `json:"id"`
	Status        Status    `json:"status"`
	Messages      []Message `json:"messages"`
	IsTyping      bool      `json:"isTyping"`
	RequestCount  int       `json:"requestCount"`
	Remaining     int       `json:"remaining"`
	RetryAttempts int       `json:"retryAttempts"`
	ErrorMessage  string    `json:"errorMessage,omitempty"`
	LimitReached  bool      `json:"limitReached"`
	LimitNotice   string    `json:"limitNotice,omitempty"`
}

// Completer is the slice of the completion provider the session needs.
type Completer interface {
	Probe(ctx context.Context) error
	Chat(ctx context.Context, messages []ai.Message) (string, error)
}

// Config bounds a session.
type Config struct {
	MaxRequests    int
	RetryThreshold int
	HistoryWindow  int
}

func (c Config) withDefaults() Config {
	if c.MaxRequests <= 0 {
		c.MaxRequests = 50
	}
	if c.RetryThreshold <= 0 {
		c.RetryThreshold = 3
	}
	if c.HistoryWindow <= 0 {
		c.HistoryWindow = 4
	}
	return c
}

// Session is one conversation. All methods are safe for concurrent use;
// the completion call itself runs outside the lock so a slow provider
// never blocks snapshot reads, and a session closed mid-flight discards
// the late result.
type Session struct {
	id        string
	cfg       Config
	completer Completer
	metrics   *metrics.AssistantMetrics
	now       func() time.Time

	mu            sync.Mutex
	status        Status
	messages      []Message
	isTyping      bool
	requestCount  int
	retryAttempts int
	errorMessage  string
	closed        bool
}

func newSession(id string, cfg Config, completer Completer, m *metrics.AssistantMetrics) *Session {
	s := &Session{
		id:        id,
		cfg:       cfg.withDefaults(),
		completer: completer,
		metrics:   m,
		now:       time.Now,
		status:    StatusInitializing,
	}
	s.messages = []Message{{
		Role:      RoleAssistant,
		Text:      greetingText,
		Timestamp: s.now().UTC(),
	}}
	return s
}

// init probes the completion service and settles the session into ready or
// error.
func (s *Session) init(ctx context.Context) {
	err := s.completer.Probe(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if err != nil {
		s.status = StatusError
		s.errorMessage = probeFailedText
		return
	}
	s.status = StatusReady
}

// Submit runs one user turn. Blank input, an exhausted budget, and a
// non-ready session are all rejected without appending messages or
// consuming budget; an accepted turn appends the user message, consumes
// one request, and appends either the reply or a classified error message.
func (s *Session) Submit(ctx context.Context, text string) Snapshot {
	s.mu.Lock()

	if s.closed {
		defer s.mu.Unlock()
		return s.snapshotLocked()
	}
	if strings.TrimSpace(text) == "" || s.requestCount >= s.cfg.MaxRequests {
		defer s.mu.Unlock()
		return s.snapshotLocked()
	}
	if s.status != StatusReady {
		s.errorMessage = notReadyText
		defer s.mu.Unlock()
		return s.snapshotLocked()
	}

	history := s.historyLocked()
	s.messages = append(s.messages, Message{
		Role:      RoleUser,
		Text:      text,
		Timestamp: s.now().UTC(),
	})
	s.isTyping = true
	s.requestCount++
	s.errorMessage = ""
	s.mu.Unlock()

	start := s.now()
	reply, err := s.completer.Chat(ctx, append(history, ai.Message{Role: ai.RoleUser, Content: text}))
	elapsed := s.now().Sub(start)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		// The page moved on; drop the result instead of mutating a dead
		// session.
		return s.snapshotLocked()
	}

	s.isTyping = false
	if err != nil {
		s.applyFailureLocked(err, elapsed)
		return s.snapshotLocked()
	}

	s.metrics.ObserveRequest("success", elapsed)
	s.retryAttempts = 0
	s.messages = append(s.messages, Message{
		Role:      RoleAssistant,
		Text:      reply,
		Timestamp: s.now().UTC(),
	})
	return s.snapshotLocked()
}

func (s *Session) applyFailureLocked(err error, elapsed time.Duration) {
	kind := ai.KindOf(err)
	s.metrics.ObserveRequest("failure", elapsed)
	s.metrics.IncFailure(string(kind))

	var text string
	switch kind {
	case ai.KindAuth:
		text = authErrorText
	case ai.KindQuota:
		text = quotaErrorText
	default:
		text = genericErrorText
	}

	s.errorMessage = text
	s.messages = append(s.messages, Message{
		Role:      RoleAssistant,
		Text:      text,
		Timestamp: s.now().UTC(),
	})

	s.retryAttempts++
	if s.retryAttempts >= s.cfg.RetryThreshold {
		// Terminal; only a fresh session recovers.
		s.status = StatusError
	}
}

// historyLocked returns the most recent turns, bounded by the configured
// window, converted for the completion boundary.
func (s *Session) historyLocked() []ai.Message {
	start := len(s.messages) - s.cfg.HistoryWindow
	if start < 0 {
		start = 0
	}
	window := s.messages[start:]

	history := make([]ai.Message, 0, len(window)+1)
	for _, msg := range window {
		role := ai.RoleAssistant
		if msg.Role == RoleUser {
			role = ai.RoleUser
		}
		history = append(history, ai.Message{Role: role, Content: msg.Text})
	}
	return history
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	messages := make([]Message, len(s.messages))
	copy(messages, s.messages)

	remaining := s.cfg.MaxRequests - s.requestCount
	if remaining < 0 {
		remaining = 0
	}

	snap := Snapshot{
		ID:            s.id,
		Status:        s.status,
		Messages:      messages,
		IsTyping:      s.isTyping,
		RequestCount:  s.requestCount,
		Remaining:     remaining,
		RetryAttempts: s.retryAttempts,
		ErrorMessage:  s.errorMessage,
		LimitReached:  s.requestCount >= s.cfg.MaxRequests,
	}
	if snap.LimitReached {
		snap.LimitNotice = LimitNotice
	}
	return snap
}

// close marks the session dead; any in-flight completion result is
// discarded.
func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}
