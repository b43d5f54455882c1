package service

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const maxNotificationsPerSession = 20

// NotificationLevel distinguishes success toasts from warnings.
type NotificationLevel string

const (
	NotifySuccess NotificationLevel = "success"
	NotifyWarning NotificationLevel = "warning"
	NotifyError   NotificationLevel = "error"
)

// Notification is a transient per-session message, consumed once.
type Notification struct {
	ID        string            `json:"id"`
	Level     NotificationLevel `json:"level"`
	Message   string            `json:"message"`
	CreatedAt time.Time         `json:"created_at"`
}

// Notifier buffers transient notifications per session. Reading drains the
// buffer; undelivered messages beyond the cap are dropped oldest-first.
type Notifier struct {
	mu      sync.Mutex
	pending map[string][]Notification
}

// NewNotifier creates an empty notifier.
func NewNotifier() *Notifier {
	return &Notifier{pending: make(map[string][]Notification)}
}

// Push queues a notification for a session.
func (n *Notifier) Push(sessionID string, level NotificationLevel, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	q := append(n.pending[sessionID], Notification{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	})
	if len(q) > maxNotificationsPerSession {
		q = q[len(q)-maxNotificationsPerSession:]
	}
	n.pending[sessionID] = q
}

// Drain returns and clears the pending notifications for a session.
func (n *Notifier) Drain(sessionID string) []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	q := n.pending[sessionID]
	delete(n.pending, sessionID)
	if q == nil {
		q = []Notification{}
	}
	return q
}
