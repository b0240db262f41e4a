package events

import (
	"context"
	"strings"
	"time"
)

type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// Change describes one successful write. It is published after the write
// has been acknowledged by the database.
type Change struct {
	Resource  string    `json:"resource"`
	Action    Action    `json:"action"`
	ID        string    `json:"id"`
	ParentID  string    `json:"parentId,omitempty"`
	Deleted   int64     `json:"deleted,omitempty"`
	Cascade   bool      `json:"cascade,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Notifier announces changes. Implementations must not block the caller on
// network I/O and never report failures back to it.
type Notifier interface {
	Notify(ctx context.Context, change Change)
	Close()
}

// Topic builds <prefix>/<resource>/<action>
func Topic(prefix, resource string, action Action) string {
	parts := make([]string, 0, 3)
	if p := strings.Trim(prefix, "/"); p != "" {
		parts = append(parts, p)
	}
	parts = append(parts, resource, string(action))
	return strings.Join(parts, "/")
}

// NoopNotifier is used when no broker is configured
type NoopNotifier struct{}

func (NoopNotifier) Notify(context.Context, Change) {}

func (NoopNotifier) Close() {}
