package outbox

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// Event is a recorded intent for a best-effort side effect (mention
// notifications, achievement checks, view recording, search indexing).
// The primary transaction writes the row; the worker processes it with retry
// so failures are observable instead of silently swallowed.
type Event struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Type        string          `gorm:"size:50;not null;index" json:"type"`
	Payload     json.RawMessage `gorm:"type:jsonb" json:"payload"`
	Status      string          `gorm:"size:20;not null;default:pending;index" json:"status"`
	Attempts    int             `gorm:"default:0" json:"attempts"`
	MaxAttempts int             `gorm:"default:5" json:"max_attempts"`
	NextTryAt   *time.Time      `json:"next_try_at,omitempty"`
	LastError   string          `gorm:"type:text" json:"last_error,omitempty"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Event) TableName() string {
	return "outbox_events"
}

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusRetry      = "retry"
	StatusDone       = "done"
	StatusDead       = "dead"
)

// Event types understood by the worker.
const (
	TypeMentions         = "mentions.process"
	TypeAchievementCheck = "achievements.check"
	TypeViewRecord       = "views.record"
	TypeSearchIndex      = "search.index"
	TypeSearchDelete     = "search.delete"
	TypeReactionNotify   = "reactions.notify"
	TypeReplyNotify      = "replies.notify"
	TypeSolutionNotify   = "solutions.notify"
)

// Handler processes one event. A nil return marks the event done; an error
// schedules a retry until MaxAttempts is reached.
type Handler func(ctx context.Context, e *Event) error

// BackoffDuration returns the exponential backoff for attempt n, capped at
// five minutes.
func BackoffDuration(attempt int) time.Duration {
	if attempt <= 0 {
		return time.Second
	}
	d := time.Duration(1<<uint(attempt)) * time.Second
	max := 5 * time.Minute
	if d > max {
		return max
	}
	return d
}

// Enqueuer is what write-side services need: record an intent inside their
// own transaction.
type Enqueuer interface {
	EnqueueTx(tx *gorm.DB, eventType string, payload any) error
	Enqueue(ctx context.Context, eventType string, payload any) error
}
