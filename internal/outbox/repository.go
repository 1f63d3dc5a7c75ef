package outbox

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// EnqueueTx records an event inside an existing transaction so the intent
// commits or rolls back together with the primary write.
func (r *Repository) EnqueueTx(tx *gorm.DB, eventType string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	event := &Event{
		Type:        eventType,
		Payload:     b,
		Status:      StatusPending,
		MaxAttempts: 5,
	}
	return tx.Create(event).Error
}

func (r *Repository) Enqueue(ctx context.Context, eventType string, payload any) error {
	return r.EnqueueTx(r.db.WithContext(ctx), eventType, payload)
}

// FetchNext claims the oldest runnable event. SKIP LOCKED keeps concurrent
// workers from claiming the same row. Returns nil when the queue is empty.
func (r *Repository) FetchNext(ctx context.Context) (*Event, error) {
	var event Event

	query := `
		UPDATE outbox_events
		SET status = 'processing', updated_at = NOW()
		WHERE id = (
			SELECT id FROM outbox_events
			WHERE status IN ('pending', 'retry')
			  AND (next_try_at IS NULL OR next_try_at <= NOW())
			ORDER BY id
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING *
	`

	err := r.db.WithContext(ctx).Raw(query).Scan(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if event.ID == 0 {
		return nil, nil
	}

	return &event, nil
}

func (r *Repository) Update(ctx context.Context, event *Event) error {
	return r.db.WithContext(ctx).Save(event).Error
}

// CountByStatus exposes queue depth for the admin stats endpoint.
func (r *Repository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Event{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
