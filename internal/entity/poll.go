package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Poll struct {
	ID                   uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	TopicID              uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex" json:"topic_id"`
	Question             string       `gorm:"size:255;not null" json:"question"`
	AllowMultipleChoices bool         `gorm:"default:false" json:"allow_multiple_choices"`
	ExpiresAt            *time.Time   `json:"expires_at,omitempty"`
	Options              []PollOption `gorm:"foreignKey:PollID" json:"options,omitempty"`
	CreatedAt            time.Time    `gorm:"autoCreateTime" json:"created_at"`
}

func (p *Poll) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID, err = uuid.NewV7()
	}
	return
}

func (p *Poll) IsExpired() bool {
	return p.ExpiresAt != nil && p.ExpiresAt.Before(time.Now())
}

type PollOption struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PollID     uuid.UUID `gorm:"type:uuid;not null;index" json:"poll_id"`
	Text       string    `gorm:"size:255;not null" json:"text"`
	OrderIndex int       `gorm:"default:0" json:"order_index"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (o *PollOption) BeforeCreate(tx *gorm.DB) (err error) {
	if o.ID == uuid.Nil {
		o.ID, err = uuid.NewV7()
	}
	return
}

type PollVote struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PollID    uuid.UUID `gorm:"type:uuid;not null;index" json:"poll_id"`
	OptionID  uuid.UUID `gorm:"type:uuid;not null;index" json:"option_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (v *PollVote) BeforeCreate(tx *gorm.DB) (err error) {
	if v.ID == uuid.Nil {
		v.ID, err = uuid.NewV7()
	}
	return
}
