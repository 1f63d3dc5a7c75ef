package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Reply struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	TopicID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"topic_id"`
	Topic         Topic      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	AuthorID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"author_id"`
	Author        User       `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author,omitempty"`
	ParentReplyID *uuid.UUID `gorm:"type:uuid" json:"parent_reply_id,omitempty"`
	Content       string     `gorm:"type:text;not null" json:"content"`
	IsSolution    bool       `gorm:"default:false" json:"is_solution"`
	Upvotes       int        `gorm:"default:0" json:"upvotes"`
	Downvotes     int        `gorm:"default:0" json:"downvotes"`

	ModerationStatus string `gorm:"size:20;not null;default:approved" json:"moderation_status"`

	Attachments []Attachment `gorm:"foreignKey:ReplyID" json:"attachments,omitempty"`

	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	EditedAt  *time.Time `json:"edited_at,omitempty"`
}

func (r *Reply) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}

const (
	VoteUp   = 1
	VoteDown = -1
)

// Vote is one user's up/down vote on a reply. One row per (user, reply);
// switching direction updates the row in place.
type Vote struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_votes_user_reply,priority:1" json:"user_id"`
	ReplyID   uuid.UUID `gorm:"type:uuid;not null;index:idx_votes_user_reply,priority:2" json:"reply_id"`
	VoteType  int       `gorm:"not null" json:"vote_type"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (v *Vote) BeforeCreate(tx *gorm.DB) (err error) {
	if v.ID == uuid.Nil {
		v.ID, err = uuid.NewV7()
	}
	return
}
