package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Attachment belongs to either a topic or a reply, never both.
type Attachment struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	TopicID    *uuid.UUID `gorm:"type:uuid;index" json:"topic_id,omitempty"`
	ReplyID    *uuid.UUID `gorm:"type:uuid;index" json:"reply_id,omitempty"`
	FileName   string     `gorm:"size:255;not null" json:"file_name"`
	FileURL    string     `gorm:"type:text;not null" json:"file_url"`
	FileType   string     `gorm:"size:100" json:"file_type"`
	FileSize   int64      `gorm:"default:0" json:"file_size"`
	UploadedBy uuid.UUID  `gorm:"type:uuid;not null" json:"uploaded_by"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (a *Attachment) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID, err = uuid.NewV7()
	}
	return
}

type Reaction struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_reactions_unique,priority:1" json:"user_id"`
	TopicID   *uuid.UUID `gorm:"type:uuid;index:idx_reactions_unique,priority:2;index" json:"topic_id,omitempty"`
	ReplyID   *uuid.UUID `gorm:"type:uuid;index:idx_reactions_unique,priority:3;index" json:"reply_id,omitempty"`
	Emoji     string     `gorm:"size:10;not null;index:idx_reactions_unique,priority:4" json:"emoji"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (r *Reaction) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}

type Bookmark struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_bookmarks_user_topic,priority:1" json:"user_id"`
	TopicID   uuid.UUID `gorm:"type:uuid;not null;index:idx_bookmarks_user_topic,priority:2" json:"topic_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (b *Bookmark) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == uuid.Nil {
		b.ID, err = uuid.NewV7()
	}
	return
}

// TopicView is one unique view record. Uniqueness per user/hour is enforced
// in redis before the row is written.
type TopicView struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	TopicID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"topic_id"`
	UserID    *uuid.UUID `gorm:"type:uuid" json:"user_id,omitempty"`
	IPAddress *string    `gorm:"size:45" json:"ip_address,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (v *TopicView) BeforeCreate(tx *gorm.DB) (err error) {
	if v.ID == uuid.Nil {
		v.ID, err = uuid.NewV7()
	}
	return
}

type AchievementAward struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_awards_user_code,priority:1" json:"user_id"`
	Code      string    `gorm:"size:50;not null;uniqueIndex:idx_awards_user_code,priority:2" json:"code"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (a *AchievementAward) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID, err = uuid.NewV7()
	}
	return
}
