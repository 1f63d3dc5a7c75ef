package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Moderation status attached to user-submitted content by the automated
// heuristics at submission time.
const (
	ModerationApproved = "approved"
	ModerationFlagged  = "flagged"
)

type Category struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Slug        string    `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	Color       *string   `gorm:"size:20" json:"color,omitempty"`
	Icon        *string   `gorm:"size:50" json:"icon,omitempty"`
	OrderIndex  int       `gorm:"default:0" json:"order_index"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	return
}

type Tag struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Slug      string    `gorm:"size:50;uniqueIndex;not null" json:"slug"`
	Color     *string   `gorm:"size:20" json:"color,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (t *Tag) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID, err = uuid.NewV7()
	}
	return
}

type Topic struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title      string     `gorm:"size:255;not null" json:"title"`
	Slug       string     `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Content    string     `gorm:"type:text;not null" json:"content"`
	AuthorID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"author_id"`
	Author     User       `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author,omitempty"`
	CategoryID *uuid.UUID `gorm:"type:uuid;index" json:"category_id"`
	Category   Category   `gorm:"constraint:OnDelete:SET NULL" json:"category"`

	IsPinned    bool       `gorm:"default:false" json:"is_pinned"`
	IsLocked    bool       `gorm:"default:false" json:"is_locked"`
	HasSolution bool       `gorm:"default:false" json:"has_solution"`
	ViewCount   int        `gorm:"default:0" json:"view_count"`
	ReplyCount  int        `gorm:"default:0" json:"reply_count"`
	LastReplyAt *time.Time `json:"last_reply_at,omitempty"`
	LastReplyBy *uuid.UUID `gorm:"type:uuid" json:"last_reply_by,omitempty"`

	ModerationStatus string `gorm:"size:20;not null;default:approved" json:"moderation_status"`
	AutoFlagged      bool   `gorm:"default:false" json:"auto_flagged"`

	Tags        []Tag        `gorm:"many2many:topic_tags" json:"tags,omitempty"`
	Attachments []Attachment `gorm:"foreignKey:TopicID" json:"attachments,omitempty"`

	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	EditedAt  *time.Time `json:"edited_at,omitempty"`
}

func (t *Topic) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID, err = uuid.NewV7()
	}
	return
}

// TopicDraft is the auto-saved copy of an in-progress topic form. One row per
// editing session, upserted by its id once created.
type TopicDraft struct {
	ID         uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	AuthorID   uuid.UUID   `gorm:"type:uuid;not null;index" json:"author_id"`
	Title      string      `gorm:"size:255" json:"title"`
	Content    string      `gorm:"type:text" json:"content"`
	CategoryID *uuid.UUID  `gorm:"type:uuid" json:"category_id,omitempty"`
	TagIDs     []uuid.UUID `gorm:"serializer:json;type:jsonb" json:"tag_ids,omitempty"`
	CreatedAt  time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (d *TopicDraft) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == uuid.Nil {
		d.ID, err = uuid.NewV7()
	}
	return
}
