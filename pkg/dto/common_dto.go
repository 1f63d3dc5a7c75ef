package dto

import (
	"time"

	"github.com/google/uuid"
)

type AuthorResponse struct {
	ID         uuid.UUID `json:"id"`
	Username   string    `json:"username"`
	AvatarURL  *string   `json:"avatar_url"`
	Reputation int       `json:"reputation"`
}

type PaginationMeta struct {
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	TotalItems  int64 `json:"total_items"`
	Limit       int   `json:"limit"`
}

type TopicFilter struct {
	CategoryID string `form:"category_id"`
	Search     string `form:"search"`
	SortBy     string `form:"sort_by"` // "newest", "popular"
	Page       int    `form:"page"`
	Limit      int    `form:"limit"`
}

type CategoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Color       *string   `json:"color,omitempty"`
	Icon        *string   `json:"icon,omitempty"`
}

type TagResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Slug  string    `json:"slug"`
	Color *string   `json:"color,omitempty"`
}

type AttachmentResponse struct {
	ID       uuid.UUID `json:"id"`
	FileName string    `json:"file_name"`
	FileURL  string    `json:"file_url"`
	FileType string    `json:"file_type"`
	FileSize int64     `json:"file_size"`
}

type ReactionsResponse struct {
	Counts      map[string]int64 `json:"counts"`
	UserReacted *string          `json:"user_reacted"`
}

type TopicResponse struct {
	ID           uuid.UUID            `json:"id"`
	Title        string               `json:"title"`
	Slug         string               `json:"slug"`
	Content      string               `json:"content"`
	CategoryName string               `json:"category_name"`
	CategorySlug string               `json:"category_slug"`
	Author       AuthorResponse       `json:"author"`
	IsPinned     bool                 `json:"is_pinned"`
	IsLocked     bool                 `json:"is_locked"`
	HasSolution  bool                 `json:"has_solution"`
	ViewCount    int                  `json:"view_count"`
	ReplyCount   int                  `json:"reply_count"`
	Tags         []TagResponse        `json:"tags"`
	Attachments  []AttachmentResponse `json:"attachments"`
	Reactions    ReactionsResponse    `json:"reactions"`
	CreatedAt    time.Time            `json:"created_at"`
	EditedAt     *time.Time           `json:"edited_at,omitempty"`
}

type PaginatedTopicResponse struct {
	Data []TopicResponse `json:"data"`
	Meta PaginationMeta  `json:"meta"`
}

type ReplyResponse struct {
	ID            uuid.UUID            `json:"id"`
	TopicID       uuid.UUID            `json:"topic_id"`
	ParentReplyID *uuid.UUID           `json:"parent_reply_id,omitempty"`
	Content       string               `json:"content"`
	Author        AuthorResponse       `json:"author"`
	IsSolution    bool                 `json:"is_solution"`
	Upvotes       int                  `json:"upvotes"`
	Downvotes     int                  `json:"downvotes"`
	Attachments   []AttachmentResponse `json:"attachments"`
	Reactions     ReactionsResponse    `json:"reactions"`
	CreatedAt     time.Time            `json:"created_at"`
	EditedAt      *time.Time           `json:"edited_at,omitempty"`
}
