package dto

import "time"

type CreatePollInput struct {
	Question             string     `json:"question" binding:"required,max=255"`
	Options              []string   `json:"options" binding:"required,min=2,max=10,dive,required,max=255"`
	AllowMultipleChoices bool       `json:"allow_multiple_choices"`
	ExpiresAt            *time.Time `json:"expires_at,omitempty"`
}

type CreateTopicRequest struct {
	Title         string           `json:"title" binding:"required,max=200"`
	Content       string           `json:"content" binding:"required,max=10000"`
	CategoryID    string           `json:"category_id" binding:"required,uuid"`
	TagIDs        []string         `json:"tag_ids"`
	AttachmentIDs []string         `json:"attachment_ids"`
	DraftID       *string          `json:"draft_id,omitempty"`
	Poll          *CreatePollInput `json:"poll,omitempty"`
}

type UpdateTopicRequest struct {
	Title         string   `json:"title" binding:"required,max=200"`
	Content       string   `json:"content" binding:"required,max=10000"`
	CategoryID    string   `json:"category_id" binding:"required,uuid"`
	TagIDs        []string `json:"tag_ids"`
	AttachmentIDs []string `json:"attachment_ids"`
}

type CreateTopicResponse struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
}
