package dto

type CreateReplyRequest struct {
	Content       string   `json:"content" binding:"required,max=10000"`
	ParentReplyID *string  `json:"parent_reply_id,omitempty"`
	AttachmentIDs []string `json:"attachment_ids"`
}

type UpdateReplyRequest struct {
	Content string `json:"content" binding:"required,max=10000"`
}

type VoteRequest struct {
	// 1 for upvote, -1 for downvote, 0 removes the vote.
	VoteType int `json:"vote_type" binding:"oneof=-1 0 1"`
}
