package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"skripta.hr/forum/internal/modules/draft/service"
	"skripta.hr/forum/pkg/response"
)

type DraftHandler struct {
	service service.DraftService
}

func NewDraftHandler(service service.DraftService) *DraftHandler {
	return &DraftHandler{service: service}
}

type saveDraftRequest struct {
	ID         *string  `json:"id,omitempty"`
	Title      string   `json:"title" binding:"max=200"`
	Content    string   `json:"content" binding:"max=10000"`
	CategoryID *string  `json:"category_id,omitempty"`
	TagIDs     []string `json:"tag_ids"`
}

func (h *DraftHandler) SaveDraft(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req saveDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, err)
		return
	}

	input := service.SaveDraftInput{
		Title:   req.Title,
		Content: req.Content,
	}

	if req.ID != nil {
		id, err := uuid.Parse(*req.ID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid draft id"})
			return
		}
		input.ID = &id
	}

	if req.CategoryID != nil {
		categoryID, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
			return
		}
		input.CategoryID = &categoryID
	}

	for _, raw := range req.TagIDs {
		tagID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tag id"})
			return
		}
		input.TagIDs = append(input.TagIDs, tagID)
	}

	draft, err := h.service.SaveDraft(c.Request.Context(), userID, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, draft)
}

func (h *DraftHandler) GetDraft(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	draftID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid draft id"})
		return
	}

	draft, err := h.service.GetDraft(c.Request.Context(), userID, draftID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, draft)
}

func (h *DraftHandler) ListDrafts(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	drafts, err := h.service.ListDrafts(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": drafts})
}

func (h *DraftHandler) DeleteDraft(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	draftID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid draft id"})
		return
	}

	if err := h.service.DeleteDraft(c.Request.Context(), userID, draftID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "nacrt obrisan"})
}
