package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"skripta.hr/forum/internal/modules/poll/service"
	"skripta.hr/forum/pkg/response"
)

type PollHandler struct {
	service service.PollService
}

func NewPollHandler(service service.PollService) *PollHandler {
	return &PollHandler{service: service}
}

type votePollRequest struct {
	OptionIDs []string `json:"option_ids" binding:"required,min=1"`
}

func (h *PollHandler) Vote(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	pollID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid poll id"})
		return
	}

	var req votePollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, err)
		return
	}

	optionIDs := make([]uuid.UUID, 0, len(req.OptionIDs))
	for _, raw := range req.OptionIDs {
		optionID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid option id"})
			return
		}
		optionIDs = append(optionIDs, optionID)
	}

	result, err := h.service.Vote(c.Request.Context(), pollID, userID, optionIDs)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *PollHandler) RemoveVote(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	pollID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid poll id"})
		return
	}

	result, err := h.service.RemoveVote(c.Request.Context(), pollID, userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
