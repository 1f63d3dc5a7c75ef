package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"skripta.hr/forum/internal/entity"
	"skripta.hr/forum/internal/modules/reply/dto"
	"skripta.hr/forum/internal/modules/reply/service"
	"skripta.hr/forum/pkg/response"
)

type ReplyHandler struct {
	service service.ReplyService
}

func NewReplyHandler(service service.ReplyService) *ReplyHandler {
	return &ReplyHandler{service: service}
}

func isAdmin(c *gin.Context) bool {
	role, _ := c.Get("role")
	return role == entity.RoleAdmin
}

func (h *ReplyHandler) CreateReply(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	topicID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid topic id"})
		return
	}

	var req dto.CreateReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, err)
		return
	}

	reply, err := h.service.CreateReply(c.Request.Context(), userID, topicID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, reply)
}

func (h *ReplyHandler) UpdateReply(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	replyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reply id"})
		return
	}

	var req dto.UpdateReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, err)
		return
	}

	reply, err := h.service.UpdateReply(c.Request.Context(), userID, replyID, isAdmin(c), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, reply)
}

func (h *ReplyHandler) DeleteReply(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	replyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reply id"})
		return
	}

	if err := h.service.DeleteReply(c.Request.Context(), userID, replyID, isAdmin(c)); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "odgovor obrisan"})
}

func (h *ReplyHandler) MarkSolution(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	replyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reply id"})
		return
	}

	if err := h.service.MarkSolution(c.Request.Context(), userID, replyID, isAdmin(c)); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "odgovor označen kao rješenje"})
}

func (h *ReplyHandler) UnmarkSolution(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	replyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reply id"})
		return
	}

	if err := h.service.UnmarkSolution(c.Request.Context(), userID, replyID, isAdmin(c)); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "oznaka rješenja uklonjena"})
}

func (h *ReplyHandler) Vote(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	replyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reply id"})
		return
	}

	var req dto.VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, err)
		return
	}

	reply, err := h.service.Vote(c.Request.Context(), userID, replyID, req.VoteType)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":        reply.ID,
		"upvotes":   reply.Upvotes,
		"downvotes": reply.Downvotes,
	})
}
