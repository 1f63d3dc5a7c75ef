package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"skripta.hr/forum/internal/modules/moderation/dto"
	"skripta.hr/forum/internal/modules/moderation/service"
	"skripta.hr/forum/pkg/response"
)

type ModerationHandler struct {
	service service.ModerationService
}

func NewModerationHandler(service service.ModerationService) *ModerationHandler {
	return &ModerationHandler{service: service}
}

func (h *ModerationHandler) targetID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *ModerationHandler) SetRole(c *gin.Context) {
	adminID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	userID, ok := h.targetID(c)
	if !ok {
		return
	}

	var req dto.SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.SetRole(c.Request.Context(), adminID, userID, req.Role); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "uloga promijenjena"})
}

func (h *ModerationHandler) Ban(c *gin.Context) {
	adminID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	userID, ok := h.targetID(c)
	if !ok {
		return
	}

	var req dto.BanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.Ban(c.Request.Context(), adminID, userID, req.Reason); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "korisnik blokiran"})
}

func (h *ModerationHandler) Unban(c *gin.Context) {
	adminID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	userID, ok := h.targetID(c)
	if !ok {
		return
	}

	if err := h.service.Unban(c.Request.Context(), adminID, userID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "blokada uklonjena"})
}

func (h *ModerationHandler) Warn(c *gin.Context) {
	adminID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	userID, ok := h.targetID(c)
	if !ok {
		return
	}

	var req dto.WarnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.Warn(c.Request.Context(), adminID, userID, req.Reason); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "upozorenje poslano"})
}

func (h *ModerationHandler) Timeout(c *gin.Context) {
	adminID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	userID, ok := h.targetID(c)
	if !ok {
		return
	}

	var req dto.TimeoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.Timeout(c.Request.Context(), adminID, userID, req.Hours, req.Reason); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "ograničenje postavljeno"})
}

func (h *ModerationHandler) RemoveTimeout(c *gin.Context) {
	adminID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	userID, ok := h.targetID(c)
	if !ok {
		return
	}

	if err := h.service.RemoveTimeout(c.Request.Context(), adminID, userID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "ograničenje uklonjeno"})
}

func (h *ModerationHandler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	search := c.Query("search")

	users, total, err := h.service.ListUsers(c.Request.Context(), search, page, limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  users,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}
