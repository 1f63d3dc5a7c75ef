package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"skripta.hr/forum/internal/entity"
	"skripta.hr/forum/internal/modules/attachment/service"
	"skripta.hr/forum/pkg/response"
)

type AttachmentHandler struct {
	service service.AttachmentService
}

func NewAttachmentHandler(service service.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{service: service}
}

func (h *AttachmentHandler) Upload(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "datoteka je obavezna"})
		return
	}

	attachment, err := h.service.Upload(c.Request.Context(), userID, fileHeader)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":        attachment.ID,
		"file_name": attachment.FileName,
		"file_url":  attachment.FileURL,
		"file_type": attachment.FileType,
		"file_size": attachment.FileSize,
	})
}

func (h *AttachmentHandler) Delete(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	attachmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid attachment id"})
		return
	}

	role, _ := c.Get("role")
	isAdmin := role == entity.RoleAdmin

	if err := h.service.Delete(c.Request.Context(), userID, isAdmin, attachmentID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "privitak obrisan"})
}
