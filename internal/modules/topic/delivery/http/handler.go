package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"skripta.hr/forum/internal/entity"
	"skripta.hr/forum/internal/modules/topic/dto"
	"skripta.hr/forum/internal/modules/topic/service"
	"skripta.hr/forum/internal/modules/topicpage"
	"skripta.hr/forum/pkg/response"
	pkgdto "skripta.hr/forum/pkg/dto"
)

type TopicHandler struct {
	service service.TopicService
	loader  topicpage.Loader
}

func NewTopicHandler(service service.TopicService, loader topicpage.Loader) *TopicHandler {
	return &TopicHandler{service: service, loader: loader}
}

func isAdmin(c *gin.Context) bool {
	role, _ := c.Get("role")
	return role == entity.RoleAdmin
}

func (h *TopicHandler) CreateTopic(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.CreateTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, err)
		return
	}

	result, err := h.service.CreateTopic(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h *TopicHandler) GetTopics(c *gin.Context) {
	var filter pkgdto.TopicFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.ResponseError(c, err)
		return
	}

	topics, meta, err := h.service.GetTopics(c.Request.Context(), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": topics,
		"meta": meta,
	})
}

// GetTopicPage serves the aggregated detail view for a slug.
func (h *TopicHandler) GetTopicPage(c *gin.Context) {
	slug := c.Param("slug")
	userID := response.OptionalUserID(c)

	page, err := h.loader.Load(c.Request.Context(), slug, userID, c.ClientIP())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *TopicHandler) UpdateTopic(c *gin.Context) {
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

	var req dto.UpdateTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, err)
		return
	}

	topic, err := h.service.UpdateTopic(c.Request.Context(), userID, topicID, isAdmin(c), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, topic)
}

func (h *TopicHandler) DeleteTopic(c *gin.Context) {
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

	if err := h.service.DeleteTopic(c.Request.Context(), userID, topicID, isAdmin(c)); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "tema obrisana"})
}

type pinRequest struct {
	Pinned bool `json:"pinned"`
}

func (h *TopicHandler) SetPinned(c *gin.Context) {
	topicID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid topic id"})
		return
	}

	var req pinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.SetPinned(c.Request.Context(), topicID, req.Pinned); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"pinned": req.Pinned})
}

type lockRequest struct {
	Locked bool `json:"locked"`
}

func (h *TopicHandler) SetLocked(c *gin.Context) {
	topicID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid topic id"})
		return
	}

	var req lockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.SetLocked(c.Request.Context(), topicID, req.Locked); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"locked": req.Locked})
}
