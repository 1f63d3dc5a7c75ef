package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"skripta.hr/forum/internal/modules/achievement/service"
	userrepository "skripta.hr/forum/internal/modules/user/repository"
	"skripta.hr/forum/pkg/response"
)

type AchievementHandler struct {
	service  service.AchievementService
	userRepo userrepository.UserRepository
}

func NewAchievementHandler(service service.AchievementService, userRepo userrepository.UserRepository) *AchievementHandler {
	return &AchievementHandler{service: service, userRepo: userRepo}
}

func (h *AchievementHandler) ListByUsername(c *gin.Context) {
	user, err := h.userRepo.FindByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "korisnik nije pronađen"})
		return
	}

	awards, err := h.service.ListByUser(c.Request.Context(), user.ID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": awards})
}
