package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-mgmt-api/internal/middleware"
	"github.com/noah-isme/course-mgmt-api/internal/models"
)

func currentUser(c *gin.Context) *models.AuthUser {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	user, ok := value.(*models.AuthUser)
	if !ok {
		return nil
	}
	return user
}

func requestMeta(c *gin.Context) models.RequestMeta {
	return models.RequestMeta{IP: c.ClientIP(), UserAgent: c.GetHeader("User-Agent")}
}
