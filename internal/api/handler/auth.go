package handler

import (
	"complaintdesk/backend/internal/auth"
	"complaintdesk/backend/internal/models"
	"net/http"

	"github.com/gin-gonic/gin"
)

// actor повертає автентифікованого користувача, встановленого middleware
func (h *Handler) actor(c *gin.Context) (models.Actor, bool) {
	a, ok := auth.ActorFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token missing"})
	}
	return a, ok
}

// Me describes the caller: who they are and what role they hold.
func (h *Handler) Me(c *gin.Context) {
	a, ok := h.actor(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user_id":   a.UserID,
		"role":      a.Role,
		"full_name": h.Complaints.Joiner.Name(c.Request.Context(), a.UserID),
	})
}
