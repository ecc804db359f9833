package handler

import (
	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/chathub"
	"complaintdesk/backend/internal/complaint"
	"complaintdesk/backend/internal/localization"
	"complaintdesk/backend/internal/users"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handler містить посилання на сервіси та ChatHub
type Handler struct {
	Hub        *chathub.ManagerService
	Complaints *complaint.Service
	Users      *users.Service
	Localizer  *localization.Localizer
}

func NewHandler(hub *chathub.ManagerService, complaints *complaint.Service, u *users.Service, l *localization.Localizer) *Handler {
	return &Handler{Hub: hub, Complaints: complaints, Users: u, Localizer: l}
}

func (h *Handler) lang(c *gin.Context) string {
	return h.Localizer.Negotiate(c.GetHeader("Accept-Language"))
}

func (h *Handler) text(c *gin.Context, key, fallback string) string {
	return h.Localizer.Message(h.lang(c), key, fallback)
}

// fail переводить помилку сервісу у HTTP-відповідь
func (h *Handler) fail(c *gin.Context, err error) {
	var verr *apperr.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": h.text(c, verr.Key, verr.Message), "field": verr.Field})
	case apperr.IsAuthorization(err):
		c.JSON(http.StatusForbidden, gin.H{"error": h.text(c, "error.forbidden", "You are not allowed to do this")})
	case apperr.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": h.text(c, "error.not_found", "Not found")})
	case apperr.IsTransient(err):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": h.text(c, "error.unavailable", "Service temporarily unavailable, please try again")})
	default:
		log.Printf("ERROR: %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": h.text(c, "error.internal", "Something went wrong")})
	}
}

func (h *Handler) badRequest(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"error": h.text(c, "error.bad_request", "Malformed request")})
}

// Health is the unauthenticated liveness probe.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
