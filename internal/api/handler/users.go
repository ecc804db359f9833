package handler

import (
	"complaintdesk/backend/internal/validation"
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListUsers(c *gin.Context) {
	a, ok := h.actor(c)
	if !ok {
		return
	}
	list, err := h.Users.List(c.Request.Context(), a)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": list})
}

func (h *Handler) SetRole(c *gin.Context) {
	a, ok := h.actor(c)
	if !ok {
		return
	}
	var in validation.RoleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.badRequest(c)
		return
	}
	if err := h.Users.SetRole(c.Request.Context(), a, c.Param("id"), in.Role); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) DeleteUser(c *gin.Context) {
	a, ok := h.actor(c)
	if !ok {
		return
	}
	if err := h.Users.Delete(c.Request.Context(), a, c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
