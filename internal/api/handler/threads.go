package handler

import (
	"complaintdesk/backend/internal/validation"
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListComments(c *gin.Context) {
	a, ok := h.actor(c)
	if !ok {
		return
	}
	comments, err := h.Complaints.ListComments(c.Request.Context(), a, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

func (h *Handler) AddComment(c *gin.Context) {
	a, ok := h.actor(c)
	if !ok {
		return
	}
	var in validation.CommentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.badRequest(c)
		return
	}
	comment, err := h.Complaints.SendComment(c.Request.Context(), a, c.Param("id"), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (h *Handler) ListMessages(c *gin.Context) {
	a, ok := h.actor(c)
	if !ok {
		return
	}
	messages, err := h.Complaints.ListMessages(c.Request.Context(), a, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func (h *Handler) PostMessage(c *gin.Context) {
	a, ok := h.actor(c)
	if !ok {
		return
	}
	var in validation.MessageInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.badRequest(c)
		return
	}
	msg, err := h.Complaints.SendMessage(c.Request.Context(), a, c.Param("id"), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}
