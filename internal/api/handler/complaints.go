package handler

import (
	"complaintdesk/backend/internal/complaint"
	"complaintdesk/backend/internal/validation"
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Categories(c *gin.Context) {
	categories, err := h.Complaints.Categories(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// ListComplaints returns the caller's complaints narrowed by ?q, ?status and
// ?priority. Stats always cover the unfiltered list.
func (h *Handler) ListComplaints(c *gin.Context) {
	a, ok := h.actor(c)
	if !ok {
		return
	}
	var criteria complaint.Criteria
	if err := c.ShouldBindQuery(&criteria); err != nil {
		h.badRequest(c)
		return
	}

	all, err := h.Complaints.ListForActor(c.Request.Context(), a)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"complaints": complaint.Filter(all, criteria),
		"stats":      complaint.Aggregate(all),
	})
}

func (h *Handler) CreateComplaint(c *gin.Context) {
	a, ok := h.actor(c)
	if !ok {
		return
	}
	var in validation.ComplaintInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.badRequest(c)
		return
	}

	created, err := h.Complaints.Create(c.Request.Context(), a, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) GetComplaint(c *gin.Context) {
	a, ok := h.actor(c)
	if !ok {
		return
	}
	view, err := h.Complaints.Get(c.Request.Context(), a, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if view == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": h.text(c, "complaint.not_found", "Complaint not found")})
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	a, ok := h.actor(c)
	if !ok {
		return
	}
	var in validation.StatusInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.badRequest(c)
		return
	}
	if err := h.Complaints.UpdateStatus(c.Request.Context(), a, c.Param("id"), in.Status); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Assign(c *gin.Context) {
	a, ok := h.actor(c)
	if !ok {
		return
	}
	var in validation.AssignInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.badRequest(c)
		return
	}
	if err := h.Complaints.Assign(c.Request.Context(), a, c.Param("id"), in.AssigneeID); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Resolve(c *gin.Context) {
	a, ok := h.actor(c)
	if !ok {
		return
	}
	var in validation.ResolveInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.badRequest(c)
		return
	}
	if err := h.Complaints.Resolve(c.Request.Context(), a, c.Param("id"), in.Summary); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
