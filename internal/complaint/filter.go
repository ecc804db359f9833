package complaint

import (
	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/models"
	"strings"
)

// Filterable is anything with the fields the list filter inspects.
type Filterable interface {
	GetTitle() string
	GetStatus() models.ComplaintStatus
	GetPriority() models.Priority
}

// Criteria narrows a complaint list. Empty fields and "all" impose nothing.
type Criteria struct {
	Text     string `form:"q" json:"q"`
	Status   string `form:"status" json:"status"`
	Priority string `form:"priority" json:"priority"`
}

func (c Criteria) matches(r Filterable) bool {
	if c.Text != "" && !strings.Contains(strings.ToLower(r.GetTitle()), strings.ToLower(c.Text)) {
		return false
	}
	if c.Status != "" && c.Status != config.FilterAll && string(r.GetStatus()) != c.Status {
		return false
	}
	if c.Priority != "" && c.Priority != config.FilterAll && string(r.GetPriority()) != c.Priority {
		return false
	}
	return true
}

// Filter keeps the records matching every criterion, in their original order.
func Filter[T Filterable](records []T, c Criteria) []T {
	out := make([]T, 0, len(records))
	for _, r := range records {
		if c.matches(r) {
			out = append(out, r)
		}
	}
	return out
}
