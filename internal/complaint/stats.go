package complaint

import "complaintdesk/backend/internal/models"

// Stats are the dashboard counters. Every complaint with a known status is
// counted in exactly one of Pending, InProgress and Resolved.
type Stats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Resolved   int `json:"resolved"`
}

func Aggregate[T interface{ GetStatus() models.ComplaintStatus }](records []T) Stats {
	var s Stats
	for _, r := range records {
		s.Total++
		switch r.GetStatus() {
		case models.StatusSubmitted, models.StatusInReview:
			s.Pending++
		case models.StatusInProgress:
			s.InProgress++
		case models.StatusResolved, models.StatusClosed:
			s.Resolved++
		}
	}
	return s
}
