package service

import (
	"time"

	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/internal/models"
)

// IsOverdue reports whether a request's scheduled date has passed.
//
// Requests without a scheduled date are never overdue, and terminal
// requests (REPAIRED, SCRAP) are never overdue even retroactively.
func IsOverdue(req *models.MaintenanceRequest, now time.Time) bool {
	if req.ScheduledDate == nil {
		return false
	}
	if req.Status.IsTerminal() {
		return false
	}
	return req.ScheduledDate.Before(now)
}

// DaysOverdue returns how many whole days past schedule the request is,
// zero when it is not overdue.
func DaysOverdue(req *models.MaintenanceRequest, now time.Time) int {
	if !IsOverdue(req, now) {
		return 0
	}
	days := int(now.Sub(*req.ScheduledDate).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// AnnotateOverdue stamps the derived overdue fields onto each detail row.
func AnnotateOverdue(details []models.RequestDetail, now time.Time) {
	for i := range details {
		details[i].Overdue = IsOverdue(&details[i].MaintenanceRequest, now)
		details[i].DaysOverdue = DaysOverdue(&details[i].MaintenanceRequest, now)
	}
}

// FilterOverdue returns the subset of requests that are overdue.
func FilterOverdue(requests []models.MaintenanceRequest, now time.Time) []models.MaintenanceRequest {
	var out []models.MaintenanceRequest
	for i := range requests {
		if IsOverdue(&requests[i], now) {
			out = append(out, requests[i])
		}
	}
	return out
}

// CountOverdue counts overdue requests in a list.
func CountOverdue(requests []models.MaintenanceRequest, now time.Time) int {
	count := 0
	for i := range requests {
		if IsOverdue(&requests[i], now) {
			count++
		}
	}
	return count
}
