package service

import (
	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/internal/models"
	appErrors "github.com/ArmanAmreliya/gearguard-odoo-maintenance/pkg/errors"
)

// validTransitions is the request lifecycle state machine. Missing keys and
// empty sets are terminal states.
var validTransitions = map[models.RequestStatus][]models.RequestStatus{
	models.StatusNew:        {models.StatusInProgress, models.StatusScrap},
	models.StatusInProgress: {models.StatusRepaired, models.StatusScrap},
	models.StatusRepaired:   {},
	models.StatusScrap:      {},
}

// ValidateStatusTransition returns ErrInvalidTransition when the proposed
// status change is not in the lifecycle table. Self-loops are not allowed.
func ValidateStatusTransition(current, next models.RequestStatus) error {
	for _, allowed := range validTransitions[current] {
		if allowed == next {
			return nil
		}
	}
	return appErrors.InvalidTransition(string(current), string(next))
}

// FollowUp is a mutation that must be applied in the same transaction as a
// status change.
type FollowUp struct {
	// ScrapEquipment carries the equipment id to mark scrapped, empty when
	// the follow-up is of another kind (none currently).
	ScrapEquipment string
}

// StatusChangePlan describes a validated status change and its cascading
// follow-up mutations.
type StatusChangePlan struct {
	RequestID string
	From      models.RequestStatus
	To        models.RequestStatus
	FollowUps []FollowUp
}

// PlanStatusChange validates the transition and makes the SCRAP cascade
// explicit: scrapping a request retires its equipment, and both writes
// belong to one transaction.
func PlanStatusChange(req *models.MaintenanceRequest, next models.RequestStatus) (*StatusChangePlan, error) {
	if err := ValidateStatusTransition(req.Status, next); err != nil {
		return nil, err
	}

	plan := &StatusChangePlan{RequestID: req.ID, From: req.Status, To: next}
	if next == models.StatusScrap {
		plan.FollowUps = append(plan.FollowUps, FollowUp{ScrapEquipment: req.EquipmentID})
	}
	return plan, nil
}
