package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/internal/models"
	appErrors "github.com/ArmanAmreliya/gearguard-odoo-maintenance/pkg/errors"
)

func TestValidateStatusTransition_Table(t *testing.T) {
	cases := []struct {
		name    string
		current models.RequestStatus
		next    models.RequestStatus
		ok      bool
	}{
		{"new to in progress", models.StatusNew, models.StatusInProgress, true},
		{"new to scrap", models.StatusNew, models.StatusScrap, true},
		{"new to repaired skips work", models.StatusNew, models.StatusRepaired, false},
		{"in progress to repaired", models.StatusInProgress, models.StatusRepaired, true},
		{"in progress to scrap", models.StatusInProgress, models.StatusScrap, true},
		{"in progress back to new", models.StatusInProgress, models.StatusNew, false},
		{"repaired is terminal", models.StatusRepaired, models.StatusInProgress, false},
		{"scrap is terminal", models.StatusScrap, models.StatusNew, false},
		{"self loop rejected", models.StatusNew, models.StatusNew, false},
		{"unknown status rejected", models.RequestStatus("ARCHIVED"), models.StatusNew, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateStatusTransition(tc.current, tc.next)
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			appErr := appErrors.FromError(err)
			assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErr.Code)
		})
	}
}

func TestValidateStatusTransition_ErrorMessage(t *testing.T) {
	err := ValidateStatusTransition(models.StatusRepaired, models.StatusScrap)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid status transition from REPAIRED to SCRAP")
}

func TestPlanStatusChange_ScrapCascadesToEquipment(t *testing.T) {
	req := &models.MaintenanceRequest{
		ID:          "req-1",
		EquipmentID: "eq-9",
		Status:      models.StatusInProgress,
	}

	plan, err := PlanStatusChange(req, models.StatusScrap)
	require.NoError(t, err)
	assert.Equal(t, "req-1", plan.RequestID)
	assert.Equal(t, models.StatusInProgress, plan.From)
	assert.Equal(t, models.StatusScrap, plan.To)
	require.Len(t, plan.FollowUps, 1)
	assert.Equal(t, "eq-9", plan.FollowUps[0].ScrapEquipment)
}

func TestPlanStatusChange_RepairedHasNoFollowUps(t *testing.T) {
	req := &models.MaintenanceRequest{
		ID:          "req-2",
		EquipmentID: "eq-9",
		Status:      models.StatusInProgress,
	}

	plan, err := PlanStatusChange(req, models.StatusRepaired)
	require.NoError(t, err)
	assert.Empty(t, plan.FollowUps)
}

func TestPlanStatusChange_InvalidTransitionReturnsNoPlan(t *testing.T) {
	req := &models.MaintenanceRequest{
		ID:          "req-3",
		EquipmentID: "eq-9",
		Status:      models.StatusScrap,
	}

	plan, err := PlanStatusChange(req, models.StatusInProgress)
	require.Error(t, err)
	assert.Nil(t, plan)
}
