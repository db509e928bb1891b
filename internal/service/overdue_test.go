package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/internal/models"
)

func schedPtr(t time.Time) *time.Time { return &t }

func TestIsOverdue(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		req     models.MaintenanceRequest
		overdue bool
	}{
		{
			name:    "no scheduled date",
			req:     models.MaintenanceRequest{Status: models.StatusNew},
			overdue: false,
		},
		{
			name: "scheduled in the future",
			req: models.MaintenanceRequest{
				Status:        models.StatusNew,
				ScheduledDate: schedPtr(now.Add(48 * time.Hour)),
			},
			overdue: false,
		},
		{
			name: "scheduled in the past and open",
			req: models.MaintenanceRequest{
				Status:        models.StatusInProgress,
				ScheduledDate: schedPtr(now.Add(-72 * time.Hour)),
			},
			overdue: true,
		},
		{
			name: "repaired before schedule caught up",
			req: models.MaintenanceRequest{
				Status:        models.StatusRepaired,
				ScheduledDate: schedPtr(now.Add(-72 * time.Hour)),
			},
			overdue: false,
		},
		{
			name: "scrapped never overdue",
			req: models.MaintenanceRequest{
				Status:        models.StatusScrap,
				ScheduledDate: schedPtr(now.Add(-time.Hour)),
			},
			overdue: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.overdue, IsOverdue(&tc.req, now))
		})
	}
}

func TestDaysOverdue(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	open := models.MaintenanceRequest{
		Status:        models.StatusNew,
		ScheduledDate: schedPtr(now.Add(-5*24*time.Hour - 6*time.Hour)),
	}
	assert.Equal(t, 5, DaysOverdue(&open, now))

	sameDay := models.MaintenanceRequest{
		Status:        models.StatusNew,
		ScheduledDate: schedPtr(now.Add(-3 * time.Hour)),
	}
	assert.True(t, IsOverdue(&sameDay, now))
	assert.Equal(t, 0, DaysOverdue(&sameDay, now))

	future := models.MaintenanceRequest{
		Status:        models.StatusNew,
		ScheduledDate: schedPtr(now.Add(24 * time.Hour)),
	}
	assert.Equal(t, 0, DaysOverdue(&future, now))
}

func TestAnnotateOverdue(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	details := []models.RequestDetail{
		{MaintenanceRequest: models.MaintenanceRequest{
			Status:        models.StatusNew,
			ScheduledDate: schedPtr(now.Add(-10 * 24 * time.Hour)),
		}},
		{MaintenanceRequest: models.MaintenanceRequest{
			Status:        models.StatusRepaired,
			ScheduledDate: schedPtr(now.Add(-10 * 24 * time.Hour)),
		}},
	}

	AnnotateOverdue(details, now)

	assert.True(t, details[0].Overdue)
	assert.Equal(t, 10, details[0].DaysOverdue)
	assert.False(t, details[1].Overdue)
	assert.Equal(t, 0, details[1].DaysOverdue)
}

func TestCountOverdue(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	requests := []models.MaintenanceRequest{
		{Status: models.StatusNew, ScheduledDate: schedPtr(now.Add(-time.Hour))},
		{Status: models.StatusInProgress, ScheduledDate: schedPtr(now.Add(-48 * time.Hour))},
		{Status: models.StatusNew},
		{Status: models.StatusScrap, ScheduledDate: schedPtr(now.Add(-48 * time.Hour))},
	}

	assert.Equal(t, 2, CountOverdue(requests, now))
}

func TestFilterOverdue(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	requests := []models.MaintenanceRequest{
		{ID: "a", Status: models.StatusNew, ScheduledDate: schedPtr(now.Add(-time.Hour))},
		{ID: "b", Status: models.StatusRepaired, ScheduledDate: schedPtr(now.Add(-time.Hour))},
		{ID: "c", Status: models.StatusInProgress, ScheduledDate: schedPtr(now.Add(time.Hour))},
	}

	overdue := FilterOverdue(requests, now)

	require.Len(t, overdue, 1)
	assert.Equal(t, "a", overdue[0].ID)
}
