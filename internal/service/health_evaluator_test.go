package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/internal/dto"
	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/internal/models"
)

func historyEntry(reqType models.RequestType, createdAt time.Time) models.RequestHistoryEntry {
	return models.RequestHistoryEntry{
		RequestType: reqType,
		Status:      models.StatusRepaired,
		CreatedAt:   createdAt,
	}
}

func evaluatorAt(now time.Time) *HealthEvaluator {
	e := NewHealthEvaluator()
	e.now = func() time.Time { return now }
	return e
}

func TestHealthEvaluator_EmptyHistoryIsLowRisk(t *testing.T) {
	now := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	health := evaluatorAt(now).Evaluate("eq-1", nil)

	assert.Equal(t, dto.RiskLow, health.RiskLevel)
	assert.Nil(t, health.SuggestedNextMaintenance)
	assert.Nil(t, health.Metrics.AveragePreventiveInterval)
	assert.Nil(t, health.Metrics.DaysSinceLastMaintenance)
	assert.Zero(t, health.Metrics.CorrectiveRequestsLast30Days)
	assert.Contains(t, health.Reasoning, "LOW RISK")
	assert.Contains(t, health.Reasoning, "Establish a baseline maintenance schedule")
}

func TestHealthEvaluator_ThreeRecentCorrectiveIsHighRisk(t *testing.T) {
	now := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	history := []models.RequestHistoryEntry{
		historyEntry(models.TypeCorrective, now.Add(-2*24*time.Hour)),
		historyEntry(models.TypeCorrective, now.Add(-10*24*time.Hour)),
		historyEntry(models.TypeCorrective, now.Add(-25*24*time.Hour)),
		historyEntry(models.TypeCorrective, now.Add(-60*24*time.Hour)),
	}

	health := evaluatorAt(now).Evaluate("eq-1", history)

	assert.Equal(t, dto.RiskHigh, health.RiskLevel)
	assert.Equal(t, 3, health.Metrics.CorrectiveRequestsLast30Days)
	assert.Equal(t, 4, health.Metrics.TotalCorrectiveRequests)
	assert.Contains(t, health.Reasoning, "HIGH RISK: 3 corrective maintenance requests")
}

func TestHealthEvaluator_OneRecentCorrectiveIsMediumRisk(t *testing.T) {
	now := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	history := []models.RequestHistoryEntry{
		historyEntry(models.TypeCorrective, now.Add(-5*24*time.Hour)),
		historyEntry(models.TypeCorrective, now.Add(-90*24*time.Hour)),
	}

	health := evaluatorAt(now).Evaluate("eq-1", history)

	assert.Equal(t, dto.RiskMedium, health.RiskLevel)
	assert.Equal(t, 1, health.Metrics.CorrectiveRequestsLast30Days)
	assert.Contains(t, health.Reasoning, "MEDIUM RISK: 1 corrective maintenance request(s)")
}

func TestHealthEvaluator_OldCorrectiveOnlyStaysLow(t *testing.T) {
	now := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	history := []models.RequestHistoryEntry{
		historyEntry(models.TypeCorrective, now.Add(-31*24*time.Hour)),
		historyEntry(models.TypeCorrective, now.Add(-45*24*time.Hour)),
	}

	health := evaluatorAt(now).Evaluate("eq-1", history)

	assert.Equal(t, dto.RiskLow, health.RiskLevel)
	assert.Zero(t, health.Metrics.CorrectiveRequestsLast30Days)
	assert.Equal(t, 2, health.Metrics.TotalCorrectiveRequests)
}

func TestHealthEvaluator_PreventiveIntervalAveragesGaps(t *testing.T) {
	now := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	// Gaps of 30 and 30 days between three preventive visits.
	history := []models.RequestHistoryEntry{
		historyEntry(models.TypePreventive, now.Add(-10*24*time.Hour)),
		historyEntry(models.TypePreventive, now.Add(-40*24*time.Hour)),
		historyEntry(models.TypePreventive, now.Add(-70*24*time.Hour)),
	}

	health := evaluatorAt(now).Evaluate("eq-1", history)

	require.NotNil(t, health.Metrics.AveragePreventiveInterval)
	assert.Equal(t, 30, *health.Metrics.AveragePreventiveInterval)
	require.NotNil(t, health.Metrics.DaysSinceLastMaintenance)
	assert.Equal(t, 10, *health.Metrics.DaysSinceLastMaintenance)

	// LOW risk keeps the full 30 day interval from the latest visit.
	require.NotNil(t, health.SuggestedNextMaintenance)
	expected := now.Add(-10 * 24 * time.Hour).Add(30 * 24 * time.Hour)
	assert.Equal(t, expected, *health.SuggestedNextMaintenance)
	assert.Contains(t, health.Reasoning, "Next preventive maintenance suggested in 20 days")
}

func TestHealthEvaluator_SinglePreventiveHasNoInterval(t *testing.T) {
	now := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	history := []models.RequestHistoryEntry{
		historyEntry(models.TypePreventive, now.Add(-12*24*time.Hour)),
	}

	health := evaluatorAt(now).Evaluate("eq-1", history)

	assert.Nil(t, health.Metrics.AveragePreventiveInterval)
	assert.Nil(t, health.SuggestedNextMaintenance)
	// Some preventive history exists, so no baseline advice is appended.
	assert.NotContains(t, health.Reasoning, "Establish a baseline")
}

func TestHealthEvaluator_HighRiskShortensInterval(t *testing.T) {
	now := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	history := []models.RequestHistoryEntry{
		historyEntry(models.TypeCorrective, now.Add(-1*24*time.Hour)),
		historyEntry(models.TypeCorrective, now.Add(-3*24*time.Hour)),
		historyEntry(models.TypeCorrective, now.Add(-6*24*time.Hour)),
		historyEntry(models.TypePreventive, now.Add(-5*24*time.Hour)),
		historyEntry(models.TypePreventive, now.Add(-35*24*time.Hour)),
	}

	health := evaluatorAt(now).Evaluate("eq-1", history)

	assert.Equal(t, dto.RiskHigh, health.RiskLevel)
	require.NotNil(t, health.Metrics.AveragePreventiveInterval)
	assert.Equal(t, 30, *health.Metrics.AveragePreventiveInterval)

	// 30 days cut by 30% is 21 days from the latest preventive visit.
	require.NotNil(t, health.SuggestedNextMaintenance)
	expected := now.Add(-5 * 24 * time.Hour).Add(21 * 24 * time.Hour)
	assert.Equal(t, expected, *health.SuggestedNextMaintenance)
}

func TestHealthEvaluator_MediumRiskShortensIntervalBy15Percent(t *testing.T) {
	now := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	history := []models.RequestHistoryEntry{
		historyEntry(models.TypeCorrective, now.Add(-8*24*time.Hour)),
		historyEntry(models.TypePreventive, now.Add(-10*24*time.Hour)),
		historyEntry(models.TypePreventive, now.Add(-50*24*time.Hour)),
	}

	health := evaluatorAt(now).Evaluate("eq-1", history)

	assert.Equal(t, dto.RiskMedium, health.RiskLevel)
	require.NotNil(t, health.Metrics.AveragePreventiveInterval)
	assert.Equal(t, 40, *health.Metrics.AveragePreventiveInterval)

	// 40 days cut by 15% rounds to 34 days from the latest preventive visit.
	require.NotNil(t, health.SuggestedNextMaintenance)
	expected := now.Add(-10 * 24 * time.Hour).Add(34 * 24 * time.Hour)
	assert.Equal(t, expected, *health.SuggestedNextMaintenance)
}

func TestHealthEvaluator_Summary(t *testing.T) {
	now := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	evaluator := evaluatorAt(now)
	history := []models.RequestHistoryEntry{
		historyEntry(models.TypePreventive, now.Add(-10*24*time.Hour)),
		historyEntry(models.TypePreventive, now.Add(-40*24*time.Hour)),
	}

	summary := evaluator.Summary(evaluator.Evaluate("eq-1", history))

	assert.Contains(t, summary, "Risk Level: LOW")
	assert.Contains(t, summary, "Corrective requests (30 days): 0")
	assert.Contains(t, summary, "Total corrective: 0 | Total preventive: 2")
	assert.Contains(t, summary, "Days since last maintenance: 10")
	assert.Contains(t, summary, "Next maintenance: 2025-05-21")
}
