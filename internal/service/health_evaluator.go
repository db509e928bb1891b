package service

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/internal/dto"
	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/internal/models"
)

const dayDuration = 24 * time.Hour

// HealthEvaluator derives a rule-based risk assessment from an equipment's
// maintenance history. It is pure: no storage access, clock injected for
// tests.
type HealthEvaluator struct {
	now func() time.Time
}

func NewHealthEvaluator() *HealthEvaluator {
	return &HealthEvaluator{now: time.Now}
}

// Evaluate scores one equipment's history.
//
// Risk comes from corrective activity in the trailing 30 days: three or more
// requests is HIGH, at least one is MEDIUM, none is LOW. The suggested next
// maintenance date extrapolates the average preventive interval from the most
// recent preventive request, shortened by 30% at HIGH risk and 15% at MEDIUM.
func (e *HealthEvaluator) Evaluate(equipmentID string, history []models.RequestHistoryEntry) *dto.EquipmentHealth {
	now := e.now()
	thirtyDaysAgo := now.Add(-30 * dayDuration)

	var corrective, preventive []models.RequestHistoryEntry
	for _, entry := range history {
		switch entry.RequestType {
		case models.TypeCorrective:
			corrective = append(corrective, entry)
		case models.TypePreventive:
			preventive = append(preventive, entry)
		}
	}

	recentCorrective := 0
	for _, entry := range corrective {
		if !entry.CreatedAt.Before(thirtyDaysAgo) {
			recentCorrective++
		}
	}

	var riskLevel, reasoning string
	switch {
	case recentCorrective >= 3:
		riskLevel = dto.RiskHigh
		reasoning = fmt.Sprintf("HIGH RISK: %d corrective maintenance requests in the last 30 days indicates frequent failures. Immediate preventive action recommended.", recentCorrective)
	case recentCorrective >= 1:
		riskLevel = dto.RiskMedium
		reasoning = fmt.Sprintf("MEDIUM RISK: %d corrective maintenance request(s) in the last 30 days. Monitor closely and consider scheduled maintenance.", recentCorrective)
	default:
		riskLevel = dto.RiskLow
		reasoning = "LOW RISK: No corrective maintenance requests in the last 30 days. Equipment is operating within normal parameters."
	}

	avgInterval := averagePreventiveInterval(preventive)
	daysSince := daysSinceLastMaintenance(history, now)
	suggested := predictNextMaintenance(preventive, avgInterval, riskLevel)

	if suggested != nil {
		daysUntil := int(math.Ceil(suggested.Sub(now).Hours() / 24))
		reasoning += fmt.Sprintf(" Next preventive maintenance suggested in %d days based on historical patterns.", daysUntil)
	} else if len(preventive) == 0 {
		reasoning += " No preventive maintenance history available. Establish a baseline maintenance schedule."
	}

	return &dto.EquipmentHealth{
		EquipmentID:              equipmentID,
		RiskLevel:                riskLevel,
		SuggestedNextMaintenance: suggested,
		Reasoning:                reasoning,
		Metrics: dto.HealthMetrics{
			CorrectiveRequestsLast30Days: recentCorrective,
			TotalCorrectiveRequests:      len(corrective),
			TotalPreventiveRequests:      len(preventive),
			AveragePreventiveInterval:    avgInterval,
			DaysSinceLastMaintenance:     daysSince,
		},
	}
}

// averagePreventiveInterval returns the rounded mean gap in days between
// consecutive preventive requests, nil with fewer than two data points.
func averagePreventiveInterval(preventive []models.RequestHistoryEntry) *int {
	if len(preventive) < 2 {
		return nil
	}

	sorted := make([]models.RequestHistoryEntry, len(preventive))
	copy(sorted, preventive)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	var sum float64
	for i := 0; i < len(sorted)-1; i++ {
		sum += sorted[i].CreatedAt.Sub(sorted[i+1].CreatedAt).Hours() / 24
	}
	avg := int(math.Round(sum / float64(len(sorted)-1)))
	return &avg
}

func daysSinceLastMaintenance(history []models.RequestHistoryEntry, now time.Time) *int {
	if len(history) == 0 {
		return nil
	}
	latest := history[0].CreatedAt
	for _, entry := range history[1:] {
		if entry.CreatedAt.After(latest) {
			latest = entry.CreatedAt
		}
	}
	days := int(math.Floor(now.Sub(latest).Hours() / 24))
	return &days
}

func predictNextMaintenance(preventive []models.RequestHistoryEntry, avgInterval *int, riskLevel string) *time.Time {
	if len(preventive) == 0 || avgInterval == nil || *avgInterval == 0 {
		return nil
	}

	latest := preventive[0].CreatedAt
	for _, entry := range preventive[1:] {
		if entry.CreatedAt.After(latest) {
			latest = entry.CreatedAt
		}
	}

	adjusted := *avgInterval
	switch riskLevel {
	case dto.RiskHigh:
		adjusted = int(math.Round(float64(*avgInterval) * 0.7))
	case dto.RiskMedium:
		adjusted = int(math.Round(float64(*avgInterval) * 0.85))
	}

	next := latest.Add(time.Duration(adjusted) * dayDuration)
	return &next
}

// Summary renders a short plain-text digest of an assessment.
func (e *HealthEvaluator) Summary(health *dto.EquipmentHealth) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Risk Level: %s\n", health.RiskLevel)
	fmt.Fprintf(&b, "Corrective requests (30 days): %d\n", health.Metrics.CorrectiveRequestsLast30Days)
	fmt.Fprintf(&b, "Total corrective: %d | Total preventive: %d\n", health.Metrics.TotalCorrectiveRequests, health.Metrics.TotalPreventiveRequests)
	if health.Metrics.DaysSinceLastMaintenance != nil {
		fmt.Fprintf(&b, "Days since last maintenance: %d\n", *health.Metrics.DaysSinceLastMaintenance)
	}
	if health.SuggestedNextMaintenance != nil {
		fmt.Fprintf(&b, "Next maintenance: %s\n", health.SuggestedNextMaintenance.Format("2006-01-02"))
	}
	return b.String()
}
