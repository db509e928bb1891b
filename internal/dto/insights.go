package dto

import "time"

// Risk levels produced by the equipment health evaluator.
const (
	RiskLow    = "LOW"
	RiskMedium = "MEDIUM"
	RiskHigh   = "HIGH"
)

// HealthMetrics carries the raw numbers behind a risk assessment.
// Interval and recency values are nil when there is not enough history.
type HealthMetrics struct {
	CorrectiveRequestsLast30Days int  `json:"corrective_requests_last_30_days"`
	TotalCorrectiveRequests      int  `json:"total_corrective_requests"`
	TotalPreventiveRequests      int  `json:"total_preventive_requests"`
	AveragePreventiveInterval    *int `json:"average_preventive_interval"`
	DaysSinceLastMaintenance     *int `json:"days_since_last_maintenance"`
}

// EquipmentHealth is the full evaluator output for one piece of equipment.
type EquipmentHealth struct {
	EquipmentID              string        `json:"equipment_id"`
	EquipmentName            string        `json:"equipment_name,omitempty"`
	RiskLevel                string        `json:"risk_level"`
	SuggestedNextMaintenance *time.Time    `json:"suggested_next_maintenance"`
	Reasoning                string        `json:"reasoning"`
	Metrics                  HealthMetrics `json:"metrics"`
}

// StatusCount is one slice of the request status breakdown.
type StatusCount struct {
	Status string `json:"status" db:"status"`
	Count  int    `json:"count" db:"count"`
}

// UpcomingMaintenance is a scheduled request inside the lookahead window.
type UpcomingMaintenance struct {
	RequestID     string    `json:"request_id" db:"request_id"`
	Subject       string    `json:"subject" db:"subject"`
	EquipmentID   string    `json:"equipment_id" db:"equipment_id"`
	EquipmentName string    `json:"equipment_name" db:"equipment_name"`
	TeamName      string    `json:"team_name" db:"team_name"`
	ScheduledDate time.Time `json:"scheduled_date" db:"scheduled_date"`
}

// InsightsOverview is the admin dashboard payload.
type InsightsOverview struct {
	TotalEquipment      int                   `json:"total_equipment"`
	ScrappedEquipment   int                   `json:"scrapped_equipment"`
	TotalRequests       int                   `json:"total_requests"`
	OverdueRequests     int                   `json:"overdue_requests"`
	StatusBreakdown     []StatusCount         `json:"status_breakdown"`
	PreventiveRatio     float64               `json:"preventive_ratio"`
	HighRiskEquipment   []EquipmentHealth     `json:"high_risk_equipment"`
	UpcomingMaintenance []UpcomingMaintenance `json:"upcoming_maintenance"`
	GeneratedAt         time.Time             `json:"generated_at"`
}
