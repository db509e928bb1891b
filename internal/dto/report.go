package dto

import "time"

// ReportFilter bounds a report or export to a slice of the register.
type ReportFilter struct {
	From        *time.Time
	To          *time.Time
	Status      *string
	RequestType *string
	TeamID      *string
}

// ReportSummary is the aggregate view over the request register.
type ReportSummary struct {
	TotalRequests        int           `json:"total_requests"`
	OpenRequests         int           `json:"open_requests"`
	OverdueRequests      int           `json:"overdue_requests"`
	CompletionRate       float64       `json:"completion_rate"`
	PreventiveCount      int           `json:"preventive_count"`
	CorrectiveCount      int           `json:"corrective_count"`
	AverageDurationHours float64       `json:"average_duration_hours"`
	StatusBreakdown      []StatusCount `json:"status_breakdown"`
	GeneratedAt          time.Time     `json:"generated_at"`
}

// TeamPerformance ranks a team by throughput and repair time.
type TeamPerformance struct {
	TeamID               string  `json:"team_id" db:"team_id"`
	TeamName             string  `json:"team_name" db:"team_name"`
	TotalRequests        int     `json:"total_requests" db:"total_requests"`
	RepairedRequests     int     `json:"repaired_requests" db:"repaired_requests"`
	OpenRequests         int     `json:"open_requests" db:"open_requests"`
	AverageDurationHours float64 `json:"average_duration_hours" db:"average_duration_hours"`
}

// EquipmentHealthRank is one row of the fleet risk ranking.
type EquipmentHealthRank struct {
	EquipmentID   string `json:"equipment_id"`
	EquipmentName string `json:"equipment_name"`
	RiskLevel     string `json:"risk_level"`
	Corrective30d int    `json:"corrective_30d"`
	TotalRequests int    `json:"total_requests"`
}
