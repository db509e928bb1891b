package models

import "time"

// RequestStatus enumerates the maintenance request lifecycle.
//
// NEW and IN_PROGRESS are open states; REPAIRED and SCRAP are terminal and
// admit no further transition.
type RequestStatus string

const (
	StatusNew        RequestStatus = "NEW"
	StatusInProgress RequestStatus = "IN_PROGRESS"
	StatusRepaired   RequestStatus = "REPAIRED"
	StatusScrap      RequestStatus = "SCRAP"
)

// IsTerminal reports whether no further status transition is permitted.
func (s RequestStatus) IsTerminal() bool {
	return s == StatusRepaired || s == StatusScrap
}

// RequestType distinguishes scheduled maintenance from failure response.
type RequestType string

const (
	TypePreventive RequestType = "PREVENTIVE"
	TypeCorrective RequestType = "CORRECTIVE"
)

// MaintenanceRequest is a unit of maintenance work against one equipment.
type MaintenanceRequest struct {
	ID            string        `db:"id" json:"id"`
	Subject       string        `db:"subject" json:"subject"`
	Description   string        `db:"description" json:"description"`
	Status        RequestStatus `db:"status" json:"status"`
	RequestType   RequestType   `db:"request_type" json:"request_type"`
	ScheduledDate *time.Time    `db:"scheduled_date" json:"scheduled_date,omitempty"`
	DurationHours *float64      `db:"duration_hours" json:"duration_hours,omitempty"`
	EquipmentID   string        `db:"equipment_id" json:"equipment_id"`
	TeamID        string        `db:"team_id" json:"team_id"`
	TechnicianID  *string       `db:"technician_id" json:"technician_id,omitempty"`
	CreatedByID   string        `db:"created_by_id" json:"created_by_id"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}

// RequestDetail joins the names a list or detail view needs alongside the
// raw foreign keys.
type RequestDetail struct {
	MaintenanceRequest
	EquipmentName  string  `db:"equipment_name" json:"equipment_name"`
	TeamName       string  `db:"team_name" json:"team_name"`
	TechnicianName *string `db:"technician_name" json:"technician_name,omitempty"`
	CreatedByName  string  `db:"created_by_name" json:"created_by_name"`

	// Derived per render by the overdue detector, never persisted.
	Overdue     bool `db:"-" json:"overdue"`
	DaysOverdue int  `db:"-" json:"days_overdue"`
}

// RequestFilter captures filtering criteria for listing requests.
type RequestFilter struct {
	Status       *RequestStatus
	RequestType  *RequestType
	EquipmentID  *string
	TeamID       *string
	TechnicianID *string
	CreatedByID  *string
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
	Page         int
	PageSize     int
}

// RequestScope restricts listing to what the caller may see. The zero value
// is unrestricted. A technician sees requests assigned to them or routed to
// their team; a regular user sees only what they created.
type RequestScope struct {
	TechnicianID *string
	TeamID       *string
	CreatedByID  *string
}

// RequestHistoryEntry is the slice of a request the health evaluator
// consumes: type, status and creation time.
type RequestHistoryEntry struct {
	RequestType   RequestType   `db:"request_type" json:"request_type"`
	Status        RequestStatus `db:"status" json:"status"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	DurationHours *float64      `db:"duration_hours" json:"duration_hours,omitempty"`
}
