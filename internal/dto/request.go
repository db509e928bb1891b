package dto

import "time"

// CreateUserRequest is the admin payload for provisioning an account.
type CreateUserRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=6"`
	FullName string  `json:"full_name" validate:"required"`
	Role     string  `json:"role" validate:"required,oneof=ADMIN TECHNICIAN USER"`
	TeamID   *string `json:"team_id,omitempty"`
}

// UpdateUserRequest updates profile, role and team assignment.
type UpdateUserRequest struct {
	FullName *string `json:"full_name,omitempty"`
	Role     *string `json:"role,omitempty" validate:"omitempty,oneof=ADMIN TECHNICIAN USER"`
	TeamID   *string `json:"team_id,omitempty"`
	Active   *bool   `json:"active,omitempty"`
}

// TeamRequest creates or renames a maintenance team.
type TeamRequest struct {
	Name string `json:"name" validate:"required,min=2"`
}

// EquipmentRequest creates or updates an equipment asset.
type EquipmentRequest struct {
	Name             string     `json:"name" validate:"required"`
	SerialNumber     string     `json:"serial_number" validate:"required"`
	Department       string     `json:"department"`
	Location         string     `json:"location"`
	AssignedEmployee *string    `json:"assigned_employee,omitempty"`
	PurchaseDate     *time.Time `json:"purchase_date,omitempty"`
	WarrantyExpiry   *time.Time `json:"warranty_expiry,omitempty"`
	TeamID           *string    `json:"team_id,omitempty"`
}

// CreateMaintenanceRequest opens a new maintenance request. The team is
// resolved from the equipment when omitted.
type CreateMaintenanceRequest struct {
	Subject       string     `json:"subject" validate:"required"`
	Description   string     `json:"description"`
	RequestType   string     `json:"request_type" validate:"required,oneof=PREVENTIVE CORRECTIVE"`
	EquipmentID   string     `json:"equipment_id" validate:"required"`
	TeamID        *string    `json:"team_id,omitempty"`
	TechnicianID  *string    `json:"technician_id,omitempty"`
	ScheduledDate *time.Time `json:"scheduled_date,omitempty"`
	DurationHours *float64   `json:"duration_hours,omitempty" validate:"omitempty,gte=0"`
}

// UpdateMaintenanceRequest patches a request. A status value triggers the
// lifecycle validation and possible scrap cascade.
type UpdateMaintenanceRequest struct {
	Subject       *string    `json:"subject,omitempty"`
	Description   *string    `json:"description,omitempty"`
	Status        *string    `json:"status,omitempty" validate:"omitempty,oneof=NEW IN_PROGRESS REPAIRED SCRAP"`
	TechnicianID  *string    `json:"technician_id,omitempty"`
	ScheduledDate *time.Time `json:"scheduled_date,omitempty"`
	DurationHours *float64   `json:"duration_hours,omitempty" validate:"omitempty,gte=0"`
}

// UpdatePreferencesRequest replaces a user's notification preferences.
type UpdatePreferencesRequest struct {
	AlertOverdue  bool `json:"alert_overdue"`
	AlertDueSoon  bool `json:"alert_due_soon"`
	AlertComplete bool `json:"alert_complete"`
	AlertAssigned bool `json:"alert_assigned"`
	InApp         bool `json:"in_app"`
}
