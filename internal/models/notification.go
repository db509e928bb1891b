package models

import "time"

// NotificationType classifies in-app notifications.
type NotificationType string

const (
	NotifyOverdue      NotificationType = "OVERDUE"
	NotifyDueSoon      NotificationType = "DUE_SOON"
	NotifyCompleted    NotificationType = "COMPLETED"
	NotifyAssigned     NotificationType = "ASSIGNED"
	NotifyStatusChange NotificationType = "STATUS_CHANGE"
)

// Notification is an in-app message addressed to one user.
type Notification struct {
	ID                 string           `db:"id" json:"id"`
	UserID             string           `db:"user_id" json:"user_id"`
	Type               NotificationType `db:"type" json:"type"`
	Title              string           `db:"title" json:"title"`
	Message            string           `db:"message" json:"message"`
	RelatedRequestID   *string          `db:"related_request_id" json:"related_request_id,omitempty"`
	RelatedEquipmentID *string          `db:"related_equipment_id" json:"related_equipment_id,omitempty"`
	Read               bool             `db:"read" json:"read"`
	ReadAt             *time.Time       `db:"read_at" json:"read_at,omitempty"`
	CreatedAt          time.Time        `db:"created_at" json:"created_at"`
}

// NotificationPreference stores a user's per-category opt-in flags.
type NotificationPreference struct {
	UserID        string    `db:"user_id" json:"user_id"`
	AlertOverdue  bool      `db:"alert_overdue" json:"alert_overdue"`
	AlertDueSoon  bool      `db:"alert_due_soon" json:"alert_due_soon"`
	AlertComplete bool      `db:"alert_complete" json:"alert_complete"`
	AlertAssigned bool      `db:"alert_assigned" json:"alert_assigned"`
	InApp         bool      `db:"in_app" json:"in_app"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// DefaultNotificationPreference returns the opt-in defaults used when a user
// has never saved preferences.
func DefaultNotificationPreference(userID string) NotificationPreference {
	return NotificationPreference{
		UserID:        userID,
		AlertOverdue:  true,
		AlertDueSoon:  true,
		AlertComplete: true,
		AlertAssigned: true,
		InApp:         true,
	}
}
