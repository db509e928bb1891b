package models

import "time"

// Equipment is a maintainable asset owned by a maintenance team.
//
// Once IsScrapped is set the record is permanently retired: new maintenance
// requests referencing it are rejected at the service layer.
type Equipment struct {
	ID               string     `db:"id" json:"id"`
	Name             string     `db:"name" json:"name"`
	SerialNumber     string     `db:"serial_number" json:"serial_number"`
	Department       string     `db:"department" json:"department"`
	Location         string     `db:"location" json:"location"`
	AssignedEmployee *string    `db:"assigned_employee" json:"assigned_employee,omitempty"`
	PurchaseDate     *time.Time `db:"purchase_date" json:"purchase_date,omitempty"`
	WarrantyExpiry   *time.Time `db:"warranty_expiry" json:"warranty_expiry,omitempty"`
	IsScrapped       bool       `db:"is_scrapped" json:"is_scrapped"`
	TeamID           *string    `db:"team_id" json:"team_id,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// EquipmentSummary augments Equipment with its request count for list views.
type EquipmentSummary struct {
	Equipment
	RequestCount int     `db:"request_count" json:"request_count"`
	TeamName     *string `db:"team_name" json:"team_name,omitempty"`
}

// EquipmentFilter captures filtering criteria for listing equipment.
type EquipmentFilter struct {
	TeamID     *string
	IsScrapped *bool
	Search     string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
