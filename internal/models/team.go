package models

import "time"

// MaintenanceTeam groups technicians, the equipment they service and the
// requests routed to them.
type MaintenanceTeam struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// TeamSummary is a team with aggregate counts for list views.
type TeamSummary struct {
	MaintenanceTeam
	MemberCount    int `db:"member_count" json:"member_count"`
	EquipmentCount int `db:"equipment_count" json:"equipment_count"`
	RequestCount   int `db:"request_count" json:"request_count"`
}

// TeamDetail includes the member roster.
type TeamDetail struct {
	MaintenanceTeam
	Members []UserInfo `json:"members"`
}
