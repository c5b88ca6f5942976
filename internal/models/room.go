package models

import "time"

// Room is a read model synced from the listing service. The booking service
// never creates or edits rooms; it only needs the host linkage for actor checks.
type Room struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	HostID    string    `gorm:"not null;index" json:"host_id"`
	Title     string    `gorm:"not null" json:"title"`
	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
