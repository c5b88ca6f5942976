package models

import "time"

type DisputeStatus string

const (
	DisputePending        DisputeStatus = "PENDING"
	DisputeResolvedRefund DisputeStatus = "RESOLVED_REFUND"
	DisputeResolvedDenied DisputeStatus = "RESOLVED_DENIED"
)

// Dispute is a renter-raised contest over a confirmed booking's deposit.
// RefundAmount is positive iff the dispute resolved in the renter's favour;
// resolution is final — there is no reopening.
type Dispute struct {
	ID                uint          `gorm:"primaryKey" json:"id"`
	BookingID         uint          `gorm:"not null;index" json:"booking_id"`
	RenterID          string        `gorm:"not null;index" json:"renter_id"`
	Reason            string        `gorm:"not null" json:"reason"`
	EvidenceImages    []string      `gorm:"serializer:json" json:"evidence_images,omitempty"`
	AdminDecisionNote string        `json:"admin_decision_note,omitempty"`
	RefundAmount      int64         `gorm:"not null;default:0" json:"refund_amount"`
	Status            DisputeStatus `gorm:"type:varchar(32);not null;default:'PENDING'" json:"status"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`

	Booking *Booking `gorm:"foreignKey:BookingID" json:"booking,omitempty"`
}

// Resolved reports whether the dispute has reached a terminal decision.
func (s DisputeStatus) Resolved() bool {
	return s == DisputeResolvedRefund || s == DisputeResolvedDenied
}
