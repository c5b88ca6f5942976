package models

import "time"

type BookingStatus string

const (
	StatusPending           BookingStatus = "PENDING"
	StatusApproved          BookingStatus = "APPROVED"
	StatusRejected          BookingStatus = "REJECTED"
	StatusConfirmed         BookingStatus = "CONFIRMED"
	StatusCancelledByRenter BookingStatus = "CANCELLED_BY_RENTER"
	StatusCancelledByHost   BookingStatus = "CANCELLED_BY_HOST"
)

// Booking is one renter's claim on one room for one lease term. Amounts are in
// minor currency units. RejectReason is set iff status is REJECTED; CancelReason
// is set iff status is one of the two cancellation states — the lifecycle package
// is the only writer of Status and the reason fields.
type Booking struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	RoomID        uint          `gorm:"not null;index" json:"room_id"`
	RenterID      string        `gorm:"not null;index" json:"renter_id"`
	MoveInDate    time.Time     `gorm:"not null" json:"move_in_date"`
	DepositAmount int64         `gorm:"not null" json:"deposit_amount"`
	TotalPrice    int64         `gorm:"not null" json:"total_price"`
	Status        BookingStatus `gorm:"type:varchar(32);not null;default:'PENDING'" json:"status"`
	RejectReason  *string       `json:"reject_reason,omitempty"`
	CancelReason  *string       `json:"cancel_reason,omitempty"`
	RefundPending bool          `gorm:"not null;default:false" json:"refund_pending"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`

	Room *Room `gorm:"foreignKey:RoomID" json:"room,omitempty"`
}

// Cancelled reports whether the status is one of the two cancellation states.
func (s BookingStatus) Cancelled() bool {
	return s == StatusCancelledByRenter || s == StatusCancelledByHost
}
